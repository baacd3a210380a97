// Package render draws arena snapshots on a terminal with tcell.
package render

import (
	"context"
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/baldhumanity/flappy-ga/ga/arena"
)

const (
	agentRune    = '●'
	obstacleRune = '█'
	statusRows   = 1
)

var (
	obstacleStyle = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	statusStyle   = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
)

// Terminal is an arena.Sink that draws every frame on a tcell screen. The playfield
// is scaled to fill the screen below a one-line status bar.
type Terminal struct {
	screen  tcell.Screen
	palette []tcell.Style
}

// NewTerminal wraps an initialized screen. colors is the number of distinct agent
// colors; agents share colors cyclically by index.
func NewTerminal(screen tcell.Screen, colors int) *Terminal {
	if colors < 1 {
		colors = 1
	}
	return &Terminal{screen: screen, palette: newPalette(colors)}
}

// newPalette spreads hues evenly so neighbouring agents stay distinguishable.
func newPalette(n int) []tcell.Style {
	styles := make([]tcell.Style, n)
	for i := range styles {
		hue := math.Mod(float64(i)*137.508, 360)
		r, g, b := colorful.Hsv(hue, 0.75, 0.95).RGB255()
		styles[i] = tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(r), int32(g), int32(b)))
	}
	return styles
}

// AgentStyle returns the style agent i is drawn with.
func (t *Terminal) AgentStyle(i int) tcell.Style {
	return t.palette[i%len(t.palette)]
}

// Present draws one snapshot and flushes it to the terminal.
func (t *Terminal) Present(s arena.Snapshot) {
	t.screen.Clear()
	w, h := t.screen.Size()
	fieldH := h - statusRows
	if w <= 0 || fieldH <= 0 || s.Width <= 0 || s.Height <= 0 {
		t.screen.Show()
		return
	}
	sx := float64(w) / s.Width
	sy := float64(fieldH) / s.Height

	for _, o := range s.Obstacles {
		x0 := int(math.Floor(o.X * sx))
		x1 := int(math.Ceil((o.X + s.ObstacleWidth) * sx))
		for col := max(x0, 0); col < min(x1, w); col++ {
			for row := 0; row < fieldH; row++ {
				y := (float64(row) + 0.5) / sy
				if y < o.GapTop || y >= o.GapBottom {
					t.screen.SetContent(col, row+statusRows, obstacleRune, nil, obstacleStyle)
				}
			}
		}
	}

	col := clampCell(int((s.AgentX+s.AgentSize/2)*sx), w)
	for i, a := range s.Agents {
		if !a.Alive {
			continue
		}
		row := clampCell(int((a.Y+s.AgentSize/2)*sy), fieldH)
		t.screen.SetContent(col, row+statusRows, agentRune, nil, t.AgentStyle(i))
	}

	t.drawText(0, 0, fmt.Sprintf("Alive: %d", s.Alive), statusStyle)
	t.screen.Show()
}

func (t *Terminal) drawText(x, y int, text string, style tcell.Style) {
	for _, r := range text {
		t.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func clampCell(v, n int) int {
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}

// Listen polls input on its own goroutine and calls cancel when a quit key is pressed.
// It returns once the screen is finalized.
func (t *Terminal) Listen(cancel context.CancelFunc) {
	go func() {
		for {
			ev := t.screen.PollEvent()
			switch ev := ev.(type) {
			case nil:
				return
			case *tcell.EventKey:
				if isQuitKey(ev) {
					cancel()
				}
			case *tcell.EventResize:
				t.screen.Sync()
			}
		}
	}()
}

func isQuitKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		if ev.Modifiers()&tcell.ModCtrl != 0 && ev.Rune() == 'c' {
			return true
		}
		return ev.Rune() == 'q' || ev.Rune() == 'Q'
	}
	return false
}

// Close restores the terminal.
func (t *Terminal) Close() {
	t.screen.Fini()
}
