package render

import (
	"time"

	"github.com/baldhumanity/flappy-ga/ga/arena"
)

// PacedClock is a step clock whose Tick waits for a wall-clock ticker, so a visual run
// plays at the configured tick rate. Now still advances by exactly one step per tick.
type PacedClock struct {
	*arena.StepClock
	ticker *time.Ticker
}

// NewPacedClock returns a clock that advances by step and paces ticks to one per step.
func NewPacedClock(step time.Duration) *PacedClock {
	return &PacedClock{
		StepClock: arena.NewStepClock(step),
		ticker:    time.NewTicker(step),
	}
}

func (c *PacedClock) Tick() {
	c.StepClock.Tick()
	<-c.ticker.C
}

// Stop releases the ticker.
func (c *PacedClock) Stop() {
	c.ticker.Stop()
}
