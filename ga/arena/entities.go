package arena

import "math/rand"

// Rect is an axis-aligned box with its origin at the top-left corner.
// It covers [X, X+W) horizontally and [Y, Y+H) vertically.
type Rect struct {
	X, Y, W, H float64
}

// Overlaps reports whether two boxes share any area. Empty boxes never overlap.
func (r Rect) Overlaps(o Rect) bool {
	if r.W <= 0 || r.H <= 0 || o.W <= 0 || o.H <= 0 {
		return false
	}
	return r.X < o.X+o.W && o.X < r.X+r.W &&
		r.Y < o.Y+o.H && o.Y < r.Y+r.H
}

// Agent is one bird. Its horizontal position is fixed by the arena config.
type Agent struct {
	Y        float64
	Velocity float64
	Alive    bool
	Fitness  int
}

// Jump replaces the current velocity with the jump impulse.
func (a *Agent) Jump(cfg *Config) {
	a.Velocity = cfg.JumpVelocity
}

// Integrate applies one tick of gravity.
func (a *Agent) Integrate(cfg *Config) {
	a.Velocity += cfg.Gravity
	a.Y += a.Velocity
}

// Kill marks the agent dead. It reports whether the agent was alive before the call.
func (a *Agent) Kill() bool {
	if !a.Alive {
		return false
	}
	a.Alive = false
	return true
}

// Box returns the agent's collision box.
func (a *Agent) Box(cfg *Config) Rect {
	return Rect{X: cfg.AgentX, Y: a.Y, W: cfg.AgentSize, H: cfg.AgentSize}
}

// Obstacle is a pair of pipes with a vertical opening between them.
type Obstacle struct {
	X         float64
	GapCenter float64
	GapHalf   float64
}

// NewObstacle creates an obstacle at x whose gap center is drawn uniformly from the
// integers in [GapMargin, Height-GapMargin].
func NewObstacle(cfg *Config, x float64, rng *rand.Rand) Obstacle {
	lo := cfg.GapMargin
	hi := int(cfg.Height) - cfg.GapMargin
	center := lo
	if hi > lo {
		center = lo + rng.Intn(hi-lo+1)
	}
	return Obstacle{
		X:         x,
		GapCenter: float64(center),
		GapHalf:   cfg.GapSize / 2,
	}
}

// GapTop is the y coordinate where the opening starts.
func (o *Obstacle) GapTop() float64 {
	return o.GapCenter - o.GapHalf
}

// GapBottom is the y coordinate where the opening ends.
func (o *Obstacle) GapBottom() float64 {
	return o.GapCenter + o.GapHalf
}

// Top returns the solid rectangle above the gap, spanning [0, GapTop).
func (o *Obstacle) Top(cfg *Config) Rect {
	return Rect{X: o.X, Y: 0, W: cfg.ObstacleWidth, H: o.GapTop()}
}

// Bottom returns the solid rectangle below the gap, spanning [GapBottom, Height).
func (o *Obstacle) Bottom(cfg *Config) Rect {
	return Rect{X: o.X, Y: o.GapBottom(), W: cfg.ObstacleWidth, H: cfg.Height - o.GapBottom()}
}

// Advance moves the obstacle one tick to the left.
func (o *Obstacle) Advance(cfg *Config) {
	o.X -= cfg.ObstacleSpeed
}

// OffScreen reports whether the obstacle's right edge has left the playfield.
func (o *Obstacle) OffScreen(cfg *Config) bool {
	return o.X < -cfg.ObstacleWidth
}

// Ahead reports whether the obstacle's right edge is still ahead of x.
func (o *Obstacle) Ahead(cfg *Config, x float64) bool {
	return o.X+cfg.ObstacleWidth > x
}

// Collides reports whether box overlaps either solid part of the obstacle.
func (o *Obstacle) Collides(cfg *Config, box Rect) bool {
	return box.Overlaps(o.Top(cfg)) || box.Overlaps(o.Bottom(cfg))
}
