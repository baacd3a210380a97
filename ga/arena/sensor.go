package arena

// SensorCount is the length of the vector produced by Sense.
const SensorCount = 5

// velocityScale normalizes velocity into roughly [-1, 1].
const velocityScale = 10.0

// nearestAhead returns the index of the first obstacle whose right edge is still ahead
// of the agents, or -1. Obstacles are kept in spawn order, which is ascending X.
func nearestAhead(cfg *Config, obstacles []Obstacle) int {
	for i := range obstacles {
		if obstacles[i].Ahead(cfg, cfg.AgentX) {
			return i
		}
	}
	return -1
}

// Sense builds the normalized input vector for one agent:
//
//	[y/height, velocity/10, gapTop/height, gapBottom/height, distance/width]
//
// With no obstacle ahead the gap spans the whole playfield and the distance is the
// playfield width.
func Sense(cfg *Config, a *Agent, obstacles []Obstacle) []float64 {
	gapTop, gapBottom, dist := 0.0, cfg.Height, cfg.Width
	if i := nearestAhead(cfg, obstacles); i >= 0 {
		o := &obstacles[i]
		gapTop = o.GapTop()
		gapBottom = o.GapBottom()
		dist = o.X - cfg.AgentX
	}
	return []float64{
		a.Y / cfg.Height,
		a.Velocity / velocityScale,
		gapTop / cfg.Height,
		gapBottom / cfg.Height,
		dist / cfg.Width,
	}
}
