package arena

import "time"

// AgentView is the drawable state of one agent.
type AgentView struct {
	Y       float64
	Alive   bool
	Fitness int
}

// ObstacleView is the drawable state of one obstacle.
type ObstacleView struct {
	X         float64
	GapTop    float64
	GapBottom float64
}

// Snapshot is a copy of the arena state after a tick. Sinks may keep it; the arena
// never writes to a snapshot it has handed out.
type Snapshot struct {
	Tick          int
	Elapsed       time.Duration
	Width         float64
	Height        float64
	AgentX        float64
	AgentSize     float64
	ObstacleWidth float64
	Agents        []AgentView
	Obstacles     []ObstacleView
	Alive         int
}

// Sink receives one snapshot per tick. Implementations must not block the caller
// for longer than it takes to record or draw the frame.
type Sink interface {
	Present(Snapshot)
}

// SinkFunc adapts a plain function to the Sink interface.
type SinkFunc func(Snapshot)

func (f SinkFunc) Present(s Snapshot) {
	f(s)
}
