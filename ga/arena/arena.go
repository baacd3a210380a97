package arena

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// ErrControllerCount is returned when the number of controllers does not match the
// number of agents in the arena.
var ErrControllerCount = errors.New("controller count does not match agent count")

// jumpThreshold is the output level above which a controller's first output triggers a jump.
const jumpThreshold = 0.5

// Controller decides an agent's action from its sensor vector.
// Implementations must not change state between calls during a run.
type Controller interface {
	Forward(inputs []float64) ([]float64, error)
}

// Option configures an Arena.
type Option func(*Arena)

// WithSink attaches a presentation sink that receives a snapshot after every tick.
func WithSink(sink Sink) Option {
	return func(a *Arena) {
		a.sink = sink
	}
}

// WithClock replaces the default step clock.
func WithClock(clock Clock) Option {
	return func(a *Arena) {
		a.clock = clock
	}
}

// Arena runs one shared environment for a whole population in lockstep.
// Every agent sees the same obstacles at the same times.
type Arena struct {
	cfg   Config
	rng   *rand.Rand
	clock Clock
	sink  Sink

	agents    []Agent
	obstacles []Obstacle
	lastSpawn time.Duration
	tick      int
	alive     int
	done      bool
	sinkErr   error
}

// New creates an arena. rng drives obstacle generation only.
func New(cfg Config, rng *rand.Rand, opts ...Option) (*Arena, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}
	a := &Arena{cfg: cfg, rng: rng}
	for _, opt := range opts {
		opt(a)
	}
	if a.clock == nil {
		a.clock = NewStepClock(cfg.TickDuration())
	}
	return a, nil
}

// Config returns the physics constants of the arena.
func (a *Arena) Config() Config {
	return a.cfg
}

// Reset discards all state and places n live agents at the vertical center.
func (a *Arena) Reset(n int) {
	a.agents = make([]Agent, n)
	for i := range a.agents {
		a.agents[i] = Agent{Y: a.cfg.Height / 2, Alive: true}
	}
	a.obstacles = a.obstacles[:0]
	a.lastSpawn = a.clock.Now()
	a.tick = 0
	a.alive = n
	a.done = n == 0
	a.sinkErr = nil
}

// Run evaluates controllers, one agent per controller, until every agent is dead or
// MaxTicks is reached. It returns the number of obstacles each agent passed, in
// controller order. Cancelling ctx aborts the run with ctx.Err() and no result.
func (a *Arena) Run(ctx context.Context, controllers []Controller) ([]int, error) {
	a.Reset(len(controllers))
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		done, err := a.Step(controllers)
		if err != nil {
			return nil, err
		}
		if done {
			return a.Fitness(), nil
		}
	}
}

// Step advances the simulation by one tick and reports whether the run has ended.
func (a *Arena) Step(controllers []Controller) (bool, error) {
	if a.done {
		return true, nil
	}
	if len(controllers) != len(a.agents) {
		return false, fmt.Errorf("%w: %d controllers for %d agents", ErrControllerCount, len(controllers), len(a.agents))
	}
	cfg := &a.cfg

	// Spawn.
	if now := a.clock.Now(); now-a.lastSpawn > cfg.SpawnInterval {
		a.obstacles = append(a.obstacles, NewObstacle(cfg, cfg.Width, a.rng))
		a.lastSpawn = now
	}

	// Sense and decide.
	for i := range a.agents {
		agent := &a.agents[i]
		if !agent.Alive {
			continue
		}
		out, err := controllers[i].Forward(Sense(cfg, agent, a.obstacles))
		if err != nil {
			return false, fmt.Errorf("agent %d: %w", i, err)
		}
		if len(out) == 0 {
			return false, fmt.Errorf("agent %d: controller produced no output", i)
		}
		if out[0] > jumpThreshold {
			agent.Jump(cfg)
		}
	}

	// Physics and boundary collisions.
	for i := range a.agents {
		agent := &a.agents[i]
		if !agent.Alive {
			continue
		}
		agent.Integrate(cfg)
		if agent.Y < 0 || agent.Y > cfg.Height {
			a.kill(agent)
		}
	}

	// Obstacle movement and collisions. Off-screen obstacles are dropped only after
	// every obstacle has been tested.
	for j := range a.obstacles {
		o := &a.obstacles[j]
		o.Advance(cfg)
		for i := range a.agents {
			agent := &a.agents[i]
			if agent.Alive && o.Collides(cfg, agent.Box(cfg)) {
				a.kill(agent)
			}
		}
	}
	passed := a.dropOffScreen()

	// Scoring: every survivor passed each removed obstacle.
	if passed > 0 {
		for i := range a.agents {
			if a.agents[i].Alive {
				a.agents[i].Fitness += passed
			}
		}
	}

	a.tick++
	a.clock.Tick()
	a.present()

	if a.alive == 0 || (cfg.MaxTicks > 0 && a.tick >= cfg.MaxTicks) {
		a.done = true
	}
	return a.done, nil
}

func (a *Arena) kill(agent *Agent) {
	if agent.Kill() {
		a.alive--
	}
}

// dropOffScreen compacts the obstacle list in place and returns how many were removed.
func (a *Arena) dropOffScreen() int {
	kept := a.obstacles[:0]
	for _, o := range a.obstacles {
		if !o.OffScreen(&a.cfg) {
			kept = append(kept, o)
		}
	}
	removed := len(a.obstacles) - len(kept)
	a.obstacles = kept
	return removed
}

// present hands a snapshot to the sink. A sink that panics is detached; the run goes on.
func (a *Arena) present() {
	if a.sink == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			a.sinkErr = fmt.Errorf("presentation sink failed: %v", r)
			a.sink = nil
		}
	}()
	a.sink.Present(a.Snapshot())
}

// SinkErr returns the failure that detached the sink during the current run, if any.
func (a *Arena) SinkErr() error {
	return a.sinkErr
}

// Snapshot copies the current state for presentation.
func (a *Arena) Snapshot() Snapshot {
	s := Snapshot{
		Tick:          a.tick,
		Elapsed:       a.clock.Now(),
		Width:         a.cfg.Width,
		Height:        a.cfg.Height,
		AgentX:        a.cfg.AgentX,
		AgentSize:     a.cfg.AgentSize,
		ObstacleWidth: a.cfg.ObstacleWidth,
		Agents:        make([]AgentView, len(a.agents)),
		Obstacles:     make([]ObstacleView, len(a.obstacles)),
		Alive:         a.alive,
	}
	for i, ag := range a.agents {
		s.Agents[i] = AgentView{Y: ag.Y, Alive: ag.Alive, Fitness: ag.Fitness}
	}
	for i := range a.obstacles {
		o := &a.obstacles[i]
		s.Obstacles[i] = ObstacleView{X: o.X, GapTop: o.GapTop(), GapBottom: o.GapBottom()}
	}
	return s
}

// Fitness returns a copy of every agent's score in population order.
func (a *Arena) Fitness() []int {
	out := make([]int, len(a.agents))
	for i, ag := range a.agents {
		out[i] = ag.Fitness
	}
	return out
}

// Agents returns a copy of the agent records.
func (a *Arena) Agents() []Agent {
	return append([]Agent(nil), a.agents...)
}

// Obstacles returns a copy of the active obstacles in ascending X order.
func (a *Arena) Obstacles() []Obstacle {
	return append([]Obstacle(nil), a.obstacles...)
}

// AliveCount returns the number of agents still alive.
func (a *Arena) AliveCount() int {
	return a.alive
}

// Ticks returns how many ticks the current run has taken.
func (a *Arena) Ticks() int {
	return a.tick
}

// Done reports whether the current run has terminated.
func (a *Arena) Done() bool {
	return a.done
}
