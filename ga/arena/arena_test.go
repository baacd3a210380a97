package arena

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baldhumanity/flappy-ga/ga/nn"
)

type constController float64

func (c constController) Forward(inputs []float64) ([]float64, error) {
	return []float64{float64(c)}, nil
}

type failingController struct{}

func (failingController) Forward([]float64) ([]float64, error) {
	return nil, errors.New("boom")
}

const (
	never  = constController(0.1)
	always = constController(0.9)
)

func controllers(n int, c Controller) []Controller {
	out := make([]Controller, n)
	for i := range out {
		out[i] = c
	}
	return out
}

func newTestArena(t *testing.T, cfg Config, opts ...Option) *Arena {
	t.Helper()
	a, err := New(cfg, rand.New(rand.NewSource(1)), opts...)
	require.NoError(t, err)
	return a
}

func TestObstacleGeometry(t *testing.T) {
	cfg := DefaultConfig()
	o := Obstacle{X: cfg.AgentX, GapCenter: 300, GapHalf: 65}

	top, bottom := o.Top(&cfg), o.Bottom(&cfg)
	assert.Equal(t, 0.0, top.Y)
	assert.Equal(t, 235.0, top.Y+top.H)
	assert.Equal(t, 365.0, bottom.Y)
	assert.Equal(t, cfg.Height, bottom.Y+bottom.H)

	inGap := Agent{Y: 250, Alive: true}
	assert.False(t, o.Collides(&cfg, inGap.Box(&cfg)))

	touchingTop := Agent{Y: 234, Alive: true}
	assert.True(t, o.Collides(&cfg, touchingTop.Box(&cfg)))

	// Box [345, 365) ends exactly where the bottom pipe starts.
	edgeBottom := Agent{Y: 345, Alive: true}
	assert.False(t, o.Collides(&cfg, edgeBottom.Box(&cfg)))

	inBottom := Agent{Y: 346, Alive: true}
	assert.True(t, o.Collides(&cfg, inBottom.Box(&cfg)))
}

func TestNewObstacleGapWithinMargins(t *testing.T) {
	cfg := DefaultConfig()
	rng := rand.New(rand.NewSource(5))
	for i := 0; i < 1000; i++ {
		o := NewObstacle(&cfg, cfg.Width, rng)
		assert.GreaterOrEqual(t, o.GapCenter, float64(cfg.GapMargin))
		assert.LessOrEqual(t, o.GapCenter, cfg.Height-float64(cfg.GapMargin))
		assert.Equal(t, 65.0, o.GapHalf)
		assert.Equal(t, cfg.Width, o.X)
	}
}

func TestSenseWithoutObstacleUsesSentinels(t *testing.T) {
	cfg := DefaultConfig()
	agent := Agent{Y: 300, Velocity: -5, Alive: true}

	got := Sense(&cfg, &agent, nil)
	require.Len(t, got, SensorCount)
	assert.Equal(t, []float64{0.5, -0.5, 0, 1.0, 1.0}, got)

	// An obstacle already behind the agent counts as passed.
	passed := []Obstacle{{X: -20, GapCenter: 300, GapHalf: 65}}
	assert.Equal(t, []float64{0, 1.0, 1.0}, Sense(&cfg, &agent, passed)[2:])
}

func TestSenseUsesNearestUnpassedObstacle(t *testing.T) {
	cfg := DefaultConfig()
	agent := Agent{Y: 150, Alive: true}
	obstacles := []Obstacle{
		{X: -20, GapCenter: 500, GapHalf: 65}, // right edge 40 < 50: passed
		{X: 10, GapCenter: 300, GapHalf: 65},  // right edge 70 > 50: nearest
		{X: 250, GapCenter: 200, GapHalf: 65},
	}

	got := Sense(&cfg, &agent, obstacles)
	assert.InDelta(t, 150.0/600, got[0], 1e-12)
	assert.InDelta(t, 0.0, got[1], 1e-12)
	assert.InDelta(t, 235.0/600, got[2], 1e-12)
	assert.InDelta(t, 365.0/600, got[3], 1e-12)
	assert.InDelta(t, (10.0-50)/400, got[4], 1e-12)
}

func TestAgentLeavingTopDiesOnThatTick(t *testing.T) {
	cfg := DefaultConfig()
	a := newTestArena(t, cfg)
	a.Reset(2)
	// After integration: velocity 0.5, Y = -1.
	a.agents[0].Y = -1.5

	done, err := a.Step(controllers(2, never))
	require.NoError(t, err)
	assert.False(t, done)

	agents := a.Agents()
	assert.InDelta(t, -1.0, agents[0].Y, 1e-12)
	assert.False(t, agents[0].Alive)
	assert.True(t, agents[1].Alive)
	assert.Equal(t, 1, a.AliveCount())

	// A dead agent is frozen: no more physics, no more score.
	a.obstacles = append(a.obstacles, Obstacle{X: -cfg.ObstacleWidth + 1, GapCenter: 300, GapHalf: 65})
	_, err = a.Step(controllers(2, never))
	require.NoError(t, err)
	agents = a.Agents()
	assert.InDelta(t, -1.0, agents[0].Y, 1e-12)
	assert.Equal(t, 0, agents[0].Fitness)
	assert.Equal(t, 1, agents[1].Fitness)
}

func TestAgentBelowFloorDies(t *testing.T) {
	cfg := DefaultConfig()
	a := newTestArena(t, cfg)
	a.Reset(1)
	a.agents[0].Y = cfg.Height

	_, err := a.Step(controllers(1, never))
	require.NoError(t, err)
	assert.False(t, a.Agents()[0].Alive)
	assert.True(t, a.Done())
}

func TestJumpSetsVelocityBeforeIntegration(t *testing.T) {
	cfg := DefaultConfig()
	a := newTestArena(t, cfg)
	a.Reset(2)

	_, err := a.Step([]Controller{always, never})
	require.NoError(t, err)

	agents := a.Agents()
	assert.InDelta(t, cfg.JumpVelocity+cfg.Gravity, agents[0].Velocity, 1e-12)
	assert.InDelta(t, cfg.Height/2+cfg.JumpVelocity+cfg.Gravity, agents[0].Y, 1e-12)
	assert.InDelta(t, cfg.Gravity, agents[1].Velocity, 1e-12)
}

func TestFallingPopulationDiesBeforeFirstObstacle(t *testing.T) {
	cfg := DefaultConfig()
	a := newTestArena(t, cfg)

	fitness, err := a.Run(context.Background(), controllers(3, never))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 0}, fitness)
	// y(n) = 300 + 0.5*n(n+1)/2 first exceeds 600 at n = 35.
	assert.Equal(t, 35, a.Ticks())
	assert.Empty(t, a.Obstacles())
}

func TestSpawnInterval(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Gravity = 0
	cfg.MaxTicks = 200
	a := newTestArena(t, cfg)
	a.Reset(1)

	var spawnTick int
	for a.Ticks() < 200 && spawnTick == 0 {
		_, err := a.Step(controllers(1, never))
		require.NoError(t, err)
		if len(a.Obstacles()) > 0 {
			spawnTick = a.Ticks()
		}
	}
	// Ticks are 1/60 s; the spawn check at tick index 90 sees 1499.99994ms, at 91 it sees 1516ms.
	assert.Equal(t, 92, spawnTick)
	assert.InDelta(t, cfg.Width-cfg.ObstacleSpeed, a.Obstacles()[0].X, 1e-9)
}

func TestPassedObstacleCreditsSurvivorsOnly(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Gravity = 0
	a := newTestArena(t, cfg)
	a.Reset(3)
	a.agents[2].Alive = false
	a.alive = 2
	a.obstacles = []Obstacle{
		{X: -cfg.ObstacleWidth - 1, GapCenter: 300, GapHalf: 65},
		{X: -cfg.ObstacleWidth + 1, GapCenter: 300, GapHalf: 65},
		{X: 200, GapCenter: 300, GapHalf: 65},
	}

	_, err := a.Step(controllers(3, never))
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2, 0}, a.Fitness())
	require.Len(t, a.Obstacles(), 1)
	assert.InDelta(t, 200-cfg.ObstacleSpeed, a.Obstacles()[0].X, 1e-12)
}

func TestObstacleCollisionIndependentOfOrder(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Gravity = 0
	first := Obstacle{X: cfg.AgentX, GapCenter: 100, GapHalf: 65}
	second := Obstacle{X: cfg.AgentX + 10, GapCenter: 500, GapHalf: 65}

	for _, order := range [][]Obstacle{{first, second}, {second, first}} {
		a := newTestArena(t, cfg)
		a.Reset(2)
		a.agents[1].Y = 10 // inside both top pipes
		a.obstacles = append(a.obstacles, order...)

		_, err := a.Step(controllers(2, never))
		require.NoError(t, err)

		agents := a.Agents()
		assert.False(t, agents[0].Alive, "agent at y=300 hits both obstacles")
		assert.False(t, agents[1].Alive, "agent at y=10 hits both top pipes")
		assert.Equal(t, 0, a.AliveCount())
		assert.True(t, a.Done())
	}
}

func TestRunIsDeterministicForSeed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxTicks = 3000
	shape := nn.Shape{Inputs: SensorCount, Hidden: 6, Outputs: 1}

	rng := rand.New(rand.NewSource(11))
	ctrls := make([]Controller, 30)
	originals := make([]*nn.Controller, len(ctrls))
	for i := range ctrls {
		c, err := nn.NewController(shape, rng)
		require.NoError(t, err)
		ctrls[i] = c
		originals[i] = c.Clone()
	}

	run := func() []int {
		a, err := New(cfg, rand.New(rand.NewSource(99)))
		require.NoError(t, err)
		fitness, err := a.Run(context.Background(), ctrls)
		require.NoError(t, err)
		return fitness
	}

	first := run()
	assert.Len(t, first, len(ctrls))
	assert.Equal(t, first, run())

	for i, c := range ctrls {
		assert.True(t, c.(*nn.Controller).Equal(originals[i]), "controller %d changed during evaluation", i)
	}
}

func TestRunStopsAtMaxTicks(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Gravity = 0
	cfg.MaxTicks = 10
	a := newTestArena(t, cfg)

	fitness, err := a.Run(context.Background(), controllers(2, never))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0}, fitness)
	assert.Equal(t, 10, a.Ticks())
	assert.Equal(t, 2, a.AliveCount())
}

func TestRunEmptyPopulation(t *testing.T) {
	a := newTestArena(t, DefaultConfig())
	fitness, err := a.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, fitness)
}

func TestRunControllerErrorIsFatal(t *testing.T) {
	a := newTestArena(t, DefaultConfig())
	_, err := a.Run(context.Background(), []Controller{never, failingController{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "agent 1")

	shape := nn.Shape{Inputs: 3, Hidden: 2, Outputs: 1}
	wrong, err := nn.NewController(shape, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	_, err = a.Run(context.Background(), []Controller{wrong})
	require.ErrorIs(t, err, nn.ErrShapeMismatch)
}

func TestStepControllerCountMismatch(t *testing.T) {
	a := newTestArena(t, DefaultConfig())
	a.Reset(2)
	_, err := a.Step(controllers(1, never))
	require.ErrorIs(t, err, ErrControllerCount)
}

func TestRunHonorsCancellation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Gravity = 0
	ctx, cancel := context.WithCancel(context.Background())
	ticks := 0
	sink := SinkFunc(func(s Snapshot) {
		ticks++
		if s.Tick == 5 {
			cancel()
		}
	})
	a := newTestArena(t, cfg, WithSink(sink))

	fitness, err := a.Run(ctx, controllers(1, never))
	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, fitness)
	assert.Equal(t, 5, ticks)
}

func TestSinkReceivesSnapshotEveryTick(t *testing.T) {
	cfg := DefaultConfig()
	var frames []Snapshot
	a := newTestArena(t, cfg, WithSink(SinkFunc(func(s Snapshot) {
		frames = append(frames, s)
	})))

	_, err := a.Run(context.Background(), controllers(4, never))
	require.NoError(t, err)
	require.Len(t, frames, a.Ticks())

	assert.Equal(t, 1, frames[0].Tick)
	assert.Equal(t, 4, frames[0].Alive)
	assert.Len(t, frames[0].Agents, 4)
	assert.Equal(t, cfg.TickDuration(), frames[0].Elapsed)
	assert.Equal(t, 0, frames[len(frames)-1].Alive)
}

func TestPanickingSinkDoesNotAbortRun(t *testing.T) {
	cfg := DefaultConfig()
	headless := newTestArena(t, cfg)
	want, err := headless.Run(context.Background(), controllers(3, never))
	require.NoError(t, err)

	calls := 0
	a := newTestArena(t, cfg, WithSink(SinkFunc(func(Snapshot) {
		calls++
		panic("display gone")
	})))
	got, err := a.Run(context.Background(), controllers(3, never))
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, 1, calls)
	assert.Error(t, a.SinkErr())
}

type countingClock struct {
	StepClock
	ticks int
}

func (c *countingClock) Tick() {
	c.ticks++
	c.StepClock.Tick()
}

func TestCustomClockIsTicked(t *testing.T) {
	cfg := DefaultConfig()
	clock := &countingClock{StepClock: StepClock{Step: cfg.TickDuration()}}
	a := newTestArena(t, cfg, WithClock(clock))

	_, err := a.Run(context.Background(), controllers(1, never))
	require.NoError(t, err)
	assert.Equal(t, a.Ticks(), clock.ticks)
	assert.Equal(t, time.Duration(clock.ticks)*cfg.TickDuration(), clock.Now())
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.Width = 0 }},
		{"zero speed", func(c *Config) { c.ObstacleSpeed = 0 }},
		{"gap too large", func(c *Config) { c.GapSize = c.Height }},
		{"margin too large", func(c *Config) { c.GapMargin = 400 }},
		{"zero spawn interval", func(c *Config) { c.SpawnInterval = 0 }},
		{"zero tick rate", func(c *Config) { c.TickRate = 0 }},
		{"agent outside", func(c *Config) { c.AgentX = c.Width }},
		{"negative max ticks", func(c *Config) { c.MaxTicks = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			require.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
			_, err := New(cfg, rand.New(rand.NewSource(1)))
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}
