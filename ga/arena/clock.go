package arena

import "time"

// Clock supplies simulated time to an Arena.
//
// Now must return a value that depends only on how many times Tick has been called,
// so that pacing never changes the outcome of a run. Tick may block to pace a
// visual run.
type Clock interface {
	Now() time.Duration
	Tick()
}

// StepClock advances by a fixed step on every tick and never blocks.
type StepClock struct {
	Step    time.Duration
	elapsed time.Duration
}

// NewStepClock returns a clock that advances by step per tick.
func NewStepClock(step time.Duration) *StepClock {
	return &StepClock{Step: step}
}

func (c *StepClock) Now() time.Duration {
	return c.elapsed
}

func (c *StepClock) Tick() {
	c.elapsed += c.Step
}
