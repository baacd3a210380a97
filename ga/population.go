package ga

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/baldhumanity/flappy-ga/ga/arena"
	"github.com/baldhumanity/flappy-ga/ga/nn"
)

// Option configures a Population.
type Option func(*Population)

// WithSink forwards a presentation sink to every arena run.
func WithSink(sink arena.Sink) Option {
	return func(p *Population) {
		p.arenaOpts = append(p.arenaOpts, arena.WithSink(sink))
	}
}

// WithClock forwards a clock to every arena run.
func WithClock(clock arena.Clock) Option {
	return func(p *Population) {
		p.arenaOpts = append(p.arenaOpts, arena.WithClock(clock))
	}
}

// WithReporter adds a progress reporter.
func WithReporter(r Reporter) Option {
	return func(p *Population) {
		p.Reporters = append(p.Reporters, r)
	}
}

// Population holds the state of the evolutionary process between generations.
type Population struct {
	Config       *Config
	Controllers  []*nn.Controller // Current generation, in evaluation order.
	Generation   int              // Number of generations evolved so far.
	Seed         int64            // Effective seed of the run.
	Best         *nn.Controller   // Best controller seen so far (independent copy).
	BestFitness  int
	Reproduction *Reproduction
	Reporters    []Reporter

	courseSeed int64
	arenaOpts  []arena.Option
}

// NewPopulation validates config and creates the first generation of random controllers.
func NewPopulation(config *Config, opts ...Option) (*Population, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	seed := config.Population.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	p := &Population{
		Config:     config,
		Seed:       seed,
		courseSeed: seed + 1,
	}
	p.Reproduction = NewReproduction(&config.Evolution, rand.New(rand.NewSource(seed)))
	for _, opt := range opts {
		opt(p)
	}

	controllers, err := p.Reproduction.CreateNewPopulation(config.Network.Shape(), config.Population.PopSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create initial population: %w", err)
	}
	p.Controllers = controllers
	return p, nil
}

// Evaluate runs the current generation through one shared arena and returns the fitness
// of every controller, in population order. Controllers are not modified.
//
// Every evaluation of a run replays the same obstacle course, so an elite scores the same
// in the generation it is carried into.
func (p *Population) Evaluate(ctx context.Context) ([]int, error) {
	a, err := arena.New(p.Config.Physics, rand.New(rand.NewSource(p.courseSeed)), p.arenaOpts...)
	if err != nil {
		return nil, err
	}
	controllers := make([]arena.Controller, len(p.Controllers))
	for i, c := range p.Controllers {
		controllers[i] = c
	}
	return a.Run(ctx, controllers)
}

// RunGeneration evaluates the current generation, reports it, and replaces it with the next.
func (p *Population) RunGeneration(ctx context.Context) (GenerationStats, error) {
	start := time.Now()

	fitnesses, err := p.Evaluate(ctx)
	if err != nil {
		return GenerationStats{}, fmt.Errorf("fitness evaluation failed in generation %d: %w", p.Generation, err)
	}

	bestIndex, bestFitness := argMax(fitnesses)
	if p.Best == nil || bestFitness > p.BestFitness {
		p.Best = p.Controllers[bestIndex].Clone()
		p.BestFitness = bestFitness
	}

	next, err := p.Reproduction.NextGeneration(p.Controllers, fitnesses, p.Config.Evolution.EliteSize)
	if err != nil {
		return GenerationStats{}, fmt.Errorf("reproduction failed in generation %d: %w", p.Generation, err)
	}

	stats := GenerationStats{
		Generation: p.Generation,
		BestIndex:  bestIndex,
		Max:        bestFitness,
		Mean:       Mean(fitnesses),
		Stdev:      Stdev(fitnesses),
		BestEver:   p.BestFitness,
		Duration:   time.Since(start),
	}
	p.Controllers = next
	p.Generation++

	for _, r := range p.Reporters {
		r.GenerationDone(stats)
	}
	return stats, nil
}

// Run evolves the configured number of generations, then evaluates the final
// generation once and returns its best controller.
func (p *Population) Run(ctx context.Context) (Result, error) {
	for p.Generation < p.Config.Population.Generations {
		if _, err := p.RunGeneration(ctx); err != nil {
			return Result{}, err
		}
	}

	fitnesses, err := p.Evaluate(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("final evaluation failed: %w", err)
	}
	bestIndex, bestFitness := argMax(fitnesses)
	if bestFitness > p.BestFitness {
		p.Best = p.Controllers[bestIndex].Clone()
		p.BestFitness = bestFitness
	}

	result := Result{
		Generations: p.Generation,
		BestIndex:   bestIndex,
		BestFitness: bestFitness,
		Fitnesses:   fitnesses,
	}
	for _, r := range p.Reporters {
		r.Finished(result)
	}
	return result, nil
}
