package ga

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"github.com/baldhumanity/flappy-ga/ga/nn"
)

// ErrEliteSize is returned when more elites are requested than there are individuals.
var ErrEliteSize = errors.New("invalid elite size")

// crossoverMix is the probability that a child parameter comes from the second parent.
const crossoverMix = 0.5

// Reproduction creates controllers, either from scratch or from a ranked parent generation.
type Reproduction struct {
	Config *EvolutionConfig
	rng    *rand.Rand
}

// NewReproduction creates a new reproduction manager. rng drives initial weights,
// parent selection, crossover and mutation.
func NewReproduction(config *EvolutionConfig, rng *rand.Rand) *Reproduction {
	return &Reproduction{
		Config: config,
		rng:    rng,
	}
}

// CreateNewPopulation creates an initial population of random controllers.
func (r *Reproduction) CreateNewPopulation(shape nn.Shape, popSize int) ([]*nn.Controller, error) {
	if popSize <= 0 {
		return nil, fmt.Errorf("population size must be positive, got %d", popSize)
	}
	population := make([]*nn.Controller, popSize)
	for i := range population {
		c, err := nn.NewController(shape, r.rng)
		if err != nil {
			return nil, fmt.Errorf("failed to create controller %d: %w", i, err)
		}
		population[i] = c
	}
	return population, nil
}

type scoredController struct {
	controller *nn.Controller
	fitness    int
}

// rank pairs each controller with its fitness and sorts by fitness, best first.
// Ties keep population order.
func rank(population []*nn.Controller, fitnesses []int) []scoredController {
	ranked := make([]scoredController, len(population))
	for i, c := range population {
		ranked[i] = scoredController{controller: c, fitness: fitnesses[i]}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].fitness > ranked[j].fitness
	})
	return ranked
}

// NextGeneration produces a new population of the same size.
//
// The eliteSize fittest controllers are cloned unchanged into the first slots. Every
// other slot holds a mutated crossover child of two parents drawn uniformly, with
// replacement, from the better half of the ranked population. The input population is
// never modified.
func (r *Reproduction) NextGeneration(population []*nn.Controller, fitnesses []int, eliteSize int) ([]*nn.Controller, error) {
	if len(population) == 0 {
		return nil, fmt.Errorf("cannot reproduce an empty population")
	}
	if len(fitnesses) != len(population) {
		return nil, fmt.Errorf("got %d fitness values for %d controllers", len(fitnesses), len(population))
	}
	if eliteSize < 0 || eliteSize > len(population) {
		return nil, fmt.Errorf("%w: %d elites requested from %d controllers", ErrEliteSize, eliteSize, len(population))
	}

	ranked := rank(population, fitnesses)

	next := make([]*nn.Controller, 0, len(population))
	for _, sc := range ranked[:eliteSize] {
		next = append(next, sc.controller.Clone())
	}

	parents := ranked[:max(1, len(ranked)/2)]
	for len(next) < len(population) {
		parent1 := parents[r.rng.Intn(len(parents))].controller
		parent2 := parents[r.rng.Intn(len(parents))].controller

		child, err := r.Crossover(parent1, parent2)
		if err != nil {
			return nil, err
		}
		r.Mutate(child)
		next = append(next, child)
	}
	return next, nil
}

// Crossover returns a child that takes every parameter from parent1, except where an
// independent fair coin selects parent2's value instead.
func (r *Reproduction) Crossover(parent1, parent2 *nn.Controller) (*nn.Controller, error) {
	if err := nn.SameShape(parent1, parent2); err != nil {
		return nil, fmt.Errorf("crossover: %w", err)
	}
	child := parent1.Clone()
	donor := parent2.Params()
	for i, buf := range child.Params() {
		selectWhere(buf, donor[i], bernoulliMask(r.rng, len(buf), crossoverMix))
	}
	return child, nil
}

// Mutate perturbs each parameter of c in place with probability MutationRate by a
// value drawn uniformly from [-MutationStrength, MutationStrength].
func (r *Reproduction) Mutate(c *nn.Controller) {
	for _, buf := range c.Params() {
		mask := bernoulliMask(r.rng, len(buf), r.Config.MutationRate)
		perturbWhere(r.rng, buf, mask, r.Config.MutationStrength)
	}
}
