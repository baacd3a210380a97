// Package ga trains a population of small feedforward controllers to play a
// side-scrolling obstacle game with a generational genetic algorithm.
//
// Each generation is evaluated in a single shared arena (package ga/arena): every bird
// sees the same obstacles at the same time, so scores are directly comparable. The scores
// then drive truncation selection with elitism, uniform crossover and uniform mutation
// over the controllers' parameters (package ga/nn).
//
// Basic usage:
//
//	// Load configuration
//	config, err := ga.LoadConfig("path/to/config")
//	if err != nil {
//		log.Fatalf("Error loading config: %v", err)
//	}
//
//	// Create a new population
//	pop, err := ga.NewPopulation(config, ga.WithReporter(ga.NewLogReporter(nil)))
//	if err != nil {
//		log.Fatalf("Error creating population: %v", err)
//	}
//
//	// Evolve for the configured number of generations
//	result, err := pop.Run(context.Background())
//	if err != nil {
//		log.Fatalf("Training failed: %v", err)
//	}
//	fmt.Printf("Best bird %d passed %d obstacles\n", result.BestIndex, result.BestFitness)
package ga
