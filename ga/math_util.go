package ga

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// argMax returns the index and value of the first maximum in values.
// Returns (-1, 0) if the slice is empty.
func argMax(values []int) (int, int) {
	if len(values) == 0 {
		return -1, 0
	}
	best := 0
	for i := 1; i < len(values); i++ {
		if values[i] > values[best] {
			best = i
		}
	}
	return best, values[best]
}

// toFloats converts integer scores for the gonum statistics helpers.
func toFloats(values []int) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	return out
}

// Mean calculates the average score. Returns 0 for an empty slice.
func Mean(values []int) float64 {
	if len(values) == 0 {
		return 0.0
	}
	return stat.Mean(toFloats(values), nil)
}

// Stdev calculates the sample standard deviation of the scores.
// Returns 0 for fewer than two values.
func Stdev(values []int) float64 {
	if len(values) < 2 {
		return 0.0
	}
	sd := stat.StdDev(toFloats(values), nil)
	if math.IsNaN(sd) {
		return 0.0
	}
	return sd
}
