package nn

import "math"

// sigmoidClamp bounds the pre-activation so that Sigmoid stays strictly inside (0, 1)
// in float64 arithmetic. Beyond ±30 the logistic curve rounds to exactly 0 or 1.
const sigmoidClamp = 30.0

// Sigmoid is the logistic squashing function 1 / (1 + exp(-x)).
func Sigmoid(x float64) float64 {
	x = clamp(x, -sigmoidClamp, sigmoidClamp)
	return 1.0 / (1.0 + math.Exp(-x))
}

// clamp restricts a value to a given range [minVal, maxVal].
func clamp(value, minVal, maxVal float64) float64 {
	return math.Max(minVal, math.Min(value, maxVal))
}
