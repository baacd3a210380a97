package ga

import "math/rand"

// bernoulliMask returns n independent coin flips that are true with probability p.
func bernoulliMask(rng *rand.Rand, n int, p float64) []bool {
	mask := make([]bool, n)
	for i := range mask {
		mask[i] = rng.Float64() < p
	}
	return mask
}

// selectWhere copies src[i] into dst[i] wherever mask[i] is set.
func selectWhere(dst, src []float64, mask []bool) {
	for i, m := range mask {
		if m {
			dst[i] = src[i]
		}
	}
}

// perturbWhere adds a value drawn uniformly from [-strength, strength] to dst[i]
// wherever mask[i] is set.
func perturbWhere(rng *rand.Rand, dst []float64, mask []bool, strength float64) {
	for i, m := range mask {
		if m {
			dst[i] += (rng.Float64()*2 - 1) * strength
		}
	}
}
