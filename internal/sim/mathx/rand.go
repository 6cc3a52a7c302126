package mathx

import "math/rand/v2"

// IntRange returns a uniform int in [lo, hi). When the range is empty it returns lo.
func IntRange(r *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.IntN(hi-lo)
}

// Angle returns a uniform angle in [0, 2π).
func Angle(r *rand.Rand) float64 {
	return r.Float64() * TwoPi
}

// Pick returns a uniformly chosen element. Panics on an empty slice.
func Pick[T any](r *rand.Rand, xs []T) T {
	return xs[r.IntN(len(xs))]
}
