package study

import (
	"math/rand/v2"
)

// Shuffle returns a uniformly random permutation of items using the
// Fisher-Yates algorithm: for i from the last index down to 1, swap item i
// with a uniformly chosen item in [0, i]. The input slice is not modified.
// A nil rng falls back to the package-level source.
func Shuffle[T any](items []T, rng *rand.Rand) []T {
	out := make([]T, len(items))
	copy(out, items)

	intN := rand.IntN
	if rng != nil {
		intN = rng.IntN
	}
	for i := len(out) - 1; i > 0; i-- {
		j := intN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
