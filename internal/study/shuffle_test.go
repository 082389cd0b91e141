package study

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShuffle(t *testing.T) {
	t.Parallel()

	t.Run("returns a permutation without touching the input", func(t *testing.T) {
		t.Parallel()
		in := []int{1, 2, 3, 4, 5, 6, 7}
		orig := append([]int(nil), in...)

		out := Shuffle(in, rand.New(rand.NewPCG(7, 7)))

		assert.Equal(t, orig, in)
		assert.ElementsMatch(t, orig, out)
	})

	t.Run("seeded source is reproducible", func(t *testing.T) {
		t.Parallel()
		in := []string{"a", "b", "c", "d", "e"}
		a := Shuffle(in, rand.New(rand.NewPCG(1, 2)))
		b := Shuffle(in, rand.New(rand.NewPCG(1, 2)))
		assert.Equal(t, a, b)
	})

	t.Run("produces more than one order", func(t *testing.T) {
		t.Parallel()
		rng := rand.New(rand.NewPCG(3, 4))
		seen := map[[3]int]int{}
		for i := 0; i < 600; i++ {
			out := Shuffle([]int{0, 1, 2}, rng)
			seen[[3]int{out[0], out[1], out[2]}]++
		}
		// All 3! orders should appear with a fair shuffle.
		require.Len(t, seen, 6)
		for order, n := range seen {
			assert.Greater(t, n, 50, "order %v is underrepresented", order)
		}
	})

	t.Run("small inputs", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, Shuffle([]int{}, nil))
		assert.Equal(t, []int{9}, Shuffle([]int{9}, nil))
	})
}
