package pairing

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("user-%d", i)
	}
	return out
}

func TestShuffleIsPermutation(t *testing.T) {
	src := rand.New(rand.NewPCG(1, 2))
	in := ids(9)

	out := Shuffle(in, src)

	require.Len(t, out, len(in))
	assert.ElementsMatch(t, in, out)
	assert.Equal(t, ids(9), in, "input must not be mutated")
}

func TestShuffleDeterministicWithSeed(t *testing.T) {
	a := Shuffle(ids(12), rand.New(rand.NewPCG(42, 42)))
	b := Shuffle(ids(12), rand.New(rand.NewPCG(42, 42)))
	assert.Equal(t, a, b)
}

func TestShuffleCoversAllOrderings(t *testing.T) {
	src := rand.New(rand.NewPCG(7, 11))
	seen := map[string]int{}
	for i := 0; i < 6000; i++ {
		out := Shuffle([]string{"a", "b", "c"}, src)
		seen[fmt.Sprint(out)]++
	}

	require.Len(t, seen, 6)
	for order, count := range seen {
		assert.InDelta(t, 1000, count, 200, "ordering %s is skewed", order)
	}
}

func TestShuffleSmallInputs(t *testing.T) {
	assert.Empty(t, Shuffle(nil, nil))
	assert.Equal(t, []string{"solo"}, Shuffle([]string{"solo"}, nil))
}

func TestPartition(t *testing.T) {
	for n := 0; n <= 9; n++ {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			pairs, leftover := Partition(ids(n))

			assert.Len(t, pairs, n/2)

			var flat []string
			for _, p := range pairs {
				assert.NotEqual(t, p[0], p[1])
				flat = append(flat, p[0], p[1])
			}
			assert.Len(t, flat, 2*(n/2))

			if n%2 == 1 {
				require.NotNil(t, leftover)
				assert.Equal(t, fmt.Sprintf("user-%d", n-1), *leftover)
				assert.False(t, slices.Contains(flat, *leftover))
			} else {
				assert.Nil(t, leftover)
			}
		})
	}
}

func TestUnpaired(t *testing.T) {
	members := []string{"a", "b", "c", "d", "e"}

	assert.Equal(t, []string{"a", "c", "e"}, Unpaired(members, []string{"d", "b"}))
	assert.Equal(t, members, Unpaired(members, nil))
	assert.Empty(t, Unpaired(members, []string{"e", "d", "c", "b", "a"}))
	// Paired ids that are no longer members are ignored.
	assert.Equal(t, []string{"a", "b"}, Unpaired([]string{"a", "b"}, []string{"ghost"}))
}

func TestUnpairedIsIdempotent(t *testing.T) {
	members := []string{"a", "b", "c", "d"}
	paired := []string{"c", "a"}

	first := Unpaired(members, paired)
	second := Unpaired(members, paired)
	reordered := Unpaired(members, []string{"a", "c"})

	assert.Equal(t, first, second)
	assert.Equal(t, first, reordered)
}
