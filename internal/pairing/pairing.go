// Package pairing holds the pure pairing algorithms: shuffling member ids,
// cutting them into pairs and computing who is still unpaired.
package pairing

import (
	"math/rand/v2"
)

// Source is the randomness Shuffle draws from. *rand.Rand satisfies it.
type Source interface {
	IntN(n int) int
}

type defaultSource struct{}

func (defaultSource) IntN(n int) int { return rand.IntN(n) }

// DefaultSource uses the process-wide generator.
var DefaultSource Source = defaultSource{}

// Shuffle returns a uniformly shuffled copy of ids (Fisher-Yates).
func Shuffle(ids []string, src Source) []string {
	if src == nil {
		src = DefaultSource
	}
	out := make([]string, len(ids))
	copy(out, ids)
	for i := len(out) - 1; i > 0; i-- {
		j := src.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Partition cuts ids into consecutive pairs. With an odd count the last id
// is returned as leftover.
func Partition(ids []string) (pairs [][2]string, leftover *string) {
	pairs = make([][2]string, 0, len(ids)/2)
	for i := 0; i+1 < len(ids); i += 2 {
		pairs = append(pairs, [2]string{ids[i], ids[i+1]})
	}
	if len(ids)%2 == 1 {
		last := ids[len(ids)-1]
		leftover = &last
	}
	return pairs, leftover
}

// Unpaired returns the members whose id is not in paired, keeping member order.
func Unpaired(memberIDs []string, paired []string) []string {
	taken := make(map[string]struct{}, len(paired))
	for _, id := range paired {
		taken[id] = struct{}{}
	}
	out := make([]string, 0, len(memberIDs))
	for _, id := range memberIDs {
		if _, ok := taken[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
