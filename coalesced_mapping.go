package shuffleplan

import (
	"fmt"
	"sort"
)

// CoalescedMapping is a derived, read-mostly index answering "which
// post-shuffle partition owns pre-partition p?" in O(log n) time, built once
// from a pre-shuffle partition count and the coalescer's sorted start
// indices. It is the data-plane counterpart of a PostShufflePlan: useful when
// a caller needs to route a single pre-partition id to its owner without
// walking the whole plan.
type CoalescedMapping struct {
	startIndices []uint32
	preShuffle   uint32
}

// NewCoalescedMapping validates (P, startIndices) against the invariants in
// the data model — startIndices[0] == 0, strictly increasing, every entry
// < P — and returns the resulting mapping. CoalescedMapping holds a slice and
// so is not comparable with ==; reflect.DeepEqual compares two mappings
// structurally over (P, startIndices).
func NewCoalescedMapping(preShuffleCount uint32, startIndices []uint32) (*CoalescedMapping, error) {
	if preShuffleCount == 0 {
		return nil, fmt.Errorf("shuffleplan: pre-shuffle partition count must be >= 1")
	}
	if len(startIndices) == 0 || startIndices[0] != 0 {
		return nil, fmt.Errorf("shuffleplan: startIndices must begin with 0")
	}
	for i, idx := range startIndices {
		if idx >= preShuffleCount {
			return nil, fmt.Errorf("shuffleplan: startIndices[%d] = %d is not < P (%d)", i, idx, preShuffleCount)
		}
		if i > 0 && idx <= startIndices[i-1] {
			return nil, fmt.Errorf("shuffleplan: startIndices must be strictly increasing, got %d after %d", idx, startIndices[i-1])
		}
	}

	owned := make([]uint32, len(startIndices))
	copy(owned, startIndices)
	return &CoalescedMapping{startIndices: owned, preShuffle: preShuffleCount}, nil
}

// GetPostFor returns the post-shuffle partition index owning pre-partition
// pre, and false if pre is out of range [0, P).
func (m *CoalescedMapping) GetPostFor(pre uint32) (uint32, bool) {
	if pre >= m.preShuffle {
		return 0, false
	}
	// The owner of pre is the largest i such that startIndices[i] <= pre.
	// sort.Search finds the first index where the predicate holds, so we
	// search for the first start strictly greater than pre and step back one.
	i := sort.Search(len(m.startIndices), func(i int) bool {
		return m.startIndices[i] > pre
	})
	return uint32(i - 1), true //nolint:gosec // i >= 1 always: startIndices[0] == 0 <= pre
}

// NumPostPartitions returns the number of post-shuffle partitions this
// mapping owns pre-partitions across.
func (m *CoalescedMapping) NumPostPartitions() int { return len(m.startIndices) }

// PreShuffleCount returns P, the pre-shuffle partition count this mapping
// was built against.
func (m *CoalescedMapping) PreShuffleCount() uint32 { return m.preShuffle }
