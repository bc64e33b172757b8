package shuffleplan

import "fmt"

// PostShufflePartition describes one reduce-side partition: a contiguous
// range of pre-shuffle partitions it must read, and an optional restriction
// to a single upstream map task's output across that whole range.
//
//nolint:govet // fieldalignment: struct layout optimized for readability
type PostShufflePartition struct {
	// PostIndex is this partition's position in its PostShufflePlan. It
	// always equals the partition's array index.
	PostIndex uint32

	// PreStart is the first pre-shuffle partition id (inclusive) this
	// partition reads.
	PreStart uint32

	// PreEnd is the last pre-shuffle partition id (exclusive) this partition
	// reads.
	PreEnd uint32

	// MapTaskRestriction, when set, limits reads across [PreStart, PreEnd) to
	// a single upstream map task's output. Used to implement broadcast plans
	// that preserve the peer side's map-level physical partitioning.
	MapTaskRestriction *uint32
}

// Validate checks this partition's invariants against its declared
// pre-shuffle partition count P: PreStart < PreEnd <= P.
func (p PostShufflePartition) Validate(preShuffleCount uint32) error {
	if p.PreStart >= p.PreEnd {
		return fmt.Errorf("shuffleplan: partition %d has preStart %d >= preEnd %d", p.PostIndex, p.PreStart, p.PreEnd)
	}
	if p.PreEnd > preShuffleCount {
		return fmt.Errorf("shuffleplan: partition %d preEnd %d exceeds pre-shuffle count %d", p.PostIndex, p.PreEnd, preShuffleCount)
	}
	return nil
}

// PostShufflePlan is the ordered sequence of post-shuffle partitions produced
// for one exchange. In coalesce mode the union of [PreStart, PreEnd) ranges
// forms a contiguous, non-overlapping cover of [0, P). In broadcast mode
// every partition covers the full [0, P) range and both plans of the pair
// have M partitions, M being the large side's upstream map-task count: the
// large side's partitions carry distinct MapTaskRestriction values covering
// [0, M), and the small side's partitions carry no restriction.
type PostShufflePlan struct {
	Partitions      []PostShufflePartition
	PreShuffleCount uint32
}

// Len returns the number of post-shuffle partitions in the plan.
func (p PostShufflePlan) Len() int { return len(p.Partitions) }

// Validate checks structural invariants shared by both coalesce and
// broadcast plans: PostIndex matches array position, and every partition is
// individually well-formed against PreShuffleCount.
func (p PostShufflePlan) Validate() error {
	for i, part := range p.Partitions {
		if part.PostIndex != uint32(i) { //nolint:gosec // i bounded by slice length
			return fmt.Errorf("shuffleplan: partition at index %d has PostIndex %d", i, part.PostIndex)
		}
		if err := part.Validate(p.PreShuffleCount); err != nil {
			return err
		}
	}
	return nil
}

// Mapping builds the CoalescedMapping owner-lookup index for this plan's
// partitions. Only valid for a coalesce-mode plan: a broadcast plan has no
// single owner per pre-partition, since every partition covers the full
// range, so Mapping returns an error for one.
func (p PostShufflePlan) Mapping() (*CoalescedMapping, error) {
	if p.IsBroadcast() {
		return nil, fmt.Errorf("shuffleplan: cannot build a CoalescedMapping for a broadcast plan")
	}
	starts := make([]uint32, len(p.Partitions))
	for i, part := range p.Partitions {
		starts[i] = part.PreStart
	}
	return NewCoalescedMapping(p.PreShuffleCount, starts)
}

// IsBroadcast reports whether this plan is a broadcast-mode plan: every
// partition spans the full [0, P) range, and either at least one partition
// carries a MapTaskRestriction (the large side's shape) or there is more
// than one partition (the small side's shape: many full-range reads with no
// restriction). A single full-range partition with no restriction is the
// trivial one-partition plan, not broadcast — the one case this shape
// cannot distinguish from a broadcast pair with M == 1, since both reduce
// to "read everything once." A plan with zero partitions is never
// considered broadcast.
func (p PostShufflePlan) IsBroadcast() bool {
	if len(p.Partitions) == 0 {
		return false
	}
	anyRestricted := false
	for _, part := range p.Partitions {
		if part.PreStart != 0 || part.PreEnd != p.PreShuffleCount {
			return false
		}
		if part.MapTaskRestriction != nil {
			anyRestricted = true
		}
	}
	return anyRestricted || len(p.Partitions) > 1
}

// newCoalescePlan builds a coalesce-mode PostShufflePlan from sorted start
// indices, expanding each [startIndices[i], startIndices[i+1]) range (with
// startIndices[len] implicitly P) into a PostShufflePartition with no map-task
// restriction.
func newCoalescePlan(preShuffleCount uint32, startIndices []uint32) PostShufflePlan {
	partitions := make([]PostShufflePartition, len(startIndices))
	for i, start := range startIndices {
		end := preShuffleCount
		if i+1 < len(startIndices) {
			end = startIndices[i+1]
		}
		partitions[i] = PostShufflePartition{
			PostIndex: uint32(i), //nolint:gosec // i bounded by startIndices length
			PreStart:  start,
			PreEnd:    end,
		}
	}
	return PostShufflePlan{Partitions: partitions, PreShuffleCount: preShuffleCount}
}

// newBroadcastSmallPlan builds the small-side half of a broadcast plan pair:
// m partitions, each covering the full [0, P) pre-shuffle range with no map
// task restriction, so every reducer fetches the entire small side.
func newBroadcastSmallPlan(preShuffleCount uint32, m int) PostShufflePlan {
	partitions := make([]PostShufflePartition, m)
	for i := range partitions {
		partitions[i] = PostShufflePartition{
			PostIndex: uint32(i), //nolint:gosec // i bounded by m
			PreStart:  0,
			PreEnd:    preShuffleCount,
		}
	}
	return PostShufflePlan{Partitions: partitions, PreShuffleCount: preShuffleCount}
}

// newBroadcastLargePlan builds the large-side half of a broadcast plan pair:
// m partitions, each covering the full [0, P) pre-shuffle range, one per
// consuming map task. MapTaskRestriction on partition i identifies which of
// the m map tasks that copy serves, preserving the large side's physical
// partitioning instead of reshuffling it.
func newBroadcastLargePlan(preShuffleCount uint32, m int) PostShufflePlan {
	partitions := make([]PostShufflePartition, m)
	for i := range partitions {
		restriction := uint32(i) //nolint:gosec // i bounded by m
		partitions[i] = PostShufflePartition{
			PostIndex:          uint32(i), //nolint:gosec // i bounded by m
			PreStart:           0,
			PreEnd:             preShuffleCount,
			MapTaskRestriction: &restriction,
		}
	}
	return PostShufflePlan{Partitions: partitions, PreShuffleCount: preShuffleCount}
}

// newTrivialPlan builds the single-partition plan covering [0, P) used when
// no statistics are available to coalesce against.
func newTrivialPlan(preShuffleCount uint32) PostShufflePlan {
	return PostShufflePlan{
		Partitions: []PostShufflePartition{{
			PostIndex: 0,
			PreStart:  0,
			PreEnd:    preShuffleCount,
		}},
		PreShuffleCount: preShuffleCount,
	}
}
