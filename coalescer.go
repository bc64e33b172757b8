package shuffleplan

import (
	"fmt"
)

// minEffectiveTargetFloor is the smallest effective target the minPartitions
// cap can ever produce, regardless of how small total/minPartitions works
// out to. It keeps a generous minPartitions request from forcing a
// pathologically tiny effective target on small inputs.
const minEffectiveTargetFloor = 16

// Coalesce runs the greedy single-pass byte-coalescing policy over stats,
// all of which must report the same pre-shuffle partition count P. It
// returns the sorted start indices of the resulting post-shuffle partitions:
// startIndices[0] is always 0, and the partition owning pre-partition range
// [startIndices[i], startIndices[i+1]) (or [startIndices[i], P) for the
// last entry) is cut the moment its accumulated byte total reaches the
// effective target.
//
// targetBytes is the advisory per-partition byte budget. minPartitions, when
// non-nil, caps the effective target from above:
// effectiveTarget = min(targetBytes, max(ceil(total/minPartitions), 16)),
// pushing toward more, smaller partitions without ever making a partition's
// target larger than targetBytes.
func Coalesce(stats []MapOutputStatistics, targetBytes uint64, minPartitions *uint32) ([]uint32, error) {
	if len(stats) == 0 {
		return []uint32{0}, nil
	}

	preShuffleCount := stats[0].NumPartitions()
	if preShuffleCount == 0 {
		return nil, fmt.Errorf("shuffleplan: map output statistics report zero pre-shuffle partitions")
	}
	for i, s := range stats {
		if s.NumPartitions() != preShuffleCount {
			return nil, fmt.Errorf("shuffleplan: stats[%d] reports %d pre-shuffle partitions, want %d", i, s.NumPartitions(), preShuffleCount)
		}
	}

	perPartition := make([]uint64, preShuffleCount)
	var total uint64
	for _, s := range stats {
		for p, b := range s.BytesByPartition {
			perPartition[p] += b
			total += b
		}
	}

	effectiveTarget := targetBytes
	if minPartitions != nil && *minPartitions > 0 {
		capByMin := ceilDiv(total, uint64(*minPartitions))
		if capByMin < minEffectiveTargetFloor {
			capByMin = minEffectiveTargetFloor
		}
		if capByMin < effectiveTarget {
			effectiveTarget = capByMin
		}
	}

	startIndices := []uint32{0}
	var acc uint64
	for p := uint32(0); p < preShuffleCount; p++ {
		acc += perPartition[p]
		if acc >= effectiveTarget && p < preShuffleCount-1 {
			startIndices = append(startIndices, p+1)
			acc = 0
		}
	}
	return startIndices, nil
}

// ceilDiv returns ceil(a / b) for b > 0.
func ceilDiv(a, b uint64) uint64 {
	if a == 0 {
		return 0
	}
	return (a-1)/b + 1
}
