package shuffleplan

import (
	"reflect"
	"testing"
)

func statsOf(bytesByPartition ...uint64) MapOutputStatistics {
	return MapOutputStatistics{StageID: "s", BytesByPartition: bytesByPartition}
}

func TestCoalesceBasicThreshold(t *testing.T) {
	stats := []MapOutputStatistics{statsOf(110, 10, 100, 110, 0)}
	got, err := Coalesce(stats, 100, nil)
	if err != nil {
		t.Fatalf("Coalesce returned error: %v", err)
	}
	want := []uint32{0, 1, 3, 4}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Coalesce() = %v, want %v", got, want)
	}
}

func TestCoalesceNeverCutsLastPartition(t *testing.T) {
	stats := []MapOutputStatistics{statsOf(1000, 1000, 1000)}
	got, err := Coalesce(stats, 100, nil)
	if err != nil {
		t.Fatalf("Coalesce returned error: %v", err)
	}
	// Every partition individually exceeds target, so each becomes its own
	// partition; no start index is appended after the last pre-partition.
	want := []uint32{0, 1, 2}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Coalesce() = %v, want %v", got, want)
	}
}

func TestCoalesceAllZeroBytesYieldsSinglePartition(t *testing.T) {
	stats := []MapOutputStatistics{statsOf(0, 0, 0, 0)}
	got, err := Coalesce(stats, 100, nil)
	if err != nil {
		t.Fatalf("Coalesce returned error: %v", err)
	}
	if !reflect.DeepEqual(got, []uint32{0}) {
		t.Fatalf("Coalesce() = %v, want [0]", got)
	}
}

func TestCoalesceAllZeroBytesIgnoresMinPartitions(t *testing.T) {
	stats := []MapOutputStatistics{statsOf(0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0)}
	min := uint32(8)
	got, err := Coalesce(stats, 100, &min)
	if err != nil {
		t.Fatalf("Coalesce returned error: %v", err)
	}
	if !reflect.DeepEqual(got, []uint32{0}) {
		t.Fatalf("Coalesce() = %v, want [0]; minPartitions must never force a split when total bytes is 0", got)
	}
}

func TestCoalesceMinPartitionsCapsEffectiveTarget(t *testing.T) {
	// total = 30+30+30 = 90, minPartitions=2 => capByMin = ceil(90/2) = 45,
	// but floor is 16 so capByMin stays 45; advisory is huge so effective
	// target is min(45, 1_000_000) = 45.
	stats := []MapOutputStatistics{statsOf(30, 30, 30)}
	min := uint32(2)
	got, err := Coalesce(stats, 1_000_000, &min)
	if err != nil {
		t.Fatalf("Coalesce returned error: %v", err)
	}
	want := []uint32{0, 2}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Coalesce() = %v, want %v", got, want)
	}
}

func TestCoalesceMinPartitionsFloorSixteen(t *testing.T) {
	// total is tiny, so ceil(total/minPartitions) would be far below 16;
	// the floor clamps effectiveTarget up to 16, not down.
	stats := []MapOutputStatistics{statsOf(1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1)}
	min := uint32(10)
	got, err := Coalesce(stats, 1_000_000, &min)
	if err != nil {
		t.Fatalf("Coalesce returned error: %v", err)
	}
	// effectiveTarget = max(ceil(20/10), 16) = max(2, 16) = 16: cut every
	// 16 bytes accumulated (1 byte/partition), so every 16th partition.
	want := []uint32{0, 16}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Coalesce() = %v, want %v", got, want)
	}
}

func TestCoalesceSumsAcrossMultipleMapStages(t *testing.T) {
	stats := []MapOutputStatistics{
		statsOf(50, 5, 50),
		statsOf(50, 5, 50),
	}
	got, err := Coalesce(stats, 100, nil)
	if err != nil {
		t.Fatalf("Coalesce returned error: %v", err)
	}
	// Per-partition totals: [100, 10, 100]. Cut after partition 0 (>=100);
	// partitions 1-2 accumulate to 110 but the last partition is never cut
	// off on its own.
	want := []uint32{0, 1}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Coalesce() = %v, want %v", got, want)
	}
}

func TestCoalesceEmptyStatsYieldsTrivialMapping(t *testing.T) {
	got, err := Coalesce(nil, 100, nil)
	if err != nil {
		t.Fatalf("Coalesce returned error: %v", err)
	}
	if !reflect.DeepEqual(got, []uint32{0}) {
		t.Fatalf("Coalesce() = %v, want [0]", got)
	}
}

func TestCoalesceRejectsMismatchedPartitionCounts(t *testing.T) {
	stats := []MapOutputStatistics{statsOf(1, 2, 3), statsOf(1, 2)}
	_, err := Coalesce(stats, 100, nil)
	if err == nil {
		t.Fatal("Coalesce() with mismatched partition counts: want error, got nil")
	}
}

func TestCoalesceRejectsZeroPartitions(t *testing.T) {
	stats := []MapOutputStatistics{{StageID: "s"}}
	_, err := Coalesce(stats, 100, nil)
	if err == nil {
		t.Fatal("Coalesce() with zero pre-shuffle partitions: want error, got nil")
	}
}
