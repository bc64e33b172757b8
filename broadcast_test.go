package shuffleplan

import "testing"

func TestDecideBroadcastDisabled(t *testing.T) {
	cfg := BroadcastConfig{Enabled: false, ThresholdBytes: 1000}
	_, _, ok := DecideBroadcast(cfg, 10, 10_000_000, 1, 50)
	if ok {
		t.Fatal("DecideBroadcast() with Enabled=false: want ok=false")
	}
}

func TestDecideBroadcastLeftSmall(t *testing.T) {
	cfg := BroadcastConfig{Enabled: true, ThresholdBytes: 1000}
	broadcastLeft, m, ok := DecideBroadcast(cfg, 500, 10_000_000, 4, 50)
	if !ok {
		t.Fatal("DecideBroadcast() = ok=false, want true")
	}
	if !broadcastLeft {
		t.Fatal("DecideBroadcast() broadcastLeft = false, want true")
	}
	if m != 50 {
		t.Fatalf("DecideBroadcast() m = %d, want 50 (rightM, the large side's map task count)", m)
	}
}

func TestDecideBroadcastRightSmall(t *testing.T) {
	cfg := BroadcastConfig{Enabled: true, ThresholdBytes: 1000}
	broadcastLeft, m, ok := DecideBroadcast(cfg, 10_000_000, 500, 50, 4)
	if !ok {
		t.Fatal("DecideBroadcast() = ok=false, want true")
	}
	if broadcastLeft {
		t.Fatal("DecideBroadcast() broadcastLeft = true, want false")
	}
	if m != 50 {
		t.Fatalf("DecideBroadcast() m = %d, want 50 (leftM, the large side's map task count)", m)
	}
}

func TestDecideBroadcastBothSmallPicksLeft(t *testing.T) {
	// spec.md §4.3 tie-break: if both sides are under T, side 0 (left) wins.
	cfg := BroadcastConfig{Enabled: true, ThresholdBytes: 1000}
	broadcastLeft, m, ok := DecideBroadcast(cfg, 10, 10, 4, 50)
	if !ok {
		t.Fatal("DecideBroadcast() with both sides small: want ok=true")
	}
	if !broadcastLeft {
		t.Fatal("DecideBroadcast() with both sides small: want broadcastLeft=true (tie-break to side 0)")
	}
	if m != 50 {
		t.Fatalf("DecideBroadcast() m = %d, want 50 (rightM, the large side's map task count)", m)
	}
}

func TestDecideBroadcastNeitherSmall(t *testing.T) {
	cfg := BroadcastConfig{Enabled: true, ThresholdBytes: 1000}
	_, _, ok := DecideBroadcast(cfg, 10_000_000, 10_000_000, 4, 4)
	if ok {
		t.Fatal("DecideBroadcast() with neither side small: want ok=false")
	}
}

func TestDecideBroadcastExactThresholdIsNotSmall(t *testing.T) {
	// spec.md §4.3: "s0 < T", strictly less than; a side sitting exactly at
	// the threshold does not qualify as the broadcast side.
	cfg := BroadcastConfig{Enabled: true, ThresholdBytes: 1000}
	_, _, ok := DecideBroadcast(cfg, 1000, 10_000_000, 4, 50)
	if ok {
		t.Fatal("DecideBroadcast() with leftBytes == threshold: want ok=false")
	}
}
