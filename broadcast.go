package shuffleplan

// BroadcastConfig controls when DecideBroadcast chooses to broadcast the
// smaller side of a two-input join instead of coalescing both sides.
type BroadcastConfig struct {
	// Enabled turns broadcast consideration on. When false, DecideBroadcast
	// always returns ok == false.
	Enabled bool `validate:"-"`

	// ThresholdBytes is the exclusive upper bound on a side's total byte
	// size for it to be eligible as the broadcast (small) side: a side
	// reporting exactly ThresholdBytes is not eligible.
	ThresholdBytes uint64 `validate:"required_with=Enabled"`
}

// DecideBroadcast compares the two inputs of a join and, if at least one side
// is small enough to broadcast, reports which one. leftBytes/rightBytes are
// each side's total observed byte count; leftM/rightM are each side's
// upstream map-task count, used as the broadcast fanout M when that side
// turns out to be the *large* side (the broadcast partition count always
// comes from the large side's map-task count, never the small side's).
//
// ok is false when broadcast is disabled or when neither side is under the
// threshold. The check is scan-ordered, left first: when both sides are
// under the threshold, the left side wins the tie rather than the decision
// being treated as ambiguous.
func DecideBroadcast(cfg BroadcastConfig, leftBytes, rightBytes uint64, leftM, rightM int) (broadcastLeft bool, m int, ok bool) {
	if !cfg.Enabled {
		return false, 0, false
	}

	if leftBytes < cfg.ThresholdBytes {
		return true, rightM, true
	}
	if rightBytes < cfg.ThresholdBytes {
		return false, leftM, true
	}
	return false, 0, false
}
