// Package planconfig loads a plan-description document — the set of
// exchanges to plan for, their map-output byte statistics, and the
// coordinator settings to plan them under — from a config file, environment
// variables, and CLI flags, in that order of increasing precedence.
package planconfig

import (
	"fmt"

	"github.com/rohanmmit/shuffleplan"
)

// ExchangeSpec describes one exchange's already-gathered map-output
// statistics, as supplied by a plan document rather than a live scheduler.
type ExchangeSpec struct {
	ID string `mapstructure:"id" validate:"omitempty"`

	// MapStages holds one row per upstream map stage, each row the dense
	// per-pre-shuffle-partition byte counts for that stage. All rows must
	// be the same length.
	MapStages [][]uint64 `mapstructure:"map_stages" validate:"required,min=1"`

	// UpstreamPartitionCount is this exchange's own upstream map-task
	// count, used as the broadcast fanout M when this exchange turns out
	// to be the large side of a two-input join.
	UpstreamPartitionCount int `mapstructure:"upstream_partition_count" validate:"gte=0"`
}

// BroadcastSpec mirrors shuffleplan.BroadcastConfig in document form.
type BroadcastSpec struct {
	Enabled        bool   `mapstructure:"enabled"`
	ThresholdBytes uint64 `mapstructure:"threshold_bytes"`
}

// CoordinatorSpec mirrors shuffleplan.CoordinatorConfig in document form.
type CoordinatorSpec struct {
	TargetBytes    uint64        `mapstructure:"target_bytes" validate:"required"`
	MinPartitions  *uint32       `mapstructure:"min_partitions" validate:"omitempty,gt=0"`
	IsTwoInputJoin bool          `mapstructure:"is_two_input_join"`
	Broadcast      BroadcastSpec `mapstructure:"broadcast"`
}

// PlanDocument is the full decoded shape of a plan-description document.
type PlanDocument struct {
	Exchanges   []ExchangeSpec  `mapstructure:"exchanges" validate:"required,min=1,max=2,dive"`
	Coordinator CoordinatorSpec `mapstructure:"coordinator"`
}

// ToCoordinatorConfig converts the document's coordinator section into a
// validated shuffleplan.CoordinatorConfig.
func (d PlanDocument) ToCoordinatorConfig() (shuffleplan.CoordinatorConfig, error) {
	cfg := shuffleplan.CoordinatorConfig{
		NumExchanges:   uint32(len(d.Exchanges)), //nolint:gosec // bounded by validate:"max=2" on Exchanges
		TargetBytes:    d.Coordinator.TargetBytes,
		MinPartitions:  d.Coordinator.MinPartitions,
		IsTwoInputJoin: d.Coordinator.IsTwoInputJoin,
		Broadcast: shuffleplan.BroadcastConfig{
			Enabled:        d.Coordinator.Broadcast.Enabled,
			ThresholdBytes: d.Coordinator.Broadcast.ThresholdBytes,
		},
	}
	if err := cfg.Validate(); err != nil {
		return shuffleplan.CoordinatorConfig{}, fmt.Errorf("planconfig: invalid coordinator config: %w", err)
	}
	return cfg, nil
}

// NumPartitions returns the pre-shuffle partition count implied by this
// exchange's first map stage; every row must agree, checked by
// ToMapOutputStatistics.
func (e ExchangeSpec) NumPartitions() int {
	if len(e.MapStages) == 0 {
		return 0
	}
	return len(e.MapStages[0])
}

// ToMapOutputStatistics converts each map stage row into a
// shuffleplan.MapOutputStatistics, validating that every row shares the same
// width.
func (e ExchangeSpec) ToMapOutputStatistics() ([]shuffleplan.MapOutputStatistics, error) {
	stats := make([]shuffleplan.MapOutputStatistics, len(e.MapStages))
	width := e.NumPartitions()
	for i, row := range e.MapStages {
		if len(row) != width {
			return nil, fmt.Errorf("planconfig: exchange %q map stage %d has %d partitions, want %d", e.ID, i, len(row), width)
		}
		stats[i] = shuffleplan.MapOutputStatistics{
			StageID:          fmt.Sprintf("%s-stage-%d", e.ID, i),
			BytesByPartition: row,
		}
	}
	return stats, nil
}

// ToCombinedStatistics sums every map stage row elementwise into a single
// MapOutputStatistics, the shape shuffleplan.Scheduler reports per exchange.
func (e ExchangeSpec) ToCombinedStatistics() (shuffleplan.MapOutputStatistics, error) {
	stats, err := e.ToMapOutputStatistics()
	if err != nil {
		return shuffleplan.MapOutputStatistics{}, err
	}
	width := e.NumPartitions()
	combined := make([]uint64, width)
	for _, s := range stats {
		for p, b := range s.BytesByPartition {
			combined[p] += b
		}
	}
	return shuffleplan.MapOutputStatistics{StageID: e.ID, BytesByPartition: combined}, nil
}
