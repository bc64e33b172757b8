package planconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExchangeSpecToMapOutputStatistics(t *testing.T) {
	spec := ExchangeSpec{
		ID:        "a",
		MapStages: [][]uint64{{10, 20}, {5, 5}},
	}
	stats, err := spec.ToMapOutputStatistics()
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, []uint64{10, 20}, stats[0].BytesByPartition)
	assert.Equal(t, "a-stage-0", stats[0].StageID)
}

func TestExchangeSpecToMapOutputStatisticsRejectsRaggedRows(t *testing.T) {
	spec := ExchangeSpec{
		ID:        "a",
		MapStages: [][]uint64{{10, 20}, {5}},
	}
	_, err := spec.ToMapOutputStatistics()
	require.Error(t, err)
}

func TestExchangeSpecToCombinedStatistics(t *testing.T) {
	spec := ExchangeSpec{
		ID:        "a",
		MapStages: [][]uint64{{10, 20, 0}, {5, 5, 5}},
	}
	combined, err := spec.ToCombinedStatistics()
	require.NoError(t, err)
	assert.Equal(t, []uint64{15, 25, 5}, combined.BytesByPartition)
}

func TestPlanDocumentToCoordinatorConfig(t *testing.T) {
	min := uint32(2)
	doc := PlanDocument{
		Coordinator: CoordinatorSpec{
			TargetBytes:    1 << 20,
			MinPartitions:  &min,
			IsTwoInputJoin: true,
			Broadcast:      BroadcastSpec{Enabled: true, ThresholdBytes: 1000},
		},
	}
	cfg, err := doc.ToCoordinatorConfig()
	require.NoError(t, err)
	assert.Equal(t, uint64(1<<20), cfg.TargetBytes)
	assert.True(t, cfg.IsTwoInputJoin)
	assert.True(t, cfg.Broadcast.Enabled)
}

func TestPlanDocumentToCoordinatorConfigRejectsInvalid(t *testing.T) {
	doc := PlanDocument{Coordinator: CoordinatorSpec{}}
	_, err := doc.ToCoordinatorConfig()
	require.Error(t, err)
}
