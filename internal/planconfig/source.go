package planconfig

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/rohanmmit/shuffleplan"
)

// staticHandle identifies a document-derived exchange's data to the static
// scheduler below; it carries no real transport meaning.
type staticHandle string

func (staticHandle) ShuffleHandle() {}

// staticDependency is the ShuffleDependency for one document-derived
// exchange.
type staticDependency struct {
	numPre    uint32
	upstreamM int
	handle    staticHandle
}

func (d staticDependency) NumPreShufflePartitions() uint32 { return d.numPre }
func (d staticDependency) UpstreamPartitionCount() int     { return d.upstreamM }
func (d staticDependency) Handle() shuffleplan.ShuffleHandle { return d.handle }

// StaticExchange adapts one ExchangeSpec into a shuffleplan.Exchange whose
// dependency is already fully known — no real preparation step is needed,
// since the plan document already carries the gathered statistics.
type StaticExchange struct {
	id  shuffleplan.ExchangeID
	dep staticDependency
}

// NewStaticExchange builds a StaticExchange from spec, minting a fresh
// ExchangeID via google/uuid when spec.ID is empty.
func NewStaticExchange(spec ExchangeSpec) *StaticExchange {
	id := spec.ID
	if id == "" {
		id = uuid.NewString()
	}
	return &StaticExchange{
		id: shuffleplan.ExchangeID(id),
		dep: staticDependency{
			numPre:    uint32(spec.NumPartitions()), //nolint:gosec // bounded by document size
			upstreamM: spec.UpstreamPartitionCount,
			handle:    staticHandle(id),
		},
	}
}

// ID implements shuffleplan.Exchange.
func (e *StaticExchange) ID() shuffleplan.ExchangeID { return e.id }

// PrepareShuffleDependency implements shuffleplan.Exchange. It never fails:
// the dependency's shape is already known from the document.
func (e *StaticExchange) PrepareShuffleDependency(context.Context) (shuffleplan.ShuffleDependency, error) {
	return e.dep, nil
}

// StaticScheduler resolves every SubmitMapStage call immediately from
// pre-computed statistics, keyed by exchange handle. It is the CLI's
// stand-in for a real cluster scheduler: the plan document already contains
// what a real scheduler would otherwise have to run map tasks to discover.
type StaticScheduler struct {
	statsByHandle map[staticHandle]shuffleplan.MapOutputStatistics
}

// NewStaticScheduler builds a StaticScheduler from the document's exchanges,
// combining each exchange's map stages into the single statistics object a
// coordinator gathers per exchange.
func NewStaticScheduler(specs []ExchangeSpec, exchanges []*StaticExchange) (*StaticScheduler, error) {
	statsByHandle := make(map[staticHandle]shuffleplan.MapOutputStatistics, len(specs))
	for i, spec := range specs {
		combined, err := spec.ToCombinedStatistics()
		if err != nil {
			return nil, fmt.Errorf("planconfig: %w", err)
		}
		statsByHandle[exchanges[i].dep.handle] = combined
	}
	return &StaticScheduler{statsByHandle: statsByHandle}, nil
}

// SubmitMapStage implements shuffleplan.Scheduler.
func (s *StaticScheduler) SubmitMapStage(_ context.Context, dep shuffleplan.ShuffleDependency) (<-chan shuffleplan.MapStageResult, error) {
	handle, ok := dep.Handle().(staticHandle)
	if !ok {
		return nil, fmt.Errorf("planconfig: unrecognized shuffle handle %T", dep.Handle())
	}
	stats, ok := s.statsByHandle[handle]
	if !ok {
		return nil, fmt.Errorf("planconfig: no statistics for handle %q", handle)
	}
	ch := make(chan shuffleplan.MapStageResult, 1)
	ch <- shuffleplan.MapStageResult{Stats: stats}
	close(ch)
	return ch, nil
}
