package shuffleplan

import "context"

// MapOutputStatistics carries the per-partition byte counts reported by one
// upstream shuffle dependency once its map stage finishes. BytesByPartition
// is dense over [0, P) and immutable once constructed.
type MapOutputStatistics struct {
	StageID          string
	BytesByPartition []uint64
}

// NumPartitions returns P, this stage's pre-shuffle partition count.
func (s MapOutputStatistics) NumPartitions() uint32 {
	return uint32(len(s.BytesByPartition)) //nolint:gosec // bounded by engine-side partitioner config
}

// ExchangeID is a stable identity used as a coordinator memoization key. It
// must be unique across every exchange registered with a single Coordinator.
type ExchangeID string

// ShuffleHandle is an opaque marker type implemented by the surrounding
// engine; the coordinator never inspects it, only threads it through to
// ShuffleTransport.GetReader.
type ShuffleHandle interface {
	ShuffleHandle()
}

// ShuffleDependency describes one upstream shuffle the coordinator must
// gather statistics for and eventually build a reader against. It is treated
// as opaque beyond the three accessors below.
type ShuffleDependency interface {
	// NumPreShufflePartitions returns P for this dependency, as defined by
	// its partitioner.
	NumPreShufflePartitions() uint32

	// UpstreamPartitionCount returns the number of partitions of the
	// upstream dataset itself (not of this shuffle's output). A value of 0
	// means the upstream stage was skipped and contributes no data.
	UpstreamPartitionCount() int

	// Handle returns the identifier the shuffle transport will use to locate
	// this dependency's blocks.
	Handle() ShuffleHandle
}

// Exchange is one registered reduce-side consumer of a coordinator's plan.
// The physical-plan compiler creates one Exchange per sibling operator input
// and binds them all to a shared Coordinator.
type Exchange interface {
	// ID returns this exchange's stable registration identity.
	ID() ExchangeID

	// PrepareShuffleDependency materializes this exchange's upstream
	// dependency. Called exactly once, during coordinator estimation.
	PrepareShuffleDependency(ctx context.Context) (ShuffleDependency, error)
}

// MapStageResult is the outcome of submitting one map stage: either its
// statistics, or the error that caused the stage (or the wait for it) to
// fail.
type MapStageResult struct {
	Stats MapOutputStatistics
	Err   error
}

// Scheduler submits a shuffle dependency's map stage and reports its
// statistics asynchronously. The returned channel carries exactly one
// MapStageResult and is then closed.
type Scheduler interface {
	SubmitMapStage(ctx context.Context, dep ShuffleDependency) (<-chan MapStageResult, error)
}

// Row is one record yielded by a shuffle reader. The coordinator and its
// adapters never interpret Row contents; the surrounding engine defines the
// concrete type.
type Row interface{}

// RowIterator pulls rows from the shuffle transport one at a time.
type RowIterator interface {
	// Next returns the next row. ok is false once the iterator is exhausted;
	// a non-nil error aborts iteration.
	Next(ctx context.Context) (row Row, ok bool, err error)
}

// ShuffleTransport is the physical layer PostShuffleReader delegates to. It
// is out of scope for this package beyond the exact call signature below.
type ShuffleTransport interface {
	GetReader(handle ShuffleHandle, preStart, preEnd uint32, mapTaskRestriction *uint32) RowIterator
}
