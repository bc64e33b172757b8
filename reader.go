package shuffleplan

import (
	"context"
	"fmt"
)

// PostShuffleReader adapts a single PostShufflePartition into a channel of
// rows pulled from a ShuffleTransport, the way the teacher's Process methods
// adapt a blocking source into a channel rather than exposing a pull
// iterator directly to callers.
type PostShuffleReader struct {
	transport ShuffleTransport
	handle    ShuffleHandle
	partition PostShufflePartition
	bufSize   int
}

// NewPostShuffleReader builds a reader for partition, reading from handle
// via transport. bufSize sets the output channel's buffer; 0 is a valid,
// unbuffered choice.
func NewPostShuffleReader(transport ShuffleTransport, handle ShuffleHandle, partition PostShufflePartition, bufSize int) *PostShuffleReader {
	return &PostShuffleReader{transport: transport, handle: handle, partition: partition, bufSize: bufSize}
}

// Rows returns a channel of this partition's rows. The channel is closed
// when the underlying iterator is exhausted, ctx is canceled, or an error
// occurs; in the last two cases the error is delivered via errCh before
// either channel closes. Both channels are closed exactly once, and errCh
// carries at most one value.
func (r *PostShuffleReader) Rows(ctx context.Context) (<-chan Row, <-chan error) {
	out := make(chan Row, r.bufSize)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		it := r.transport.GetReader(r.handle, r.partition.PreStart, r.partition.PreEnd, r.partition.MapTaskRestriction)
		for {
			row, ok, err := it.Next(ctx)
			if err != nil {
				errCh <- fmt.Errorf("shuffleplan: reading partition %d: %w", r.partition.PostIndex, err)
				return
			}
			if !ok {
				return
			}
			select {
			case out <- row:
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			}
		}
	}()

	return out, errCh
}
