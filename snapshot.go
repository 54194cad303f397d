package growbuf

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"
)

// Snapshot copies the segment chain into a new contiguous block of exactly
// Length() elements, in append order, so At, Ptr and GetPtr can read it.
//
// The chain is kept: later Appends extend it and the next Snapshot folds
// everything again. Calling Snapshot on a buffer that is already contiguous,
// or twice without an Append in between, does nothing.
//
// If the block cannot be allocated the buffer is unchanged.
func (b *GrowableBuffer[T]) Snapshot() error {
	if b.closed {
		return ErrClosed
	}
	if b.Snapshotted() {
		return nil
	}

	start := time.Now()
	block, err := b.fold(b.length)
	b.env.Metrics.RecordSnapshot(b.length, time.Since(start), err)
	b.env.Logger.LogSnapshot(context.Background(), b.length, b.segments, err)
	if err != nil {
		return err
	}

	old := b.block
	b.block = block
	b.synced = true
	return freeRegion(b.env, old)
}

// collapse folds the chain into a block of capacity elements (at least
// Length()), releases the chain and the old block, and leaves the buffer
// contiguous with Reserved() == capacity.
func (b *GrowableBuffer[T]) collapse(capacity int) error {
	capacity = max(capacity, b.length)
	block, err := b.fold(capacity)
	if err != nil {
		return err
	}

	chainErr := b.releaseChain()
	blockErr := freeRegion(b.env, b.block)
	b.block = block
	b.reserved = capacity
	return errors.Join(chainErr, blockErr)
}

// fold allocates capacity elements and copies the chain into its prefix.
func (b *GrowableBuffer[T]) fold(capacity int) (region[T], error) {
	block, err := allocRegion[T](b.env, capacity)
	if err != nil {
		return region[T]{}, err
	}

	if b.parallelFold() {
		b.foldParallel(block.data)
	} else {
		off := 0
		for seg := b.head; seg != nil; seg = seg.next {
			off += copy(block.data[off:], seg.data[:seg.fill])
		}
	}
	return block, nil
}

func (b *GrowableBuffer[T]) parallelFold() bool {
	return b.opts.SnapshotWorkers > 1 &&
		b.segments > 1 &&
		b.length >= b.opts.ParallelSnapshotThreshold
}

// foldParallel copies segments concurrently. Destination offsets are the
// running sum of fill counts, so the copies never overlap.
func (b *GrowableBuffer[T]) foldParallel(dst []T) {
	var g errgroup.Group
	g.SetLimit(b.opts.SnapshotWorkers)

	off := 0
	for seg := b.head; seg != nil; seg = seg.next {
		src := seg.data[:seg.fill]
		out := dst[off : off+len(src)]
		off += len(src)
		g.Go(func() error {
			copy(out, src)
			return nil
		})
	}
	_ = g.Wait()
}
