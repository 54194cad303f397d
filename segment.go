package growbuf

import (
	"context"
	"errors"
)

// segment is one link of the append chain. Its capacity is fixed at creation.
type segment[T Primitive] struct {
	region[T]
	fill int
	next *segment[T]
}

func (s *segment[T]) full() bool { return s.fill == s.capacity() }

// Append adds value to the end of the buffer in amortized O(1): values are
// written into the tail segment, and a new segment of
// max(Reserved(), Options().InitialReserve) elements is linked when the tail
// is full. Segments are never moved or copied while appending.
//
// The first Append on a contiguous buffer adopts its block as the head
// segment, so values written by Full, Arange or SetLength are kept.
//
// Append only fails when a new segment cannot be allocated; the buffer is
// then unchanged.
func (b *GrowableBuffer[T]) Append(value T) error {
	if b.closed {
		return ErrClosed
	}
	if b.head == nil {
		if err := b.startChain(); err != nil {
			return err
		}
	} else if b.tail.full() {
		if err := b.addSegment(); err != nil {
			return err
		}
	}

	tail := b.tail
	if tail.fill >= tail.capacity() {
		panic("growbuf: append target segment is full")
	}
	tail.data[tail.fill] = value
	tail.fill++
	b.length++
	b.synced = false
	return nil
}

// startChain adopts the contiguous block as the head segment, followed by a
// fresh segment when the block is already full. A zero-capacity block is
// skipped. The next segment is allocated before anything moves, so nothing
// changes on failure.
func (b *GrowableBuffer[T]) startChain() error {
	if b.block.capacity() == 0 {
		return b.addSegment()
	}

	var next region[T]
	if b.length >= b.block.capacity() {
		r, err := allocRegion[T](b.env, b.segmentCapacity())
		if err != nil {
			return err
		}
		next = r
	}

	b.linkSegment(&segment[T]{region: b.block, fill: b.length})
	b.block = region[T]{}
	if next.capacity() > 0 {
		b.linkSegment(&segment[T]{region: next})
	}
	return nil
}

func (b *GrowableBuffer[T]) addSegment() error {
	r, err := allocRegion[T](b.env, b.segmentCapacity())
	if err != nil {
		return err
	}
	b.linkSegment(&segment[T]{region: r})
	return nil
}

func (b *GrowableBuffer[T]) segmentCapacity() int {
	return max(b.reserved, b.opts.InitialReserve)
}

// linkSegment appends seg to the chain. A buffer emptied by GetPtr takes
// its segment template from the first segment.
func (b *GrowableBuffer[T]) linkSegment(seg *segment[T]) {
	if b.tail == nil {
		b.head = seg
	} else {
		b.tail.next = seg
	}
	b.tail = seg
	b.segments++
	if b.reserved == 0 {
		b.reserved = seg.capacity()
	}

	b.env.Metrics.RecordSegment(seg.capacity())
	b.env.Logger.LogSegmentAdded(context.Background(), seg.capacity(), b.segments)
}

// releaseChain frees every segment, walking from head one link at a time.
func (b *GrowableBuffer[T]) releaseChain() error {
	seg := b.head
	b.head = nil
	b.tail = nil
	b.segments = 0
	b.synced = false

	var errs []error
	for seg != nil {
		next := seg.next
		seg.next = nil
		if err := freeRegion(b.env, seg.region); err != nil {
			errs = append(errs, err)
		}
		seg = next
	}
	return errors.Join(errs...)
}
