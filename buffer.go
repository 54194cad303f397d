package growbuf

import (
	"context"
	"errors"
	"fmt"
)

// GrowableBuffer accumulates primitive values of unknown final count.
//
// A buffer is in one of two states:
//
//   - contiguous: one block holds every element. Factories and SetLength /
//     SetReserved produce this state, and At / Ptr read from it.
//   - segmented: Append has linked values into a chain of fixed-capacity
//     segments. The chain is authoritative until Snapshot copies it into a
//     fresh contiguous block.
//
// Snapshot leaves the chain in place, so appending after a snapshot extends
// the same chain and the next Snapshot includes every value. SetLength and
// SetReserved on a segmented buffer fold the chain into one block and drop
// it, returning the buffer to the contiguous state.
//
// Operations that allocate leave the buffer unchanged when allocation fails.
// An error from returning replaced storage to the allocator is reported after
// the operation has taken effect.
//
// A GrowableBuffer is not safe for concurrent use.
type GrowableBuffer[T Primitive] struct {
	// opts is the caller's configuration; opts.Logger carries no buffer fields.
	// env is the same configuration with the logger scoped to this buffer.
	opts Options
	env  Options

	// Contiguous store. reserved is its capacity while no chain exists and the
	// capacity template for new segments otherwise.
	block    region[T]
	length   int
	reserved int

	// Segment chain. head owns the chain; tail only locates the append target.
	head     *segment[T]
	tail     *segment[T]
	segments int

	// synced is true when block mirrors the chain (Snapshot since last Append).
	synced bool
	closed bool
}

// Empty creates a buffer with capacity opts.InitialReserve and length 0.
func Empty[T Primitive](opts Options) (*GrowableBuffer[T], error) {
	return EmptyReserve[T](opts, 0)
}

// EmptyReserve creates a buffer with capacity max(opts.InitialReserve, minReserve)
// and length 0.
func EmptyReserve[T Primitive](opts Options, minReserve int) (*GrowableBuffer[T], error) {
	if minReserve < 0 {
		return nil, fmt.Errorf("%w: reserve %d", ErrInvalidSize, minReserve)
	}
	return newBuffer[T](opts, minReserve, 0)
}

// Full creates a buffer of length elements, each equal to value.
func Full[T Primitive](opts Options, value T, length int) (*GrowableBuffer[T], error) {
	if length < 0 {
		return nil, fmt.Errorf("%w: length %d", ErrInvalidSize, length)
	}
	b, err := newBuffer[T](opts, length, length)
	if err != nil {
		return nil, err
	}
	data := b.block.data[:length]
	for i := range data {
		data[i] = value
	}
	return b, nil
}

// Arange creates a buffer of length elements where element i equals i cast
// to T. Indices T cannot represent wrap or round like a Go conversion.
func Arange[T Primitive](opts Options, length int) (*GrowableBuffer[T], error) {
	if length < 0 {
		return nil, fmt.Errorf("%w: length %d", ErrInvalidSize, length)
	}
	b, err := newBuffer[T](opts, length, length)
	if err != nil {
		return nil, err
	}
	fillRamp(b.block.data[:length])
	return b, nil
}

func newBuffer[T Primitive](opts Options, minReserve, length int) (*GrowableBuffer[T], error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts = opts.normalized()
	env := opts
	env.Logger = opts.Logger.WithKind(KindOf[T]())

	reserved := max(opts.InitialReserve, minReserve)
	block, err := allocRegion[T](env, reserved)
	if err != nil {
		return nil, err
	}
	return &GrowableBuffer[T]{
		opts:     opts,
		env:      env,
		block:    block,
		length:   length,
		reserved: reserved,
	}, nil
}

// Length returns the number of logically valid elements.
func (b *GrowableBuffer[T]) Length() int { return b.length }

// Reserved returns the contiguous capacity, or the per-segment capacity
// while a segment chain exists.
func (b *GrowableBuffer[T]) Reserved() int { return b.reserved }

// SegmentCount returns the number of segments chained by Append.
func (b *GrowableBuffer[T]) SegmentCount() int { return b.segments }

// Snapshotted reports whether the contiguous view is current, i.e. At and
// Ptr may be used.
func (b *GrowableBuffer[T]) Snapshotted() bool {
	return b.head == nil || b.synced
}

// Options returns the options the buffer was built with.
func (b *GrowableBuffer[T]) Options() Options { return b.opts }

// SetReserved grows the contiguous capacity to exactly minReserved elements,
// preserving the first Length() elements. Requests at or below Reserved()
// are no-ops; capacity never shrinks. Growth is not amortized: callers that
// want geometric growth must ask for geometric targets.
//
// On a segmented buffer the chain is folded into a single block of
// max(minReserved, Length()) elements and released.
func (b *GrowableBuffer[T]) SetReserved(minReserved int) error {
	if b.closed {
		return ErrClosed
	}
	if minReserved <= b.reserved {
		return nil
	}
	if b.head != nil {
		return b.collapse(max(minReserved, b.length))
	}

	block, err := allocRegion[T](b.env, minReserved)
	if err != nil {
		return err
	}
	copy(block.data, b.block.data[:b.length])
	old := b.block
	b.block = block
	b.reserved = minReserved
	return freeRegion(b.env, old)
}

// SetLength sets the logical length, first growing capacity to exactly
// newLength if it exceeds Reserved(). Elements between the old and new
// length keep whatever the block held; they are not reinitialized.
//
// On a segmented buffer the chain is folded into a single block first.
func (b *GrowableBuffer[T]) SetLength(newLength int) error {
	if b.closed {
		return ErrClosed
	}
	if newLength < 0 {
		return fmt.Errorf("%w: length %d", ErrInvalidSize, newLength)
	}
	// A failed release arrives after the storage change has committed, so
	// only stop when the change itself did not happen.
	var errs []error
	if b.head != nil {
		if err := b.collapse(max(newLength, b.length, b.reserved)); err != nil {
			if b.head != nil {
				return err
			}
			errs = append(errs, err)
		}
	}
	if newLength > b.reserved {
		if err := b.SetReserved(newLength); err != nil {
			if newLength > b.reserved {
				return err
			}
			errs = append(errs, err)
		}
	}
	b.length = newLength
	return errors.Join(errs...)
}

// Clear discards all contents and reallocates a fresh block of
// Options().InitialReserve elements. The segment chain, if any, is released.
// If the new block cannot be allocated the buffer is left untouched.
func (b *GrowableBuffer[T]) Clear() error {
	if b.closed {
		return ErrClosed
	}
	block, err := allocRegion[T](b.env, b.opts.InitialReserve)
	b.env.Logger.LogClear(context.Background(), b.opts.InitialReserve, err)
	if err != nil {
		return err
	}
	chainErr := b.releaseChain()
	blockErr := freeRegion(b.env, b.block)

	b.block = block
	b.length = 0
	b.reserved = b.opts.InitialReserve
	b.synced = false
	return errors.Join(chainErr, blockErr)
}

// At returns the element at index from the contiguous view.
func (b *GrowableBuffer[T]) At(index int) (T, error) {
	var zero T
	if b.closed {
		return zero, ErrClosed
	}
	if !b.Snapshotted() {
		return zero, ErrNotSnapshotted
	}
	if index < 0 || index >= b.length {
		return zero, &IndexError{Index: index, Length: b.length}
	}
	return b.block.data[index], nil
}

// Ptr borrows the contiguous view of the first Length() elements. The slice
// aliases the buffer and is invalidated by any later mutation.
func (b *GrowableBuffer[T]) Ptr() ([]T, error) {
	if b.closed {
		return nil, ErrClosed
	}
	if !b.Snapshotted() {
		return nil, ErrNotSnapshotted
	}
	if b.length == 0 {
		return nil, nil
	}
	return b.block.data[:b.length:b.length], nil
}

// GetPtr moves the contiguous block out of the buffer. The caller owns the
// returned Block and must Release it. The buffer is left empty: length 0,
// reserved 0, no block and no segment chain. A later Append starts a new
// chain of Options().InitialReserve elements, which Reserved() then reports.
// Failures to release the old chain are logged; the Block is handed out
// regardless.
func (b *GrowableBuffer[T]) GetPtr() (*Block[T], error) {
	if b.closed {
		return nil, ErrClosed
	}
	if !b.Snapshotted() {
		return nil, ErrNotSnapshotted
	}
	out := &Block[T]{opts: b.env, region: b.block, n: b.length}

	_ = b.releaseChain()
	b.block = region[T]{}
	b.length = 0
	b.reserved = 0
	b.synced = false
	return out, nil
}

// Close releases the segment chain and the contiguous block. The buffer
// cannot be used afterwards. Close is idempotent.
func (b *GrowableBuffer[T]) Close() error {
	if b == nil || b.closed {
		return nil
	}
	b.closed = true
	chainErr := b.releaseChain()
	blockErr := freeRegion(b.env, b.block)
	b.block = region[T]{}
	b.length = 0
	b.reserved = 0
	return errors.Join(chainErr, blockErr)
}

// Stats describes a buffer's storage.
type Stats struct {
	Length      int
	Reserved    int
	Segments    int
	Snapshotted bool
	// BytesHeld counts the contiguous block plus every segment.
	BytesHeld int
}

// Stats returns the current storage statistics.
func (b *GrowableBuffer[T]) Stats() Stats {
	held := len(b.block.raw)
	for seg := b.head; seg != nil; seg = seg.next {
		held += len(seg.raw)
	}
	return Stats{
		Length:      b.length,
		Reserved:    b.reserved,
		Segments:    b.segments,
		Snapshotted: b.Snapshotted(),
		BytesHeld:   held,
	}
}
