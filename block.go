package growbuf

import "github.com/hupe1980/growbuf/internal/mem"

// Block is an owned contiguous run of elements moved out of a buffer by
// GetPtr. The owner must call Release once it no longer needs the data;
// for off-heap allocators this unmaps the memory.
type Block[T Primitive] struct {
	opts     Options
	region   region[T]
	n        int
	released bool
}

// Data returns the valid elements. The slice is invalid after Release.
func (b *Block[T]) Data() []T {
	if b == nil || b.released || b.n == 0 {
		return nil
	}
	return b.region.data[:b.n:b.n]
}

// Len returns the number of valid elements.
func (b *Block[T]) Len() int {
	if b == nil || b.released {
		return 0
	}
	return b.n
}

// Cap returns the allocated capacity in elements.
func (b *Block[T]) Cap() int {
	if b == nil || b.released {
		return 0
	}
	return b.region.capacity()
}

// Bytes returns a zero-copy byte view of the valid elements in native byte
// order, for handing the block to code that speaks raw memory.
func (b *Block[T]) Bytes() []byte {
	return mem.Bytes(b.Data())
}

// Release returns the memory to the allocator. It is idempotent.
func (b *Block[T]) Release() error {
	if b == nil || b.released {
		return nil
	}
	b.released = true
	err := freeRegion(b.opts, b.region)
	b.region = region[T]{}
	b.n = 0
	return err
}
