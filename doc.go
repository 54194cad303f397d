// Package growbuf provides a growable, type-homogeneous buffer of primitive
// values, the storage primitive beneath incremental columnar array builders.
//
// # Quick Start
//
//	opts := growbuf.NewOptions(growbuf.WithInitialReserve(1024))
//
//	buf, _ := growbuf.Empty[float64](opts)
//	defer buf.Close()
//
//	for _, v := range values {
//	    _ = buf.Append(v) // amortized O(1), never copies
//	}
//	_ = buf.Snapshot()      // one contiguous block of Length() elements
//	data, _ := buf.Ptr()    // borrow it
//
// # Two Growth Paths
//
// Pre-sized construction (Empty, EmptyReserve, Full, Arange) and SetReserved /
// SetLength keep every element in one contiguous block and grow by
// copy-on-grow to exactly the requested capacity.
//
// Append never copies. It writes into a chain of fixed-capacity segments and
// links a new segment when the tail is full. Snapshot folds the chain into a
// contiguous block when a single view is needed:
//
//	┌──────────────┐    Append     ┌──────────────────────────┐
//	│  contiguous  │ ────────────► │ segmented (chain)        │
//	│ block,length │ ◄──────────── │ head ─► seg ─► seg ─► …  │
//	└──────────────┘   Snapshot    └──────────────────────────┘
//
// # Memory
//
// All memory comes from an Allocator. HeapAllocator is the GC-managed
// default and MmapAllocator maps anonymous memory off the heap.
// ArenaAllocator bump-allocates from large chunks and frees them together,
// and LimitedAllocator enforces a byte budget over any of them. Allocation failures surface as errors matching
// ErrAllocationFailed, and every operation that allocates leaves the buffer
// unchanged when it fails.
//
// # Ownership
//
// GetPtr moves the contiguous block out as a Block the caller must Release.
// Close releases everything a buffer still holds.
//
// # Thread Safety
//
// A buffer is meant for a single writer. Allocators and metrics collectors
// may be shared between buffers.
package growbuf
