package growbuf

import (
	"errors"

	"github.com/hupe1980/growbuf/internal/arena"
)

var _ Allocator = (*ArenaAllocator)(nil)

// ArenaAllocator carves blocks out of large off-heap chunks.
//
// Free is a no-op: memory comes back all at once through Reset or Close.
// It suits workloads that build many short-lived buffers and drop them
// together. Buffers allocated before Reset or Close must not be used
// afterwards.
//
// Wrapped in a LimitedAllocator, freed blocks are credited back to the budget
// even though the arena still holds them; use Stats().BytesReserved to see
// what the arena has mapped.
type ArenaAllocator struct {
	a *arena.Arena
}

// ArenaStats reports chunk and byte usage of an ArenaAllocator.
type ArenaStats struct {
	Chunks        int
	BytesReserved int
	BytesUsed     int
	Allocations   int
}

// NewArenaAllocator creates an arena allocator with chunks of chunkSize bytes.
// A chunkSize <= 0 selects 1 MiB.
func NewArenaAllocator(chunkSize int) *ArenaAllocator {
	return &ArenaAllocator{a: arena.New(chunkSize)}
}

// Allocate implements Allocator.
func (a *ArenaAllocator) Allocate(size int) ([]byte, error) {
	b, err := a.a.Alloc(size)
	if err != nil {
		if errors.Is(err, arena.ErrClosed) {
			return nil, ErrClosed
		}
		return nil, err
	}
	return b, nil
}

// Free implements Allocator.
func (a *ArenaAllocator) Free([]byte) error { return nil }

// Reset rewinds the arena, invalidating every block handed out so far.
func (a *ArenaAllocator) Reset() error { return a.a.Reset() }

// Close unmaps all chunks.
func (a *ArenaAllocator) Close() error { return a.a.Free() }

// Stats returns current usage.
func (a *ArenaAllocator) Stats() ArenaStats {
	s := a.a.Stats()
	return ArenaStats{
		Chunks:        s.Chunks,
		BytesReserved: s.BytesReserved,
		BytesUsed:     s.BytesUsed,
		Allocations:   s.TotalAllocs,
	}
}

func (a *ArenaAllocator) String() string { return a.a.String() }
