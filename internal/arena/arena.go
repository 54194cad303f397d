package arena

import (
	"errors"
	"fmt"
	"sync"

	"github.com/hupe1980/growbuf/internal/mmap"
)

var (
	// ErrClosed is returned when allocating from a freed arena.
	ErrClosed = errors.New("arena: closed")
)

const (
	// DefaultChunkSize is the default size of a chunk (1MB).
	DefaultChunkSize = 1024 * 1024
	// Alignment is the alignment of every allocation (16 bytes, enough for complex128).
	Alignment = 16
)

// Stats tracks arena memory usage.
type Stats struct {
	Chunks        int // Chunks currently mapped
	BytesReserved int // Total mapped bytes
	BytesUsed     int // Bytes requested by live allocations
	BytesWasted   int // Alignment padding
	TotalAllocs   int // Allocations since creation
}

// Arena is a chunked bump allocator.
type Arena struct {
	mu        sync.Mutex
	chunkSize int
	chunks    []*mmap.Mapping // regular chunks; bump allocation uses the last
	large     []*mmap.Mapping // dedicated chunks for oversized requests
	offset    int             // next free byte in the last regular chunk
	stats     Stats
	closed    bool
}

// New creates an arena whose chunks are chunkSize bytes.
// Chunks are mapped lazily on first allocation.
func New(chunkSize int) *Arena {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	chunkSize = (chunkSize + Alignment - 1) &^ (Alignment - 1)
	return &Arena{chunkSize: chunkSize}
}

// Alloc returns size zeroed bytes aligned to Alignment.
// Requests larger than the chunk size get a dedicated chunk.
func (a *Arena) Alloc(size int) ([]byte, error) {
	if size < 0 {
		return nil, fmt.Errorf("arena: negative size %d", size)
	}
	if size == 0 {
		return nil, nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil, ErrClosed
	}

	aligned := (size + Alignment - 1) &^ (Alignment - 1)
	if aligned > a.chunkSize {
		m, err := a.mapChunk(aligned)
		if err != nil {
			return nil, err
		}
		a.large = append(a.large, m)
		a.record(size, aligned)
		return m.Bytes()[:size:size], nil
	}

	if len(a.chunks) == 0 || a.offset+aligned > a.chunkSize {
		m, err := a.mapChunk(a.chunkSize)
		if err != nil {
			return nil, err
		}
		a.chunks = append(a.chunks, m)
		a.offset = 0
	}

	data := a.chunks[len(a.chunks)-1].Bytes()
	start := a.offset
	a.offset += aligned
	a.record(size, aligned)
	return data[start : start+size : start+size], nil
}

func (a *Arena) mapChunk(size int) (*mmap.Mapping, error) {
	m, err := mmap.MapAnon(size)
	if err != nil {
		return nil, fmt.Errorf("arena: failed to map chunk: %w", err)
	}
	a.stats.Chunks++
	a.stats.BytesReserved += size
	return m, nil
}

func (a *Arena) record(size, aligned int) {
	a.stats.BytesUsed += size
	a.stats.BytesWasted += aligned - size
	a.stats.TotalAllocs++
}

// Reset discards all allocations, keeping the first regular chunk zeroed
// for reuse.
func (a *Arena) Reset() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var keep *mmap.Mapping
	if len(a.chunks) > 0 {
		keep = a.chunks[0]
		a.chunks = a.chunks[1:]
	}
	err := a.unmapAll()

	if keep != nil {
		clear(keep.Bytes())
		a.chunks = append(a.chunks, keep)
		a.stats.Chunks = 1
		a.stats.BytesReserved = keep.Size()
	}
	return err
}

// Free unmaps every chunk. The arena cannot be used afterwards.
func (a *Arena) Free() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil
	}
	a.closed = true
	return a.unmapAll()
}

func (a *Arena) unmapAll() error {
	var errs []error
	for _, m := range a.chunks {
		if err := m.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, m := range a.large {
		if err := m.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.chunks = nil
	a.large = nil
	a.offset = 0
	a.stats.Chunks = 0
	a.stats.BytesReserved = 0
	a.stats.BytesUsed = 0
	a.stats.BytesWasted = 0
	return errors.Join(errs...)
}

// Stats returns the current arena statistics.
func (a *Arena) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}

func (a *Arena) String() string {
	s := a.Stats()
	return fmt.Sprintf(
		"Arena{chunks: %d, reserved: %.2f MB, used: %.2f MB, wasted: %.2f KB, allocs: %d}",
		s.Chunks,
		float64(s.BytesReserved)/(1024*1024),
		float64(s.BytesUsed)/(1024*1024),
		float64(s.BytesWasted)/1024,
		s.TotalAllocs,
	)
}
