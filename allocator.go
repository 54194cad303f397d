package growbuf

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"github.com/hupe1980/growbuf/internal/mem"
	"github.com/hupe1980/growbuf/internal/mmap"
	"github.com/hupe1980/growbuf/internal/resource"
)

// Allocator provides the raw memory beneath buffers and segments.
//
// Allocate must return a block of at least size bytes, aligned for every
// Primitive (16 bytes suffices), or an error. A zero size may yield nil.
// Free receives exactly the slice Allocate returned.
type Allocator interface {
	Allocate(size int) ([]byte, error)
	Free(b []byte) error
}

var (
	_ Allocator = HeapAllocator{}
	_ Allocator = (*MmapAllocator)(nil)
	_ Allocator = (*LimitedAllocator)(nil)
)

// HeapAllocator allocates 64-byte aligned blocks on the Go heap.
// Free is a no-op; the garbage collector reclaims released blocks.
type HeapAllocator struct{}

// Allocate implements Allocator.
func (HeapAllocator) Allocate(size int) ([]byte, error) {
	if size < 0 {
		return nil, fmt.Errorf("negative size %d", size)
	}
	return mem.AllocAligned(size), nil
}

// Free implements Allocator.
func (HeapAllocator) Free([]byte) error { return nil }

// MmapAllocator allocates page-aligned anonymous mappings outside the Go heap.
// Every block must be returned with Free (or Close), otherwise it leaks.
// It is safe for concurrent use.
type MmapAllocator struct {
	mu   sync.Mutex
	live map[*byte]*mmap.Mapping
}

// NewMmapAllocator creates an off-heap allocator.
func NewMmapAllocator() *MmapAllocator {
	return &MmapAllocator{live: make(map[*byte]*mmap.Mapping)}
}

// Allocate implements Allocator.
func (a *MmapAllocator) Allocate(size int) ([]byte, error) {
	if size < 0 {
		return nil, fmt.Errorf("negative size %d", size)
	}
	if size == 0 {
		return nil, nil
	}

	m, err := mmap.MapAnon(size)
	if err != nil {
		return nil, fmt.Errorf("failed to map anonymous memory: %w", err)
	}
	data := m.Bytes()

	a.mu.Lock()
	a.live[unsafe.SliceData(data)] = m
	a.mu.Unlock()

	return data, nil
}

// Free implements Allocator.
func (a *MmapAllocator) Free(b []byte) error {
	if len(b) == 0 {
		return nil
	}

	key := unsafe.SliceData(b)
	a.mu.Lock()
	m, ok := a.live[key]
	delete(a.live, key)
	a.mu.Unlock()

	if !ok {
		return ErrUnknownBlock
	}
	return m.Close()
}

// Live returns the number of mappings not yet freed.
func (a *MmapAllocator) Live() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.live)
}

// Close unmaps every block still live. Slices handed out earlier become invalid.
func (a *MmapAllocator) Close() error {
	a.mu.Lock()
	live := a.live
	a.live = make(map[*byte]*mmap.Mapping)
	a.mu.Unlock()

	var errs []error
	for _, m := range live {
		if err := m.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LimitedAllocator enforces a byte budget over another allocator.
// Requests that would exceed the budget fail immediately.
type LimitedAllocator struct {
	base   Allocator
	budget *resource.Budget
}

// NewLimitedAllocator wraps base with a limit of limitBytes.
// A limit of 0 tracks usage without enforcing a cap. A nil base means HeapAllocator.
//
// The budget is credited on every Free. Over an ArenaAllocator, whose Free
// keeps the memory until Reset, the limit therefore bounds the bytes held by
// live buffers, not the bytes mapped by the arena.
func NewLimitedAllocator(base Allocator, limitBytes int64) *LimitedAllocator {
	if base == nil {
		base = HeapAllocator{}
	}
	return &LimitedAllocator{
		base:   base,
		budget: resource.NewBudget(limitBytes),
	}
}

// Allocate implements Allocator.
func (a *LimitedAllocator) Allocate(size int) ([]byte, error) {
	if size < 0 {
		return nil, fmt.Errorf("negative size %d", size)
	}
	if err := a.budget.Reserve(int64(size)); err != nil {
		return nil, err
	}

	b, err := a.base.Allocate(size)
	if err != nil {
		a.budget.Return(int64(size))
		return nil, err
	}
	if len(b) < size {
		_ = a.base.Free(b)
		a.budget.Return(int64(size))
		return nil, fmt.Errorf("short block: %d of %d bytes", len(b), size)
	}
	// Free releases len(b), so hand out exactly what was charged.
	return b[:size:size], nil
}

// Free implements Allocator.
func (a *LimitedAllocator) Free(b []byte) error {
	if err := a.base.Free(b); err != nil {
		return err
	}
	a.budget.Return(int64(len(b)))
	return nil
}

// MemoryUsage returns the bytes currently allocated through a.
func (a *LimitedAllocator) MemoryUsage() int64 { return a.budget.Used() }

// PeakMemoryUsage returns the highest MemoryUsage observed.
func (a *LimitedAllocator) PeakMemoryUsage() int64 { return a.budget.Peak() }

// MemoryLimit returns the configured limit (0 if unlimited).
func (a *LimitedAllocator) MemoryLimit() int64 { return a.budget.Limit() }

// MemoryAvailable returns the bytes that can still be allocated, or -1 if
// the allocator is unlimited.
func (a *LimitedAllocator) MemoryAvailable() int64 { return a.budget.Available() }
