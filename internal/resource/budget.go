package resource

import (
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// ErrMemoryLimitExceeded is matched by every *LimitError.
var ErrMemoryLimitExceeded = errors.New("memory limit exceeded")

// LimitError reports a reservation the budget could not cover.
type LimitError struct {
	Requested int64
	Used      int64
	Limit     int64
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("memory limit exceeded: %d bytes requested, %d of %d in use",
		e.Requested, e.Used, e.Limit)
}

func (e *LimitError) Is(target error) bool { return target == ErrMemoryLimitExceeded }

// Budget accounts for bytes handed out by an allocator.
// A Budget with limit 0 only tracks usage.
type Budget struct {
	limit int64
	sem   *semaphore.Weighted // nil if unlimited

	used atomic.Int64
	peak atomic.Int64
}

// NewBudget creates a budget capped at limit bytes.
func NewBudget(limit int64) *Budget {
	b := &Budget{limit: max(limit, 0)}
	if b.limit > 0 {
		b.sem = semaphore.NewWeighted(b.limit)
	}
	return b
}

// Reserve charges n bytes against the budget without blocking.
// It returns a *LimitError when n does not fit.
func (b *Budget) Reserve(n int64) error {
	if b == nil || n <= 0 {
		return nil
	}
	if b.sem != nil && !b.sem.TryAcquire(n) {
		return &LimitError{Requested: n, Used: b.used.Load(), Limit: b.limit}
	}

	used := b.used.Add(n)
	for {
		peak := b.peak.Load()
		if used <= peak || b.peak.CompareAndSwap(peak, used) {
			return nil
		}
	}
}

// Return gives n previously reserved bytes back.
func (b *Budget) Return(n int64) {
	if b == nil || n <= 0 {
		return
	}
	if b.sem != nil {
		b.sem.Release(n)
	}
	b.used.Add(-n)
}

// Used returns the bytes currently reserved.
func (b *Budget) Used() int64 {
	if b == nil {
		return 0
	}
	return b.used.Load()
}

// Peak returns the highest Used value observed.
func (b *Budget) Peak() int64 {
	if b == nil {
		return 0
	}
	return b.peak.Load()
}

// Limit returns the cap in bytes, 0 if unlimited.
func (b *Budget) Limit() int64 {
	if b == nil {
		return 0
	}
	return b.limit
}

// Available returns the bytes that can still be reserved, or -1 if unlimited.
func (b *Budget) Available() int64 {
	if b == nil || b.limit == 0 {
		return -1
	}
	return max(b.limit-b.used.Load(), 0)
}
