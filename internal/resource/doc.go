// Package resource implements byte budgets for allocators.
//
// A Budget caps the bytes an allocator may hand out. Reservations never
// block: one that does not fit fails at once with a *LimitError matching
// ErrMemoryLimitExceeded, and the caller decides what to do next.
//
//	b := resource.NewBudget(64 << 20)
//	if err := b.Reserve(size); err != nil {
//	    return err
//	}
//	defer b.Return(size)
//
// All methods are safe for concurrent use and treat a nil *Budget as
// unlimited.
package resource
