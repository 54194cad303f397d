package growbuf

import (
	"context"
	"fmt"

	"github.com/hupe1980/growbuf/internal/conv"
	"github.com/hupe1980/growbuf/internal/mem"
)

// region is one allocation: the raw block owed back to the allocator and the
// typed view over its first cap elements.
type region[T Primitive] struct {
	raw  []byte
	data []T
}

func (r region[T]) capacity() int { return len(r.data) }

// allocRegion allocates room for n elements. On failure nothing is held.
func allocRegion[T Primitive](o Options, n int) (region[T], error) {
	size, err := conv.ByteSize(n, mem.SizeOf[T]())
	if err != nil {
		err = &AllocationError{Elements: n, Bytes: -1, cause: err}
		o.Metrics.RecordAllocation(0, err)
		o.Logger.LogAllocation(context.Background(), n, -1, err)
		return region[T]{}, err
	}

	raw, err := o.Allocator.Allocate(size)
	if err == nil && len(raw) < size {
		_ = o.Allocator.Free(raw)
		err = fmt.Errorf("allocator returned %d of %d bytes", len(raw), size)
	}
	if err == nil && !mem.Aligned(raw, mem.AlignOf[T]()) {
		_ = o.Allocator.Free(raw)
		err = fmt.Errorf("allocator returned a block misaligned for %s", KindOf[T]())
	}
	if err != nil {
		err = &AllocationError{Elements: n, Bytes: size, cause: err}
	}
	o.Metrics.RecordAllocation(size, err)
	o.Logger.LogAllocation(context.Background(), n, size, err)
	if err != nil {
		return region[T]{}, err
	}

	data := mem.View[T](raw)
	if n < len(data) {
		data = data[:n:n]
	}
	return region[T]{raw: raw, data: data}, nil
}

// freeRegion returns r to the allocator. Releasing the zero region is a no-op.
func freeRegion[T Primitive](o Options, r region[T]) error {
	if r.raw == nil {
		return nil
	}
	if err := o.Allocator.Free(r.raw); err != nil {
		o.Logger.LogRelease(context.Background(), len(r.raw), err)
		return err
	}
	o.Metrics.RecordFree(len(r.raw))
	return nil
}
