package growbuf

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/growbuf/internal/resource"
)

func testOptions(initial int) Options {
	return NewOptions(WithInitialReserve(initial))
}

func appendAll[T Primitive](t *testing.T, b *GrowableBuffer[T], values ...T) {
	t.Helper()
	for _, v := range values {
		require.NoError(t, b.Append(v))
	}
}

func snapshotValues[T Primitive](t *testing.T, b *GrowableBuffer[T]) []T {
	t.Helper()
	require.NoError(t, b.Snapshot())
	data, err := b.Ptr()
	require.NoError(t, err)
	return append([]T(nil), data...)
}

func TestEmpty(t *testing.T) {
	t.Run("initial reserve", func(t *testing.T) {
		b, err := Empty[int64](testOptions(8))
		require.NoError(t, err)
		defer b.Close()

		assert.Equal(t, 0, b.Length())
		assert.Equal(t, 8, b.Reserved())
		assert.Equal(t, 0, b.SegmentCount())
		assert.True(t, b.Snapshotted())
	})

	t.Run("min reserve wins", func(t *testing.T) {
		b, err := EmptyReserve[int64](testOptions(8), 100)
		require.NoError(t, err)
		defer b.Close()

		assert.Equal(t, 100, b.Reserved())
	})

	t.Run("initial reserve wins", func(t *testing.T) {
		b, err := EmptyReserve[int64](testOptions(8), 3)
		require.NoError(t, err)
		defer b.Close()

		assert.Equal(t, 8, b.Reserved())
	})

	t.Run("negative reserve", func(t *testing.T) {
		_, err := EmptyReserve[int64](testOptions(8), -1)
		assert.ErrorIs(t, err, ErrInvalidSize)
	})

	t.Run("invalid options", func(t *testing.T) {
		_, err := Empty[int64](Options{})
		assert.ErrorIs(t, err, ErrInvalidOptions)
	})
}

func TestFull(t *testing.T) {
	t.Run("length exceeds initial reserve", func(t *testing.T) {
		b, err := Full[int32](testOptions(2), 9, 3)
		require.NoError(t, err)
		defer b.Close()

		assert.Equal(t, 3, b.Length())
		assert.Equal(t, 3, b.Reserved())
		for i := 0; i < 3; i++ {
			v, err := b.At(i)
			require.NoError(t, err)
			assert.Equal(t, int32(9), v)
		}
	})

	t.Run("initial reserve exceeds length", func(t *testing.T) {
		b, err := Full(testOptions(16), 1.5, 4)
		require.NoError(t, err)
		defer b.Close()

		assert.Equal(t, 16, b.Reserved())
		data, err := b.Ptr()
		require.NoError(t, err)
		assert.Equal(t, []float64{1.5, 1.5, 1.5, 1.5}, data)
	})

	t.Run("bool", func(t *testing.T) {
		b, err := Full(testOptions(4), true, 5)
		require.NoError(t, err)
		defer b.Close()

		data, err := b.Ptr()
		require.NoError(t, err)
		assert.Equal(t, []bool{true, true, true, true, true}, data)
	})

	t.Run("zero length", func(t *testing.T) {
		b, err := Full[uint8](testOptions(4), 1, 0)
		require.NoError(t, err)
		defer b.Close()

		data, err := b.Ptr()
		require.NoError(t, err)
		assert.Empty(t, data)
	})

	t.Run("negative length", func(t *testing.T) {
		_, err := Full[uint8](testOptions(4), 1, -2)
		assert.ErrorIs(t, err, ErrInvalidSize)
	})
}

func TestArange(t *testing.T) {
	t.Run("int32", func(t *testing.T) {
		b, err := Arange[int32](testOptions(4), 10)
		require.NoError(t, err)
		defer b.Close()

		assert.Equal(t, 10, b.Reserved())
		for i := 0; i < 10; i++ {
			v, err := b.At(i)
			require.NoError(t, err)
			assert.Equal(t, int32(i), v)
		}
	})

	t.Run("float32", func(t *testing.T) {
		b, err := Arange[float32](testOptions(4), 3)
		require.NoError(t, err)
		defer b.Close()

		data, _ := b.Ptr()
		assert.Equal(t, []float32{0, 1, 2}, data)
	})

	t.Run("complex128", func(t *testing.T) {
		b, err := Arange[complex128](testOptions(4), 3)
		require.NoError(t, err)
		defer b.Close()

		data, _ := b.Ptr()
		assert.Equal(t, []complex128{0, 1, 2}, data)
	})

	t.Run("bool", func(t *testing.T) {
		b, err := Arange[bool](testOptions(4), 3)
		require.NoError(t, err)
		defer b.Close()

		data, _ := b.Ptr()
		assert.Equal(t, []bool{false, true, true}, data)
	})

	t.Run("uint8 wraps", func(t *testing.T) {
		b, err := Arange[uint8](testOptions(4), 300)
		require.NoError(t, err)
		defer b.Close()

		v, err := b.At(255)
		require.NoError(t, err)
		assert.Equal(t, uint8(255), v)
		v, err = b.At(256)
		require.NoError(t, err)
		assert.Equal(t, uint8(0), v)
	})
}

func TestAppend_Length(t *testing.T) {
	for _, n := range []int{0, 1, 3, 4, 5, 8, 9, 100, 1000} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			b, err := Empty[int64](testOptions(4))
			require.NoError(t, err)
			defer b.Close()

			for i := 0; i < n; i++ {
				require.NoError(t, b.Append(int64(i)))
			}
			assert.Equal(t, n, b.Length())
		})
	}
}

func TestAppend_SnapshotPreservesOrder(t *testing.T) {
	for _, initial := range []int{1, 2, 4, 7, 64} {
		for _, n := range []int{0, 1, 6, 7, 8, 63, 64, 65, 500} {
			t.Run(fmt.Sprintf("initial=%d/n=%d", initial, n), func(t *testing.T) {
				b, err := Empty[int64](testOptions(initial))
				require.NoError(t, err)
				defer b.Close()

				want := make([]int64, n)
				for i := range want {
					want[i] = int64(i*3 - 7)
					require.NoError(t, b.Append(want[i]))
				}

				got := snapshotValues(t, b)
				if n == 0 {
					assert.Empty(t, got)
					return
				}
				if diff := cmp.Diff(want, got); diff != "" {
					t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
				}
				for i := range want {
					v, err := b.At(i)
					require.NoError(t, err)
					assert.Equal(t, want[i], v)
				}
			})
		}
	}
}

func TestAppend_SevenValuesWithReserveFour(t *testing.T) {
	b, err := Empty[int64](testOptions(4))
	require.NoError(t, err)
	defer b.Close()

	appendAll(t, b, 1, 2, 3, 4, 5, 6, 7)
	require.NoError(t, b.Snapshot())

	for i := 0; i < 7; i++ {
		v, err := b.At(i)
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), v)
	}
	assert.Equal(t, 7, b.Length())
	assert.GreaterOrEqual(t, b.SegmentCount(), 2)
}

func TestAppend_SegmentsGrowOnFullTail(t *testing.T) {
	b, err := Empty[int16](testOptions(4))
	require.NoError(t, err)
	defer b.Close()

	appendAll(t, b, 1, 2, 3, 4)
	assert.Equal(t, 1, b.SegmentCount())

	appendAll(t, b, 5)
	assert.Equal(t, 2, b.SegmentCount())

	appendAll(t, b, 6, 7, 8)
	assert.Equal(t, 2, b.SegmentCount())

	appendAll(t, b, 9)
	assert.Equal(t, 3, b.SegmentCount())

	for seg := b.head; seg != nil; seg = seg.next {
		assert.LessOrEqual(t, seg.fill, seg.capacity())
		assert.Equal(t, 4, seg.capacity())
	}
	assert.Nil(t, b.tail.next)
}

func TestAppend_AdoptsPresizedBlock(t *testing.T) {
	b, err := Full[int64](testOptions(2), 7, 3)
	require.NoError(t, err)
	defer b.Close()

	appendAll(t, b, 8, 9)
	assert.Equal(t, 5, b.Length())
	assert.Equal(t, 2, b.SegmentCount())
	assert.False(t, b.Snapshotted())

	assert.Equal(t, []int64{7, 7, 7, 8, 9}, snapshotValues(t, b))
}

func TestAppend_AfterSnapshotExtendsChain(t *testing.T) {
	b, err := Empty[uint32](testOptions(3))
	require.NoError(t, err)
	defer b.Close()

	appendAll(t, b, 1, 2, 3, 4)
	assert.Equal(t, []uint32{1, 2, 3, 4}, snapshotValues(t, b))
	assert.Equal(t, 2, b.SegmentCount())

	appendAll(t, b, 5)
	assert.False(t, b.Snapshotted())

	_, err = b.At(0)
	assert.ErrorIs(t, err, ErrNotSnapshotted)
	_, err = b.Ptr()
	assert.ErrorIs(t, err, ErrNotSnapshotted)

	assert.Equal(t, []uint32{1, 2, 3, 4, 5}, snapshotValues(t, b))
}

func TestSnapshot_Idempotent(t *testing.T) {
	b, err := Empty[float64](testOptions(2))
	require.NoError(t, err)
	defer b.Close()

	appendAll(t, b, 0.5, 1.5, 2.5, 3.5, 4.5)

	first := snapshotValues(t, b)
	ptr1, _ := b.Ptr()
	second := snapshotValues(t, b)
	ptr2, _ := b.Ptr()

	assert.Equal(t, first, second)
	assert.Same(t, &ptr1[0], &ptr2[0])
}

func TestSnapshot_ContiguousIsNoop(t *testing.T) {
	b, err := Arange[int8](testOptions(4), 4)
	require.NoError(t, err)
	defer b.Close()

	before, _ := b.Ptr()
	require.NoError(t, b.Snapshot())
	after, _ := b.Ptr()
	assert.Same(t, &before[0], &after[0])
}

func TestSnapshot_Parallel(t *testing.T) {
	opts := NewOptions(
		WithInitialReserve(16),
		WithSnapshotWorkers(4),
		WithParallelSnapshotThreshold(1),
	)
	b, err := Empty[int32](opts)
	require.NoError(t, err)
	defer b.Close()

	want := make([]int32, 10_000)
	for i := range want {
		want[i] = int32(i)
		require.NoError(t, b.Append(want[i]))
	}
	require.True(t, b.parallelFold())

	if diff := cmp.Diff(want, snapshotValues(t, b)); diff != "" {
		t.Errorf("parallel snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestSetReserved(t *testing.T) {
	t.Run("no-op at or below reserved", func(t *testing.T) {
		b, err := Arange[int64](testOptions(8), 5)
		require.NoError(t, err)
		defer b.Close()

		before, _ := b.Ptr()
		require.NoError(t, b.SetReserved(8))
		require.NoError(t, b.SetReserved(2))
		require.NoError(t, b.SetReserved(-1))
		assert.Equal(t, 8, b.Reserved())

		after, _ := b.Ptr()
		assert.Same(t, &before[0], &after[0])
	})

	t.Run("grows to exact target", func(t *testing.T) {
		b, err := Arange[int64](testOptions(8), 5)
		require.NoError(t, err)
		defer b.Close()

		require.NoError(t, b.SetReserved(13))
		assert.Equal(t, 13, b.Reserved())
		assert.Equal(t, 5, b.Length())

		data, _ := b.Ptr()
		assert.Equal(t, []int64{0, 1, 2, 3, 4}, data)
	})

	t.Run("segmented folds chain", func(t *testing.T) {
		b, err := Empty[int64](testOptions(4))
		require.NoError(t, err)
		defer b.Close()

		appendAll(t, b, 1, 2, 3, 4, 5, 6)

		require.NoError(t, b.SetReserved(3))
		assert.Equal(t, 2, b.SegmentCount(), "below reserved keeps the chain")

		require.NoError(t, b.SetReserved(5))
		assert.Equal(t, 0, b.SegmentCount())
		assert.Equal(t, 6, b.Reserved(), "capacity never drops below length")
		assert.True(t, b.Snapshotted())

		require.NoError(t, b.SetReserved(20))
		assert.Equal(t, 20, b.Reserved())

		data, _ := b.Ptr()
		assert.Equal(t, []int64{1, 2, 3, 4, 5, 6}, data)
	})
}

func TestSetLength(t *testing.T) {
	t.Run("grow to exact fit", func(t *testing.T) {
		b, err := Empty[int16](testOptions(4))
		require.NoError(t, err)
		defer b.Close()

		require.NoError(t, b.SetLength(3))
		assert.Equal(t, 3, b.Length())
		assert.Equal(t, 4, b.Reserved())

		require.NoError(t, b.SetLength(9))
		assert.Equal(t, 9, b.Length())
		assert.Equal(t, 9, b.Reserved())
	})

	t.Run("shrink keeps capacity", func(t *testing.T) {
		b, err := Arange[int16](testOptions(4), 6)
		require.NoError(t, err)
		defer b.Close()

		require.NoError(t, b.SetLength(2))
		assert.Equal(t, 6, b.Reserved())
		data, _ := b.Ptr()
		assert.Equal(t, []int16{0, 1}, data)
	})

	t.Run("segmented folds chain", func(t *testing.T) {
		b, err := Empty[int16](testOptions(4))
		require.NoError(t, err)
		defer b.Close()

		appendAll(t, b, 1, 2, 3, 4, 5, 6)
		require.NoError(t, b.SetLength(10))

		assert.Equal(t, 0, b.SegmentCount())
		assert.Equal(t, 10, b.Length())
		assert.Equal(t, 10, b.Reserved())
		data, _ := b.Ptr()
		assert.Equal(t, []int16{1, 2, 3, 4, 5, 6}, data[:6])
	})

	t.Run("appends after set length", func(t *testing.T) {
		b, err := Empty[int16](testOptions(4))
		require.NoError(t, err)
		defer b.Close()

		require.NoError(t, b.SetLength(2))
		data, _ := b.Ptr()
		data[0], data[1] = 10, 11
		appendAll(t, b, 12, 13, 14)

		assert.Equal(t, []int16{10, 11, 12, 13, 14}, snapshotValues(t, b))
	})

	t.Run("negative", func(t *testing.T) {
		b, err := Empty[int16](testOptions(4))
		require.NoError(t, err)
		defer b.Close()

		assert.ErrorIs(t, b.SetLength(-1), ErrInvalidSize)
	})
}

func TestClear(t *testing.T) {
	b, err := Empty[int64](testOptions(4))
	require.NoError(t, err)
	defer b.Close()

	appendAll(t, b, 1, 2, 3, 4, 5, 6, 7, 8, 9)
	require.NoError(t, b.SetReserved(50))
	require.NoError(t, b.Clear())

	assert.Equal(t, 0, b.Length())
	assert.Equal(t, 4, b.Reserved())
	assert.Equal(t, 0, b.SegmentCount())
	assert.True(t, b.Snapshotted())

	appendAll(t, b, 42)
	assert.Equal(t, []int64{42}, snapshotValues(t, b))
}

func TestClear_ReleasesChain(t *testing.T) {
	alloc := NewLimitedAllocator(nil, 0)
	b, err := Empty[int64](NewOptions(WithInitialReserve(4), WithAllocator(alloc)))
	require.NoError(t, err)
	defer b.Close()

	for i := 0; i < 40; i++ {
		require.NoError(t, b.Append(int64(i)))
	}
	require.NoError(t, b.Snapshot())
	require.NoError(t, b.Clear())

	assert.Equal(t, int64(4*8), alloc.MemoryUsage())
}

func TestAt(t *testing.T) {
	b, err := Arange[int64](testOptions(4), 3)
	require.NoError(t, err)
	defer b.Close()

	for _, idx := range []int{-1, 3, 100} {
		_, err := b.At(idx)
		assert.ErrorIs(t, err, ErrIndexOutOfRange)

		var ie *IndexError
		require.True(t, errors.As(err, &ie))
		assert.Equal(t, idx, ie.Index)
		assert.Equal(t, 3, ie.Length)
	}

	t.Run("unwritten reserve is out of range", func(t *testing.T) {
		_, err := b.At(3)
		assert.ErrorIs(t, err, ErrIndexOutOfRange)
	})
}

func TestGetPtr(t *testing.T) {
	b, err := Empty[int64](testOptions(2))
	require.NoError(t, err)
	defer b.Close()

	appendAll(t, b, 1, 2, 3)

	_, err = b.GetPtr()
	require.ErrorIs(t, err, ErrNotSnapshotted)

	require.NoError(t, b.Snapshot())
	block, err := b.GetPtr()
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2, 3}, block.Data())
	assert.Equal(t, 3, block.Len())
	assert.Len(t, block.Bytes(), 3*8)

	assert.Equal(t, 0, b.Length())
	assert.Equal(t, 0, b.Reserved())
	assert.Equal(t, 0, b.SegmentCount())
	data, err := b.Ptr()
	require.NoError(t, err)
	assert.Empty(t, data)

	// The emptied buffer starts over on the next append.
	appendAll(t, b, 4)
	assert.Equal(t, 1, b.SegmentCount())
	assert.Equal(t, 2, b.Reserved())
	assert.Equal(t, 2, b.head.capacity())
	assert.Equal(t, []int64{4}, snapshotValues(t, b))

	// The moved block is unaffected.
	assert.Equal(t, []int64{1, 2, 3}, block.Data())

	require.NoError(t, block.Release())
	assert.Nil(t, block.Data())
	assert.Equal(t, 0, block.Len())
	require.NoError(t, block.Release())
}

func TestClose(t *testing.T) {
	b, err := Full[int8](testOptions(4), 1, 2)
	require.NoError(t, err)

	require.NoError(t, b.Close())
	require.NoError(t, b.Close())

	assert.ErrorIs(t, b.Append(1), ErrClosed)
	assert.ErrorIs(t, b.Snapshot(), ErrClosed)
	assert.ErrorIs(t, b.SetLength(1), ErrClosed)
	assert.ErrorIs(t, b.SetReserved(10), ErrClosed)
	assert.ErrorIs(t, b.Clear(), ErrClosed)
	_, err = b.At(0)
	assert.ErrorIs(t, err, ErrClosed)
	_, err = b.Ptr()
	assert.ErrorIs(t, err, ErrClosed)
	_, err = b.GetPtr()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestClose_LongChain(t *testing.T) {
	alloc := NewLimitedAllocator(nil, 0)
	b, err := Empty[uint8](NewOptions(WithInitialReserve(1), WithAllocator(alloc)))
	require.NoError(t, err)

	const n = 200_000
	for i := 0; i < n; i++ {
		require.NoError(t, b.Append(uint8(i)))
	}
	assert.Equal(t, n, b.SegmentCount())

	require.NoError(t, b.Close())
	assert.Equal(t, int64(0), alloc.MemoryUsage())
}

func TestAllocationFailure_LeavesStateUnchanged(t *testing.T) {
	// int64 with reserve 4 is 32 bytes per block.
	newLimited := func(t *testing.T, limit int64) *GrowableBuffer[int64] {
		t.Helper()
		opts := NewOptions(WithInitialReserve(4), WithAllocator(NewLimitedAllocator(nil, limit)))
		b, err := Empty[int64](opts)
		require.NoError(t, err)
		t.Cleanup(func() { _ = b.Close() })
		return b
	}

	t.Run("construction", func(t *testing.T) {
		opts := NewOptions(WithInitialReserve(4), WithAllocator(NewLimitedAllocator(nil, 16)))
		_, err := Empty[int64](opts)
		assert.ErrorIs(t, err, ErrAllocationFailed)
		assert.ErrorIs(t, err, resource.ErrMemoryLimitExceeded)

		var ae *AllocationError
		require.True(t, errors.As(err, &ae))
		assert.Equal(t, 4, ae.Elements)
		assert.Equal(t, 32, ae.Bytes)
	})

	t.Run("append", func(t *testing.T) {
		b := newLimited(t, 64)
		appendAll(t, b, 1, 2, 3, 4, 5, 6, 7, 8)

		err := b.Append(9)
		assert.ErrorIs(t, err, ErrAllocationFailed)
		assert.Equal(t, 8, b.Length())
		assert.Equal(t, 2, b.SegmentCount())
		assert.Equal(t, []int64{1, 2, 3, 4, 5, 6, 7, 8}, chainValues(t, b))
	})

	t.Run("append on full contiguous block", func(t *testing.T) {
		opts := NewOptions(WithInitialReserve(4), WithAllocator(NewLimitedAllocator(nil, 32)))
		b, err := Full[int64](opts, 3, 4)
		require.NoError(t, err)
		defer b.Close()

		err = b.Append(4)
		assert.ErrorIs(t, err, ErrAllocationFailed)
		assert.True(t, b.Snapshotted())
		assert.Equal(t, 0, b.SegmentCount())
		assert.Equal(t, 4, b.Length())

		v, err := b.At(3)
		require.NoError(t, err)
		assert.Equal(t, int64(3), v)
	})

	t.Run("set reserved", func(t *testing.T) {
		b := newLimited(t, 40)
		require.NoError(t, b.SetLength(2))

		err := b.SetReserved(5)
		assert.ErrorIs(t, err, ErrAllocationFailed)
		assert.Equal(t, 4, b.Reserved())
		assert.Equal(t, 2, b.Length())
	})

	t.Run("snapshot", func(t *testing.T) {
		b := newLimited(t, 64)
		appendAll(t, b, 1, 2, 3, 4, 5)

		err := b.Snapshot()
		assert.ErrorIs(t, err, ErrAllocationFailed)
		assert.False(t, b.Snapshotted())
		assert.Equal(t, 5, b.Length())
		assert.Equal(t, 2, b.SegmentCount())
	})

	t.Run("clear", func(t *testing.T) {
		b := newLimited(t, 32)
		appendAll(t, b, 1, 2)

		err := b.Clear()
		assert.ErrorIs(t, err, ErrAllocationFailed)
		assert.Equal(t, 2, b.Length())
	})
}

// chainValues reads the segment chain directly, for buffers that cannot
// afford a snapshot under a tight memory limit.
func chainValues[T Primitive](t *testing.T, b *GrowableBuffer[T]) []T {
	t.Helper()
	var out []T
	for seg := b.head; seg != nil; seg = seg.next {
		out = append(out, seg.data[:seg.fill]...)
	}
	return out
}

func TestAllocationFailure_Overflow(t *testing.T) {
	b, err := Empty[complex128](testOptions(4))
	require.NoError(t, err)
	defer b.Close()

	err = b.SetReserved(int(^uint(0) >> 1))
	assert.ErrorIs(t, err, ErrAllocationFailed)
	assert.Equal(t, 4, b.Reserved())
}

func TestMmapAllocator_Buffer(t *testing.T) {
	alloc := NewMmapAllocator()
	defer alloc.Close()

	opts := NewOptions(WithInitialReserve(512), WithAllocator(alloc))
	b, err := Empty[float64](opts)
	require.NoError(t, err)

	want := make([]float64, 2000)
	for i := range want {
		want[i] = float64(i) / 4
		require.NoError(t, b.Append(want[i]))
	}
	assert.Equal(t, want, snapshotValues(t, b))

	block, err := b.GetPtr()
	require.NoError(t, err)
	require.NoError(t, b.Close())
	assert.Equal(t, 1, alloc.Live())

	assert.Equal(t, want, block.Data())
	require.NoError(t, block.Release())
	assert.Equal(t, 0, alloc.Live())
}

func TestStats(t *testing.T) {
	b, err := Empty[int32](testOptions(4))
	require.NoError(t, err)
	defer b.Close()

	appendAll(t, b, 1, 2, 3, 4, 5)
	s := b.Stats()
	assert.Equal(t, 5, s.Length)
	assert.Equal(t, 4, s.Reserved)
	assert.Equal(t, 2, s.Segments)
	assert.False(t, s.Snapshotted)
	assert.Equal(t, 2*4*4, s.BytesHeld)

	require.NoError(t, b.Snapshot())
	s = b.Stats()
	assert.True(t, s.Snapshotted)
	assert.Equal(t, 2*4*4+5*4, s.BytesHeld)
}

func testAllKinds[T Primitive](t *testing.T, values []T) {
	t.Run(KindOf[T](), func(t *testing.T) {
		b, err := Empty[T](testOptions(3))
		require.NoError(t, err)
		defer b.Close()

		appendAll(t, b, values...)
		assert.Equal(t, values, snapshotValues(t, b))

		f, err := Full(testOptions(3), values[0], 5)
		require.NoError(t, err)
		defer f.Close()
		v, err := f.At(4)
		require.NoError(t, err)
		assert.Equal(t, values[0], v)
	})
}

func TestAllKinds(t *testing.T) {
	testAllKinds(t, []bool{true, false, true, true, false})
	testAllKinds(t, []int8{-128, -1, 0, 1, 127})
	testAllKinds(t, []int16{-32768, -1, 0, 1, 32767})
	testAllKinds(t, []int32{-1 << 31, -1, 0, 1, 1<<31 - 1})
	testAllKinds(t, []int64{-1 << 63, -1, 0, 1, 1<<63 - 1})
	testAllKinds(t, []uint8{0, 1, 2, 254, 255})
	testAllKinds(t, []uint16{0, 1, 2, 65534, 65535})
	testAllKinds(t, []uint32{0, 1, 2, 1<<32 - 2, 1<<32 - 1})
	testAllKinds(t, []uint64{0, 1, 2, 1<<64 - 2, 1<<64 - 1})
	testAllKinds(t, []float32{-1.5, 0, 0.25, 3.75, 1e30})
	testAllKinds(t, []float64{-1.5, 0, 0.25, 3.75, 1e300})
	testAllKinds(t, []complex64{complex(1, -1), 0, complex(0.5, 2), 3, complex(-4, 4)})
	testAllKinds(t, []complex128{complex(1, -1), 0, complex(0.5, 2), 3, complex(-4, 4)})
}

func BenchmarkAppend(b *testing.B) {
	for _, reserve := range []int{64, 1024, 16384} {
		b.Run(fmt.Sprintf("reserve=%d", reserve), func(b *testing.B) {
			b.ReportAllocs()
			buf, err := Empty[float64](testOptions(reserve))
			if err != nil {
				b.Fatal(err)
			}
			defer buf.Close()

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if err := buf.Append(float64(i)); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkSnapshot(b *testing.B) {
	for _, workers := range []int{1, 4} {
		b.Run(fmt.Sprintf("workers=%d", workers), func(b *testing.B) {
			b.ReportAllocs()
			opts := NewOptions(
				WithInitialReserve(4096),
				WithSnapshotWorkers(workers),
				WithParallelSnapshotThreshold(1),
			)
			buf, err := Empty[int64](opts)
			if err != nil {
				b.Fatal(err)
			}
			defer buf.Close()
			for i := 0; i < 1<<20; i++ {
				_ = buf.Append(int64(i))
			}

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				buf.synced = false
				if err := buf.Snapshot(); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

type failingFreeAllocator struct {
	HeapAllocator
	err error
}

func (f failingFreeAllocator) Free([]byte) error { return f.err }

func TestReleaseFailure_ReportedAfterCommit(t *testing.T) {
	boom := errors.New("free failed")
	opts := NewOptions(WithInitialReserve(2), WithAllocator(failingFreeAllocator{err: boom}))

	t.Run("set reserved", func(t *testing.T) {
		b, err := Full[int32](opts, 5, 2)
		require.NoError(t, err)

		err = b.SetReserved(6)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 6, b.Reserved())
		assert.Equal(t, []int32{5, 5}, snapshotValues(t, b))
	})

	t.Run("set length on chain", func(t *testing.T) {
		b, err := Empty[int32](opts)
		require.NoError(t, err)
		appendAll(t, b, 1, 2, 3)

		err = b.SetLength(3)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 3, b.Length())
		assert.Equal(t, 0, b.SegmentCount())
		assert.Equal(t, []int32{1, 2, 3}, snapshotValues(t, b))
	})

	t.Run("snapshot after append", func(t *testing.T) {
		b, err := Empty[int32](opts)
		require.NoError(t, err)
		appendAll(t, b, 1, 2, 3)
		require.NoError(t, b.Snapshot())

		appendAll(t, b, 4)
		err = b.Snapshot()
		assert.ErrorIs(t, err, boom)
		assert.True(t, b.Snapshotted())

		data, err := b.Ptr()
		require.NoError(t, err)
		assert.Equal(t, []int32{1, 2, 3, 4}, data)
	})

	t.Run("clear", func(t *testing.T) {
		b, err := Empty[int32](opts)
		require.NoError(t, err)
		appendAll(t, b, 1, 2, 3)

		err = b.Clear()
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 0, b.Length())
		assert.Equal(t, 0, b.SegmentCount())
		assert.Equal(t, 2, b.Reserved())
	})
}
