package growbuf

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting buffer metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Collectors may be shared by many buffers and must be safe for concurrent use.
type MetricsCollector interface {
	// RecordAllocation is called after each allocation request.
	// bytes is the requested size, err is nil if successful.
	RecordAllocation(bytes int, err error)

	// RecordFree is called after memory is returned to the allocator.
	RecordFree(bytes int)

	// RecordSegment is called when the append path links a new segment.
	RecordSegment(capacity int)

	// RecordSnapshot is called after each snapshot that folds a segment chain.
	// elements is the folded length, duration is the time taken.
	RecordSnapshot(elements int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordAllocation(int, error)              {}
func (NoopMetricsCollector) RecordFree(int)                           {}
func (NoopMetricsCollector) RecordSegment(int)                        {}
func (NoopMetricsCollector) RecordSnapshot(int, time.Duration, error) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	AllocationCount    atomic.Int64
	AllocationErrors   atomic.Int64
	BytesAllocated     atomic.Int64
	FreeCount          atomic.Int64
	BytesFreed         atomic.Int64
	SegmentCount       atomic.Int64
	SnapshotCount      atomic.Int64
	SnapshotErrors     atomic.Int64
	SnapshotElements   atomic.Int64
	SnapshotTotalNanos atomic.Int64
}

// RecordAllocation implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAllocation(bytes int, err error) {
	b.AllocationCount.Add(1)
	if err != nil {
		b.AllocationErrors.Add(1)
		return
	}
	b.BytesAllocated.Add(int64(bytes))
}

// RecordFree implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFree(bytes int) {
	b.FreeCount.Add(1)
	b.BytesFreed.Add(int64(bytes))
}

// RecordSegment implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSegment(capacity int) {
	b.SegmentCount.Add(1)
}

// RecordSnapshot implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSnapshot(elements int, duration time.Duration, err error) {
	b.SnapshotCount.Add(1)
	b.SnapshotTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SnapshotErrors.Add(1)
		return
	}
	b.SnapshotElements.Add(int64(elements))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		AllocationCount:  b.AllocationCount.Load(),
		AllocationErrors: b.AllocationErrors.Load(),
		BytesAllocated:   b.BytesAllocated.Load(),
		FreeCount:        b.FreeCount.Load(),
		BytesFreed:       b.BytesFreed.Load(),
		BytesLive:        b.BytesAllocated.Load() - b.BytesFreed.Load(),
		SegmentCount:     b.SegmentCount.Load(),
		SnapshotCount:    b.SnapshotCount.Load(),
		SnapshotErrors:   b.SnapshotErrors.Load(),
		SnapshotElements: b.SnapshotElements.Load(),
		SnapshotAvgNanos: b.getAvgSnapshotNanos(),
	}
}

func (b *BasicMetricsCollector) getAvgSnapshotNanos() int64 {
	count := b.SnapshotCount.Load()
	if count == 0 {
		return 0
	}
	return b.SnapshotTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	AllocationCount  int64
	AllocationErrors int64
	BytesAllocated   int64
	FreeCount        int64
	BytesFreed       int64
	BytesLive        int64
	SegmentCount     int64
	SnapshotCount    int64
	SnapshotErrors   int64
	SnapshotElements int64
	SnapshotAvgNanos int64
}
