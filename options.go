package growbuf

import (
	"fmt"
	"log/slog"
)

const (
	// DefaultInitialReserve is the capacity of a fresh buffer and of each
	// segment linked by the append path when nothing larger was requested.
	DefaultInitialReserve = 1024

	// DefaultParallelSnapshotThreshold is the folded length at which Snapshot
	// starts copying segments concurrently (when SnapshotWorkers > 1).
	DefaultParallelSnapshotThreshold = 1 << 16
)

// Options configures buffer construction and growth.
//
// InitialReserve is the only field the buffer semantics depend on; the rest
// wire in memory, logging and metrics plumbing. Zero values fall back to
// defaults, so Options{InitialReserve: 16} is a valid configuration.
type Options struct {
	// InitialReserve is the default capacity used when no explicit size is
	// requested. Must be at least 1.
	InitialReserve int

	// Allocator provides raw memory. Defaults to HeapAllocator.
	Allocator Allocator

	// Logger receives structured logs. Defaults to NoopLogger.
	Logger *Logger

	// Metrics receives allocation and snapshot metrics. Defaults to NoopMetricsCollector.
	Metrics MetricsCollector

	// SnapshotWorkers bounds the goroutines used to fold a segment chain.
	// 0 or 1 copies serially.
	SnapshotWorkers int

	// ParallelSnapshotThreshold is the minimum folded length for a parallel copy.
	// 0 means DefaultParallelSnapshotThreshold.
	ParallelSnapshotThreshold int
}

// Option configures Options.
type Option func(*Options)

// DefaultOptions returns the default configuration.
func DefaultOptions() Options {
	return Options{
		InitialReserve:            DefaultInitialReserve,
		Allocator:                 HeapAllocator{},
		Logger:                    NoopLogger(),
		Metrics:                   NoopMetricsCollector{},
		SnapshotWorkers:           1,
		ParallelSnapshotThreshold: DefaultParallelSnapshotThreshold,
	}
}

// NewOptions applies optFns over DefaultOptions.
//
// Example:
//
//	opts := growbuf.NewOptions(
//	    growbuf.WithInitialReserve(4096),
//	    growbuf.WithAllocator(growbuf.NewMmapAllocator()),
//	)
//	buf, err := growbuf.Empty[float64](opts)
func NewOptions(optFns ...Option) Options {
	o := DefaultOptions()
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

// WithInitialReserve sets the default reserve.
func WithInitialReserve(n int) Option {
	return func(o *Options) {
		o.InitialReserve = n
	}
}

// WithAllocator sets the allocator.
// If nil is passed, HeapAllocator is used.
func WithAllocator(a Allocator) Option {
	return func(o *Options) {
		if a == nil {
			a = HeapAllocator{}
		}
		o.Allocator = a
	}
}

// WithLogger configures structured logging.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := growbuf.NewJSONLogger(slog.LevelDebug)
//	opts := growbuf.NewOptions(growbuf.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *Options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.Logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *Options) {
		o.Logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &growbuf.BasicMetricsCollector{}
//	opts := growbuf.NewOptions(growbuf.WithMetricsCollector(metrics))
//	// ... build buffers ...
//	stats := metrics.GetStats()
//	fmt.Printf("Live bytes: %d\n", stats.BytesLive)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *Options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.Metrics = mc
	}
}

// WithSnapshotWorkers sets how many goroutines may fold a segment chain.
func WithSnapshotWorkers(n int) Option {
	return func(o *Options) {
		o.SnapshotWorkers = n
	}
}

// WithParallelSnapshotThreshold sets the minimum length for a parallel fold.
func WithParallelSnapshotThreshold(n int) Option {
	return func(o *Options) {
		o.ParallelSnapshotThreshold = n
	}
}

// Validate reports whether the options can build a buffer.
func (o Options) Validate() error {
	if o.InitialReserve < 1 {
		return fmt.Errorf("%w: initial reserve must be positive, got %d", ErrInvalidOptions, o.InitialReserve)
	}
	if o.SnapshotWorkers < 0 {
		return fmt.Errorf("%w: snapshot workers must not be negative, got %d", ErrInvalidOptions, o.SnapshotWorkers)
	}
	if o.ParallelSnapshotThreshold < 0 {
		return fmt.Errorf("%w: parallel snapshot threshold must not be negative, got %d", ErrInvalidOptions, o.ParallelSnapshotThreshold)
	}
	return nil
}

// normalized fills zero-valued plumbing with defaults.
func (o Options) normalized() Options {
	if o.Allocator == nil {
		o.Allocator = HeapAllocator{}
	}
	if o.Logger == nil {
		o.Logger = NoopLogger()
	}
	if o.Metrics == nil {
		o.Metrics = NoopMetricsCollector{}
	}
	if o.SnapshotWorkers == 0 {
		o.SnapshotWorkers = 1
	}
	if o.ParallelSnapshotThreshold == 0 {
		o.ParallelSnapshotThreshold = DefaultParallelSnapshotThreshold
	}
	return o
}
