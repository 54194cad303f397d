package growbuf

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with buffer-specific helpers.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithKind adds an element kind field to the logger.
func (l *Logger) WithKind(kind string) *Logger {
	return &Logger{
		Logger: l.Logger.With("kind", kind),
	}
}

// LogAllocation logs a block or segment allocation.
func (l *Logger) LogAllocation(ctx context.Context, elements, bytes int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "allocation failed",
			"elements", elements,
			"bytes", bytes,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "allocation completed",
			"elements", elements,
			"bytes", bytes,
		)
	}
}

// LogSegmentAdded logs growth of the segment chain.
func (l *Logger) LogSegmentAdded(ctx context.Context, capacity, segments int) {
	l.DebugContext(ctx, "segment added",
		"capacity", capacity,
		"segments", segments,
	)
}

// LogSnapshot logs a snapshot operation.
func (l *Logger) LogSnapshot(ctx context.Context, length, segments int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "snapshot failed",
			"length", length,
			"segments", segments,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "snapshot completed",
			"length", length,
			"segments", segments,
		)
	}
}

// LogClear logs a buffer reset.
func (l *Logger) LogClear(ctx context.Context, reserved int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "clear failed",
			"reserved", reserved,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "buffer cleared",
			"reserved", reserved,
		)
	}
}

// LogRelease logs a failure to return memory to the allocator.
func (l *Logger) LogRelease(ctx context.Context, bytes int, err error) {
	if err != nil {
		l.WarnContext(ctx, "release failed",
			"bytes", bytes,
			"error", err,
		)
	}
}
