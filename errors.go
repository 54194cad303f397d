package growbuf

import (
	"errors"
	"fmt"
)

var (
	// ErrAllocationFailed is returned when an allocator cannot satisfy a request.
	// Inspect the error with errors.As(*AllocationError) for the request size.
	ErrAllocationFailed = errors.New("allocation failed")

	// ErrIndexOutOfRange is returned by checked reads past the logical length.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrNotSnapshotted is returned when a contiguous view is requested while
	// appended values still live in the segment chain. Call Snapshot first.
	ErrNotSnapshotted = errors.New("buffer has appended values that are not snapshotted")

	// ErrInvalidSize is returned when a negative length or reserve is requested.
	ErrInvalidSize = errors.New("size must not be negative")

	// ErrInvalidOptions is returned when Options fail validation.
	ErrInvalidOptions = errors.New("invalid options")

	// ErrClosed is returned when operating on a closed buffer or allocator.
	ErrClosed = errors.New("use of closed buffer or allocator")

	// ErrUnknownBlock is returned when an allocator is asked to free memory it
	// did not hand out.
	ErrUnknownBlock = errors.New("unknown block")
)

// AllocationError describes a failed allocation request.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type AllocationError struct {
	Elements int
	Bytes    int
	cause    error
}

func (e *AllocationError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("allocation of %d elements (%d bytes) failed: %v", e.Elements, e.Bytes, e.cause)
	}
	return fmt.Sprintf("allocation of %d elements (%d bytes) failed", e.Elements, e.Bytes)
}

func (e *AllocationError) Unwrap() error { return e.cause }

// Is reports ErrAllocationFailed as a match so callers need not know the concrete type.
func (e *AllocationError) Is(target error) bool { return target == ErrAllocationFailed }

// IndexError reports a read past the logical length.
type IndexError struct {
	Index  int
	Length int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("index %d out of range [0:%d]", e.Index, e.Length)
}

func (e *IndexError) Is(target error) bool { return target == ErrIndexOutOfRange }
