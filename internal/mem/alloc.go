// Package mem provides memory allocation utilities.
package mem

import (
	"unsafe"
)

// Alignment is the byte alignment of every heap block (64 bytes, one cache line).
const Alignment = 64

// AllocAligned allocates a zeroed byte slice of the given size with 64-byte alignment.
// The returned slice is guaranteed to start at a memory address divisible by 64.
//
// Note: This function allocates slightly more memory than requested to ensure alignment.
// The underlying array is kept alive by the returned slice.
func AllocAligned(size int) []byte {
	if size <= 0 {
		return nil
	}

	totalSize := size + Alignment
	buf := make([]byte, totalSize)

	ptr := unsafe.Pointer(&buf[0]) //nolint:gosec // unsafe is required for memory alignment
	addr := uintptr(ptr)
	offset := (Alignment - (addr & (Alignment - 1))) & (Alignment - 1)

	return buf[offset : offset+uintptr(size) : offset+uintptr(size)]
}

// SizeOf returns the width of T in bytes.
func SizeOf[T any]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// View reinterprets raw as a slice of T holding len(raw)/SizeOf[T]() elements.
// raw must be aligned for T and must not contain pointers.
// The result shares memory with raw.
func View[T any](raw []byte) []T {
	width := SizeOf[T]()
	if len(raw) == 0 || width == 0 {
		return nil
	}
	n := len(raw) / width
	if n == 0 {
		return nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(raw))), n) //nolint:gosec // typed view over an aligned block
}

// Bytes returns the bytes backing s without copying.
func Bytes[T any](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(s))), len(s)*SizeOf[T]()) //nolint:gosec // byte view of a typed block
}

// AlignOf returns the required alignment of T in bytes.
func AlignOf[T any]() int {
	var zero T
	return int(unsafe.Alignof(zero))
}

// Aligned reports whether raw starts on an align-byte boundary.
// Empty slices are trivially aligned.
func Aligned(raw []byte, align int) bool {
	if len(raw) == 0 || align <= 1 {
		return true
	}
	return uintptr(unsafe.Pointer(unsafe.SliceData(raw)))%uintptr(align) == 0 //nolint:gosec // address inspection only
}
