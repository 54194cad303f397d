// Package mem provides memory allocation utilities.
//
// # Aligned Allocation
//
// Provides 64-byte aligned allocation so that typed views of any primitive
// element width (up to complex128) start on a valid boundary.
//
// # Typed Views
//
// View and Bytes convert between raw byte blocks and typed element slices
// without copying. They are only valid for pointer-free element types.
package mem
