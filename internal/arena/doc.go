// Package arena provides a bump allocator over off-heap chunks.
//
// # Memory Management
//
// Arena carves allocations out of large mmap-backed chunks (1 MiB default).
// Individual allocations are never returned; Reset rewinds the arena for
// reuse and Free unmaps every chunk. This suits builders that create many
// short-lived buffers and discard them together.
//
// # Concurrency Model
//
// All methods are safe for concurrent use. Slices handed out before Reset or
// Free must not be used afterwards.
package arena
