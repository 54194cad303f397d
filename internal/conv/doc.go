// Package conv provides checked integer arithmetic for allocation sizes.
//
// Element counts are multiplied by element widths before every allocation;
// the product must be validated before it reaches an allocator, otherwise a
// huge count wraps around and yields a tiny block.
//
// For conversions that are provably safe by domain constraints (e.g., loop
// indices, bounded counters), use direct type casts instead to avoid overhead.
package conv
