package growbuf

import "fmt"

// Primitive is the set of element types a GrowableBuffer can hold.
type Primitive interface {
	bool |
		int8 | int16 | int32 | int64 |
		uint8 | uint16 | uint32 | uint64 |
		float32 | float64 |
		complex64 | complex128
}

// KindOf returns the Go name of T, e.g. "float64".
func KindOf[T Primitive]() string {
	var zero T
	return fmt.Sprintf("%T", zero)
}

// fillRamp writes each slot's own index cast to T. Indices that T cannot
// represent wrap (integers) or round (floats) like an ordinary conversion.
func fillRamp[T Primitive](dst []T) {
	switch d := any(dst).(type) {
	case []bool:
		for i := range d {
			d[i] = i != 0
		}
	case []int8:
		for i := range d {
			d[i] = int8(i)
		}
	case []int16:
		for i := range d {
			d[i] = int16(i)
		}
	case []int32:
		for i := range d {
			d[i] = int32(i)
		}
	case []int64:
		for i := range d {
			d[i] = int64(i)
		}
	case []uint8:
		for i := range d {
			d[i] = uint8(i)
		}
	case []uint16:
		for i := range d {
			d[i] = uint16(i)
		}
	case []uint32:
		for i := range d {
			d[i] = uint32(i)
		}
	case []uint64:
		for i := range d {
			d[i] = uint64(i)
		}
	case []float32:
		for i := range d {
			d[i] = float32(i)
		}
	case []float64:
		for i := range d {
			d[i] = float64(i)
		}
	case []complex64:
		for i := range d {
			d[i] = complex(float32(i), 0)
		}
	case []complex128:
		for i := range d {
			d[i] = complex(float64(i), 0)
		}
	}
}
