package conv

import (
	"fmt"
	"math"
)

// ByteSize returns n*elemSize, or an error if either operand is negative or
// the product does not fit in an int.
func ByteSize(n, elemSize int) (int, error) {
	if n < 0 || elemSize < 0 {
		return 0, fmt.Errorf("invalid size: %d elements of %d bytes", n, elemSize)
	}
	if elemSize != 0 && n > math.MaxInt/elemSize {
		return 0, fmt.Errorf("integer overflow: %d elements of %d bytes exceeds max int", n, elemSize)
	}
	return n * elemSize, nil
}
