package matrix

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the matrix package. Structured errors below
// match them through errors.Is, so callers only need the sentinels.
var (
	// ErrInvalidSize is returned when a requested dimension is not positive.
	ErrInvalidSize = errors.New("matrix: size must be > 0")

	// ErrSizeMismatch is returned when two operands of an element-wise
	// operation, a combination or a merge do not share the same size.
	ErrSizeMismatch = errors.New("matrix: size mismatch")

	// ErrBufferTooSmall is returned when a caller-supplied buffer cannot hold
	// a matrix of the requested size and stride.
	ErrBufferTooSmall = errors.New("matrix: buffer too small")

	// ErrSubdivision is returned when a quadrant would fall below the minimum
	// block size. It signals an inconsistent size/threshold configuration.
	ErrSubdivision = errors.New("matrix: subdivision below minimum block size")
)

// SizeError describes an operation applied to operands of different sizes.
type SizeError struct {
	Op          string
	Left, Right int
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("matrix: %s: size mismatch (%d vs %d)", e.Op, e.Left, e.Right)
}

// Is reports whether target is ErrSizeMismatch.
func (e *SizeError) Is(target error) bool {
	return target == ErrSizeMismatch
}

// SubdivisionError identifies the size that could not be halved and the
// minimum block size it was checked against.
type SubdivisionError struct {
	Size    int
	MinSize int
}

func (e *SubdivisionError) Error() string {
	if e.Size%2 != 0 {
		return fmt.Sprintf("matrix: cannot divide odd size %d (minimum block size %d)", e.Size, e.MinSize)
	}
	return fmt.Sprintf("matrix: cannot divide size %d: half %d is below minimum block size %d",
		e.Size, e.Size/2, e.MinSize)
}

// Is reports whether target is ErrSubdivision.
func (e *SubdivisionError) Is(target error) bool {
	return target == ErrSubdivision
}

func checkSameSize(op string, a, b *Matrix) error {
	if a.size != b.size {
		return &SizeError{Op: op, Left: a.size, Right: b.size}
	}
	return nil
}
