package strassen

import (
	apperrors "github.com/agbru/strassen/internal/errors"
	"github.com/agbru/strassen/internal/matrix"
)

// Options configures a multiplication.
type Options struct {
	// LeafSize is the block size at which recursion switches to direct
	// multiplication. If 0, DefaultLeafSize is used.
	LeafSize int
	// Sequential selects the sequential engine for the buffer entry point.
	// Multipliers obtained from a factory ignore it.
	Sequential bool
}

// normalizeOptions returns a copy of opts with defaults filled in for zero
// values.
func normalizeOptions(opts Options) Options {
	normalized := opts
	if normalized.LeafSize == 0 {
		normalized.LeafSize = DefaultLeafSize
	}
	return normalized
}

// CheckSize reports whether a matrix of the given size can be halved down to
// leafSize without ever meeting an odd dimension or a quadrant smaller than
// leafSize. Sizes at or below leafSize are always valid: they are multiplied
// directly.
//
// Parameters:
//   - size: The matrix dimension.
//   - leafSize: The recursion threshold.
//
// Returns:
//   - error: An apperrors.ConfigError naming the offending size, or nil.
func CheckSize(size, leafSize int) error {
	if leafSize < MinLeafSize {
		return apperrors.NewConfigError("leaf size must be at least %d, got %d", MinLeafSize, leafSize)
	}
	if size <= 0 {
		return apperrors.NewConfigError("matrix size must be positive, got %d", size)
	}
	for s := size; s > leafSize; s /= 2 {
		if s%2 != 0 || s/2 < leafSize {
			return subdivisionError(&matrix.SubdivisionError{Size: s, MinSize: leafSize}, leafSize)
		}
	}
	return nil
}
