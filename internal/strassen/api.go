package strassen

import (
	"context"
	"fmt"

	"github.com/agbru/strassen/internal/matrix"
)

// Multiply computes C = A * B for size x size matrices stored in flat,
// row-major buffers with leading dimensions lda, ldb and ldc. A and B are
// wrapped as read-only views; the result is written into c using ldc.
// No state is retained between calls.
//
// The parallel engine is used unless opts.Sequential is set.
//
// Parameters:
//   - ctx: The context for cancellation.
//   - a, lda: The left operand and its leading dimension.
//   - b, ldb: The right operand and its leading dimension.
//   - c, ldc: The output buffer and its leading dimension.
//   - size: The logical dimension of the matrices.
//   - opts: Configuration options.
//
// Returns:
//   - error: An error if a buffer is too small, the size cannot be halved
//     down to the leaf size, or the multiplication fails.
func Multiply(ctx context.Context, a []float64, lda int, b []float64, ldb int, c []float64, ldc int, size int, opts Options) error {
	opts = normalizeOptions(opts)
	var core coreMultiplier = ParallelStrassen{}
	if opts.Sequential {
		core = SequentialStrassen{}
	}
	return MultiplyInto(ctx, NewMultiplier(core), a, lda, b, ldb, c, ldc, size, opts)
}

// MultiplyInto is Multiply with an explicit algorithm.
func MultiplyInto(ctx context.Context, m Multiplier, a []float64, lda int, b []float64, ldb int, c []float64, ldc int, size int, opts Options) error {
	ma, err := matrix.Wrap(a, lda, size)
	if err != nil {
		return fmt.Errorf("operand A: %w", err)
	}
	mb, err := matrix.Wrap(b, ldb, size)
	if err != nil {
		return fmt.Errorf("operand B: %w", err)
	}
	result, err := m.Multiply(ctx, nil, 0, ma, mb, opts)
	if err != nil {
		return err
	}
	if err := result.CopyTo(c, ldc); err != nil {
		return fmt.Errorf("result C: %w", err)
	}
	return nil
}
