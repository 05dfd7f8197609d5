package strassen

import (
	"context"

	"github.com/agbru/strassen/internal/matrix"
)

// NaiveMultiplier is the reference algorithm: a single triple loop over the
// whole matrix. It is used to verify the Strassen engines.
type NaiveMultiplier struct{}

// Name returns the name of the algorithm.
func (NaiveMultiplier) Name() string { return "Naive (triple loop)" }

// MultiplyCore computes a * b directly.
func (NaiveMultiplier) MultiplyCore(ctx context.Context, _ ProgressReporter, a, b *matrix.Matrix, _ Options) (*matrix.Matrix, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return matrix.MultiplyDirect(a, b)
}

// SequentialStrassen runs the Strassen recursion on the calling goroutine.
type SequentialStrassen struct{}

// Name returns the name of the algorithm.
func (SequentialStrassen) Name() string { return "Strassen (sequential)" }

// MultiplyCore computes a * b with the sequential engine.
func (SequentialStrassen) MultiplyCore(ctx context.Context, reporter ProgressReporter, a, b *matrix.Matrix, opts Options) (*matrix.Matrix, error) {
	e, err := newEngine(opts.LeafSize, false, reporter)
	if err != nil {
		return nil, err
	}
	return e.Multiply(ctx, a, b)
}

// ParallelStrassen fans the seven products of the outermost step out to
// their own goroutines and recurses sequentially below.
type ParallelStrassen struct{}

// Name returns the name of the algorithm.
func (ParallelStrassen) Name() string { return "Strassen (parallel)" }

// MultiplyCore computes a * b with the parallel engine.
func (ParallelStrassen) MultiplyCore(ctx context.Context, reporter ProgressReporter, a, b *matrix.Matrix, opts Options) (*matrix.Matrix, error) {
	e, err := newEngine(opts.LeafSize, true, reporter)
	if err != nil {
		return nil, err
	}
	return e.Multiply(ctx, a, b)
}
