//go:build gmp

// This file provides an exact reference multiplier backed by GMP. It is
// compiled only with the "gmp" build tag and requires libgmp:
//   - Linux: sudo apt-get install libgmp-dev (Debian/Ubuntu)
//   - macOS: brew install gmp

package strassen

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/ncw/gmp"

	"github.com/agbru/strassen/internal/matrix"
)

// AlgoExact is the registry name of the GMP exact multiplier.
const AlgoExact = "exact"

// ErrNotInteger is returned by the exact multiplier when an operand holds a
// value that is not an integer exactly representable in float64.
var ErrNotInteger = errors.New("exact multiplier requires integer-valued operands")

// maxExact is the largest integer magnitude that float64 represents exactly.
const maxExact = 1 << 53

func init() {
	RegisterMultiplier(AlgoExact, func() coreMultiplier { return &ExactMultiplier{} })
}

// ExactMultiplier multiplies integer-valued matrices with arbitrary-precision
// accumulation, so its result is free of rounding as long as every entry of
// the product fits in float64's integer range. It is the ground truth the
// Strassen engines are checked against on integer workloads.
type ExactMultiplier struct{}

// Name returns the name of the algorithm.
func (ExactMultiplier) Name() string { return "Exact (GMP)" }

// MultiplyCore computes a * b exactly.
func (ExactMultiplier) MultiplyCore(ctx context.Context, reporter ProgressReporter, a, b *matrix.Matrix, _ Options) (*matrix.Matrix, error) {
	n := a.Size()
	left, err := toGMP(a)
	if err != nil {
		return nil, fmt.Errorf("operand A: %w", err)
	}
	right, err := toGMP(b)
	if err != nil {
		return nil, fmt.Errorf("operand B: %w", err)
	}

	limit := gmp.NewInt(maxExact)
	negLimit := gmp.NewInt(-maxExact)
	out, _ := matrix.New(n)
	sum := gmp.NewInt(0)
	term := gmp.NewInt(0)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for j := 0; j < n; j++ {
			sum.SetInt64(0)
			for p := 0; p < n; p++ {
				term.Mul(left[i*n+p], right[p*n+j])
				sum.Add(sum, term)
			}
			if sum.Cmp(limit) > 0 || sum.Cmp(negLimit) < 0 {
				return nil, fmt.Errorf("entry (%d, %d) = %s exceeds the exact float64 range", i, j, sum.String())
			}
			out.Set(i, j, float64(sum.Int64()))
		}
		reporter(float64(i+1) / float64(n))
	}
	return out, nil
}

func toGMP(m *matrix.Matrix) ([]*gmp.Int, error) {
	n := m.Size()
	values := make([]*gmp.Int, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := m.At(i, j)
			if v != math.Trunc(v) || math.Abs(v) > maxExact {
				return nil, fmt.Errorf("%w: (%d, %d) = %v", ErrNotInteger, i, j, v)
			}
			values[i*n+j] = gmp.NewInt(int64(v))
		}
	}
	return values, nil
}
