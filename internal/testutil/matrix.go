package testutil

import (
	"math/rand"
	"testing"

	"github.com/agbru/strassen/internal/matrix"
)

// MustMatrix builds a size x size matrix from row-major values, failing the
// test on error.
func MustMatrix(tb testing.TB, size int, values ...float64) *matrix.Matrix {
	tb.Helper()
	m, err := matrix.FromValues(size, values)
	if err != nil {
		tb.Fatalf("matrix.FromValues(%d): %v", size, err)
	}
	return m
}

// PatternPair returns the integer-valued operands used by the golden files:
// A[i][j] = ((7i + 3j) mod 11) - 5 and B[i][j] = ((5i + 2j + 1) mod 13) - 6.
// Their products are exact in float64 for every size used in tests.
func PatternPair(tb testing.TB, size int) (a, b *matrix.Matrix) {
	tb.Helper()
	av := make([]float64, size*size)
	bv := make([]float64, size*size)
	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			av[i*size+j] = float64((i*7+j*3)%11 - 5)
			bv[i*size+j] = float64((i*5+j*2+1)%13 - 6)
		}
	}
	return MustMatrix(tb, size, av...), MustMatrix(tb, size, bv...)
}

// RandomPair returns two seeded random operands with values in [-1, 1).
func RandomPair(tb testing.TB, size int, seed int64) (a, b *matrix.Matrix) {
	tb.Helper()
	rng := rand.New(rand.NewSource(seed))
	a, err := matrix.Random(size, rng)
	if err != nil {
		tb.Fatalf("matrix.Random(%d): %v", size, err)
	}
	b, err = matrix.Random(size, rng)
	if err != nil {
		tb.Fatalf("matrix.Random(%d): %v", size, err)
	}
	return a, b
}

// AssertClose fails the test when got and want differ by more than tol in
// any element.
func AssertClose(tb testing.TB, want, got *matrix.Matrix, tol float64) {
	tb.Helper()
	diff, err := matrix.MaxAbsDiff(want, got)
	if err != nil {
		tb.Fatalf("comparing products: %v", err)
	}
	if diff > tol {
		tb.Errorf("products differ: max |diff| = %g, tolerance %g", diff, tol)
	}
}
