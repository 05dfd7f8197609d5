package matrix

import (
	"math"
	"math/rand"
)

// Identity returns the size x size identity matrix.
func Identity(size int) (*Matrix, error) {
	m, err := New(size)
	if err != nil {
		return nil, err
	}
	for i := 0; i < size; i++ {
		m.Set(i, i, 1)
	}
	return m, nil
}

// Random returns a matrix with values drawn uniformly from [-1, 1).
func Random(size int, rng *rand.Rand) (*Matrix, error) {
	m, err := New(size)
	if err != nil {
		return nil, err
	}
	for i := range m.values {
		m.values[i] = 2*rng.Float64() - 1
	}
	return m, nil
}

// RandomIntegers returns a matrix of integer values drawn uniformly from
// (-limit, limit). Products of such matrices are exact in float64 as long as
// size*limit*limit stays below 2^53.
func RandomIntegers(size, limit int, rng *rand.Rand) (*Matrix, error) {
	m, err := New(size)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		return m, nil
	}
	for i := range m.values {
		m.values[i] = float64(rng.Intn(2*limit-1) - (limit - 1))
	}
	return m, nil
}

// MaxAbsDiff returns the largest absolute element-wise difference between a
// and b.
func MaxAbsDiff(a, b *Matrix) (float64, error) {
	if err := checkSameSize("compare", a, b); err != nil {
		return 0, err
	}
	var diff float64
	for i := 0; i < a.size; i++ {
		ra, rb := a.row(i), b.row(i)
		for j := range ra {
			if d := math.Abs(ra[j] - rb[j]); d > diff {
				diff = d
			}
		}
	}
	return diff, nil
}

// MaxAbs returns the largest absolute value in m.
func MaxAbs(m *Matrix) float64 {
	var v float64
	for i := 0; i < m.size; i++ {
		for _, x := range m.row(i) {
			if a := math.Abs(x); a > v {
				v = a
			}
		}
	}
	return v
}

// Equal reports whether a and b have the same size and bit-identical values.
func Equal(a, b *Matrix) bool {
	if a.size != b.size {
		return false
	}
	for i := 0; i < a.size; i++ {
		ra, rb := a.row(i), b.row(i)
		for j := range ra {
			if math.Float64bits(ra[j]) != math.Float64bits(rb[j]) {
				return false
			}
		}
	}
	return true
}

// Trace returns the sum of the diagonal of m.
func Trace(m *Matrix) float64 {
	var t float64
	for i := 0; i < m.size; i++ {
		t += m.At(i, i)
	}
	return t
}

// Sum returns the sum of every element of m, accumulated row by row. It is
// a cheap fingerprint for comparing products in logs and quiet output.
func Sum(m *Matrix) float64 {
	var s float64
	for i := 0; i < m.size; i++ {
		for _, x := range m.row(i) {
			s += x
		}
	}
	return s
}
