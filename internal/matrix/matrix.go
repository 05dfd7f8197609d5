// Package matrix provides the square, row-major float64 matrix used by the
// Strassen engines, along with the element-wise operations, quadrant
// extraction and reassembly they are built from.
package matrix

import "fmt"

// Matrix is a square, dense, row-major matrix of float64 values.
// Element (i, j) lives at values[i*stride+j].
//
// A Matrix either owns its buffer (stride == size, len(values) == size*size)
// or is a view over caller-supplied storage created by Wrap, in which case the
// stride may be larger than the size. Views are only ever read.
type Matrix struct {
	size   int
	stride int
	values []float64
	view   bool
}

// New allocates an owned, zero-initialized matrix of the given size.
//
// Parameters:
//   - size: The dimension of the square matrix.
//
// Returns:
//   - *Matrix: The new matrix.
//   - error: ErrInvalidSize if size is not positive.
func New(size int) (*Matrix, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSize, size)
	}
	return allocate(size), nil
}

// allocate is New without validation, for sizes already known to be valid.
func allocate(size int) *Matrix {
	return &Matrix{size: size, stride: size, values: make([]float64, size*size)}
}

// FromValues builds an owned matrix from a row-major slice of size*size
// values. The slice is copied.
func FromValues(size int, values []float64) (*Matrix, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSize, size)
	}
	if len(values) != size*size {
		return nil, fmt.Errorf("%w: need %d values for size %d, got %d", ErrBufferTooSmall, size*size, size, len(values))
	}
	m := allocate(size)
	copy(m.values, values)
	return m, nil
}

// Wrap constructs a non-owning view over buf, interpreting it as a size x size
// matrix whose rows start every stride elements. No data is copied.
//
// Parameters:
//   - buf: The caller's storage.
//   - stride: The leading dimension, at least size.
//   - size: The logical dimension of the matrix.
//
// Returns:
//   - *Matrix: A view over buf.
//   - error: An error if the size is invalid or buf is too short.
func Wrap(buf []float64, stride, size int) (*Matrix, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSize, size)
	}
	if stride < size {
		return nil, fmt.Errorf("matrix: stride %d is smaller than size %d", stride, size)
	}
	if need := (size-1)*stride + size; len(buf) < need {
		return nil, fmt.Errorf("%w: need %d elements, got %d", ErrBufferTooSmall, need, len(buf))
	}
	return &Matrix{size: size, stride: stride, values: buf, view: true}, nil
}

// Size returns the dimension of the matrix.
func (m *Matrix) Size() int { return m.size }

// IsView reports whether the matrix references caller-supplied storage.
func (m *Matrix) IsView() bool { return m.view }

// At returns element (i, j).
func (m *Matrix) At(i, j int) float64 {
	return m.values[i*m.stride+j]
}

// Set assigns element (i, j). It must not be called on a view.
func (m *Matrix) Set(i, j int, v float64) {
	m.values[i*m.stride+j] = v
}

// row returns the slice holding row i.
func (m *Matrix) row(i int) []float64 {
	off := i * m.stride
	return m.values[off : off+m.size]
}

// Values returns the matrix contents as a new row-major slice of size*size
// elements.
func (m *Matrix) Values() []float64 {
	out := make([]float64, m.size*m.size)
	for i := 0; i < m.size; i++ {
		copy(out[i*m.size:], m.row(i))
	}
	return out
}

// Clone returns an owned deep copy of m. Cloning a view yields an owned matrix.
func (m *Matrix) Clone() *Matrix {
	return &Matrix{size: m.size, stride: m.size, values: m.Values()}
}

// CopyTo writes the matrix into dst using the caller's leading dimension.
//
// Parameters:
//   - dst: The destination buffer.
//   - stride: The leading dimension of dst, at least Size().
//
// Returns:
//   - error: An error if dst cannot hold the matrix.
func (m *Matrix) CopyTo(dst []float64, stride int) error {
	if stride < m.size {
		return fmt.Errorf("matrix: stride %d is smaller than size %d", stride, m.size)
	}
	if need := (m.size-1)*stride + m.size; len(dst) < need {
		return fmt.Errorf("%w: need %d elements, got %d", ErrBufferTooSmall, need, len(dst))
	}
	for i := 0; i < m.size; i++ {
		copy(dst[i*stride:i*stride+m.size], m.row(i))
	}
	return nil
}

// String renders small matrices for debugging.
func (m *Matrix) String() string {
	return fmt.Sprintf("Matrix(%dx%d)%v", m.size, m.size, m.Values())
}
