package matrix

// Add returns a + b element-wise.
func Add(a, b *Matrix) (*Matrix, error) {
	if err := checkSameSize("add", a, b); err != nil {
		return nil, err
	}
	c := allocate(a.size)
	for i := 0; i < a.size; i++ {
		ra, rb, rc := a.row(i), b.row(i), c.row(i)
		for j := range rc {
			rc[j] = ra[j] + rb[j]
		}
	}
	return c, nil
}

// Sub returns a - b element-wise.
func Sub(a, b *Matrix) (*Matrix, error) {
	if err := checkSameSize("subtract", a, b); err != nil {
		return nil, err
	}
	c := allocate(a.size)
	for i := 0; i < a.size; i++ {
		ra, rb, rc := a.row(i), b.row(i), c.row(i)
		for j := range rc {
			rc[j] = ra[j] - rb[j]
		}
	}
	return c, nil
}

// MultiplyDirect returns a * b using the classic triple loop into a zeroed
// output. Each C[i][j] accumulates its terms in increasing p order.
func MultiplyDirect(a, b *Matrix) (*Matrix, error) {
	if err := checkSameSize("multiply", a, b); err != nil {
		return nil, err
	}
	n := a.size
	c := allocate(n)
	for i := 0; i < n; i++ {
		ra, rc := a.row(i), c.row(i)
		for p := 0; p < n; p++ {
			aip := ra[p]
			rb := b.row(p)
			for j := range rc {
				rc[j] += aip * rb[j]
			}
		}
	}
	return c, nil
}

// CombineC11 returns w + x - y + z, the top-left Strassen quadrant when called
// with (P1, P4, P5, P7).
func CombineC11(w, x, y, z *Matrix) (*Matrix, error) {
	if err := checkCombine("combine_c11", w, x, y, z); err != nil {
		return nil, err
	}
	r := allocate(w.size)
	for i := 0; i < w.size; i++ {
		rw, rx, ry, rz, rr := w.row(i), x.row(i), y.row(i), z.row(i), r.row(i)
		for j := range rr {
			rr[j] = rw[j] + rx[j] - ry[j] + rz[j]
		}
	}
	return r, nil
}

// CombineC22 returns w - x + y + z, the bottom-right Strassen quadrant when
// called with (P1, P2, P3, P6).
func CombineC22(w, x, y, z *Matrix) (*Matrix, error) {
	if err := checkCombine("combine_c22", w, x, y, z); err != nil {
		return nil, err
	}
	r := allocate(w.size)
	for i := 0; i < w.size; i++ {
		rw, rx, ry, rz, rr := w.row(i), x.row(i), y.row(i), z.row(i), r.row(i)
		for j := range rr {
			rr[j] = rw[j] - rx[j] + ry[j] + rz[j]
		}
	}
	return r, nil
}

func checkCombine(op string, w, x, y, z *Matrix) error {
	for _, m := range []*Matrix{x, y, z} {
		if err := checkSameSize(op, w, m); err != nil {
			return err
		}
	}
	return nil
}

// Subdivide copies the (size/2 x size/2) quadrant of a starting at
// (startRow, startCol) into a new owned matrix.
//
// Parameters:
//   - a: The matrix to split.
//   - startRow, startCol: The offsets of the quadrant, 0 or size/2.
//   - minSize: The minimum block size a quadrant may have.
//
// Returns:
//   - *Matrix: The quadrant.
//   - error: A *SubdivisionError if the size is odd or size/2 is below minSize.
func Subdivide(a *Matrix, startRow, startCol, minSize int) (*Matrix, error) {
	half := a.size / 2
	if a.size%2 != 0 || half < minSize || half == 0 {
		return nil, &SubdivisionError{Size: a.size, MinSize: minSize}
	}
	q := allocate(half)
	for i := 0; i < half; i++ {
		off := (startRow+i)*a.stride + startCol
		copy(q.row(i), a.values[off:off+half])
	}
	return q, nil
}

// Quadrants splits a into its four quadrants in the order 11, 12, 21, 22.
func Quadrants(a *Matrix, minSize int) (q11, q12, q21, q22 *Matrix, err error) {
	half := a.size / 2
	if q11, err = Subdivide(a, 0, 0, minSize); err != nil {
		return nil, nil, nil, nil, err
	}
	// The remaining quadrants share q11's size check.
	q12, _ = Subdivide(a, 0, half, minSize)
	q21, _ = Subdivide(a, half, 0, minSize)
	q22, _ = Subdivide(a, half, half, minSize)
	return q11, q12, q21, q22, nil
}

// Merge assembles four same-size quadrants into a matrix of twice their size.
func Merge(q11, q12, q21, q22 *Matrix) (*Matrix, error) {
	if err := checkCombine("merge", q11, q12, q21, q22); err != nil {
		return nil, err
	}
	half := q11.size
	r := allocate(2 * half)
	for i := 0; i < half; i++ {
		top := r.row(i)
		copy(top[:half], q11.row(i))
		copy(top[half:], q12.row(i))
		bottom := r.row(half + i)
		copy(bottom[:half], q21.row(i))
		copy(bottom[half:], q22.row(i))
	}
	return r, nil
}
