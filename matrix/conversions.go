// SPDX-License-Identifier: MIT

// Package matrix - conversions between dense and compressed storage.
//
// Every conversion returns a fresh matrix; inputs are never aliased.

package matrix

import "fmt"

const (
	opToDense   = "ToDense"
	opToCSR     = "ToCSR"
	opTranspose = "Transpose"
)

// matrixErrorf wraps err with an operation tag.
func matrixErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// ToDense materializes any Matrix as a fresh *Dense.
// Stage 1 (Validate): nil-check.
// Stage 2 (Execute): fast paths for *Dense (copy) and *CSR (scatter),
// generic At loop otherwise.
// Complexity: O(r*c).
func ToDense(m Matrix) (*Dense, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opToDense, err)
	}
	switch v := m.(type) {
	case *Dense:
		return v.Clone().(*Dense), nil
	case *CSR:
		out := &Dense{r: v.r, c: v.c, data: make([]float64, v.r*v.c), validateNaNInf: v.validateNaNInf}
		for i := 0; i < v.r; i++ {
			for k := v.indptr[i]; k < v.indptr[i+1]; k++ {
				out.data[i*v.c+v.indices[k]] = v.data[k]
			}
		}
		return out, nil
	}

	r, c := m.Rows(), m.Cols()
	out, err := NewDense(r, c)
	if err != nil {
		return nil, matrixErrorf(opToDense, err)
	}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			x, err := m.At(i, j)
			if err != nil {
				return nil, matrixErrorf(opToDense, err)
			}
			out.data[i*c+j] = x
		}
	}

	return out, nil
}

// ToCSR compresses any Matrix into a fresh *CSR (zeros dropped for dense
// input; stored entries of a *CSR are copied verbatim).
func ToCSR(m Matrix) (*CSR, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opToCSR, err)
	}
	if s, ok := m.(*CSR); ok {
		return s.Clone().(*CSR), nil
	}
	d, err := ToDense(m)
	if err != nil {
		return nil, matrixErrorf(opToCSR, err)
	}

	return NewCSRFromDense(d), nil
}

// Transpose returns mᵀ, keeping the storage kind: a *CSR input yields a
// *CSR, anything else a *Dense.
// Stage 1 (Validate): nil-check.
// Stage 2 (Execute): counting-sort transpose for CSR, index flip for Dense.
// Complexity: O(r*c) dense, O(nnz + r + c) sparse.
func Transpose(m Matrix) (Matrix, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opTranspose, err)
	}
	if s, ok := m.(*CSR); ok {
		return transposeCSR(s), nil
	}
	d, err := ToDense(m)
	if err != nil {
		return nil, matrixErrorf(opTranspose, err)
	}
	rows, cols := d.r, d.c
	res := &Dense{r: cols, c: rows, data: make([]float64, rows*cols), validateNaNInf: d.validateNaNInf}
	for i := 0; i < rows; i++ {
		base := i * cols
		for j := 0; j < cols; j++ {
			res.data[j*rows+i] = d.data[base+j]
		}
	}

	return res, nil
}

// transposeCSR builds the CSR of sᵀ. Visiting source rows in order keeps the
// output column indices sorted without an extra sort.
func transposeCSR(s *CSR) *CSR {
	nnz := len(s.data)
	out := &CSR{
		r:              s.c,
		c:              s.r,
		indptr:         make([]int, s.c+1),
		indices:        make([]int, nnz),
		data:           make([]float64, nnz),
		validateNaNInf: s.validateNaNInf,
	}
	// Count entries per output row (= source column).
	for _, j := range s.indices {
		out.indptr[j+1]++
	}
	for j := 0; j < s.c; j++ {
		out.indptr[j+1] += out.indptr[j]
	}
	next := append([]int(nil), out.indptr[:s.c]...)
	for i := 0; i < s.r; i++ {
		for k := s.indptr[i]; k < s.indptr[i+1]; k++ {
			j := s.indices[k]
			dst := next[j]
			out.indices[dst] = i
			out.data[dst] = s.data[k]
			next[j]++
		}
	}

	return out
}
