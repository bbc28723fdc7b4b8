// SPDX-License-Identifier: MIT

// Package matrix - CSR (compressed sparse row) storage.
//
// Purpose:
//   - Hold mostly-zero measurement matrices in three flat slices:
//     indptr (len rows+1), indices (column of each stored value) and data.
//   - Keep column indices sorted and unique within each row so At is a binary
//     search and encoders can emit the layout verbatim.
//
// Complexity quicksheet:
//   - NewCSR: O(nnz log nnz) worst case (row sort); At: O(log nnz(row));
//     Set (insert): O(nnz); Clone: O(nnz).

package matrix

import (
	"fmt"
	"sort"
	"strings"
)

const (
	ctxNewCSR  = "NewCSR"
	ctxCSRAt   = "At"
	ctxCSRSet  = "Set"
	ctxFromCSR = "NewCSRFromRows"
)

// csrErrorf wraps an error with a uniform CSR context and callsite indices.
func csrErrorf(method string, row, col int, err error) error {
	return fmt.Errorf("CSR.%s(%d,%d): %w", method, row, col, err)
}

// CSR is a compressed sparse row matrix.
// Row i owns the half-open range indptr[i]:indptr[i+1] of indices/data.
type CSR struct {
	r, c           int
	indptr         []int
	indices        []int
	data           []float64
	validateNaNInf bool
}

var (
	_ Matrix       = (*CSR)(nil)
	_ fmt.Stringer = (*CSR)(nil)
)

// NewCSR builds a CSR matrix from raw compressed arrays.
// MAIN DESCRIPTION:
//   - Copies the inputs, sorts each row by column index and validates layout.
//
// Implementation:
//   - Stage 1: validate shape and slice lengths.
//   - Stage 2: validate indptr is 0-based and non-decreasing.
//   - Stage 3: copy, sort every row by column, reject duplicates and
//     out-of-range columns.
//
// Errors:
//   - ErrInvalidDimensions (negative shape).
//   - ErrBadStructure (length/ordering/range violation).
//   - ErrNaNInf when WithValidateNaNInf is set.
func NewCSR(rows, cols int, indptr, indices []int, data []float64, opts ...Option) (*CSR, error) {
	if rows < 0 || cols < 0 {
		return nil, fmt.Errorf("%s(%d,%d): %w", ctxNewCSR, rows, cols, ErrInvalidDimensions)
	}
	o := gatherOptions(opts...)

	// Stage 1: lengths.
	if len(indptr) != rows+1 {
		return nil, fmt.Errorf("%s: indptr has %d entries, want %d: %w", ctxNewCSR, len(indptr), rows+1, ErrBadStructure)
	}
	if len(indices) != len(data) {
		return nil, fmt.Errorf("%s: %d indices vs %d values: %w", ctxNewCSR, len(indices), len(data), ErrBadStructure)
	}

	// Stage 2: pointer monotonicity.
	if indptr[0] != 0 || indptr[rows] != len(indices) {
		return nil, fmt.Errorf("%s: indptr must span [0,%d]: %w", ctxNewCSR, len(indices), ErrBadStructure)
	}
	for i := 0; i < rows; i++ {
		if indptr[i] > indptr[i+1] {
			return nil, fmt.Errorf("%s: indptr decreases at row %d: %w", ctxNewCSR, i, ErrBadStructure)
		}
	}

	// Stage 3: copy and canonicalize rows.
	m := &CSR{
		r:              rows,
		c:              cols,
		indptr:         append([]int(nil), indptr...),
		indices:        append([]int(nil), indices...),
		data:           append([]float64(nil), data...),
		validateNaNInf: o.validateNaNInf,
	}
	for i := 0; i < rows; i++ {
		lo, hi := m.indptr[i], m.indptr[i+1]
		sortRowEntries(m.indices[lo:hi], m.data[lo:hi])
		for k := lo; k < hi; k++ {
			col := m.indices[k]
			if col < 0 || col >= cols {
				return nil, csrErrorf(ctxNewCSR, i, col, ErrBadStructure)
			}
			if k > lo && m.indices[k-1] == col {
				return nil, csrErrorf(ctxNewCSR, i, col, ErrBadStructure)
			}
			if m.validateNaNInf && isNonFinite(m.data[k]) {
				return nil, csrErrorf(ctxNewCSR, i, col, ErrNaNInf)
			}
		}
	}

	return m, nil
}

// NewCSRFromRows compresses a row slice, storing only non-zero values.
// Returns ErrDimensionMismatch for ragged input.
func NewCSRFromRows(rows [][]float64, opts ...Option) (*CSR, error) {
	d, err := NewDenseFromRows(rows, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ctxFromCSR, err)
	}

	return NewCSRFromDense(d), nil
}

// NewCSRFromDense compresses d, dropping zeros. The numeric policy of d is kept.
// Complexity: O(r*c).
func NewCSRFromDense(d *Dense) *CSR {
	m := &CSR{r: d.r, c: d.c, indptr: make([]int, d.r+1), validateNaNInf: d.validateNaNInf}
	for i := 0; i < d.r; i++ {
		base := i * d.c
		for j := 0; j < d.c; j++ {
			if v := d.data[base+j]; v != 0 {
				m.indices = append(m.indices, j)
				m.data = append(m.data, v)
			}
		}
		m.indptr[i+1] = len(m.indices)
	}

	return m
}

// Rows returns the number of rows.
func (m *CSR) Rows() int { return m.r }

// Cols returns the number of columns.
func (m *CSR) Cols() int { return m.c }

// NNZ returns the number of stored entries (explicit zeros included).
func (m *CSR) NNZ() int { return len(m.data) }

// Indptr exposes the row pointer slice. Treat as read-only.
func (m *CSR) Indptr() []int { return m.indptr }

// Indices exposes the column index slice. Treat as read-only.
func (m *CSR) Indices() []int { return m.indices }

// Data exposes the stored values. Treat as read-only.
func (m *CSR) Data() []float64 { return m.data }

// find returns the storage offset of (row, col) and whether it is stored.
// When not stored, the offset is the insertion point that keeps the row sorted.
func (m *CSR) find(row, col int) (int, bool) {
	lo, hi := m.indptr[row], m.indptr[row+1]
	k := lo + sort.SearchInts(m.indices[lo:hi], col)

	return k, k < hi && m.indices[k] == col
}

// At returns the value at (row, col); absent entries read as zero.
func (m *CSR) At(row, col int) (float64, error) {
	if row < 0 || row >= m.r || col < 0 || col >= m.c {
		return 0, csrErrorf(ctxCSRAt, row, col, ErrOutOfRange)
	}
	if k, ok := m.find(row, col); ok {
		return m.data[k], nil
	}

	return 0, nil
}

// Set writes v at (row, col). Stored entries are updated in place (an
// explicit zero stays stored); absent entries are inserted unless v is zero.
func (m *CSR) Set(row, col int, v float64) error {
	if row < 0 || row >= m.r || col < 0 || col >= m.c {
		return csrErrorf(ctxCSRSet, row, col, ErrOutOfRange)
	}
	if m.validateNaNInf && isNonFinite(v) {
		return csrErrorf(ctxCSRSet, row, col, ErrNaNInf)
	}
	k, ok := m.find(row, col)
	if ok {
		m.data[k] = v
		return nil
	}
	if v == 0 {
		return nil
	}
	m.indices = append(m.indices, 0)
	copy(m.indices[k+1:], m.indices[k:])
	m.indices[k] = col
	m.data = append(m.data, 0)
	copy(m.data[k+1:], m.data[k:])
	m.data[k] = v
	for i := row + 1; i <= m.r; i++ {
		m.indptr[i]++
	}

	return nil
}

// Clone returns a deep copy.
func (m *CSR) Clone() Matrix {
	return &CSR{
		r:              m.r,
		c:              m.c,
		indptr:         append([]int(nil), m.indptr...),
		indices:        append([]int(nil), m.indices...),
		data:           append([]float64(nil), m.data...),
		validateNaNInf: m.validateNaNInf,
	}
}

// String lists stored entries as "(i, j)\tv", one per line.
func (m *CSR) String() string {
	var sb strings.Builder
	for i := 0; i < m.r; i++ {
		for k := m.indptr[i]; k < m.indptr[i+1]; k++ {
			fmt.Fprintf(&sb, "(%d, %d)\t%g\n", i, m.indices[k], m.data[k])
		}
	}

	return sb.String()
}

// sortRowEntries sorts one row's (column, value) pairs by column in place.
// Rows written by this package are already sorted, so the check is a fast path.
func sortRowEntries(cols []int, vals []float64) {
	if sort.IntsAreSorted(cols) {
		return
	}
	sort.Sort(rowEntries{cols: cols, vals: vals})
}

// rowEntries sorts parallel column/value slices by column.
type rowEntries struct {
	cols []int
	vals []float64
}

func (r rowEntries) Len() int           { return len(r.cols) }
func (r rowEntries) Less(i, j int) bool { return r.cols[i] < r.cols[j] }
func (r rowEntries) Swap(i, j int) {
	r.cols[i], r.cols[j] = r.cols[j], r.cols[i]
	r.vals[i], r.vals[j] = r.vals[j], r.vals[i]
}
