package matrix_test

import (
	"testing"

	"github.com/katalvlaran/anndata/matrix"
	"github.com/stretchr/testify/require"
)

// fixtureRows is the 3×2 measurement block used across the repository.
var fixtureRows = [][]float64{{1, 0}, {3, 0}, {5, 6}}

func TestNewCSRFromRows(t *testing.T) {
	m, err := matrix.NewCSRFromRows(fixtureRows)
	require.NoError(t, err)
	require.Equal(t, 3, m.Rows())
	require.Equal(t, 2, m.Cols())
	require.Equal(t, 4, m.NNZ())                            // zeros are dropped
	require.Equal(t, []int{0, 1, 2, 4}, m.Indptr())         // row pointers
	require.Equal(t, []int{0, 0, 0, 1}, m.Indices())        // column of each value
	require.Equal(t, []float64{1, 3, 5, 6}, m.Data())       // stored values
	require.Equal(t, "(0, 0)\t1\n(1, 0)\t3\n(2, 0)\t5\n(2, 1)\t6\n", m.String())
}

func TestNewCSRSortsRows(t *testing.T) {
	m, err := matrix.NewCSR(1, 3, []int{0, 2}, []int{2, 0}, []float64{9, 4})
	require.NoError(t, err)
	require.Equal(t, []int{0, 2}, m.Indices())
	require.Equal(t, []float64{4, 9}, m.Data())
}

func TestNewCSRRejectsBadStructure(t *testing.T) {
	tests := []struct {
		name    string
		rows    int
		indptr  []int
		indices []int
		data    []float64
	}{
		{name: "short indptr", rows: 2, indptr: []int{0, 1}, indices: []int{0}, data: []float64{1}},
		{name: "length mismatch", rows: 1, indptr: []int{0, 1}, indices: []int{0}, data: []float64{}},
		{name: "decreasing indptr", rows: 2, indptr: []int{0, 2, 1}, indices: []int{0}, data: []float64{1}},
		{name: "column out of range", rows: 1, indptr: []int{0, 1}, indices: []int{5}, data: []float64{1}},
		{name: "duplicate column", rows: 1, indptr: []int{0, 2}, indices: []int{1, 1}, data: []float64{1, 2}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := matrix.NewCSR(tc.rows, 2, tc.indptr, tc.indices, tc.data)
			require.ErrorIs(t, err, matrix.ErrBadStructure)
		})
	}
}

func TestCSRAtSet(t *testing.T) {
	m, err := matrix.NewCSRFromRows(fixtureRows)
	require.NoError(t, err)

	v, err := m.At(1, 1)
	require.NoError(t, err)
	require.Equal(t, 0.0, v) // absent entry reads as zero

	require.NoError(t, m.Set(1, 1, 8)) // insertion in the middle row
	require.Equal(t, []int{0, 1, 3, 5}, m.Indptr())
	v, _ = m.At(1, 1)
	require.Equal(t, 8.0, v)
	v, _ = m.At(2, 1)
	require.Equal(t, 6.0, v) // later rows still addressable

	require.NoError(t, m.Set(0, 1, 0)) // writing zero to an absent slot is a no-op
	require.Equal(t, 5, m.NNZ())

	_, err = m.At(3, 0)
	require.ErrorIs(t, err, matrix.ErrOutOfRange)
	require.ErrorIs(t, m.Set(0, -1, 1), matrix.ErrOutOfRange)
}

func TestCSRCloneIndependence(t *testing.T) {
	m, err := matrix.NewCSRFromRows(fixtureRows)
	require.NoError(t, err)
	c := m.Clone()
	require.NoError(t, c.Set(0, 1, 2))
	require.Equal(t, 4, m.NNZ())
}
