// Package matrix_test contains unit tests for the Dense implementation
// of the Matrix interface in the matrix package.
package matrix_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/anndata/matrix"
	"github.com/stretchr/testify/require"
)

// TestNewDenseInvalidDimensions ensures that NewDense rejects negative dimensions.
func TestNewDenseInvalidDimensions(t *testing.T) {
	_, err := matrix.NewDense(-1, 5)                     // negative rows
	require.ErrorIs(t, err, matrix.ErrInvalidDimensions) // expect ErrInvalidDimensions

	_, err = matrix.NewDense(5, -2)                      // negative columns
	require.ErrorIs(t, err, matrix.ErrInvalidDimensions) // expect ErrInvalidDimensions
}

// TestNewDenseEmpty verifies zero-sized shapes are legal.
func TestNewDenseEmpty(t *testing.T) {
	m, err := matrix.NewDense(0, 3)
	require.NoError(t, err)
	require.Equal(t, 0, m.Rows())
	require.Equal(t, 3, m.Cols())
	require.Empty(t, m.RawData())
}

// TestAtSetOutOfBounds ensures At() and Set() return ErrOutOfRange on invalid access.
func TestAtSetOutOfBounds(t *testing.T) {
	m, err := matrix.NewDense(2, 2)
	require.NoError(t, err)

	_, err = m.At(-1, 0)                          // negative row index
	require.ErrorIs(t, err, matrix.ErrOutOfRange) // expect ErrOutOfRange

	_, err = m.At(0, 2) // column out of range
	require.ErrorIs(t, err, matrix.ErrOutOfRange)

	err = m.Set(2, 0, 1.23)
	require.ErrorIs(t, err, matrix.ErrOutOfRange)
}

// TestNewDenseFromRows checks copying and ragged-row rejection.
func TestNewDenseFromRows(t *testing.T) {
	src := [][]float64{{1, 0}, {3, 0}, {5, 6}}
	m, err := matrix.NewDenseFromRows(src)
	require.NoError(t, err)
	require.Equal(t, 3, m.Rows())
	require.Equal(t, 2, m.Cols())
	require.Equal(t, []float64{1, 0, 3, 0, 5, 6}, m.RawData()) // row-major layout

	src[2][1] = 99 // mutate the input
	v, err := m.At(2, 1)
	require.NoError(t, err)
	require.Equal(t, 6.0, v) // matrix owns its copy

	_, err = matrix.NewDenseFromRows([][]float64{{1, 2}, {3}})
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}

// TestNewDenseFromData checks the length contract.
func TestNewDenseFromData(t *testing.T) {
	m, err := matrix.NewDenseFromData(2, 2, []float64{1, 2, 3, 4})
	require.NoError(t, err)
	v, _ := m.At(1, 0)
	require.Equal(t, 3.0, v)

	_, err = matrix.NewDenseFromData(2, 2, []float64{1, 2, 3})
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}

// TestNaNPolicy verifies NaN is accepted by default and rejected on request.
func TestNaNPolicy(t *testing.T) {
	m, err := matrix.NewDense(1, 1)
	require.NoError(t, err)
	require.NoError(t, m.Set(0, 0, math.NaN())) // default policy allows NaN

	strict, err := matrix.NewDense(1, 1, matrix.WithValidateNaNInf())
	require.NoError(t, err)
	require.ErrorIs(t, strict.Set(0, 0, math.Inf(1)), matrix.ErrNaNInf)

	_, err = matrix.NewDenseFromRows([][]float64{{math.NaN()}}, matrix.WithValidateNaNInf())
	require.ErrorIs(t, err, matrix.ErrNaNInf)
}

// TestCloneIndependence ensures Clone() returns a deep copy that does not share storage.
func TestCloneIndependence(t *testing.T) {
	m, err := matrix.NewDenseFromRows([][]float64{{1, 2}, {3, 4}})
	require.NoError(t, err)

	clone := m.Clone()
	require.NoError(t, clone.Set(0, 0, 7))

	orig, _ := m.At(0, 0)
	require.Equal(t, 1.0, orig) // original untouched
}

// TestDenseString checks that String() formats the matrix as expected.
func TestDenseString(t *testing.T) {
	m, err := matrix.NewDenseFromRows([][]float64{{1, 2}, {3, 4}})
	require.NoError(t, err)
	require.Equal(t, "[1, 2]\n[3, 4]\n", m.String())
}

// TestRow returns a copy of a row.
func TestRow(t *testing.T) {
	m, err := matrix.NewDenseFromRows([][]float64{{1, 2}, {3, 4}})
	require.NoError(t, err)
	row, err := m.Row(1)
	require.NoError(t, err)
	require.Equal(t, []float64{3, 4}, row)

	_, err = m.Row(2)
	require.ErrorIs(t, err, matrix.ErrOutOfRange)
}
