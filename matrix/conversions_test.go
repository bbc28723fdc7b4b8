package matrix_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/anndata/matrix"
	"github.com/stretchr/testify/require"
)

func TestToDenseFromCSR(t *testing.T) {
	s, err := matrix.NewCSRFromRows(fixtureRows)
	require.NoError(t, err)
	d, err := matrix.ToDense(s)
	require.NoError(t, err)
	require.Equal(t, []float64{1, 0, 3, 0, 5, 6}, d.RawData())

	_, err = matrix.ToDense(nil)
	require.ErrorIs(t, err, matrix.ErrNilMatrix)

	var typedNil *matrix.CSR
	_, err = matrix.ToDense(typedNil)
	require.ErrorIs(t, err, matrix.ErrNilMatrix)
}

func TestToCSRRoundTrip(t *testing.T) {
	d, err := matrix.NewDenseFromRows(fixtureRows)
	require.NoError(t, err)
	s, err := matrix.ToCSR(d)
	require.NoError(t, err)
	back, err := matrix.ToDense(s)
	require.NoError(t, err)
	require.Equal(t, d.RawData(), back.RawData())
}

func TestTransposeKeepsKind(t *testing.T) {
	d, err := matrix.NewDenseFromRows(fixtureRows)
	require.NoError(t, err)
	td, err := matrix.Transpose(d)
	require.NoError(t, err)
	require.IsType(t, &matrix.Dense{}, td)
	require.Equal(t, []float64{1, 3, 5, 0, 0, 6}, td.(*matrix.Dense).RawData())

	s, err := matrix.NewCSRFromRows(fixtureRows)
	require.NoError(t, err)
	ts, err := matrix.Transpose(s)
	require.NoError(t, err)
	require.IsType(t, &matrix.CSR{}, ts)
	require.Equal(t, []int{0, 3, 4}, ts.(*matrix.CSR).Indptr())
	require.Equal(t, []int{0, 1, 2, 2}, ts.(*matrix.CSR).Indices())

	ok, err := matrix.AllClose(td, ts)
	require.NoError(t, err)
	require.True(t, ok) // both transposes agree
}

func TestAllClose(t *testing.T) {
	a, _ := matrix.NewDenseFromRows([][]float64{{1, 2}})
	b, _ := matrix.NewDenseFromRows([][]float64{{1 + 1e-9, 2}})
	ok, err := matrix.AllClose(a, b)
	require.NoError(t, err)
	require.True(t, ok)

	c, _ := matrix.NewDenseFromRows([][]float64{{1.1, 2}})
	ok, err = matrix.AllClose(a, c)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = matrix.AllClose(a, c, matrix.WithEpsilon(0.2))
	require.NoError(t, err)
	require.True(t, ok) // widened atol

	n, _ := matrix.NewDenseFromRows([][]float64{{math.NaN(), 2}})
	ok, err = matrix.AllClose(n, n)
	require.NoError(t, err)
	require.False(t, ok) // NaN never compares close

	wide, _ := matrix.NewDense(1, 3)
	_, err = matrix.AllClose(a, wide)
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}

func TestOptionPanics(t *testing.T) {
	require.Panics(t, func() { matrix.WithEpsilon(-1) })
	require.Panics(t, func() { matrix.WithRelativeTolerance(math.NaN()) })
}
