// SPDX-License-Identifier: MIT

package anndata_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/anndata"
	"github.com/katalvlaran/anndata/frame"
	"github.com/katalvlaran/anndata/matrix"
)

func TestNewShape(t *testing.T) {
	x, err := matrix.NewDenseFromRows(xRows)
	require.NoError(t, err)

	a, err := anndata.New(x, nil, nil, nil)
	require.NoError(t, err)
	n, m := a.Shape()
	require.Equal(t, 3, n)
	require.Equal(t, 2, m)
	require.Equal(t, []string{"0", "1", "2"}, a.ObsNames())
	require.Equal(t, []string{"0", "1"}, a.VarNames())
	require.NotNil(t, a.Uns)

	_, err = anndata.New(x, frame.Empty(2), nil, nil)
	require.ErrorIs(t, err, anndata.ErrShape)
	_, err = anndata.New(x, nil, frame.Empty(3), nil)
	require.ErrorIs(t, err, anndata.ErrShape)
	_, err = anndata.New(nil, frame.Empty(3), nil, nil)
	require.ErrorIs(t, err, anndata.ErrShape)

	a, err = anndata.New(nil, frame.Empty(3), frame.Empty(7), nil)
	require.NoError(t, err)
	require.Nil(t, a.X)
	n, m = a.Shape()
	require.Equal(t, 3, n)
	require.Equal(t, 7, m)

	var nilDense *matrix.Dense
	_, err = anndata.New(nilDense, frame.Empty(3), frame.Empty(2), nil)
	require.ErrorIs(t, err, matrix.ErrNilMatrix)
	var nilCSR *matrix.CSR
	_, err = anndata.New(nilCSR, nil, nil, nil)
	require.ErrorIs(t, err, matrix.ErrNilMatrix)

	var nilData *anndata.AnnData
	require.ErrorIs(t, nilData.Validate(), anndata.ErrNilAnnData)
}

func TestNewFromMapsErrors(t *testing.T) {
	_, err := anndata.NewFromMaps(nil, map[string]any{"a": []complex64{1}}, map[string]any{}, nil)
	require.ErrorIs(t, err, frame.ErrUnsupportedType)

	_, err = anndata.NewFromMaps(nil, map[string]any{anndata.ObsIndexKey: []int{1}}, map[string]any{}, nil)
	require.ErrorIs(t, err, frame.ErrUnsupportedType)
}

func TestCopyIsDeep(t *testing.T) {
	x, err := matrix.NewDenseFromRows(xRows)
	require.NoError(t, err)
	a := newAnnData(t, x)
	a.Uns["nested"] = map[string]any{"k": []float64{1, 2}}

	b := a.Copy()
	require.NoError(t, b.X.Set(0, 0, 42))
	b.Uns["nested"].(map[string]any)["k"].([]float64)[0] = 9
	b.Uns["oanno1_colors"].([]string)[0] = "#123456"
	require.NoError(t, b.Obs.Drop("oanno1"))

	v, err := a.X.At(0, 0)
	require.NoError(t, err)
	require.Equal(t, 1.0, v)
	require.Equal(t, []float64{1, 2}, a.Uns["nested"].(map[string]any)["k"])
	require.Equal(t, "#000000", a.Uns["oanno1_colors"].([]string)[0])
	require.True(t, a.Obs.Has("oanno1"))
}

func TestStringsToCategoricals(t *testing.T) {
	a := newAnnData(t, nil)
	a.StringsToCategoricals()
	c, err := a.Obs.Column("oanno1")
	require.NoError(t, err)
	require.True(t, frame.IsCategorical(c))
	c, err = a.Obs.Column("oanno2")
	require.NoError(t, err)
	require.True(t, frame.IsString(c))
}

func TestString(t *testing.T) {
	x, err := matrix.NewCSRFromRows(xRows)
	require.NoError(t, err)
	a := newAnnData(t, x)
	require.Equal(t, "AnnData object with n_obs × n_vars = 3 × 2 (sparse)\n"+
		"    obs: 'oanno1', 'oanno2', 'oanno3'\n"+
		"    var: 'vanno1'\n"+
		"    uns: 'oanno1_colors', 'uns2'", a.String())
}

func TestFormatFromPath(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		path string
		want anndata.Format
	}{
		{"a.h5ad", anndata.FormatH5AD},
		{"A.LOOM", anndata.FormatLoom},
		{"b.zarr/", anndata.FormatZarr},
		{"c.tsv", anndata.FormatCSV},
		{"d.csv", anndata.FormatCSV},
		{dir, anndata.FormatCSV},
	}
	for _, tc := range cases {
		got, err := anndata.FormatFromPath(tc.path)
		require.NoError(t, err, tc.path)
		require.Equal(t, tc.want, got, tc.path)
	}
	_, err := anndata.FormatFromPath(filepath.Join(dir, "missing"))
	require.ErrorIs(t, err, anndata.ErrUnknownFormat)
}

func TestParseFormat(t *testing.T) {
	f, err := anndata.ParseFormat(".H5AD")
	require.NoError(t, err)
	require.Equal(t, anndata.FormatH5AD, f)
	_, err = anndata.ParseFormat("hdf5")
	require.ErrorIs(t, err, anndata.ErrUnknownFormat)
}

func TestOptionPanics(t *testing.T) {
	require.Panics(t, func() { anndata.WithLogger(nil) })
	require.Panics(t, func() { anndata.WithConcurrency(0) })
	require.Panics(t, func() { anndata.WithCompression("lz4", 0) })
	require.Panics(t, func() { anndata.WithCompression("gzip", 42) })
	require.Panics(t, func() { anndata.WithCSVSeparator('"') })
	require.NotPanics(t, func() { anndata.WithCSVSeparator(';') })
}
