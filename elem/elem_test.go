// SPDX-License-Identifier: MIT

package elem_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/katalvlaran/anndata/blob/memory"
	"github.com/katalvlaran/anndata/container"
	"github.com/katalvlaran/anndata/container/sqlite"
	"github.com/katalvlaran/anndata/container/zarr"
	"github.com/katalvlaran/anndata/elem"
	"github.com/katalvlaran/anndata/frame"
	"github.com/katalvlaran/anndata/matrix"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type backend struct {
	name string
	open func(t *testing.T) (container.Writer, func() container.Reader)
}

func backends() []backend {
	return []backend{
		{"sqlite", func(t *testing.T) (container.Writer, func() container.Reader) {
			path := filepath.Join(t.TempDir(), "test.h5ad")
			w, err := sqlite.Create(context.Background(), path)
			require.NoError(t, err)
			return w, func() container.Reader {
				r, err := sqlite.Open(context.Background(), path)
				require.NoError(t, err)
				t.Cleanup(func() { _ = r.Close() })
				return r
			}
		}},
		{"zarr", func(t *testing.T) (container.Writer, func() container.Reader) {
			store := memory.New()
			w, err := zarr.NewWriter(context.Background(), store, "test.zarr")
			require.NoError(t, err)
			return w, func() container.Reader {
				r, err := zarr.Open(context.Background(), store, "test.zarr")
				require.NoError(t, err)
				return r
			}
		}},
	}
}

// roundTrip writes with fn, commits, and hands a reader to check.
func roundTrip(t *testing.T, fn func(ctx context.Context, w container.Writer) error, check func(ctx context.Context, r container.Reader)) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			w, open := b.open(t)
			require.NoError(t, fn(ctx, w))
			require.NoError(t, w.Commit(ctx))
			require.NoError(t, w.Close())
			check(ctx, open())
		})
	}
}

func requireClose(t *testing.T, want, got matrix.Matrix) {
	t.Helper()
	ok, err := matrix.AllClose(want, got)
	require.NoError(t, err)
	require.True(t, ok)
}

var xRows = [][]float64{{1, 0}, {3, 0}, {5, 6}}

func TestMatrixRoundTrip(t *testing.T) {
	dense, err := matrix.NewDenseFromRows(xRows)
	require.NoError(t, err)
	csr, err := matrix.NewCSRFromRows(xRows)
	require.NoError(t, err)

	for name, x := range map[string]matrix.Matrix{"dense": dense, "csr": csr} {
		t.Run(name, func(t *testing.T) {
			roundTrip(t,
				func(ctx context.Context, w container.Writer) error { return elem.WriteMatrix(ctx, w, "/X", x) },
				func(ctx context.Context, r container.Reader) {
					got, err := elem.ReadMatrix(ctx, r, "/X")
					require.NoError(t, err)
					require.IsType(t, x, got) // representation survives
					requireClose(t, x, got)
					attrs, err := r.Attrs(ctx, "/X")
					require.NoError(t, err)
					typ, err := elem.TypeOf(attrs)
					require.NoError(t, err)
					if name == "csr" {
						require.Equal(t, elem.TypeCSR, typ)
					} else {
						require.Equal(t, elem.TypeArray, typ)
					}
				})
		})
	}
}

func TestReadCSCMatrix(t *testing.T) {
	roundTrip(t,
		func(ctx context.Context, w container.Writer) error {
			// column-major layout of xRows
			if err := w.CreateGroup(ctx, "/X", elem.Encoding(elem.TypeCSC, container.Attrs{"shape": []int{3, 2}})); err != nil {
				return err
			}
			if err := w.WriteArray(ctx, "/X/data", container.Float64Array([]int{4}, []float64{1, 3, 5, 6}), nil); err != nil {
				return err
			}
			if err := w.WriteArray(ctx, "/X/indices", container.Int32Array([]int{4}, []int32{0, 1, 2, 2}), nil); err != nil {
				return err
			}
			return w.WriteArray(ctx, "/X/indptr", container.Int32Array([]int{3}, []int32{0, 3, 4}), nil)
		},
		func(ctx context.Context, r container.Reader) {
			got, err := elem.ReadMatrix(ctx, r, "/X")
			require.NoError(t, err)
			want, err := matrix.NewDenseFromRows(xRows)
			require.NoError(t, err)
			requireClose(t, want, got)
		})
}

func obsFrame(t *testing.T) *frame.Frame {
	t.Helper()
	f, err := frame.New([]string{"name1", "name2", "name3"},
		frame.CategoricalFromStrings("oanno1", []string{"cat1", "cat2", "cat2"}),
		frame.NewString("oanno2", []string{"o1", "o2", "o3"}),
		frame.NewFloat64("oanno3", []float64{2.1, 2.2, 2.3}),
		frame.NewInt64("count", []int64{1, 2, 3}),
		frame.NewBool("flag", []bool{true, false, true}),
	)
	require.NoError(t, err)
	f.SetIndexName("row_names")
	return f
}

func TestFrameRoundTrip(t *testing.T) {
	in := obsFrame(t)
	roundTrip(t,
		func(ctx context.Context, w container.Writer) error {
			return elem.WriteFrame(ctx, w, "/obs", in, elem.WithConcurrency(2))
		},
		func(ctx context.Context, r container.Reader) {
			got, err := elem.ReadFrame(ctx, r, "/obs")
			require.NoError(t, err)
			require.Equal(t, []string{"name1", "name2", "name3"}, got.Index())
			require.Equal(t, "row_names", got.IndexName())
			require.Equal(t, in.Names(), got.Names()) // column-order preserved

			c, err := got.Column("oanno1")
			require.NoError(t, err)
			cat, ok := c.(*frame.Categorical)
			require.True(t, ok)
			require.Equal(t, []string{"cat1", "cat2"}, cat.Categories())
			require.Equal(t, []int32{0, 1, 1}, cat.Codes())

			for _, name := range []string{"oanno2", "oanno3", "count", "flag"} {
				want, _ := in.Column(name)
				have, err := got.Column(name)
				require.NoError(t, err)
				if diff := cmp.Diff(want, have, cmp.AllowUnexported(frame.StringColumn{}, frame.Float64Column{}, frame.Int64Column{}, frame.BoolColumn{})); diff != "" {
					t.Errorf("column %s mismatch (-want +got):\n%s", name, diff)
				}
			}
		})
}

func TestWriteFrameRejectsBadNames(t *testing.T) {
	w, _ := backends()[1].open(t)
	defer w.Close()
	bad, err := frame.New([]string{"a"}, frame.NewString("x/y", []string{"v"}))
	require.NoError(t, err)
	err = elem.WriteFrame(context.Background(), w, "/obs", bad)
	require.ErrorIs(t, err, elem.ErrUnsupportedValue)
}

func TestMappingRoundTrip(t *testing.T) {
	dense, err := matrix.NewDenseFromRows([][]float64{{1, 2}})
	require.NoError(t, err)
	uns := map[string]any{
		"oanno1_colors": []string{"#000000", "#FFFFFF"},
		"uns2":          []string{"some annotation"},
		"title":         "pbmc",
		"resolution":    0.5,
		"n_pcs":         50,
		"log1p":         true,
		"weights":       []float64{0.1, 0.9},
		"ids":           []int{1, 2, 3},
		"neighbors": map[string]any{
			"params": map[string]any{"method": "umap", "k": int64(15)},
		},
		"embedding": dense,
	}
	roundTrip(t,
		func(ctx context.Context, w container.Writer) error { return elem.WriteMapping(ctx, w, "/uns", uns) },
		func(ctx context.Context, r container.Reader) {
			got, err := elem.ReadMapping(ctx, r, "/uns")
			require.NoError(t, err)
			require.Equal(t, []string{"#000000", "#FFFFFF"}, got["oanno1_colors"])
			require.Equal(t, []string{"some annotation"}, got["uns2"])
			require.Equal(t, "pbmc", got["title"])
			require.Equal(t, 0.5, got["resolution"])
			require.Equal(t, int64(50), got["n_pcs"])
			require.Equal(t, true, got["log1p"])
			require.Equal(t, []float64{0.1, 0.9}, got["weights"])
			require.Equal(t, []int64{1, 2, 3}, got["ids"])
			require.Equal(t, map[string]any{"params": map[string]any{"method": "umap", "k": int64(15)}}, got["neighbors"])
			emb, ok := got["embedding"].(matrix.Matrix)
			require.True(t, ok)
			requireClose(t, dense, emb)
		})
}

func TestWriteValueUnsupported(t *testing.T) {
	w, _ := backends()[1].open(t)
	defer w.Close()
	err := elem.WriteValue(context.Background(), w, "/uns/c", complex(1, 2))
	require.ErrorIs(t, err, elem.ErrUnsupportedValue)
	err = elem.WriteMapping(context.Background(), w, "/uns", map[string]any{"a/b": "x"})
	require.ErrorIs(t, err, elem.ErrUnsupportedValue)
}

func TestUnknownEncoding(t *testing.T) {
	roundTrip(t,
		func(ctx context.Context, w container.Writer) error {
			if err := w.CreateGroup(ctx, "/X", elem.Encoding("awkward-array", nil)); err != nil {
				return err
			}
			if err := w.CreateGroup(ctx, "/obs", elem.Encoding(elem.TypeDict, nil)); err != nil {
				return err
			}
			return w.WriteArray(ctx, "/cube", container.Float64Array([]int{1, 1, 1}, []float64{1}), nil)
		},
		func(ctx context.Context, r container.Reader) {
			_, err := elem.ReadMatrix(ctx, r, "/X")
			require.ErrorIs(t, err, elem.ErrUnknownEncoding)
			_, err = elem.ReadFrame(ctx, r, "/obs")
			require.ErrorIs(t, err, elem.ErrUnknownEncoding)
			_, err = elem.ReadValue(ctx, r, "/X")
			require.ErrorIs(t, err, elem.ErrUnknownEncoding)
			_, err = elem.ReadValue(ctx, r, "/cube")
			require.ErrorIs(t, err, elem.ErrUnknownEncoding)
			_, err = elem.ReadMatrix(ctx, r, "/cube")
			require.ErrorIs(t, err, elem.ErrUnknownEncoding)
		})
}

func TestOptionsPanic(t *testing.T) {
	require.Panics(t, func() { elem.WithConcurrency(0) })
	require.Panics(t, func() { elem.WithLogger(nil) })
}
