// SPDX-License-Identifier: MIT

// Package containertest holds a conformance suite run against every
// container backend.
package containertest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/anndata/container"
)

// Backend opens writers and readers on a fresh location per call of New.
type Backend struct {
	// New returns a writer and a function opening a reader on what it wrote.
	New func(t *testing.T, codec container.Codec) (container.Writer, func() container.Reader)
	// Ordered reports whether Children follows creation order.
	Ordered bool
}

// Run exercises b with every codec.
func Run(t *testing.T, b Backend) {
	for _, name := range []string{container.CodecNone, container.CodecGzip, container.CodecZstd} {
		codec, err := container.CodecByName(name, 0)
		require.NoError(t, err)
		t.Run(name, func(t *testing.T) {
			t.Run("RoundTrip", func(t *testing.T) { roundTrip(t, b, codec) })
			t.Run("Errors", func(t *testing.T) { errorCases(t, b, codec) })
			t.Run("Concurrent", func(t *testing.T) { concurrent(t, b, codec) })
		})
	}
}

func roundTrip(t *testing.T, b Backend, codec container.Codec) {
	ctx := context.Background()
	w, open := b.New(t, codec)
	require.NoError(t, w.CreateGroup(ctx, "/", container.Attrs{"encoding-type": "anndata"}))
	require.NoError(t, w.CreateGroup(ctx, "/obs", container.Attrs{"column-order": []string{"b", "a"}}))
	require.NoError(t, w.WriteArray(ctx, "/X", container.Float64Array([]int{3, 2}, []float64{1, 0, 3, 0, 5, 6}), container.Attrs{"encoding-type": "array"}))
	require.NoError(t, w.WriteArray(ctx, "/obs/b", container.StringArray([]int{3}, []string{"cat1", "", "ünïcode"}), nil))
	require.NoError(t, w.WriteArray(ctx, "/obs/a", container.Int32Array([]int{3}, []int32{0, -1, 1}), nil))
	require.NoError(t, w.WriteArray(ctx, "/uns/deep/flag", container.BoolArray(nil, []bool{true}), nil)) // parents auto-created
	require.NoError(t, w.WriteArray(ctx, "/uns/n", container.Int64Array(nil, []int64{-7}), nil))
	require.NoError(t, w.WriteArray(ctx, "/empty", container.Float64Array([]int{0, 2}, nil), nil))
	require.NoError(t, w.CreateGroup(ctx, "/", container.Attrs{"encoding-version": "0.1.0"})) // merge
	require.NoError(t, w.Commit(ctx))
	require.NoError(t, w.Close())

	r := open()
	defer func() { require.NoError(t, r.Close()) }()

	attrs, err := r.Attrs(ctx, "/")
	require.NoError(t, err)
	require.Equal(t, "anndata", attrs["encoding-type"])
	require.Equal(t, "0.1.0", attrs["encoding-version"])

	kids, err := r.Children(ctx, "/")
	require.NoError(t, err)
	if b.Ordered {
		require.Equal(t, []string{"obs", "X", "uns", "empty"}, kids)
	} else {
		require.ElementsMatch(t, []string{"obs", "X", "uns", "empty"}, kids)
	}
	obsKids, err := r.Children(ctx, "/obs")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"a", "b"}, obsKids)
	obsAttrs, err := r.Attrs(ctx, "obs")
	require.NoError(t, err)
	order, err := obsAttrs.Strings("column-order")
	require.NoError(t, err)
	require.Equal(t, []string{"b", "a"}, order)

	kind, err := r.Kind(ctx, "/uns/deep")
	require.NoError(t, err)
	require.Equal(t, container.KindGroup, kind)
	kind, err = r.Kind(ctx, "/X")
	require.NoError(t, err)
	require.Equal(t, container.KindArray, kind)

	x, err := r.ReadArray(ctx, "/X")
	require.NoError(t, err)
	require.Equal(t, []int{3, 2}, x.Shape)
	require.Equal(t, []float64{1, 0, 3, 0, 5, 6}, x.Float64s)
	xAttrs, err := r.Attrs(ctx, "/X")
	require.NoError(t, err)
	require.Equal(t, "array", xAttrs["encoding-type"])

	s, err := r.ReadArray(ctx, "/obs/b")
	require.NoError(t, err)
	require.Equal(t, []string{"cat1", "", "ünïcode"}, s.Strings)
	codes, err := r.ReadArray(ctx, "/obs/a")
	require.NoError(t, err)
	require.Equal(t, []int32{0, -1, 1}, codes.Int32s)

	flag, err := r.ReadArray(ctx, "/uns/deep/flag")
	require.NoError(t, err)
	require.True(t, flag.IsScalar())
	require.Equal(t, []bool{true}, flag.Bools)
	n, err := r.ReadArray(ctx, "/uns/n")
	require.NoError(t, err)
	require.Equal(t, []int64{-7}, n.Int64s)

	empty, err := r.ReadArray(ctx, "/empty")
	require.NoError(t, err)
	require.Equal(t, []int{0, 2}, empty.Shape)
	require.Zero(t, empty.Len())
}

func errorCases(t *testing.T, b Backend, codec container.Codec) {
	ctx := context.Background()
	w, open := b.New(t, codec)
	require.NoError(t, w.WriteArray(ctx, "/a", container.Float64Array([]int{1}, []float64{1}), nil))
	err := w.WriteArray(ctx, "/a", container.Float64Array([]int{1}, []float64{2}), nil)
	require.ErrorIs(t, err, container.ErrExists)
	err = w.CreateGroup(ctx, "/a", nil)
	require.ErrorIs(t, err, container.ErrKind)
	err = w.WriteArray(ctx, "/a/child", container.Float64Array([]int{1}, []float64{2}), nil)
	require.ErrorIs(t, err, container.ErrKind)
	err = w.WriteArray(ctx, "/bad", container.Float64Array([]int{2}, []float64{1}), nil)
	require.ErrorIs(t, err, container.ErrCorrupt)
	require.NoError(t, w.CreateGroup(ctx, "/g", nil))
	require.NoError(t, w.Commit(ctx))
	require.ErrorIs(t, w.Commit(ctx), container.ErrClosed)
	require.NoError(t, w.Close())

	r := open()
	defer func() { require.NoError(t, r.Close()) }()
	_, err = r.ReadArray(ctx, "/missing")
	require.ErrorIs(t, err, container.ErrNotFound)
	_, err = r.Kind(ctx, "/missing")
	require.ErrorIs(t, err, container.ErrNotFound)
	_, err = r.ReadArray(ctx, "/g")
	require.ErrorIs(t, err, container.ErrKind)
	_, err = r.Children(ctx, "/a")
	require.ErrorIs(t, err, container.ErrKind)
}

func concurrent(t *testing.T, b Backend, codec container.Codec) {
	ctx := context.Background()
	w, open := b.New(t, codec)
	const n = 16
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p := fmt.Sprintf("/frame/col%02d", i)
			errs <- w.WriteArray(ctx, p, container.Int64Array([]int{2}, []int64{int64(i), int64(i * i)}), nil)
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	require.NoError(t, w.Commit(ctx))
	require.NoError(t, w.Close())

	r := open()
	defer func() { require.NoError(t, r.Close()) }()
	kids, err := r.Children(ctx, "/frame")
	require.NoError(t, err)
	require.Len(t, kids, n)
	a, err := r.ReadArray(ctx, "/frame/col07")
	require.NoError(t, err)
	require.Equal(t, []int64{7, 49}, a.Int64s)
}
