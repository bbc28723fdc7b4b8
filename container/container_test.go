// SPDX-License-Identifier: MIT

package container_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/anndata/container"
)

func TestPaths(t *testing.T) {
	require.Equal(t, "/", container.Clean(""))
	require.Equal(t, "/obs/_index", container.Clean("obs/_index/"))
	require.Equal(t, "/obs/a", container.Join("/obs", "a"))
	require.Equal(t, "/a/b", container.Join("", "a", "b"))

	parent, name := container.Split("/obs/a")
	require.Equal(t, "/obs", parent)
	require.Equal(t, "a", name)
	parent, name = container.Split("/")
	require.Equal(t, "/", parent)
	require.Empty(t, name)

	require.Equal(t, []string{"/", "/uns", "/uns/deep"}, container.Ancestors("/uns/deep/flag"))
	require.Nil(t, container.Ancestors("/"))
}

func TestEncodeDecode(t *testing.T) {
	cases := []*container.Array{
		container.Float64Array([]int{2, 2}, []float64{1.5, math.Inf(-1), 0, -2}),
		container.Int64Array([]int{3}, []int64{math.MinInt64, 0, math.MaxInt64}),
		container.Int32Array([]int{2}, []int32{-1, 7}),
		container.BoolArray([]int{3}, []bool{true, false, true}),
		container.StringArray([]int{4}, []string{"", "a", "name1", "日本"}),
		container.StringArray(nil, []string{"scalar"}),
	}
	for _, a := range cases {
		raw, err := container.EncodeArray(a)
		require.NoError(t, err)
		got, err := container.DecodeArray(a.DType, a.Shape, raw)
		require.NoError(t, err)
		require.Equal(t, a.Values(), got.Values(), a.DType)
		require.Equal(t, a.Shape, got.Shape)
	}
}

func TestEncodeLayout(t *testing.T) {
	raw, err := container.EncodeArray(container.StringArray([]int{2}, []string{"ab", "c"}))
	require.NoError(t, err)
	// count=2, len=2 "ab", len=1 "c"
	require.Equal(t, []byte{2, 0, 0, 0, 2, 0, 0, 0, 'a', 'b', 1, 0, 0, 0, 'c'}, raw)

	raw, err = container.EncodeArray(container.Int32Array([]int{1}, []int32{1}))
	require.NoError(t, err)
	require.Equal(t, []byte{1, 0, 0, 0}, raw) // little-endian
}

func TestDecodeCorrupt(t *testing.T) {
	_, err := container.DecodeArray(container.Float64, []int{2}, make([]byte, 15))
	require.ErrorIs(t, err, container.ErrCorrupt)
	_, err = container.DecodeArray(container.String, []int{1}, []byte{1, 0, 0, 0, 9, 0, 0, 0, 'x'})
	require.ErrorIs(t, err, container.ErrCorrupt)
	_, err = container.DecodeArray(container.String, []int{2}, []byte{1, 0, 0, 0, 1, 0, 0, 0, 'x'})
	require.ErrorIs(t, err, container.ErrCorrupt)
	_, err = container.DecodeArray("complex128", []int{1}, nil)
	require.ErrorIs(t, err, container.ErrDType)
}

func TestArrayHelpers(t *testing.T) {
	a, err := container.Vector([]int32{1, 2})
	require.NoError(t, err)
	f, err := a.AsFloat64s()
	require.NoError(t, err)
	require.Equal(t, []float64{1, 2}, f)
	i, err := a.AsInt64s()
	require.NoError(t, err)
	require.Equal(t, []int64{1, 2}, i)

	s, err := container.Scalar(3)
	require.NoError(t, err)
	require.True(t, s.IsScalar())
	require.Equal(t, []int64{3}, s.Int64s)

	_, err = container.Vector([]complex64{1})
	require.ErrorIs(t, err, container.ErrDType)
	_, err = container.StringArray([]int{1}, []string{"a"}).AsFloat64s()
	require.ErrorIs(t, err, container.ErrDType)
	require.ErrorIs(t, container.Float64Array([]int{-1}, nil).Validate(), container.ErrCorrupt)
}

func TestAttrsDecodedForms(t *testing.T) {
	in, err := container.MarshalAttrs(container.Attrs{
		"shape":   []int{3, 2},
		"order":   []string{"a", "b"},
		"ordered": false,
		"type":    "csr_matrix",
	})
	require.NoError(t, err)
	attrs, err := container.UnmarshalAttrs(in)
	require.NoError(t, err)

	shape, err := attrs.Ints("shape")
	require.NoError(t, err)
	require.Equal(t, []int{3, 2}, shape)
	order, err := attrs.Strings("order")
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, order)
	ordered, err := attrs.Bool("ordered")
	require.NoError(t, err)
	require.False(t, ordered)
	typ, err := attrs.String("type")
	require.NoError(t, err)
	require.Equal(t, "csr_matrix", typ)

	_, err = attrs.String("missing")
	require.ErrorIs(t, err, container.ErrNotFound)
	_, err = attrs.Ints("type")
	require.ErrorIs(t, err, container.ErrCorrupt)
	_, err = container.UnmarshalAttrs([]byte("{"))
	require.ErrorIs(t, err, container.ErrCorrupt)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(in, &raw))
	require.Len(t, raw, 4)
}

func TestCodecs(t *testing.T) {
	payload := []byte("data data data data data data data data")
	for _, name := range []string{"", container.CodecNone, container.CodecGzip, container.CodecZstd} {
		c, err := container.CodecByName(name, 0)
		require.NoError(t, err)
		enc, err := c.Encode(payload)
		require.NoError(t, err)
		dec, err := c.Decode(enc)
		require.NoError(t, err)
		require.Equal(t, payload, dec, name)
	}
	_, err := container.CodecByName("lz4", 0)
	require.ErrorIs(t, err, container.ErrDType)
	_, err = container.CodecByName(container.CodecGzip, 42)
	require.ErrorIs(t, err, container.ErrDType)

	gz, err := container.CodecByName(container.CodecGzip, 9)
	require.NoError(t, err)
	_, err = gz.Decode([]byte("not gzip"))
	require.ErrorIs(t, err, container.ErrCorrupt)
}

func TestRegistry(t *testing.T) {
	r := container.NewRegistry()
	parents, node, existed, err := r.Claim("/a/b/c", container.KindArray)
	require.NoError(t, err)
	require.False(t, existed)
	require.Len(t, parents, 2)
	require.Equal(t, "/a", parents[0].Path)
	require.Less(t, parents[1].Seq, node.Seq)

	_, _, existed, err = r.Claim("/a", container.KindGroup)
	require.NoError(t, err)
	require.True(t, existed)
	_, _, _, err = r.Claim("/a/b/c", container.KindArray)
	require.ErrorIs(t, err, container.ErrExists)
	require.ElementsMatch(t, []string{"/a", "/a/b", "/a/b/c"}, r.Paths())
}
