// SPDX-License-Identifier: MIT

package zarr_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/anndata/blob"
	"github.com/katalvlaran/anndata/blob/fs"
	"github.com/katalvlaran/anndata/blob/memory"
	"github.com/katalvlaran/anndata/blob/s3"
	"github.com/katalvlaran/anndata/container"
	"github.com/katalvlaran/anndata/container/containertest"
	"github.com/katalvlaran/anndata/container/zarr"
)

func backend(newStore func(t *testing.T) blob.Store) containertest.Backend {
	return containertest.Backend{
		New: func(t *testing.T, codec container.Codec) (container.Writer, func() container.Reader) {
			store := newStore(t)
			w, err := zarr.NewWriter(context.Background(), store, "test.zarr", zarr.WithCodec(codec))
			require.NoError(t, err)
			return w, func() container.Reader {
				r, err := zarr.Open(context.Background(), store, "test.zarr")
				require.NoError(t, err)
				return r
			}
		},
	}
}

func TestConformanceMemory(t *testing.T) {
	containertest.Run(t, backend(func(*testing.T) blob.Store { return memory.New() }))
}

func TestConformanceFS(t *testing.T) {
	containertest.Run(t, backend(func(t *testing.T) blob.Store {
		s, err := fs.New(t.TempDir())
		require.NoError(t, err)
		return s
	}))
}

func TestConformanceS3(t *testing.T) {
	containertest.Run(t, backend(func(*testing.T) blob.Store { return s3.NewMock() }))
}

func TestLayoutOnDisk(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store, err := fs.New(root)
	require.NoError(t, err)
	gz, err := container.CodecByName(container.CodecGzip, 5)
	require.NoError(t, err)
	w, err := zarr.NewWriter(ctx, store, "test.zarr", zarr.WithCodec(gz))
	require.NoError(t, err)
	require.NoError(t, w.WriteArray(ctx, "/obs/_index", container.StringArray([]int{2}, []string{"a", "b"}), nil))
	require.NoError(t, w.Commit(ctx))

	for _, f := range []string{".zgroup", "obs/.zgroup", "obs/_index/.zarray", "obs/_index/0"} {
		_, err := os.Stat(filepath.Join(root, "test.zarr", filepath.FromSlash(f)))
		require.NoError(t, err, f)
	}
	b, err := os.ReadFile(filepath.Join(root, "test.zarr", "obs", "_index", ".zarray"))
	require.NoError(t, err)
	var meta map[string]any
	require.NoError(t, json.Unmarshal(b, &meta))
	require.Equal(t, "|O", meta["dtype"])
	require.Equal(t, []any{2.0}, meta["shape"])
	require.Equal(t, map[string]any{"id": "gzip", "level": 5.0}, meta["compressor"])
	require.Equal(t, []any{map[string]any{"id": "vlen-utf8"}}, meta["filters"])
}

func TestNewWriterClearsPrefix(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	_, err := store.Put(ctx, "test.zarr/.zgroup", bytes.NewReader([]byte(`{"zarr_format":2}`)), blob.PutOptions{})
	require.NoError(t, err)
	_, err = store.Put(ctx, "test.zarr/stale/.zarray", bytes.NewReader([]byte("{}")), blob.PutOptions{})
	require.NoError(t, err)
	_, err = store.Put(ctx, "other/keep", bytes.NewReader([]byte("x")), blob.PutOptions{})
	require.NoError(t, err)

	w, err := zarr.NewWriter(ctx, store, "test.zarr")
	require.NoError(t, err)
	require.NoError(t, w.Commit(ctx))

	_, err = store.Head(ctx, "test.zarr/stale/.zarray")
	require.ErrorIs(t, err, blob.ErrNotFound)
	_, err = store.Head(ctx, "other/keep")
	require.NoError(t, err)
}

func TestNewWriterRefusesForeignPrefix(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store, err := fs.New(root)
	require.NoError(t, err)
	precious := filepath.Join(root, "precious.txt")
	require.NoError(t, os.WriteFile(precious, []byte("keep"), 0o644))
	_, err = store.Put(ctx, "notes/readme.txt", bytes.NewReader([]byte("keep")), blob.PutOptions{})
	require.NoError(t, err)

	for _, prefix := range []string{"", "/"} {
		_, err = zarr.NewWriter(ctx, store, prefix)
		require.ErrorIs(t, err, zarr.ErrEmptyPrefix, prefix)
	}
	_, err = zarr.NewWriter(ctx, store, "notes")
	require.ErrorIs(t, err, zarr.ErrNotZarr)

	_, err = os.Stat(precious)
	require.NoError(t, err)
	_, err = store.Head(ctx, "notes/readme.txt")
	require.NoError(t, err)
	_, err = store.Head(ctx, "notes/.zgroup")
	require.ErrorIs(t, err, blob.ErrNotFound)
}

func TestCloseWithoutCommitDeletes(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	w, err := zarr.NewWriter(ctx, store, "test.zarr")
	require.NoError(t, err)
	require.NoError(t, w.WriteArray(ctx, "/X", container.Float64Array([]int{1}, []float64{1}), nil))
	require.NoError(t, w.Close())
	infos, err := store.List(ctx, "")
	require.NoError(t, err)
	require.Empty(t, infos)
}

func TestOpenErrors(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	_, err := zarr.Open(ctx, store, "missing.zarr")
	require.ErrorIs(t, err, container.ErrNotFound)

	_, err = store.Put(ctx, "bad.zarr/.zgroup", bytes.NewReader([]byte(`{"zarr_format":2}`)), blob.PutOptions{})
	require.NoError(t, err)
	_, err = store.Put(ctx, "bad.zarr/X/.zarray", bytes.NewReader([]byte(`{"zarr_format":2,"shape":[2],"chunks":[2],"dtype":">f8","order":"C"}`)), blob.PutOptions{})
	require.NoError(t, err)
	r, err := zarr.Open(ctx, store, "bad.zarr")
	require.NoError(t, err)
	_, err = r.ReadArray(ctx, "/X")
	require.ErrorIs(t, err, container.ErrDType)

	_, rc, err := store.Get(ctx, "bad.zarr/.zgroup")
	require.NoError(t, err)
	body, _ := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.Contains(t, string(body), "zarr_format")
}
