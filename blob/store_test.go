package blob_test

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/anndata/blob"
	"github.com/katalvlaran/anndata/blob/fs"
	"github.com/katalvlaran/anndata/blob/memory"
	"github.com/katalvlaran/anndata/blob/s3"
)

func backends(t *testing.T) map[string]blob.Store {
	t.Helper()
	fsStore, err := fs.New(t.TempDir())
	require.NoError(t, err)
	return map[string]blob.Store{
		"memory": memory.New(),
		"fs":     fsStore,
		"s3":     s3.NewMock(),
	}
}

func put(t *testing.T, s blob.Store, key, body string) {
	t.Helper()
	_, err := s.Put(context.Background(), key, bytes.NewReader([]byte(body)), blob.PutOptions{ContentType: "text/plain"})
	require.NoError(t, err)
}

func TestStoreContract(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			put(t, s, "a.zarr/.zgroup", `{"zarr_format":2}`)
			put(t, s, "a.zarr/X/0.0", "chunk")
			put(t, s, "a.zarr/obs/.zattrs", "{}")
			put(t, s, "b.txt", "other")

			info, rc, err := s.Get(ctx, "a.zarr/X/0.0")
			require.NoError(t, err)
			got, err := io.ReadAll(rc)
			require.NoError(t, rc.Close())
			require.NoError(t, err)
			require.Equal(t, "chunk", string(got))
			require.EqualValues(t, 5, info.Size)

			// overwrite replaces contents
			put(t, s, "a.zarr/X/0.0", "replaced")
			head, err := s.Head(ctx, "a.zarr/X/0.0")
			require.NoError(t, err)
			require.EqualValues(t, 8, head.Size)

			list, err := s.List(ctx, "a.zarr/")
			require.NoError(t, err)
			keys := make([]string, len(list))
			for i, it := range list {
				keys[i] = it.Key
			}
			require.Equal(t, []string{"a.zarr/.zgroup", "a.zarr/X/0.0", "a.zarr/obs/.zattrs"}, keys)

			_, err = s.Head(ctx, "missing")
			require.ErrorIs(t, err, blob.ErrNotFound)
			_, _, err = s.Get(ctx, "missing")
			require.ErrorIs(t, err, blob.ErrNotFound)

			ok, err := s.Delete(ctx, "b.txt")
			require.NoError(t, err)
			require.True(t, ok)
			ok, err = s.Delete(ctx, "b.txt")
			require.NoError(t, err)
			require.False(t, ok) // second delete finds nothing
		})
	}
}

func TestFSRejectsTraversal(t *testing.T) {
	s, err := fs.New(t.TempDir())
	require.NoError(t, err)
	_, err = s.Put(context.Background(), "../escape", bytes.NewReader(nil), blob.PutOptions{})
	require.ErrorIs(t, err, blob.ErrInvalidKey)
	_, err = s.Put(context.Background(), "/abs", bytes.NewReader(nil), blob.PutOptions{})
	require.ErrorIs(t, err, blob.ErrInvalidKey)
}

func TestFSListMissingPrefix(t *testing.T) {
	s, err := fs.New(t.TempDir())
	require.NoError(t, err)
	list, err := s.List(context.Background(), "nothing/here/")
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	s, err := blob.Open(ctx, blob.Config{Driver: blob.DriverMemory})
	require.NoError(t, err)
	require.Equal(t, blob.DriverMemory, s.Driver())

	s, err = blob.Open(ctx, blob.Config{FSRoot: t.TempDir()})
	require.NoError(t, err)
	require.Equal(t, blob.DriverFilesystem, s.Driver())

	_, err = blob.Open(ctx, blob.Config{Driver: blob.DriverS3})
	require.Error(t, err) // bucket required

	_, err = blob.Open(ctx, blob.Config{Driver: "ftp"})
	require.Error(t, err)
}

func TestConfigApplyEnv(t *testing.T) {
	t.Setenv("ANNDATA_BLOB_DRIVER", "s3")
	t.Setenv("ANNDATA_BLOB_S3_BUCKET", "cells")
	t.Setenv("ANNDATA_BLOB_S3_PATH_STYLE", "TRUE")
	var cfg blob.Config
	cfg.ApplyEnv()
	require.Equal(t, blob.DriverS3, cfg.Driver)
	require.Equal(t, "cells", cfg.S3.Bucket)
	require.True(t, cfg.S3.PathStyle)
}
