package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/anndata"
	"github.com/katalvlaran/anndata/container/zarr"
	"github.com/katalvlaran/anndata/matrix"
)

// execute runs the root command with fresh flag state and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	verbose, showMetrics, convertFormat, withMatrix = false, false, "", false
	configPath = filepath.Join(t.TempDir(), "anndata.yaml")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeFixture(t *testing.T) string {
	t.Helper()
	x, err := matrix.NewCSRFromRows([][]float64{{1, 0}, {3, 0}, {5, 6}})
	require.NoError(t, err)
	a, err := anndata.NewFromMaps(x,
		map[string]any{
			anndata.ObsIndexKey: []string{"name1", "name2", "name3"},
			"oanno1":            []string{"cat1", "cat2", "cat2"},
		},
		map[string]any{"vanno1": []float64{3.1, 3.2}},
		map[string]any{"uns2": []string{"some annotation"}})
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "test.h5ad")
	require.NoError(t, a.WriteH5AD(context.Background(), path))
	return path
}

func TestInspectCmd(t *testing.T) {
	src := writeFixture(t)
	out, err := execute(t, "inspect", src)
	require.NoError(t, err)
	assert.Contains(t, out, "n_obs × n_vars = 3 × 2 (sparse)")
	assert.Contains(t, out, "obs: 'oanno1'")
}

func TestConvertCmd(t *testing.T) {
	src := writeFixture(t)
	dir := t.TempDir()

	for _, dst := range []string{"out.loom", "out.zarr", "out.h5ad"} {
		_, err := execute(t, "convert", src, filepath.Join(dir, dst))
		require.NoError(t, err, dst)

		a, err := anndata.Read(context.Background(), filepath.Join(dir, dst))
		require.NoError(t, err, dst)
		assert.Equal(t, []string{"name1", "name2", "name3"}, a.ObsNames(), dst)
	}

	_, err := execute(t, "convert", "--format", "loom", src, filepath.Join(dir, "explicit.bin"))
	require.NoError(t, err)
	_, err = anndata.ReadLoom(context.Background(), filepath.Join(dir, "explicit.bin"))
	require.NoError(t, err)

	_, err = execute(t, "convert", src, filepath.Join(dir, "out.bin"))
	require.ErrorIs(t, err, anndata.ErrUnknownFormat)
}

func TestConvertToBlobStore(t *testing.T) {
	src := writeFixture(t)
	root := t.TempDir()
	t.Setenv("ANNDATA_BLOB_DRIVER", "fs")
	t.Setenv("ANNDATA_BLOB_FS_ROOT", root)

	_, err := execute(t, "convert", src, "blob://cells/test.zarr")
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(root, "cells", "test.zarr", ".zgroup"))
	require.NoError(t, err)

	out, err := execute(t, "inspect", "blob://cells/test.zarr")
	require.NoError(t, err)
	assert.Contains(t, out, "3 × 2")

	// the bare scheme names the whole store and is refused
	t.Setenv("ANNDATA_BLOB_FS_ROOT", filepath.Dir(src))
	_, err = execute(t, "convert", src, "blob://")
	require.ErrorIs(t, err, zarr.ErrEmptyPrefix)
	_, err = os.Stat(src)
	require.NoError(t, err)
}

func TestExportCSVCmd(t *testing.T) {
	src := writeFixture(t)
	dir := filepath.Join(t.TempDir(), "test_csv_dir")

	out, err := execute(t, "--metrics", "export-csv", "--with-matrix", src, dir)
	require.NoError(t, err)
	for _, name := range []string{"obs.csv", "var.csv", "X.csv"} {
		_, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
	}
	assert.Contains(t, out, `anndata_operations_total{format="h5ad",op="read",outcome="ok"} 1`)
	assert.Contains(t, out, `anndata_operations_total{format="csv",op="write",outcome="ok"} 1`)
}

func TestInvalidConfig(t *testing.T) {
	t.Setenv("ANNDATA_COMPRESSION", "lz4")
	_, err := execute(t, "inspect", writeFixture(t))
	require.Error(t, err)
}
