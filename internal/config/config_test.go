package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/katalvlaran/anndata/blob"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	require.NoError(t, cfg.Validate())
	assert.Len(t, cfg.Options(), 3)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "anndata.yaml")
	cfg := DefaultConfig()
	cfg.Log.Level = "debug"
	cfg.Write.Compression = "zstd"
	cfg.Write.Level = 7
	cfg.Write.InferCategoricals = false
	cfg.Write.CSV = CSVConfig{Separator: `\t`, WithMatrix: true}
	cfg.Blob = blob.Config{Driver: blob.DriverS3}
	cfg.Blob.S3.Bucket = "cells"
	cfg.Blob.S3.SecretAccessKey = "never-saved"
	require.NoError(t, cfg.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, got.Validate())
	assert.Equal(t, zapcore.DebugLevel, got.LogLevel())
	assert.Equal(t, "zstd", got.Write.Compression)
	assert.Equal(t, 7, got.Write.Level)
	assert.False(t, got.Write.InferCategoricals)
	assert.Equal(t, "cells", got.Blob.S3.Bucket)
	assert.Empty(t, got.Blob.S3.SecretAccessKey)
	// compression, concurrency, no inference, separator, matrix
	assert.Len(t, got.Options(), 5)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ANNDATA_LOG_LEVEL", "warn")
	t.Setenv("ANNDATA_COMPRESSION", "none")
	t.Setenv("ANNDATA_CONCURRENCY", "9")
	t.Setenv("ANNDATA_BLOB_DRIVER", "memory")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "none", cfg.Write.Compression)
	assert.Equal(t, 9, cfg.Write.Concurrency)
	assert.Equal(t, blob.DriverMemory, cfg.Blob.Driver)

	t.Setenv("ANNDATA_COMPRESSION_LEVEL", "high")
	_, err = Load("")
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(c *Config){
		"level":       func(c *Config) { c.Log.Level = "loud" },
		"codec":       func(c *Config) { c.Write.Compression = "lz4" },
		"codec level": func(c *Config) { c.Write.Level = 99 },
		"concurrency": func(c *Config) { c.Write.Concurrency = 0 },
		"separator":   func(c *Config) { c.Write.CSV.Separator = ";;" },
		"quote":       func(c *Config) { c.Write.CSV.Separator = `"` },
		"driver":      func(c *Config) { c.Blob.Driver = "ftp" },
		"bucket":      func(c *Config) { c.Blob.Driver = blob.DriverS3 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLogLevelFallsBackToInfo(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Log.Level = "nope"
	assert.Equal(t, zapcore.InfoLevel, cfg.LogLevel())
}
