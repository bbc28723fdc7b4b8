package blob

import (
	"context"
	"fmt"
	"os"

	"github.com/katalvlaran/anndata/blob/fs"
	"github.com/katalvlaran/anndata/blob/memory"
	"github.com/katalvlaran/anndata/blob/s3"
)

// Config selects and parameterizes a blob backend.
type Config struct {
	Driver Driver    `yaml:"driver"`
	FSRoot string    `yaml:"fs_root"`
	S3     s3.Config `yaml:"s3"`
}

// ApplyEnv overrides cfg fields from the environment.
//
//	ANNDATA_BLOB_DRIVER: fs|s3|memory
//	ANNDATA_BLOB_FS_ROOT: directory root when driver=fs
//	(S3 specific variables documented in blob/s3)
func (c *Config) ApplyEnv() {
	if v := os.Getenv("ANNDATA_BLOB_DRIVER"); v != "" {
		c.Driver = Driver(v)
	}
	if v := os.Getenv("ANNDATA_BLOB_FS_ROOT"); v != "" {
		c.FSRoot = v
	}
	env := s3.ConfigFromEnv()
	if env.Bucket != "" {
		c.S3.Bucket = env.Bucket
	}
	if env.Region != "" {
		c.S3.Region = env.Region
	}
	if env.Endpoint != "" {
		c.S3.Endpoint = env.Endpoint
	}
	if env.PathStyle {
		c.S3.PathStyle = true
	}
}

// Open builds the Store selected by cfg. An empty driver means fs.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case "", DriverFilesystem:
		return fs.New(cfg.FSRoot)
	case DriverS3:
		return s3.New(ctx, cfg.S3)
	case DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %q", cfg.Driver)
	}
}
