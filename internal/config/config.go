// Package config loads the command line tool's settings from YAML with
// ANNDATA_* environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"unicode/utf8"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/anndata"
	"github.com/katalvlaran/anndata/blob"
	"github.com/katalvlaran/anndata/container"
	"github.com/katalvlaran/anndata/csvdir"
)

// Config is the top-level settings file.
type Config struct {
	Log   LogConfig   `yaml:"log"`
	Write WriteConfig `yaml:"write"`
	Blob  blob.Config `yaml:"blob"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// WriteConfig holds defaults for every write.
type WriteConfig struct {
	Compression       string    `yaml:"compression"` // none, gzip, zstd
	Level             int       `yaml:"level"`       // 0 selects the codec default
	Concurrency       int       `yaml:"concurrency"`
	InferCategoricals bool      `yaml:"infer_categoricals"`
	CSV               CSVConfig `yaml:"csv"`
}

// CSVConfig configures CSV exports.
type CSVConfig struct {
	Separator  string `yaml:"separator"`
	WithMatrix bool   `yaml:"with_matrix"`
}

// DefaultConfig returns the settings used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{Level: "info"},
		Write: WriteConfig{
			Compression:       anndata.DefaultCompression,
			Level:             anndata.DefaultCompressionLevel,
			Concurrency:       anndata.DefaultConcurrency,
			InferCategoricals: true,
			CSV:               CSVConfig{Separator: string(anndata.DefaultSeparator)},
		},
		Blob: blob.Config{Driver: blob.DriverFilesystem, FSRoot: "."},
	}
}

// Load reads path over the defaults and applies environment overrides.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
//
//	ANNDATA_LOG_LEVEL
//	ANNDATA_COMPRESSION, ANNDATA_COMPRESSION_LEVEL
//	ANNDATA_CONCURRENCY
//	ANNDATA_BLOB_* (see blob.Config.ApplyEnv)
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("ANNDATA_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("ANNDATA_COMPRESSION"); v != "" {
		c.Write.Compression = v
	}
	if v := os.Getenv("ANNDATA_COMPRESSION_LEVEL"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ANNDATA_COMPRESSION_LEVEL: %w", err)
		}
		c.Write.Level = n
	}
	if v := os.Getenv("ANNDATA_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ANNDATA_CONCURRENCY: %w", err)
		}
		c.Write.Concurrency = n
	}
	c.Blob.ApplyEnv()
	return nil
}

// Validate checks every value an Option constructor would panic on.
func (c *Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if _, err := container.CodecByName(c.Write.Compression, c.Write.Level); err != nil {
		return fmt.Errorf("write.compression: %w", err)
	}
	if c.Write.Concurrency < 1 {
		return fmt.Errorf("write.concurrency must be >= 1, got %d", c.Write.Concurrency)
	}
	if _, err := c.separator(); err != nil {
		return err
	}
	switch c.Blob.Driver {
	case "", blob.DriverFilesystem, blob.DriverMemory:
	case blob.DriverS3:
		if c.Blob.S3.Bucket == "" {
			return fmt.Errorf("blob.s3.bucket is required for the s3 driver")
		}
	default:
		return fmt.Errorf("invalid blob driver: %s", c.Blob.Driver)
	}
	return nil
}

func (c *Config) separator() (rune, error) {
	s := c.Write.CSV.Separator
	if s == `\t` {
		return '\t', nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || size != len(s) {
		return 0, fmt.Errorf("write.csv.separator must be a single character, got %q", s)
	}
	if err := csvdir.ValidateSeparator(r); err != nil {
		return 0, fmt.Errorf("write.csv.separator: %w", err)
	}
	return r, nil
}

// LogLevel returns the parsed log level, info when unset or invalid.
func (c *Config) LogLevel() zapcore.Level {
	lvl, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

// Options converts the write settings to anndata options. Call Validate
// first; invalid values panic in the option constructors.
func (c *Config) Options() []anndata.Option {
	opts := []anndata.Option{
		anndata.WithCompression(c.Write.Compression, c.Write.Level),
		anndata.WithConcurrency(c.Write.Concurrency),
	}
	if !c.Write.InferCategoricals {
		opts = append(opts, anndata.WithoutCategoricalInference())
	}
	if sep, err := c.separator(); err == nil {
		opts = append(opts, anndata.WithCSVSeparator(sep))
	}
	if c.Write.CSV.WithMatrix {
		opts = append(opts, anndata.WithCSVMatrix())
	}
	return opts
}
