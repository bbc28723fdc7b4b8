// SPDX-License-Identifier: MIT

package anndata

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/katalvlaran/anndata/container"
	"github.com/katalvlaran/anndata/csvdir"
	"github.com/katalvlaran/anndata/elem"
	"github.com/katalvlaran/anndata/metrics"
)

// Defaults shared by every read and write entry point.
const (
	DefaultCompression      = container.CodecGzip
	DefaultCompressionLevel = 0 // codec default
	DefaultConcurrency      = elem.DefaultConcurrency
	DefaultSeparator        = ','
)

type options struct {
	logger      *zap.Logger
	metrics     *metrics.Collector
	codec       container.Codec
	concurrency int
	infer       bool
	sparse      bool
	csvMatrix   bool
	separator   rune
}

// Option configures reads and writes.
type Option func(*options)

// WithLogger sets the logger (default: no-op). Panics on nil.
func WithLogger(l *zap.Logger) Option {
	if l == nil {
		panic("anndata: WithLogger(nil)")
	}
	return func(o *options) { o.logger = l }
}

// WithMetrics records operations in c.
func WithMetrics(c *metrics.Collector) Option {
	return func(o *options) { o.metrics = c }
}

// WithCompression selects the array codec ("none", "gzip", "zstd") and
// level. Panics on an unknown codec or out-of-range level.
func WithCompression(name string, level int) Option {
	c, err := container.CodecByName(name, level)
	if err != nil {
		panic(fmt.Sprintf("anndata: WithCompression: %v", err))
	}
	return func(o *options) { o.codec = c }
}

// WithConcurrency bounds how many elements and columns are written at
// once. Panics if n < 1.
func WithConcurrency(n int) Option {
	if n < 1 {
		panic("anndata: WithConcurrency(n) requires n >= 1")
	}
	return func(o *options) { o.concurrency = n }
}

// WithoutCategoricalInference stores and loads string columns as they are.
func WithoutCategoricalInference() Option {
	return func(o *options) { o.infer = false }
}

// WithSparse returns X as CSR from formats that store it dense (loom, CSV).
func WithSparse() Option {
	return func(o *options) { o.sparse = true }
}

// WithCSVMatrix includes X.csv in CSV exports.
func WithCSVMatrix() Option {
	return func(o *options) { o.csvMatrix = true }
}

// WithCSVSeparator sets the CSV field delimiter. Panics when
// csvdir.ValidateSeparator rejects r.
func WithCSVSeparator(r rune) Option {
	if err := csvdir.ValidateSeparator(r); err != nil {
		panic(fmt.Sprintf("anndata: WithCSVSeparator: %v", err))
	}
	return func(o *options) { o.separator = r }
}

func gatherOptions(opts []Option) options {
	codec, _ := container.CodecByName(DefaultCompression, DefaultCompressionLevel)
	o := options{
		logger:      zap.NewNop(),
		codec:       codec,
		concurrency: DefaultConcurrency,
		infer:       true,
		separator:   DefaultSeparator,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) elemOptions() []elem.Option {
	return []elem.Option{elem.WithLogger(o.logger), elem.WithConcurrency(o.concurrency)}
}
