// SPDX-License-Identifier: MIT

package elem

import "go.uber.org/zap"

// DefaultConcurrency bounds how many dataframe columns are written at once.
const DefaultConcurrency = 4

type options struct {
	concurrency int
	logger      *zap.Logger
}

// Option configures element writers and readers.
type Option func(*options)

// WithConcurrency sets the column write limit. Panics if n < 1.
func WithConcurrency(n int) Option {
	if n < 1 {
		panic("elem: WithConcurrency(n) requires n >= 1")
	}
	return func(o *options) { o.concurrency = n }
}

// WithLogger sets the debug logger. Panics on nil.
func WithLogger(l *zap.Logger) Option {
	if l == nil {
		panic("elem: WithLogger(nil)")
	}
	return func(o *options) { o.logger = l }
}

func gatherOptions(opts []Option) options {
	o := options{concurrency: DefaultConcurrency, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
