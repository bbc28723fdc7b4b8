// SPDX-License-Identifier: MIT

// Package csvdir exports an annotated matrix as a directory of CSV files
// and reads such directories (and single matrix CSVs) back.
//
//	obs.csv        cell annotations, first column = index
//	var.csv        gene annotations, first column = index
//	uns/<key>.csv  one value per line; nested mappings become subdirectories
//	X.csv          the matrix, only when requested (WithMatrix)
package csvdir

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/katalvlaran/anndata/frame"
	"github.com/katalvlaran/anndata/matrix"
)

// File names inside an export directory.
const (
	ObsFile = "obs.csv"
	VarFile = "var.csv"
	XFile   = "X.csv"
	UnsDir  = "uns"
)

// blankIndexHeader stands in for an unnamed index in a frame without columns.
const blankIndexHeader = "_index"

// DefaultSeparator is the field delimiter.
const DefaultSeparator = ','

// ErrNotCSV is returned for inputs that do not parse as a table.
var ErrNotCSV = errors.New("csvdir: malformed csv")

// ErrSeparator is returned by ValidateSeparator.
var ErrSeparator = errors.New("csvdir: invalid separator")

// ValidateSeparator rejects delimiters encoding/csv cannot use: quote,
// newline, carriage return and the replacement character.
func ValidateSeparator(r rune) error {
	if r == '"' || r == '\r' || r == '\n' || r == 0xFFFD {
		return fmt.Errorf("%q: %w", r, ErrSeparator)
	}
	return nil
}

// Contents is an annotated matrix, oriented cells × genes.
type Contents struct {
	X   matrix.Matrix
	Obs *frame.Frame
	Var *frame.Frame
	Uns map[string]any
}

type options struct {
	sep          rune
	withMatrix   bool
	firstColumns bool
	infer        bool
	logger       *zap.Logger
}

// Option configures writers and readers.
type Option func(*options)

// WithSeparator sets the field delimiter. Panics when ValidateSeparator
// rejects r.
func WithSeparator(r rune) Option {
	if err := ValidateSeparator(r); err != nil {
		panic(fmt.Sprintf("csvdir: WithSeparator: %v", err))
	}
	return func(o *options) { o.sep = r }
}

// WithMatrix makes WriteDir export X.csv as well.
func WithMatrix() Option { return func(o *options) { o.withMatrix = true } }

// WithFirstColumnNames controls whether the first column of a matrix CSV
// holds observation names (default true).
func WithFirstColumnNames(on bool) Option { return func(o *options) { o.firstColumns = on } }

// WithoutCategoricalInference keeps string columns as strings on read.
func WithoutCategoricalInference() Option { return func(o *options) { o.infer = false } }

// WithLogger sets the logger. Panics on nil.
func WithLogger(l *zap.Logger) Option {
	if l == nil {
		panic("csvdir: WithLogger(nil)")
	}
	return func(o *options) { o.logger = l }
}

func gatherOptions(opts []Option) options {
	o := options{sep: DefaultSeparator, firstColumns: true, infer: true, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
