// SPDX-License-Identifier: MIT

// Package loom reads and writes the loom layout: the expression matrix
// stored genes × cells under /matrix, per-gene annotations under
// /row_attrs, per-cell annotations under /col_attrs and global attributes
// under /attrs. Files live in a single-file container (container/sqlite).
package loom

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/katalvlaran/anndata/container"
	"github.com/katalvlaran/anndata/container/sqlite"
	"github.com/katalvlaran/anndata/frame"
	"github.com/katalvlaran/anndata/matrix"
)

// FormatName is recorded in the container meta table.
const FormatName = "loom"

// SpecVersion is written as the LOOM_SPEC_VERSION root attribute.
const SpecVersion = "3.0.0"

// Layout names.
const (
	MatrixPath    = "/matrix"
	RowAttrsPath  = "/row_attrs"
	ColAttrsPath  = "/col_attrs"
	AttrsPath     = "/attrs"
	LayersPath    = "/layers"
	RowGraphsPath = "/row_graphs"
	ColGraphsPath = "/col_graphs"

	ObsNames = "obs_names"
	VarNames = "var_names"
	CellID   = "CellID"
	Gene     = "Gene"

	attrSpecVersion = "LOOM_SPEC_VERSION"
	attrJSON        = "json-encoded"
	attrNoData      = "no-data"
)

// DefaultGzipLevel matches the compression loom files are usually written with.
const DefaultGzipLevel = 2

// ErrReservedName is returned when an annotation column would shadow the
// obs_names / var_names attribute.
var ErrReservedName = errors.New("loom: reserved attribute name")

// Contents is what a loom file holds, oriented cells × genes.
type Contents struct {
	X   matrix.Matrix
	Obs *frame.Frame
	Var *frame.Frame
	Uns map[string]any
}

type options struct {
	sparse bool
	infer  bool
	codec  container.Codec
	logger *zap.Logger
}

// Option configures Read and Write.
type Option func(*options)

// WithSparse makes Read return X as *matrix.CSR.
func WithSparse() Option { return func(o *options) { o.sparse = true } }

// WithoutCategoricalInference keeps string columns as strings on Read.
func WithoutCategoricalInference() Option { return func(o *options) { o.infer = false } }

// WithCodec sets the array compressor. Panics on nil.
func WithCodec(c container.Codec) Option {
	if c == nil {
		panic("loom: WithCodec(nil)")
	}
	return func(o *options) { o.codec = c }
}

// WithLogger sets the logger. Panics on nil.
func WithLogger(l *zap.Logger) Option {
	if l == nil {
		panic("loom: WithLogger(nil)")
	}
	return func(o *options) { o.logger = l }
}

func gatherOptions(opts []Option) options {
	gz, _ := container.CodecByName(container.CodecGzip, DefaultGzipLevel)
	o := options{infer: true, codec: gz, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Write stores c at path, replacing any existing file atomically.
func Write(ctx context.Context, path string, c Contents, opts ...Option) (err error) {
	o := gatherOptions(opts)
	nObs, nVars, err := shape(c)
	if err != nil {
		return err
	}
	w, err := sqlite.Create(ctx, path, sqlite.WithFormat(FormatName), sqlite.WithCodec(o.codec))
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, w.Close()) }()

	if err := w.CreateGroup(ctx, container.Root, container.Attrs{attrSpecVersion: SpecVersion}); err != nil {
		return err
	}
	if err := writeMatrix(ctx, w, c.X, nObs, nVars); err != nil {
		return err
	}
	if err := writeAttrs(ctx, w, RowAttrsPath, VarNames, c.Var, nVars); err != nil {
		return err
	}
	if err := writeAttrs(ctx, w, ColAttrsPath, ObsNames, c.Obs, nObs); err != nil {
		return err
	}
	if err := writeGlobals(ctx, w, c.Uns, o.logger); err != nil {
		return err
	}
	for _, g := range []string{LayersPath, RowGraphsPath, ColGraphsPath} {
		if err := w.CreateGroup(ctx, g, nil); err != nil {
			return err
		}
	}
	if err := w.Commit(ctx); err != nil {
		return err
	}
	o.logger.Info("wrote loom file", zap.String("path", path), zap.Int("n_obs", nObs), zap.Int("n_vars", nVars))
	return nil
}

func shape(c Contents) (nObs, nVars int, err error) {
	switch {
	case c.X != nil:
		nObs, nVars = c.X.Rows(), c.X.Cols()
	case c.Obs != nil && c.Var != nil:
		nObs, nVars = c.Obs.Len(), c.Var.Len()
	default:
		return 0, 0, fmt.Errorf("loom: no matrix and no annotations to size it: %w", matrix.ErrNilMatrix)
	}
	if c.Obs != nil && c.Obs.Len() != nObs {
		return 0, 0, fmt.Errorf("loom: obs has %d rows for %d cells: %w", c.Obs.Len(), nObs, frame.ErrLengthMismatch)
	}
	if c.Var != nil && c.Var.Len() != nVars {
		return 0, 0, fmt.Errorf("loom: var has %d rows for %d genes: %w", c.Var.Len(), nVars, frame.ErrLengthMismatch)
	}
	return nObs, nVars, nil
}

func writeMatrix(ctx context.Context, w container.Writer, x matrix.Matrix, nObs, nVars int) error {
	var (
		data  []float64
		attrs container.Attrs
	)
	if x == nil {
		// loom always carries /matrix; zeros tagged so Read can drop them
		data = make([]float64, nObs*nVars)
		attrs = container.Attrs{attrNoData: true}
	} else {
		t, err := matrix.Transpose(x)
		if err != nil {
			return err
		}
		d, err := matrix.ToDense(t)
		if err != nil {
			return err
		}
		data = d.RawData()
	}
	return w.WriteArray(ctx, MatrixPath, container.Float64Array([]int{nVars, nObs}, data), attrs)
}

func writeAttrs(ctx context.Context, w container.Writer, p, namesKey string, f *frame.Frame, n int) error {
	if err := w.CreateGroup(ctx, p, nil); err != nil {
		return err
	}
	names := frame.DefaultIndex(n)
	if f != nil {
		names = f.Index()
	}
	if err := w.WriteArray(ctx, container.Join(p, namesKey), container.StringArray([]int{n}, names), nil); err != nil {
		return err
	}
	if f == nil {
		return nil
	}
	for _, c := range f.Columns() {
		if c.Name() == namesKey {
			return fmt.Errorf("column %q: %w", c.Name(), ErrReservedName)
		}
		if err := validName(c.Name()); err != nil {
			return err
		}
		a, err := columnArray(c)
		if err != nil {
			return err
		}
		if err := w.WriteArray(ctx, container.Join(p, c.Name()), a, nil); err != nil {
			return err
		}
	}
	return nil
}

// columnArray flattens a column; categoricals are stored as their labels.
func columnArray(c frame.Column) (*container.Array, error) {
	n := []int{c.Len()}
	switch col := c.(type) {
	case *frame.Float64Column:
		return container.Float64Array(n, col.Values()), nil
	case *frame.Int64Column:
		return container.Int64Array(n, col.Values()), nil
	case *frame.BoolColumn:
		return container.BoolArray(n, col.Values()), nil
	case *frame.StringColumn:
		return container.StringArray(n, col.Values()), nil
	case *frame.Categorical:
		return container.StringArray(n, col.Values()), nil
	}
	return nil, fmt.Errorf("column %q of %T: %w", c.Name(), c, frame.ErrUnsupportedType)
}

func writeGlobals(ctx context.Context, w container.Writer, uns map[string]any, log *zap.Logger) error {
	if err := w.CreateGroup(ctx, AttrsPath, nil); err != nil {
		return err
	}
	for k, v := range uns {
		if err := validName(k); err != nil {
			return err
		}
		p := container.Join(AttrsPath, k)
		v = widen(v)
		if a, err := container.Scalar(v); err == nil {
			if err := w.WriteArray(ctx, p, a, nil); err != nil {
				return err
			}
			continue
		}
		if a, err := vectorOf(v); err == nil {
			if err := w.WriteArray(ctx, p, a, nil); err != nil {
				return err
			}
			continue
		}
		switch v.(type) {
		case matrix.Matrix, *frame.Frame:
			log.Warn("loom global attribute not representable, skipped", zap.String("key", k))
			continue
		}
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("attrs %q: %w", k, err)
		}
		if err := w.WriteArray(ctx, p, container.StringArray(nil, []string{string(b)}), container.Attrs{attrJSON: true}); err != nil {
			return err
		}
	}
	return nil
}

func validName(name string) error {
	if name == "" || strings.Contains(name, "/") {
		return fmt.Errorf("name %q: %w", name, ErrReservedName)
	}
	return nil
}

func vectorOf(v any) (*container.Array, error) {
	return container.Vector(widen(v))
}

// widen maps Go numeric types without a loom dtype onto float64 / int64.
func widen(v any) any {
	switch x := v.(type) {
	case float32:
		return float64(x)
	case []float32:
		out := make([]float64, len(x))
		for i, f := range x {
			out[i] = float64(f)
		}
		return out
	case []int:
		out := make([]int64, len(x))
		for i, n := range x {
			out[i] = int64(n)
		}
		return out
	}
	return v
}
