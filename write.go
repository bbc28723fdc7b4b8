// SPDX-License-Identifier: MIT

package anndata

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/anndata/blob"
	"github.com/katalvlaran/anndata/blob/fs"
	"github.com/katalvlaran/anndata/container"
	"github.com/katalvlaran/anndata/container/sqlite"
	"github.com/katalvlaran/anndata/container/zarr"
	"github.com/katalvlaran/anndata/csvdir"
	"github.com/katalvlaran/anndata/elem"
	"github.com/katalvlaran/anndata/frame"
	"github.com/katalvlaran/anndata/loom"
	"github.com/katalvlaran/anndata/metrics"
)

// Element names of the root group.
const (
	ElemX   = "X"
	ElemObs = "obs"
	ElemVar = "var"
	ElemUns = "uns"
)

// Write stores a as h5ad at path, or at a.Filename when path is empty.
//
// Errors:
//   - ErrNoFilename when both are empty.
func (a *AnnData) Write(ctx context.Context, path string, opts ...Option) error {
	if path == "" {
		path = a.Filename
	}
	if path == "" {
		return ErrNoFilename
	}
	return a.WriteH5AD(ctx, path, opts...)
}

// WriteAs stores a at path in format f. FormatCSV writes an export directory.
func (a *AnnData) WriteAs(ctx context.Context, path string, f Format, opts ...Option) error {
	switch f {
	case FormatH5AD:
		return a.WriteH5AD(ctx, path, opts...)
	case FormatLoom:
		return a.WriteLoom(ctx, path, opts...)
	case FormatZarr:
		store, err := fs.New(filepath.Dir(path))
		if err != nil {
			return err
		}
		return a.WriteZarr(ctx, store, filepath.Base(path), opts...)
	case FormatCSV:
		return a.WriteCSVs(ctx, path, opts...)
	}
	return fmt.Errorf("write %q: %w", f, ErrUnknownFormat)
}

// WriteH5AD stores a in a single h5ad-style file. String columns of obs
// and var whose values repeat are written as categoricals; a itself is not
// modified. The file appears atomically.
func (a *AnnData) WriteH5AD(ctx context.Context, path string, opts ...Option) (err error) {
	o := gatherOptions(opts)
	defer func(start time.Time) { o.metrics.Observe(metrics.OpWrite, string(FormatH5AD), start, err) }(time.Now())
	if err := a.Validate(); err != nil {
		return err
	}
	w, err := sqlite.Create(ctx, path, sqlite.WithFormat(string(FormatH5AD)), sqlite.WithCodec(o.codec))
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, w.Close()) }()
	if err := a.writeElements(ctx, w, FormatH5AD, o); err != nil {
		return err
	}
	if err := w.Commit(ctx); err != nil {
		return err
	}
	o.logger.Info("wrote h5ad file", zap.String("path", path), zap.Int("n_obs", a.NObs()), zap.Int("n_vars", a.NVars()))
	return nil
}

// WriteZarr stores a as a zarr hierarchy under prefix in store, replacing
// whatever the prefix held.
func (a *AnnData) WriteZarr(ctx context.Context, store blob.Store, prefix string, opts ...Option) (err error) {
	o := gatherOptions(opts)
	defer func(start time.Time) { o.metrics.Observe(metrics.OpWrite, string(FormatZarr), start, err) }(time.Now())
	if err := a.Validate(); err != nil {
		return err
	}
	w, err := zarr.NewWriter(ctx, store, prefix, zarr.WithCodec(o.codec))
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, w.Close()) }()
	if err := a.writeElements(ctx, w, FormatZarr, o); err != nil {
		return err
	}
	if err := w.Commit(ctx); err != nil {
		return err
	}
	o.logger.Info("wrote zarr store", zap.String("driver", string(store.Driver())), zap.String("prefix", prefix),
		zap.Int("n_obs", a.NObs()), zap.Int("n_vars", a.NVars()))
	return nil
}

// WriteLoom stores a as a loom file. Categoricals are written as labels.
func (a *AnnData) WriteLoom(ctx context.Context, path string, opts ...Option) (err error) {
	o := gatherOptions(opts)
	defer func(start time.Time) { o.metrics.Observe(metrics.OpWrite, string(FormatLoom), start, err) }(time.Now())
	if err := a.Validate(); err != nil {
		return err
	}
	err = loom.Write(ctx, path, loom.Contents{X: a.X, Obs: a.Obs, Var: a.Var, Uns: a.Uns},
		loom.WithCodec(o.codec), loom.WithLogger(o.logger))
	if err == nil {
		o.countElements(metrics.OpWrite, FormatLoom, a.X != nil)
	}
	return err
}

// WriteCSVs exports a into dir: obs.csv, var.csv and uns/. X.csv is only
// written with WithCSVMatrix.
func (a *AnnData) WriteCSVs(ctx context.Context, dir string, opts ...Option) (err error) {
	o := gatherOptions(opts)
	defer func(start time.Time) { o.metrics.Observe(metrics.OpWrite, string(FormatCSV), start, err) }(time.Now())
	if err := a.Validate(); err != nil {
		return err
	}
	copts := []csvdir.Option{csvdir.WithSeparator(o.separator), csvdir.WithLogger(o.logger)}
	if o.csvMatrix {
		copts = append(copts, csvdir.WithMatrix())
	}
	err = csvdir.WriteDir(ctx, dir, csvdir.Contents{X: a.X, Obs: a.Obs, Var: a.Var, Uns: a.Uns}, copts...)
	if err == nil {
		o.countElements(metrics.OpWrite, FormatCSV, o.csvMatrix && a.X != nil)
	}
	return err
}

// writeElements lays out the root group and writes X, obs, var and uns
// concurrently.
func (a *AnnData) writeElements(ctx context.Context, w container.Writer, f Format, o options) error {
	if err := w.CreateGroup(ctx, container.Root, elem.Encoding(elem.TypeAnnData, nil)); err != nil {
		return err
	}
	obs, vars := a.Obs, a.Var
	if obs == nil {
		obs = frame.Empty(a.NObs())
	}
	if vars == nil {
		vars = frame.Empty(a.NVars())
	}
	if o.infer {
		obs, vars = frame.InferCategoricals(obs), frame.InferCategoricals(vars)
	}
	eopts := o.elemOptions()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)
	run := func(name string, fn func(ctx context.Context) error) {
		g.Go(func() error {
			if err := fn(gctx); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			o.logger.Debug("wrote element", zap.String("format", string(f)), zap.String("element", name))
			o.metrics.Element(metrics.OpWrite, string(f), name)
			return nil
		})
	}
	if a.X != nil {
		run(ElemX, func(ctx context.Context) error { return elem.WriteMatrix(ctx, w, "/"+ElemX, a.X, eopts...) })
	}
	run(ElemObs, func(ctx context.Context) error { return elem.WriteFrame(ctx, w, "/"+ElemObs, obs, eopts...) })
	run(ElemVar, func(ctx context.Context) error { return elem.WriteFrame(ctx, w, "/"+ElemVar, vars, eopts...) })
	run(ElemUns, func(ctx context.Context) error { return elem.WriteMapping(ctx, w, "/"+ElemUns, a.Uns, eopts...) })
	return g.Wait()
}

func (o options) countElements(op string, f Format, withX bool) {
	if withX {
		o.metrics.Element(op, string(f), ElemX)
	}
	for _, e := range []string{ElemObs, ElemVar, ElemUns} {
		o.metrics.Element(op, string(f), e)
	}
}
