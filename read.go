// SPDX-License-Identifier: MIT

package anndata

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
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
	"github.com/katalvlaran/anndata/matrix"
	"github.com/katalvlaran/anndata/metrics"
)

// Read loads path, choosing the format from its extension. A directory
// without a known extension is read as a CSV export.
func Read(ctx context.Context, path string, opts ...Option) (*AnnData, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	switch f {
	case FormatH5AD:
		return ReadH5AD(ctx, path, opts...)
	case FormatLoom:
		return ReadLoom(ctx, path, opts...)
	case FormatZarr:
		store, err := fs.New(filepath.Dir(path))
		if err != nil {
			return nil, err
		}
		a, err := ReadZarr(ctx, store, filepath.Base(path), opts...)
		if err != nil {
			return nil, err
		}
		a.Filename = path
		return a, nil
	}
	if st, err := os.Stat(path); err == nil && st.IsDir() {
		return ReadCSVs(ctx, path, opts...)
	}
	return ReadCSV(ctx, path, opts...)
}

// ReadH5AD loads a file written by WriteH5AD and sets Filename.
func ReadH5AD(ctx context.Context, path string, opts ...Option) (a *AnnData, err error) {
	o := gatherOptions(opts)
	defer func(start time.Time) { o.metrics.Observe(metrics.OpRead, string(FormatH5AD), start, err) }(time.Now())
	r, err := sqlite.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	if r.Format() != string(FormatH5AD) {
		return nil, fmt.Errorf("%s holds format %q: %w", path, r.Format(), container.ErrCorrupt)
	}
	if a, err = readElements(ctx, r, FormatH5AD, o); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	a.Filename = path
	o.logger.Info("read h5ad file", zap.String("path", path), zap.Int("n_obs", a.NObs()), zap.Int("n_vars", a.NVars()))
	return a, nil
}

// ReadZarr loads the zarr hierarchy under prefix in store.
func ReadZarr(ctx context.Context, store blob.Store, prefix string, opts ...Option) (a *AnnData, err error) {
	o := gatherOptions(opts)
	defer func(start time.Time) { o.metrics.Observe(metrics.OpRead, string(FormatZarr), start, err) }(time.Now())
	r, err := zarr.Open(ctx, store, prefix)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	if a, err = readElements(ctx, r, FormatZarr, o); err != nil {
		return nil, fmt.Errorf("read zarr %q: %w", prefix, err)
	}
	o.logger.Info("read zarr store", zap.String("driver", string(store.Driver())), zap.String("prefix", prefix),
		zap.Int("n_obs", a.NObs()), zap.Int("n_vars", a.NVars()))
	return a, nil
}

// ReadLoom loads a loom file and sets Filename. X is dense unless
// WithSparse is given, and nil when the file was written without one.
func ReadLoom(ctx context.Context, path string, opts ...Option) (a *AnnData, err error) {
	o := gatherOptions(opts)
	defer func(start time.Time) { o.metrics.Observe(metrics.OpRead, string(FormatLoom), start, err) }(time.Now())
	lopts := []loom.Option{loom.WithLogger(o.logger)}
	if o.sparse {
		lopts = append(lopts, loom.WithSparse())
	}
	if !o.infer {
		lopts = append(lopts, loom.WithoutCategoricalInference())
	}
	c, err := loom.Read(ctx, path, lopts...)
	if err != nil {
		return nil, err
	}
	if a, err = New(c.X, c.Obs, c.Var, c.Uns); err != nil {
		return nil, err
	}
	a.Filename = path
	o.countElements(metrics.OpRead, FormatLoom, c.X != nil)
	return a, nil
}

// ReadCSV loads a single matrix CSV: variable names in the header, one
// observation per line led by its name. A ".tsv" file defaults to tabs.
func ReadCSV(ctx context.Context, path string, opts ...Option) (a *AnnData, err error) {
	o := gatherOptions(opts)
	defer func(start time.Time) { o.metrics.Observe(metrics.OpRead, string(FormatCSV), start, err) }(time.Now())
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sep := o.separator
	if sep == DefaultSeparator && strings.EqualFold(filepath.Ext(path), ".tsv") {
		sep = '\t'
	}
	c, err := csvdir.ReadMatrixCSV(path, csvdir.WithSeparator(sep), csvdir.WithLogger(o.logger))
	if err != nil {
		return nil, err
	}
	x := c.X
	if o.sparse {
		if x, err = matrix.ToCSR(x); err != nil {
			return nil, err
		}
	}
	if a, err = New(x, c.Obs, c.Var, c.Uns); err != nil {
		return nil, err
	}
	a.Filename = path
	o.countElements(metrics.OpRead, FormatCSV, true)
	return a, nil
}

// ReadCSVs loads a directory written by WriteCSVs and sets Filename.
func ReadCSVs(ctx context.Context, dir string, opts ...Option) (a *AnnData, err error) {
	o := gatherOptions(opts)
	defer func(start time.Time) { o.metrics.Observe(metrics.OpRead, string(FormatCSV), start, err) }(time.Now())
	copts := []csvdir.Option{csvdir.WithSeparator(o.separator), csvdir.WithLogger(o.logger)}
	if !o.infer {
		copts = append(copts, csvdir.WithoutCategoricalInference())
	}
	c, err := csvdir.ReadDir(ctx, dir, copts...)
	if err != nil {
		return nil, err
	}
	x := c.X
	if x != nil && o.sparse {
		if x, err = matrix.ToCSR(x); err != nil {
			return nil, err
		}
	}
	obs, vars := c.Obs, c.Var
	if x != nil {
		// X.csv carries no labels
		if obs == nil {
			obs = frame.Empty(x.Rows())
		}
		if vars == nil {
			vars = frame.Empty(x.Cols())
		}
	}
	if a, err = New(x, obs, vars, c.Uns); err != nil {
		return nil, err
	}
	a.Filename = dir
	o.countElements(metrics.OpRead, FormatCSV, x != nil)
	return a, nil
}

// readElements checks the root encoding and reads X, obs, var and uns
// concurrently. X and uns are optional.
func readElements(ctx context.Context, r container.Reader, f Format, o options) (*AnnData, error) {
	attrs, err := r.Attrs(ctx, container.Root)
	if err != nil {
		return nil, err
	}
	if typ, err := elem.TypeOf(attrs); err != nil || typ != elem.TypeAnnData {
		return nil, fmt.Errorf("root is not an anndata group: %w", container.ErrCorrupt)
	}

	var (
		x    matrix.Matrix
		obs  *frame.Frame
		vars *frame.Frame
		uns  map[string]any
	)
	eopts := o.elemOptions()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)
	run := func(name string, optional bool, fn func(ctx context.Context) error) {
		g.Go(func() error {
			err := fn(gctx)
			if optional && errors.Is(err, container.ErrNotFound) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			o.logger.Debug("read element", zap.String("format", string(f)), zap.String("element", name))
			o.metrics.Element(metrics.OpRead, string(f), name)
			return nil
		})
	}
	run(ElemX, true, func(ctx context.Context) (err error) {
		x, err = elem.ReadMatrix(ctx, r, "/"+ElemX)
		return err
	})
	run(ElemObs, false, func(ctx context.Context) (err error) {
		obs, err = elem.ReadFrame(ctx, r, "/"+ElemObs, eopts...)
		return err
	})
	run(ElemVar, false, func(ctx context.Context) (err error) {
		vars, err = elem.ReadFrame(ctx, r, "/"+ElemVar, eopts...)
		return err
	})
	run(ElemUns, true, func(ctx context.Context) (err error) {
		uns, err = elem.ReadMapping(ctx, r, "/"+ElemUns, eopts...)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if x != nil && o.sparse {
		if x, err = matrix.ToCSR(x); err != nil {
			return nil, err
		}
	}
	return New(x, obs, vars, uns)
}
