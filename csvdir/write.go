// SPDX-License-Identifier: MIT

package csvdir

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/katalvlaran/anndata/frame"
	"github.com/katalvlaran/anndata/matrix"
)

// WriteDir exports c into dir, creating it if needed. X.csv is written only
// with WithMatrix.
func WriteDir(ctx context.Context, dir string, c Contents, opts ...Option) error {
	o := gatherOptions(opts)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if c.Obs != nil {
		if err := writeFrame(filepath.Join(dir, ObsFile), c.Obs, o.sep); err != nil {
			return err
		}
	}
	if c.Var != nil {
		if err := writeFrame(filepath.Join(dir, VarFile), c.Var, o.sep); err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(c.Uns) > 0 {
		if err := writeMapping(ctx, filepath.Join(dir, UnsDir), c.Uns, o); err != nil {
			return err
		}
	}
	if o.withMatrix && c.X != nil {
		if err := writeMatrix(filepath.Join(dir, XFile), c.X, o.sep); err != nil {
			return err
		}
	}
	o.logger.Info("wrote csv directory", zap.String("dir", dir), zap.Bool("with_matrix", o.withMatrix && c.X != nil))
	return nil
}

// writeTable writes records to path through a csv.Writer.
func writeTable(path string, sep rune, fill func(w *csv.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { err = errors.Join(err, f.Close()) }()
	w := csv.NewWriter(f)
	w.Comma = sep
	if err := fill(w); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func writeFrame(path string, f *frame.Frame, sep rune) error {
	return writeTable(path, sep, func(w *csv.Writer) error {
		cols := f.Columns()
		corner := f.IndexName()
		if corner == "" && len(cols) == 0 {
			corner = blankIndexHeader // a lone empty field would be a blank line
		}
		header := append([]string{corner}, f.Names()...)
		if err := w.Write(header); err != nil {
			return err
		}
		rec := make([]string, len(cols)+1)
		for i, label := range f.Index() {
			rec[0] = label
			for j, c := range cols {
				rec[j+1] = c.Format(i)
			}
			if err := w.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeMatrix(path string, m matrix.Matrix, sep rune) error {
	d, err := matrix.ToDense(m)
	if err != nil {
		return err
	}
	return writeTable(path, sep, func(w *csv.Writer) error {
		for i := 0; i < d.Rows(); i++ {
			row, err := d.Row(i)
			if err != nil {
				return err
			}
			if err := w.Write(formatFloats(row)); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeMapping(ctx context.Context, dir string, m map[string]any, o options) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := ctx.Err(); err != nil {
			return err
		}
		if k == "" || strings.ContainsAny(k, `/\`) {
			return fmt.Errorf("uns key %q: %w", k, frame.ErrUnsupportedType)
		}
		if err := writeValue(ctx, dir, k, m[k], o); err != nil {
			return err
		}
	}
	return nil
}

// writeValue stores one uns entry: scalars as one line, slices one value
// per line, matrices row by row, frames like obs.csv.
func writeValue(ctx context.Context, dir, key string, v any, o options) error {
	path := filepath.Join(dir, key+".csv")
	lines := func(vals []string) error {
		return writeTable(path, o.sep, func(w *csv.Writer) error {
			for _, s := range vals {
				if err := w.Write([]string{s}); err != nil {
					return err
				}
			}
			return nil
		})
	}
	switch x := v.(type) {
	case map[string]any:
		return writeMapping(ctx, filepath.Join(dir, key), x, o)
	case matrix.Matrix:
		return writeMatrix(path, x, o.sep)
	case *frame.Frame:
		return writeFrame(path, x, o.sep)
	case string:
		return lines([]string{x})
	case []string:
		return lines(x)
	case float64:
		return lines(formatFloats([]float64{x}))
	case []float64:
		return lines(formatFloats(x))
	case int, int32, int64:
		return lines([]string{fmt.Sprint(x)})
	case bool:
		if x {
			return lines([]string{"True"})
		}
		return lines([]string{"False"})
	case []int, []int32, []int64, []bool:
		col, err := frame.ColumnOf(key, x)
		if err != nil {
			return err
		}
		out := make([]string, col.Len())
		for i := range out {
			out[i] = col.Format(i)
		}
		return lines(out)
	}
	o.logger.Warn("uns value not exportable to csv, skipped", zap.String("key", key), zap.String("type", fmt.Sprintf("%T", v)))
	return nil
}

func formatFloats(v []float64) []string {
	out := make([]string, len(v))
	for i, x := range v {
		out[i] = strconv.FormatFloat(x, 'g', -1, 64)
	}
	return out
}
