// SPDX-License-Identifier: MIT

package loom

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/katalvlaran/anndata/container"
	"github.com/katalvlaran/anndata/container/sqlite"
	"github.com/katalvlaran/anndata/frame"
	"github.com/katalvlaran/anndata/matrix"
)

// Read loads a loom file. X is transposed back to cells × genes and is
// dense unless WithSparse is given, and nil when Write had no matrix.
// Repeating string annotations become categoricals unless
// WithoutCategoricalInference is given.
func Read(ctx context.Context, path string, opts ...Option) (*Contents, error) {
	o := gatherOptions(opts)
	r, err := sqlite.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	if r.Format() != FormatName {
		return nil, fmt.Errorf("loom: %s holds format %q: %w", path, r.Format(), container.ErrCorrupt)
	}

	m, err := r.ReadArray(ctx, MatrixPath)
	if err != nil {
		return nil, err
	}
	if len(m.Shape) != 2 {
		return nil, fmt.Errorf("loom: matrix shape %v: %w", m.Shape, container.ErrCorrupt)
	}
	nVars, nObs := m.Shape[0], m.Shape[1]
	mattrs, err := r.Attrs(ctx, MatrixPath)
	if err != nil {
		return nil, err
	}
	out := &Contents{}
	if !mattrs.Has(attrNoData) {
		if out.X, err = readMatrix(m, nVars, nObs, o.sparse); err != nil {
			return nil, err
		}
	}
	if out.Obs, err = readAttrs(ctx, r, ColAttrsPath, nObs, o, ObsNames, CellID); err != nil {
		return nil, err
	}
	if out.Var, err = readAttrs(ctx, r, RowAttrsPath, nVars, o, VarNames, Gene); err != nil {
		return nil, err
	}
	if out.Uns, err = readGlobals(ctx, r); err != nil {
		return nil, err
	}
	o.logger.Debug("read loom file", zap.String("path", path), zap.Int("n_obs", nObs), zap.Int("n_vars", nVars))
	return out, nil
}

// readMatrix turns the genes × cells array into a cells × genes matrix.
func readMatrix(m *container.Array, nVars, nObs int, sparse bool) (matrix.Matrix, error) {
	vals, err := m.AsFloat64s()
	if err != nil {
		return nil, err
	}
	gc, err := matrix.NewDenseFromData(nVars, nObs, vals)
	if err != nil {
		return nil, err
	}
	x, err := matrix.Transpose(gc)
	if err != nil {
		return nil, err
	}
	if sparse {
		csr, err := matrix.ToCSR(x)
		if err != nil {
			return nil, err
		}
		return csr, nil
	}
	return x, nil
}

// readAttrs builds a frame from a row/col attribute group. The first of
// indexKeys present becomes the index.
func readAttrs(ctx context.Context, r container.Reader, p string, n int, o options, indexKeys ...string) (*frame.Frame, error) {
	names, err := r.Children(ctx, p)
	if err != nil {
		return nil, err
	}
	present := make(map[string]bool, len(names))
	for _, name := range names {
		present[name] = true
	}
	indexKey := ""
	for _, k := range indexKeys {
		if present[k] {
			indexKey = k
			break
		}
	}
	index := frame.DefaultIndex(n)
	var cols []frame.Column
	for _, name := range names {
		a, err := r.ReadArray(ctx, container.Join(p, name))
		if err != nil {
			return nil, err
		}
		if len(a.Shape) != 1 || a.Shape[0] != n {
			o.logger.Debug("skip loom attribute with foreign shape", zap.String("attr", name), zap.Ints("shape", a.Shape))
			continue
		}
		if name == indexKey {
			if a.DType != container.String {
				return nil, fmt.Errorf("loom: %s/%s is %s: %w", p, name, a.DType, container.ErrDType)
			}
			index = a.Strings
			continue
		}
		c, err := frame.ColumnOf(name, a.Values())
		if err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	f, err := frame.New(index, cols...)
	if err != nil {
		return nil, err
	}
	if o.infer {
		f = frame.InferCategoricals(f)
	}
	return f, nil
}

func readGlobals(ctx context.Context, r container.Reader) (map[string]any, error) {
	out := map[string]any{}
	keys, err := r.Children(ctx, AttrsPath)
	if err != nil {
		return nil, err
	}
	for _, k := range keys {
		p := container.Join(AttrsPath, k)
		a, err := r.ReadArray(ctx, p)
		if err != nil {
			return nil, err
		}
		attrs, err := r.Attrs(ctx, p)
		if err != nil {
			return nil, err
		}
		if attrs.Has(attrJSON) && a.DType == container.String && a.IsScalar() {
			var v any
			if err := json.Unmarshal([]byte(a.Strings[0]), &v); err != nil {
				return nil, fmt.Errorf("loom: attrs %q: %v: %w", k, err, container.ErrCorrupt)
			}
			if v = fromJSON(v); v != nil {
				out[k] = v
			}
			continue
		}
		if a.IsScalar() {
			out[k] = scalar(a)
			continue
		}
		out[k] = a.Values()
	}
	return out, nil
}

// fromJSON turns decoded JSON into values the element encoders accept:
// homogeneous lists become []string, []float64 or []bool, maps are walked
// and nulls dropped. Mixed lists become their elements' JSON text.
func fromJSON(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			if e = fromJSON(e); e != nil {
				out[k] = e
			}
		}
		return out
	case []any:
		return listFromJSON(x)
	}
	return v
}

func listFromJSON(x []any) any {
	strs := make([]string, 0, len(x))
	floats := make([]float64, 0, len(x))
	bools := make([]bool, 0, len(x))
	for _, e := range x {
		switch t := e.(type) {
		case string:
			strs = append(strs, t)
		case float64:
			floats = append(floats, t)
		case bool:
			bools = append(bools, t)
		}
	}
	switch len(x) {
	case len(floats):
		return floats
	case len(strs):
		return strs
	case len(bools):
		return bools
	}
	out := make([]string, len(x))
	for i, e := range x {
		b, _ := json.Marshal(e)
		out[i] = string(b)
	}
	return out
}

func scalar(a *container.Array) any {
	switch a.DType {
	case container.Float64:
		return a.Float64s[0]
	case container.Int64:
		return a.Int64s[0]
	case container.Int32:
		return int64(a.Int32s[0])
	case container.Bool:
		return a.Bools[0]
	}
	return a.Strings[0]
}
