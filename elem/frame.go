// SPDX-License-Identifier: MIT

package elem

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/anndata/container"
	"github.com/katalvlaran/anndata/frame"
)

// WriteFrame stores f as a dataframe group at p. Columns are written
// concurrently, at most WithConcurrency at a time.
func WriteFrame(ctx context.Context, w container.Writer, p string, f *frame.Frame, opts ...Option) error {
	o := gatherOptions(opts)
	if f == nil {
		return fmt.Errorf("write %s: %w", p, frame.ErrNilFrame)
	}
	names := f.Names()
	for _, n := range names {
		if err := checkKey(n); err != nil {
			return fmt.Errorf("write %s: %w", p, err)
		}
	}
	if f.Has(DefaultIndexKey) {
		return fmt.Errorf("write %s: column named %q: %w", p, DefaultIndexKey, ErrUnsupportedValue)
	}
	indexKey := f.IndexName()
	if indexKey == "" || f.Has(indexKey) || checkKey(indexKey) != nil {
		indexKey = DefaultIndexKey
	}
	attrs := Encoding(TypeDataFrame, container.Attrs{AttrIndex: indexKey, AttrOrder: names})
	if err := w.CreateGroup(ctx, p, attrs); err != nil {
		return err
	}
	index := container.StringArray([]int{f.Len()}, f.Index())
	if err := w.WriteArray(ctx, container.Join(p, indexKey), index, Encoding(TypeStringArray, nil)); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)
	for _, c := range f.Columns() {
		c := c
		g.Go(func() error {
			o.logger.Debug("write column", zap.String("frame", p), zap.String("column", c.Name()), zap.String("dtype", string(c.DType())))
			return writeColumn(gctx, w, container.Join(p, c.Name()), c)
		})
	}
	return g.Wait()
}

func writeColumn(ctx context.Context, w container.Writer, p string, c frame.Column) error {
	n := []int{c.Len()}
	switch col := c.(type) {
	case *frame.Float64Column:
		return w.WriteArray(ctx, p, container.Float64Array(n, col.Values()), Encoding(TypeArray, nil))
	case *frame.Int64Column:
		return w.WriteArray(ctx, p, container.Int64Array(n, col.Values()), Encoding(TypeArray, nil))
	case *frame.BoolColumn:
		return w.WriteArray(ctx, p, container.BoolArray(n, col.Values()), Encoding(TypeArray, nil))
	case *frame.StringColumn:
		return w.WriteArray(ctx, p, container.StringArray(n, col.Values()), Encoding(TypeStringArray, nil))
	case *frame.Categorical:
		if err := w.CreateGroup(ctx, p, Encoding(TypeCategorical, container.Attrs{AttrOrdered: col.Ordered()})); err != nil {
			return err
		}
		cats := col.Categories()
		if err := w.WriteArray(ctx, container.Join(p, "categories"), container.StringArray([]int{len(cats)}, cats), Encoding(TypeStringArray, nil)); err != nil {
			return err
		}
		return w.WriteArray(ctx, container.Join(p, "codes"), container.Int32Array(n, col.Codes()), Encoding(TypeArray, nil))
	}
	return fmt.Errorf("column %s of %T: %w", p, c, frame.ErrUnsupportedType)
}

// ReadFrame loads a dataframe group. Columns follow the column-order
// attribute; the index name is restored unless it is the default key.
func ReadFrame(ctx context.Context, r container.Reader, p string, opts ...Option) (*frame.Frame, error) {
	o := gatherOptions(opts)
	attrs, err := r.Attrs(ctx, p)
	if err != nil {
		return nil, err
	}
	typ, err := TypeOf(attrs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	if typ != TypeDataFrame {
		return nil, fmt.Errorf("%s: %q as dataframe: %w", p, typ, ErrUnknownEncoding)
	}
	indexKey, err := attrs.String(AttrIndex)
	if err != nil {
		return nil, fmt.Errorf("%s: %v: %w", p, err, ErrUnknownEncoding)
	}
	var order []string
	if attrs.Has(AttrOrder) {
		if order, err = attrs.Strings(AttrOrder); err != nil {
			return nil, fmt.Errorf("%s: %v: %w", p, err, ErrUnknownEncoding)
		}
	}
	ia, err := r.ReadArray(ctx, container.Join(p, indexKey))
	if err != nil {
		return nil, err
	}
	index, err := labels(ia)
	if err != nil {
		return nil, fmt.Errorf("%s index: %w", p, err)
	}
	cols := make([]frame.Column, 0, len(order))
	for _, name := range order {
		c, err := readColumn(ctx, r, container.Join(p, name), name)
		if err != nil {
			return nil, err
		}
		o.logger.Debug("read column", zap.String("frame", p), zap.String("column", name), zap.String("dtype", string(c.DType())))
		cols = append(cols, c)
	}
	f, err := frame.New(index, cols...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	if indexKey != DefaultIndexKey {
		f.SetIndexName(indexKey)
	}
	return f, nil
}

func readColumn(ctx context.Context, r container.Reader, p, name string) (frame.Column, error) {
	kind, err := r.Kind(ctx, p)
	if err != nil {
		return nil, err
	}
	attrs, err := r.Attrs(ctx, p)
	if err != nil {
		return nil, err
	}
	typ, err := TypeOf(attrs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	if kind == container.KindGroup {
		if typ != TypeCategorical {
			return nil, fmt.Errorf("%s: column group %q: %w", p, typ, ErrUnknownEncoding)
		}
		return readCategorical(ctx, r, p, name, attrs)
	}
	a, err := r.ReadArray(ctx, p)
	if err != nil {
		return nil, err
	}
	if len(a.Shape) != 1 {
		return nil, fmt.Errorf("%s: %d-d column: %w", p, len(a.Shape), ErrUnknownEncoding)
	}
	switch a.DType {
	case container.Float64:
		return frame.NewFloat64(name, a.Float64s), nil
	case container.Int64, container.Int32:
		v, _ := a.AsInt64s()
		return frame.NewInt64(name, v), nil
	case container.Bool:
		return frame.NewBool(name, a.Bools), nil
	case container.String:
		return frame.NewString(name, a.Strings), nil
	}
	return nil, fmt.Errorf("%s: dtype %s: %w", p, a.DType, ErrUnknownEncoding)
}

func readCategorical(ctx context.Context, r container.Reader, p, name string, attrs container.Attrs) (frame.Column, error) {
	ordered := false
	if attrs.Has(AttrOrdered) {
		var err error
		if ordered, err = attrs.Bool(AttrOrdered); err != nil {
			return nil, fmt.Errorf("%s: %v: %w", p, err, ErrUnknownEncoding)
		}
	}
	ca, err := r.ReadArray(ctx, container.Join(p, "categories"))
	if err != nil {
		return nil, err
	}
	cats, err := labels(ca)
	if err != nil {
		return nil, fmt.Errorf("%s categories: %w", p, err)
	}
	codes, err := r.ReadArray(ctx, container.Join(p, "codes"))
	if err != nil {
		return nil, err
	}
	c64, err := codes.AsInt64s()
	if err != nil {
		return nil, fmt.Errorf("%s codes: %w", p, err)
	}
	c32 := make([]int32, len(c64))
	for i, v := range c64 {
		c32[i] = int32(v)
	}
	col, err := frame.NewCategorical(name, c32, cats, ordered)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	return col, nil
}

// labels turns a 1-d array into strings; numeric labels are formatted.
func labels(a *container.Array) ([]string, error) {
	if len(a.Shape) != 1 {
		return nil, fmt.Errorf("%d-d labels: %w", len(a.Shape), ErrUnknownEncoding)
	}
	switch a.DType {
	case container.String:
		return a.Strings, nil
	case container.Int64, container.Int32:
		v, _ := a.AsInt64s()
		out := make([]string, len(v))
		for i, x := range v {
			out[i] = strconv.FormatInt(x, 10)
		}
		return out, nil
	case container.Float64:
		out := make([]string, len(a.Float64s))
		for i, x := range a.Float64s {
			out[i] = strconv.FormatFloat(x, 'g', -1, 64)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%s labels: %w", a.DType, ErrUnknownEncoding)
}
