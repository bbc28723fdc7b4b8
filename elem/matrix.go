// SPDX-License-Identifier: MIT

package elem

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/katalvlaran/anndata/container"
	"github.com/katalvlaran/anndata/matrix"
)

// WriteMatrix stores m at p: *matrix.CSR as a csr_matrix group, anything
// else densified into a 2-d float64 array.
func WriteMatrix(ctx context.Context, w container.Writer, p string, m matrix.Matrix, opts ...Option) error {
	o := gatherOptions(opts)
	if err := matrix.ValidateNotNil(m); err != nil {
		return fmt.Errorf("write %s: %w", p, err)
	}
	shape := []int{m.Rows(), m.Cols()}
	if s, ok := m.(*matrix.CSR); ok {
		o.logger.Debug("write csr matrix", zap.String("path", p), zap.Ints("shape", shape), zap.Int("nnz", s.NNZ()))
		if err := w.CreateGroup(ctx, p, Encoding(TypeCSR, container.Attrs{AttrShape: shape})); err != nil {
			return err
		}
		if err := w.WriteArray(ctx, container.Join(p, "data"), container.Float64Array([]int{s.NNZ()}, s.Data()), nil); err != nil {
			return err
		}
		if err := w.WriteArray(ctx, container.Join(p, "indices"), container.Int64Array([]int{s.NNZ()}, toInt64s(s.Indices())), nil); err != nil {
			return err
		}
		return w.WriteArray(ctx, container.Join(p, "indptr"), container.Int64Array([]int{len(s.Indptr())}, toInt64s(s.Indptr())), nil)
	}
	d, err := matrix.ToDense(m)
	if err != nil {
		return fmt.Errorf("write %s: %w", p, err)
	}
	o.logger.Debug("write dense matrix", zap.String("path", p), zap.Ints("shape", shape))
	return w.WriteArray(ctx, p, container.Float64Array(shape, d.RawData()), Encoding(TypeArray, nil))
}

// ReadMatrix loads a dense array or a csr_matrix / csc_matrix group.
// Compressed-column input is returned as CSR.
func ReadMatrix(ctx context.Context, r container.Reader, p string) (matrix.Matrix, error) {
	kind, err := r.Kind(ctx, p)
	if err != nil {
		return nil, err
	}
	if kind == container.KindArray {
		a, err := r.ReadArray(ctx, p)
		if err != nil {
			return nil, err
		}
		d, err := denseFromArray(p, a)
		if err != nil {
			return nil, err
		}
		return d, nil
	}
	attrs, err := r.Attrs(ctx, p)
	if err != nil {
		return nil, err
	}
	typ, err := TypeOf(attrs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	if typ != TypeCSR && typ != TypeCSC {
		return nil, fmt.Errorf("%s: matrix group %q: %w", p, typ, ErrUnknownEncoding)
	}
	shape, err := attrs.Ints(AttrShape)
	if err != nil || len(shape) != 2 {
		return nil, fmt.Errorf("%s: shape attr %v: %w", p, shape, ErrUnknownEncoding)
	}
	data, err := readFloats(ctx, r, container.Join(p, "data"))
	if err != nil {
		return nil, err
	}
	indices, err := readInts(ctx, r, container.Join(p, "indices"))
	if err != nil {
		return nil, err
	}
	indptr, err := readInts(ctx, r, container.Join(p, "indptr"))
	if err != nil {
		return nil, err
	}
	if typ == TypeCSR {
		m, err := matrix.NewCSR(shape[0], shape[1], indptr, indices, data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		return m, nil
	}
	// a csc matrix is the csr layout of its transpose
	t, err := matrix.NewCSR(shape[1], shape[0], indptr, indices, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	return matrix.Transpose(t)
}

func denseFromArray(p string, a *container.Array) (*matrix.Dense, error) {
	if len(a.Shape) != 2 {
		return nil, fmt.Errorf("%s: %d-d array as matrix: %w", p, len(a.Shape), ErrUnknownEncoding)
	}
	vals, err := a.AsFloat64s()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	d, err := matrix.NewDenseFromData(a.Shape[0], a.Shape[1], vals)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	return d, nil
}

func readFloats(ctx context.Context, r container.Reader, p string) ([]float64, error) {
	a, err := r.ReadArray(ctx, p)
	if err != nil {
		return nil, err
	}
	return a.AsFloat64s()
}

func readInts(ctx context.Context, r container.Reader, p string) ([]int, error) {
	a, err := r.ReadArray(ctx, p)
	if err != nil {
		return nil, err
	}
	v, err := a.AsInt64s()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	out := make([]int, len(v))
	for i, x := range v {
		out[i] = int(x)
	}
	return out, nil
}

func toInt64s(v []int) []int64 {
	out := make([]int64, len(v))
	for i, x := range v {
		out[i] = int64(x)
	}
	return out
}
