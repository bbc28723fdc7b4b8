// SPDX-License-Identifier: MIT

package elem

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/katalvlaran/anndata/container"
	"github.com/katalvlaran/anndata/frame"
	"github.com/katalvlaran/anndata/matrix"
)

// WriteMapping stores m as a dict group at p, keys in sorted order.
func WriteMapping(ctx context.Context, w container.Writer, p string, m map[string]any, opts ...Option) error {
	o := gatherOptions(opts)
	if err := w.CreateGroup(ctx, p, Encoding(TypeDict, nil)); err != nil {
		return err
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := checkKey(k); err != nil {
			return fmt.Errorf("write %s: %w", p, err)
		}
		o.logger.Debug("write value", zap.String("mapping", p), zap.String("key", k))
		if err := WriteValue(ctx, w, container.Join(p, k), m[k], opts...); err != nil {
			return err
		}
	}
	return nil
}

// WriteValue stores one mapping value at p. Supported: strings, numbers and
// bools (scalars and slices), nested map[string]any, matrix.Matrix and
// *frame.Frame.
func WriteValue(ctx context.Context, w container.Writer, p string, v any, opts ...Option) error {
	switch x := v.(type) {
	case map[string]any:
		return WriteMapping(ctx, w, p, x, opts...)
	case matrix.Matrix:
		return WriteMatrix(ctx, w, p, x, opts...)
	case *frame.Frame:
		return WriteFrame(ctx, w, p, x, opts...)
	case string:
		return w.WriteArray(ctx, p, container.StringArray(nil, []string{x}), Encoding(TypeString, nil))
	case []string:
		return w.WriteArray(ctx, p, container.StringArray([]int{len(x)}, x), Encoding(TypeStringArray, nil))
	case int:
		x64 := int64(x)
		return w.WriteArray(ctx, p, container.Int64Array(nil, []int64{x64}), Encoding(TypeNumericScalar, nil))
	case []int:
		return w.WriteArray(ctx, p, container.Int64Array([]int{len(x)}, toInt64s(x)), Encoding(TypeArray, nil))
	case float32:
		v = float64(x)
	case []float32:
		f := make([]float64, len(x))
		for i, e := range x {
			f[i] = float64(e)
		}
		v = f
	}
	if a, err := container.Scalar(v); err == nil {
		return w.WriteArray(ctx, p, a, Encoding(TypeNumericScalar, nil))
	}
	if a, err := container.Vector(v); err == nil {
		return w.WriteArray(ctx, p, a, Encoding(TypeArray, nil))
	}
	return fmt.Errorf("write %s: %T: %w", p, v, ErrUnsupportedValue)
}

// ReadMapping loads a dict group written by WriteMapping.
func ReadMapping(ctx context.Context, r container.Reader, p string, opts ...Option) (map[string]any, error) {
	attrs, err := r.Attrs(ctx, p)
	if err != nil {
		return nil, err
	}
	typ, err := TypeOf(attrs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	// groups written without encoding attrs read as plain mappings
	if typ != TypeDict && typ != "" {
		return nil, fmt.Errorf("%s: %q as dict: %w", p, typ, ErrUnknownEncoding)
	}
	keys, err := r.Children(ctx, p)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(keys))
	for _, k := range keys {
		v, err := ReadValue(ctx, r, container.Join(p, k), opts...)
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

// ReadValue loads any element, dispatching on its encoding-type. Scalars
// come back as string, float64, int64 or bool; 1-d arrays as slices; 2-d
// arrays and sparse groups as matrix.Matrix.
func ReadValue(ctx context.Context, r container.Reader, p string, opts ...Option) (any, error) {
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
		switch typ {
		case TypeDict, "":
			return ReadMapping(ctx, r, p, opts...)
		case TypeCSR, TypeCSC:
			return ReadMatrix(ctx, r, p)
		case TypeDataFrame:
			return ReadFrame(ctx, r, p, opts...)
		}
		return nil, fmt.Errorf("%s: group %q: %w", p, typ, ErrUnknownEncoding)
	}
	a, err := r.ReadArray(ctx, p)
	if err != nil {
		return nil, err
	}
	switch typ {
	case TypeString, TypeNumericScalar:
		if !a.IsScalar() {
			return nil, fmt.Errorf("%s: %q with shape %v: %w", p, typ, a.Shape, ErrUnknownEncoding)
		}
		return scalarValue(a), nil
	case TypeStringArray:
		if a.DType != container.String {
			return nil, fmt.Errorf("%s: string-array of %s: %w", p, a.DType, ErrUnknownEncoding)
		}
		return a.Strings, nil
	case TypeArray, "":
		switch {
		case a.IsScalar():
			return scalarValue(a), nil
		case len(a.Shape) == 1:
			if a.DType == container.Int32 {
				v, _ := a.AsInt64s()
				return v, nil
			}
			return a.Values(), nil
		case len(a.Shape) == 2:
			return denseFromArray(p, a)
		}
		return nil, fmt.Errorf("%s: %d-d array: %w", p, len(a.Shape), ErrUnknownEncoding)
	}
	return nil, fmt.Errorf("%s: array %q: %w", p, typ, ErrUnknownEncoding)
}

func scalarValue(a *container.Array) any {
	switch a.DType {
	case container.Float64:
		return a.Float64s[0]
	case container.Int64:
		return a.Int64s[0]
	case container.Int32:
		return int64(a.Int32s[0])
	case container.Bool:
		return a.Bools[0]
	case container.String:
		return a.Strings[0]
	}
	return nil
}
