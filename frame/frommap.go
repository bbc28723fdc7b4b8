// SPDX-License-Identifier: MIT

package frame

import (
	"fmt"
	"sort"
)

// FromMap builds a frame from name → slice pairs.
// Go maps carry no order, so columns are laid out in sorted key order.
// When indexKey names an entry it must be a []string and becomes the index
// (its key is kept as the index name); otherwise the default index is used.
//
// Errors:
//   - ErrUnsupportedType for values ColumnOf cannot convert.
//   - ErrLengthMismatch for slices of unequal length.
func FromMap(m map[string]any, indexKey string) (*Frame, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		if k != indexKey {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	cols := make([]Column, 0, len(keys))
	for _, k := range keys {
		c, err := ColumnOf(k, m[k])
		if err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}

	var index []string
	var indexName string
	if raw, ok := m[indexKey]; ok && indexKey != "" {
		labels, isStrings := raw.([]string)
		if !isStrings {
			return nil, fmt.Errorf("index %q is %T: %w", indexKey, raw, ErrUnsupportedType)
		}
		index, indexName = labels, indexKey
	} else {
		n := 0
		if len(cols) > 0 {
			n = cols[0].Len()
		}
		index = DefaultIndex(n)
	}

	f, err := New(index, cols...)
	if err != nil {
		return nil, err
	}
	f.indexName = indexName

	return f, nil
}

// ColumnOf converts a Go slice (or an existing Column) into a named Column.
// Narrow numeric types widen to Float64/Int64.
func ColumnOf(name string, v any) (Column, error) {
	switch vals := v.(type) {
	case Column:
		return vals.Rename(name), nil
	case []float64:
		return NewFloat64(name, vals), nil
	case []float32:
		out := make([]float64, len(vals))
		for i, x := range vals {
			out[i] = float64(x)
		}
		return NewFloat64(name, out), nil
	case []int64:
		return NewInt64(name, vals), nil
	case []int:
		out := make([]int64, len(vals))
		for i, x := range vals {
			out[i] = int64(x)
		}
		return NewInt64(name, out), nil
	case []int32:
		out := make([]int64, len(vals))
		for i, x := range vals {
			out[i] = int64(x)
		}
		return NewInt64(name, out), nil
	case []bool:
		return NewBool(name, vals), nil
	case []string:
		return NewString(name, vals), nil
	default:
		return nil, fmt.Errorf("column %q of %T: %w", name, v, ErrUnsupportedType)
	}
}
