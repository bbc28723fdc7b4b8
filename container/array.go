// SPDX-License-Identifier: MIT

package container

import "fmt"

// DType is the element type of an Array.
type DType string

const (
	Float64 DType = "float64"
	Int64   DType = "int64"
	Int32   DType = "int32"
	Bool    DType = "bool"
	String  DType = "string"
)

// ParseDType validates a stored dtype name.
func ParseDType(s string) (DType, error) {
	switch d := DType(s); d {
	case Float64, Int64, Int32, Bool, String:
		return d, nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrDType)
}

// Array is a dense N-d array in row-major order. Exactly one of the value
// slices is populated, selected by DType. An empty Shape is a scalar.
type Array struct {
	DType    DType
	Shape    []int
	Float64s []float64
	Int64s   []int64
	Int32s   []int32
	Bools    []bool
	Strings  []string
}

func Float64Array(shape []int, v []float64) *Array {
	return &Array{DType: Float64, Shape: cloneShape(shape), Float64s: v}
}

func Int64Array(shape []int, v []int64) *Array {
	return &Array{DType: Int64, Shape: cloneShape(shape), Int64s: v}
}

func Int32Array(shape []int, v []int32) *Array {
	return &Array{DType: Int32, Shape: cloneShape(shape), Int32s: v}
}

func BoolArray(shape []int, v []bool) *Array {
	return &Array{DType: Bool, Shape: cloneShape(shape), Bools: v}
}

func StringArray(shape []int, v []string) *Array {
	return &Array{DType: String, Shape: cloneShape(shape), Strings: v}
}

// Vector wraps a 1-d slice. Supported element types mirror DType.
func Vector(v any) (*Array, error) {
	switch x := v.(type) {
	case []float64:
		return Float64Array([]int{len(x)}, x), nil
	case []int64:
		return Int64Array([]int{len(x)}, x), nil
	case []int32:
		return Int32Array([]int{len(x)}, x), nil
	case []bool:
		return BoolArray([]int{len(x)}, x), nil
	case []string:
		return StringArray([]int{len(x)}, x), nil
	}
	return nil, fmt.Errorf("vector of %T: %w", v, ErrDType)
}

// Scalar wraps a single value as a 0-d array.
func Scalar(v any) (*Array, error) {
	switch x := v.(type) {
	case float64:
		return Float64Array(nil, []float64{x}), nil
	case int64:
		return Int64Array(nil, []int64{x}), nil
	case int:
		return Int64Array(nil, []int64{int64(x)}), nil
	case int32:
		return Int32Array(nil, []int32{x}), nil
	case bool:
		return BoolArray(nil, []bool{x}), nil
	case string:
		return StringArray(nil, []string{x}), nil
	}
	return nil, fmt.Errorf("scalar of %T: %w", v, ErrDType)
}

// Size is the number of elements implied by Shape (1 for scalars).
func (a *Array) Size() int {
	n := 1
	for _, d := range a.Shape {
		n *= d
	}
	return n
}

// IsScalar reports a 0-d array.
func (a *Array) IsScalar() bool { return len(a.Shape) == 0 }

// Len is the number of values held in the populated slice.
func (a *Array) Len() int {
	switch a.DType {
	case Float64:
		return len(a.Float64s)
	case Int64:
		return len(a.Int64s)
	case Int32:
		return len(a.Int32s)
	case Bool:
		return len(a.Bools)
	case String:
		return len(a.Strings)
	}
	return 0
}

// Validate checks the dtype and that the value count matches the shape.
func (a *Array) Validate() error {
	if a == nil {
		return fmt.Errorf("nil array: %w", ErrCorrupt)
	}
	if _, err := ParseDType(string(a.DType)); err != nil {
		return err
	}
	for _, d := range a.Shape {
		if d < 0 {
			return fmt.Errorf("negative dimension in %v: %w", a.Shape, ErrCorrupt)
		}
	}
	if a.Len() != a.Size() {
		return fmt.Errorf("%s array has %d values for shape %v: %w", a.DType, a.Len(), a.Shape, ErrCorrupt)
	}
	return nil
}

// Values returns the populated slice as an interface value.
func (a *Array) Values() any {
	switch a.DType {
	case Float64:
		return a.Float64s
	case Int64:
		return a.Int64s
	case Int32:
		return a.Int32s
	case Bool:
		return a.Bools
	case String:
		return a.Strings
	}
	return nil
}

// AsFloat64s converts any numeric or bool array to float64 values.
func (a *Array) AsFloat64s() ([]float64, error) {
	switch a.DType {
	case Float64:
		return a.Float64s, nil
	case Int64:
		out := make([]float64, len(a.Int64s))
		for i, v := range a.Int64s {
			out[i] = float64(v)
		}
		return out, nil
	case Int32:
		out := make([]float64, len(a.Int32s))
		for i, v := range a.Int32s {
			out[i] = float64(v)
		}
		return out, nil
	case Bool:
		out := make([]float64, len(a.Bools))
		for i, v := range a.Bools {
			if v {
				out[i] = 1
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("%s as float64: %w", a.DType, ErrDType)
}

// AsInt64s converts integer arrays to int64 values.
func (a *Array) AsInt64s() ([]int64, error) {
	switch a.DType {
	case Int64:
		return a.Int64s, nil
	case Int32:
		out := make([]int64, len(a.Int32s))
		for i, v := range a.Int32s {
			out[i] = int64(v)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%s as int64: %w", a.DType, ErrDType)
}

func cloneShape(s []int) []int {
	if len(s) == 0 {
		return nil
	}
	return append([]int(nil), s...)
}
