// SPDX-License-Identifier: MIT

// Package frame - typed columns.
//
// Purpose:
//   - Represent one annotation field per column with a concrete Go slice.
//   - Keep column kinds closed (Float64, Int64, Bool, String, Categorical)
//     so encoders can switch exhaustively.

package frame

import "fmt"

// DType names the storage kind of a column.
type DType string

const (
	Float64  DType = "float64"
	Int64    DType = "int64"
	Bool     DType = "bool"
	String   DType = "string"
	Category DType = "category"
)

// Column is one named, typed sequence aligned with a frame index.
type Column interface {
	// Name returns the column name.
	Name() string
	// Len returns the number of values.
	Len() int
	// DType returns the storage kind.
	DType() DType
	// Rename returns a copy of the column under a new name.
	Rename(name string) Column
	// Clone returns a deep copy.
	Clone() Column
	// Format renders value i as text (used by CSV export and debugging).
	Format(i int) string
}

// Float64Column holds floating point values; NaN marks missing entries.
type Float64Column struct {
	name   string
	values []float64
}

// NewFloat64 copies values into a new column.
func NewFloat64(name string, values []float64) *Float64Column {
	return &Float64Column{name: name, values: append([]float64(nil), values...)}
}

func (c *Float64Column) Name() string              { return c.name }
func (c *Float64Column) Len() int                  { return len(c.values) }
func (c *Float64Column) DType() DType              { return Float64 }
func (c *Float64Column) Values() []float64         { return c.values }
func (c *Float64Column) Clone() Column             { return NewFloat64(c.name, c.values) }
func (c *Float64Column) Rename(name string) Column { return NewFloat64(name, c.values) }
func (c *Float64Column) Format(i int) string       { return formatFloat(c.values[i]) }

// Int64Column holds integer values.
type Int64Column struct {
	name   string
	values []int64
}

// NewInt64 copies values into a new column.
func NewInt64(name string, values []int64) *Int64Column {
	return &Int64Column{name: name, values: append([]int64(nil), values...)}
}

func (c *Int64Column) Name() string              { return c.name }
func (c *Int64Column) Len() int                  { return len(c.values) }
func (c *Int64Column) DType() DType              { return Int64 }
func (c *Int64Column) Values() []int64           { return c.values }
func (c *Int64Column) Clone() Column             { return NewInt64(c.name, c.values) }
func (c *Int64Column) Rename(name string) Column { return NewInt64(name, c.values) }
func (c *Int64Column) Format(i int) string       { return fmt.Sprintf("%d", c.values[i]) }

// BoolColumn holds boolean flags.
type BoolColumn struct {
	name   string
	values []bool
}

// NewBool copies values into a new column.
func NewBool(name string, values []bool) *BoolColumn {
	return &BoolColumn{name: name, values: append([]bool(nil), values...)}
}

func (c *BoolColumn) Name() string              { return c.name }
func (c *BoolColumn) Len() int                  { return len(c.values) }
func (c *BoolColumn) DType() DType              { return Bool }
func (c *BoolColumn) Values() []bool            { return c.values }
func (c *BoolColumn) Clone() Column             { return NewBool(c.name, c.values) }
func (c *BoolColumn) Rename(name string) Column { return NewBool(name, c.values) }
func (c *BoolColumn) Format(i int) string {
	if c.values[i] {
		return "True"
	}
	return "False"
}

// StringColumn holds free text.
type StringColumn struct {
	name   string
	values []string
}

// NewString copies values into a new column.
func NewString(name string, values []string) *StringColumn {
	return &StringColumn{name: name, values: append([]string(nil), values...)}
}

func (c *StringColumn) Name() string              { return c.name }
func (c *StringColumn) Len() int                  { return len(c.values) }
func (c *StringColumn) DType() DType              { return String }
func (c *StringColumn) Values() []string          { return c.values }
func (c *StringColumn) Clone() Column             { return NewString(c.name, c.values) }
func (c *StringColumn) Rename(name string) Column { return NewString(name, c.values) }
func (c *StringColumn) Format(i int) string       { return c.values[i] }

// IsString reports whether col stores plain (non-categorical) text.
func IsString(col Column) bool {
	_, ok := col.(*StringColumn)
	return ok
}

// IsCategorical reports whether col is a finite category set.
func IsCategorical(col Column) bool {
	_, ok := col.(*Categorical)
	return ok
}
