// SPDX-License-Identifier: MIT

// Package frame - ordered annotation tables.
//
// Purpose:
//   - Hold per-row (or per-column) metadata of an annotated matrix as an
//     ordered set of typed columns sharing one string index.
//   - Preserve both index order and column order exactly; encoders rely on it.
//
// Complexity quicksheet:
//   - New: O(cols); Column lookup: O(1); SetColumn: O(1) amortized; Clone: O(cells).

package frame

import (
	"fmt"
	"strconv"
)

// Frame is an ordered collection of equally long columns plus a row index.
// Duplicate index labels are allowed; duplicate column names are not.
type Frame struct {
	indexName string
	index     []string
	cols      []Column
	pos       map[string]int
}

// New builds a frame over a copy of index.
// MAIN DESCRIPTION:
//   - Validates every column length against len(index) and rejects
//     duplicate column names.
//
// Errors:
//   - ErrLengthMismatch, ErrDuplicateColumn.
func New(index []string, cols ...Column) (*Frame, error) {
	f := &Frame{
		index: append([]string(nil), index...),
		pos:   make(map[string]int, len(cols)),
	}
	for _, c := range cols {
		if f.Has(c.Name()) {
			return nil, fmt.Errorf("column %q: %w", c.Name(), ErrDuplicateColumn)
		}
		if err := f.SetColumn(c); err != nil {
			return nil, err
		}
	}

	return f, nil
}

// Empty returns a frame with a default index of n rows and no columns.
func Empty(n int) *Frame {
	return &Frame{index: DefaultIndex(n), pos: map[string]int{}}
}

// DefaultIndex returns the labels "0".."n-1", the index a table gets when
// none is supplied.
func DefaultIndex(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = strconv.Itoa(i)
	}

	return out
}

// Len returns the number of rows.
func (f *Frame) Len() int { return len(f.index) }

// Index exposes the row labels. Treat as read-only.
func (f *Frame) Index() []string { return f.index }

// IndexName returns the name of the index ("" when unnamed).
func (f *Frame) IndexName() string { return f.indexName }

// SetIndexName names the index.
func (f *Frame) SetIndexName(name string) { f.indexName = name }

// SetIndex replaces the row labels; the length must not change.
func (f *Frame) SetIndex(index []string) error {
	if len(index) != len(f.index) {
		return fmt.Errorf("index of %d labels for %d rows: %w", len(index), len(f.index), ErrLengthMismatch)
	}
	f.index = append([]string(nil), index...)

	return nil
}

// Columns returns the columns in order. The slice is a copy; columns are shared.
func (f *Frame) Columns() []Column { return append([]Column(nil), f.cols...) }

// Names returns column names in order.
func (f *Frame) Names() []string {
	out := make([]string, len(f.cols))
	for i, c := range f.cols {
		out[i] = c.Name()
	}

	return out
}

// Column returns the named column or ErrColumnNotFound.
func (f *Frame) Column(name string) (Column, error) {
	i, ok := f.pos[name]
	if !ok {
		return nil, fmt.Errorf("column %q: %w", name, ErrColumnNotFound)
	}

	return f.cols[i], nil
}

// Has reports whether a column exists.
func (f *Frame) Has(name string) bool {
	_, ok := f.pos[name]
	return ok
}

// SetColumn replaces the column with the same name in place, or appends it.
// Returns ErrLengthMismatch when the column does not fit the index.
func (f *Frame) SetColumn(c Column) error {
	if c.Len() != len(f.index) {
		return fmt.Errorf("column %q has %d values for %d rows: %w", c.Name(), c.Len(), len(f.index), ErrLengthMismatch)
	}
	if i, ok := f.pos[c.Name()]; ok {
		f.cols[i] = c
		return nil
	}
	f.pos[c.Name()] = len(f.cols)
	f.cols = append(f.cols, c)

	return nil
}

// Drop removes a column, keeping the order of the rest.
func (f *Frame) Drop(name string) error {
	i, ok := f.pos[name]
	if !ok {
		return fmt.Errorf("drop %q: %w", name, ErrColumnNotFound)
	}
	f.cols = append(f.cols[:i], f.cols[i+1:]...)
	delete(f.pos, name)
	for j := i; j < len(f.cols); j++ {
		f.pos[f.cols[j].Name()] = j
	}

	return nil
}

// Clone returns a deep copy.
func (f *Frame) Clone() *Frame {
	out := &Frame{
		indexName: f.indexName,
		index:     append([]string(nil), f.index...),
		cols:      make([]Column, len(f.cols)),
		pos:       make(map[string]int, len(f.cols)),
	}
	for i, c := range f.cols {
		out.cols[i] = c.Clone()
		out.pos[c.Name()] = i
	}

	return out
}
