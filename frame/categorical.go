// SPDX-License-Identifier: MIT

// Package frame - categorical columns.
//
// A Categorical stores one int32 code per row pointing into an ordered list
// of distinct category labels. Code -1 marks a missing value.

package frame

import "fmt"

// MissingCode marks a row without a category.
const MissingCode int32 = -1

// Categorical is a finite category set with per-row codes.
type Categorical struct {
	name       string
	codes      []int32
	categories []string
	ordered    bool
}

// NewCategorical validates and copies codes and categories.
//
// Errors:
//   - ErrDuplicateCategory when categories repeat.
//   - ErrBadCode when a code is < -1 or >= len(categories).
func NewCategorical(name string, codes []int32, categories []string, ordered bool) (*Categorical, error) {
	seen := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		if _, dup := seen[c]; dup {
			return nil, fmt.Errorf("categorical %q: %q: %w", name, c, ErrDuplicateCategory)
		}
		seen[c] = struct{}{}
	}
	n := int32(len(categories))
	for i, code := range codes {
		if code < MissingCode || code >= n {
			return nil, fmt.Errorf("categorical %q: row %d code %d: %w", name, i, code, ErrBadCode)
		}
	}

	return &Categorical{
		name:       name,
		codes:      append([]int32(nil), codes...),
		categories: append([]string(nil), categories...),
		ordered:    ordered,
	}, nil
}

// CategoricalFromStrings label-encodes values; categories keep the order in
// which each distinct value is first encountered.
// Complexity: O(n).
func CategoricalFromStrings(name string, values []string) *Categorical {
	index := make(map[string]int32)
	cat := &Categorical{name: name, codes: make([]int32, len(values))}
	for i, v := range values {
		code, ok := index[v]
		if !ok {
			code = int32(len(cat.categories))
			index[v] = code
			cat.categories = append(cat.categories, v)
		}
		cat.codes[i] = code
	}

	return cat
}

func (c *Categorical) Name() string { return c.name }
func (c *Categorical) Len() int     { return len(c.codes) }
func (c *Categorical) DType() DType { return Category }

// Codes exposes the per-row codes. Treat as read-only.
func (c *Categorical) Codes() []int32 { return c.codes }

// Categories exposes the category labels in code order. Treat as read-only.
func (c *Categorical) Categories() []string { return c.categories }

// Ordered reports whether the categories carry a meaningful order.
func (c *Categorical) Ordered() bool { return c.ordered }

// Values decodes every row back to its label; missing rows become "".
func (c *Categorical) Values() []string {
	out := make([]string, len(c.codes))
	for i := range c.codes {
		out[i] = c.Format(i)
	}

	return out
}

func (c *Categorical) Format(i int) string {
	if code := c.codes[i]; code != MissingCode {
		return c.categories[code]
	}
	return ""
}

func (c *Categorical) Clone() Column { return c.Rename(c.name) }

func (c *Categorical) Rename(name string) Column {
	return &Categorical{
		name:       name,
		codes:      append([]int32(nil), c.codes...),
		categories: append([]string(nil), c.categories...),
		ordered:    c.ordered,
	}
}
