// SPDX-License-Identifier: MIT

package frame

// ShouldBeCategorical reports whether values repeat: fewer distinct values
// than rows. Columns of unique labels stay free text.
func ShouldBeCategorical(values []string) bool {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
		if len(seen) == len(values) {
			return false
		}
	}

	return len(seen) < len(values)
}

// InferCategoricals returns a copy of f in which every StringColumn that
// passes ShouldBeCategorical is replaced by a Categorical whose categories
// follow first-encounter order. Other columns are cloned unchanged and f is
// not modified.
func InferCategoricals(f *Frame) *Frame {
	if f == nil {
		return nil
	}
	out := f.Clone()
	for i, c := range out.cols {
		s, ok := c.(*StringColumn)
		if !ok || !ShouldBeCategorical(s.values) {
			continue
		}
		out.cols[i] = CategoricalFromStrings(s.name, s.values)
	}

	return out
}
