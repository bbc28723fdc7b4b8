// SPDX-License-Identifier: MIT

package container

import (
	"encoding/json"
	"fmt"
)

// Attrs are JSON-serializable node attributes. Values read back from a
// backend arrive in their JSON-decoded form (float64, []any, map[string]any);
// the typed getters accept both that and the native Go types.
type Attrs map[string]any

// Clone returns a shallow copy; nil stays nil.
func (a Attrs) Clone() Attrs {
	if a == nil {
		return nil
	}
	out := make(Attrs, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Merge copies src over a, allocating when a is nil.
func (a Attrs) Merge(src Attrs) Attrs {
	if len(src) == 0 {
		return a
	}
	if a == nil {
		a = make(Attrs, len(src))
	}
	for k, v := range src {
		a[k] = v
	}
	return a
}

// Has reports whether key is set.
func (a Attrs) Has(key string) bool {
	_, ok := a[key]
	return ok
}

// String returns a string attribute.
func (a Attrs) String(key string) (string, error) {
	v, ok := a[key]
	if !ok {
		return "", fmt.Errorf("attr %q: %w", key, ErrNotFound)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("attr %q is %T, not string: %w", key, v, ErrCorrupt)
	}
	return s, nil
}

// Strings returns a list-of-strings attribute.
func (a Attrs) Strings(key string) ([]string, error) {
	v, ok := a[key]
	if !ok {
		return nil, fmt.Errorf("attr %q: %w", key, ErrNotFound)
	}
	switch x := v.(type) {
	case []string:
		return x, nil
	case []any:
		out := make([]string, len(x))
		for i, e := range x {
			s, ok := e.(string)
			if !ok {
				return nil, fmt.Errorf("attr %q[%d] is %T: %w", key, i, e, ErrCorrupt)
			}
			out[i] = s
		}
		return out, nil
	}
	return nil, fmt.Errorf("attr %q is %T, not []string: %w", key, v, ErrCorrupt)
}

// Ints returns a list-of-integers attribute (e.g. a shape).
func (a Attrs) Ints(key string) ([]int, error) {
	v, ok := a[key]
	if !ok {
		return nil, fmt.Errorf("attr %q: %w", key, ErrNotFound)
	}
	switch x := v.(type) {
	case []int:
		return x, nil
	case []int64:
		out := make([]int, len(x))
		for i, e := range x {
			out[i] = int(e)
		}
		return out, nil
	case []any:
		out := make([]int, len(x))
		for i, e := range x {
			n, err := toInt(e)
			if err != nil {
				return nil, fmt.Errorf("attr %q[%d]: %w", key, i, err)
			}
			out[i] = n
		}
		return out, nil
	}
	return nil, fmt.Errorf("attr %q is %T, not []int: %w", key, v, ErrCorrupt)
}

// Bool returns a boolean attribute.
func (a Attrs) Bool(key string) (bool, error) {
	v, ok := a[key]
	if !ok {
		return false, fmt.Errorf("attr %q: %w", key, ErrNotFound)
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("attr %q is %T, not bool: %w", key, v, ErrCorrupt)
	}
	return b, nil
}

// MarshalAttrs encodes attributes as a JSON object ("{}" for nil).
func MarshalAttrs(a Attrs) ([]byte, error) {
	if a == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(a)
}

// UnmarshalAttrs decodes a JSON object; empty input yields empty Attrs.
func UnmarshalAttrs(b []byte) (Attrs, error) {
	out := Attrs{}
	if len(b) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("attrs: %v: %w", err, ErrCorrupt)
	}
	return out, nil
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != float64(int(n)) {
			return 0, fmt.Errorf("non-integer %v: %w", n, ErrCorrupt)
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("%v: %w", err, ErrCorrupt)
		}
		return int(i), nil
	}
	return 0, fmt.Errorf("%T is not an integer: %w", v, ErrCorrupt)
}
