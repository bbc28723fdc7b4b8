// SPDX-License-Identifier: MIT

package container

import (
	"path"
	"strings"
)

// Root is the path of the top-level group.
const Root = "/"

// Kind tells groups and arrays apart.
type Kind string

const (
	KindGroup Kind = "group"
	KindArray Kind = "array"
)

// Clean normalizes p to an absolute slash path ("" and "." become Root).
func Clean(p string) string {
	return path.Clean("/" + strings.TrimPrefix(p, "/"))
}

// Join joins elements onto a base path.
func Join(base string, elem ...string) string {
	return Clean(path.Join(append([]string{Clean(base)}, elem...)...))
}

// Split returns the parent path and the last element. Split(Root) is (Root, "").
func Split(p string) (parent, name string) {
	p = Clean(p)
	if p == Root {
		return Root, ""
	}
	dir, name := path.Split(p)
	return Clean(dir), name
}

// Ancestors lists the groups above p from the root down, excluding p itself.
func Ancestors(p string) []string {
	p = Clean(p)
	if p == Root {
		return nil
	}
	parts := strings.Split(strings.TrimPrefix(p, "/"), "/")
	out := make([]string, 0, len(parts))
	cur := Root
	out = append(out, cur)
	for _, part := range parts[:len(parts)-1] {
		cur = Join(cur, part)
		out = append(out, cur)
	}
	return out
}
