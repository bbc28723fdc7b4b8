// SPDX-License-Identifier: MIT

package container

import (
	"fmt"
	"sync"
)

// Node is a path reserved in a Registry with its creation sequence number.
type Node struct {
	Path string
	Kind Kind
	Seq  int64
}

// Registry tracks the nodes of a tree being written so concurrent writers
// agree on kinds and creation order before touching the backend.
type Registry struct {
	mu    sync.Mutex
	nodes map[string]Node
	next  int64
}

// NewRegistry returns a registry holding only the root group.
func NewRegistry() *Registry {
	return &Registry{nodes: map[string]Node{Root: {Path: Root, Kind: KindGroup}}, next: 1}
}

// Claim reserves p with kind k. It returns the groups that had to be
// created above p (root first) and the node for p. For groups, claiming an
// existing group is allowed and reported through existed.
func (r *Registry) Claim(p string, k Kind) (parents []Node, node Node, existed bool, err error) {
	p = Clean(p)
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, anc := range Ancestors(p) {
		n, ok := r.nodes[anc]
		if ok {
			if n.Kind != KindGroup {
				return nil, Node{}, false, fmt.Errorf("parent %s of %s is an array: %w", anc, p, ErrKind)
			}
			continue
		}
		n = r.add(anc, KindGroup)
		parents = append(parents, n)
	}
	if n, ok := r.nodes[p]; ok {
		switch {
		case n.Kind != k:
			return nil, Node{}, false, fmt.Errorf("%s is a %s: %w", p, n.Kind, ErrKind)
		case k == KindArray:
			return nil, Node{}, false, fmt.Errorf("%s: %w", p, ErrExists)
		}
		return parents, n, true, nil
	}
	return parents, r.add(p, k), false, nil
}

// Paths returns every registered path except the root.
func (r *Registry) Paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.nodes))
	for p := range r.nodes {
		if p != Root {
			out = append(out, p)
		}
	}
	return out
}

func (r *Registry) add(p string, k Kind) Node {
	n := Node{Path: p, Kind: k, Seq: r.next}
	r.next++
	r.nodes[p] = n
	return n
}
