// SPDX-License-Identifier: MIT

package container

import "context"

// Writer builds a container tree. Implementations are safe for concurrent
// use; callers still create a group before writing into it when they need
// its attributes.
type Writer interface {
	// CreateGroup creates p (and missing parents) or merges attrs into an
	// existing group.
	CreateGroup(ctx context.Context, p string, attrs Attrs) error
	// WriteArray stores a at p; parents are created, an existing node is ErrExists.
	WriteArray(ctx context.Context, p string, a *Array, attrs Attrs) error
	// Commit makes the written tree visible at its destination.
	Commit(ctx context.Context) error
	// Close releases resources; without a prior Commit the tree is discarded.
	Close() error
}

// Reader navigates a container tree.
type Reader interface {
	Kind(ctx context.Context, p string) (Kind, error)
	Attrs(ctx context.Context, p string) (Attrs, error)
	// Children lists the names under a group. Backends that record creation
	// order return it; others return names sorted.
	Children(ctx context.Context, p string) ([]string, error)
	ReadArray(ctx context.Context, p string) (*Array, error)
	Close() error
}
