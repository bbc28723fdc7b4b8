// SPDX-License-Identifier: MIT

package container

import "errors"

var (
	// ErrNotFound is returned when a path does not exist.
	ErrNotFound = errors.New("container: path not found")
	// ErrExists is returned when writing an array over an existing node.
	ErrExists = errors.New("container: path already exists")
	// ErrKind is returned when a node is a group where an array is expected or vice versa.
	ErrKind = errors.New("container: wrong node kind")
	// ErrDType is returned for unknown dtypes or a dtype that does not match the request.
	ErrDType = errors.New("container: unsupported dtype")
	// ErrCorrupt is returned when stored bytes or metadata cannot be decoded.
	ErrCorrupt = errors.New("container: corrupt data")
	// ErrClosed is returned by operations on a committed or closed writer.
	ErrClosed = errors.New("container: writer closed")
)
