// SPDX-License-Identifier: MIT
// Package frame: sentinel error set.
// Constructors and accessors return these sentinels wrapped with context;
// callers match with errors.Is.

package frame

import "errors"

var (
	// ErrLengthMismatch reports a column whose length differs from the index.
	ErrLengthMismatch = errors.New("frame: column length does not match index")

	// ErrDuplicateColumn reports two columns sharing one name.
	ErrDuplicateColumn = errors.New("frame: duplicate column name")

	// ErrUnsupportedType reports a Go value that has no column representation.
	ErrUnsupportedType = errors.New("frame: unsupported column type")

	// ErrColumnNotFound reports a lookup of an absent column.
	ErrColumnNotFound = errors.New("frame: column not found")

	// ErrBadCode reports a categorical code outside [-1, len(categories)).
	ErrBadCode = errors.New("frame: categorical code out of range")

	// ErrDuplicateCategory reports a category list with repeated values.
	ErrDuplicateCategory = errors.New("frame: duplicate category")

	// ErrNilFrame reports a nil *Frame argument.
	ErrNilFrame = errors.New("frame: nil frame")
)
