// SPDX-License-Identifier: MIT

package elem

import "errors"

var (
	// ErrUnknownEncoding is returned for nodes whose encoding-type is missing,
	// unknown or inconsistent with their content.
	ErrUnknownEncoding = errors.New("elem: unknown encoding")
	// ErrUnsupportedValue is returned when a mapping value has no encoding.
	ErrUnsupportedValue = errors.New("elem: unsupported value type")
)
