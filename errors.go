// SPDX-License-Identifier: MIT

package anndata

import "errors"

var (
	// ErrShape is returned when obs/var lengths disagree with X.
	ErrShape = errors.New("anndata: shape mismatch")
	// ErrNoFilename is returned by Write when neither a path nor Filename is set.
	ErrNoFilename = errors.New("anndata: no filename")
	// ErrUnknownFormat is returned when a path does not map to a known format.
	ErrUnknownFormat = errors.New("anndata: unknown format")
	// ErrNilAnnData is returned by methods called on a nil *AnnData.
	ErrNilAnnData = errors.New("anndata: nil object")
)
