// SPDX-License-Identifier: MIT

package anndata

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Format names an on-disk representation.
type Format string

const (
	FormatH5AD Format = "h5ad"
	FormatLoom Format = "loom"
	FormatZarr Format = "zarr"
	// FormatCSV is a single matrix CSV when the path is a file and a CSV
	// export directory otherwise.
	FormatCSV Format = "csv"
)

// ParseFormat accepts a format name as used on the command line.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(s, "."))); f {
	case FormatH5AD, FormatLoom, FormatZarr, FormatCSV:
		return f, nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownFormat)
}

// FormatFromPath picks a format from the file extension; an existing
// directory without a known extension is a CSV export.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(strings.TrimRight(path, `/\`))) {
	case ".h5ad":
		return FormatH5AD, nil
	case ".loom":
		return FormatLoom, nil
	case ".zarr":
		return FormatZarr, nil
	case ".csv", ".tsv", ".txt":
		return FormatCSV, nil
	}
	if st, err := os.Stat(path); err == nil && st.IsDir() {
		return FormatCSV, nil
	}
	return "", fmt.Errorf("%q: %w", path, ErrUnknownFormat)
}
