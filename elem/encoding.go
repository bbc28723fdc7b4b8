// SPDX-License-Identifier: MIT

package elem

import (
	"fmt"
	"strings"

	"github.com/katalvlaran/anndata/container"
)

// Attribute keys.
const (
	AttrType    = "encoding-type"
	AttrVersion = "encoding-version"
	AttrShape   = "shape"
	AttrIndex   = "_index"
	AttrOrder   = "column-order"
	AttrOrdered = "ordered"
)

// Encoding types.
const (
	TypeAnnData       = "anndata"
	TypeArray         = "array"
	TypeCSR           = "csr_matrix"
	TypeCSC           = "csc_matrix"
	TypeDataFrame     = "dataframe"
	TypeStringArray   = "string-array"
	TypeCategorical   = "categorical"
	TypeDict          = "dict"
	TypeString        = "string"
	TypeNumericScalar = "numeric-scalar"
)

// DefaultIndexKey names the index dataset of a dataframe without an index name.
const DefaultIndexKey = "_index"

var versions = map[string]string{
	TypeAnnData:       "0.1.0",
	TypeArray:         "0.2.0",
	TypeCSR:           "0.1.0",
	TypeCSC:           "0.1.0",
	TypeDataFrame:     "0.2.0",
	TypeStringArray:   "0.2.0",
	TypeCategorical:   "0.2.0",
	TypeDict:          "0.1.0",
	TypeString:        "0.2.0",
	TypeNumericScalar: "0.2.0",
}

// Encoding returns the attrs tagging a node with typ, merged with extra.
func Encoding(typ string, extra container.Attrs) container.Attrs {
	a := container.Attrs{AttrType: typ, AttrVersion: versions[typ]}
	return a.Merge(extra)
}

// TypeOf returns the encoding-type of p ("" when the attribute is absent).
func TypeOf(attrs container.Attrs) (string, error) {
	if !attrs.Has(AttrType) {
		return "", nil
	}
	typ, err := attrs.String(AttrType)
	if err != nil {
		return "", fmt.Errorf("%v: %w", err, ErrUnknownEncoding)
	}
	return typ, nil
}

// checkKey rejects names that cannot be a single path element.
func checkKey(name string) error {
	if name == "" || name == "." || name == ".." || strings.Contains(name, "/") {
		return fmt.Errorf("key %q: %w", name, ErrUnsupportedValue)
	}
	return nil
}
