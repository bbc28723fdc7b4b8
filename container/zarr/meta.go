// SPDX-License-Identifier: MIT

package zarr

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/katalvlaran/anndata/container"
)

// Metadata file names of the zarr v2 layout.
const (
	ZGroup  = ".zgroup"
	ZArray  = ".zarray"
	ZAttrs  = ".zattrs"
	Version = 2
)

type groupMeta struct {
	ZarrFormat int `json:"zarr_format"`
}

type codecMeta struct {
	ID    string `json:"id"`
	Level int    `json:"level,omitempty"`
}

type arrayMeta struct {
	ZarrFormat         int         `json:"zarr_format"`
	Shape              []int       `json:"shape"`
	Chunks             []int       `json:"chunks"`
	DType              string      `json:"dtype"`
	Compressor         *codecMeta  `json:"compressor"`
	FillValue          any         `json:"fill_value"`
	Order              string      `json:"order"`
	Filters            []codecMeta `json:"filters"`
	DimensionSeparator string      `json:"dimension_separator,omitempty"`
}

const vlenUTF8 = "vlen-utf8"

var dtypeNames = map[container.DType]string{
	container.Float64: "<f8",
	container.Int64:   "<i8",
	container.Int32:   "<i4",
	container.Bool:    "|b1",
	container.String:  "|O",
}

func newArrayMeta(a *container.Array, c container.Codec) arrayMeta {
	shape := a.Shape
	if shape == nil {
		shape = []int{}
	}
	chunks := make([]int, len(shape))
	for i, d := range shape {
		chunks[i] = max(d, 1)
	}
	m := arrayMeta{
		ZarrFormat:         Version,
		Shape:              shape,
		Chunks:             chunks,
		DType:              dtypeNames[a.DType],
		Order:              "C",
		DimensionSeparator: ".",
	}
	switch a.DType {
	case container.Float64:
		m.FillValue = 0.0
	case container.Int64, container.Int32:
		m.FillValue = 0
	case container.Bool:
		m.FillValue = false
	case container.String:
		m.Filters = []codecMeta{{ID: vlenUTF8}}
	}
	if c.Name() != container.CodecNone {
		m.Compressor = &codecMeta{ID: c.Name(), Level: c.Level()}
	}
	return m
}

func parseArrayMeta(b []byte) (arrayMeta, container.DType, container.Codec, error) {
	var m arrayMeta
	if err := json.Unmarshal(b, &m); err != nil {
		return m, "", nil, fmt.Errorf("%s: %v: %w", ZArray, err, container.ErrCorrupt)
	}
	if m.ZarrFormat != Version {
		return m, "", nil, fmt.Errorf("zarr_format %d: %w", m.ZarrFormat, container.ErrCorrupt)
	}
	if m.Order != "" && m.Order != "C" {
		return m, "", nil, fmt.Errorf("order %q: %w", m.Order, container.ErrDType)
	}
	var dt container.DType
	for k, v := range dtypeNames {
		if v == m.DType {
			dt = k
		}
	}
	if dt == "" && strings.HasPrefix(m.DType, "<U") {
		return m, "", nil, fmt.Errorf("fixed-width unicode %q: %w", m.DType, container.ErrDType)
	}
	if dt == "" {
		return m, "", nil, fmt.Errorf("dtype %q: %w", m.DType, container.ErrDType)
	}
	if dt == container.String && (len(m.Filters) != 1 || m.Filters[0].ID != vlenUTF8) {
		return m, "", nil, fmt.Errorf("object array without %s filter: %w", vlenUTF8, container.ErrDType)
	}
	if len(m.Chunks) != len(m.Shape) {
		return m, "", nil, fmt.Errorf("chunks %v for shape %v: %w", m.Chunks, m.Shape, container.ErrCorrupt)
	}
	for i, c := range m.Chunks {
		if c < m.Shape[i] {
			return m, "", nil, fmt.Errorf("chunks %v for shape %v: multi-chunk arrays: %w", m.Chunks, m.Shape, container.ErrDType)
		}
	}
	name := container.CodecNone
	level := 0
	if m.Compressor != nil {
		name, level = m.Compressor.ID, m.Compressor.Level
	}
	c, err := container.CodecByName(name, level)
	if err != nil {
		return m, "", nil, err
	}
	return m, dt, c, nil
}

// chunkKey is the name of the single chunk: "0" joined per dimension, "0" for scalars.
func chunkKey(ndim int) string {
	if ndim == 0 {
		return "0"
	}
	return strings.TrimSuffix(strings.Repeat("0.", ndim), ".")
}
