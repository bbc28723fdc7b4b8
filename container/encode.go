// SPDX-License-Identifier: MIT

package container

import (
	"encoding/binary"
	"fmt"
	"math"
)

// EncodeArray serializes the values of a in C order: little-endian for
// numerics, one byte per bool, and the vlen-utf8 layout for strings
// (uint32 count, then uint32 length + bytes per item).
func EncodeArray(a *Array) ([]byte, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	switch a.DType {
	case Float64:
		b := make([]byte, 8*len(a.Float64s))
		for i, v := range a.Float64s {
			binary.LittleEndian.PutUint64(b[8*i:], math.Float64bits(v))
		}
		return b, nil
	case Int64:
		b := make([]byte, 8*len(a.Int64s))
		for i, v := range a.Int64s {
			binary.LittleEndian.PutUint64(b[8*i:], uint64(v))
		}
		return b, nil
	case Int32:
		b := make([]byte, 4*len(a.Int32s))
		for i, v := range a.Int32s {
			binary.LittleEndian.PutUint32(b[4*i:], uint32(v))
		}
		return b, nil
	case Bool:
		b := make([]byte, len(a.Bools))
		for i, v := range a.Bools {
			if v {
				b[i] = 1
			}
		}
		return b, nil
	case String:
		n := 4
		for _, s := range a.Strings {
			n += 4 + len(s)
		}
		b := make([]byte, 0, n)
		b = binary.LittleEndian.AppendUint32(b, uint32(len(a.Strings)))
		for _, s := range a.Strings {
			b = binary.LittleEndian.AppendUint32(b, uint32(len(s)))
			b = append(b, s...)
		}
		return b, nil
	}
	return nil, fmt.Errorf("encode %q: %w", a.DType, ErrDType)
}

// DecodeArray is the inverse of EncodeArray.
func DecodeArray(dtype DType, shape []int, raw []byte) (*Array, error) {
	a := &Array{DType: dtype, Shape: cloneShape(shape)}
	n := a.Size()
	if n < 0 {
		return nil, fmt.Errorf("shape %v: %w", shape, ErrCorrupt)
	}
	width := map[DType]int{Float64: 8, Int64: 8, Int32: 4, Bool: 1}
	if w, ok := width[dtype]; ok && len(raw) != w*n {
		return nil, fmt.Errorf("%s shape %v: %d bytes: %w", dtype, shape, len(raw), ErrCorrupt)
	}
	switch dtype {
	case Float64:
		a.Float64s = make([]float64, n)
		for i := range a.Float64s {
			a.Float64s[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[8*i:]))
		}
	case Int64:
		a.Int64s = make([]int64, n)
		for i := range a.Int64s {
			a.Int64s[i] = int64(binary.LittleEndian.Uint64(raw[8*i:]))
		}
	case Int32:
		a.Int32s = make([]int32, n)
		for i := range a.Int32s {
			a.Int32s[i] = int32(binary.LittleEndian.Uint32(raw[4*i:]))
		}
	case Bool:
		a.Bools = make([]bool, n)
		for i := range a.Bools {
			a.Bools[i] = raw[i] != 0
		}
	case String:
		strs, err := decodeVLenUTF8(raw)
		if err != nil {
			return nil, err
		}
		if len(strs) != n {
			return nil, fmt.Errorf("string shape %v holds %d items: %w", shape, len(strs), ErrCorrupt)
		}
		a.Strings = strs
	default:
		return nil, fmt.Errorf("decode %q: %w", dtype, ErrDType)
	}
	return a, nil
}

func decodeVLenUTF8(raw []byte) ([]string, error) {
	if len(raw) < 4 {
		return nil, fmt.Errorf("vlen-utf8 header: %w", ErrCorrupt)
	}
	count := int(binary.LittleEndian.Uint32(raw))
	raw = raw[4:]
	if count > len(raw)/4 {
		return nil, fmt.Errorf("vlen-utf8 count %d: %w", count, ErrCorrupt)
	}
	out := make([]string, count)
	for i := range out {
		if len(raw) < 4 {
			return nil, fmt.Errorf("vlen-utf8 item %d: %w", i, ErrCorrupt)
		}
		l := int(binary.LittleEndian.Uint32(raw))
		raw = raw[4:]
		if l > len(raw) {
			return nil, fmt.Errorf("vlen-utf8 item %d length %d: %w", i, l, ErrCorrupt)
		}
		out[i] = string(raw[:l])
		raw = raw[l:]
	}
	if len(raw) != 0 {
		return nil, fmt.Errorf("vlen-utf8 trailing %d bytes: %w", len(raw), ErrCorrupt)
	}
	return out, nil
}
