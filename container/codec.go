// SPDX-License-Identifier: MIT

package container

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Codec names.
const (
	CodecNone = "none"
	CodecGzip = "gzip"
	CodecZstd = "zstd"
)

// DefaultCodec is used by writers when no codec is configured.
const DefaultCodec = CodecGzip

// Codec compresses encoded array bytes. Level 0 means the library default.
type Codec interface {
	Name() string
	Level() int
	Encode(src []byte) ([]byte, error)
	Decode(src []byte) ([]byte, error)
}

// CodecByName returns the codec for name ("" means none).
func CodecByName(name string, level int) (Codec, error) {
	switch name {
	case "", CodecNone:
		return noneCodec{}, nil
	case CodecGzip:
		if level < gzip.HuffmanOnly || level > gzip.BestCompression {
			return nil, fmt.Errorf("gzip level %d out of range: %w", level, ErrDType)
		}
		return gzipCodec{level: level}, nil
	case CodecZstd:
		if level < 0 || level > 22 {
			return nil, fmt.Errorf("zstd level %d out of range: %w", level, ErrDType)
		}
		return zstdCodec{level: level}, nil
	}
	return nil, fmt.Errorf("codec %q: %w", name, ErrDType)
}

type noneCodec struct{}

func (noneCodec) Name() string                      { return CodecNone }
func (noneCodec) Level() int                        { return 0 }
func (noneCodec) Encode(src []byte) ([]byte, error) { return src, nil }
func (noneCodec) Decode(src []byte) ([]byte, error) { return src, nil }

type gzipCodec struct{ level int }

func (c gzipCodec) Name() string { return CodecGzip }
func (c gzipCodec) Level() int   { return c.level }

func (c gzipCodec) Encode(src []byte) ([]byte, error) {
	level := c.level
	if level == 0 {
		level = gzip.DefaultCompression
	}
	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(src); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c gzipCodec) Decode(src []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("gzip: %v: %w", err, ErrCorrupt)
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("gzip: %v: %w", err, ErrCorrupt)
	}
	return out, nil
}

// zstdCodec builds a fresh encoder/decoder per call and closes it, so no
// background goroutines outlive a write.
type zstdCodec struct{ level int }

func (c zstdCodec) Name() string { return CodecZstd }
func (c zstdCodec) Level() int   { return c.level }

func (c zstdCodec) Encode(src []byte) ([]byte, error) {
	opts := []zstd.EOption{zstd.WithEncoderConcurrency(1)}
	if c.level > 0 {
		opts = append(opts, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(c.level)))
	}
	enc, err := zstd.NewWriter(nil, opts...)
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(src, make([]byte, 0, len(src)/2)), nil
}

func (c zstdCodec) Decode(src []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	out, err := dec.DecodeAll(src, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd: %v: %w", err, ErrCorrupt)
	}
	return out, nil
}
