// SPDX-License-Identifier: MIT

package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/katalvlaran/anndata/container"
)

// Reader reads a container file written by Writer.
type Reader struct {
	db     *sql.DB
	path   string
	format string
}

var _ container.Reader = (*Reader)(nil)

// Open opens an existing container file. Files that are not SQLite
// containers fail with container.ErrCorrupt.
func Open(ctx context.Context, path string) (*Reader, error) {
	st, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, container.ErrNotFound)
		}
		return nil, err
	}
	if st.IsDir() {
		return nil, fmt.Errorf("%s is a directory: %w", path, container.ErrCorrupt)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	r := &Reader{db: db, path: path}
	if err := db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, MetaFormat).Scan(&r.format); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: not a container (%v): %w", path, err, container.ErrCorrupt)
	}
	return r, nil
}

// Format returns the format name recorded by the writer.
func (r *Reader) Format() string { return r.format }

// Path returns the file path.
func (r *Reader) Path() string { return r.path }

func (r *Reader) Kind(ctx context.Context, p string) (container.Kind, error) {
	var kind string
	err := r.db.QueryRowContext(ctx, `SELECT kind FROM nodes WHERE path = ?`, container.Clean(p)).Scan(&kind)
	if err != nil {
		return "", r.mapErr(p, err)
	}
	return container.Kind(kind), nil
}

func (r *Reader) Attrs(ctx context.Context, p string) (container.Attrs, error) {
	var raw string
	err := r.db.QueryRowContext(ctx, `SELECT attrs FROM nodes WHERE path = ?`, container.Clean(p)).Scan(&raw)
	if err != nil {
		return nil, r.mapErr(p, err)
	}
	return container.UnmarshalAttrs([]byte(raw))
}

func (r *Reader) Children(ctx context.Context, p string) ([]string, error) {
	p = container.Clean(p)
	kind, err := r.Kind(ctx, p)
	if err != nil {
		return nil, err
	}
	if kind != container.KindGroup {
		return nil, fmt.Errorf("children of %s: %w", p, container.ErrKind)
	}
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM nodes WHERE parent = ? AND path <> ? ORDER BY seq`, p, container.Root)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", p, err)
	}
	defer func() { _ = rows.Close() }()
	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

func (r *Reader) ReadArray(ctx context.Context, p string) (*container.Array, error) {
	p = container.Clean(p)
	var (
		kind                string
		dtype, shape, codec sql.NullString
		data                []byte
	)
	err := r.db.QueryRowContext(ctx, `SELECT kind, dtype, shape, codec, data FROM nodes WHERE path = ?`, p).
		Scan(&kind, &dtype, &shape, &codec, &data)
	if err != nil {
		return nil, r.mapErr(p, err)
	}
	if container.Kind(kind) != container.KindArray {
		return nil, fmt.Errorf("%s is a %s: %w", p, kind, container.ErrKind)
	}
	dt, err := container.ParseDType(dtype.String)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	var dims []int
	if err := json.Unmarshal([]byte(shape.String), &dims); err != nil {
		return nil, fmt.Errorf("%s shape %q: %w", p, shape.String, container.ErrCorrupt)
	}
	c, err := container.CodecByName(codec.String, 0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	raw, err := c.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	a, err := container.DecodeArray(dt, dims, raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	return a, nil
}

func (r *Reader) Close() error { return r.db.Close() }

func (r *Reader) mapErr(p string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", container.Clean(p), container.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", container.Clean(p), err)
}
