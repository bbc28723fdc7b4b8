// SPDX-License-Identifier: MIT

// Package sqlite stores a container tree in a single SQLite file.
//
// Every group and array is one row of the nodes table, keyed by path, with
// its attributes as JSON and, for arrays, the encoded (optionally
// compressed) values as a BLOB. Children are listed in creation order.
// A meta table records which file format the tree represents.
//
// Writers build the file under a uuid-named temp path next to the target
// inside one transaction; Commit renames it into place.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // pure go sqlite driver

	"github.com/katalvlaran/anndata/container"
)

const schema = `
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS nodes (
	path   TEXT PRIMARY KEY,
	parent TEXT NOT NULL,
	name   TEXT NOT NULL,
	kind   TEXT NOT NULL,
	seq    INTEGER NOT NULL,
	attrs  TEXT NOT NULL DEFAULT '{}',
	dtype  TEXT,
	shape  TEXT,
	codec  TEXT,
	data   BLOB
);
CREATE INDEX IF NOT EXISTS nodes_parent ON nodes(parent, seq);
`

// Meta keys.
const (
	MetaFormat        = "format"
	MetaLayoutVersion = "layout_version"
	LayoutVersion     = "1"
)

type options struct {
	format string
	codec  container.Codec
}

// Option configures a Writer.
type Option func(*options)

// WithFormat records the file format name in the meta table.
func WithFormat(name string) Option {
	return func(o *options) { o.format = name }
}

// WithCodec compresses array payloads. Panics on nil.
func WithCodec(c container.Codec) Option {
	if c == nil {
		panic("sqlite: WithCodec(nil)")
	}
	return func(o *options) { o.codec = c }
}

// Writer builds a container file. Safe for concurrent use.
type Writer struct {
	mu    sync.Mutex
	db    *sql.DB
	tx    *sql.Tx
	reg   *container.Registry
	codec container.Codec
	path  string
	tmp   string
	done  bool
}

var _ container.Writer = (*Writer)(nil)

// Create starts a new container that will replace path on Commit.
func Create(ctx context.Context, path string, opts ...Option) (w *Writer, err error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.codec == nil {
		o.codec, _ = container.CodecByName(container.CodecNone, 0)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	tmp := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(path), uuid.NewString()))
	db, err := sql.Open("sqlite", tmp)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	defer func() {
		if err != nil {
			_ = db.Close()
			_ = os.Remove(tmp)
		}
	}()
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	for k, v := range map[string]string{MetaFormat: o.format, MetaLayoutVersion: LayoutVersion} {
		if _, err := tx.ExecContext(ctx, `INSERT INTO meta(key, value) VALUES (?, ?)`, k, v); err != nil {
			_ = tx.Rollback()
			return nil, fmt.Errorf("write meta: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO nodes(path, parent, name, kind, seq) VALUES (?, '', '', ?, 0)`,
		container.Root, string(container.KindGroup)); err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("write root: %w", err)
	}
	return &Writer{db: db, tx: tx, reg: container.NewRegistry(), codec: o.codec, path: path, tmp: tmp}, nil
}

// Path returns the final destination of the file.
func (w *Writer) Path() string { return w.path }

func (w *Writer) CreateGroup(ctx context.Context, p string, attrs container.Attrs) error {
	parents, node, existed, err := w.reg.Claim(p, container.KindGroup)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.done {
		return container.ErrClosed
	}
	if err := w.insertGroups(ctx, parents); err != nil {
		return err
	}
	if !existed {
		return w.insertNode(ctx, node, attrs, nil, nil)
	}
	if len(attrs) == 0 {
		return nil
	}
	var raw string
	if err := w.tx.QueryRowContext(ctx, `SELECT attrs FROM nodes WHERE path = ?`, node.Path).Scan(&raw); err != nil {
		return fmt.Errorf("read attrs %s: %w", node.Path, err)
	}
	cur, err := container.UnmarshalAttrs([]byte(raw))
	if err != nil {
		return err
	}
	enc, err := container.MarshalAttrs(cur.Merge(attrs))
	if err != nil {
		return err
	}
	if _, err := w.tx.ExecContext(ctx, `UPDATE nodes SET attrs = ? WHERE path = ?`, string(enc), node.Path); err != nil {
		return fmt.Errorf("update attrs %s: %w", node.Path, err)
	}
	return nil
}

func (w *Writer) WriteArray(ctx context.Context, p string, a *container.Array, attrs container.Attrs) error {
	raw, err := container.EncodeArray(a)
	if err != nil {
		return fmt.Errorf("%s: %w", p, err)
	}
	payload, err := w.codec.Encode(raw)
	if err != nil {
		return fmt.Errorf("compress %s: %w", p, err)
	}
	parents, node, _, err := w.reg.Claim(p, container.KindArray)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.done {
		return container.ErrClosed
	}
	if err := w.insertGroups(ctx, parents); err != nil {
		return err
	}
	return w.insertNode(ctx, node, attrs, a, payload)
}

func (w *Writer) insertGroups(ctx context.Context, nodes []container.Node) error {
	for _, n := range nodes {
		if err := w.insertNode(ctx, n, nil, nil, nil); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) insertNode(ctx context.Context, n container.Node, attrs container.Attrs, a *container.Array, payload []byte) error {
	enc, err := container.MarshalAttrs(attrs)
	if err != nil {
		return fmt.Errorf("attrs %s: %w", n.Path, err)
	}
	parent, name := container.Split(n.Path)
	var dtype, shape, codec any
	var data any
	if a != nil {
		s := a.Shape
		if s == nil {
			s = []int{}
		}
		sb, _ := json.Marshal(s)
		dtype, shape, codec, data = string(a.DType), string(sb), w.codec.Name(), payload
	}
	_, err = w.tx.ExecContext(ctx,
		`INSERT INTO nodes(path, parent, name, kind, seq, attrs, dtype, shape, codec, data) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.Path, parent, name, string(n.Kind), n.Seq, string(enc), dtype, shape, codec, data)
	if err != nil {
		return fmt.Errorf("insert %s: %w", n.Path, err)
	}
	return nil
}

// Commit finishes the transaction and renames the temp file over the target.
func (w *Writer) Commit(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.done {
		return container.ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	w.done = true
	if err := w.tx.Commit(); err != nil {
		_ = w.db.Close()
		_ = os.Remove(w.tmp)
		return fmt.Errorf("commit: %w", err)
	}
	if err := w.db.Close(); err != nil {
		_ = os.Remove(w.tmp)
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Rename(w.tmp, w.path); err != nil {
		_ = os.Remove(w.tmp)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// Close discards an uncommitted file. It is a no-op after Commit.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.done {
		return nil
	}
	w.done = true
	err := errors.Join(w.tx.Rollback(), w.db.Close())
	if rmErr := os.Remove(w.tmp); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
		err = errors.Join(err, rmErr)
	}
	return err
}
