// SPDX-License-Identifier: MIT

// Package zarr lays a container tree out as a zarr v2 hierarchy on a
// blob.Store: groups carry .zgroup, arrays .zarray plus one chunk holding
// every element, and attributes live in .zattrs.
package zarr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/katalvlaran/anndata/blob"
	"github.com/katalvlaran/anndata/container"
)

const (
	contentJSON   = "application/json"
	contentBinary = "application/octet-stream"
)

type options struct {
	codec container.Codec
}

// Option configures a Writer.
type Option func(*options)

// WithCodec sets the chunk compressor. Panics on nil.
func WithCodec(c container.Codec) Option {
	if c == nil {
		panic("zarr: WithCodec(nil)")
	}
	return func(o *options) { o.codec = c }
}

var (
	// ErrEmptyPrefix is returned by NewWriter for an empty prefix, which
	// would make the whole store the hierarchy.
	ErrEmptyPrefix = errors.New("zarr: empty prefix")
	// ErrNotZarr is returned by NewWriter when prefix holds keys but no
	// zarr root.
	ErrNotZarr = errors.New("zarr: prefix holds non-zarr data")
)

// keyFor maps a container path plus a file name to a store key under prefix.
func keyFor(prefix, p, file string) string {
	parts := make([]string, 0, 3)
	if pre := strings.Trim(prefix, "/"); pre != "" {
		parts = append(parts, pre)
	}
	if rel := strings.TrimPrefix(container.Clean(p), "/"); rel != "" {
		parts = append(parts, rel)
	}
	if file != "" {
		parts = append(parts, file)
	}
	return strings.Join(parts, "/")
}

// Writer writes a zarr hierarchy. Safe for concurrent use.
type Writer struct {
	store  blob.Store
	prefix string
	codec  container.Codec
	reg    *container.Registry

	mu      sync.Mutex
	attrs   map[string]container.Attrs // group attrs written so far
	written []string
	done    bool
}

var _ container.Writer = (*Writer)(nil)

// NewWriter starts a new hierarchy under prefix, replacing an existing
// zarr hierarchy there.
//
// Errors:
//   - ErrEmptyPrefix when prefix is empty or "/".
//   - ErrNotZarr when prefix holds keys but no root .zgroup or .zarray.
func NewWriter(ctx context.Context, store blob.Store, prefix string, opts ...Option) (*Writer, error) {
	if strings.Trim(prefix, "/") == "" {
		return nil, ErrEmptyPrefix
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.codec == nil {
		o.codec, _ = container.CodecByName(container.CodecNone, 0)
	}
	w := &Writer{
		store:  store,
		prefix: strings.Trim(prefix, "/"),
		codec:  o.codec,
		reg:    container.NewRegistry(),
		attrs:  map[string]container.Attrs{},
	}
	if err := w.clear(ctx); err != nil {
		return nil, err
	}
	if err := w.putJSON(ctx, keyFor(w.prefix, container.Root, ZGroup), groupMeta{ZarrFormat: Version}); err != nil {
		return nil, err
	}
	return w, nil
}

// clear deletes a previous hierarchy under the prefix. Keys without a zarr
// root are left alone.
func (w *Writer) clear(ctx context.Context) error {
	listPrefix := w.prefix + "/"
	infos, err := w.store.List(ctx, listPrefix)
	if err != nil {
		return fmt.Errorf("list %q: %w", listPrefix, err)
	}
	if len(infos) == 0 {
		return nil
	}
	isZarr := false
	for _, file := range []string{ZGroup, ZArray} {
		_, err := w.store.Head(ctx, keyFor(w.prefix, container.Root, file))
		if err == nil {
			isZarr = true
			break
		}
		if !errors.Is(err, blob.ErrNotFound) {
			return fmt.Errorf("head %s: %w", w.prefix, err)
		}
	}
	if !isZarr {
		return fmt.Errorf("%s holds %d keys: %w", w.prefix, len(infos), ErrNotZarr)
	}
	for _, info := range infos {
		if _, err := w.store.Delete(ctx, info.Key); err != nil {
			return fmt.Errorf("clear %s: %w", info.Key, err)
		}
	}
	return nil
}

func (w *Writer) put(ctx context.Context, key string, b []byte, contentType string) error {
	if _, err := w.store.Put(ctx, key, bytes.NewReader(b), blob.PutOptions{ContentType: contentType}); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	w.mu.Lock()
	w.written = append(w.written, key)
	w.mu.Unlock()
	return nil
}

func (w *Writer) putJSON(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return w.put(ctx, key, b, contentJSON)
}

func (w *Writer) isDone() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.done
}

func (w *Writer) writeGroups(ctx context.Context, nodes []container.Node) error {
	for _, n := range nodes {
		if err := w.putJSON(ctx, keyFor(w.prefix, n.Path, ZGroup), groupMeta{ZarrFormat: Version}); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) CreateGroup(ctx context.Context, p string, attrs container.Attrs) error {
	if w.isDone() {
		return container.ErrClosed
	}
	parents, node, existed, err := w.reg.Claim(p, container.KindGroup)
	if err != nil {
		return err
	}
	if err := w.writeGroups(ctx, parents); err != nil {
		return err
	}
	if !existed {
		if err := w.writeGroups(ctx, []container.Node{node}); err != nil {
			return err
		}
	}
	if len(attrs) == 0 {
		return nil
	}
	w.mu.Lock()
	merged := w.attrs[node.Path].Clone().Merge(attrs)
	w.attrs[node.Path] = merged
	w.mu.Unlock()
	return w.putJSON(ctx, keyFor(w.prefix, node.Path, ZAttrs), merged)
}

func (w *Writer) WriteArray(ctx context.Context, p string, a *container.Array, attrs container.Attrs) error {
	if w.isDone() {
		return container.ErrClosed
	}
	raw, err := container.EncodeArray(a)
	if err != nil {
		return fmt.Errorf("%s: %w", p, err)
	}
	parents, node, _, err := w.reg.Claim(p, container.KindArray)
	if err != nil {
		return err
	}
	if err := w.writeGroups(ctx, parents); err != nil {
		return err
	}
	if err := w.putJSON(ctx, keyFor(w.prefix, node.Path, ZArray), newArrayMeta(a, w.codec)); err != nil {
		return err
	}
	if len(attrs) > 0 {
		if err := w.putJSON(ctx, keyFor(w.prefix, node.Path, ZAttrs), attrs); err != nil {
			return err
		}
	}
	if a.Size() == 0 {
		return nil
	}
	payload, err := w.codec.Encode(raw)
	if err != nil {
		return fmt.Errorf("compress %s: %w", p, err)
	}
	return w.put(ctx, keyFor(w.prefix, node.Path, chunkKey(len(a.Shape))), payload, contentBinary)
}

// Commit marks the hierarchy complete; keys are already in place.
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
	w.written = nil
	return nil
}

// Close deletes every key written by an uncommitted writer.
func (w *Writer) Close() error {
	w.mu.Lock()
	if w.done {
		w.mu.Unlock()
		return nil
	}
	w.done = true
	keys := w.written
	w.written = nil
	w.mu.Unlock()
	var errs []error
	for _, k := range keys {
		if _, err := w.store.Delete(context.Background(), k); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Reader reads a zarr hierarchy from a blob.Store.
type Reader struct {
	store  blob.Store
	prefix string
}

var _ container.Reader = (*Reader)(nil)

// Open checks that prefix holds a zarr group and returns a Reader for it.
func Open(ctx context.Context, store blob.Store, prefix string) (*Reader, error) {
	r := &Reader{store: store, prefix: strings.Trim(prefix, "/")}
	kind, err := r.Kind(ctx, container.Root)
	if err != nil {
		return nil, err
	}
	if kind != container.KindGroup {
		return nil, fmt.Errorf("zarr root %q is an array: %w", prefix, container.ErrKind)
	}
	return r, nil
}

func (r *Reader) get(ctx context.Context, key string) ([]byte, error) {
	_, rc, err := r.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", key, container.ErrNotFound)
		}
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (r *Reader) Kind(ctx context.Context, p string) (container.Kind, error) {
	if _, err := r.store.Head(ctx, keyFor(r.prefix, p, ZArray)); err == nil {
		return container.KindArray, nil
	} else if !errors.Is(err, blob.ErrNotFound) {
		return "", err
	}
	if _, err := r.store.Head(ctx, keyFor(r.prefix, p, ZGroup)); err == nil {
		return container.KindGroup, nil
	} else if !errors.Is(err, blob.ErrNotFound) {
		return "", err
	}
	return "", fmt.Errorf("%s: %w", container.Clean(p), container.ErrNotFound)
}

func (r *Reader) Attrs(ctx context.Context, p string) (container.Attrs, error) {
	if _, err := r.Kind(ctx, p); err != nil {
		return nil, err
	}
	b, err := r.get(ctx, keyFor(r.prefix, p, ZAttrs))
	if err != nil {
		if errors.Is(err, container.ErrNotFound) {
			return container.Attrs{}, nil
		}
		return nil, err
	}
	return container.UnmarshalAttrs(b)
}

// Children returns child names sorted; zarr records no creation order.
func (r *Reader) Children(ctx context.Context, p string) ([]string, error) {
	kind, err := r.Kind(ctx, p)
	if err != nil {
		return nil, err
	}
	if kind != container.KindGroup {
		return nil, fmt.Errorf("children of %s: %w", container.Clean(p), container.ErrKind)
	}
	dir := keyFor(r.prefix, p, "")
	if dir != "" {
		dir += "/"
	}
	infos, err := r.store.List(ctx, dir)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var names []string
	for _, info := range infos {
		parts := strings.Split(strings.TrimPrefix(info.Key, dir), "/")
		if len(parts) != 2 || (parts[1] != ZGroup && parts[1] != ZArray) || seen[parts[0]] {
			continue
		}
		seen[parts[0]] = true
		names = append(names, parts[0])
	}
	sort.Strings(names)
	return names, nil
}

func (r *Reader) ReadArray(ctx context.Context, p string) (*container.Array, error) {
	b, err := r.get(ctx, keyFor(r.prefix, p, ZArray))
	if err != nil {
		if errors.Is(err, container.ErrNotFound) {
			if kind, kerr := r.Kind(ctx, p); kerr == nil && kind == container.KindGroup {
				return nil, fmt.Errorf("%s is a group: %w", container.Clean(p), container.ErrKind)
			}
		}
		return nil, err
	}
	meta, dt, codec, err := parseArrayMeta(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", container.Clean(p), err)
	}
	size := 1
	for _, d := range meta.Shape {
		size *= d
	}
	if size == 0 {
		return container.DecodeArray(dt, meta.Shape, emptyChunk(dt))
	}
	chunk, err := r.get(ctx, keyFor(r.prefix, p, chunkKey(len(meta.Shape))))
	if err != nil {
		return nil, err
	}
	raw, err := codec.Decode(chunk)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", container.Clean(p), err)
	}
	a, err := container.DecodeArray(dt, meta.Shape, raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", container.Clean(p), err)
	}
	return a, nil
}

// Close is a no-op; the store is owned by the caller.
func (r *Reader) Close() error { return nil }

func emptyChunk(dt container.DType) []byte {
	if dt == container.String {
		return []byte{0, 0, 0, 0}
	}
	return nil
}
