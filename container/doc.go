// SPDX-License-Identifier: MIT

// Package container is a small hierarchical store of groups and typed
// N-dimensional arrays, each carrying JSON attributes. It is the common
// ground the on-disk formats are written against:
//
//   - container/sqlite keeps a whole tree in one file (h5ad, loom);
//   - container/zarr lays the tree out as zarr v2 keys on a blob.Store.
//
// Paths are slash-separated and rooted at "/". Arrays are stored as one
// little-endian chunk (strings as vlen-utf8), optionally compressed with a
// Codec.
package container
