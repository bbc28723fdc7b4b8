// SPDX-License-Identifier: MIT

// Package elem encodes annotated-matrix elements (matrices, dataframes,
// mappings and scalars) onto a container tree using the anndata on-disk
// conventions: every node carries "encoding-type" and "encoding-version"
// attributes naming how it was written.
//
// The same encoding serves h5ad files (container/sqlite) and zarr stores
// (container/zarr).
//
//	X                  array (dense) or csr_matrix / csc_matrix group
//	obs, var           dataframe group: _index, column-order, one node per column
//	categorical        group: categories (string-array), codes (int32), ordered
//	uns                dict group; scalars as string / numeric-scalar
package elem
