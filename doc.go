// SPDX-License-Identifier: MIT

// Package anndata is an annotated data matrix for Go: a cells × genes
// matrix (dense or CSR) with ordered observation (obs) and variable (var)
// annotation tables and a free-form unstructured mapping (uns), plus the
// file formats to move it around.
//
// What you get:
//
//   - AnnData: X, Obs, Var, Uns and the bookkeeping around them
//     (shape checks, names, deep copies, categorical inference).
//   - h5ad-style files: the anndata element encoding in one SQLite file.
//   - zarr stores: the same encoding as a zarr v2 tree on a local
//     directory, in memory or in S3.
//   - loom files: genes × cells matrix with row/col attributes.
//   - CSV directories: obs.csv, var.csv, uns/ and optionally X.csv.
//
// Under the hood:
//
//	matrix/     Dense and CSR storage, conversions, AllClose
//	frame/      ordered typed columns, categoricals, inference
//	container/  groups + typed arrays; sqlite and zarr backends
//	elem/       the encoding-type/encoding-version element layout
//	loom/       loom layout
//	csvdir/     CSV export and import
//	blob/       fs / memory / s3 object stores used by zarr
//	metrics/    Prometheus counters for reads and writes
//	internal/config  YAML configuration for the command line tool
//	cmd/anndata inspect, convert and export-csv
//
// Quick example:
//
//	x, _ := matrix.NewCSRFromRows([][]float64{{1, 0}, {3, 0}, {5, 6}})
//	obs, _ := frame.FromMap(map[string]any{
//		"row_names": []string{"name1", "name2", "name3"},
//		"oanno1":    []string{"cat1", "cat2", "cat2"},
//	}, "row_names")
//	adata, _ := anndata.New(x, obs, nil, nil)
//	_ = adata.WriteH5AD(ctx, "test.h5ad")
//	back, _ := anndata.ReadH5AD(ctx, "test.h5ad") // oanno1 is now categorical
package anndata
