// SPDX-License-Identifier: MIT

// Package matrix: the public Matrix contract shared by dense and sparse storage.
package matrix

// Matrix represents a two-dimensional mutable array of float64 values.
// Both *Dense and *CSR satisfy it, so every consumer (writers, comparisons,
// conversions) accepts either representation interchangeably.
//
// Complexity notes: Rows/Cols are O(1); At/Set are O(1) for *Dense and
// O(log nnz(row)) / O(nnz) for *CSR; Clone is O(storage).
type Matrix interface {
	// Rows returns the number of rows in the matrix.
	Rows() int

	// Cols returns the number of columns in the matrix.
	Cols() int

	// At retrieves the element at position (i, j).
	// Returns ErrOutOfRange if i<0, i>=Rows(), j<0 or j>=Cols().
	At(i, j int) (float64, error)

	// Set assigns the value v at position (i, j).
	// Returns ErrOutOfRange if indices are invalid.
	Set(i, j int, v float64) error

	// Clone returns a deep copy of the matrix.
	// The returned Matrix is independent of the original.
	Clone() Matrix
}
