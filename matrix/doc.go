// Package matrix holds the numeric payload of an annotated matrix.
//
// The matrix package provides:
//
//   - Dense: row-major float64 storage with error-returning accessors.
//   - CSR: compressed sparse row storage with sorted, unique columns per row.
//   - Converters (ToDense, ToCSR, Transpose) that never alias their input.
//   - AllClose for tolerance-based comparison across storage kinds.
//
// Both storage kinds satisfy Matrix, so writers and comparisons accept
// either one interchangeably.
package matrix
