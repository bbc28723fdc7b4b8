// SPDX-License-Identifier: MIT

// Package matrix - element-wise comparison.

package matrix

import "math"

const opAllClose = "AllClose"

// AllClose checks element-wise |a-b| ≤ atol + rtol*|b| for identical shapes,
// the same relation numpy.allclose uses. Dense and CSR operands may be mixed.
// Returns (true,nil) if all elements satisfy the relation; (false,nil) otherwise.
//
// Policy:
//   - a and b must be non-nil and have identical shapes (ErrNilMatrix,
//     ErrDimensionMismatch otherwise).
//   - NaN never compares close, matching numpy's default equal_nan=False.
//
// Time: O(r*c). Space: O(1) for Dense pairs, O(r*c) when a CSR is densified.
func AllClose(a, b Matrix, opts ...Option) (bool, error) {
	o := gatherOptions(opts...)
	if err := ValidateNotNil(a); err != nil {
		return false, matrixErrorf(opAllClose, err)
	}
	if err := ValidateNotNil(b); err != nil {
		return false, matrixErrorf(opAllClose, err)
	}
	if err := ValidateSameShape(a, b); err != nil {
		return false, matrixErrorf(opAllClose, err)
	}

	da, err := ToDense(a)
	if err != nil {
		return false, matrixErrorf(opAllClose, err)
	}
	db, err := ToDense(b)
	if err != nil {
		return false, matrixErrorf(opAllClose, err)
	}
	for idx := range da.data {
		av, bv := da.data[idx], db.data[idx]
		if av == bv {
			continue // covers equal infinities
		}
		if math.IsNaN(av) || math.IsNaN(bv) {
			return false, nil
		}
		if math.Abs(av-bv) > o.atol+o.rtol*math.Abs(bv) {
			return false, nil
		}
	}

	return true, nil
}
