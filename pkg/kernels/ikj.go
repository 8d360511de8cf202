// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package kernels

// MatMulIKJ accumulates C += A·B using the i,k,j loop order, where A is [rowsA, colsA], B is [rowsB, colsB]
// and C is [rowsA, colsB], all row-major. colsA must equal rowsB.
//
// For each (i, k), A[i,k] is broadcast over row k of B and added into row i of C, so both are
// traversed sequentially.
//
// C is accumulated into, not assigned: zero it before the call to get C = A·B.
func MatMulIKJ(a []float64, rowsA, colsA int, b []float64, rowsB, colsB int, c []float64) error {
	if err := ValidateMatMul("MatMulIKJ", a, rowsA, colsA, b, rowsB, colsB, c); err != nil {
		return err
	}
	for i := range rowsA {
		cRow := c[i*colsB : (i+1)*colsB]
		for k := range colsA {
			aik := a[i*colsA+k]
			bRow := b[k*colsB : (k+1)*colsB]
			for j, bkj := range bRow {
				cRow[j] += aik * bkj
			}
		}
	}
	return nil
}
