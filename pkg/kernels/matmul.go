// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package kernels

// MatMulNaive computes C = A·B with the classic i,j,k loop order, where A is [rowsA, colsA], B is
// [rowsB, colsB] and C is [rowsA, colsB], all row-major. colsA must equal rowsB.
//
// B is read column-strided in the inner loop. Every element of C is overwritten.
func MatMulNaive(a []float64, rowsA, colsA int, b []float64, rowsB, colsB int, c []float64) error {
	if err := ValidateMatMul("MatMulNaive", a, rowsA, colsA, b, rowsB, colsB, c); err != nil {
		return err
	}
	for i := range rowsA {
		aRow := a[i*colsA : (i+1)*colsA]
		for j := range colsB {
			var sum float64
			for k, aik := range aRow {
				sum += aik * b[k*colsB+j]
			}
			c[i*colsB+j] = sum
		}
	}
	return nil
}

// MatMulTransposedB computes C = A·B, given bt, the row-major transpose of B: a [colsB, rowsB] matrix
// with B[k, j] stored at bt[j*rowsB+k]. A is [rowsA, colsA] and C is [rowsA, colsB]. colsA must equal rowsB.
//
// The inner loop reads both A and Bt row-contiguously. Transposing B is the caller's responsibility,
// see Transpose. Every element of C is overwritten.
func MatMulTransposedB(a []float64, rowsA, colsA int, bt []float64, rowsB, colsB int, c []float64) error {
	if err := ValidateMatMul("MatMulTransposedB", a, rowsA, colsA, bt, rowsB, colsB, c); err != nil {
		return err
	}
	for i := range rowsA {
		aRow := a[i*colsA : (i+1)*colsA]
		for j := range colsB {
			btRow := bt[j*rowsB : (j+1)*rowsB]
			var sum float64
			for k, aik := range aRow {
				sum += aik * btRow[k]
			}
			c[i*colsB+j] = sum
		}
	}
	return nil
}
