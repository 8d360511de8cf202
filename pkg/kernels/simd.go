// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package kernels

import (
	"github.com/gomlx/matkernels/pkg/simd"
	"github.com/pkg/errors"
)

// MatMulSIMD accumulates C += A·B with the i,k,j loop order of MatMulIKJ, with the inner loop over a row
// of C vectorized by simd.Best(): the widest implementation the CPU supports, or the scalar one.
//
// A is [rowsA, colsA], B is [rowsB, colsB] and C is [rowsA, colsB], all row-major. colsA must equal rowsB.
// Any colsB is valid: columns past the last multiple of the vector width are handled by scalar code.
//
// C is accumulated into, not assigned: zero it before the call to get C = A·B.
func MatMulSIMD(a []float64, rowsA, colsA int, b []float64, rowsB, colsB int, c []float64) error {
	return matMulSIMD("MatMulSIMD", simd.Best(), a, rowsA, colsA, b, rowsB, colsB, c)
}

// MatMulSIMDWith is like MatMulSIMD, but uses the given vector kernel, see simd.ForLanes and simd.All.
func MatMulSIMDWith(kernel simd.Kernel, a []float64, rowsA, colsA int, b []float64, rowsB, colsB int, c []float64) error {
	return matMulSIMD("MatMulSIMDWith", kernel, a, rowsA, colsA, b, rowsB, colsB, c)
}

func matMulSIMD(name string, kernel simd.Kernel, a []float64, rowsA, colsA int, b []float64, rowsB, colsB int, c []float64) error {
	if kernel == nil {
		return errors.Errorf("%s: nil SIMD kernel", name)
	}
	if err := ValidateMatMul(name, a, rowsA, colsA, b, rowsB, colsB, c); err != nil {
		return err
	}
	for i := range rowsA {
		cRow := c[i*colsB : (i+1)*colsB]
		for k := range colsA {
			kernel.Axpy(a[i*colsA+k], b[k*colsB:(k+1)*colsB], cRow)
		}
	}
	return nil
}
