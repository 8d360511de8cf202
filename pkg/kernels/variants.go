// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package kernels

import (
	"fmt"

	"github.com/gomlx/matkernels/pkg/simd"
	"github.com/gomlx/matkernels/pkg/support/workerspool"
)

// Semantics of a kernel with respect to its result buffer.
type Semantics int

const (
	// Assign kernels overwrite every element of the result.
	Assign Semantics = iota

	// Accumulate kernels add the product into the result, which must be zeroed (or pre-seeded) by the caller.
	Accumulate
)

// String implements fmt.Stringer.
func (s Semantics) String() string {
	switch s {
	case Assign:
		return "assign"
	case Accumulate:
		return "accumulate"
	default:
		return fmt.Sprintf("Semantics(%d)", int(s))
	}
}

// MatMulFn is the common signature of the matrix-matrix kernels. For kernels with TransposedB set,
// b holds the row-major transpose of B ([colsB, rowsB]).
type MatMulFn func(a []float64, rowsA, colsA int, b []float64, rowsB, colsB int, c []float64) error

// MatMulVariant is one matrix-matrix kernel bound to the common MatMulFn signature.
type MatMulVariant struct {
	Name        string
	Semantics   Semantics
	TransposedB bool
	Fn          MatMulFn
}

// Run computes C = A·B: for Accumulate kernels C is zeroed first.
// For TransposedB variants b must hold the transpose of B.
func (v MatMulVariant) Run(a []float64, rowsA, colsA int, b []float64, rowsB, colsB int, c []float64) error {
	if v.Semantics == Accumulate {
		// Validate before zeroing, so a rejected call leaves C untouched.
		if err := ValidateMatMul(v.Name, a, rowsA, colsA, b, rowsB, colsB, c); err != nil {
			return err
		}
		clear(c[:rowsA*colsB])
	}
	return v.Fn(a, rowsA, colsA, b, rowsB, colsB, c)
}

// MatMulVariants returns all matrix-matrix kernels bound to MatMulFn. The blocked kernels use blockSize,
// and the parallel one uses pool (nil for a per-call pool).
func MatMulVariants(blockSize int, pool *workerspool.Pool) []MatMulVariant {
	variants := []MatMulVariant{
		{Name: "naive", Semantics: Assign, Fn: MatMulNaive},
		{Name: "transposed", Semantics: Assign, TransposedB: true, Fn: MatMulTransposedB},
		{Name: "ikj", Semantics: Accumulate, Fn: MatMulIKJ},
		{Name: "blocked", Semantics: Accumulate,
			Fn: func(a []float64, rowsA, colsA int, b []float64, rowsB, colsB int, c []float64) error {
				if err := ValidateMatMul("MatMulBlocked", a, rowsA, colsA, b, rowsB, colsB, c); err != nil {
					return err
				}
				return MatMulBlocked(a, b, c, rowsA, colsA, colsB, blockSize)
			}},
		{Name: "blocked-transposed", Semantics: Accumulate, TransposedB: true,
			Fn: func(a []float64, rowsA, colsA int, bt []float64, rowsB, colsB int, c []float64) error {
				if err := ValidateMatMul("MatMulBlockedTransposedB", a, rowsA, colsA, bt, rowsB, colsB, c); err != nil {
					return err
				}
				return MatMulBlockedTransposedB(a, bt, c, rowsA, colsA, colsB, blockSize)
			}},
		{Name: "blocked-parallel", Semantics: Accumulate,
			Fn: func(a []float64, rowsA, colsA int, b []float64, rowsB, colsB int, c []float64) error {
				if err := ValidateMatMul("MatMulBlockedParallel", a, rowsA, colsA, b, rowsB, colsB, c); err != nil {
					return err
				}
				return MatMulBlockedParallel(pool, a, b, c, rowsA, colsA, colsB, blockSize)
			}},
	}
	for _, kernel := range simd.All() {
		variants = append(variants, MatMulVariant{
			Name:      "simd-" + kernel.Name(),
			Semantics: Accumulate,
			Fn: func(a []float64, rowsA, colsA int, b []float64, rowsB, colsB int, c []float64) error {
				return MatMulSIMDWith(kernel, a, rowsA, colsA, b, rowsB, colsB, c)
			},
		})
	}
	return variants
}

// MatVecFn is the common signature of the matrix-vector kernels.
type MatVecFn func(m []float64, rows, cols int, x, y []float64) error

// MatVecVariant is one matrix-vector kernel, with the layout it expects M in.
type MatVecVariant struct {
	Name   string
	Layout Layout
	Fn     MatVecFn
}

// MatVecVariants returns the matrix-vector kernels. Both assign.
func MatVecVariants() []MatVecVariant {
	return []MatVecVariant{
		{Name: "row-major", Layout: RowMajor, Fn: MatVecRowMajor},
		{Name: "col-major", Layout: ColMajor, Fn: MatVecColMajor},
	}
}
