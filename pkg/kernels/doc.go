// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package kernels implements dense float64 matrix-vector and matrix-matrix multiplication in several
// algorithmic variants, each one differing only in its memory-access pattern:
//
//   - MatVecRowMajor, MatVecColMajor: y = M·x, with M in row-major or column-major layout.
//   - MatMulNaive, MatMulTransposedB: C = A·B with the i,j,k loop order, reading B column-strided or
//     reading a caller-transposed Bt row-contiguously.
//   - MatMulIKJ: i,k,j loop order, broadcasting A[i,k] over a row of B.
//   - MatMulBlocked, MatMulBlockedTransposedB: cubic tiles of a configurable side.
//   - MatMulBlockedParallel: the blocked kernel with its disjoint output tiles spread over a worker pool.
//   - MatMulSIMD: the i,k,j kernel with its inner loop vectorized, see package simd.
//
// Matrices are plain []float64 buffers with their dimensions passed alongside. The layout is a property
// of the call, see Layout. All buffers are owned by the caller: kernels never allocate, retain or free them.
//
// # Assign and accumulate kernels
//
// MatVec*, MatMulNaive and MatMulTransposedB assign: they overwrite every element of the result.
// MatMulIKJ, the blocked kernels and MatMulSIMD accumulate into C (C += A·B), so C must be zeroed by the
// caller (or deliberately pre-seeded). MatMulVariant.Semantics carries this distinction, and MatMulVariant.Run zeroes
// C for accumulate kernels.
//
// # Errors
//
// Every kernel validates its arguments independently, before reading or writing any element, and returns
// an error wrapping ErrNilBuffer, ErrInvalidDimension, ErrDimensionMismatch, ErrBufferTooShort or
// ErrInvalidBlockSize. On error the result buffer is untouched.
package kernels
