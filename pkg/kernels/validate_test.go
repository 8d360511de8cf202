// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package kernels

import (
	"math"
	"strconv"
	"testing"

	"github.com/gomlx/matkernels/pkg/support/workerspool"
	"github.com/gomlx/matkernels/pkg/support/xslices"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const untouched = 42.0

func TestMatVecValidation(t *testing.T) {
	m := []float64{1, 2, 3, 4, 5, 6}
	x := []float64{1, 2, 3}
	testCases := []struct {
		name       string
		m          []float64
		rows, cols int
		x, y       []float64
		wantErr    error
	}{
		{"nil matrix", nil, 2, 3, x, make([]float64, 2), ErrNilBuffer},
		{"nil x", m, 2, 3, nil, make([]float64, 2), ErrNilBuffer},
		{"nil y", m, 2, 3, x, nil, ErrNilBuffer},
		{"zero rows", m, 0, 3, x, make([]float64, 2), ErrInvalidDimension},
		{"negative cols", m, 2, -1, x, make([]float64, 2), ErrInvalidDimension},
		{"short matrix", m[:5], 2, 3, x, make([]float64, 2), ErrBufferTooShort},
		{"short x", m, 2, 3, x[:2], make([]float64, 2), ErrBufferTooShort},
		{"short y", m, 2, 3, x, make([]float64, 1), ErrBufferTooShort},
		{"overflowing dims", m, math.MaxInt / 3, math.MaxInt / 3, x, make([]float64, 2), ErrBufferTooShort},
	}
	for _, variant := range MatVecVariants() {
		for _, tc := range testCases {
			t.Run(variant.Name+"/"+tc.name, func(t *testing.T) {
				copy(tc.y, xslices.SliceWithValue(len(tc.y), untouched))
				err := variant.Fn(tc.m, tc.rows, tc.cols, tc.x, tc.y)
				require.ErrorIs(t, err, tc.wantErr)
				for _, v := range tc.y {
					assert.Equal(t, untouched, v, "result buffer modified by rejected call")
				}
			})
		}
	}
}

func TestMatMulValidation(t *testing.T) {
	a := []float64{1, 2, 3, 4, 5, 6}               // 2x3
	b := []float64{1, 2, 3, 4, 5, 6}               // 3x2
	bMismatch := []float64{1, 2, 3, 4, 5, 6, 7, 8} // 4x2
	c := func() []float64 { return make([]float64, 4) }
	testCases := []struct {
		name         string
		a            []float64
		rowsA, colsA int
		b            []float64
		rowsB, colsB int
		c            []float64
		wantErr      error
	}{
		{name: "nil A", a: nil, rowsA: 2, colsA: 3, b: b, rowsB: 3, colsB: 2, c: c(), wantErr: ErrNilBuffer},
		{name: "nil B", a: a, rowsA: 2, colsA: 3, b: nil, rowsB: 3, colsB: 2, c: c(), wantErr: ErrNilBuffer},
		{name: "nil C", a: a, rowsA: 2, colsA: 3, b: b, rowsB: 3, colsB: 2, c: nil, wantErr: ErrNilBuffer},
		{name: "zero rowsA", a: a, rowsA: 0, colsA: 3, b: b, rowsB: 3, colsB: 2, c: c(), wantErr: ErrInvalidDimension},
		{name: "negative colsB", a: a, rowsA: 2, colsA: 3, b: b, rowsB: 3, colsB: -1, c: c(), wantErr: ErrInvalidDimension},
		{name: "colsA=3, rowsB=4", a: a, rowsA: 2, colsA: 3, b: bMismatch, rowsB: 4, colsB: 2, c: c(),
			wantErr: ErrDimensionMismatch},
		{name: "short A", a: a[:5], rowsA: 2, colsA: 3, b: b, rowsB: 3, colsB: 2, c: c(), wantErr: ErrBufferTooShort},
		{name: "short B", a: a, rowsA: 2, colsA: 3, b: b[:4], rowsB: 3, colsB: 2, c: c(), wantErr: ErrBufferTooShort},
		{name: "short C", a: a, rowsA: 2, colsA: 3, b: b, rowsB: 3, colsB: 2, c: make([]float64, 3),
			wantErr: ErrBufferTooShort},
		{name: "overflowing dims", a: a, rowsA: math.MaxInt / 3, colsA: math.MaxInt / 3, b: b,
			rowsB: math.MaxInt / 3, colsB: math.MaxInt / 3, c: c(), wantErr: ErrBufferTooShort},
	}
	for _, variant := range MatMulVariants(2, workerspool.NewWithParallelism(2)) {
		for _, tc := range testCases {
			t.Run(variant.Name+"/"+tc.name, func(t *testing.T) {
				copy(tc.c, xslices.SliceWithValue(len(tc.c), untouched))
				// Both the raw kernel and Run (which zeroes accumulate outputs) must reject before writing.
				require.ErrorIs(t, variant.Fn(tc.a, tc.rowsA, tc.colsA, tc.b, tc.rowsB, tc.colsB, tc.c), tc.wantErr)
				require.ErrorIs(t, variant.Run(tc.a, tc.rowsA, tc.colsA, tc.b, tc.rowsB, tc.colsB, tc.c), tc.wantErr)
				for _, v := range tc.c {
					assert.Equal(t, untouched, v, "result buffer modified by rejected call")
				}
			})
		}
	}
}

func TestBlockedValidation(t *testing.T) {
	a := []float64{1, 2, 3, 4, 5, 6}
	b := []float64{1, 2, 3, 4, 5, 6}
	c := xslices.SliceWithValue(4, untouched)
	pool := workerspool.New()
	require.ErrorIs(t, MatMulBlocked(a, b, c, 2, 3, 2, 0), ErrInvalidBlockSize)
	require.ErrorIs(t, MatMulBlockedTransposedB(a, b, c, 2, 3, 2, -4), ErrInvalidBlockSize)
	require.ErrorIs(t, MatMulBlockedParallel(pool, a, b, c, 2, 3, 2, 0), ErrInvalidBlockSize)
	require.ErrorIs(t, MatMulBlocked(a, b, c, 2, 4, 2, 2), ErrBufferTooShort)
	require.ErrorIs(t, MatMulBlockedParallel(pool, nil, b, c, 2, 3, 2, 2), ErrNilBuffer)
	assert.Equal(t, xslices.SliceWithValue(4, untouched), c)

	err := MatMulBlocked(a, b, c, 2, 3, 2, 0)
	assert.Contains(t, err.Error(), "MatMulBlocked")
	assert.Contains(t, err.Error(), "blockSize=0")
}

func TestValidationOrder(t *testing.T) {
	// nil buffers are reported before bad dimensions, which are reported before mismatches.
	err := ValidateMatMul("test", nil, 0, 3, []float64{1}, 4, 1, []float64{1})
	require.ErrorIs(t, err, ErrNilBuffer)
	err = ValidateMatMul("test", []float64{1}, 0, 3, []float64{1}, 4, 1, []float64{1})
	require.ErrorIs(t, err, ErrInvalidDimension)
	err = ValidateMatMul("test", []float64{1}, 1, 3, []float64{1}, 4, 1, []float64{1})
	require.ErrorIs(t, err, ErrDimensionMismatch)
	assert.Contains(t, err.Error(), "colsA=3 != rowsB=4")
	require.NoError(t, ValidateMatVec("test", []float64{1, 2}, 1, 2, []float64{1, 1}, []float64{0}))
}

func TestValidationOverflow(t *testing.T) {
	// big*big wraps around to exactly 0, so the element counts must not be computed with plain products.
	big := 1 << (strconv.IntSize / 2)
	one := []float64{1}
	for _, variant := range MatMulVariants(2, workerspool.NewWithParallelism(2)) {
		c := []float64{untouched}
		require.ErrorIs(t, variant.Run(one, big, big, one, big, big, c), ErrBufferTooShort, variant.Name)
		assert.Equal(t, untouched, c[0])
	}
	for _, variant := range MatVecVariants() {
		y := []float64{untouched}
		require.ErrorIs(t, variant.Fn(one, big, big, one, y), ErrBufferTooShort, variant.Name)
		assert.Equal(t, untouched, y[0])
	}
	err := ValidateMatMul("test", one, big, big, one, big, big, one)
	require.ErrorIs(t, err, ErrBufferTooShort)
	assert.Contains(t, err.Error(), "overflows int")

	require.ErrorIs(t, Transpose(one, big, big, one), ErrBufferTooShort)
	_, err = ToLayout(one, big, big, ColMajor)
	require.ErrorIs(t, err, ErrBufferTooShort)
	_, err = ToLayout(one, math.MaxInt/3, math.MaxInt/3, RowMajor)
	require.ErrorIs(t, err, ErrBufferTooShort)
}
