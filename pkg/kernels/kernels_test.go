// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package kernels

import (
	"fmt"
	"runtime"
	"testing"

	"github.com/gomlx/matkernels/pkg/simd"
	"github.com/gomlx/matkernels/pkg/support/workerspool"
	"github.com/gomlx/matkernels/pkg/support/xslices"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
	"k8s.io/klog/v2"
)

func init() {
	klog.InitFlags(nil)
}

// Tolerances: relative for magnitudes > 1, absolute otherwise.
const (
	tolerance     = 1e-9
	simdTolerance = 1e-7
)

func randomMatrix(rows, cols int, seed uint64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	m := make([]float64, rows*cols)
	for ii := range m {
		m[ii] = 2*rng.Float64() - 1
	}
	return m
}

// testShapes are [rowsA, colsA, colsB], including degenerate and non-divisible ones.
var testShapes = [][3]int{
	{1, 1, 1}, {1, 5, 1}, {1, 1, 6}, {6, 1, 1}, {1, 7, 9}, {9, 7, 1},
	{2, 3, 2}, {3, 3, 7}, {7, 5, 7}, {8, 8, 8}, {13, 17, 11}, {33, 31, 29}, {64, 48, 40},
}

// blasMatMul is the reference C = A·B computed by gonum.
func blasMatMul(a []float64, rowsA, colsA int, b []float64, colsB int) []float64 {
	c := make([]float64, rowsA*colsB)
	blas64.Gemm(blas.NoTrans, blas.NoTrans, 1,
		blas64.General{Rows: rowsA, Cols: colsA, Stride: colsA, Data: a},
		blas64.General{Rows: colsA, Cols: colsB, Stride: colsB, Data: b},
		0,
		blas64.General{Rows: rowsA, Cols: colsB, Stride: colsB, Data: c})
	return c
}

func requireClose(t *testing.T, want, got []float64, relDelta float64, msgAndArgs ...any) {
	t.Helper()
	if !xslices.InRelDelta(want, got, relDelta) {
		diff, idx := xslices.MaxAbsDiff(want, got)
		require.Failf(t, "results differ", "max abs diff %g at index %d (want %g, got %g): %s",
			diff, idx, want[idx], got[idx], fmt.Sprint(msgAndArgs...))
	}
}

func TestConcreteScenario(t *testing.T) {
	a := []float64{
		1, 2, 3,
		4, 5, 6}
	v := []float64{1, 2, 3}
	y := make([]float64, 2)
	require.NoError(t, MatVecRowMajor(a, 2, 3, v, y))
	assert.Equal(t, []float64{14, 32}, y)

	aCol := must.M1(ToLayout(a, 2, 3, ColMajor))
	assert.Equal(t, []float64{1, 4, 2, 5, 3, 6}, aCol)
	y = xslices.SliceWithValue(2, 99.0)
	require.NoError(t, MatVecColMajor(aCol, 2, 3, v, y))
	assert.Equal(t, []float64{14, 32}, y)

	b := []float64{
		0.1, 0.2,
		0.3, 0.4,
		0.5, 0.6}
	want := []float64{2.2, 2.8, 4.9, 6.4}
	c := make([]float64, 4)
	require.NoError(t, MatMulNaive(a, 2, 3, b, 3, 2, c))
	assert.InDeltaSlice(t, want, c, 1e-12)

	for _, variant := range MatMulVariants(2, nil) {
		t.Run(variant.Name, func(t *testing.T) {
			operand := b
			if variant.TransposedB {
				operand = must.M1(ToLayout(b, 3, 2, ColMajor))
			}
			c := xslices.SliceWithValue(4, -1.0)
			require.NoError(t, variant.Run(a, 2, 3, operand, 3, 2, c))
			assert.InDeltaSlice(t, want, c, 1e-12)
		})
	}
}

func TestMatVecLayoutsAgree(t *testing.T) {
	for _, shape := range testShapes {
		rows, cols := shape[0], shape[1]
		m := randomMatrix(rows, cols, uint64(rows*100+cols))
		x := randomMatrix(1, cols, 7)
		want := make([]float64, rows)
		blas64.Gemv(blas.NoTrans, 1,
			blas64.General{Rows: rows, Cols: cols, Stride: cols, Data: m},
			blas64.Vector{N: cols, Inc: 1, Data: x}, 0,
			blas64.Vector{N: rows, Inc: 1, Data: want})

		for _, variant := range MatVecVariants() {
			buf := must.M1(ToLayout(m, rows, cols, variant.Layout))
			y := xslices.SliceWithValue(rows, 1e6) // Stale values must be overwritten.
			require.NoError(t, variant.Fn(buf, rows, cols, x, y))
			requireClose(t, want, y, tolerance, variant.Name, shape)
		}
	}
}

func TestMatMulVariantsAgree(t *testing.T) {
	for _, shape := range testShapes {
		rowsA, colsA, colsB := shape[0], shape[1], shape[2]
		a := randomMatrix(rowsA, colsA, 1)
		b := randomMatrix(colsA, colsB, 2)
		bt := must.M1(ToLayout(b, colsA, colsB, ColMajor))
		want := blasMatMul(a, rowsA, colsA, b, colsB)

		naive := make([]float64, rowsA*colsB)
		require.NoError(t, MatMulNaive(a, rowsA, colsA, b, colsA, colsB, naive))
		requireClose(t, want, naive, tolerance, "naive", shape)

		for _, blockSize := range []int{1, 3, 4, 16} {
			for _, variant := range MatMulVariants(blockSize, nil) {
				operand := b
				if variant.TransposedB {
					operand = bt
				}
				c := xslices.SliceWithValue(rowsA*colsB, 1e6)
				require.NoError(t, variant.Run(a, rowsA, colsA, operand, colsA, colsB, c))
				tol := tolerance
				if variant.Name != "naive" && variant.Name != "transposed" {
					tol = simdTolerance
				}
				requireClose(t, naive, c, tol, variant.Name, shape, " blockSize=", blockSize)
			}
		}
	}
}

func TestBlockedEveryBlockSize(t *testing.T) {
	const rowsA, colsA, colsB = 9, 11, 7
	a := randomMatrix(rowsA, colsA, 3)
	b := randomMatrix(colsA, colsB, 4)
	bt := must.M1(ToLayout(b, colsA, colsB, ColMajor))
	want := make([]float64, rowsA*colsB)
	require.NoError(t, MatMulNaive(a, rowsA, colsA, b, colsA, colsB, want))

	for blockSize := 1; blockSize <= 12; blockSize++ {
		c := make([]float64, rowsA*colsB)
		require.NoError(t, MatMulBlocked(a, b, c, rowsA, colsA, colsB, blockSize))
		requireClose(t, want, c, tolerance, "blocked, blockSize=", blockSize)

		c = make([]float64, rowsA*colsB)
		require.NoError(t, MatMulBlockedTransposedB(a, bt, c, rowsA, colsA, colsB, blockSize))
		requireClose(t, want, c, tolerance, "blocked-transposed, blockSize=", blockSize)
	}
}

func TestBlockedTransposedBNonSquare(t *testing.T) {
	// bt is indexed by colsA, not rowsA: a tall A would read past bt otherwise.
	const rowsA, colsA, colsB = 10, 3, 4
	a := randomMatrix(rowsA, colsA, 5)
	b := randomMatrix(colsA, colsB, 6)
	bt := must.M1(ToLayout(b, colsA, colsB, ColMajor))
	want := blasMatMul(a, rowsA, colsA, b, colsB)
	c := make([]float64, rowsA*colsB)
	require.NoError(t, MatMulBlockedTransposedB(a, bt, c, rowsA, colsA, colsB, 2))
	requireClose(t, want, c, tolerance)
}

func TestAccumulateContract(t *testing.T) {
	a := []float64{1, 2, 3, 4}
	b := []float64{1, 0, 0, 1}
	for _, variant := range MatMulVariants(1, workerspool.NewWithParallelism(2)) {
		c := []float64{10, 10, 10, 10}
		require.NoError(t, variant.Fn(a, 2, 2, b, 2, 2, c))
		switch variant.Semantics {
		case Assign:
			assert.Equalf(t, []float64{1, 2, 3, 4}, c, "%s assigns", variant.Name)
		case Accumulate:
			assert.Equalf(t, []float64{11, 12, 13, 14}, c, "%s accumulates", variant.Name)
		}
	}
	c := []float64{10, 10, 10, 10}
	require.NoError(t, MatMulIKJ(a, 2, 2, b, 2, 2, c))
	require.NoError(t, MatMulIKJ(a, 2, 2, b, 2, 2, c))
	assert.Equal(t, []float64{12, 14, 16, 18}, c)
}

func TestMatMulBlockedParallel(t *testing.T) {
	const rowsA, colsA, colsB = 37, 29, 41
	a := randomMatrix(rowsA, colsA, 8)
	b := randomMatrix(colsA, colsB, 9)
	for _, blockSize := range []int{1, 5, 8, 64} {
		want := make([]float64, rowsA*colsB)
		require.NoError(t, MatMulBlocked(a, b, want, rowsA, colsA, colsB, blockSize))
		for _, workers := range []int{0, 1, 2, runtime.NumCPU(), -1} {
			c := make([]float64, rowsA*colsB)
			pool := workerspool.NewWithParallelism(workers)
			require.NoError(t, MatMulBlockedParallel(pool, a, b, c, rowsA, colsA, colsB, blockSize))
			// Each element sees the same sequence of updates as in MatMulBlocked.
			require.Equalf(t, want, c, "blockSize=%d, workers=%d", blockSize, workers)
		}
		c := make([]float64, rowsA*colsB)
		require.NoError(t, MatMulBlockedParallel(nil, a, b, c, rowsA, colsA, colsB, blockSize))
		require.Equal(t, want, c)
	}
}

func TestMatMulBlockedParallelSharedPool(t *testing.T) {
	const n = 24
	pool := workerspool.NewWithParallelism(3)
	a := randomMatrix(n, n, 10)
	b := randomMatrix(n, n, 11)
	want := blasMatMul(a, n, n, b, n)
	errs := make(chan error, 4)
	results := make([][]float64, 4)
	for ii := range results {
		results[ii] = make([]float64, n*n)
		go func() {
			errs <- MatMulBlockedParallel(pool, a, b, results[ii], n, n, n, 5)
		}()
	}
	for range results {
		require.NoError(t, <-errs)
	}
	for _, c := range results {
		requireClose(t, want, c, tolerance)
	}
}

func TestOutputTiles(t *testing.T) {
	for _, tc := range [][3]int{{1, 1, 1}, {7, 5, 2}, {8, 8, 4}, {10, 3, 64}, {33, 17, 8}} {
		rows, cols, blockSize := tc[0], tc[1], tc[2]
		tiles, err := OutputTiles(rows, cols, blockSize)
		require.NoError(t, err)
		wantNum := ((rows + blockSize - 1) / blockSize) * ((cols + blockSize - 1) / blockSize)
		require.Len(t, tiles, wantNum)

		total := 0
		for ii, tile := range tiles {
			total += tile.Size()
			assert.LessOrEqual(t, tile.RowEnd, rows)
			assert.LessOrEqual(t, tile.ColEnd, cols)
			for _, other := range tiles[ii+1:] {
				require.Falsef(t, tile.Overlaps(other), "%s overlaps %s", tile, other)
			}
		}
		assert.Equal(t, rows*cols, total, "tiles must cover the whole output")
		for i := range rows {
			for j := range cols {
				owners := 0
				for _, tile := range tiles {
					if tile.Contains(i, j) {
						owners++
					}
				}
				require.Equalf(t, 1, owners, "element [%d, %d]", i, j)
			}
		}
	}

	assert.True(t, Tile{0, 2, 0, 2}.Overlaps(Tile{1, 3, 1, 3}))
	assert.False(t, Tile{0, 2, 0, 2}.Overlaps(Tile{2, 4, 0, 2}))
	_, err := OutputTiles(4, 4, 0)
	require.ErrorIs(t, err, ErrInvalidBlockSize)
	_, err = OutputTiles(0, 4, 2)
	require.ErrorIs(t, err, ErrInvalidDimension)
}

func TestMatMulSIMDTail(t *testing.T) {
	// colsB not a multiple of any vector width.
	for _, colsB := range []int{1, 2, 3, 5, 7, 9, 15} {
		const rowsA, colsA = 3, 4
		a := randomMatrix(rowsA, colsA, 12)
		b := randomMatrix(colsA, colsB, 13)
		want := blasMatMul(a, rowsA, colsA, b, colsB)
		for _, kernel := range simd.All() {
			c := make([]float64, rowsA*colsB)
			require.NoError(t, MatMulSIMDWith(kernel, a, rowsA, colsA, b, colsA, colsB, c))
			requireClose(t, want, c, simdTolerance, kernel.Name(), " colsB=", colsB)
		}
		c := make([]float64, rowsA*colsB)
		require.NoError(t, MatMulSIMD(a, rowsA, colsA, b, colsA, colsB, c))
		requireClose(t, want, c, simdTolerance, "best, colsB=", colsB)
	}

	if k4, err := simd.ForLanes(4); err == nil {
		a := randomMatrix(5, 6, 14)
		b := randomMatrix(6, 7, 15)
		c := make([]float64, 5*7)
		require.NoError(t, MatMulSIMDWith(k4, a, 5, 6, b, 6, 7, c))
		requireClose(t, blasMatMul(a, 5, 6, b, 7), c, simdTolerance)
	} else {
		t.Logf("No 4-lane kernel on this CPU: %v", err)
	}
	require.Error(t, MatMulSIMDWith(nil, []float64{1}, 1, 1, []float64{1}, 1, 1, []float64{0}))
}

func TestSuggestBlockSize(t *testing.T) {
	assert.Equal(t, MinBlockSize, SuggestBlockSize(0))
	assert.Equal(t, 32, SuggestBlockSize(32*1024))
	assert.Equal(t, 64, SuggestBlockSize(128*1024))
	assert.Equal(t, 128, SuggestBlockSize(1024*1024))
	assert.Equal(t, MaxBlockSize, SuggestBlockSize(1<<40))
}

func TestTranspose(t *testing.T) {
	src := []float64{1, 2, 3, 4, 5, 6} // [[1,2,3],[4,5,6]]
	dst := make([]float64, 6)
	require.NoError(t, Transpose(src, 2, 3, dst))
	assert.Equal(t, []float64{1, 4, 2, 5, 3, 6}, dst)
	assert.Equal(t, 5, ColMajor.Index(1, 2, 2, 3))
	assert.Equal(t, 5, RowMajor.Index(1, 2, 2, 3))
	assert.Equal(t, src[RowMajor.Index(1, 0, 2, 3)], dst[ColMajor.Index(1, 0, 2, 3)])

	rowMajorCopy := must.M1(ToLayout(src, 2, 3, RowMajor))
	assert.Equal(t, src, rowMajorCopy)
	require.ErrorIs(t, Transpose(src, 2, 3, make([]float64, 5)), ErrBufferTooShort)
	_, err := ToLayout(nil, 2, 3, RowMajor)
	require.ErrorIs(t, err, ErrNilBuffer)
	assert.Equal(t, "ColMajor", ColMajor.String())
	assert.Equal(t, "accumulate", Accumulate.String())
}
