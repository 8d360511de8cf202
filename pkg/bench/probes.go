// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package bench

// Probes used by the "inline" and "alignment" experiments. They are not part of the kernels package:
// they exist only to measure the cost of a function call in the inner loop, and the effect of buffer
// alignment on a streaming loop.

func mulInline(a, b float64) float64 { return a * b }

//go:noinline
func mulNoInline(a, b float64) float64 { return a * b }

// probeFn is the common signature of the probes. Matrix-vector probes take x as b and ignore colsB.
//
// Passing the multiply helper as a function value would prevent inlining in both cases, so each
// probe is written twice.
type probeFn func(a []float64, rowsA, colsA int, b []float64, colsB int, c []float64)

func matVecRowInline(m []float64, rows, cols int, x []float64, _ int, y []float64) {
	for i := range rows {
		var acc float64
		for j := range cols {
			acc += mulInline(m[i*cols+j], x[j])
		}
		y[i] = acc
	}
}

func matVecRowNoInline(m []float64, rows, cols int, x []float64, _ int, y []float64) {
	for i := range rows {
		var acc float64
		for j := range cols {
			acc += mulNoInline(m[i*cols+j], x[j])
		}
		y[i] = acc
	}
}

func matVecColInline(m []float64, rows, cols int, x []float64, _ int, y []float64) {
	for i := range rows {
		var acc float64
		for j := range cols {
			acc += mulInline(m[j*rows+i], x[j])
		}
		y[i] = acc
	}
}

func matVecColNoInline(m []float64, rows, cols int, x []float64, _ int, y []float64) {
	for i := range rows {
		var acc float64
		for j := range cols {
			acc += mulNoInline(m[j*rows+i], x[j])
		}
		y[i] = acc
	}
}

func matMulNaiveInline(a []float64, rowsA, colsA int, b []float64, colsB int, c []float64) {
	for i := range rowsA {
		for j := range colsB {
			var acc float64
			for k := range colsA {
				acc += mulInline(a[i*colsA+k], b[k*colsB+j])
			}
			c[i*colsB+j] = acc
		}
	}
}

func matMulNaiveNoInline(a []float64, rowsA, colsA int, b []float64, colsB int, c []float64) {
	for i := range rowsA {
		for j := range colsB {
			var acc float64
			for k := range colsA {
				acc += mulNoInline(a[i*colsA+k], b[k*colsB+j])
			}
			c[i*colsB+j] = acc
		}
	}
}

func matMulTransposedInline(a []float64, rowsA, colsA int, bt []float64, colsB int, c []float64) {
	for i := range rowsA {
		for j := range colsB {
			var acc float64
			for k := range colsA {
				acc += mulInline(a[i*colsA+k], bt[j*colsA+k])
			}
			c[i*colsB+j] = acc
		}
	}
}

func matMulTransposedNoInline(a []float64, rowsA, colsA int, bt []float64, colsB int, c []float64) {
	for i := range rowsA {
		for j := range colsB {
			var acc float64
			for k := range colsA {
				acc += mulNoInline(a[i*colsA+k], bt[j*colsA+k])
			}
			c[i*colsB+j] = acc
		}
	}
}

// inlineProbe is one of the probes above, and whether its operand is a vector and/or transposed.
type inlineProbe struct {
	name        string
	inlined     bool
	matVec      bool
	colMajor    bool
	transposedB bool
	fn          probeFn
}

var inlineProbes = []inlineProbe{
	{name: "mv-row", inlined: true, matVec: true, fn: matVecRowInline},
	{name: "mv-row", inlined: false, matVec: true, fn: matVecRowNoInline},
	{name: "mv-col", inlined: true, matVec: true, colMajor: true, fn: matVecColInline},
	{name: "mv-col", inlined: false, matVec: true, colMajor: true, fn: matVecColNoInline},
	{name: "mm-naive", inlined: true, fn: matMulNaiveInline},
	{name: "mm-naive", inlined: false, fn: matMulNaiveNoInline},
	{name: "mm-transposed", inlined: true, transposedB: true, fn: matMulTransposedInline},
	{name: "mm-transposed", inlined: false, transposedB: true, fn: matMulTransposedNoInline},
}

// squarePlus computes out[i] = in[i] + in[i]*in[i], a streaming loop bound by memory bandwidth.
func squarePlus(in, out []float64) {
	out = out[:len(in)]
	for i, v := range in {
		out[i] = v + v*v
	}
}
