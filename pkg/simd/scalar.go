// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package simd

// Scalar is the portable implementation, one element at a time.
var Scalar Kernel = scalarKernel{}

func init() {
	Register(Scalar, PriorityBase)
}

type scalarKernel struct{}

func (scalarKernel) Name() string { return "scalar" }

func (scalarKernel) Lanes() int { return 1 }

func (scalarKernel) Axpy(alpha float64, x, y []float64) {
	axpyTail(alpha, x, y, 0)
}

// axpyTail computes y[j] += alpha*x[j] for j in [start, len(y)).
func axpyTail(alpha float64, x, y []float64, start int) {
	x = x[:len(y)]
	for j := start; j < len(y); j++ {
		y[j] += alpha * x[j]
	}
}

// vectorKernel wraps an assembly body that handles a multiple of lanes elements,
// and completes the remainder with scalar code.
type vectorKernel struct {
	name  string
	lanes int

	// body processes exactly n elements, n a multiple of lanes.
	body func(alpha float64, x, y []float64, n int)
}

func (k *vectorKernel) Name() string { return k.name }

func (k *vectorKernel) Lanes() int { return k.lanes }

func (k *vectorKernel) Axpy(alpha float64, x, y []float64) {
	n := len(y)
	x = x[:n] // Panics early if x is too short.
	vecN := n &^ (k.lanes - 1)
	if vecN > 0 {
		k.body(alpha, x, y, vecN)
	}
	axpyTail(alpha, x, y, vecN)
}
