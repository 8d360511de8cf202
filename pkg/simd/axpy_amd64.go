// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

//go:build amd64 && !noasm

package simd

import (
	"runtime"

	"golang.org/x/sys/cpu"
)

// axpyFMA4 is implemented in axpy_amd64.s: y[j] += alpha*x[j] for j in [0, n), n a multiple of 4,
// using 256-bit AVX registers and fused multiply-add.
//
//go:noescape
func axpyFMA4(alpha float64, x, y *float64, n int)

// AVX2FMA is the 4-lane (256 bits) implementation. It is nil if the CPU doesn't support AVX2 and FMA.
var AVX2FMA Kernel

func init() {
	if !cpu.X86.HasAVX2 || !cpu.X86.HasFMA {
		return
	}
	AVX2FMA = &vectorKernel{
		name:  "avx2fma",
		lanes: 4,
		body: func(alpha float64, x, y []float64, n int) {
			axpyFMA4(alpha, &x[0], &y[0], n)
			runtime.KeepAlive(x)
			runtime.KeepAlive(y)
		},
	}
	Register(AVX2FMA, PrioritySIMD)
}
