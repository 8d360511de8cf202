// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

//go:build arm64 && !noasm

package simd

import (
	"runtime"

	"golang.org/x/sys/cpu"
)

// axpyNEON2 is implemented in axpy_arm64.s: y[j] += alpha*x[j] for j in [0, n), n a multiple of 2,
// using 128-bit NEON registers and fused multiply-add.
//
//go:noescape
func axpyNEON2(alpha float64, x, y *float64, n int)

// NEON is the 2-lane (128 bits) implementation. It is nil if the CPU doesn't support ASIMD.
var NEON Kernel

func init() {
	// ASIMD is mandatory on ARMv8, but some emulators don't report it.
	if !cpu.ARM64.HasASIMD {
		return
	}
	NEON = &vectorKernel{
		name:  "neon",
		lanes: 2,
		body: func(alpha float64, x, y []float64, n int) {
			axpyNEON2(alpha, &x[0], &y[0], n)
			runtime.KeepAlive(x)
			runtime.KeepAlive(y)
		},
	}
	Register(NEON, PrioritySIMD)
}
