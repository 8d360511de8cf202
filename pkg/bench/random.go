// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package bench

import (
	"golang.org/x/exp/rand"
)

// FillRandom fills buf with values uniformly distributed in [-1, 1), deterministically for a given seed.
func FillRandom(buf []float64, seed uint64) {
	rng := rand.New(rand.NewSource(seed))
	for ii := range buf {
		buf[ii] = 2*rng.Float64() - 1
	}
}

// RandomMatrix returns a newly allocated [rows, cols] matrix filled by FillRandom.
func RandomMatrix(rows, cols int, seed uint64) []float64 {
	m := make([]float64, rows*cols)
	FillRandom(m, seed)
	return m
}
