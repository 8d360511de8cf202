// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package kernels

// MatVecRowMajor computes y = M·x, where M is a row-major [rows, cols] matrix, x has cols elements
// and y has rows elements.
//
// M is read row after row, in storage order. Every element of y is overwritten.
func MatVecRowMajor(m []float64, rows, cols int, x, y []float64) error {
	if err := ValidateMatVec("MatVecRowMajor", m, rows, cols, x, y); err != nil {
		return err
	}
	x = x[:cols]
	for i := range rows {
		row := m[i*cols : (i+1)*cols]
		var sum float64
		for j, v := range row {
			sum += v * x[j]
		}
		y[i] = sum
	}
	return nil
}

// MatVecColMajor computes y = M·x, where M is a column-major [rows, cols] matrix (element [i, j] at
// m[j*rows+i]), x has cols elements and y has rows elements.
//
// M is read column after column, in storage order: y is zeroed and then each column, scaled by
// x[j], is added to it. Every element of y is overwritten.
func MatVecColMajor(m []float64, rows, cols int, x, y []float64) error {
	if err := ValidateMatVec("MatVecColMajor", m, rows, cols, x, y); err != nil {
		return err
	}
	y = y[:rows]
	for i := range y {
		y[i] = 0
	}
	for j := range cols {
		col := m[j*rows : (j+1)*rows]
		xj := x[j]
		for i, v := range col {
			y[i] += v * xj
		}
	}
	return nil
}
