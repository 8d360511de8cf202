// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package kernels

import "fmt"

// Layout of a matrix in its flat buffer.
type Layout int

const (
	// RowMajor stores element [i, j] at buffer[i*cols+j].
	RowMajor Layout = iota

	// ColMajor stores element [i, j] at buffer[j*rows+i].
	ColMajor
)

// String implements fmt.Stringer.
func (l Layout) String() string {
	switch l {
	case RowMajor:
		return "RowMajor"
	case ColMajor:
		return "ColMajor"
	default:
		return fmt.Sprintf("Layout(%d)", int(l))
	}
}

// Index returns the position of element [i, j] of a [rows, cols] matrix with this layout.
func (l Layout) Index(i, j, rows, cols int) int {
	if l == ColMajor {
		return j*rows + i
	}
	return i*cols + j
}

// Transpose writes into dst the transpose of the row-major [rows, cols] matrix src, that is, a row-major
// [cols, rows] matrix. It is a caller-side helper to build the operand of the *TransposedB kernels.
//
// The same buffer reinterpreted is the column-major layout of src, so Transpose also converts a
// row-major matrix to column-major.
func Transpose(src []float64, rows, cols int, dst []float64) error {
	const name = "Transpose"
	operands := []operand{{"src", src, rows, cols}, {"dst", dst, rows, cols}}
	if err := checkNil(name, operands); err != nil {
		return err
	}
	if err := checkDims(name, []dimension{{"rows", rows}, {"cols", cols}}); err != nil {
		return err
	}
	if err := checkLens(name, operands); err != nil {
		return err
	}
	for i := range rows {
		for j := range cols {
			dst[j*rows+i] = src[i*cols+j]
		}
	}
	return nil
}

// ToLayout returns a newly allocated copy of the row-major [rows, cols] matrix src in the given layout.
func ToLayout(src []float64, rows, cols int, layout Layout) ([]float64, error) {
	const name = "ToLayout"
	operands := []operand{{"src", src, rows, cols}}
	if err := checkNil(name, operands); err != nil {
		return nil, err
	}
	if err := checkDims(name, []dimension{{"rows", rows}, {"cols", cols}}); err != nil {
		return nil, err
	}
	if err := checkLens(name, operands); err != nil {
		return nil, err
	}
	dst := make([]float64, rows*cols)
	if layout == ColMajor {
		if err := Transpose(src, rows, cols, dst); err != nil {
			return nil, err
		}
		return dst, nil
	}
	copy(dst, src)
	return dst, nil
}
