// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package kernels

import (
	"math"

	"github.com/pkg/errors"
)

// operand is a named buffer holding a [rows, cols] matrix. Vectors have rows=1.
type operand struct {
	name       string
	buf        []float64
	rows, cols int
}

// size returns the number of elements required by the operand, and false if it overflows int.
// Dimensions must have been checked to be positive.
func (op operand) size() (int, bool) {
	if op.cols > math.MaxInt/op.rows {
		return 0, false
	}
	return op.rows * op.cols, true
}

// dimension is a named matrix dimension.
type dimension struct {
	name  string
	value int
}

// ValidateMatVec checks the arguments of a matrix-vector multiplication y = M·x, with M of shape
// [rows, cols], x of length cols and y of length rows.
//
// The checks are, in order: nil buffers, non-positive dimensions and short buffers. Dimensions whose
// product overflows int are reported as short buffers. The returned
// error wraps one of ErrNilBuffer, ErrInvalidDimension or ErrBufferTooShort.
func ValidateMatVec(kernel string, m []float64, rows, cols int, x, y []float64) error {
	operands := []operand{{"M", m, rows, cols}, {"x", x, 1, cols}, {"y", y, 1, rows}}
	if err := checkNil(kernel, operands); err != nil {
		return err
	}
	if err := checkDims(kernel, []dimension{{"rows", rows}, {"cols", cols}}); err != nil {
		return err
	}
	return checkLens(kernel, operands)
}

// ValidateMatMul checks the arguments of a matrix multiplication C = A·B, with A of shape [rowsA, colsA],
// B of shape [rowsB, colsB] and C of shape [rowsA, colsB].
//
// The checks are, in order: nil buffers, non-positive dimensions, colsA != rowsB and short buffers.
// The returned error wraps one of ErrNilBuffer, ErrInvalidDimension, ErrDimensionMismatch or ErrBufferTooShort.
//
// For kernels taking B pre-transposed, b is the transposed buffer: it has the same number of elements.
func ValidateMatMul(kernel string, a []float64, rowsA, colsA int, b []float64, rowsB, colsB int, c []float64) error {
	operands := []operand{{"A", a, rowsA, colsA}, {"B", b, rowsB, colsB}, {"C", c, rowsA, colsB}}
	if err := checkNil(kernel, operands); err != nil {
		return err
	}
	dims := []dimension{{"rowsA", rowsA}, {"colsA", colsA}, {"rowsB", rowsB}, {"colsB", colsB}}
	if err := checkDims(kernel, dims); err != nil {
		return err
	}
	if colsA != rowsB {
		return errors.Wrapf(ErrDimensionMismatch, "%s: colsA=%d != rowsB=%d", kernel, colsA, rowsB)
	}
	return checkLens(kernel, operands)
}

// ValidateBlockSize checks the block size of a tiled kernel.
func ValidateBlockSize(kernel string, blockSize int) error {
	if blockSize <= 0 {
		return errors.Wrapf(ErrInvalidBlockSize, "%s: blockSize=%d", kernel, blockSize)
	}
	return nil
}

func checkNil(kernel string, operands []operand) error {
	for _, op := range operands {
		if op.buf == nil {
			return errors.Wrapf(ErrNilBuffer, "%s: buffer %s is nil", kernel, op.name)
		}
	}
	return nil
}

func checkDims(kernel string, dims []dimension) error {
	for _, dim := range dims {
		if dim.value <= 0 {
			return errors.Wrapf(ErrInvalidDimension, "%s: %s=%d", kernel, dim.name, dim.value)
		}
	}
	return nil
}

// checkLens must be called after checkDims.
func checkLens(kernel string, operands []operand) error {
	for _, op := range operands {
		size, ok := op.size()
		if !ok {
			return errors.Wrapf(ErrBufferTooShort, "%s: buffer %s has %d elements, %dx%d required (overflows int)",
				kernel, op.name, len(op.buf), op.rows, op.cols)
		}
		if len(op.buf) < size {
			return errors.Wrapf(ErrBufferTooShort, "%s: buffer %s has %d elements, %d required",
				kernel, op.name, len(op.buf), size)
		}
	}
	return nil
}
