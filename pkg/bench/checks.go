// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package bench

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/gomlx/matkernels/pkg/kernels"
	"github.com/gomlx/matkernels/pkg/support/workerspool"
	"github.com/gomlx/matkernels/pkg/support/xslices"
)

// Check is the outcome of one correctness check of a kernel.
type Check struct {
	Name   string
	Passed bool
	Detail string
}

// CheckTolerance is the relative tolerance used when comparing kernels to the reference results.
const CheckTolerance = 1e-9

// Operands of the fixed scenario, with hand-computed results.
var (
	scenarioA    = []float64{1, 2, 3, 4, 5, 6} // [2, 3]
	scenarioX    = []float64{1, 2, 3}
	scenarioAX   = []float64{14, 32}
	scenarioB    = []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6} // [3, 2]
	scenarioBT   = []float64{0.1, 0.3, 0.5, 0.2, 0.4, 0.6} // [2, 3]
	scenarioAB   = []float64{2.2, 2.8, 4.9, 6.4}
	agreementDim = [3]int{37, 29, 23} // rowsA, colsA (= rowsB), colsB: none divides the others.
)

// RunChecks verifies every kernel variant: first on a small hand-computed scenario, then against the naive
// kernel on random non-square operands.
func RunChecks(blockSize int, pool *workerspool.Pool, seed uint64) []Check {
	var checks []Check
	for _, v := range kernels.MatVecVariants() {
		checks = append(checks, checkMatVecScenario(v))
	}
	variants := kernels.MatMulVariants(blockSize, pool)
	for _, v := range variants {
		checks = append(checks, checkMatMulScenario(v))
	}
	checks = append(checks, checkMatVecAgreement(seed)...)
	checks = append(checks, checkMatMulAgreement(variants, seed)...)
	return checks
}

// AllPassed reports whether all checks passed.
func AllPassed(checks []Check) bool {
	for _, check := range checks {
		if !check.Passed {
			return false
		}
	}
	return true
}

// RenderChecks renders the checks as a table, with the failed ones in red.
func RenderChecks(checks []Check) string {
	table := newStyledTable([]string{"Check", "Result", "Detail"}, lipgloss.Left, lipgloss.Center, lipgloss.Left)
	for _, check := range checks {
		result := "pass"
		if !check.Passed {
			result = "FAIL"
		}
		table.row(!check.Passed, check.Name, result, check.Detail)
	}
	return table.render()
}

// compare builds a Check comparing got to want.
func compare(name string, got, want []float64, err error) Check {
	if err != nil {
		return Check{Name: name, Detail: err.Error()}
	}
	if len(got) != len(want) {
		return Check{Name: name, Detail: fmt.Sprintf("got %d values, wanted %d", len(got), len(want))}
	}
	diff, index := xslices.MaxAbsDiff(got, want)
	check := Check{Name: name, Passed: xslices.InRelDelta(got, want, CheckTolerance)}
	if index >= 0 {
		check.Detail = fmt.Sprintf("max |diff|=%.3g at #%d", diff, index)
	}
	return check
}

func checkMatVecScenario(v kernels.MatVecVariant) Check {
	name := fmt.Sprintf("mv-%s: scenario", v.Name)
	m, err := kernels.ToLayout(scenarioA, 2, 3, v.Layout)
	if err != nil {
		return compare(name, nil, nil, err)
	}
	y := make([]float64, 2)
	err = v.Fn(m, 2, 3, scenarioX, y)
	return compare(name, y, scenarioAX, err)
}

func checkMatMulScenario(v kernels.MatMulVariant) Check {
	name := fmt.Sprintf("mm-%s: scenario", v.Name)
	b := scenarioB
	if v.TransposedB {
		b = scenarioBT
	}
	c := make([]float64, 4)
	err := v.Run(scenarioA, 2, 3, b, 3, 2, c)
	return compare(name, c, scenarioAB, err)
}

func checkMatVecAgreement(seed uint64) []Check {
	rows, cols := agreementDim[0], agreementDim[1]
	m := RandomMatrix(rows, cols, seed)
	x := RandomMatrix(1, cols, seed+1)
	variants := kernels.MatVecVariants()
	var want []float64
	checks := make([]Check, 0, len(variants))
	for _, v := range variants {
		name := fmt.Sprintf("mv-%s: agrees [%d, %d]", v.Name, rows, cols)
		mLayout, err := kernels.ToLayout(m, rows, cols, v.Layout)
		y := make([]float64, rows)
		if err == nil {
			err = v.Fn(mLayout, rows, cols, x, y)
		}
		if want == nil && err == nil {
			want = y
		}
		checks = append(checks, compare(name, y, want, err))
	}
	return checks
}

func checkMatMulAgreement(variants []kernels.MatMulVariant, seed uint64) []Check {
	rowsA, colsA, colsB := agreementDim[0], agreementDim[1], agreementDim[2]
	a := RandomMatrix(rowsA, colsA, seed)
	b := RandomMatrix(colsA, colsB, seed+1)
	bt := make([]float64, len(b))
	checks := make([]Check, 0, len(variants))
	want := make([]float64, rowsA*colsB)
	if err := kernels.MatMulNaive(a, rowsA, colsA, b, colsA, colsB, want); err != nil {
		return append(checks, Check{Name: "mm-naive: reference", Detail: err.Error()})
	}
	if err := kernels.Transpose(b, colsA, colsB, bt); err != nil {
		return append(checks, Check{Name: "mm: transpose B", Detail: err.Error()})
	}
	for _, v := range variants {
		name := fmt.Sprintf("mm-%s: agrees [%d, %d]x[%d, %d]", v.Name, rowsA, colsA, colsA, colsB)
		operand := b
		if v.TransposedB {
			operand = bt
		}
		// Seed C with garbage: all variants must overwrite or clear it.
		c := xslices.SliceWithValue(rowsA*colsB, 42.0)
		err := v.Run(a, rowsA, colsA, operand, colsA, colsB, c)
		checks = append(checks, compare(name, c, want, err))
	}
	return checks
}
