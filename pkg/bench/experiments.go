// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package bench is the measurement harness of the kernels: it times them over several sizes and
// configurations and reduces the runs to mean and standard deviation.
//
// Measurements are organized in experiments, each isolating one effect:
//
//   - "linalg": row- vs column-major matrix-vector, naive vs transposed matrix-matrix.
//   - "cache": the same kernels with working sets that fit, match or overflow each cache level.
//   - "alignment": streaming loops over 64-byte aligned vs misaligned buffers.
//   - "inline": inner loops calling an inlined vs a non-inlined multiply helper.
//   - "optimization": every matrix-matrix kernel variant, from naive to parallel and SIMD.
//
// An experiment plans a list of Task; a Runner executes them and returns one Row per Task.
package bench

import (
	"fmt"
	"slices"

	"github.com/gomlx/matkernels/pkg/kernels"
	"github.com/gomlx/matkernels/pkg/simd"
	"github.com/gomlx/matkernels/pkg/support/workerspool"
	"github.com/gomlx/matkernels/pkg/support/xslices"
	"github.com/pkg/errors"
)

// Env is the environment experiments are planned for.
type Env struct {
	Suite     Suite
	Caches    CacheInfo
	BlockSize int
	Pool      *workerspool.Pool
}

// Task is one measurement to take: a kernel at a given size.
type Task struct {
	Experiment string
	Kernel     string
	Label      string
	N          int

	// Setup allocates the operands and returns the function to time and an optional prepare function,
	// called untimed before each run. See Measure.
	Setup func() (fn func() error, prepare func(run int), err error)
}

// Row is the result of one Task.
type Row struct {
	Experiment string `json:"experiment"`
	Kernel     string `json:"kernel"`
	Label      string `json:"label,omitempty"`
	N          int    `json:"n"`
	Result
}

// Experiment plans the tasks measuring one effect.
type Experiment struct {
	Name        string
	Description string
	Plan        func(env *Env) ([]Task, error)
}

var experiments = []Experiment{
	{Name: "linalg", Description: "matrix-vector row/col-major and matrix-matrix naive/transposed", Plan: planLinalg},
	{Name: "cache", Description: "reference kernels with working sets around each cache level size", Plan: planCache},
	{Name: "alignment", Description: "streaming loops over 64-byte aligned vs misaligned buffers", Plan: planAlignment},
	{Name: "inline", Description: "inner loops with an inlined vs a non-inlined multiply", Plan: planInline},
	{Name: "optimization", Description: "all matrix-matrix kernel variants", Plan: planOptimization},
}

// Experiments returns the available experiments, in their default order.
func Experiments() []Experiment {
	return slices.Clone(experiments)
}

// ExperimentNames returns the names of the available experiments, in their default order.
func ExperimentNames() []string {
	return xslices.Map(experiments, func(e Experiment) string { return e.Name })
}

// ExperimentByName returns the experiment with the given name.
func ExperimentByName(name string) (Experiment, error) {
	for _, e := range experiments {
		if e.Name == name {
			return e, nil
		}
	}
	return Experiment{}, errors.Errorf("unknown experiment %q, known experiments: %v", name, ExperimentNames())
}

// matVecTask times a matrix-vector kernel over a random [rows, cols] matrix laid out as it expects.
func matVecTask(env *Env, experiment, label string, variant kernels.MatVecVariant, rows, cols int) Task {
	return Task{
		Experiment: experiment,
		Kernel:     "mv-" + variant.Name,
		Label:      label,
		N:          rows,
		Setup: func() (func() error, func(int), error) {
			m, err := kernels.ToLayout(RandomMatrix(rows, cols, env.Suite.Seed), rows, cols, variant.Layout)
			if err != nil {
				return nil, nil, err
			}
			x := RandomMatrix(1, cols, env.Suite.Seed+1)
			y := make([]float64, rows)
			return func() error { return variant.Fn(m, rows, cols, x, y) }, nil, nil
		},
	}
}

// matMulTask times a matrix-matrix kernel over random square [n, n] matrices.
// Accumulate kernels get C zeroed before each run.
func matMulTask(env *Env, experiment, label string, variant kernels.MatMulVariant, n int) Task {
	return Task{
		Experiment: experiment,
		Kernel:     "mm-" + variant.Name,
		Label:      label,
		N:          n,
		Setup: func() (func() error, func(int), error) {
			a := RandomMatrix(n, n, env.Suite.Seed)
			b := RandomMatrix(n, n, env.Suite.Seed+1)
			if variant.TransposedB {
				bt := make([]float64, n*n)
				if err := kernels.Transpose(b, n, n, bt); err != nil {
					return nil, nil, err
				}
				b = bt
			}
			c := make([]float64, n*n)
			var prepare func(int)
			if variant.Semantics == kernels.Accumulate {
				prepare = func(int) { clear(c) }
			}
			return func() error { return variant.Fn(a, n, n, b, n, n, c) }, prepare, nil
		},
	}
}

// referenceMatMulVariants are the assign kernels: naive and transposed.
func referenceMatMulVariants(env *Env) []kernels.MatMulVariant {
	var refs []kernels.MatMulVariant
	for _, v := range kernels.MatMulVariants(env.BlockSize, env.Pool) {
		if v.Semantics == kernels.Assign {
			refs = append(refs, v)
		}
	}
	return refs
}

func planLinalg(env *Env) ([]Task, error) {
	var tasks []Task
	for _, n := range env.Suite.Sizes {
		for _, v := range kernels.MatVecVariants() {
			tasks = append(tasks, matVecTask(env, "linalg", "", v, n, n))
		}
	}
	for _, n := range env.Suite.Sizes {
		for _, v := range referenceMatMulVariants(env) {
			tasks = append(tasks, matMulTask(env, "linalg", "", v, n))
		}
	}
	return tasks, nil
}

func planCache(env *Env) ([]Task, error) {
	var tasks []Task
	relations := []string{"fits", "equal", "overflows"}
	for _, level := range env.Caches.Levels() {
		for ii, n := range SquareDimsAround(level.Bytes) {
			label := fmt.Sprintf("%s %s", level.Name, relations[ii])
			for _, v := range kernels.MatVecVariants() {
				tasks = append(tasks, matVecTask(env, "cache", label, v, n, n))
			}
			if n > env.Suite.MaxMatMulSize {
				continue
			}
			for _, v := range referenceMatMulVariants(env) {
				tasks = append(tasks, matMulTask(env, "cache", label, v, n))
			}
		}
	}
	return tasks, nil
}

// Alignment and misalignment used by the "alignment" experiment: a cache line, and one float64 past it.
const (
	AlignmentBytes  = 64
	MisalignedBytes = 8
)

func planAlignment(env *Env) ([]Task, error) {
	var tasks []Task
	axpy := simd.Best()
	for _, n := range env.Suite.AlignmentSizes {
		for _, offset := range []int{0, MisalignedBytes} {
			label := "aligned"
			if offset != 0 {
				label = fmt.Sprintf("offset+%d", offset)
			}
			tasks = append(tasks, Task{
				Experiment: "alignment",
				Kernel:     "square-plus",
				Label:      label,
				N:          n,
				Setup: func() (func() error, func(int), error) {
					in, out, err := alignedPair(n, offset, env.Suite.Seed)
					if err != nil {
						return nil, nil, err
					}
					return func() error { squarePlus(in, out); return nil }, nil, nil
				},
			})
			tasks = append(tasks, Task{
				Experiment: "alignment",
				Kernel:     "axpy-" + axpy.Name(),
				Label:      label,
				N:          n,
				Setup: func() (func() error, func(int), error) {
					x, y, err := alignedPair(n, offset, env.Suite.Seed)
					if err != nil {
						return nil, nil, err
					}
					return func() error { axpy.Axpy(1e-3, x, y); return nil }, nil, nil
				},
			})
		}
	}
	return tasks, nil
}

// alignedPair returns two random buffers of n values, both offset bytes past a 64-byte boundary.
func alignedPair(n, offset int, seed uint64) (in, out []float64, err error) {
	in, err = AlignedFloat64s(n, AlignmentBytes, offset)
	if err != nil {
		return
	}
	out, err = AlignedFloat64s(n, AlignmentBytes, offset)
	if err != nil {
		return
	}
	FillRandom(in, seed)
	FillRandom(out, seed+1)
	return
}

func planInline(env *Env) ([]Task, error) {
	var tasks []Task
	for _, n := range env.Suite.Sizes {
		for _, probe := range inlineProbes {
			label := "noinline"
			if probe.inlined {
				label = "inline"
			}
			tasks = append(tasks, Task{
				Experiment: "inline",
				Kernel:     probe.name,
				Label:      label,
				N:          n,
				Setup: func() (func() error, func(int), error) {
					a := RandomMatrix(n, n, env.Suite.Seed)
					if probe.colMajor {
						var err error
						if a, err = kernels.ToLayout(a, n, n, kernels.ColMajor); err != nil {
							return nil, nil, err
						}
					}
					cols := n
					if probe.matVec {
						cols = 1
					}
					b := RandomMatrix(n, cols, env.Suite.Seed+1)
					if probe.transposedB {
						bt := make([]float64, len(b))
						if err := kernels.Transpose(b, n, cols, bt); err != nil {
							return nil, nil, err
						}
						b = bt
					}
					c := make([]float64, n*cols)
					return func() error { probe.fn(a, n, n, b, cols, c); return nil }, nil, nil
				},
			})
		}
	}
	return tasks, nil
}

func planOptimization(env *Env) ([]Task, error) {
	var tasks []Task
	for _, n := range env.Suite.Sizes {
		for _, v := range kernels.MatMulVariants(env.BlockSize, env.Pool) {
			tasks = append(tasks, matMulTask(env, "optimization", "", v, n))
		}
	}
	return tasks, nil
}
