// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package bench

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// Result of timing a kernel: population mean and standard deviation of the runs, in milliseconds.
type Result struct {
	MeanMS   float64 `json:"mean_ms"`
	StdDevMS float64 `json:"stddev_ms"`
	Runs     int     `json:"runs"`
}

// String implements fmt.Stringer.
func (r Result) String() string {
	return fmt.Sprintf("%.3f (%.3f) ms", r.MeanMS, r.StdDevMS)
}

// Summarize reduces samples (in milliseconds) to their population mean and standard deviation.
func Summarize(samplesMS []float64) Result {
	if len(samplesMS) == 0 {
		return Result{}
	}
	mean, std := stat.PopMeanStdDev(samplesMS, nil)
	return Result{MeanMS: mean, StdDevMS: std, Runs: len(samplesMS)}
}

// Measure calls fn once to warm up caches, and then times runs calls to it.
//
// If prepare is not nil, it is called (untimed) before the warm-up and before each timed run, with the run
// number (-1 for the warm-up): use it to reset accumulated outputs.
func Measure(runs int, prepare func(run int), fn func() error) (Result, error) {
	if runs <= 0 {
		return Result{}, errors.Errorf("Measure: runs must be > 0, got %d", runs)
	}
	if prepare != nil {
		prepare(-1)
	}
	if err := fn(); err != nil {
		return Result{}, errors.WithMessage(err, "warm-up run")
	}
	samples := make([]float64, runs)
	for run := range runs {
		if prepare != nil {
			prepare(run)
		}
		start := time.Now()
		err := fn()
		elapsed := time.Since(start)
		if err != nil {
			return Result{}, errors.WithMessagef(err, "run #%d", run)
		}
		samples[run] = float64(elapsed) / float64(time.Millisecond)
	}
	return Summarize(samples), nil
}
