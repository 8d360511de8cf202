// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package bench

import (
	"fmt"
	"io"

	"github.com/gomlx/matkernels/pkg/kernels"
	"github.com/gomlx/matkernels/pkg/support/workerspool"
	"github.com/gomlx/matkernels/pkg/support/xsync"
	"github.com/muesli/termenv"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"k8s.io/klog/v2"
)

// ProgressbarStyle to use. Defaults to the ASCII version.
var ProgressbarStyle = progressbar.ThemeASCII

// Runner plans and executes the experiments of a Suite.
type Runner struct {
	env  *Env
	stop *xsync.Latch

	// Progress, if not nil, is where a progress bar is displayed while running.
	Progress io.Writer
}

// NewRunner validates the suite and creates a Runner for it, detecting the host caches.
//
// If the suite has no block size, it is derived from the L1 data cache size with kernels.SuggestBlockSize.
func NewRunner(suite Suite) (*Runner, error) {
	return NewRunnerWithCaches(suite, DetectCaches())
}

// NewRunnerWithCaches is like NewRunner, but with the given cache sizes instead of the detected ones.
func NewRunnerWithCaches(suite Suite, caches CacheInfo) (*Runner, error) {
	if err := suite.Validate(); err != nil {
		return nil, err
	}
	env := &Env{
		Suite:     suite,
		Caches:    caches,
		BlockSize: suite.BlockSize,
	}
	if env.BlockSize == 0 {
		env.BlockSize = kernels.SuggestBlockSize(int(caches.L1D))
	}
	if suite.Workers == 0 {
		env.Pool = workerspool.New()
	} else {
		env.Pool = workerspool.NewWithParallelism(suite.Workers)
	}
	klog.V(1).Infof("bench: caches %s, block size %d, %d workers", caches, env.BlockSize, env.Pool.MaxParallelism())
	return &Runner{env: env, stop: xsync.NewLatch()}, nil
}

// Env returns the environment experiments are planned for.
func (r *Runner) Env() *Env { return r.env }

// Stop asks a running Run to return after the current measurement. It is safe to call from any goroutine,
// and more than once.
func (r *Runner) Stop() {
	r.stop.Trigger()
}

// Stopped reports whether Stop has been called.
func (r *Runner) Stopped() bool {
	return r.stop.Test()
}

// Plan returns the tasks of all the experiments of the suite, in order.
func (r *Runner) Plan() ([]Task, error) {
	var tasks []Task
	for _, name := range r.env.Suite.Experiments {
		experiment, err := ExperimentByName(name)
		if err != nil {
			return nil, err
		}
		experimentTasks, err := experiment.Plan(r.env)
		if err != nil {
			return nil, errors.WithMessagef(err, "planning experiment %q", name)
		}
		tasks = append(tasks, experimentTasks...)
	}
	return tasks, nil
}

// Run plans and measures all the tasks, returning one Row per task measured.
//
// If Stop is called, Run returns the rows measured so far, without an error.
func (r *Runner) Run() ([]Row, error) {
	tasks, err := r.Plan()
	if err != nil {
		return nil, err
	}
	bar := r.newProgressBar(len(tasks))
	defer r.finishProgressBar(bar)

	rows := make([]Row, 0, len(tasks))
	for _, task := range tasks {
		if r.stop.Test() {
			klog.Warningf("bench: stopped after %d of %d measurements", len(rows), len(tasks))
			break
		}
		if bar != nil {
			bar.Describe(fmt.Sprintf("%-12s %-28s n=%-8d", task.Experiment, task.Kernel, task.N))
		}
		row, err := r.measure(task)
		if err != nil {
			return rows, err
		}
		klog.V(1).Infof("bench: %s/%s %s n=%d: %s", row.Experiment, row.Kernel, row.Label, row.N, row.Result)
		rows = append(rows, row)
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	return rows, nil
}

func (r *Runner) measure(task Task) (Row, error) {
	row := Row{Experiment: task.Experiment, Kernel: task.Kernel, Label: task.Label, N: task.N}
	fn, prepare, err := task.Setup()
	if err == nil {
		row.Result, err = Measure(r.env.Suite.Runs, prepare, fn)
	}
	if err != nil {
		return row, errors.WithMessagef(err, "measuring %s/%s (%s) with n=%d", task.Experiment, task.Kernel, task.Label, task.N)
	}
	return row, nil
}

func (r *Runner) newProgressBar(numTasks int) *progressbar.ProgressBar {
	if r.Progress == nil {
		return nil
	}
	colors := termenv.NewOutput(r.Progress).Profile != termenv.Ascii
	return progressbar.NewOptions(numTasks,
		progressbar.OptionSetWriter(r.Progress),
		progressbar.OptionEnableColorCodes(colors),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(ProgressbarStyle),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *Runner) finishProgressBar(bar *progressbar.ProgressBar) {
	if bar == nil {
		return
	}
	_ = bar.Finish()
}
