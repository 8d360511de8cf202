// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package workerspool implements a bounded pool of goroutines used by the parallel kernels.
//
// The Pool doesn't own long-lived goroutines: it only keeps tabs on how many tasks are running,
// and refuses (or delays) new ones once the soft limit is reached.
package workerspool

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
)

type Pool struct {
	// maxParallelism is a soft target on the limit of parallel work to do.
	// The actual number of goroutines is higher than that -- because of waits and such.
	maxParallelism int
	mu             sync.Mutex
	numRunning     int

	// extraParallelism is temporarily increased when a worker goes to sleep.
	extraParallelism atomic.Int32
}

// New return a new Pool of workers with the default parallelism (runtime.GOMAXPROCS(0)).
func New() *Pool {
	return NewWithParallelism(runtime.GOMAXPROCS(0))
}

// NewWithParallelism returns a new Pool with the given maxParallelism.
// See Pool.MaxParallelism for the meaning of the values.
func NewWithParallelism(maxParallelism int) *Pool {
	return &Pool{maxParallelism: maxParallelism}
}

// IsEnabled returns whether parallelism is enabled (maxParallelism is != 0)
func (w *Pool) IsEnabled() bool {
	return w.maxParallelism != 0
}

// IsUnlimited returns whether parallelism is unlimited (maxParallelism < 0)
func (w *Pool) IsUnlimited() bool {
	return w.maxParallelism < 0
}

// MaxParallelism is a soft-target for parallelism (the limit of goroutines is higher that this).
// If set to 0 parallelism is disabled.
// If set to -1 parallelism is unlimited.
func (w *Pool) MaxParallelism() int {
	return w.maxParallelism
}

const goroutineToParallelismRatio = 2

// lockedIsFull returns whether all available workers are in use.
//
// It must be called with Pool.mu acquired.
func (w *Pool) lockedIsFull() bool {
	if !w.IsEnabled() {
		return true
	} else if w.IsUnlimited() {
		return false
	}
	return w.numRunning >= goroutineToParallelismRatio*w.maxParallelism+int(w.extraParallelism.Load())
}

// lockedRunTaskInGoroutine and keep tabs on w.numRunning.
//
// It must be called with Pool.mu acquired.
func (w *Pool) lockedRunTaskInGoroutine(task func()) {
	w.numRunning++
	go func() {
		task()
		w.mu.Lock()
		w.numRunning--
		w.mu.Unlock()
	}()
}

// StartIfAvailable runs the task in a separate goroutine, if there are enough workers left.
// It returns true if it found workers to run the function, false otherwise.
//
// It's up to the client to synchronize the end of the function execution.
func (w *Pool) StartIfAvailable(task func()) bool {
	if w.IsUnlimited() {
		go task()
		return true
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.lockedIsFull() {
		return false
	}
	w.lockedRunTaskInGoroutine(task)
	return true
}

// WorkerIsAsleep indicates the worker (the one that called the method) is going to sleep waiting
// for other workers, and temporarily increases the available number of workers.
//
// Call WorkerRestarted when the worker is ready to run again.
func (w *Pool) WorkerIsAsleep() {
	w.extraParallelism.Add(1)
}

// WorkerRestarted indicates the worker (the one that called the method) is ready to run again.
// It should only be called after WorkerIsAsleep.
func (w *Pool) WorkerRestarted() {
	w.extraParallelism.Add(-1)
}

// NumWorkersFor returns how many goroutines (including the caller's) ParallelFor uses for numTasks tasks.
func (w *Pool) NumWorkersFor(numTasks int) int {
	switch {
	case numTasks <= 0:
		return 0
	case !w.IsEnabled():
		return 1
	case w.IsUnlimited():
		return numTasks
	default:
		return min(w.maxParallelism, numTasks)
	}
}

// ParallelFor calls task(i) exactly once for every i in [0, numTasks), spreading the calls over at most
// Pool.NumWorkersFor(numTasks) goroutines, the calling one included. It returns only after every
// started task has finished.
//
// Tasks are handed out in increasing index order from a shared counter. If a task panics, the panic is
// recovered and returned as an error, remaining tasks are not started, and the first such error is returned.
//
// If the pool has no workers available, the tasks run in the calling goroutine.
func (w *Pool) ParallelFor(numTasks int, task func(i int)) error {
	if numTasks <= 0 {
		return nil
	}
	var (
		next     atomic.Int64
		failed   atomic.Bool
		errMu    sync.Mutex
		firstErr error
		wg       sync.WaitGroup
	)
	worker := func() {
		for !failed.Load() {
			i := int(next.Add(1) - 1)
			if i >= numTasks {
				return
			}
			exception := exceptions.Try(func() { task(i) })
			if exception == nil {
				continue
			}
			var err error
			if e, ok := exception.(error); ok {
				err = errors.Wrapf(e, "ParallelFor task #%d failed", i)
			} else {
				err = errors.Errorf("ParallelFor task #%d panicked: %v", i, exception)
			}
			errMu.Lock()
			if firstErr == nil {
				firstErr = err
			}
			errMu.Unlock()
			failed.Store(true)
			return
		}
	}

	numHelpers := w.NumWorkersFor(numTasks) - 1
	for range numHelpers {
		wg.Add(1)
		helper := func() {
			defer wg.Done()
			worker()
		}
		if !w.StartIfAvailable(helper) {
			// Pool is saturated: the caller and the helpers already started pick up the remaining tasks.
			wg.Done()
			break
		}
	}
	worker()

	// The caller goes idle while waiting on the helpers.
	w.WorkerIsAsleep()
	wg.Wait()
	w.WorkerRestarted()
	return firstErr
}
