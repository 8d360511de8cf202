// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package simd provides vector-lane implementations of the "axpy" update (y += alpha * x) used by the
// vectorized matrix multiplication, and selects the widest one the running CPU supports.
//
// Implementations register themselves during package initialization, with a priority, after probing the
// CPU with golang.org/x/sys/cpu. Best returns the highest priority one. The scalar implementation is
// always registered, with the lowest priority, so there is always a fallback.
//
// Set the environment variable MATKERNELS_NO_SIMD to any non-empty value to force the scalar
// implementation. Build with the "noasm" tag to leave the assembly implementations out altogether.
package simd

import (
	"os"
	"slices"
	"sync"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Kernel computes y[j] += alpha * x[j] for every j in [0, len(y)).
//
// Implementations process the largest multiple of Lanes() elements with vector instructions and the
// remainder with scalar code, so any length is valid. x must be at least as long as y.
type Kernel interface {
	// Name of the implementation, e.g. "scalar", "neon", "avx2fma".
	Name() string

	// Lanes is the number of float64 values processed per vector instruction.
	Lanes() int

	// Axpy computes y += alpha * x over len(y) elements.
	Axpy(alpha float64, x, y []float64)
}

// Priorities used when registering implementations: the highest priority available is used by default.
const (
	PriorityBase = 0
	PrioritySIMD = 10
)

// NoSIMDEnv is the environment variable that, when set to a non-empty value, forces the scalar kernel.
const NoSIMDEnv = "MATKERNELS_NO_SIMD"

type registration struct {
	kernel   Kernel
	priority int
}

var (
	registry []registration

	bestOnce   sync.Once
	bestKernel Kernel
)

// Register a Kernel implementation with the given priority.
//
// It should only be called during package initialization, typically after probing the CPU for the
// features the implementation requires.
func Register(kernel Kernel, priority int) {
	registry = append(registry, registration{kernel: kernel, priority: priority})
	slices.SortStableFunc(registry, func(a, b registration) int {
		return b.priority - a.priority
	})
}

// All returns all registered implementations, from the highest to the lowest priority.
// The scalar one is always included.
func All() []Kernel {
	kernels := make([]Kernel, len(registry))
	for ii, r := range registry {
		kernels[ii] = r.kernel
	}
	return kernels
}

// Best returns the preferred implementation for the running CPU.
//
// It is selected once, on first use, and respects the MATKERNELS_NO_SIMD environment variable.
func Best() Kernel {
	bestOnce.Do(func() {
		if os.Getenv(NoSIMDEnv) != "" {
			bestKernel = Scalar
			klog.V(1).Infof("simd: %s set, using %q kernel", NoSIMDEnv, bestKernel.Name())
			return
		}
		bestKernel = registry[0].kernel
		klog.V(1).Infof("simd: using %q kernel (%d float64 lanes), %d registered", bestKernel.Name(),
			bestKernel.Lanes(), len(registry))
	})
	return bestKernel
}

// ByName returns the registered implementation with the given name.
func ByName(name string) (Kernel, error) {
	for _, r := range registry {
		if r.kernel.Name() == name {
			return r.kernel, nil
		}
	}
	return nil, errors.Errorf("simd: no kernel named %q registered (available: %v)", name, Names())
}

// ForLanes returns the highest priority registered implementation with exactly the given number of lanes.
func ForLanes(lanes int) (Kernel, error) {
	for _, r := range registry {
		if r.kernel.Lanes() == lanes {
			return r.kernel, nil
		}
	}
	return nil, errors.Errorf("simd: no kernel with %d lanes available on this CPU (available: %v)", lanes, Names())
}

// Names of the registered implementations, from the highest to the lowest priority.
func Names() []string {
	names := make([]string, len(registry))
	for ii, r := range registry {
		names[ii] = r.kernel.Name()
	}
	return names
}
