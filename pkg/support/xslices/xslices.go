// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package xslices provide small generic helpers over slices used by the benchmark harness and its flags.
package xslices

import (
	"flag"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

// SliceWithValue creates a slice of given size filled with given value.
func SliceWithValue[T any](size int, value T) []T {
	s := make([]T, size)
	for ii := range s {
		s[ii] = value
	}
	return s
}

// Map executes the given function sequentially for every element on in, and returns a mapped slice.
func Map[In, Out any](in []In, fn func(e In) Out) (out []Out) {
	out = make([]Out, len(in))
	for ii, e := range in {
		out[ii] = fn(e)
	}
	return
}

// MaxAbsDiff returns the largest absolute element-wise difference between s0 and s1,
// and the index where it happens.
//
// It panics if the slices have different lengths.
func MaxAbsDiff[T constraints.Float](s0, s1 []T) (maxDiff float64, index int) {
	if len(s0) != len(s1) {
		panic(errors.Errorf("MaxAbsDiff: slices have different lengths (%d != %d)", len(s0), len(s1)))
	}
	index = -1
	for ii := range s0 {
		diff := math.Abs(float64(s0[ii]) - float64(s1[ii]))
		if math.IsNaN(diff) {
			return math.Inf(1), ii
		}
		if diff > maxDiff || index < 0 {
			maxDiff, index = diff, ii
		}
	}
	return
}

// InRelDelta reports whether every element of s0 is within relDelta of the corresponding element of s1,
// relative to the magnitude of the elements. Values smaller than 1 in magnitude are compared absolutely.
func InRelDelta[T constraints.Float](s0, s1 []T, relDelta float64) bool {
	if len(s0) != len(s1) {
		return false
	}
	for ii := range s0 {
		v0, v1 := float64(s0[ii]), float64(s1[ii])
		scale := math.Max(1, math.Max(math.Abs(v0), math.Abs(v1)))
		if !(math.Abs(v0-v1) <= relDelta*scale) {
			return false
		}
	}
	return true
}

// Flag creates a flag for []T with the given name, description and default value.
// It takes as input a parser for an individual T value.
func Flag[T any](name string, defaultValue []T, usage string,
	parserFn func(valueStr string) (T, error)) *[]T {
	f := &sliceFlag[T]{
		parsedSlice: defaultValue,
		parserFn:    parserFn,
	}
	flag.Var(f, name, usage)
	return &f.parsedSlice
}

// IntsFlag creates a flag with a comma-separated list of ints.
func IntsFlag(name string, defaultValue []int, usage string) *[]int {
	return Flag(name, defaultValue, usage, func(valueStr string) (int, error) {
		v, err := strconv.Atoi(strings.TrimSpace(valueStr))
		if err != nil {
			return 0, errors.Wrapf(err, "flag -%s: invalid int %q", name, valueStr)
		}
		return v, nil
	})
}

// StringsFlag creates a flag with a comma-separated list of strings.
func StringsFlag(name string, defaultValue []string, usage string) *[]string {
	return Flag(name, defaultValue, usage, func(valueStr string) (string, error) {
		return strings.TrimSpace(valueStr), nil
	})
}

// sliceFlag implements flag.Value for a generic type.
type sliceFlag[T any] struct {
	parsedSlice []T
	parserFn    func(valueStr string) (T, error)
}

func (f *sliceFlag[T]) String() string {
	if f == nil || len(f.parsedSlice) == 0 {
		return ""
	}
	parts := make([]string, len(f.parsedSlice))
	for ii, elem := range f.parsedSlice {
		parts[ii] = fmt.Sprintf("%v", elem)
	}
	return strings.Join(parts, ",")
}

func (f *sliceFlag[T]) Set(listStr string) error {
	if listStr == "" {
		f.parsedSlice = make([]T, 0)
		return nil
	}
	parts := strings.Split(listStr, ",")
	f.parsedSlice = make([]T, len(parts))
	var err error
	for ii, part := range parts {
		f.parsedSlice[ii], err = f.parserFn(part)
		if err != nil {
			return err
		}
	}
	return nil
}
