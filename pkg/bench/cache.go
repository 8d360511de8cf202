// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package bench

import (
	"math"

	"github.com/dustin/go-humanize"
	"k8s.io/klog/v2"
)

// Default cache sizes, used for the levels that can't be discovered.
const (
	DefaultL1DBytes = 32 * 1024
	DefaultL2Bytes  = 1024 * 1024
	DefaultL3Bytes  = 8 * 1024 * 1024
)

// CacheInfo holds the data cache sizes of the host, in bytes.
type CacheInfo struct {
	L1D int64 `json:"l1d_bytes"`
	L2  int64 `json:"l2_bytes"`
	L3  int64 `json:"l3_bytes"`

	// Detected is true if the sizes were read from the system, false if they are (at least partially) defaults.
	Detected bool `json:"detected"`
}

// CacheLevel is a named cache size.
type CacheLevel struct {
	Name  string
	Bytes int64
}

// Levels returns the known cache levels, from the smallest. L3 is omitted if its size is 0.
func (c CacheInfo) Levels() []CacheLevel {
	levels := []CacheLevel{{"L1", c.L1D}, {"L2", c.L2}}
	if c.L3 > 0 {
		levels = append(levels, CacheLevel{"L3", c.L3})
	}
	return levels
}

// String implements fmt.Stringer.
func (c CacheInfo) String() string {
	s := "L1d=" + humanize.IBytes(uint64(c.L1D)) + " L2=" + humanize.IBytes(uint64(c.L2)) +
		" L3=" + humanize.IBytes(uint64(c.L3))
	if !c.Detected {
		s += " (defaults)"
	}
	return s
}

// DetectCaches returns the data cache sizes of the host. Levels that can't be read from the system
// are filled with defaults, and Detected is set to false.
func DetectCaches() CacheInfo {
	info, err := detectCaches()
	if err != nil {
		klog.Warningf("Failed to detect cache sizes, using defaults: %v", err)
	}
	info.Detected = err == nil && info.L1D > 0 && info.L2 > 0
	if info.L1D <= 0 {
		info.L1D = DefaultL1DBytes
	}
	if info.L2 <= 0 {
		info.L2 = DefaultL2Bytes
	}
	if info.L3 < 0 {
		info.L3 = 0
	}
	if !info.Detected && info.L3 == 0 {
		info.L3 = DefaultL3Bytes
	}
	return info
}

// SquareDimsAround returns the side n of square float64 matrices whose size is half, equal and twice
// cacheBytes: a working set that fits, matches and overflows the cache. Sides are at least 1.
func SquareDimsAround(cacheBytes int64) [3]int {
	values := float64(cacheBytes) / float64(float64Size)
	var dims [3]int
	for ii, factor := range []float64{0.5, 1, 2} {
		dims[ii] = max(1, int(math.Floor(math.Sqrt(values*factor))))
	}
	return dims
}
