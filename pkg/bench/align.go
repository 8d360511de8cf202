// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package bench

import (
	"unsafe"

	"github.com/pkg/errors"
)

const float64Size = int(unsafe.Sizeof(float64(0)))

// AlignedFloat64s returns a slice of n float64 whose first element address is offset bytes past
// an align-byte boundary.
//
// align must be a power of two multiple of 8, and offset a multiple of 8 smaller than align.
// Use offset 0 for an aligned buffer, and e.g. 8 for one deliberately misaligned with respect to
// the cache line.
func AlignedFloat64s(n, align, offset int) ([]float64, error) {
	if n < 0 {
		return nil, errors.Errorf("AlignedFloat64s: n=%d must be >= 0", n)
	}
	if align < float64Size || align&(align-1) != 0 {
		return nil, errors.Errorf("AlignedFloat64s: align=%d must be a power of 2 >= %d", align, float64Size)
	}
	if offset < 0 || offset >= align || offset%float64Size != 0 {
		return nil, errors.Errorf("AlignedFloat64s: offset=%d must be a multiple of %d in [0, %d)",
			offset, float64Size, align)
	}
	slack := align / float64Size
	backing := make([]float64, n+slack)
	start := 0
	for ; start < slack; start++ {
		if int(uintptr(unsafe.Pointer(&backing[start]))%uintptr(align)) == offset {
			break
		}
	}
	if start == slack {
		// Go's allocator returns 8-byte aligned memory, so this is not reachable.
		return nil, errors.Errorf("AlignedFloat64s: failed to find a %d-byte boundary", align)
	}
	return backing[start : start+n : start+n], nil
}

// AddressOffset returns the offset in bytes of the first element of buf past an align-byte boundary.
func AddressOffset(buf []float64, align int) int {
	if len(buf) == 0 {
		return 0
	}
	return int(uintptr(unsafe.Pointer(&buf[0])) % uintptr(align))
}
