// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package kernels

import (
	"github.com/gomlx/matkernels/pkg/support/workerspool"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// MatMulBlockedParallel accumulates C += A·B with the same tiling as MatMulBlocked, where A is [rowsA, colsA],
// B is [colsA, colsB] and C is [rowsA, colsB], all row-major.
//
// The output is split in disjoint tiles by OutputTiles, and each tile, with all its k blocks, is one task
// of pool.ParallelFor. It returns only after every tile has been computed. If pool is nil, a pool with
// runtime.GOMAXPROCS(0) workers is created for the call. A pool can be shared across concurrent calls:
// it holds no per-call state.
//
// A failure in any tile is returned as an error once all started tiles are done. In that case C is
// partially updated.
//
// C is accumulated into, not assigned: zero it before the call to get C = A·B.
func MatMulBlockedParallel(pool *workerspool.Pool, a, b, c []float64, rowsA, colsA, colsB, blockSize int) error {
	const name = "MatMulBlockedParallel"
	if err := ValidateMatMul(name, a, rowsA, colsA, b, colsA, colsB, c); err != nil {
		return err
	}
	if err := ValidateBlockSize(name, blockSize); err != nil {
		return err
	}
	tiles, err := OutputTiles(rowsA, colsB, blockSize)
	if err != nil {
		return errors.WithMessage(err, name)
	}
	if pool == nil {
		pool = workerspool.New()
	}
	klog.V(2).Infof("%s: %d tiles of up to %dx%d over %d workers", name, len(tiles), blockSize, blockSize,
		pool.NumWorkersFor(len(tiles)))
	err = pool.ParallelFor(len(tiles), func(tileIdx int) {
		accumulateTile(a, b, c, colsA, colsB, blockSize, tiles[tileIdx])
	})
	if err != nil {
		return errors.WithMessagef(err, "%s: computing output tiles", name)
	}
	return nil
}
