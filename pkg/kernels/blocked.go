// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package kernels

// MatMulBlocked accumulates C += A·B, where A is [rowsA, colsA], B is [colsA, colsB] and C is [rowsA, colsB],
// all row-major.
//
// The (i, j, k) iteration space is split in cubic tiles of side blockSize, clipped at the matrix edges.
// Tiles are visited one at a time, and within a tile the i,k,j order of MatMulIKJ is used.
// blockSize has no required relationship with the matrix dimensions: it should be chosen so that
// three blockSize x blockSize tiles fit in the targeted cache level, see SuggestBlockSize.
//
// C is accumulated into, not assigned: zero it before the call to get C = A·B.
func MatMulBlocked(a, b, c []float64, rowsA, colsA, colsB, blockSize int) error {
	const name = "MatMulBlocked"
	if err := ValidateMatMul(name, a, rowsA, colsA, b, colsA, colsB, c); err != nil {
		return err
	}
	if err := ValidateBlockSize(name, blockSize); err != nil {
		return err
	}
	for iB := 0; iB < rowsA; iB += blockSize {
		for jB := 0; jB < colsB; jB += blockSize {
			tile := newTile(iB, jB, rowsA, colsB, blockSize)
			accumulateTile(a, b, c, colsA, colsB, blockSize, tile)
		}
	}
	return nil
}

// MatMulBlockedTransposedB accumulates C += A·B, given bt, the row-major transpose of B: a [colsB, colsA]
// matrix with B[k, j] stored at bt[j*colsA+k]. A is [rowsA, colsA] and C is [rowsA, colsB].
//
// It uses the same tiling as MatMulBlocked. Within a tile, each C[i,j] is updated with the dot product
// of the row-contiguous slices of A and Bt that fall in the tile's k range.
//
// C is accumulated into, not assigned: zero it before the call to get C = A·B.
func MatMulBlockedTransposedB(a, bt, c []float64, rowsA, colsA, colsB, blockSize int) error {
	const name = "MatMulBlockedTransposedB"
	if err := ValidateMatMul(name, a, rowsA, colsA, bt, colsA, colsB, c); err != nil {
		return err
	}
	if err := ValidateBlockSize(name, blockSize); err != nil {
		return err
	}
	for iB := 0; iB < rowsA; iB += blockSize {
		for jB := 0; jB < colsB; jB += blockSize {
			tile := newTile(iB, jB, rowsA, colsB, blockSize)
			for kB := 0; kB < colsA; kB += blockSize {
				kE := min(kB+blockSize, colsA)
				for i := tile.RowStart; i < tile.RowEnd; i++ {
					aSlice := a[i*colsA+kB : i*colsA+kE]
					for j := tile.ColStart; j < tile.ColEnd; j++ {
						btSlice := bt[j*colsA+kB : j*colsA+kE]
						sum := c[i*colsB+j]
						for k, aik := range aSlice {
							sum += aik * btSlice[k]
						}
						c[i*colsB+j] = sum
					}
				}
			}
		}
	}
	return nil
}

// accumulateTile adds to the output tile of C its full product over all k blocks, using the i,k,j order
// inside each (tile, k block) cube.
//
// It only writes within the tile, which is what makes tiles safe to process concurrently.
func accumulateTile(a, b, c []float64, colsA, colsB, blockSize int, tile Tile) {
	for kB := 0; kB < colsA; kB += blockSize {
		kE := min(kB+blockSize, colsA)
		for i := tile.RowStart; i < tile.RowEnd; i++ {
			cSlice := c[i*colsB+tile.ColStart : i*colsB+tile.ColEnd]
			for k := kB; k < kE; k++ {
				aik := a[i*colsA+k]
				bSlice := b[k*colsB+tile.ColStart : k*colsB+tile.ColEnd]
				for j, bkj := range bSlice {
					cSlice[j] += aik * bkj
				}
			}
		}
	}
}

// Minimum and maximum sides returned by SuggestBlockSize.
const (
	MinBlockSize = 8
	MaxBlockSize = 1024
)

// SuggestBlockSize returns the largest power-of-two tile side, within [MinBlockSize, MaxBlockSize],
// such that three tiles of float64 (one for each of A, B and C) fit in cacheBytes.
func SuggestBlockSize(cacheBytes int) int {
	const tilesPerBlock, bytesPerValue = 3, 8
	blockSize := MinBlockSize
	for next := blockSize * 2; next <= MaxBlockSize && tilesPerBlock*next*next*bytesPerValue <= cacheBytes; next *= 2 {
		blockSize = next
	}
	return blockSize
}
