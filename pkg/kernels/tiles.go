// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package kernels

import "fmt"

// Tile is a rectangular region of an output matrix: rows [RowStart, RowEnd) and columns [ColStart, ColEnd).
type Tile struct {
	RowStart, RowEnd int
	ColStart, ColEnd int
}

// newTile returns the tile starting at (iB, jB), clipped to a [rows, cols] matrix.
func newTile(iB, jB, rows, cols, blockSize int) Tile {
	return Tile{
		RowStart: iB,
		RowEnd:   min(iB+blockSize, rows),
		ColStart: jB,
		ColEnd:   min(jB+blockSize, cols),
	}
}

// String implements fmt.Stringer.
func (t Tile) String() string {
	return fmt.Sprintf("[%d:%d, %d:%d]", t.RowStart, t.RowEnd, t.ColStart, t.ColEnd)
}

// Size is the number of elements in the tile.
func (t Tile) Size() int {
	return (t.RowEnd - t.RowStart) * (t.ColEnd - t.ColStart)
}

// Contains reports whether element [i, j] belongs to the tile.
func (t Tile) Contains(i, j int) bool {
	return i >= t.RowStart && i < t.RowEnd && j >= t.ColStart && j < t.ColEnd
}

// Overlaps reports whether the two tiles share any element.
func (t Tile) Overlaps(other Tile) bool {
	return t.RowStart < other.RowEnd && other.RowStart < t.RowEnd &&
		t.ColStart < other.ColEnd && other.ColStart < t.ColEnd
}

// OutputTiles splits a [rows, cols] output matrix in tiles of blockSize x blockSize, clipped at the edges,
// in row-major order of their (iB, jB) origin.
//
// Tile boundaries are derived only from (iB, jB, blockSize), so the tiles are disjoint and together cover
// the whole matrix: each can be computed by a different goroutine without synchronization on the output.
func OutputTiles(rows, cols, blockSize int) ([]Tile, error) {
	const name = "OutputTiles"
	if err := checkDims(name, []dimension{{"rows", rows}, {"cols", cols}}); err != nil {
		return nil, err
	}
	if err := ValidateBlockSize(name, blockSize); err != nil {
		return nil, err
	}
	numRowTiles := (rows + blockSize - 1) / blockSize
	numColTiles := (cols + blockSize - 1) / blockSize
	tiles := make([]Tile, 0, numRowTiles*numColTiles)
	for iB := 0; iB < rows; iB += blockSize {
		for jB := 0; jB < cols; jB += blockSize {
			tiles = append(tiles, newTile(iB, jB, rows, cols, blockSize))
		}
	}
	return tiles, nil
}
