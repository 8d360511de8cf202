// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package kernels

import "github.com/pkg/errors"

// Precondition failures returned by the kernels. They are wrapped with the name of the kernel and
// the offending values, so use errors.Is to test for them.
var (
	// ErrNilBuffer is returned when a required buffer is nil.
	ErrNilBuffer = errors.New("kernels: nil buffer")

	// ErrInvalidDimension is returned when a dimension is <= 0.
	ErrInvalidDimension = errors.New("kernels: dimension must be > 0")

	// ErrDimensionMismatch is returned when the inner dimensions of a matrix multiplication disagree.
	ErrDimensionMismatch = errors.New("kernels: dimension mismatch")

	// ErrBufferTooShort is returned when a buffer holds fewer elements than its dimensions require.
	ErrBufferTooShort = errors.New("kernels: buffer too short")

	// ErrInvalidBlockSize is returned when the block size of a tiled kernel is <= 0.
	ErrInvalidBlockSize = errors.New("kernels: block size must be > 0")
)
