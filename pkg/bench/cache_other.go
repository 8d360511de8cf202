// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

//go:build !linux && !darwin

package bench

import (
	"runtime"

	"github.com/pkg/errors"
)

func detectCaches() (CacheInfo, error) {
	return CacheInfo{}, errors.Errorf("cache size discovery not supported on %s", runtime.GOOS)
}
