// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package bench

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

func detectCaches() (CacheInfo, error) {
	var info CacheInfo
	l1, err := unix.SysctlUint64("hw.l1dcachesize")
	if err != nil {
		return info, errors.Wrap(err, "sysctl hw.l1dcachesize")
	}
	l2, err := unix.SysctlUint64("hw.l2cachesize")
	if err != nil {
		return info, errors.Wrap(err, "sysctl hw.l2cachesize")
	}
	info.L1D, info.L2 = int64(l1), int64(l2)
	// Apple Silicon has no L3 entry.
	if l3, err := unix.SysctlUint64("hw.l3cachesize"); err == nil {
		info.L3 = int64(l3)
	}
	return info, nil
}
