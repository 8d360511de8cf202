// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package bench

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

// sysfsCacheDir lists the caches of the first CPU, one index* directory per cache.
var sysfsCacheDir = "/sys/devices/system/cpu/cpu0/cache"

func detectCaches() (CacheInfo, error) {
	return readSysfsCaches(sysfsCacheDir)
}

// readSysfsCaches reads the "level", "type" and "size" files of each index* subdirectory of dir.
func readSysfsCaches(dir string) (CacheInfo, error) {
	var info CacheInfo
	indices, err := filepath.Glob(filepath.Join(dir, "index*"))
	if err != nil {
		return info, errors.Wrapf(err, "listing %q", dir)
	}
	if len(indices) == 0 {
		return info, errors.Errorf("no cache information found in %q", dir)
	}
	for _, indexDir := range indices {
		level, err := readSysfsValue(indexDir, "level")
		if err != nil {
			return info, err
		}
		cacheType, err := readSysfsValue(indexDir, "type")
		if err != nil {
			return info, err
		}
		if cacheType == "Instruction" {
			continue
		}
		sizeStr, err := readSysfsValue(indexDir, "size")
		if err != nil {
			return info, err
		}
		size, err := parseSysfsSize(sizeStr)
		if err != nil {
			return info, errors.WithMessagef(err, "cache %q", indexDir)
		}
		switch level {
		case "1":
			info.L1D = size
		case "2":
			info.L2 = size
		case "3":
			info.L3 = size
		}
	}
	return info, nil
}

func readSysfsValue(indexDir, name string) (string, error) {
	contents, err := os.ReadFile(filepath.Join(indexDir, name))
	if err != nil {
		return "", errors.Wrapf(err, "reading cache %s", name)
	}
	return strings.TrimSpace(string(contents)), nil
}

// parseSysfsSize parses sizes like "48K" or "2048K", where the suffixes are binary multiples.
func parseSysfsSize(s string) (int64, error) {
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		s += "B"
	} else {
		s += "iB"
	}
	size, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, errors.Wrapf(err, "parsing cache size %q", s)
	}
	return int64(size), nil
}
