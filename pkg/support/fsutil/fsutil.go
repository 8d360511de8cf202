// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package fsutil contains utilities for the paths given in the command line.
package fsutil

import (
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// ExpandHome replaces a leading "~" or "~user" in path by the corresponding home directory.
// Other paths are returned unchanged.
func ExpandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	userName, rest, _ := strings.Cut(path[1:], string(filepath.Separator))
	var usr *user.User
	var err error
	if userName == "" {
		usr, err = user.Current()
	} else {
		usr, err = user.Lookup(userName)
	}
	if err != nil {
		return "", errors.Wrapf(err, "failed to lookup home directory for %q", path)
	}
	return filepath.Join(usr.HomeDir, rest), nil
}

// PrepareOutput expands the home directory in path and creates its parent directory if needed.
// It returns the expanded path.
func PrepareOutput(path string) (string, error) {
	path, err := ExpandHome(path)
	if err != nil {
		return "", err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "failed to create directory %q for output %q", dir, path)
	}
	return path, nil
}
