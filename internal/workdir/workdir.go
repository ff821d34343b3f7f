// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package workdir manages the directory holding intermediate slide images.
package workdir

import (
	"fmt"
	"os"
)

// Ensure creates dir and any missing parents.
func Ensure(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	return nil
}

// Remove deletes dir and everything inside it. It reports whether anything
// was removed; a missing directory is not an error.
func Remove(dir string) (bool, error) {
	if _, err := os.Lstat(dir); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("inspecting %s: %w", dir, err)
	}
	if err := os.RemoveAll(dir); err != nil {
		return false, fmt.Errorf("removing %s: %w", dir, err)
	}
	return true, nil
}
