// Package fileutil holds small filesystem helpers shared across the
// persistence layers.
package fileutil

import (
	"fmt"
	"os"
)

// WriteFileAtomic writes data to path via a temp file in the same
// directory followed by a rename, so readers never observe a partial
// file. The temp file is removed on failure.
func WriteFileAtomic(path string, data []byte, mode os.FileMode) error {
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, mode); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
