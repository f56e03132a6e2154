package output

import (
	"errors"
	"fmt"
	"os"
)

// OverwriteMode controls what happens to an existing output directory.
type OverwriteMode string

const (
	DeleteDirectoryIfExists OverwriteMode = "deleteDirectoryIfExists"
	FailIfDirectoryExists   OverwriteMode = "failIfDirectoryExists"
	OverwriteExistingFiles  OverwriteMode = "overwriteExistingFiles"
)

// ErrDirectoryExists is returned by PrepareDir in FailIfDirectoryExists mode.
var ErrDirectoryExists = errors.New("output directory exists")

// Valid reports whether m is a known mode.
func (m OverwriteMode) Valid() bool {
	switch m {
	case DeleteDirectoryIfExists, FailIfDirectoryExists, OverwriteExistingFiles:
		return true
	}
	return false
}

// PrepareDir makes sure dir exists and is usable according to mode.
func PrepareDir(dir string, mode OverwriteMode) error {
	if dir == "" {
		return errors.New("output directory is empty")
	}
	if !mode.Valid() {
		return fmt.Errorf("unknown overwrite mode %q", mode)
	}
	info, err := os.Stat(dir)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return err
	case !info.IsDir():
		return fmt.Errorf("%s is not a directory", dir)
	case mode == FailIfDirectoryExists:
		return fmt.Errorf("%w: %s", ErrDirectoryExists, dir)
	case mode == DeleteDirectoryIfExists:
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("remove %s: %w", dir, err)
		}
	}
	return os.MkdirAll(dir, 0o755)
}
