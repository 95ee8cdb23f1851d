package platform

import (
	"errors"
	"os"
	"path/filepath"
)

// DataDirName is the directory that holds a project's quire data.
const DataDirName = ".quire"

// ErrRootNotFound is returned by FindRoot when no marker exists up to the
// filesystem root.
var ErrRootNotFound = errors.New("quire root not found")

// FindRoot walks up from startDir looking for a .quire directory or a
// quire.yaml file and returns the absolute directory holding it.
func FindRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}
	for {
		if exists(filepath.Join(dir, DataDirName)) || exists(filepath.Join(dir, "quire.yaml")) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrRootNotFound
		}
		dir = parent
	}
}

// DefaultDataDir picks the data directory when none is configured:
// <root>/.quire inside a project, otherwise the per-user config directory.
func DefaultDataDir(startDir string) string {
	if root, err := FindRoot(startDir); err == nil {
		return filepath.Join(root, DataDirName)
	}
	if base, err := os.UserConfigDir(); err == nil {
		return filepath.Join(base, "quire")
	}
	return DataDirName
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
