// Package fs provides file system adapters for locating, scanning and versioning modules.
package fs

import (
	"io/fs"
	"iter"
	"path/filepath"

	"go.trai.ch/gimport/internal/core/domain"
)

// Walker provides directory walking functionality.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkBuildDirs yields every build directory below root without descending
// into it. VCS metadata directories are skipped.
func (w *Walker) WalkBuildDirs(root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil //nolint:nilerr // unreadable directories are skipped
			}
			if !d.IsDir() {
				return nil
			}

			switch d.Name() {
			case ".git", ".jj":
				return filepath.SkipDir
			case domain.BuildDirName:
				if !yield(path) {
					return filepath.SkipAll
				}
				return filepath.SkipDir
			}
			return nil
		})
	}
}
