package fs

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"go.trai.ch/gimport/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ArtifactFS = (*Artifacts)(nil)

// Artifacts implements ports.ArtifactFS on the local filesystem.
type Artifacts struct{}

// NewArtifacts creates a new Artifacts.
func NewArtifacts() *Artifacts {
	return &Artifacts{}
}

// ModTime returns the modification time of path.
func (a *Artifacts) ModTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, zerr.With(zerr.Wrap(err, "failed to stat path"), "path", path)
	}
	return info.ModTime(), nil
}

// Copy copies src to dst through a temporary file renamed into place, so a
// process that already mapped an older dst keeps its inode. Mode and
// modification time are preserved.
func (a *Artifacts) Copy(src, dst string) (err error) {
	info, err := os.Stat(src)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to stat path"), "path", src)
	}

	in, err := os.Open(src) //nolint:gosec // artifact paths are produced by the build cache
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to open file"), "path", src)
	}
	defer in.Close() //nolint:errcheck // read-only

	tmp, err := os.CreateTemp(filepath.Dir(dst), filepath.Base(dst)+".tmp*")
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create file"), "path", dst)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = io.Copy(tmp, in); err != nil {
		_ = tmp.Close()
		return zerr.With(zerr.Wrap(err, "failed to copy file"), "path", dst)
	}
	if err = tmp.Close(); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to close file"), "path", dst)
	}
	if err = os.Chmod(tmp.Name(), info.Mode().Perm()); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to set file mode"), "path", dst)
	}
	if err = os.Chtimes(tmp.Name(), info.ModTime(), info.ModTime()); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to set file times"), "path", dst)
	}
	if err = os.Rename(tmp.Name(), dst); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to rename file"), "path", dst)
	}
	return nil
}

// Exists reports whether path names an existing regular file.
func (a *Artifacts) Exists(path string) bool {
	return fileExists(path)
}

// Glob returns the files matching pattern.
func (a *Artifacts) Glob(pattern string) ([]string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to glob path"), "path", pattern)
	}
	return matches, nil
}

// Remove deletes path.
func (a *Artifacts) Remove(path string) error {
	if err := os.Remove(path); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to remove file"), "path", path)
	}
	return nil
}
