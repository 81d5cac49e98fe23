package ports

import "time"

// ArtifactFS is the filesystem surface used to version and clean artifacts.
//
//go:generate mockgen -source=artifacts.go -destination=mocks/mock_artifacts.go -package=mocks
type ArtifactFS interface {
	// ModTime returns the modification time of path.
	ModTime(path string) (time.Time, error)
	// Copy copies src to dst, preserving mode and modification time.
	Copy(src, dst string) error
	// Exists reports whether path names an existing regular file.
	Exists(path string) bool
	// Glob returns the files matching pattern.
	Glob(pattern string) ([]string, error)
	// Remove deletes path.
	Remove(path string) error
}
