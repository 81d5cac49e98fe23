package domain

import "time"

// ReloadEntry tracks the served copy of one canonical artifact.
type ReloadEntry struct {
	// Timestamp is the canonical artifact's mtime when ServedPath was produced.
	Timestamp time.Time
	// ServedPath is the path handed to the dynamic loader.
	ServedPath string
	// Generation is the highest generation number consumed so far.
	Generation int
}
