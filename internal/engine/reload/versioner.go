// Package reload serves generation copies of plugin artifacts so a module can
// be loaded again after its artifact was rebuilt. A mapped artifact is never
// overwritten: each change gets a fresh path.
package reload

import (
	"fmt"

	"go.trai.ch/gimport/internal/core/domain"
	"go.trai.ch/gimport/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Versioner = (*Versioner)(nil)

// Versioner maps canonical artifact paths to the reload copy currently served
// for them. It is not safe for concurrent use.
type Versioner struct {
	fs      ports.ArtifactFS
	logger  ports.Logger
	max     int
	entries map[string]domain.ReloadEntry
}

// NewVersioner creates a Versioner. A non-positive maxGenerations selects
// domain.DefaultMaxReloadGenerations.
func NewVersioner(fs ports.ArtifactFS, logger ports.Logger, maxGenerations int) *Versioner {
	if maxGenerations <= 0 {
		maxGenerations = domain.DefaultMaxReloadGenerations
	}
	return &Versioner{
		fs:      fs,
		logger:  logger,
		max:     maxGenerations,
		entries: make(map[string]domain.ReloadEntry),
	}
}

// Resolve returns the path to hand to the dynamic loader for artifactPath.
// While the artifact's mtime is unchanged the previously served path is
// returned. Otherwise the artifact is copied to the next free generation.
//
// Only the mtime is compared. An artifact touched without being relinked is
// still copied, and the runtime refuses the copy because its plugin path is
// already loaded; the dynamic loader reports that as domain.ErrLoadInconsistency.
func (v *Versioner) Resolve(artifactPath string) (string, error) {
	mtime, err := v.fs.ModTime(artifactPath)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to stat artifact"), "artifact", artifactPath)
	}

	entry, seen := v.entries[artifactPath]
	if seen && entry.Timestamp.Equal(mtime) {
		return entry.ServedPath, nil
	}

	for gen := entry.Generation + 1; gen <= v.max; gen++ {
		candidate := domain.ReloadPath(artifactPath, gen)
		if err := v.fs.Copy(artifactPath, candidate); err != nil {
			v.logger.Debug(fmt.Sprintf("reload generation %d of %s unavailable: %v", gen, artifactPath, err))
			continue
		}
		v.entries[artifactPath] = domain.ReloadEntry{
			Timestamp:  mtime,
			ServedPath: candidate,
			Generation: gen,
		}
		return candidate, nil
	}

	err = zerr.Wrap(domain.ErrReloadLimitExceeded, "no free reload generation")
	err = zerr.With(err, "artifact", artifactPath)
	return "", zerr.With(err, "max_generations", v.max)
}

// Entry returns the reload entry for artifactPath, if any.
func (v *Versioner) Entry(artifactPath string) (domain.ReloadEntry, bool) {
	e, ok := v.entries[artifactPath]
	return e, ok
}

// MaxGenerations returns the generation bound.
func (v *Versioner) MaxGenerations() int {
	return v.max
}
