package fs

import (
	"os"
	"path/filepath"

	"go.trai.ch/gimport/internal/core/domain"
	"go.trai.ch/gimport/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.SourceResolver = (*ModuleResolver)(nil)

// ModuleResolver locates source modules on a search path.
type ModuleResolver struct {
	extensions []string
	defaults   []string
}

// NewModuleResolver creates a resolver recognizing extensions in priority order.
// defaults is used when a lookup supplies no search paths.
func NewModuleResolver(extensions, defaults []string) *ModuleResolver {
	if len(extensions) == 0 {
		extensions = domain.DefaultExtensions()
	}
	return &ModuleResolver{extensions: extensions, defaults: defaults}
}

// DefaultSearchPaths returns configured when non-empty, otherwise the entries
// of GIMPORT_PATH followed by the working directory.
func DefaultSearchPaths(configured []string) []string {
	if len(configured) > 0 {
		return configured
	}
	var paths []string
	if env := os.Getenv(domain.SearchPathEnv); env != "" {
		paths = append(paths, filepath.SplitList(env)...)
	}
	return append(paths, "")
}

// Resolve finds the source for the final segment of logicalName. A prebuilt
// artifact on the search path wins when its source sits beside it; otherwise
// every extension is tried in priority order across all search paths.
func (r *ModuleResolver) Resolve(logicalName string, searchPaths []string) domain.Resolution {
	base := domain.BaseName(logicalName)
	if base == "" {
		return domain.Failed(zerr.With(zerr.Wrap(domain.ErrInvalidModuleName, "module name has no final segment"), "name", logicalName))
	}

	if len(searchPaths) == 0 {
		searchPaths = DefaultSearchPaths(r.defaults)
	}

	if src, ok := r.besideArtifact(base, searchPaths); ok {
		return domain.Found(src)
	}

	for _, ext := range r.extensions {
		for _, dir := range searchPaths {
			candidate := filepath.Join(searchDir(dir), base+ext)
			if fileExists(candidate) {
				return domain.Found(absPath(candidate))
			}
		}
	}

	return domain.NotFound()
}

func (r *ModuleResolver) besideArtifact(base string, searchPaths []string) (string, bool) {
	for _, dir := range searchPaths {
		dir = searchDir(dir)
		if !fileExists(filepath.Join(dir, base+domain.ArtifactExt)) {
			continue
		}
		for _, ext := range r.extensions {
			candidate := filepath.Join(dir, base+ext)
			if fileExists(candidate) {
				return absPath(candidate), true
			}
		}
		return "", false
	}
	return "", false
}

func searchDir(dir string) string {
	if dir == "" {
		return "."
	}
	return dir
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
