package domain

import (
	"path/filepath"
	"strings"
)

// ModuleIdentity names a source module: the logical name it was imported under
// and the absolute path of its primary source file.
type ModuleIdentity struct {
	Name       string
	SourcePath string
}

// NewModuleIdentity creates an identity, reducing name to its final segment.
func NewModuleIdentity(name, sourcePath string) ModuleIdentity {
	return ModuleIdentity{Name: BaseName(name), SourcePath: sourcePath}
}

// SourceDir returns the directory holding the primary source.
func (m ModuleIdentity) SourceDir() string {
	return filepath.Dir(m.SourcePath)
}

// ArtifactName returns the artifact file name for this module.
func (m ModuleIdentity) ArtifactName() string {
	return m.Name + ArtifactExt
}

// Key returns a stable key for persisting per-module state.
func (m ModuleIdentity) Key() string {
	return m.Name + "\x00" + m.SourcePath
}

// BaseName returns the final segment of a dotted or slashed logical module name.
func BaseName(logicalName string) string {
	if i := strings.LastIndexAny(logicalName, "./"); i >= 0 {
		return logicalName[i+1:]
	}
	return logicalName
}
