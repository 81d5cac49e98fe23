package domain

import (
	"path/filepath"
	"strconv"
	"strings"
)

const (
	// BuildDirName is the name of the per-directory build output directory.
	BuildDirName = ".gimport"

	// RecordsDirName is the name of the build record directory inside a build directory.
	RecordsDirName = "records"

	// ArtifactExt is the extension of compiled plugin artifacts.
	ArtifactExt = ".so"

	// DependencyExt is the extension of the dependency list sidecar.
	DependencyExt = ".gdep"

	// CustomizationExt is the extension of the build customization sidecar.
	CustomizationExt = ".gbld"

	// ReloadSuffix separates an artifact path from its reload generation.
	ReloadSuffix = ".reload"

	// PartialInfix separates a module name from the stamp of an in-progress build output.
	PartialInfix = "_partial"

	// ConfigFileName is the name of the YAML configuration file.
	ConfigFileName = "gimport.yaml"

	// ConfigFileNameYML is the alternate name of the YAML configuration file.
	ConfigFileNameYML = "gimport.yml"

	// ConfigFileNameTOML is the name of the TOML configuration file.
	ConfigFileNameTOML = "gimport.toml"

	// SearchPathEnv lists extra search directories, separated by the OS list separator.
	SearchPathEnv = "GIMPORT_PATH"

	// BuildDirEnv overrides the global build root.
	BuildDirEnv = "GIMPORT_BUILD_DIR"

	// ReloadEnv enables reload support when set to a true value.
	ReloadEnv = "GIMPORT_RELOAD"

	// DefaultMaxReloadGenerations bounds the number of reload copies per artifact.
	DefaultMaxReloadGenerations = 1000

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// DefaultExtensions are the recognized source extensions in priority order.
func DefaultExtensions() []string {
	return []string{".go"}
}

// SidecarPath replaces the extension of source with ext.
func SidecarPath(source, ext string) string {
	return strings.TrimSuffix(source, filepath.Ext(source)) + ext
}

// DependencyFile returns the dependency list sidecar path for a source file.
func DependencyFile(source string) string {
	return SidecarPath(source, DependencyExt)
}

// CustomizationFile returns the build customization sidecar path for a source file.
func CustomizationFile(source string) string {
	return SidecarPath(source, CustomizationExt)
}

// ReloadPath returns the path of reload generation n for an artifact.
func ReloadPath(artifact string, generation int) string {
	return artifact + ReloadSuffix + strconv.Itoa(generation)
}

// PartialArtifactName returns the file name a build writes before it is renamed
// to the module's artifact name.
func PartialArtifactName(name, stamp string) string {
	return name + PartialInfix + stamp + ArtifactExt
}

// PartialArtifactPattern returns a glob matching every partial output of name in dir.
func PartialArtifactPattern(dir, name string) string {
	return filepath.Join(dir, name+PartialInfix+"*"+ArtifactExt)
}

// IsReloadCopy reports whether path names a reload generation of some artifact.
func IsReloadCopy(path string) bool {
	i := strings.LastIndex(path, ReloadSuffix)
	if i < 0 {
		return false
	}
	n := path[i+len(ReloadSuffix):]
	if n == "" {
		return false
	}
	_, err := strconv.Atoi(n)
	return err == nil
}
