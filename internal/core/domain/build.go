package domain

import (
	"strings"
	"time"
)

// BuildSpec is the evaluated build customization for one module.
type BuildSpec struct {
	// Sources are extra source files compiled with the primary source, as absolute paths.
	Sources []string
	// Flags are extra arguments passed to the compiler.
	Flags []string
	// Libraries are native libraries linked through cgo.
	Libraries []string
	// LibraryDirs are native library search directories.
	LibraryDirs []string
	// IncludeDirs are native header search directories.
	IncludeDirs []string
	// Env holds extra environment variables for the compiler process.
	Env map[string]string
	// Options override build options for this module.
	Options BuildOptions
}

// IsEmpty reports whether the spec customizes nothing.
func (s BuildSpec) IsEmpty() bool {
	return len(s.Sources) == 0 &&
		len(s.Flags) == 0 &&
		len(s.Libraries) == 0 &&
		len(s.LibraryDirs) == 0 &&
		len(s.IncludeDirs) == 0 &&
		len(s.Env) == 0 &&
		len(s.Options) == 0
}

// Merge overlays other on top of s. List fields are appended; maps are merged key-wise.
func (s BuildSpec) Merge(other BuildSpec) BuildSpec {
	merged := BuildSpec{
		Sources:     append(append([]string(nil), s.Sources...), other.Sources...),
		Flags:       append(append([]string(nil), s.Flags...), other.Flags...),
		Libraries:   append(append([]string(nil), s.Libraries...), other.Libraries...),
		LibraryDirs: append(append([]string(nil), s.LibraryDirs...), other.LibraryDirs...),
		IncludeDirs: append(append([]string(nil), s.IncludeDirs...), other.IncludeDirs...),
		Options:     MergeOptions(s.Options, other.Options),
	}
	if len(s.Env) > 0 || len(other.Env) > 0 {
		merged.Env = make(map[string]string, len(s.Env)+len(other.Env))
		for k, v := range s.Env {
			merged.Env[k] = v
		}
		for k, v := range other.Env {
			merged.Env[k] = v
		}
	}
	return merged
}

// CgoEnv renders the native library settings as cgo environment variables.
func (s BuildSpec) CgoEnv() map[string]string {
	env := make(map[string]string, len(s.Env)+2)
	for k, v := range s.Env {
		env[k] = v
	}

	cflags := make([]string, 0, len(s.IncludeDirs))
	for _, dir := range s.IncludeDirs {
		cflags = append(cflags, "-I"+dir)
	}
	if len(cflags) > 0 {
		env["CGO_CFLAGS"] = joinFlags(env["CGO_CFLAGS"], cflags)
	}

	ldflags := make([]string, 0, len(s.LibraryDirs)+len(s.Libraries))
	for _, dir := range s.LibraryDirs {
		ldflags = append(ldflags, "-L"+dir)
	}
	for _, lib := range s.Libraries {
		ldflags = append(ldflags, "-l"+lib)
	}
	if len(ldflags) > 0 {
		env["CGO_LDFLAGS"] = joinFlags(env["CGO_LDFLAGS"], ldflags)
	}

	return env
}

func joinFlags(existing string, flags []string) string {
	joined := strings.Join(flags, " ")
	if existing == "" {
		return joined
	}
	return existing + " " + joined
}

// CompileRequest is everything the compiler needs to produce one artifact.
type CompileRequest struct {
	Module    ModuleIdentity
	Spec      BuildSpec
	Options   BuildOptions
	OutputDir string
}

// Sources returns the primary source followed by the extra sources.
func (r CompileRequest) Sources() []string {
	return append([]string{r.Module.SourcePath}, r.Spec.Sources...)
}

// CompileResult is the outcome of a successful compile.
type CompileResult struct {
	// ArtifactPath is the path the compiler reports for the produced artifact.
	ArtifactPath string
	// Output is the captured compiler output.
	Output []byte
}

// BuildRecord remembers the inputs of the last successful build of a module.
type BuildRecord struct {
	Module       string    `json:"module"`
	SourcePath   string    `json:"source_path"`
	ArtifactPath string    `json:"artifact_path"`
	InputMTime   time.Time `json:"input_mtime"`
	Fingerprint  string    `json:"fingerprint"`
	BuiltAt      time.Time `json:"built_at"`
}
