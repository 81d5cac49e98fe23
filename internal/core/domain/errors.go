package domain

import (
	"fmt"

	"go.trai.ch/zerr"
)

var (
	// ErrModuleNotFound is returned when no finder in the chain recognizes a module name.
	ErrModuleNotFound = zerr.New("no module named")

	// ErrInvalidModuleName is returned when a logical module name is empty or has no final segment.
	ErrInvalidModuleName = zerr.New("invalid module name")

	// ErrSourceNotFound is returned when a build is requested for a source file that does not exist.
	ErrSourceNotFound = zerr.New("source file not found")

	// ErrBuildFailed is returned when the compiler rejects a source module.
	ErrBuildFailed = zerr.New("build failed")

	// ErrInterrupted is returned when a build is canceled by the user.
	ErrInterrupted = zerr.New("build interrupted")

	// ErrReloadLimitExceeded is returned when every reload generation for an artifact is used up.
	ErrReloadLimitExceeded = zerr.New("reload count reached maximum")

	// ErrLoadInconsistency is returned when a loaded module reports an origin other than the path it was loaded from.
	ErrLoadInconsistency = zerr.New("loaded module origin does not match artifact path")

	// ErrImportFailed is the umbrella error for any failure while loading a module.
	ErrImportFailed = zerr.New("import failed")

	// ErrSymbolNotFound is returned when a loaded module does not export a requested symbol.
	ErrSymbolNotFound = zerr.New("symbol not found")

	// ErrSymbolSignature is returned when an exported symbol is not a runnable function.
	ErrSymbolSignature = zerr.New("symbol is not a func() or func() error")

	// ErrCustomizationFailed is returned when a build customization sidecar cannot be evaluated.
	ErrCustomizationFailed = zerr.New("failed to evaluate build customization")

	// ErrEmptyCustomization is returned when a customization sidecar defines nothing.
	ErrEmptyCustomization = zerr.New("build customization defines no sources, flags or options")

	// ErrDependencyScanFailed is returned when the dependency sidecar cannot be processed.
	ErrDependencyScanFailed = zerr.New("failed to scan dependencies")

	// ErrArtifactMissing is returned when the compiler reports success without producing an artifact.
	ErrArtifactMissing = zerr.New("compiler produced no artifact")

	// ErrStoreCreateFailed is returned when the build record directory cannot be created.
	ErrStoreCreateFailed = zerr.New("failed to create build record directory")

	// ErrStoreReadFailed is returned when a build record cannot be read.
	ErrStoreReadFailed = zerr.New("failed to read build record")

	// ErrStoreUnmarshalFailed is returned when a build record cannot be unmarshaled.
	ErrStoreUnmarshalFailed = zerr.New("failed to unmarshal build record")

	// ErrStoreMarshalFailed is returned when a build record cannot be marshaled.
	ErrStoreMarshalFailed = zerr.New("failed to marshal build record")

	// ErrStoreWriteFailed is returned when a build record cannot be written.
	ErrStoreWriteFailed = zerr.New("failed to write build record")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrUnsupportedConfigFormat is returned for config files that are neither YAML nor TOML.
	ErrUnsupportedConfigFormat = zerr.New("unsupported config file format")

	// ErrNoModulesSpecified is returned when a command needs at least one module name.
	ErrNoModulesSpecified = zerr.New("no modules specified")
)

// ImportError is returned by every failed load. It names the module and keeps
// the proximate cause reachable through errors.Is and errors.As.
type ImportError struct {
	Module string
	Err    error
}

// NewImportError wraps err as the import failure of module.
func NewImportError(module string, err error) *ImportError {
	return &ImportError{Module: module, Err: err}
}

// Error implements error.
func (e *ImportError) Error() string {
	return fmt.Sprintf("building module %s failed: %s", e.Module, e.Err)
}

// Message returns the message without the cause, for chain-walking log formatters.
func (e *ImportError) Message() string {
	return fmt.Sprintf("building module %s failed", e.Module)
}

// Unwrap returns the proximate cause.
func (e *ImportError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrImportFailed.
func (e *ImportError) Is(target error) bool {
	return target == ErrImportFailed
}
