// Package gimport builds Go plugin sources on demand and loads them into the
// running process under a logical name.
//
// Install sets up the process-wide importer once:
//
//	imp, err := gimport.Install(gimport.Options{SearchPaths: []string{"plugins"}, ReloadSupport: true})
//	mod, err := imp.Import(ctx, "greeter")
//	sym, err := mod.Lookup("Greet")
//
// A source file greeter.go found on the search path is compiled with
// go build -buildmode=plugin into a build directory beside it and reused until
// it, its .gdep dependencies or its .gbld customization change.
package gimport

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/gimport/internal/adapters/cas"
	"go.trai.ch/gimport/internal/adapters/config"
	"go.trai.ch/gimport/internal/adapters/fs"
	"go.trai.ch/gimport/internal/adapters/goplugin"
	"go.trai.ch/gimport/internal/adapters/gotool"
	"go.trai.ch/gimport/internal/adapters/logger"
	"go.trai.ch/gimport/internal/adapters/sidecar"
	"go.trai.ch/gimport/internal/adapters/telemetry"
	"go.trai.ch/gimport/internal/core/domain"
	"go.trai.ch/gimport/internal/core/ports"
	"go.trai.ch/gimport/internal/engine/importer"
	"go.trai.ch/zerr"
)

// Errors reported by imports. Every failed load matches ErrImportFailed and
// keeps its cause reachable through errors.Is.
var (
	ErrNotInstalled        = zerr.New("gimport is not installed")
	ErrModuleNotFound      = domain.ErrModuleNotFound
	ErrImportFailed        = domain.ErrImportFailed
	ErrSourceNotFound      = domain.ErrSourceNotFound
	ErrBuildFailed         = domain.ErrBuildFailed
	ErrInterrupted         = domain.ErrInterrupted
	ErrReloadLimitExceeded = domain.ErrReloadLimitExceeded
	ErrLoadInconsistency   = domain.ErrLoadInconsistency
	ErrInvalidModuleName   = domain.ErrInvalidModuleName
	ErrCustomizationFailed = domain.ErrCustomizationFailed
	ErrSymbolNotFound      = domain.ErrSymbolNotFound
)

// ImportError is the error type of every failed load.
type ImportError = domain.ImportError

// Options configure Install.
type Options struct {
	// SearchPaths are searched when an import names none. Empty means the
	// entries of GIMPORT_PATH followed by the working directory.
	SearchPaths []string
	// ReloadSupport serves each rebuilt artifact from a fresh reload copy so
	// Reload can pick up changes.
	ReloadSupport bool
	// BuildDir is a global build root. Empty builds into .gimport beside each source.
	BuildDir string
	// BuildOptions are default build options such as "tags", "race" or "verbose".
	BuildOptions map[string]string
	// MaxReloadGenerations bounds the reload copies per artifact. Zero means 1000.
	MaxReloadGenerations int
	// Extensions are the recognized source extensions in priority order. Empty means ".go".
	Extensions []string
	// UseConfigFile starts from the gimport.yaml or gimport.toml discovered
	// from the working directory; the fields above override it when set.
	UseConfigFile bool

	// Logger receives diagnostics. Nil logs to Stderr.
	Logger *slog.Logger
	// Stderr receives compiler output of interrupted builds. Nil means os.Stderr.
	Stderr io.Writer
	// TracerProvider records each import as spans. Nil records nothing.
	TracerProvider trace.TracerProvider
}

// Module is a loaded plugin.
type Module interface {
	// Name returns the logical name the module was imported under.
	Name() string
	// Origin returns the artifact path the module was loaded from.
	Origin() string
	// Lookup returns an exported symbol.
	Lookup(symbol string) (any, error)
}

// Importer is the installed import mechanism.
type Importer struct {
	engine    *importer.Engine
	telemetry ports.Telemetry
}

var (
	installMu sync.Mutex
	installed *Importer
)

// Install builds the process-wide importer. Later calls return the importer
// installed first and ignore opts.
func Install(opts Options) (*Importer, error) {
	installMu.Lock()
	defer installMu.Unlock()

	if installed != nil {
		return installed, nil
	}

	imp, err := newImporter(opts)
	if err != nil {
		return nil, err
	}
	installed = imp
	return imp, nil
}

// Installed returns the installed importer, or nil.
func Installed() *Importer {
	installMu.Lock()
	defer installMu.Unlock()
	return installed
}

// Import imports name through the installed importer.
func Import(ctx context.Context, name string, searchPaths ...string) (Module, error) {
	imp := Installed()
	if imp == nil {
		return nil, ErrNotInstalled
	}
	return imp.Import(ctx, name, searchPaths...)
}

// Reload reloads name through the installed importer.
func Reload(ctx context.Context, name string, searchPaths ...string) (Module, error) {
	imp := Installed()
	if imp == nil {
		return nil, ErrNotInstalled
	}
	return imp.Reload(ctx, name, searchPaths...)
}

// Import returns the module loaded under name, building and loading it on first use.
func (i *Importer) Import(ctx context.Context, name string, searchPaths ...string) (Module, error) {
	return i.engine.Chain.Import(ctx, name, searchPaths)
}

// Reload looks name up again and loads the result. Without reload support, or
// when nothing changed, the loaded module is returned.
func (i *Importer) Reload(ctx context.Context, name string, searchPaths ...string) (Module, error) {
	return i.engine.Chain.Reload(ctx, name, searchPaths)
}

// Loaded returns the names of the loaded modules in sorted order.
func (i *Importer) Loaded() []string {
	return i.engine.Chain.Modules().Names()
}

// ReloadSupport reports whether reload copies are served.
func (i *Importer) ReloadSupport() bool {
	return i.engine.Config.ReloadSupport
}

// Close flushes the importer's telemetry. Loaded modules stay mapped.
func (i *Importer) Close() error {
	return i.telemetry.Close()
}

func newImporter(opts Options) (*Importer, error) {
	var log *logger.Logger
	if opts.Logger != nil {
		log = logger.Wrap(opts.Logger)
	} else {
		log = logger.NewLogger(opts.Stderr)
	}

	cfg, err := resolveConfig(opts, log)
	if err != nil {
		return nil, err
	}

	var tel ports.Telemetry = telemetry.NewNoOp()
	if opts.TracerProvider != nil {
		tel = telemetry.NewOTel(opts.TracerProvider)
	}

	deps := importer.Deps{
		Logger:     log,
		Telemetry:  tel,
		Scanner:    fs.NewScanner(fs.NewResolver(), log),
		Customizer: sidecar.NewCustomizer(log),
		Compiler:   gotool.NewCompiler(log, opts.Stderr),
		Store:      cas.NewStore(),
		Hasher:     fs.NewHasher(),
		Artifacts:  fs.NewArtifacts(),
		Dynamic:    goplugin.NewLoader(),
	}
	resolver := fs.NewModuleResolver(cfg.Extensions, cfg.SearchPaths)

	return &Importer{engine: importer.New(cfg, resolver, deps), telemetry: tel}, nil
}

func resolveConfig(opts Options, log ports.Logger) (domain.Config, error) {
	cfg := domain.DefaultConfig()
	if opts.UseConfigFile {
		cwd, err := os.Getwd()
		if err != nil {
			return domain.Config{}, zerr.Wrap(err, "failed to get current working directory")
		}
		if cfg, err = config.NewLoader(log).Load(cwd); err != nil {
			return domain.Config{}, err
		}
	}

	if len(opts.SearchPaths) > 0 {
		cfg.SearchPaths = opts.SearchPaths
	}
	if opts.ReloadSupport {
		cfg.ReloadSupport = true
	}
	if opts.BuildDir != "" {
		abs, err := filepath.Abs(opts.BuildDir)
		if err != nil {
			return domain.Config{}, zerr.With(zerr.Wrap(err, "failed to resolve build directory"), "path", opts.BuildDir)
		}
		cfg.BuildDir = abs
	}
	if opts.MaxReloadGenerations > 0 {
		cfg.MaxReloadGenerations = opts.MaxReloadGenerations
	}
	if len(opts.Extensions) > 0 {
		cfg.Extensions = opts.Extensions
	}
	cfg.BuildOptions = domain.MergeOptions(cfg.BuildOptions, opts.BuildOptions)

	return cfg.WithDefaults(), nil
}
