// Package app implements the application layer for gimport.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"

	"go.trai.ch/gimport/internal/adapters/fs"
	"go.trai.ch/gimport/internal/adapters/watcher"
	"go.trai.ch/gimport/internal/core/domain"
	"go.trai.ch/gimport/internal/core/ports"
	"go.trai.ch/gimport/internal/engine/importer"
	"go.trai.ch/gimport/internal/ui/term"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// WatcherFactory creates a file watcher for one watch session.
type WatcherFactory func() (ports.Watcher, error)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	deps         importer.Deps
	walker       *fs.Walker
	newWatcher   WatcherFactory
	printer      *term.Printer
	debounce     time.Duration
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	deps importer.Deps,
	walker *fs.Walker,
	newWatcher WatcherFactory,
) *App {
	return &App{
		configLoader: loader,
		deps:         deps,
		walker:       walker,
		newWatcher:   newWatcher,
		printer:      term.NewPrinter(os.Stdout),
		debounce:     watcher.DefaultDebounceWindow,
	}
}

// WithOutput sets where command results are printed.
func (a *App) WithOutput(w io.Writer) *App {
	a.printer = term.NewPrinter(w)
	return a
}

// WithDebounceWindow sets how long Watch waits for a burst of changes to settle.
func (a *App) WithDebounceWindow(d time.Duration) *App {
	a.debounce = d
	return a
}

// Close flushes telemetry.
func (a *App) Close() error {
	if a.deps.Telemetry == nil {
		return nil
	}
	return a.deps.Telemetry.Close()
}

// Options are the settings shared by all commands. Set fields override the
// configuration file.
type Options struct {
	SearchPaths  []string
	BuildDir     string
	Reload       bool
	Verbose      bool
	JSONLogs     bool
	BuildOptions domain.BuildOptions
}

// Build compiles each named module without loading it and prints the artifact paths.
func (a *App) Build(ctx context.Context, names []string, opts Options) error {
	if len(names) == 0 {
		return domain.ErrNoModulesSpecified
	}

	e, err := a.engine(opts)
	if err != nil {
		return err
	}

	var errs error
	for _, name := range names {
		artifact, err := a.build(ctx, e, name)
		if err != nil {
			a.printer.Failure("%s", name)
			errs = errors.Join(errs, err)
			continue
		}
		a.printer.Success("built %s", name)
		a.printer.Mapping(name, artifact)
	}
	return errs
}

func (a *App) build(ctx context.Context, e *importer.Engine, name string) (artifact string, err error) {
	src, err := locate(e, name)
	if err != nil {
		return "", err
	}

	ctx, vertex := a.deps.Telemetry.Record(ctx, "build "+name, ports.WithAttribute("source", src))
	defer func() { vertex.Complete(err) }()

	if err := a.deps.Scanner.CheckAndTouch(src); err != nil {
		return "", domain.NewImportError(name, err)
	}
	artifact, err = e.Builder.Build(ctx, domain.NewModuleIdentity(name, src), nil)
	if err != nil {
		return "", domain.NewImportError(name, err)
	}
	return artifact, nil
}

// Resolve prints the source file each named module resolves to.
func (a *App) Resolve(_ context.Context, names []string, opts Options) error {
	if len(names) == 0 {
		return domain.ErrNoModulesSpecified
	}

	e, err := a.engine(opts)
	if err != nil {
		return err
	}

	var errs error
	for _, name := range names {
		src, err := locate(e, name)
		if err != nil {
			a.printer.Failure("%s", err)
			errs = errors.Join(errs, err)
			continue
		}
		a.printer.Mapping(name, src)
	}
	return errs
}

// Run imports name and calls its exported symbol.
func (a *App) Run(ctx context.Context, name, symbol string, opts Options) error {
	e, err := a.engine(opts)
	if err != nil {
		return err
	}

	mod, err := e.Chain.Import(ctx, name, nil)
	if err != nil {
		return err
	}
	return call(mod, symbol)
}

// Watch imports name, calls symbol, and reloads and calls it again whenever
// the source or one of its dependencies changes. It returns when ctx is done.
func (a *App) Watch(ctx context.Context, name, symbol string, opts Options) error {
	opts.Reload = true
	e, err := a.engine(opts)
	if err != nil {
		return err
	}

	src, err := locate(e, name)
	if err != nil {
		return err
	}
	paths, err := a.watchPaths(src)
	if err != nil {
		return err
	}

	if mod, err := e.Chain.Import(ctx, name, nil); err != nil {
		a.deps.Logger.Error(err)
	} else {
		a.invoke(mod, symbol)
	}

	w, err := a.newWatcher()
	if err != nil {
		return err
	}
	if err := w.Start(ctx, paths); err != nil {
		_ = w.Stop()
		return err
	}
	a.deps.Logger.Info(fmt.Sprintf("watching %d files for %s", len(paths), name))

	g, ctx := errgroup.WithContext(ctx)
	changes := make(chan []string)
	debouncer := watcher.NewDebouncer(a.debounce, func(changed []string) {
		select {
		case changes <- changed:
		case <-ctx.Done():
		}
	})

	g.Go(func() error {
		for event := range w.Events() {
			debouncer.Add(event.Path)
		}
		return nil
	})

	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				debouncer.Stop()
				return w.Stop()
			case changed := <-changes:
				a.deps.Logger.Debug(fmt.Sprintf("changed: %v", changed))
				a.reload(ctx, e, name, symbol)
			}
		}
	})

	return g.Wait()
}

func (a *App) reload(ctx context.Context, e *importer.Engine, name, symbol string) {
	mod, err := e.Chain.Reload(ctx, name, nil)
	if err != nil {
		a.printer.Failure("reload of %s failed", name)
		a.deps.Logger.Error(err)
		return
	}
	a.printer.Reloaded("%s from %s", name, mod.Origin())
	a.invoke(mod, symbol)
}

func (a *App) invoke(mod ports.Module, symbol string) {
	if symbol == "" {
		return
	}
	if err := call(mod, symbol); err != nil {
		a.deps.Logger.Error(err)
	}
}

func (a *App) watchPaths(src string) ([]string, error) {
	deps, err := a.deps.Scanner.Dependencies(src)
	if err != nil {
		return nil, err
	}
	paths := append([]string{src, domain.DependencyFile(src), domain.CustomizationFile(src)}, deps...)
	slices.Sort(paths)
	return slices.Compact(paths), nil
}

// Clean removes every build directory below the search roots, and the global
// build root when one is configured.
func (a *App) Clean(_ context.Context, opts Options) error {
	cfg, err := a.config(opts)
	if err != nil {
		return err
	}

	roots := fs.DefaultSearchPaths(cfg.SearchPaths)
	var dirs []string
	for _, root := range roots {
		if root == "" {
			root = "."
		}
		for dir := range a.walker.WalkBuildDirs(root) {
			dirs = append(dirs, dir)
		}
	}
	if cfg.BuildDir != "" {
		dirs = append(dirs, cfg.BuildDir)
	}

	var errs error
	for _, dir := range dirs {
		a.deps.Logger.Info(fmt.Sprintf("removing %s", dir))
		if err := os.RemoveAll(dir); err != nil {
			errs = errors.Join(errs, zerr.With(zerr.Wrap(err, "failed to remove build directory"), "path", dir))
			continue
		}
		a.printer.Success("removed %s", dir)
	}
	return errs
}

func (a *App) config(opts Options) (domain.Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return domain.Config{}, zerr.Wrap(err, "failed to get current working directory")
	}

	cfg, err := a.configLoader.Load(cwd)
	if err != nil {
		return domain.Config{}, zerr.Wrap(err, "failed to load configuration")
	}

	if len(opts.SearchPaths) > 0 {
		cfg.SearchPaths = opts.SearchPaths
	}
	if opts.BuildDir != "" {
		abs, err := filepath.Abs(opts.BuildDir)
		if err != nil {
			return domain.Config{}, zerr.With(zerr.Wrap(err, "failed to resolve build directory"), "path", opts.BuildDir)
		}
		cfg.BuildDir = abs
	}
	if opts.Reload {
		cfg.ReloadSupport = true
	}
	cfg.BuildOptions = domain.MergeOptions(cfg.BuildOptions, opts.BuildOptions)
	if opts.Verbose {
		cfg.BuildOptions[domain.OptionVerbose] = "true"
		if l, ok := a.deps.Logger.(interface{ SetVerbose(enable bool) }); ok {
			l.SetVerbose(true)
		}
		if t, ok := a.deps.Telemetry.(interface{ SetVerbose(enable bool) }); ok {
			t.SetVerbose(true)
		}
	}
	if opts.JSONLogs {
		if l, ok := a.deps.Logger.(interface{ SetJSON(enable bool) }); ok {
			l.SetJSON(true)
		}
	}
	return cfg.WithDefaults(), nil
}

func (a *App) engine(opts Options) (*importer.Engine, error) {
	cfg, err := a.config(opts)
	if err != nil {
		return nil, err
	}
	return importer.New(cfg, fs.NewModuleResolver(cfg.Extensions, cfg.SearchPaths), a.deps), nil
}

func locate(e *importer.Engine, name string) (string, error) {
	res := e.Importer.Find(name, nil)
	switch res.Kind {
	case domain.ResolutionFound:
		return res.Path, nil
	case domain.ResolutionFailed:
		return "", res.Err
	default:
		return "", zerr.With(zerr.Wrap(domain.ErrModuleNotFound, "resolve "+name), "module", name)
	}
}

// call invokes an exported func() or func() error.
func call(mod ports.Module, symbol string) error {
	sym, err := mod.Lookup(symbol)
	if err != nil {
		return err
	}

	switch fn := sym.(type) {
	case func():
		fn()
		return nil
	case func() error:
		return fn()
	default:
		err := zerr.Wrap(domain.ErrSymbolSignature, "cannot call symbol")
		err = zerr.With(err, "symbol", symbol)
		return zerr.With(err, "type", fmt.Sprintf("%T", sym))
	}
}
