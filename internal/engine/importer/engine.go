// Package importer implements the process-wide import mechanism: an ordered
// chain of finders in front of a table of loaded modules, and the finder that
// builds and loads source modules.
package importer

import (
	"go.trai.ch/gimport/internal/core/domain"
	"go.trai.ch/gimport/internal/core/ports"
	"go.trai.ch/gimport/internal/engine/buildcache"
	"go.trai.ch/gimport/internal/engine/loader"
	"go.trai.ch/gimport/internal/engine/reload"
)

// Deps are the adapters an Engine is assembled from.
type Deps struct {
	Logger     ports.Logger
	Telemetry  ports.Telemetry
	Scanner    ports.DependencyScanner
	Customizer ports.Customizer
	Compiler   ports.Compiler
	Store      ports.BuildRecordStore
	Hasher     ports.Hasher
	Artifacts  ports.ArtifactFS
	Dynamic    ports.DynamicLoader
}

// Engine is one assembled import stack.
type Engine struct {
	Config   domain.Config
	Chain    *Chain
	Importer *Importer
	Builder  *buildcache.Cache
	Loader   *loader.Loader
	// Versioner is nil when reload support is off.
	Versioner *reload.Versioner
}

// New assembles an Engine for cfg with a single source finder registered.
func New(cfg domain.Config, resolver ports.SourceResolver, deps Deps) *Engine {
	cfg = cfg.WithDefaults()

	builder := buildcache.New(
		deps.Customizer,
		deps.Compiler,
		deps.Store,
		deps.Hasher,
		deps.Artifacts,
		deps.Logger,
		buildcache.Settings{Defaults: cfg.BuildOptions, BuildDir: cfg.BuildDir},
	)

	e := &Engine{Config: cfg, Builder: builder}

	var versioner ports.Versioner
	if cfg.ReloadSupport {
		e.Versioner = reload.NewVersioner(deps.Artifacts, deps.Logger, cfg.MaxReloadGenerations)
		versioner = e.Versioner
	}

	e.Loader = loader.New(deps.Scanner, builder, versioner, deps.Dynamic, deps.Telemetry, deps.Logger)

	modules := NewModules()
	e.Importer = NewImporter(resolver, e.Loader, modules, cfg.ReloadSupport)
	e.Chain = NewChain(modules)
	e.Chain.Register(e.Importer)

	return e
}
