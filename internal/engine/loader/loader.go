// Package loader brings a located source module into the process: it checks
// dependencies, builds, picks a reload copy and opens the artifact.
package loader

import (
	"context"
	"fmt"

	"go.trai.ch/gimport/internal/core/domain"
	"go.trai.ch/gimport/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ModuleLoader = (*Loader)(nil)

// Loader implements ports.ModuleLoader.
type Loader struct {
	scanner   ports.DependencyScanner
	builder   ports.Builder
	versioner ports.Versioner
	dynamic   ports.DynamicLoader
	telemetry ports.Telemetry
	logger    ports.Logger
}

// New creates a Loader. A nil versioner disables reload copies and opens the
// canonical artifact directly.
func New(
	scanner ports.DependencyScanner,
	builder ports.Builder,
	versioner ports.Versioner,
	dynamic ports.DynamicLoader,
	telemetry ports.Telemetry,
	logger ports.Logger,
) *Loader {
	return &Loader{
		scanner:   scanner,
		builder:   builder,
		versioner: versioner,
		dynamic:   dynamic,
		telemetry: telemetry,
		logger:    logger,
	}
}

// Load builds the module at sourcePath if needed and opens it under
// logicalName. Every failure is a *domain.ImportError.
func (l *Loader) Load(ctx context.Context, logicalName, sourcePath string) (mod ports.Module, err error) {
	ctx, vertex := l.telemetry.Record(ctx, "import "+logicalName,
		ports.WithAttribute("module", logicalName),
		ports.WithAttribute("source", sourcePath),
	)
	defer func() { vertex.Complete(err) }()

	mod, err = l.load(ctx, logicalName, sourcePath)
	if err != nil {
		return nil, domain.NewImportError(logicalName, err)
	}
	return mod, nil
}

func (l *Loader) load(ctx context.Context, logicalName, sourcePath string) (ports.Module, error) {
	if err := l.scanner.CheckAndTouch(sourcePath); err != nil {
		return nil, err
	}

	module := domain.NewModuleIdentity(logicalName, sourcePath)

	buildCtx, vertex := l.telemetry.Record(ctx, "build "+module.Name, ports.WithAttribute("source", sourcePath))
	artifact, err := l.builder.Build(buildCtx, module, nil)
	vertex.Complete(err)
	if err != nil {
		return nil, err
	}

	path := artifact
	if l.versioner != nil {
		if path, err = l.versioner.Resolve(artifact); err != nil {
			return nil, err
		}
	}

	mod, err := l.dynamic.Open(logicalName, path)
	if err != nil {
		return nil, err
	}

	if mod.Origin() != path {
		err := zerr.Wrap(domain.ErrLoadInconsistency, "module was loaded from another file")
		err = zerr.With(err, "module", logicalName)
		err = zerr.With(err, "artifact", path)
		return nil, zerr.With(err, "origin", mod.Origin())
	}

	l.logger.Debug(fmt.Sprintf("loaded %s from %s", logicalName, path))
	return mod, nil
}
