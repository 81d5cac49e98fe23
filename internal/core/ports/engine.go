package ports

import (
	"context"

	"go.trai.ch/gimport/internal/core/domain"
)

// Builder produces an up-to-date artifact for a module.
//
//go:generate mockgen -source=engine.go -destination=mocks/mock_engine.go -package=mocks
type Builder interface {
	// Build returns the canonical artifact path, compiling only when stale.
	Build(ctx context.Context, module domain.ModuleIdentity, options domain.BuildOptions) (string, error)
}

// Versioner maps a canonical artifact to a path safe to hand to the dynamic loader.
type Versioner interface {
	// Resolve returns a served path that is fresh whenever the artifact changed.
	Resolve(artifactPath string) (string, error)
}

// ModuleLoader loads a located source module into the process.
type ModuleLoader interface {
	// Load builds and loads the module at sourcePath under logicalName.
	Load(ctx context.Context, logicalName, sourcePath string) (Module, error)
}
