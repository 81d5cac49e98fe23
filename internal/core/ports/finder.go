package ports

import (
	"context"

	"go.trai.ch/gimport/internal/core/domain"
)

// SourceResolver maps a logical module name to a source file.
//
//go:generate mockgen -source=finder.go -destination=mocks/mock_finder.go -package=mocks
type SourceResolver interface {
	// Resolve searches searchPaths, or the process default when empty, for a source
	// module matching the final segment of logicalName.
	Resolve(logicalName string, searchPaths []string) domain.Resolution
}

// Finder is a resolver/loader pair registered in the host import chain.
type Finder interface {
	// Find reports whether this finder can provide logicalName.
	Find(logicalName string, searchPaths []string) domain.Resolution
	// Load loads a module previously located by Find.
	Load(ctx context.Context, logicalName string, res domain.Resolution) (Module, error)
}
