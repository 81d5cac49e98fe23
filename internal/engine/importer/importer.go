package importer

import (
	"context"

	"go.trai.ch/gimport/internal/core/domain"
	"go.trai.ch/gimport/internal/core/ports"
)

var _ ports.Finder = (*Importer)(nil)

// Importer is the finder that turns source modules into loaded plugins.
type Importer struct {
	resolver ports.SourceResolver
	loader   ports.ModuleLoader
	modules  *Modules
	reload   bool
}

// NewImporter creates an Importer. Without reload support it declines names
// already present in modules, leaving them to the table.
func NewImporter(resolver ports.SourceResolver, loader ports.ModuleLoader, modules *Modules, reload bool) *Importer {
	return &Importer{
		resolver: resolver,
		loader:   loader,
		modules:  modules,
		reload:   reload,
	}
}

// Find resolves logicalName to a source file.
func (i *Importer) Find(logicalName string, searchPaths []string) domain.Resolution {
	if !i.reload && i.modules.Has(logicalName) {
		return domain.NotFound()
	}
	return i.resolver.Resolve(logicalName, searchPaths)
}

// Load loads the source located by res.
func (i *Importer) Load(ctx context.Context, logicalName string, res domain.Resolution) (ports.Module, error) {
	return i.loader.Load(ctx, logicalName, res.Path)
}
