package importer

import (
	"context"
	"reflect"
	"sync"

	"go.trai.ch/gimport/internal/core/domain"
	"go.trai.ch/gimport/internal/core/ports"
	"go.trai.ch/zerr"
)

// Chain asks its finders in order for a module and caches what they load.
// Imports are serialized.
type Chain struct {
	mu      sync.Mutex
	finders []ports.Finder
	modules *Modules
}

// NewChain creates a Chain caching into modules.
func NewChain(modules *Modules) *Chain {
	if modules == nil {
		modules = NewModules()
	}
	return &Chain{modules: modules}
}

// Register appends f to the chain unless a finder of the same type is already
// registered. It reports whether f was added.
func (c *Chain) Register(f ports.Finder) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := reflect.TypeOf(f)
	for _, existing := range c.finders {
		if reflect.TypeOf(existing) == t {
			return false
		}
	}
	c.finders = append(c.finders, f)
	return true
}

// Finders returns the registered finders in order.
func (c *Chain) Finders() []ports.Finder {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ports.Finder(nil), c.finders...)
}

// Modules returns the loaded-modules table.
func (c *Chain) Modules() *Modules {
	return c.modules
}

// Import returns the module loaded under name, loading it on first use.
func (c *Chain) Import(ctx context.Context, name string, searchPaths []string) (ports.Module, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if mod, ok := c.modules.Get(name); ok {
		return mod, nil
	}

	mod, found, err := c.find(ctx, name, searchPaths)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, zerr.With(zerr.Wrap(domain.ErrModuleNotFound, "import "+name), "module", name)
	}
	return mod, nil
}

// Reload asks the finders for name again, bypassing the table. The loaded
// module is kept when every finder declines.
func (c *Chain) Reload(ctx context.Context, name string, searchPaths []string) (ports.Module, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	current, ok := c.modules.Get(name)
	if !ok {
		return nil, zerr.With(zerr.Wrap(domain.ErrModuleNotFound, "reload of module never imported"), "module", name)
	}

	mod, found, err := c.find(ctx, name, searchPaths)
	if err != nil {
		return nil, err
	}
	if !found {
		return current, nil
	}
	return mod, nil
}

func (c *Chain) find(ctx context.Context, name string, searchPaths []string) (ports.Module, bool, error) {
	for _, f := range c.finders {
		res := f.Find(name, searchPaths)
		switch res.Kind {
		case domain.ResolutionNotFound:
			continue
		case domain.ResolutionFailed:
			return nil, false, domain.NewImportError(name, res.Err)
		}

		mod, err := f.Load(ctx, name, res)
		if err != nil {
			return nil, false, err
		}
		c.modules.Set(name, mod)
		return mod, true, nil
	}
	return nil, false, nil
}
