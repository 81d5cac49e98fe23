// Package goplugin loads Go plugin artifacts into the running process.
package goplugin

import (
	"plugin"
	"strings"
	"sync"

	"go.trai.ch/gimport/internal/core/domain"
	"go.trai.ch/gimport/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.DynamicLoader = (*Loader)(nil)

// alreadyLoaded is the runtime's error text for a plugin path opened twice.
const alreadyLoaded = "plugin already loaded"

// Loader implements ports.DynamicLoader with plugin.Open.
type Loader struct {
	open func(path string) (*plugin.Plugin, error)

	mu      sync.Mutex
	origins map[*plugin.Plugin]string
}

// NewLoader creates a new Loader.
func NewLoader() *Loader {
	return &Loader{
		open:    plugin.Open,
		origins: make(map[*plugin.Plugin]string),
	}
}

// Open loads the plugin at path. The runtime hands back an already loaded
// plugin when path resolves to a file it has seen; the returned module then
// reports the path that plugin was first opened from.
func (l *Loader) Open(logicalName, path string) (ports.Module, error) {
	p, err := l.open(path)
	if err != nil {
		if strings.Contains(err.Error(), alreadyLoaded) {
			// Same plugin path at a new file: the bytes were not relinked.
			err = zerr.Wrap(domain.ErrLoadInconsistency,
				"artifact is a copy of a plugin already loaded; its mtime changed without a rebuild")
		} else {
			err = zerr.Wrap(err, "failed to open plugin")
		}
		return nil, zerr.With(zerr.With(err, "module", logicalName), "artifact", path)
	}

	l.mu.Lock()
	origin, seen := l.origins[p]
	if !seen {
		origin = path
		l.origins[p] = path
	}
	l.mu.Unlock()

	return &Module{name: logicalName, origin: origin, plugin: p}, nil
}

// Module is a loaded plugin.
type Module struct {
	name   string
	origin string
	plugin *plugin.Plugin
}

// Name returns the logical name the module was loaded under.
func (m *Module) Name() string { return m.name }

// Origin returns the artifact path the plugin was loaded from.
func (m *Module) Origin() string { return m.origin }

// Lookup returns the exported symbol. Variables are returned as pointers.
func (m *Module) Lookup(symbol string) (any, error) {
	sym, err := m.plugin.Lookup(symbol)
	if err != nil {
		return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrSymbolNotFound, err.Error()), "module", m.name), "symbol", symbol)
	}
	return sym, nil
}
