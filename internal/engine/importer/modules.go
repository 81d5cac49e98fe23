package importer

import (
	"slices"
	"sync"

	"go.trai.ch/gimport/internal/core/ports"
)

// Modules is the table of modules loaded into the process, keyed by logical name.
type Modules struct {
	mu      sync.RWMutex
	modules map[string]ports.Module
}

// NewModules creates an empty table.
func NewModules() *Modules {
	return &Modules{modules: make(map[string]ports.Module)}
}

// Get returns the module loaded under name.
func (m *Modules) Get(name string) (ports.Module, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mod, ok := m.modules[name]
	return mod, ok
}

// Has reports whether a module is loaded under name.
func (m *Modules) Has(name string) bool {
	_, ok := m.Get(name)
	return ok
}

// Set records mod under name, replacing any previous module.
func (m *Modules) Set(name string, mod ports.Module) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modules[name] = mod
}

// Names returns the loaded names in sorted order.
func (m *Modules) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.modules))
	for name := range m.modules {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
