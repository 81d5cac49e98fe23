package ports

// Module is a loaded module handle.
//
//go:generate mockgen -source=dynload.go -destination=mocks/mock_dynload.go -package=mocks
type Module interface {
	// Name returns the logical name the module was loaded under.
	Name() string
	// Origin returns the path the module was loaded from.
	Origin() string
	// Lookup returns an exported symbol.
	Lookup(symbol string) (any, error)
}

// DynamicLoader maps artifacts into the running process.
type DynamicLoader interface {
	// Open loads the artifact at path under logicalName.
	Open(logicalName, path string) (Module, error)
}
