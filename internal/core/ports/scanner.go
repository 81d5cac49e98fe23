package ports

// DependencyScanner propagates dependency freshness onto a module's primary source.
//
//go:generate mockgen -source=scanner.go -destination=mocks/mock_scanner.go -package=mocks
type DependencyScanner interface {
	// CheckAndTouch advances the source's mtime to that of its newest dependency
	// listed in the dependency sidecar. A missing sidecar is a no-op.
	CheckAndTouch(sourcePath string) error

	// Dependencies returns the files the source depends on: the entries of the
	// dependency sidecar, the sidecar itself and the customization sidecar.
	Dependencies(sourcePath string) ([]string, error)
}
