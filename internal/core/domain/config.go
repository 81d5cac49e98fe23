package domain

// Config holds the process-wide importer settings.
type Config struct {
	// SearchPaths are the default search paths used when a lookup supplies none.
	SearchPaths []string
	// ReloadSupport serves reload copies so modules can be loaded again after a rebuild.
	ReloadSupport bool
	// BuildDir is the global build root. Empty means a build directory beside each source.
	BuildDir string
	// MaxReloadGenerations bounds the reload copies per artifact.
	MaxReloadGenerations int
	// Extensions are the recognized source extensions in priority order.
	Extensions []string
	// BuildOptions are the process-wide default build options.
	BuildOptions BuildOptions
}

// DefaultConfig returns a configuration with every default applied.
func DefaultConfig() Config {
	return Config{
		MaxReloadGenerations: DefaultMaxReloadGenerations,
		Extensions:           DefaultExtensions(),
		BuildOptions:         BuildOptions{},
	}
}

// WithDefaults fills unset fields with their defaults.
func (c Config) WithDefaults() Config {
	if c.MaxReloadGenerations <= 0 {
		c.MaxReloadGenerations = DefaultMaxReloadGenerations
	}
	if len(c.Extensions) == 0 {
		c.Extensions = DefaultExtensions()
	}
	if c.BuildOptions == nil {
		c.BuildOptions = BuildOptions{}
	}
	return c
}
