package config

// File represents the structure of a gimport.yaml or gimport.toml configuration file.
type File struct {
	SearchPaths          []string       `yaml:"search_paths" toml:"search_paths"`
	Reload               *bool          `yaml:"reload" toml:"reload"`
	BuildDir             string         `yaml:"build_dir" toml:"build_dir"`
	MaxReloadGenerations int            `yaml:"max_reload_generations" toml:"max_reload_generations"`
	Extensions           []string       `yaml:"extensions" toml:"extensions"`
	BuildOptions         map[string]any `yaml:"build_options" toml:"build_options"`
}
