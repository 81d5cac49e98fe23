package sidecar

// File represents the structure of a `.gbld` build customization sidecar.
// The output of Command uses the same schema; a nested command is ignored.
type File struct {
	Sources     []string          `yaml:"sources"`
	Flags       []string          `yaml:"flags"`
	Libraries   []string          `yaml:"libraries"`
	LibraryDirs []string          `yaml:"library_dirs"`
	IncludeDirs []string          `yaml:"include_dirs"`
	Env         map[string]string `yaml:"env"`
	Options     map[string]any    `yaml:"options"`
	Command     []string          `yaml:"command"`
}
