// Package config provides the configuration loader for gimport.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"go.trai.ch/gimport/internal/core/domain"
	"go.trai.ch/gimport/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*Loader)(nil)

// configFileNames are tried in order in each directory.
var configFileNames = []string{
	domain.ConfigFileName,
	domain.ConfigFileNameYML,
	domain.ConfigFileNameTOML,
}

// Loader implements ports.ConfigLoader using a YAML or TOML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load discovers the configuration file from cwd upwards, decodes it and applies
// environment overrides. A missing file yields the defaults.
func (l *Loader) Load(cwd string) (domain.Config, error) {
	cfg := domain.DefaultConfig()

	configPath, err := l.DiscoverConfigPath(cwd)
	if err != nil {
		return domain.Config{}, err
	}

	if configPath != "" {
		file, err := readFile(configPath)
		if err != nil {
			return domain.Config{}, zerr.With(err, "path", configPath)
		}
		cfg = l.apply(cfg, file, filepath.Dir(configPath))
	}

	cfg, err = applyEnv(cfg, os.LookupEnv)
	if err != nil {
		return domain.Config{}, err
	}

	return cfg.WithDefaults(), nil
}

// DiscoverConfigPath walks up from cwd to find a configuration file.
func (l *Loader) DiscoverConfigPath(cwd string) (string, error) {
	currentDir, err := filepath.Abs(cwd)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "cwd", cwd)
	}

	for {
		for _, name := range configFileNames {
			candidate := filepath.Join(currentDir, name)
			if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
				return candidate, nil
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root
			return "", nil
		}
		currentDir = parentDir
	}
}

func readFile(path string) (*File, error) {
	// #nosec G304 -- path is discovered from the working directory
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}

	var file File
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, zerr.Wrap(err, domain.ErrConfigParseFailed.Error())
		}
	case ".toml":
		if err := toml.Unmarshal(data, &file); err != nil {
			return nil, zerr.Wrap(err, domain.ErrConfigParseFailed.Error())
		}
	default:
		return nil, zerr.With(zerr.Wrap(domain.ErrUnsupportedConfigFormat, "unknown extension"), "ext", ext)
	}
	return &file, nil
}

// apply overlays file on cfg. Relative paths are resolved against root, the
// directory holding the configuration file.
func (l *Loader) apply(cfg domain.Config, file *File, root string) domain.Config {
	if len(file.SearchPaths) > 0 {
		cfg.SearchPaths = make([]string, 0, len(file.SearchPaths))
		for _, p := range file.SearchPaths {
			cfg.SearchPaths = append(cfg.SearchPaths, resolvePath(root, p))
		}
	}
	if file.Reload != nil {
		cfg.ReloadSupport = *file.Reload
	}
	if file.BuildDir != "" {
		cfg.BuildDir = resolvePath(root, file.BuildDir)
	}
	if file.MaxReloadGenerations > 0 {
		cfg.MaxReloadGenerations = file.MaxReloadGenerations
	}
	if len(file.Extensions) > 0 {
		cfg.Extensions = make([]string, 0, len(file.Extensions))
		for _, ext := range file.Extensions {
			if !strings.HasPrefix(ext, ".") {
				l.Logger.Warn(fmt.Sprintf("extension %q has no leading dot, using %q", ext, "."+ext))
				ext = "." + ext
			}
			cfg.Extensions = append(cfg.Extensions, ext)
		}
	}
	for k, v := range file.BuildOptions {
		cfg.BuildOptions[k] = fmt.Sprint(v)
	}
	return cfg
}

// applyEnv applies the GIMPORT_* overrides. GIMPORT_PATH entries are followed by
// the working directory, as when no configuration is present.
func applyEnv(cfg domain.Config, lookup func(string) (string, bool)) (domain.Config, error) {
	if v, ok := lookup(domain.SearchPathEnv); ok && v != "" {
		cfg.SearchPaths = append(filepath.SplitList(v), "")
	}
	if v, ok := lookup(domain.BuildDirEnv); ok && v != "" {
		cfg.BuildDir = v
	}
	if v, ok := lookup(domain.ReloadEnv); ok && v != "" {
		reload, err := strconv.ParseBool(v)
		if err != nil {
			return domain.Config{}, zerr.With(zerr.Wrap(err, domain.ErrConfigParseFailed.Error()), "env", domain.ReloadEnv)
		}
		cfg.ReloadSupport = reload
	}
	return cfg, nil
}

func resolvePath(root, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
