package ports

import "go.trai.ch/gimport/internal/core/domain"

// ConfigLoader defines the interface for loading the importer configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load discovers the configuration file from cwd upwards and applies environment
	// overrides. A missing file yields the defaults.
	Load(cwd string) (domain.Config, error)

	// DiscoverConfigPath walks up from cwd to find a configuration file.
	// Returns the empty string when there is none.
	DiscoverConfigPath(cwd string) (string, error)
}
