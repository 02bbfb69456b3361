package ports

import "github.com/vestige-research/eeg-alpha/internal/core/domain"

// ConfigLoader defines the interface for loading the project configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the configuration reachable from path and returns the project.
	// If path names a file it is used directly. Otherwise the loader walks up
	// from the directory looking for a config file and falls back to the
	// built-in task table rooted at path.
	Load(path string) (*domain.Project, error)
}

// ConfigScaffolder writes a starter configuration into a directory.
type ConfigScaffolder interface {
	// Scaffold writes the built-in task table to dir in the given format
	// ("yaml" or "toml") and returns the path of the new file.
	Scaffold(dir, format string) (string, error)
}
