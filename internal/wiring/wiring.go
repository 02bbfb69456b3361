// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "github.com/vestige-research/eeg-alpha/internal/adapters/cas"
	_ "github.com/vestige-research/eeg-alpha/internal/adapters/config"
	_ "github.com/vestige-research/eeg-alpha/internal/adapters/fs"
	_ "github.com/vestige-research/eeg-alpha/internal/adapters/logger"
	_ "github.com/vestige-research/eeg-alpha/internal/adapters/shell"
	_ "github.com/vestige-research/eeg-alpha/internal/adapters/venv"
	_ "github.com/vestige-research/eeg-alpha/internal/adapters/watcher"
	// Register app nodes.
	_ "github.com/vestige-research/eeg-alpha/internal/app"
)
