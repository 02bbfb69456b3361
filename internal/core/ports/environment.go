// Package ports defines the core interfaces for the application.
package ports

import (
	"context"

	"github.com/vestige-research/eeg-alpha/internal/core/domain"
)

// EnvironmentFactory produces the process environment for commands that run
// inside the project's isolated interpreter environment.
//
//go:generate go run go.uber.org/mock/mockgen -source=environment.go -destination=mocks/mock_environment.go -package=mocks
type EnvironmentFactory interface {
	// GetEnvironment returns "KEY=VALUE" entries that activate the environment
	// described by b under root. It returns domain.ErrEnvironmentMissing when
	// the environment directory does not exist.
	GetEnvironment(ctx context.Context, root string, b domain.Bootstrap) ([]string, error)
}
