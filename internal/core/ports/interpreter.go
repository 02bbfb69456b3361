package ports

import (
	"context"

	"github.com/vestige-research/eeg-alpha/internal/core/domain"
)

// InterpreterProbe checks that the interpreter used to create the environment is usable.
//
//go:generate go run go.uber.org/mock/mockgen -source=interpreter.go -destination=mocks/mock_interpreter.go -package=mocks
type InterpreterProbe interface {
	// Probe runs the configured interpreter and returns its version.
	// It returns domain.ErrInterpreterNotFound when the command is not on PATH
	// and domain.ErrInterpreterVersion when the version does not satisfy
	// b.VersionConstraint.
	Probe(ctx context.Context, root string, b domain.Bootstrap) (string, error)
}
