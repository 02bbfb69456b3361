package ports

import (
	"context"
	"io"

	"github.com/vestige-research/eeg-alpha/internal/core/domain"
)

// Executor defines the interface for executing task commands.
//
//go:generate go run go.uber.org/mock/mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs a single shell command line on behalf of task.
	//
	// The command runs in task.WorkingDir with task.Environment applied on top
	// of env, which contains "KEY=VALUE" entries (typically from an
	// EnvironmentFactory). A non-zero exit is reported as *domain.CommandError.
	Execute(ctx context.Context, task *domain.Task, command string, env []string, stdout, stderr io.Writer) error
}
