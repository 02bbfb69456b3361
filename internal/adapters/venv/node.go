package venv

import (
	"context"

	"github.com/grindlemire/graft"
	"github.com/vestige-research/eeg-alpha/internal/adapters/shell"
	"github.com/vestige-research/eeg-alpha/internal/core/ports"
)

const (
	// EnvFactoryNodeID is the unique identifier for the environment factory Graft node.
	EnvFactoryNodeID graft.ID = "adapter.venv.env_factory"
	// ProbeNodeID is the unique identifier for the interpreter probe Graft node.
	ProbeNodeID graft.ID = "adapter.venv.probe"
)

func init() {
	graft.Register(graft.Node[ports.EnvironmentFactory]{
		ID:        EnvFactoryNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.EnvironmentFactory, error) {
			return NewEnvFactory(), nil
		},
	})

	graft.Register(graft.Node[ports.InterpreterProbe]{
		ID:        ProbeNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{shell.NodeID},
		Run: func(ctx context.Context) (ports.InterpreterProbe, error) {
			executor, err := graft.Dep[ports.Executor](ctx)
			if err != nil {
				return nil, err
			}
			return NewProbe(executor), nil
		},
	})
}
