package app

import (
	"context"

	"github.com/grindlemire/graft"
	"github.com/vestige-research/eeg-alpha/internal/adapters/cas"     //nolint:depguard // Wired in app layer
	"github.com/vestige-research/eeg-alpha/internal/adapters/config"  //nolint:depguard // Wired in app layer
	"github.com/vestige-research/eeg-alpha/internal/adapters/fs"      //nolint:depguard // Wired in app layer
	"github.com/vestige-research/eeg-alpha/internal/adapters/logger"  //nolint:depguard // Wired in app layer
	"github.com/vestige-research/eeg-alpha/internal/adapters/shell"   //nolint:depguard // Wired in app layer
	"github.com/vestige-research/eeg-alpha/internal/adapters/venv"    //nolint:depguard // Wired in app layer
	"github.com/vestige-research/eeg-alpha/internal/adapters/watcher" //nolint:depguard // Wired in app layer
	"github.com/vestige-research/eeg-alpha/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

// Components contains the initialized application components the CLI needs.
type Components struct {
	App    *App
	Logger ports.Logger
}

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			config.ScaffolderNodeID,
			shell.NodeID,
			fs.RemoverNodeID,
			fs.HasherNodeID,
			venv.EnvFactoryNodeID,
			venv.ProbeNodeID,
			cas.NodeID,
			watcher.NodeID,
			logger.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			a, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return &Components{App: a, Logger: log}, nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	scaffolder, err := graft.Dep[ports.ConfigScaffolder](ctx)
	if err != nil {
		return nil, err
	}

	executor, err := graft.Dep[ports.Executor](ctx)
	if err != nil {
		return nil, err
	}

	remover, err := graft.Dep[ports.Remover](ctx)
	if err != nil {
		return nil, err
	}

	hasher, err := graft.Dep[ports.Hasher](ctx)
	if err != nil {
		return nil, err
	}

	envFactory, err := graft.Dep[ports.EnvironmentFactory](ctx)
	if err != nil {
		return nil, err
	}

	probe, err := graft.Dep[ports.InterpreterProbe](ctx)
	if err != nil {
		return nil, err
	}

	store, err := graft.Dep[ports.StampStore](ctx)
	if err != nil {
		return nil, err
	}

	fileWatcher, err := graft.Dep[ports.Watcher](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, scaffolder, executor, remover, envFactory, probe, hasher, store, fileWatcher, log), nil
}
