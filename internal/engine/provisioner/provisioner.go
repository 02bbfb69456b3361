// Package provisioner bootstraps the project's Python virtual environment.
package provisioner

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"github.com/vestige-research/eeg-alpha/internal/core/domain"
	"github.com/vestige-research/eeg-alpha/internal/core/ports"
	"go.trai.ch/zerr"
	"mvdan.cc/sh/v3/syntax"
)

// Step names, in execution order.
const (
	StepInterpreter = "setup: interpreter"
	StepEnvironment = "setup: environment"
	StepActivate    = "setup: activate"
	StepInstaller   = "setup: installer"
	StepManifest    = "setup: manifest"
	StepTools       = "setup: tools"
	StepHooks       = "setup: hooks"
)

// Provisioner creates and fills the virtual environment. Every step is fail-fast.
type Provisioner struct {
	probe      ports.InterpreterProbe
	executor   ports.Executor
	envFactory ports.EnvironmentFactory
	hasher     ports.Hasher
	store      ports.StampStore
	tracer     ports.Tracer
	logger     ports.Logger
}

// NewProvisioner creates a new Provisioner with the given dependencies.
func NewProvisioner(
	probe ports.InterpreterProbe,
	executor ports.Executor,
	envFactory ports.EnvironmentFactory,
	hasher ports.Hasher,
	store ports.StampStore,
	tracer ports.Tracer,
	logger ports.Logger,
) *Provisioner {
	return &Provisioner{
		probe:      probe,
		executor:   executor,
		envFactory: envFactory,
		hasher:     hasher,
		store:      store,
		tracer:     tracer,
		logger:     logger,
	}
}

// Setup provisions the environment of project.
//
// The environment directory is created only when absent. When it already
// exists and the fingerprint of the manifest, tools, hooks and interpreter
// matches the last successful setup, the install steps are skipped unless
// force is set.
func (p *Provisioner) Setup(ctx context.Context, project *domain.Project, force bool) error {
	root := project.Root()
	b := project.Bootstrap
	envPath := b.EnvPath(root)
	setupTask := &domain.Task{Name: "setup", WorkingDir: root}

	var version string
	err := p.step(ctx, StepInterpreter, func(ctx context.Context, w io.Writer) error {
		v, err := p.probe.Probe(ctx, root, b)
		if err != nil {
			return err
		}
		version = v
		_, _ = io.WriteString(w, b.Interpreter+" "+v+"\n")
		return nil
	})
	if err != nil {
		return err
	}

	created := false
	err = p.step(ctx, StepEnvironment, func(ctx context.Context, w io.Writer) error {
		if info, err := os.Stat(envPath); err == nil && info.IsDir() {
			_, _ = io.WriteString(w, envPath+" already exists\n")
			return nil
		}
		created = true
		return p.executor.Execute(ctx, setupTask, b.Interpreter+" "+commandLine("-m", "venv", envPath), nil, w, w)
	})
	if err != nil {
		return err
	}

	var env []string
	err = p.step(ctx, StepActivate, func(ctx context.Context, w io.Writer) error {
		activated, err := p.envFactory.GetEnvironment(ctx, root, b)
		if err != nil {
			return err
		}
		env = activated
		_, _ = io.WriteString(w, "VIRTUAL_ENV="+envPath+"\n")
		return nil
	})
	if err != nil {
		return err
	}

	fingerprint, err := p.hasher.Fingerprint(root, b, version)
	if err != nil {
		return wrapStep(err, StepManifest)
	}

	if !force && !created && p.upToDate(root, fingerprint) {
		p.logger.Info("environment up to date: " + envPath)
		return nil
	}

	steps := []struct {
		name    string
		command string
		skip    bool
	}{
		{StepInstaller, commandLine("python", "-m", "pip", "install", "--upgrade", "pip"), false},
		{StepManifest, commandLine("python", "-m", "pip", "install", "-r", b.Manifest), b.Manifest == ""},
		{StepTools, commandLine(append([]string{"python", "-m", "pip", "install"}, b.Tools...)...), len(b.Tools) == 0},
		{StepHooks, hookCommand(b.Hooks), len(b.Hooks) == 0},
	}
	for _, s := range steps {
		if s.skip {
			continue
		}
		err := p.step(ctx, s.name, func(ctx context.Context, w io.Writer) error {
			return p.executor.Execute(ctx, setupTask, s.command, env, w, w)
		})
		if err != nil {
			return err
		}
	}

	stamp := domain.Stamp{Name: domain.SetupStampName, Fingerprint: fingerprint, Timestamp: time.Now()}
	if err := p.store.Put(root, stamp); err != nil {
		p.logger.Warn("could not record setup stamp: " + err.Error())
	}
	p.logger.Info("environment ready: " + envPath)
	return nil
}

func (p *Provisioner) upToDate(root, fingerprint string) bool {
	stamp, err := p.store.Get(root, domain.SetupStampName)
	if err != nil {
		p.logger.Warn("ignoring unreadable setup stamp: " + err.Error())
		return false
	}
	return stamp != nil && stamp.Fingerprint == fingerprint
}

// step runs fn inside a span named name.
func (p *Provisioner) step(ctx context.Context, name string, fn func(context.Context, io.Writer) error) error {
	ctx, span := p.tracer.Start(ctx, name)
	defer span.End()

	if err := fn(ctx, span); err != nil {
		span.RecordError(err)
		return wrapStep(err, name)
	}
	return nil
}

func wrapStep(err error, name string) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return zerr.With(zerr.Wrap(err, domain.ErrProvisionFailed.Error()), "step", strings.TrimPrefix(name, "setup: "))
}

func hookCommand(hooks []string) string {
	args := []string{"pre-commit", "install"}
	for _, h := range hooks {
		args = append(args, "--hook-type", h)
	}
	return commandLine(args...)
}

// commandLine joins args into a shell line, quoting where needed.
func commandLine(args ...string) string {
	quoted := make([]string, 0, len(args))
	for _, arg := range args {
		q, err := syntax.Quote(arg, syntax.LangPOSIX)
		if err != nil {
			q = arg
		}
		quoted = append(quoted, q)
	}
	return strings.Join(quoted, " ")
}
