// Package app implements the application layer for chore.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/vestige-research/eeg-alpha/internal/adapters/detector"
	"github.com/vestige-research/eeg-alpha/internal/adapters/linear"
	"github.com/vestige-research/eeg-alpha/internal/adapters/shell"
	"github.com/vestige-research/eeg-alpha/internal/adapters/telemetry"
	"github.com/vestige-research/eeg-alpha/internal/adapters/watcher"
	"github.com/vestige-research/eeg-alpha/internal/core/domain"
	"github.com/vestige-research/eeg-alpha/internal/core/ports"
	"github.com/vestige-research/eeg-alpha/internal/engine/provisioner"
	"github.com/vestige-research/eeg-alpha/internal/engine/scheduler"
	"github.com/vestige-research/eeg-alpha/internal/ui/output"
	"github.com/vestige-research/eeg-alpha/internal/ui/style"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

const tracerName = "chore"

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	scaffolder   ports.ConfigScaffolder
	executor     ports.Executor
	remover      ports.Remover
	envFactory   ports.EnvironmentFactory
	probe        ports.InterpreterProbe
	hasher       ports.Hasher
	store        ports.StampStore
	watcher      ports.Watcher
	logger       ports.Logger

	stdout     io.Writer
	stderr     io.Writer
	configPath string
	debounce   time.Duration
	detect     func() detector.Environment
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	scaffolder ports.ConfigScaffolder,
	executor ports.Executor,
	remover ports.Remover,
	envFactory ports.EnvironmentFactory,
	probe ports.InterpreterProbe,
	hasher ports.Hasher,
	store ports.StampStore,
	fileWatcher ports.Watcher,
	log ports.Logger,
) *App {
	return &App{
		configLoader: loader,
		scaffolder:   scaffolder,
		executor:     executor,
		remover:      remover,
		envFactory:   envFactory,
		probe:        probe,
		hasher:       hasher,
		store:        store,
		watcher:      fileWatcher,
		logger:       log,
		stdout:       os.Stdout,
		stderr:       os.Stderr,
		configPath:   ".",
		debounce:     watcher.DefaultDebounceWindow,
		detect:       detector.DetectEnvironment,
	}
}

// WithOutput replaces the streams the renderer and listings write to.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	return a
}

// WithDebounce sets how long --watch waits for changes to settle.
func (a *App) WithDebounce(d time.Duration) *App {
	a.debounce = d
	return a
}

// WithEnvironment overrides terminal and CI detection.
func (a *App) WithEnvironment(env detector.Environment) *App {
	a.detect = func() detector.Environment { return env }
	return a
}

// SetConfigPath sets the file or directory configuration is loaded from.
func (a *App) SetConfigPath(path string) {
	if path == "" {
		path = "."
	}
	a.configPath = path
}

// SetLogFormat switches the logger between "text" and "json".
func (a *App) SetLogFormat(format string) error {
	l, switchable := a.logger.(interface{ SetJSON(bool) })
	switch strings.ToLower(format) {
	case "", "text":
		if switchable {
			l.SetJSON(false)
		}
		return nil
	case "json":
		if switchable {
			l.SetJSON(true)
		}
		return nil
	default:
		return zerr.With(zerr.New("unsupported log format, expected 'text' or 'json'"), "format", format)
	}
}

// RunOptions configuration for the Run method.
type RunOptions struct {
	// OutputMode is auto, linear or quiet.
	OutputMode string
	// Watch re-runs the targets whenever files under the project root change.
	Watch bool
	// TTY forces external tools onto a pseudo-terminal (true) or off it (false).
	// Nil decides from the environment.
	TTY *bool
}

// Run executes targets and their prerequisites.
func (a *App) Run(ctx context.Context, targets []string, vars map[string]string, opts RunOptions) error {
	if len(targets) == 0 {
		return domain.ErrNoTargetsSpecified
	}

	mode, err := detector.ParseMode(opts.OutputMode)
	if err != nil {
		return err
	}
	mode = detector.ResolveMode(mode)

	project, err := a.configLoader.Load(a.configPath)
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	// Reject unknown targets before anything is rendered.
	if _, err := project.Graph.Plan(targets); err != nil {
		return err
	}

	env := a.detect()
	a.configurePTY(env, opts.TTY)

	if opts.Watch {
		return a.watch(ctx, project, targets, vars, mode, env)
	}
	return a.runOnce(ctx, project, targets, vars, mode, env)
}

func (a *App) configurePTY(env detector.Environment, override *bool) {
	ex, ok := a.executor.(*shell.Executor)
	if !ok {
		return
	}
	usePTY := env.Interactive()
	if override != nil {
		usePTY = *override
	}
	ex.WithPTY(usePTY)
}

// colorProfile picks colors for env: full colors for a person at a terminal,
// plain ANSI for CI logs and none when output is redirected.
func colorProfile(env detector.Environment) func() termenv.Profile {
	switch {
	case env.Interactive():
		return output.ColorProfile
	case env.CI:
		return output.ColorProfileANSI
	default:
		return func() termenv.Profile { return termenv.Ascii }
	}
}

func (a *App) newRenderer(mode detector.OutputMode, env detector.Environment) ports.Renderer {
	opts := []linear.Option{linear.WithProfile(colorProfile(env))}
	if mode == detector.ModeQuiet {
		opts = append(opts, linear.Quiet())
	}
	return linear.NewRenderer(a.stdout, a.stderr, opts...)
}

// runOnce plans and runs targets once, with the renderer running next to the scheduler.
func (a *App) runOnce(
	ctx context.Context,
	project *domain.Project,
	targets []string,
	vars map[string]string,
	mode detector.OutputMode,
	env detector.Environment,
) error {
	renderer := a.newRenderer(mode, env)

	provider := telemetry.NewProvider(renderer)
	setupOTel(provider)
	defer func() {
		_ = provider.Shutdown(context.WithoutCancel(ctx))
	}()
	tracer := telemetry.NewOTelTracer(provider, tracerName).WithRenderer(renderer)

	sched := scheduler.NewScheduler(a.executor, a.remover, tracer, a.envFactory, a.logger).
		WithConsole(a.stdout, a.stderr)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := renderer.Start(ctx); err != nil {
			return err
		}
		return renderer.Wait()
	})

	g.Go(func() error {
		defer func() {
			_ = renderer.Stop()
		}()

		err := sched.Run(ctx, project, targets, vars)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, domain.ErrMissingParameter):
			return err
		default:
			return errors.Join(domain.ErrBuildExecutionFailed, err)
		}
	})

	return g.Wait()
}

// watch runs targets, then runs them again after every settled change until ctx ends.
func (a *App) watch(
	ctx context.Context,
	project *domain.Project,
	targets []string,
	vars map[string]string,
	mode detector.OutputMode,
	env detector.Environment,
) error {
	if err := a.watcher.Start(ctx, project.Root(), watchIgnores(project)); err != nil {
		return err
	}
	defer func() {
		_ = a.watcher.Stop()
	}()

	trigger := make(chan struct{}, 1)
	debouncer := watcher.NewDebouncer(a.debounce, func([]string) {
		select {
		case trigger <- struct{}{}:
		default:
		}
	})
	go func() {
		for event := range a.watcher.Events() {
			debouncer.Add(event.Path)
		}
	}()

	for {
		if err := a.runOnce(ctx, project, targets, vars, mode, env); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if !errors.Is(err, domain.ErrBuildExecutionFailed) {
				a.logger.Error(err)
			}
		}
		a.logger.Info("watching " + project.Root() + " for changes")

		select {
		case <-ctx.Done():
			return nil
		case <-trigger:
			a.logger.Info("change detected, re-running " + strings.Join(targets, ", "))
		}
	}
}

// watchIgnores keeps the environment directory out of the watch, wherever it is configured.
func watchIgnores(project *domain.Project) []string {
	root := project.Root()
	rel, err := filepath.Rel(root, project.Bootstrap.EnvPath(root))
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil
	}
	return []string{filepath.ToSlash(rel)}
}

// SetupOptions configuration for the Setup method.
type SetupOptions struct {
	// Force reinstalls even when the environment is up to date.
	Force bool
}

// Setup provisions the project's virtual environment.
func (a *App) Setup(ctx context.Context, opts SetupOptions) error {
	project, err := a.configLoader.Load(a.configPath)
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	env := a.detect()
	a.configurePTY(env, nil)
	renderer := a.newRenderer(detector.ModeLinear, env)

	provider := telemetry.NewProvider(renderer)
	setupOTel(provider)
	defer func() {
		_ = provider.Shutdown(context.WithoutCancel(ctx))
	}()
	tracer := telemetry.NewOTelTracer(provider, tracerName).WithRenderer(renderer)

	p := provisioner.NewProvisioner(a.probe, a.executor, a.envFactory, a.hasher, a.store, tracer, a.logger)
	return p.Setup(ctx, project, opts.Force)
}

// List prints the task table.
func (a *App) List(w io.Writer) error {
	project, err := a.configLoader.Load(a.configPath)
	if err != nil {
		return zerr.Wrap(err, "failed to load configuration")
	}

	width := 0
	for task := range project.Graph.Tasks() {
		width = max(width, lipgloss.Width(task.Name))
	}

	renderer := lipgloss.NewRenderer(w)
	renderer.SetColorProfile(colorProfile(a.detect())())
	name := style.Task.Renderer(renderer).Width(width + 2)
	dim := renderer.NewStyle().Foreground(style.Slate)

	for task := range project.Graph.Tasks() {
		line := name.Render(task.Name) + describe(task)
		if len(task.Dependencies) > 0 {
			line += dim.Render(" " + style.Arrow + " " + strings.Join(task.Dependencies, ", "))
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func describe(task domain.Task) string {
	switch {
	case task.Description != "":
		return task.Description
	case len(task.Commands) > 0:
		return strings.Join(task.Commands, " && ")
	case len(task.Remove) > 0:
		return "remove " + strings.Join(task.Remove, " ")
	default:
		return ""
	}
}

// Init writes the built-in task table to the current directory.
func (a *App) Init(format string) error {
	dir, err := os.Getwd()
	if err != nil {
		return zerr.Wrap(err, "failed to get working directory")
	}
	_, err = a.scaffolder.Scaffold(dir, format)
	return err
}

// setupOTel registers provider as the global tracer provider.
func setupOTel(provider *sdktrace.TracerProvider) {
	otel.SetTracerProvider(provider)
}
