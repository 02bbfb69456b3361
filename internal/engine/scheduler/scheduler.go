// Package scheduler runs planned tasks one after another.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"sync"

	"github.com/vestige-research/eeg-alpha/internal/core/domain"
	"github.com/vestige-research/eeg-alpha/internal/core/ports"
	"go.trai.ch/zerr"
)

// TaskStatus represents the status of a task.
type TaskStatus string

const (
	// StatusPending indicates the task is waiting to be executed.
	StatusPending TaskStatus = "Pending"
	// StatusRunning indicates the task is currently executing.
	StatusRunning TaskStatus = "Running"
	// StatusCompleted indicates the task has finished successfully.
	StatusCompleted TaskStatus = "Completed"
	// StatusFailed indicates the task execution failed.
	StatusFailed TaskStatus = "Failed"
	// StatusWarned indicates a fail-soft task failed and the run went on.
	StatusWarned TaskStatus = "Warned"
)

// Scheduler manages the execution of a task plan.
type Scheduler struct {
	executor   ports.Executor
	remover    ports.Remover
	tracer     ports.Tracer
	envFactory ports.EnvironmentFactory
	logger     ports.Logger

	// stdout and stderr receive the output of interactive tasks.
	stdout io.Writer
	stderr io.Writer

	mu         sync.RWMutex
	taskStatus map[string]TaskStatus
}

// NewScheduler creates a new Scheduler with the given dependencies.
func NewScheduler(
	executor ports.Executor,
	remover ports.Remover,
	tracer ports.Tracer,
	envFactory ports.EnvironmentFactory,
	logger ports.Logger,
) *Scheduler {
	return &Scheduler{
		executor:   executor,
		remover:    remover,
		tracer:     tracer,
		envFactory: envFactory,
		logger:     logger,
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		taskStatus: make(map[string]TaskStatus),
	}
}

// WithConsole sets the streams interactive tasks write to.
func (s *Scheduler) WithConsole(stdout, stderr io.Writer) *Scheduler {
	s.stdout = stdout
	s.stderr = stderr
	return s
}

func (s *Scheduler) initTaskStatuses(plan []domain.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.taskStatus)
	for _, task := range plan {
		s.taskStatus[task.Name] = StatusPending
	}
}

func (s *Scheduler) updateStatus(name string, status TaskStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.taskStatus[name] = status
}

// Run plans targets with their prerequisites and executes the plan sequentially.
//
// vars holds NAME=value assignments from the command line. They satisfy
// required parameters and are exported to every command of the run. When a
// planned task lacks a required parameter, its usage is printed and Run
// returns before any command is invoked.
func (s *Scheduler) Run(ctx context.Context, project *domain.Project, targets []string, vars map[string]string) error {
	plan, err := project.Graph.Plan(targets)
	if err != nil {
		return err
	}

	if err := s.checkParams(plan, vars); err != nil {
		return err
	}

	names := make([]string, 0, len(plan))
	deps := make(map[string][]string, len(plan))
	for _, task := range plan {
		names = append(names, task.Name)
		deps[task.Name] = task.Dependencies
	}
	s.tracer.EmitPlan(ctx, names, deps, targets)

	env, err := s.environment(ctx, project)
	if err != nil {
		return err
	}

	s.initTaskStatuses(plan)

	for i := range plan {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.runTask(ctx, project.Root(), &plan[i], env, vars); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scheduler) checkParams(plan []domain.Task, vars map[string]string) error {
	var errs error
	for _, task := range plan {
		for _, p := range task.MissingParams(vars) {
			if p.Usage != "" {
				s.logger.Warn(p.Usage)
			}
			err := zerr.With(zerr.Wrap(domain.ErrMissingParameter, p.Name), "param", p.Name)
			errs = errors.Join(errs, zerr.With(err, "task", task.Name))
		}
	}
	return errs
}

// environment returns the activated environment, or nil when tasks should run
// with the process environment.
func (s *Scheduler) environment(ctx context.Context, project *domain.Project) ([]string, error) {
	b := project.Bootstrap
	if !b.Activate {
		return nil, nil
	}

	env, err := s.envFactory.GetEnvironment(ctx, project.Root(), b)
	if errors.Is(err, domain.ErrEnvironmentMissing) {
		s.logger.Warn(fmt.Sprintf("%s not found, using the system environment (run `chore setup`)", b.EnvPath(project.Root())))
		return nil, nil
	}
	return env, err
}

func (s *Scheduler) runTask(ctx context.Context, root string, task *domain.Task, env []string, vars map[string]string) error {
	policy := task.Policy()
	s.updateStatus(task.Name, StatusRunning)

	ctx, span := s.tracer.Start(ctx, task.Name, ports.WithAttribute("chore.policy", string(policy)))
	var stdout, stderr io.Writer = span, span
	if task.Interactive {
		stdout, stderr = s.stdout, s.stderr
	}
	err := s.execute(ctx, root, withVars(task, vars), env, stdout, stderr)

	switch {
	case err == nil:
		span.End()
		s.updateStatus(task.Name, StatusCompleted)
		return nil

	case ctx.Err() != nil:
		span.RecordError(err)
		span.End()
		s.updateStatus(task.Name, StatusFailed)
		return ctx.Err()

	case policy == domain.PolicyIgnore:
		span.SetAttribute("chore.ignored_errors", err.Error())
		span.End()
		s.updateStatus(task.Name, StatusCompleted)
		return nil

	case policy == domain.PolicyWarn:
		span.RecordError(err)
		span.End()
		s.updateStatus(task.Name, StatusWarned)
		s.logger.Warn(task.WarningMessage())
		return nil

	default:
		span.RecordError(err)
		span.End()
		s.updateStatus(task.Name, StatusFailed)
		return zerr.With(zerr.Wrap(err, domain.ErrTaskExecutionFailed.Error()), "task", task.Name)
	}
}

// execute runs the commands and then the removals of task.
// Under PolicyIgnore every step runs and the failures are joined, otherwise the first failure ends the task.
func (s *Scheduler) execute(ctx context.Context, root string, task *domain.Task, env []string, stdout, stderr io.Writer) error {
	keepGoing := task.Policy() == domain.PolicyIgnore

	var errs error
	for _, command := range task.Commands {
		err := s.executor.Execute(ctx, task, command, env, stdout, stderr)
		if err == nil {
			continue
		}
		if !keepGoing || ctx.Err() != nil {
			return err
		}
		errs = errors.Join(errs, err)
	}

	for _, pattern := range task.Remove {
		removed, err := s.remover.Remove(root, pattern)
		for _, path := range removed {
			_, _ = fmt.Fprintf(stdout, "removed %s\n", path)
		}
		if err == nil {
			continue
		}
		if !keepGoing {
			return err
		}
		errs = errors.Join(errs, err)
	}
	return errs
}

// withVars returns a copy of task whose environment also carries vars.
func withVars(task *domain.Task, vars map[string]string) *domain.Task {
	if len(vars) == 0 {
		return task
	}
	t := *task
	t.Environment = make(map[string]string, len(task.Environment)+len(vars))
	maps.Copy(t.Environment, task.Environment)
	maps.Copy(t.Environment, vars)
	return &t
}
