package domain

import (
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/zerr"
)

// FailurePolicy controls how a failing command affects its task and the enclosing run.
type FailurePolicy string

const (
	// PolicyFail stops the task at the first failing command and aborts the run.
	PolicyFail FailurePolicy = "fail"
	// PolicyWarn stops the task at the first failing command, prints a warning
	// and lets the run continue as if the task had succeeded.
	PolicyWarn FailurePolicy = "warn"
	// PolicyIgnore runs every command and removal of the task and suppresses
	// individual failures.
	PolicyIgnore FailurePolicy = "ignore"
)

// ParseFailurePolicy converts a configuration value into a FailurePolicy.
// An empty value yields PolicyFail.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch FailurePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyFail:
		return PolicyFail, nil
	case PolicyWarn:
		return PolicyWarn, nil
	case PolicyIgnore:
		return PolicyIgnore, nil
	default:
		return "", zerr.With(zerr.Wrap(ErrInvalidFailurePolicy, s), "value", s)
	}
}

// Param is a named value a task needs before any of its commands may run.
type Param struct {
	Name  string
	Usage string
}

// Task represents a named unit of the developer-tooling surface.
type Task struct {
	Name         string
	Description  string
	Commands     []string
	Remove       []string
	Dependencies []string
	Requires     []Param
	OnFailure    FailurePolicy
	Warning      string
	Environment  map[string]string
	WorkingDir   string
	// Interactive tasks prompt the user, so they run on the real terminal
	// instead of having their output captured.
	Interactive bool
}

// Policy returns the effective failure policy of the task.
func (t *Task) Policy() FailurePolicy {
	if t.OnFailure == "" {
		return PolicyFail
	}
	return t.OnFailure
}

// WarningMessage returns the text printed when a fail-soft task fails.
func (t *Task) WarningMessage() string {
	if t.Warning != "" {
		return t.Warning
	}
	return t.Name + " failed, continuing"
}

// MissingParams returns the required parameters of the task that have no
// value in vars or in the process environment.
func (t *Task) MissingParams(vars map[string]string) []Param {
	var missing []Param
	for _, p := range t.Requires {
		if v, ok := vars[p.Name]; ok && v != "" {
			continue
		}
		if v := os.Getenv(p.Name); v != "" {
			continue
		}
		missing = append(missing, p)
	}
	return missing
}

// Bootstrap describes the isolated environment that setup provisions.
type Bootstrap struct {
	// Interpreter is the command used to create the environment, e.g. "python3".
	Interpreter string
	// VersionConstraint is a semver constraint the interpreter must satisfy.
	// Empty means any version.
	VersionConstraint string
	// EnvDir is the environment directory, relative to the project root.
	EnvDir string
	// Manifest is the pinned runtime dependency file. Empty skips the step.
	Manifest string
	// Tools are the development tools installed into the environment.
	Tools []string
	// Hooks are the commit hook types to install.
	Hooks []string
	// Activate makes tasks run inside the environment when it exists.
	Activate bool
}

// EnvPath returns the absolute environment directory under root.
func (b Bootstrap) EnvPath(root string) string {
	dir := b.EnvDir
	if dir == "" {
		dir = DefaultEnvDir
	}
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir)
	}
	return filepath.Join(root, dir)
}

// Project is the loaded configuration: the task graph plus provisioning settings.
type Project struct {
	// ConfigPath is the file the project was loaded from. Empty for the built-in table.
	ConfigPath string
	Graph      *Graph
	Bootstrap  Bootstrap
}

// Root returns the project root directory.
func (p *Project) Root() string {
	return p.Graph.Root()
}
