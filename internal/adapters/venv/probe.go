package venv

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/vestige-research/eeg-alpha/internal/core/domain"
	"github.com/vestige-research/eeg-alpha/internal/core/ports"
	"go.trai.ch/zerr"
)

const commandNotFound = 127

var versionRegex = regexp.MustCompile(`\d+\.\d+(?:\.\d+)?`)

// Probe implements ports.InterpreterProbe by running "<interpreter> --version".
type Probe struct {
	executor ports.Executor
}

// NewProbe creates a Probe that runs the interpreter through executor.
func NewProbe(executor ports.Executor) *Probe {
	return &Probe{executor: executor}
}

// Probe returns the interpreter version after checking it against b.VersionConstraint.
func (p *Probe) Probe(ctx context.Context, root string, b domain.Bootstrap) (string, error) {
	var constraint *semver.Constraints
	if b.VersionConstraint != "" {
		c, err := semver.NewConstraint(b.VersionConstraint)
		if err != nil {
			return "", zerr.With(zerr.Wrap(domain.ErrInvalidVersionConstraint, err.Error()), "constraint", b.VersionConstraint)
		}
		constraint = c
	}

	var stdout, stderr bytes.Buffer
	task := &domain.Task{Name: "interpreter", WorkingDir: root}
	err := p.executor.Execute(ctx, task, b.Interpreter+" --version", nil, &stdout, &stderr)
	if err != nil {
		var cmdErr *domain.CommandError
		if errors.As(err, &cmdErr) && cmdErr.ExitCode == commandNotFound {
			return "", zerr.With(zerr.Wrap(domain.ErrInterpreterNotFound, b.Interpreter), "interpreter", b.Interpreter)
		}
		return "", zerr.With(zerr.Wrap(err, domain.ErrInterpreterVersion.Error()), "interpreter", b.Interpreter)
	}

	raw := versionRegex.FindString(reportedVersion(stdout.String(), stderr.String()))
	if raw == "" {
		err := zerr.With(zerr.Wrap(domain.ErrInterpreterVersion, "no version reported"), "interpreter", b.Interpreter)
		return "", zerr.With(err, "output", strings.TrimSpace(stdout.String()))
	}

	version, err := semver.NewVersion(raw)
	if err != nil {
		return "", zerr.With(zerr.Wrap(domain.ErrInterpreterVersion, err.Error()), "version", raw)
	}

	if constraint != nil && !constraint.Check(version) {
		err := zerr.With(zerr.Wrap(domain.ErrInterpreterVersion, version.String()), "interpreter", b.Interpreter)
		return "", zerr.With(err, "constraint", b.VersionConstraint)
	}

	return version.String(), nil
}

// reportedVersion returns the version text the interpreter printed.
// Older interpreters print it on stderr, after the echoed command line.
func reportedVersion(stdout, stderr string) string {
	if strings.TrimSpace(stdout) != "" {
		return stdout
	}
	var lines []string
	for line := range strings.Lines(stderr) {
		if !strings.HasPrefix(line, "$ ") {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "")
}
