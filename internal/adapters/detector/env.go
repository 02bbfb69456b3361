// Package detector inspects the terminal to pick output and execution modes.
package detector

import (
	"os"
	"strings"

	"github.com/vestige-research/eeg-alpha/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/term"
)

// OutputMode represents the rendering mode for task status.
type OutputMode int

const (
	// ModeAuto picks the renderer from the environment.
	ModeAuto OutputMode = iota
	// ModeLinear prints status lines and prefixed task output.
	ModeLinear
	// ModeQuiet prints status lines and only the output of failed tasks.
	ModeQuiet
)

// String returns the flag value of the mode.
func (m OutputMode) String() string {
	switch m {
	case ModeLinear:
		return "linear"
	case ModeQuiet:
		return "quiet"
	default:
		return "auto"
	}
}

// Environment describes where chore is running.
type Environment struct {
	// TTY is true when stdout is a terminal.
	TTY bool
	// CI is true when a CI variable is set.
	CI bool
}

// Interactive reports whether a person is watching the output.
func (e Environment) Interactive() bool {
	return e.TTY && !e.CI
}

// DetectEnvironment inspects stdout and the CI variable.
func DetectEnvironment() Environment {
	ci := os.Getenv("CI")
	return Environment{
		TTY: term.IsTerminal(int(os.Stdout.Fd())),
		CI:  ci == "true" || ci == "1",
	}
}

// ParseMode converts an --output flag value into an OutputMode.
func ParseMode(flag string) (OutputMode, error) {
	switch strings.ToLower(strings.TrimSpace(flag)) {
	case "", "auto":
		return ModeAuto, nil
	case "linear", "ci":
		return ModeLinear, nil
	case "quiet":
		return ModeQuiet, nil
	default:
		return ModeAuto, zerr.With(zerr.Wrap(domain.ErrInvalidOutputMode, flag), "output", flag)
	}
}

// ResolveMode maps ModeAuto to a concrete renderer. Every environment gets the linear
// renderer; the Environment only decides colors and whether tools get a terminal.
func ResolveMode(mode OutputMode) OutputMode {
	if mode == ModeAuto {
		return ModeLinear
	}
	return mode
}
