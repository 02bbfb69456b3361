// Package venv activates and probes the project's Python virtual environment.
package venv

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/vestige-research/eeg-alpha/internal/core/domain"
	"go.trai.ch/zerr"
)

// EnvFactory implements ports.EnvironmentFactory for Python virtual environments.
type EnvFactory struct {
	environ func() []string
}

// NewEnvFactory creates an EnvFactory that starts from the process environment.
func NewEnvFactory() *EnvFactory {
	return &EnvFactory{environ: os.Environ}
}

// EnvDir returns the absolute environment directory of b under root.
func EnvDir(root string, b domain.Bootstrap) string {
	return b.EnvPath(root)
}

// Exists reports whether the environment directory of b exists under root.
func Exists(root string, b domain.Bootstrap) bool {
	info, err := os.Stat(EnvDir(root, b))
	return err == nil && info.IsDir()
}

// GetEnvironment returns the process environment with the virtual environment activated:
// VIRTUAL_ENV points at it, its bin directory leads PATH and PYTHONHOME is dropped.
func (e *EnvFactory) GetEnvironment(_ context.Context, root string, b domain.Bootstrap) ([]string, error) {
	dir := EnvDir(root, b)
	if !Exists(root, b) {
		return nil, zerr.With(zerr.Wrap(domain.ErrEnvironmentMissing, dir), "env_dir", dir)
	}

	return activate(e.environ(), dir), nil
}

func activate(base []string, dir string) []string {
	binDir := filepath.Join(dir, binDirName())

	env := make([]string, 0, len(base)+2)
	path := ""
	for _, kv := range base {
		key, value, _ := strings.Cut(kv, "=")
		switch key {
		case "PATH":
			path = value
		case "VIRTUAL_ENV", "PYTHONHOME":
		default:
			env = append(env, kv)
		}
	}

	if path != "" {
		path = binDir + string(os.PathListSeparator) + path
	} else {
		path = binDir
	}

	return append(env, "VIRTUAL_ENV="+dir, "PATH="+path)
}

func binDirName() string {
	if runtime.GOOS == "windows" {
		return "Scripts"
	}
	return "bin"
}
