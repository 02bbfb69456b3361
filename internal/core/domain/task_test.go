package domain_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vestige-research/eeg-alpha/internal/core/domain"
)

func TestParseFailurePolicy(t *testing.T) {
	tests := []struct {
		in   string
		want domain.FailurePolicy
	}{
		{"", domain.PolicyFail},
		{"fail", domain.PolicyFail},
		{"Warn", domain.PolicyWarn},
		{" ignore ", domain.PolicyIgnore},
	}
	for _, tt := range tests {
		got, err := domain.ParseFailurePolicy(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := domain.ParseFailurePolicy("explode")
	assert.ErrorIs(t, err, domain.ErrInvalidFailurePolicy)
}

func TestTask_PolicyDefaults(t *testing.T) {
	task := domain.Task{Name: "test"}
	assert.Equal(t, domain.PolicyFail, task.Policy())
	assert.Equal(t, "test failed, continuing", task.WarningMessage())

	task.OnFailure = domain.PolicyWarn
	task.Warning = "tests failed"
	assert.Equal(t, domain.PolicyWarn, task.Policy())
	assert.Equal(t, "tests failed", task.WarningMessage())
}

func TestTask_MissingParams(t *testing.T) {
	task := domain.Task{
		Name:     "branch",
		Requires: []domain.Param{{Name: "CHORE_TEST_NAME", Usage: "branch name"}},
	}

	t.Setenv("CHORE_TEST_NAME", "")
	missing := task.MissingParams(nil)
	require.Len(t, missing, 1)
	assert.Equal(t, "CHORE_TEST_NAME", missing[0].Name)

	assert.Empty(t, task.MissingParams(map[string]string{"CHORE_TEST_NAME": "feat/x"}))

	t.Setenv("CHORE_TEST_NAME", "from-env")
	assert.Empty(t, task.MissingParams(nil))
}

func TestCommandError(t *testing.T) {
	cause := errors.New("exit status 2")
	err := &domain.CommandError{Command: "ruff check .", ExitCode: 2, Err: cause}
	assert.Equal(t, `"ruff check ." exited with status 2`, err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestDefaultStorePath(t *testing.T) {
	assert.Equal(t, filepath.Join(".chore", "store"), domain.DefaultStorePath())
}

func TestBootstrap_EnvPath(t *testing.T) {
	assert.Equal(t, filepath.Join("/work", ".venv"), domain.Bootstrap{}.EnvPath("/work"))
	assert.Equal(t, filepath.Join("/work", "env"), domain.Bootstrap{EnvDir: "env"}.EnvPath("/work"))
	assert.Equal(t, "/opt/venvs/eeg", domain.Bootstrap{EnvDir: "/opt/venvs/eeg/"}.EnvPath("/work"))
}
