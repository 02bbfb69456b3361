package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vestige-research/eeg-alpha/internal/adapters/config"
	"github.com/vestige-research/eeg-alpha/internal/core/domain"
	"github.com/vestige-research/eeg-alpha/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func createFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), domain.FilePerm))
	return path
}

func taskNames(p *domain.Project) []string {
	var names []string
	for task := range p.Graph.Tasks() {
		names = append(names, task.Name)
	}
	return names
}

func newLoader(t *testing.T) *config.Loader {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Info(gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Warn(gomock.Any()).AnyTimes()
	return config.NewLoader(mockLogger)
}

func TestLoader_Load_BuiltInTable(t *testing.T) {
	dir := t.TempDir()

	project, err := newLoader(t).Load(dir)
	require.NoError(t, err)

	assert.Empty(t, project.ConfigPath)
	assert.Equal(t, dir, project.Root())
	assert.Equal(t, []string{
		"format", "lint", "test", "check", "commit", "branch",
		"sync", "push", "clean", "docs", "docs-render",
	}, taskNames(project))

	check, ok := project.Graph.GetTask("check")
	require.True(t, ok)
	assert.Equal(t, []string{"format", "lint", "test"}, check.Dependencies)
	assert.Empty(t, check.Commands)

	test, ok := project.Graph.GetTask("test")
	require.True(t, ok)
	assert.Equal(t, domain.PolicyWarn, test.Policy())
	assert.Equal(t, []string{"pytest"}, test.Commands)

	branch, ok := project.Graph.GetTask("branch")
	require.True(t, ok)
	require.Len(t, branch.Requires, 1)
	assert.Equal(t, "NAME", branch.Requires[0].Name)
	assert.Contains(t, branch.Requires[0].Usage, "NAME=")

	commit, ok := project.Graph.GetTask("commit")
	require.True(t, ok)
	assert.True(t, commit.Interactive)
	docs, ok := project.Graph.GetTask("docs")
	require.True(t, ok)
	assert.True(t, docs.Interactive)
	assert.False(t, test.Interactive)

	sync, ok := project.Graph.GetTask("sync")
	require.True(t, ok)
	assert.Equal(t, []string{"git checkout main", "git pull"}, sync.Commands)

	clean, ok := project.Graph.GetTask("clean")
	require.True(t, ok)
	assert.Equal(t, domain.PolicyIgnore, clean.Policy())
	assert.Contains(t, clean.Remove, "**/__pycache__")
	assert.Contains(t, clean.Remove, ".quarto")
	assert.Equal(t, dir, clean.WorkingDir)

	b := project.Bootstrap
	assert.Equal(t, "python3", b.Interpreter)
	assert.Equal(t, ">= 3.10", b.VersionConstraint)
	assert.Equal(t, domain.DefaultEnvDir, b.EnvDir)
	assert.Equal(t, "requirements.txt", b.Manifest)
	assert.Equal(t, []string{"ruff", "pytest", "pre-commit", "commitizen"}, b.Tools)
	assert.Equal(t, []string{"pre-commit", "commit-msg"}, b.Hooks)
	assert.True(t, b.Activate)
}

func TestLoader_Load_YAMLKeepsDeclarationOrder(t *testing.T) {
	dir := t.TempDir()
	createFile(t, dir, domain.ConfigFileName, `
version: "1"
environment:
  dir: env
  activate: false
tasks:
  zeta:
    cmd: ["echo zeta"]
  alpha:
    cmd: ["echo alpha"]
    dependsOn: [zeta]
    workingDir: sub
    env:
      GREETING: hi
`)

	project, err := newLoader(t).Load(dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, domain.ConfigFileName), project.ConfigPath)
	assert.Equal(t, []string{"zeta", "alpha"}, taskNames(project))

	alpha, ok := project.Graph.GetTask("alpha")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "sub"), alpha.WorkingDir)
	assert.Equal(t, "hi", alpha.Environment["GREETING"])
	assert.Equal(t, domain.PolicyFail, alpha.Policy())

	assert.Equal(t, "env", project.Bootstrap.EnvDir)
	assert.Equal(t, "requirements.txt", project.Bootstrap.Manifest)
	assert.False(t, project.Bootstrap.Activate)
	assert.Equal(t, "python3", project.Bootstrap.Interpreter)
}

func TestLoader_Load_WalksUp(t *testing.T) {
	root := t.TempDir()
	createFile(t, root, domain.ConfigFileName, `
tasks:
  hello:
    cmd: ["echo hello"]
`)
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, domain.DirPerm))

	project, err := newLoader(t).Load(nested)
	require.NoError(t, err)
	assert.Equal(t, root, project.Root())
	assert.Equal(t, []string{"hello"}, taskNames(project))
}

func TestLoader_Load_ExplicitFileAndRoot(t *testing.T) {
	dir := t.TempDir()
	path := createFile(t, dir, "custom.yaml", `
root: project
tasks:
  hello:
    cmd: ["echo hello"]
`)

	project, err := newLoader(t).Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "project"), project.Root())
}

func TestLoader_Load_TOML(t *testing.T) {
	dir := t.TempDir()
	createFile(t, dir, domain.TOMLConfigFileName, `
version = "1"

[interpreter]
command = "python3.12"
version = ">= 3.12"

[tasks.lint]
cmd = ["ruff check ."]

[tasks.branch]
cmd = ['git checkout -b "$NAME"']

[[tasks.branch.requires]]
name = "NAME"
usage = "usage: chore run branch NAME=<branch-name>"

[tasks.all-checks]
dependsOn = ["lint"]
onFailure = "warn"
`)

	project, err := newLoader(t).Load(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"lint", "branch", "all-checks"}, taskNames(project))
	assert.Equal(t, "python3.12", project.Bootstrap.Interpreter)
	assert.Equal(t, ">= 3.12", project.Bootstrap.VersionConstraint)

	branch, ok := project.Graph.GetTask("branch")
	require.True(t, ok)
	require.Len(t, branch.Requires, 1)
	assert.Equal(t, "NAME", branch.Requires[0].Name)

	all, ok := project.Graph.GetTask("all-checks")
	require.True(t, ok)
	assert.Equal(t, domain.PolicyWarn, all.Policy())
}

func TestLoader_Load_YAMLPreferredOverTOML(t *testing.T) {
	dir := t.TempDir()
	createFile(t, dir, domain.ConfigFileName, "tasks:\n  fromyaml:\n    cmd: [\"true\"]\n")
	createFile(t, dir, domain.TOMLConfigFileName, "[tasks.fromtoml]\ncmd = [\"true\"]\n")

	project, err := newLoader(t).Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"fromyaml"}, taskNames(project))
}

func TestLoader_Load_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name:    "invalid yaml",
			content: "tasks: [unterminated",
			wantErr: nil,
		},
		{
			name:    "invalid task name",
			content: "tasks:\n  \"bad name\":\n    cmd: [\"true\"]\n",
			wantErr: domain.ErrInvalidTaskName,
		},
		{
			name:    "empty task",
			content: "tasks:\n  idle:\n    description: nothing\n",
			wantErr: domain.ErrEmptyTask,
		},
		{
			name:    "invalid policy",
			content: "tasks:\n  t:\n    cmd: [\"true\"]\n    onFailure: explode\n",
			wantErr: domain.ErrInvalidFailurePolicy,
		},
		{
			name:    "invalid param name",
			content: "tasks:\n  t:\n    cmd: [\"true\"]\n    requires:\n      - name: 1BAD\n",
			wantErr: domain.ErrInvalidVariable,
		},
		{
			name:    "missing dependency",
			content: "tasks:\n  t:\n    dependsOn: [ghost]\n",
			wantErr: domain.ErrMissingDependency,
		},
		{
			name:    "cycle",
			content: "tasks:\n  a:\n    dependsOn: [b]\n  b:\n    dependsOn: [a]\n",
			wantErr: domain.ErrCycleDetected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			createFile(t, dir, domain.ConfigFileName, tt.content)

			_, err := newLoader(t).Load(dir)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestLoader_Load_MissingPath(t *testing.T) {
	_, err := newLoader(t).Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), domain.ErrConfigReadFailed.Error())
}

func TestLoader_Scaffold_YAML(t *testing.T) {
	dir := t.TempDir()
	loader := newLoader(t)

	path, err := loader.Scaffold(dir, "yaml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, domain.ConfigFileName), path)

	project, err := loader.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, path, project.ConfigPath)
	assert.Equal(t, 11, project.Graph.TaskCount())

	_, err = loader.Scaffold(dir, "toml")
	assert.ErrorIs(t, err, domain.ErrConfigExists)
}

func TestLoader_Scaffold_TOML(t *testing.T) {
	dir := t.TempDir()
	loader := newLoader(t)

	path, err := loader.Scaffold(dir, "toml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, domain.TOMLConfigFileName), path)

	var raw map[string]any
	_, err = toml.DecodeFile(path, &raw)
	require.NoError(t, err)
	assert.Contains(t, raw, "tasks")

	project, err := loader.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 11, project.Graph.TaskCount())

	test, ok := project.Graph.GetTask("test")
	require.True(t, ok)
	assert.Equal(t, domain.PolicyWarn, test.Policy())
}

func TestLoader_Scaffold_UnknownFormat(t *testing.T) {
	_, err := newLoader(t).Scaffold(t.TempDir(), "json")
	require.Error(t, err)
}

func TestLoader_Load_EmptyManifestDisablesStep(t *testing.T) {
	dir := t.TempDir()
	createFile(t, dir, domain.ConfigFileName, `
environment:
  manifest: ""
tasks:
  lint:
    cmd: ["ruff check ."]
`)

	project, err := newLoader(t).Load(dir)
	require.NoError(t, err)
	assert.Empty(t, project.Bootstrap.Manifest)

	createFile(t, dir, domain.ConfigFileName, `
environment:
  manifest: requirements-dev.txt
tasks:
  lint:
    cmd: ["ruff check ."]
`)
	project, err = newLoader(t).Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "requirements-dev.txt", project.Bootstrap.Manifest)
}
