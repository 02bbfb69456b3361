package app_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"iter"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vestige-research/eeg-alpha/internal/adapters/config"
	"github.com/vestige-research/eeg-alpha/internal/adapters/detector"
	"github.com/vestige-research/eeg-alpha/internal/app"
	"github.com/vestige-research/eeg-alpha/internal/core/domain"
	"github.com/vestige-research/eeg-alpha/internal/core/ports"
	"github.com/vestige-research/eeg-alpha/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

type appTestMocks struct {
	scaffolder *mocks.MockConfigScaffolder
	executor   *mocks.MockExecutor
	remover    *mocks.MockRemover
	envFactory *mocks.MockEnvironmentFactory
	probe      *mocks.MockInterpreterProbe
	hasher     *mocks.MockHasher
	store      *mocks.MockStampStore
	watcher    *mocks.MockWatcher
	logger     *mocks.MockLogger
	stdout     *bytes.Buffer
	stderr     *bytes.Buffer
}

// setupAppTest builds an App over the built-in task table rooted at a temp dir.
func setupAppTest(t *testing.T) (*app.App, appTestMocks, string) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := appTestMocks{
		scaffolder: mocks.NewMockConfigScaffolder(ctrl),
		executor:   mocks.NewMockExecutor(ctrl),
		remover:    mocks.NewMockRemover(ctrl),
		envFactory: mocks.NewMockEnvironmentFactory(ctrl),
		probe:      mocks.NewMockInterpreterProbe(ctrl),
		hasher:     mocks.NewMockHasher(ctrl),
		store:      mocks.NewMockStampStore(ctrl),
		watcher:    mocks.NewMockWatcher(ctrl),
		logger:     mocks.NewMockLogger(ctrl),
		stdout:     &bytes.Buffer{},
		stderr:     &bytes.Buffer{},
	}
	m.logger.EXPECT().Info(gomock.Any()).AnyTimes()
	m.logger.EXPECT().Warn(gomock.Any()).AnyTimes()
	m.envFactory.EXPECT().GetEnvironment(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, domain.ErrEnvironmentMissing).AnyTimes()

	root := t.TempDir()
	a := app.New(
		config.NewLoader(m.logger),
		m.scaffolder,
		m.executor,
		m.remover,
		m.envFactory,
		m.probe,
		m.hasher,
		m.store,
		m.watcher,
		m.logger,
	).WithOutput(m.stdout, m.stderr).
		WithEnvironment(detector.Environment{}).
		WithDebounce(10 * time.Millisecond)
	a.SetConfigPath(root)
	return a, m, root
}

func expectCommand(m appTestMocks, command string, err error) *gomock.Call {
	return m.executor.EXPECT().
		Execute(gomock.Any(), gomock.Any(), command, gomock.Any(), gomock.Any(), gomock.Any()).
		Return(err)
}

func TestApp_Run_Check(t *testing.T) {
	a, m, _ := setupAppTest(t)

	gomock.InOrder(
		m.executor.EXPECT().
			Execute(gomock.Any(), gomock.Any(), "ruff format .", gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ *domain.Task, _ string, _ []string, stdout, _ io.Writer) error {
				_, _ = io.WriteString(stdout, "3 files left unchanged\n")
				return nil
			}),
		expectCommand(m, "ruff check .", nil),
		expectCommand(m, "pytest", nil),
	)

	require.NoError(t, a.Run(context.Background(), []string{"check"}, nil, app.RunOptions{}))

	stderr := m.stderr.String()
	assert.Contains(t, stderr, "Running 4 tasks: format, lint, test, check")
	assert.Contains(t, stderr, "[format] Starting...")
	assert.Contains(t, stderr, "[format] ✓ Completed in")
	assert.Contains(t, stderr, "[check] ✓ Completed in")
	assert.Equal(t, "[format] 3 files left unchanged\n", m.stdout.String())
}

func TestApp_Run_FormatFailure(t *testing.T) {
	a, m, _ := setupAppTest(t)

	expectCommand(m, "ruff format .", &domain.CommandError{Command: "ruff format .", ExitCode: 2})

	err := a.Run(context.Background(), []string{"check"}, nil, app.RunOptions{})
	require.ErrorIs(t, err, domain.ErrBuildExecutionFailed)

	var cmdErr *domain.CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, 2, cmdErr.ExitCode)
	assert.Contains(t, m.stderr.String(), "[format] ✗ Failed after")
	assert.NotContains(t, m.stderr.String(), "[lint]")
}

func TestApp_Run_TestFailureStillSucceeds(t *testing.T) {
	a, m, _ := setupAppTest(t)

	gomock.InOrder(
		expectCommand(m, "ruff format .", nil),
		expectCommand(m, "ruff check .", nil),
		expectCommand(m, "pytest", &domain.CommandError{Command: "pytest", ExitCode: 1}),
	)

	require.NoError(t, a.Run(context.Background(), []string{"check"}, nil, app.RunOptions{}))
	assert.Contains(t, m.stderr.String(), "[test] ✗ Failed after")
	assert.Contains(t, m.stderr.String(), "[check] ✓ Completed in")
}

func TestApp_Run_BranchWithoutName(t *testing.T) {
	t.Setenv("NAME", "")
	a, _, _ := setupAppTest(t)

	err := a.Run(context.Background(), []string{"branch"}, nil, app.RunOptions{})
	require.ErrorIs(t, err, domain.ErrMissingParameter)
	assert.NotErrorIs(t, err, domain.ErrBuildExecutionFailed)
}

func TestApp_Run_BranchWithName(t *testing.T) {
	t.Setenv("NAME", "")
	a, m, _ := setupAppTest(t)

	m.executor.EXPECT().
		Execute(gomock.Any(), gomock.Any(), `git checkout -b "$NAME"`, gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, task *domain.Task, _ string, _ []string, _, _ io.Writer) error {
			assert.Equal(t, "feat/alpha-band", task.Environment["NAME"])
			return nil
		})

	vars := map[string]string{"NAME": "feat/alpha-band"}
	require.NoError(t, a.Run(context.Background(), []string{"branch"}, vars, app.RunOptions{}))
}

func TestApp_Run_Clean(t *testing.T) {
	a, m, root := setupAppTest(t)

	m.remover.EXPECT().Remove(root, gomock.Any()).Return(nil, nil).Times(7)

	require.NoError(t, a.Run(context.Background(), []string{"clean"}, nil, app.RunOptions{}))
	assert.Empty(t, m.stdout.String())
}

func TestApp_Run_QuietHidesSuccessfulOutput(t *testing.T) {
	a, m, _ := setupAppTest(t)

	m.executor.EXPECT().
		Execute(gomock.Any(), gomock.Any(), "ruff check .", gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *domain.Task, _ string, _ []string, stdout, _ io.Writer) error {
			_, _ = io.WriteString(stdout, "All checks passed!\n")
			return nil
		})

	require.NoError(t, a.Run(context.Background(), []string{"lint"}, nil, app.RunOptions{OutputMode: "quiet"}))
	assert.Empty(t, m.stdout.String())
	assert.NotContains(t, m.stderr.String(), "Starting...")
}

func TestApp_Run_Errors(t *testing.T) {
	a, _, _ := setupAppTest(t)
	ctx := context.Background()

	assert.ErrorIs(t, a.Run(ctx, nil, nil, app.RunOptions{}), domain.ErrNoTargetsSpecified)
	assert.ErrorIs(t, a.Run(ctx, []string{"deploy"}, nil, app.RunOptions{}), domain.ErrTaskNotFound)
	assert.ErrorIs(t, a.Run(ctx, []string{"lint"}, nil, app.RunOptions{OutputMode: "tui"}), domain.ErrInvalidOutputMode)
}

func TestApp_Run_Watch(t *testing.T) {
	a, m, root := setupAppTest(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m.watcher.EXPECT().Start(gomock.Any(), root, []string{".venv"}).Return(nil)
	m.watcher.EXPECT().Stop().Return(nil)
	m.watcher.EXPECT().Events().Return(iter.Seq[ports.WatchEvent](func(yield func(ports.WatchEvent) bool) {
		yield(ports.WatchEvent{Path: filepath.Join(root, "analysis.py"), Operation: ports.OpWrite})
	}))

	gomock.InOrder(
		expectCommand(m, "ruff check .", nil),
		m.executor.EXPECT().
			Execute(gomock.Any(), gomock.Any(), "ruff check .", gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(context.Context, *domain.Task, string, []string, io.Writer, io.Writer) error {
				cancel()
				return nil
			}),
	)

	done := make(chan error, 1)
	go func() {
		done <- a.Run(ctx, []string{"lint"}, nil, app.RunOptions{Watch: true})
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("watch loop did not stop")
	}
}

func TestApp_Setup_InterpreterMissing(t *testing.T) {
	a, m, root := setupAppTest(t)

	m.probe.EXPECT().Probe(gomock.Any(), root, gomock.Any()).Return("", domain.ErrInterpreterNotFound)

	err := a.Setup(context.Background(), app.SetupOptions{})
	require.ErrorIs(t, err, domain.ErrInterpreterNotFound)
	assert.Contains(t, m.stderr.String(), "[setup: interpreter] ✗ Failed after")
}

func TestApp_List(t *testing.T) {
	a, _, _ := setupAppTest(t)

	var buf bytes.Buffer
	require.NoError(t, a.List(&buf))

	g := goldie.New(t)
	g.Assert(t, "list", buf.Bytes())
}

func TestApp_Init(t *testing.T) {
	a, m, _ := setupAppTest(t)
	cwd, err := os.Getwd()
	require.NoError(t, err)

	m.scaffolder.EXPECT().Scaffold(cwd, "toml").Return(filepath.Join(cwd, domain.TOMLConfigFileName), nil)
	require.NoError(t, a.Init("toml"))

	m.scaffolder.EXPECT().Scaffold(cwd, "").Return("", domain.ErrConfigExists)
	assert.ErrorIs(t, a.Init(""), domain.ErrConfigExists)
}

func TestApp_SetLogFormat(t *testing.T) {
	a, _, _ := setupAppTest(t)

	assert.NoError(t, a.SetLogFormat("json"))
	assert.NoError(t, a.SetLogFormat("text"))
	assert.Error(t, a.SetLogFormat("xml"))
}

func TestApp_Run_CanceledBeforeStart(t *testing.T) {
	a, _, _ := setupAppTest(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := a.Run(ctx, []string{"lint"}, nil, app.RunOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestWatchIgnores(t *testing.T) {
	tests := []struct {
		envDir string
		want   []string
	}{
		{"", []string{".venv"}},
		{"venv", []string{"venv"}},
		{filepath.Join("envs", "py312"), []string{"envs/py312"}},
		{"/opt/venvs/eeg-alpha", nil},
		{filepath.Join("..", "shared-venv"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.envDir, func(t *testing.T) {
			g := domain.NewGraph()
			g.SetRoot("/work/eeg-alpha")
			project := &domain.Project{Graph: g, Bootstrap: domain.Bootstrap{EnvDir: tt.envDir}}
			assert.Equal(t, tt.want, app.WatchIgnores(project))
		})
	}
}
