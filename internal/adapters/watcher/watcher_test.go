package watcher_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vestige-research/eeg-alpha/internal/adapters/fs"
	"github.com/vestige-research/eeg-alpha/internal/adapters/watcher"
	"github.com/vestige-research/eeg-alpha/internal/core/domain"
	"github.com/vestige-research/eeg-alpha/internal/core/ports"
	"github.com/vestige-research/eeg-alpha/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func nextEvent(t *testing.T, events <-chan ports.WatchEvent) ports.WatchEvent {
	t.Helper()
	select {
	case ev := <-events:
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for watch event")
		return ports.WatchEvent{}
	}
}

func TestWatcher_ReportsChangesAndSkipsCaches(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), domain.DirPerm))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src", "__pycache__"), domain.DirPerm))

	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Warn(gomock.Any()).AnyTimes()

	w := watcher.NewWatcher(fs.NewWalker(), log)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx, root, nil))
	defer func() { _ = w.Stop() }()

	events := make(chan ports.WatchEvent, 16)
	go func() {
		for ev := range w.Events() {
			events <- ev
		}
		close(events)
	}()

	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "__pycache__", "m.pyc"), []byte("x"), domain.FilePerm))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "m.pyc"), []byte("x"), domain.FilePerm))
	target := filepath.Join(root, "src", "analysis.py")
	require.NoError(t, os.WriteFile(target, []byte("print(1)\n"), domain.FilePerm))

	ev := nextEvent(t, events)
	assert.Equal(t, target, ev.Path)
	assert.Contains(t, []ports.WatchOp{ports.OpCreate, ports.OpWrite}, ev.Operation)
}

func TestWatcher_StopBeforeStart(t *testing.T) {
	w := watcher.NewWatcher(fs.NewWalker(), nil)
	assert.NoError(t, w.Stop())
}

func TestWatcher_SkipsConfiguredEnvironments(t *testing.T) {
	root := t.TempDir()
	for _, dir := range []string{"venv/bin", "envs/py312/lib", "src"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), domain.DirPerm))
	}

	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Warn(gomock.Any()).AnyTimes()

	w := watcher.NewWatcher(fs.NewWalker(), log)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx, root, []string{"venv", "envs/py312"}))
	defer func() { _ = w.Stop() }()

	events := make(chan ports.WatchEvent, 16)
	go func() {
		for ev := range w.Events() {
			events <- ev
		}
		close(events)
	}()

	require.NoError(t, os.WriteFile(filepath.Join(root, "venv", "bin", "ruff"), []byte("x"), domain.FilePerm))
	require.NoError(t, os.WriteFile(filepath.Join(root, "envs", "py312", "lib", "site.py"), []byte("x"), domain.FilePerm))
	require.NoError(t, os.WriteFile(filepath.Join(root, "envs", "py312", "pyvenv.cfg"), []byte("x"), domain.FilePerm))
	target := filepath.Join(root, "src", "analysis.py")
	require.NoError(t, os.WriteFile(target, []byte("print(1)\n"), domain.FilePerm))

	ev := nextEvent(t, events)
	assert.Equal(t, target, ev.Path)
}
