package watcher

import (
	"context"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/vestige-research/eeg-alpha/internal/adapters/fs"
	"github.com/vestige-research/eeg-alpha/internal/core/domain"
	"github.com/vestige-research/eeg-alpha/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Watcher = (*Watcher)(nil)

// DefaultIgnores are the tool caches and build outputs that tasks write themselves.
var DefaultIgnores = []string{
	"__pycache__", "*.pyc", "*.egg-info",
	".pytest_cache", ".ruff_cache", ".mypy_cache",
	"_site", ".quarto",
}

const eventChannelBuffer = 100

// Watcher implements ports.Watcher using fsnotify.
type Watcher struct {
	walker  *fs.Walker
	logger  ports.Logger
	ignores []string

	mu        sync.Mutex
	fsWatcher *fsnotify.Watcher
	root      string
	events    chan ports.WatchEvent
}

// NewWatcher creates a watcher that skips DefaultIgnores and the walker's own exclusions.
// Start adds the ignores of a particular project.
func NewWatcher(walker *fs.Walker, logger ports.Logger) *Watcher {
	return &Watcher{
		walker:  walker,
		logger:  logger,
		ignores: DefaultIgnores,
		events:  make(chan ports.WatchEvent, eventChannelBuffer),
	}
}

// Start begins watching root recursively.
func (w *Watcher) Start(ctx context.Context, root string, ignores []string) error {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return zerr.Wrap(err, domain.ErrWatchFailed.Error())
	}

	w.mu.Lock()
	w.root = root
	w.ignores = append(slices.Clone(DefaultIgnores), ignores...)
	w.mu.Unlock()

	for dir := range w.walker.WalkDirs(root, w.ignores) {
		if w.ignored(dir) {
			continue
		}
		if err := fsWatcher.Add(dir); err != nil {
			_ = fsWatcher.Close()
			return zerr.With(zerr.Wrap(err, domain.ErrWatchFailed.Error()), "dir", dir)
		}
	}

	w.mu.Lock()
	w.fsWatcher = fsWatcher
	w.mu.Unlock()

	go w.processEvents(ctx, fsWatcher)
	return nil
}

// Stop stops the watcher and releases all resources.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.fsWatcher == nil {
		return nil
	}
	err := w.fsWatcher.Close()
	w.fsWatcher = nil
	return err
}

// Events returns an iterator of file system events. It ends when the watcher stops.
func (w *Watcher) Events() iter.Seq[ports.WatchEvent] {
	return func(yield func(ports.WatchEvent) bool) {
		for event := range w.events {
			if !yield(event) {
				return
			}
		}
	}
}

func (w *Watcher) processEvents(ctx context.Context, fsWatcher *fsnotify.Watcher) {
	defer close(w.events)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fsWatcher.Events:
			if !ok {
				return
			}
			if w.ignored(event.Name) {
				continue
			}

			watchEvent, ok := convertEvent(event)
			if !ok {
				continue
			}

			select {
			case w.events <- watchEvent:
			case <-ctx.Done():
				return
			}

			if watchEvent.Operation == ports.OpCreate {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					for dir := range w.walker.WalkDirs(event.Name, w.ignores) {
						if !w.ignored(dir) {
							_ = fsWatcher.Add(dir)
						}
					}
				}
			}
		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher: " + err.Error())
		}
	}
}

// ignored reports whether any component of path below the root is excluded.
func (w *Watcher) ignored(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || rel == "." {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, ignore := range w.ignores {
		if strings.Contains(ignore, "/") && (rel == ignore || strings.HasPrefix(rel, ignore+"/")) {
			return true
		}
	}
	for part := range strings.SplitSeq(rel, "/") {
		if w.walker.ShouldSkip(part, w.ignores) {
			return true
		}
	}
	return false
}

func convertEvent(event fsnotify.Event) (ports.WatchEvent, bool) {
	var op ports.WatchOp
	switch {
	case event.Has(fsnotify.Write):
		op = ports.OpWrite
	case event.Has(fsnotify.Create):
		op = ports.OpCreate
	case event.Has(fsnotify.Remove):
		op = ports.OpRemove
	case event.Has(fsnotify.Rename):
		op = ports.OpRename
	default:
		return ports.WatchEvent{}, false
	}
	return ports.WatchEvent{Path: event.Name, Operation: op}, true
}
