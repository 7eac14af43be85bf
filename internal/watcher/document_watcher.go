// Package watcher re-analyzes open documents whose backing files change on
// disk outside the editor, keeping the symbol index honest when another tool
// rewrites a file the working set has open.
package watcher

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DocumentWatcher watches the backing files of tracked documents. Change
// events are debounced per quiet period and delivered as a batch of paths.
type DocumentWatcher struct {
	watcher      *fsnotify.Watcher
	debounceTime time.Duration
	callback     func(paths []string)
	logger       *slog.Logger

	mu      sync.Mutex
	paths   map[string]bool // tracked file paths
	changed map[string]bool // accumulated changes awaiting debounce

	timerMu       sync.Mutex
	debounceTimer *time.Timer

	cancel   context.CancelFunc
	stopOnce sync.Once
	doneCh   chan struct{}
}

// New creates a stopped watcher. Call Start to begin delivering batches.
func New(logger *slog.Logger) (*DocumentWatcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentWatcher{
		watcher:      fsWatcher,
		debounceTime: 500 * time.Millisecond,
		logger:       logger,
		paths:        make(map[string]bool),
		changed:      make(map[string]bool),
		doneCh:       make(chan struct{}),
	}, nil
}

// Track registers a file path for change notifications. The containing
// directory is watched because editors commonly replace files by rename,
// which drops a watch placed on the file itself.
func (w *DocumentWatcher) Track(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.paths[path] {
		return
	}
	w.paths[path] = true
	if err := w.watcher.Add(filepath.Dir(path)); err != nil {
		w.logger.Warn("failed to watch directory", "dir", filepath.Dir(path), "error", err)
	}
}

// Untrack stops notifications for a path. Directory watches are left in
// place; untracked events are filtered out instead.
func (w *DocumentWatcher) Untrack(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.paths, path)
	delete(w.changed, path)
}

// Start begins watching. The callback receives batches of changed tracked
// paths after the debounce quiet period.
func (w *DocumentWatcher) Start(ctx context.Context, callback func(paths []string)) {
	if callback == nil {
		return
	}
	w.callback = callback
	ctx, w.cancel = context.WithCancel(ctx)
	go w.watch(ctx)
}

// Stop shuts the watcher down and waits for the event loop to exit.
func (w *DocumentWatcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		if w.cancel != nil {
			w.cancel()
			<-w.doneCh
		} else {
			close(w.doneCh)
		}
		err = w.watcher.Close()
	})
	return err
}

func (w *DocumentWatcher) watch(ctx context.Context) {
	defer close(w.doneCh)

	fireCh := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			w.stopDebounceTimer()
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			w.mu.Lock()
			tracked := w.paths[event.Name]
			if tracked {
				w.changed[event.Name] = true
			}
			w.mu.Unlock()

			if tracked {
				w.resetDebounceTimer(fireCh)
			}

		case <-fireCh:
			w.fire()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", "error", err)
		}
	}
}

// fire delivers the accumulated batch.
func (w *DocumentWatcher) fire() {
	w.mu.Lock()
	if len(w.changed) == 0 {
		w.mu.Unlock()
		return
	}
	paths := make([]string, 0, len(w.changed))
	for path := range w.changed {
		paths = append(paths, path)
	}
	w.changed = make(map[string]bool)
	w.mu.Unlock()

	w.callback(paths)
}

// resetDebounceTimer restarts the quiet-period timer, draining a timer that
// already fired.
func (w *DocumentWatcher) resetDebounceTimer(fireCh chan struct{}) {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()

	if w.debounceTimer != nil {
		if !w.debounceTimer.Stop() {
			select {
			case <-w.debounceTimer.C:
			default:
			}
		}
	}
	w.debounceTimer = time.AfterFunc(w.debounceTime, func() {
		select {
		case fireCh <- struct{}{}:
		default:
		}
	})
}

func (w *DocumentWatcher) stopDebounceTimer() {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
		w.debounceTimer = nil
	}
}
