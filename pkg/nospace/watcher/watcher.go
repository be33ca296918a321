// Package watcher re-triggers analysis when a transcript file changes.
package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jamesainslie/nospace/pkg/nospace/logging"
)

var logger = logging.Get("watcher")

// ErrClosed is returned when adding a path to a closed watcher.
var ErrClosed = errors.New("watcher is closed")

// Watcher watches files for changes. It watches each file's parent
// directory so that editors which replace the file by renaming are seen.
type Watcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration

	mu      sync.Mutex
	targets map[string]bool
	dirs    map[string]bool
	closed  bool
}

// New creates a watcher that coalesces events arriving within debounce.
func New(debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		watcher:  fsw,
		debounce: debounce,
		targets:  make(map[string]bool),
		dirs:     make(map[string]bool),
	}, nil
}

// Add starts watching a file.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(abs); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}

	dir := filepath.Dir(abs)
	if !w.dirs[dir] {
		if err := w.watcher.Add(dir); err != nil {
			logger.Warn("failed to add watch", "path", dir, "error", err)
			return err
		}
		w.dirs[dir] = true
	}
	w.targets[abs] = true
	logger.Debug("watching", "path", abs)
	return nil
}

// Run starts the event loop. It blocks until the context is cancelled or
// the watcher is closed. onChange is called from the Run goroutine once per
// changed file after events for it have been quiet for the debounce period.
func (w *Watcher) Run(ctx context.Context, onChange func(path string)) {
	pending := make(map[string]bool)
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			pending[filepath.Clean(event.Name)] = true
			timer.Reset(w.debounce)

		case <-timer.C:
			for path := range pending {
				if _, err := os.Stat(path); err != nil {
					logger.Debug("changed file is gone", "path", path)
					continue
				}
				logger.Info("transcript changed", "path", path)
				onChange(path)
			}
			clear(pending)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Error("watcher error", "error", err)
		}
	}
}

// relevant reports whether an event touches a watched file's content.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.targets[filepath.Clean(event.Name)]
}

// Close closes the watcher and releases resources.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}

	w.closed = true
	clear(w.targets)
	clear(w.dirs)
	return w.watcher.Close()
}
