// Package watcher provides filesystem watching for cache invalidation.
package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/charlievieth/fastwalk"
	"github.com/fsnotify/fsnotify"

	"github.com/pairscan/pairscan/pkg/pairscan/logging"
)

var logger = logging.Get("watcher")

// Watcher watches directory trees and reports filesystem changes so stale
// scan results can be dropped.
type Watcher struct {
	watcher *fsnotify.Watcher
	paths   map[string]bool
	mu      sync.RWMutex
	closed  bool
	workers int
}

// New creates a new Watcher.
func New() (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		watcher: fsw,
		paths:   make(map[string]bool),
	}, nil
}

// SetWorkers sets the parallelism used for recursive watch registration.
// Zero or negative leaves the walk library's default in place.
func (w *Watcher) SetWorkers(n int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.workers = n
}

// Watch starts watching a path recursively.
// It adds watches to the root directory and all subdirectories.
// Symlinks are not followed to avoid loops.
func (w *Watcher) Watch(root string) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return err
	}

	info, err := os.Lstat(absRoot)
	if err != nil {
		return err
	}

	if !info.IsDir() {
		return nil // Only watch directories
	}

	return w.registerTree(absRoot)
}

// registerTree walks a subtree and adds a watch for every directory.
// The walk callbacks run concurrently; addWatch serializes internally.
func (w *Watcher) registerTree(root string) error {
	conf := fastwalk.Config{
		Follow:     false,
		NumWorkers: w.numWorkers(),
	}

	return fastwalk.Walk(&conf, root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return nil //nolint:nilerr // Skip entries with errors
		}

		// Skip symlinks to avoid loops
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}

		if d.IsDir() {
			return w.addWatch(path)
		}

		return nil
	})
}

func (w *Watcher) numWorkers() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.workers
}

// addWatch adds a single directory to the watch list.
func (w *Watcher) addWatch(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}

	// Already watching this path
	if w.paths[path] {
		return nil
	}

	if err := w.watcher.Add(path); err != nil {
		logger.Warn("failed to add watch", "path", path, "error", err)
		return err
	}

	w.paths[path] = true
	return nil
}

// Unwatch stops watching a path and all its subdirectories.
func (w *Watcher) Unwatch(root string) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}

	for path := range w.paths {
		if path == absRoot || isSubPath(path, absRoot) {
			_ = w.watcher.Remove(path)
			delete(w.paths, path)
		}
	}
}

// Run starts the event loop. It blocks until the context is cancelled.
// The onChange callback is called for each filesystem event with the path
// and operation.
func (w *Watcher) Run(ctx context.Context, onChange func(path string, op fsnotify.Op)) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			w.handleEvent(event, onChange)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Error("watcher error", "error", err)
		}
	}
}

// handleEvent processes a single filesystem event.
func (w *Watcher) handleEvent(event fsnotify.Event, onChange func(path string, op fsnotify.Op)) {
	switch {
	case event.Op&fsnotify.Create != 0:
		w.handleCreate(event.Name)
	case event.Op&fsnotify.Remove != 0:
		w.handleRemove(event.Name)
	case event.Op&fsnotify.Rename != 0:
		// Rename is treated as a remove - the new name will trigger a create
		w.handleRemove(event.Name)
	}

	if onChange != nil {
		onChange(event.Name, event.Op)
	}
}

// handleCreate hot-adds watches for newly created directories, including
// any subdirectories that appeared with them.
func (w *Watcher) handleCreate(path string) {
	info, err := os.Lstat(path)
	if err != nil {
		return // File might have been deleted already
	}

	// Skip symlinks
	if info.Mode()&fs.ModeSymlink != 0 {
		return
	}

	if info.IsDir() {
		_ = w.registerTree(path)
	}
}

// handleRemove drops watches for a removed directory and its children.
func (w *Watcher) handleRemove(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.paths[path] {
		_ = w.watcher.Remove(path)
		delete(w.paths, path)
	}

	for childPath := range w.paths {
		if isSubPath(childPath, path) {
			_ = w.watcher.Remove(childPath)
			delete(w.paths, childPath)
		}
	}
}

// Close closes the watcher and releases resources.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}

	w.closed = true
	w.paths = make(map[string]bool)
	return w.watcher.Close()
}

// isSubPath checks if path is under parent directory.
func isSubPath(path, parent string) bool {
	return len(path) > len(parent) && path[:len(parent)+1] == parent+string(filepath.Separator)
}
