// Package config provides configuration management for the graphnav backend.
// This file implements hot reloading of the traversal bounds from the
// optional YAML config file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// debounceWindow coalesces the burst of fsnotify events editors emit for a
// single save.
const debounceWindow = 200 * time.Millisecond

// Watcher watches the YAML config file and pushes changed traversal bounds
// into a DynamicTraversal.
type Watcher struct {
	path    string
	dynamic *DynamicTraversal
	logger  *zap.Logger
	watcher *fsnotify.Watcher
	stopCh  chan struct{}
}

// NewWatcher starts watching the given config file. The parent directory is
// watched rather than the file itself so atomic rename-based saves keep
// working.
func NewWatcher(path string, dynamic *DynamicTraversal, logger *zap.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	if err := fsWatcher.Add(filepath.Dir(path)); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch config directory: %w", err)
	}

	w := &Watcher{
		path:    path,
		dynamic: dynamic,
		logger:  logger,
		watcher: fsWatcher,
		stopCh:  make(chan struct{}),
	}
	go w.watchLoop()

	logger.Info("Config hot reloading enabled", zap.String("file", path))
	return w, nil
}

// Stop terminates the watch loop and releases the inotify handle.
func (w *Watcher) Stop() {
	close(w.stopCh)
	w.watcher.Close()
}

func (w *Watcher) watchLoop() {
	var debounce *time.Timer
	for {
		select {
		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceWindow, w.reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Config watcher error", zap.Error(err))
		}
	}
}

// reload re-reads the config file and applies the traversal section.
func (w *Watcher) reload() {
	data, err := os.ReadFile(w.path)
	if err != nil {
		w.logger.Warn("Failed to re-read config file", zap.String("file", w.path), zap.Error(err))
		return
	}

	var overlay struct {
		Traversal TraversalConfig `yaml:"traversal"`
	}
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		w.logger.Warn("Failed to parse config file, keeping previous bounds",
			zap.String("file", w.path), zap.Error(err))
		return
	}

	if w.dynamic.Update(overlay.Traversal) {
		w.logger.Info("Traversal bounds reloaded",
			zap.Int("maxDepth", overlay.Traversal.MaxDepth),
			zap.Int("maxVisited", overlay.Traversal.MaxVisited),
		)
	}
}
