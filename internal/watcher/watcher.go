// Package watcher reloads the configuration when its file changes.
package watcher

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/raoulx24/do-snapmanager/internal/config"
	"github.com/raoulx24/do-snapmanager/internal/logging"
)

const DefaultDebounce = 500 * time.Millisecond

// Watcher observes the config file and hands every valid new version to apply.
type Watcher struct {
	mu sync.Mutex

	path     string
	debounce time.Duration
	load     func() (*config.Config, error)
	apply    func(config.Config)

	log logging.Logger
}

// New creates a watcher for the config file at path. load reads the file
// (plus any command line overrides) and apply receives the result.
func New(path string, load func() (*config.Config, error), apply func(config.Config), log logging.Logger) *Watcher {
	return &Watcher{
		path:     filepath.Clean(path),
		debounce: DefaultDebounce,
		load:     load,
		apply:    apply,
		log:      log,
	}
}

// SetDebounce changes the quiet period awaited after the last file event.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.mu.Lock()
	w.debounce = d
	w.mu.Unlock()
}

// Reload loads the config once. An invalid file keeps the current config.
func (w *Watcher) Reload() bool {
	cfg, err := w.load()
	if err != nil {
		w.log.Error("config reload failed", "path", w.path, "error", err)
		return false
	}
	w.apply(*cfg)
	w.log.Info("config reloaded", "path", w.path)
	return true
}
