package watcher

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

var ErrNotifyUnsupported = errors.New("file change notification unsupported")

// Probe checks that fsnotify really delivers events for dir by creating
// and renaming a scratch file. Network filesystems often accept the watch
// but never report anything.
func Probe(dir string, wait time.Duration) error {
	st, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotifyUnsupported, err)
	}
	if !st.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrNotifyUnsupported, dir)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotifyUnsupported, err)
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return fmt.Errorf("%w: watching %s: %w", ErrNotifyUnsupported, dir, err)
	}

	f, err := os.CreateTemp(dir, ".snapmanager-probe-*")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotifyUnsupported, err)
	}
	tmp := f.Name()
	f.Close()

	final := tmp + ".done"
	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: %w", ErrNotifyUnsupported, err)
	}
	defer os.Remove(final)

	timeout := time.After(wait)
	for {
		select {
		case ev := <-w.Events:
			if filepath.Dir(ev.Name) == filepath.Clean(dir) {
				return nil
			}
		case err := <-w.Errors:
			return fmt.Errorf("%w: %w", ErrNotifyUnsupported, err)
		case <-timeout:
			return fmt.Errorf("%w: no events received in %s", ErrNotifyUnsupported, wait)
		}
	}
}
