// Package lock keeps two snapshot manager processes from running at once.
package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

var ErrAlreadyRunning = errors.New("another snapshot manager run holds the lock")

type Lock struct {
	fl *flock.Flock
}

// Acquire takes the lock file at path without waiting.
func Acquire(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating lock directory: %w", err)
	}

	fl := flock.New(path)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("locking %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyRunning, path)
	}
	return &Lock{fl: fl}, nil
}

func (l *Lock) Release() error {
	return l.fl.Close()
}
