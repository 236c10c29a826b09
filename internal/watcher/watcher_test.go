package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raoulx24/do-snapmanager/internal/config"
	"github.com/raoulx24/do-snapmanager/internal/logging"
)

func TestReload(t *testing.T) {
	var applied []config.Config
	fail := false

	w := New("config.yaml", func() (*config.Config, error) {
		if fail {
			return nil, errors.New("bad yaml")
		}
		return &config.Config{LockFile: "x"}, nil
	}, func(c config.Config) {
		applied = append(applied, c)
	}, logging.Nop())

	assert.True(t, w.Reload())
	fail = true
	assert.False(t, w.Reload())

	require.Len(t, applied, 1)
	assert.Equal(t, "x", applied[0].LockFile)
}

func TestStartReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("droplets: []\n"), 0o600))

	reloaded := make(chan config.Config, 8)
	w := New(path, func() (*config.Config, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return config.Parse(data)
	}, func(c config.Config) {
		reloaded <- c
	}, logging.Nop())
	w.SetDebounce(10 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	started := make(chan error, 1)
	go func() { started <- w.Start(ctx) }()

	// give the watcher a moment to register the directory
	time.Sleep(50 * time.Millisecond)

	// unrelated files are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0o600))

	doc := "digitalocean: {token: t}\ndroplets:\n  - name: db9\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	select {
	case c := <-reloaded:
		require.Len(t, c.Droplets, 1)
		assert.Equal(t, "db9", c.Droplets[0].Name)
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}

	cancel()
	assert.NoError(t, <-started)
}

func TestProbe(t *testing.T) {
	assert.NoError(t, Probe(t.TempDir(), 2*time.Second))

	err := Probe(filepath.Join(t.TempDir(), "missing"), time.Second)
	assert.ErrorIs(t, err, ErrNotifyUnsupported)
}
