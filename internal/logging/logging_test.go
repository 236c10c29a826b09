package logging

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raoulx24/do-snapmanager/internal/config"
)

func TestFields(t *testing.T) {
	got := fields([]any{"droplet", "db1", "error", errors.New("boom"), 7, true, "dangling"})

	assert.Equal(t, "db1", got["droplet"])
	assert.Equal(t, "boom", got["error"])
	assert.Equal(t, true, got["7"])
	assert.Equal(t, "dangling", got["!BADKEY"])
}

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log", "snapmanager.log")

	log, err := New(config.LoggingConfig{Level: "info", Format: "json", File: path})
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("snapshot created", "droplet", "db1")
	require.NoError(t, log.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"snapshot created"`)
	assert.Contains(t, string(data), `"droplet":"db1"`)
	assert.NotContains(t, string(data), "hidden")
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(config.LoggingConfig{Level: "loud"})
	assert.Error(t, err)
}

func TestNopIsSilent(t *testing.T) {
	log := Nop()
	log.Error("ignored", "k", "v")
	assert.NoError(t, log.Close())
}
