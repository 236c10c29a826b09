package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
digitalocean:
  token: abc
droplets:
  - name: prod-mongo-db
    copyToRegions: [sfo2]
`

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o600))
	return path
}

func TestOptionsOverrideConfig(t *testing.T) {
	opts := options{configPath: writeConfig(t), prefix: "nightly-", keepSnapshots: 7, dryRun: true}

	cfg, err := opts.load()
	require.NoError(t, err)
	assert.Equal(t, "nightly-", cfg.Naming.Prefix)
	assert.Equal(t, 7, cfg.Retention.DefaultKeepSnapshots)
	assert.True(t, cfg.Retention.DryRun)
}

func TestOptionsKeepConfigDefaults(t *testing.T) {
	cfg, err := options{configPath: writeConfig(t)}.load()
	require.NoError(t, err)
	assert.Equal(t, "snp-", cfg.Naming.Prefix)
	assert.Equal(t, 3, cfg.Retention.DefaultKeepSnapshots)
}

func TestRootCommandFlags(t *testing.T) {
	cmd := newRootCmd()
	cmd.InitDefaultHelpFlag()
	for _, name := range []string{"config", "prefix", "keep-snapshots", "dry-run", "once", "help"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
}

func TestRootCommandRejectsBadKeep(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--config", writeConfig(t), "--keep-snapshots", "0"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	assert.Error(t, cmd.Execute())
}

func TestRootCommandMissingConfig(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	assert.Error(t, cmd.Execute())
}
