package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
digitalocean:
  token: $(SNAPMANAGER_TEST_TOKEN)
tracking:
  pollInterval: 5s
droplets:
  - name: prod-mongo-db
    keepSnapshots: 5
    copyToRegions: [sfo2, ams3]
  - name: staging-web
`

func TestLoadExpandsEnvAndAppliesDefaults(t *testing.T) {
	t.Setenv("SNAPMANAGER_TEST_TOKEN", "secret")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.DigitalOcean.Token)
	assert.Equal(t, DefaultPrefix, cfg.Naming.Prefix)
	assert.Equal(t, 5*time.Second, cfg.Tracking.PollInterval)
	assert.Equal(t, DefaultTrackTimeout, cfg.Tracking.Timeout)
	assert.Equal(t, DefaultLookupAttempts, cfg.Replication.LookupAttempts)
	assert.Equal(t, DefaultLookupDelay, cfg.Replication.LookupDelay)

	require.Len(t, cfg.Droplets, 2)
	assert.Equal(t, "droplet", cfg.Droplets[0].Type)
	assert.Equal(t, []string{"sfo2", "ams3"}, cfg.Droplets[0].CopyToRegions)
	assert.Equal(t, 5, cfg.Droplets[0].Keep(cfg.Retention.DefaultKeepSnapshots))
	assert.Equal(t, DefaultKeepSnapshots, cfg.Droplets[1].Keep(cfg.Retention.DefaultKeepSnapshots))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestParseTokenFromEnvironment(t *testing.T) {
	t.Setenv("DIGITALOCEAN_TOKEN", "from-env")

	cfg, err := Parse([]byte("droplets:\n  - name: db1\n"))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.DigitalOcean.Token)
}

func TestValidate(t *testing.T) {
	t.Setenv("DIGITALOCEAN_TOKEN", "")

	cases := map[string]string{
		"missing token":    "droplets:\n  - name: db1\n",
		"no droplets":      "digitalocean: {token: x}\n",
		"empty name":       "digitalocean: {token: x}\ndroplets:\n  - name: \"\"\n",
		"duplicate":        "digitalocean: {token: x}\ndroplets:\n  - name: db1\n  - name: db1\n",
		"negative keep":    "digitalocean: {token: x}\ndroplets:\n  - name: db1\n    keepSnapshots: -1\n",
		"volume type":      "digitalocean: {token: x}\ndroplets:\n  - name: db1\n    type: volume\n",
		"unknown type":     "digitalocean: {token: x}\ndroplets:\n  - name: db1\n    type: bucket\n",
		"bad cron":         "digitalocean: {token: x}\nschedule: {cron: \"every day\"}\ndroplets:\n  - name: db1\n",
		"bad reload":       "digitalocean: {token: x}\nconfigReload: {method: inotify}\ndroplets:\n  - name: db1\n",
		"zero concurrency": "digitalocean: {token: x}\ntracking: {concurrency: -1}\ndroplets:\n  - name: db1\n",
	}

	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestValidateAcceptsSchedule(t *testing.T) {
	cfg, err := Parse([]byte("digitalocean: {token: x}\nschedule: {cron: \"0 3 * * *\"}\ndroplets:\n  - name: db1\n"))
	require.NoError(t, err)
	assert.Equal(t, "0 3 * * *", cfg.Schedule.Cron)
}

func TestExampleConfigIsValid(t *testing.T) {
	t.Setenv("DIGITALOCEAN_TOKEN", "token")

	cfg, err := Load(filepath.Join("..", "..", "config.example.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "token", cfg.DigitalOcean.Token)
	assert.Equal(t, 20*time.Second, cfg.Tracking.PollInterval)
	assert.Equal(t, []string{"sfo2"}, cfg.Droplets[0].CopyToRegions)
	assert.Empty(t, cfg.Schedule.Cron)
}
