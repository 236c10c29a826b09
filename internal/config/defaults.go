package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/raoulx24/do-snapmanager/internal/snapshot"
)

const (
	DefaultPrefix         = "snp-"
	DefaultKeepSnapshots  = 3
	DefaultPollInterval   = 20 * time.Second
	DefaultTrackTimeout   = 2 * time.Hour
	DefaultConcurrency    = 4
	DefaultLookupAttempts = 10
	DefaultLookupDelay    = 30 * time.Second
	DefaultLockFile       = "/tmp/do-snapmanager.lock"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// ApplyDefaults fills every unset field with its default value.
func (c *Config) ApplyDefaults() {
	if c.Naming.Prefix == "" {
		c.Naming.Prefix = DefaultPrefix
	}
	if c.Retention.DefaultKeepSnapshots == 0 {
		c.Retention.DefaultKeepSnapshots = DefaultKeepSnapshots
	}
	if c.Tracking.PollInterval == 0 {
		c.Tracking.PollInterval = DefaultPollInterval
	}
	if c.Tracking.Timeout == 0 {
		c.Tracking.Timeout = DefaultTrackTimeout
	}
	if c.Tracking.Concurrency == 0 {
		c.Tracking.Concurrency = DefaultConcurrency
	}
	if c.Replication.LookupAttempts == 0 {
		c.Replication.LookupAttempts = DefaultLookupAttempts
	}
	if c.Replication.LookupDelay == 0 {
		c.Replication.LookupDelay = DefaultLookupDelay
	}
	if c.DigitalOcean.RequestsPerSecond == 0 {
		c.DigitalOcean.RequestsPerSecond = 5
	}
	if c.DigitalOcean.Burst == 0 {
		c.DigitalOcean.Burst = 10
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.LockFile == "" {
		c.LockFile = DefaultLockFile
	}
	if c.ConfigReload.Method == "" {
		c.ConfigReload.Method = "fsnotify"
	}
	for i := range c.Droplets {
		if c.Droplets[i].Type == "" {
			c.Droplets[i].Type = string(snapshot.SetTypeDroplet)
		}
	}
}

// Validate reports the first problem that makes the config unusable.
func (c *Config) Validate() error {
	if c.DigitalOcean.Token == "" {
		return fmt.Errorf("%w: digitalocean.token is empty", ErrInvalid)
	}
	if c.Retention.DefaultKeepSnapshots < 1 {
		return fmt.Errorf("%w: retention.defaultKeepSnapshots must be at least 1", ErrInvalid)
	}
	if c.Tracking.PollInterval < 0 || c.Tracking.Timeout < 0 {
		return fmt.Errorf("%w: tracking durations must not be negative", ErrInvalid)
	}
	if c.Tracking.Concurrency < 1 {
		return fmt.Errorf("%w: tracking.concurrency must be at least 1", ErrInvalid)
	}
	if c.Replication.LookupAttempts < 1 || c.Replication.LookupDelay <= 0 {
		return fmt.Errorf("%w: replication lookup needs positive attempts and delay", ErrInvalid)
	}
	if len(c.Droplets) == 0 {
		return fmt.Errorf("%w: no droplets configured", ErrInvalid)
	}

	seen := make(map[string]bool, len(c.Droplets))
	for i, d := range c.Droplets {
		if d.Name == "" {
			return fmt.Errorf("%w: droplets[%d].name is empty", ErrInvalid, i)
		}
		if seen[d.Name] {
			return fmt.Errorf("%w: droplet %q configured twice", ErrInvalid, d.Name)
		}
		seen[d.Name] = true

		if d.KeepSnapshots < 0 {
			return fmt.Errorf("%w: droplet %q keepSnapshots is negative", ErrInvalid, d.Name)
		}
		if err := snapshot.SetType(d.Type).Validate(); err != nil {
			return fmt.Errorf("%w: droplet %q: %w", ErrInvalid, d.Name, err)
		}
	}

	if c.Schedule.Cron != "" {
		if _, err := cron.ParseStandard(c.Schedule.Cron); err != nil {
			return fmt.Errorf("%w: schedule.cron: %w", ErrInvalid, err)
		}
	}

	switch c.ConfigReload.Method {
	case "fsnotify", "signal":
	default:
		return fmt.Errorf("%w: unknown configReload.method %q", ErrInvalid, c.ConfigReload.Method)
	}

	return nil
}
