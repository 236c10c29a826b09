package config

import "time"

type Config struct {
	DigitalOcean DigitalOceanConfig `yaml:"digitalocean"`
	Naming       NamingConfig       `yaml:"naming"`
	Retention    RetentionConfig    `yaml:"retention"`
	Tracking     TrackingConfig     `yaml:"tracking"`
	Replication  ReplicationConfig  `yaml:"replication"`
	Droplets     []DropletConfig    `yaml:"droplets"`
	Logging      LoggingConfig      `yaml:"logging"`
	Schedule     ScheduleConfig     `yaml:"schedule"`
	LockFile     string             `yaml:"lockFile"`
	Metrics      MetricsConfig      `yaml:"metrics"`
	ConfigReload ReloadConfig       `yaml:"configReload"`
}

type DigitalOceanConfig struct {
	Token             string  `yaml:"token"`
	RequestsPerSecond float64 `yaml:"requestsPerSecond"`
	Burst             int     `yaml:"burst"`
}

type NamingConfig struct {
	Prefix string `yaml:"prefix"` // base tag, e.g. "snp-"
}

type RetentionConfig struct {
	DefaultKeepSnapshots int  `yaml:"defaultKeepSnapshots"`
	DryRun               bool `yaml:"dryRun"`
}

type TrackingConfig struct {
	PollInterval time.Duration `yaml:"pollInterval"` // e.g. 20s
	Timeout      time.Duration `yaml:"timeout"`      // 0 polls forever
	Concurrency  int           `yaml:"concurrency"`
}

type ReplicationConfig struct {
	LookupAttempts int           `yaml:"lookupAttempts"`
	LookupDelay    time.Duration `yaml:"lookupDelay"`
}

// DropletConfig describes one snapshot set managed by the tool.
type DropletConfig struct {
	Name          string   `yaml:"name"`
	Type          string   `yaml:"type"` // "droplet" (default) or "volume"
	KeepSnapshots int      `yaml:"keepSnapshots"`
	CopyToRegions []string `yaml:"copyToRegions"`
}

// Keep returns the retention count for the droplet, falling back to def.
func (d DropletConfig) Keep(def int) int {
	if d.KeepSnapshots > 0 {
		return d.KeepSnapshots
	}
	return def
}

type LoggingConfig struct {
	Level      string `yaml:"level"`  // "info", "debug", etc.
	Format     string `yaml:"format"` // "json", "text"
	File       string `yaml:"file"`   // empty logs to stderr
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
	Compress   bool   `yaml:"compress"`
}

type ScheduleConfig struct {
	Cron string `yaml:"cron"` // empty runs once and exits
}

type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

type ReloadConfig struct {
	Enabled bool   `yaml:"enabled"`
	Method  string `yaml:"method"` // "fsnotify", "signal"
}
