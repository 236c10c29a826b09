package worker

import (
	"github.com/raoulx24/do-snapmanager/internal/config"
	"github.com/raoulx24/do-snapmanager/internal/provider"
)

// Job is a snapshot creation waiting for its action to finish.
type Job struct {
	ActionID     int
	Droplet      provider.Droplet // as seen at dispatch time
	SnapshotName string
	Config       config.DropletConfig
}
