package worker

import (
	"context"

	"github.com/raoulx24/do-snapmanager/internal/config"
	"github.com/raoulx24/do-snapmanager/internal/replication"
	"github.com/raoulx24/do-snapmanager/internal/retention"
)

// hooks invoked by the lifecycle once snapshots exist.

type Retention interface {
	Apply(ctx context.Context, droplets []config.DropletConfig) retention.Result
}

type Replicator interface {
	Replicate(ctx context.Context, dropletName, snapshotName string, regions []string) (replication.Result, error)
}
