// Package retention deletes managed snapshots beyond each droplet's keep count.
package retention

import (
	"context"

	"github.com/raoulx24/do-snapmanager/internal/config"
	"github.com/raoulx24/do-snapmanager/internal/inventory"
	"github.com/raoulx24/do-snapmanager/internal/logging"
	"github.com/raoulx24/do-snapmanager/internal/provider"
)

type Engine struct {
	client      provider.Client
	inv         *inventory.Accessor
	log         logging.Logger
	defaultKeep int
	dryRun      bool
}

// Result counts snapshots per outcome over all droplets.
type Result struct {
	Pruned         int
	Failed         int // snapshots whose deletion failed
	DropletsFailed int // droplets that could not be inspected at all
}

func New(client provider.Client, inv *inventory.Accessor, log logging.Logger, cfg config.RetentionConfig) *Engine {
	return &Engine{
		client:      client,
		inv:         inv,
		log:         log,
		defaultKeep: cfg.DefaultKeepSnapshots,
		dryRun:      cfg.DryRun,
	}
}

// Apply runs retention for every droplet. Failures are logged and never stop
// the remaining snapshots or droplets.
func (e *Engine) Apply(ctx context.Context, droplets []config.DropletConfig) Result {
	var res Result
	for _, dc := range droplets {
		if ctx.Err() != nil {
			return res
		}
		pruned, failed, err := e.applyDroplet(ctx, dc)
		res.Pruned += pruned
		res.Failed += failed
		if err != nil {
			res.DropletsFailed++
			e.log.Error("retention: droplet skipped", "droplet", dc.Name, "error", err)
		}
	}
	return res
}

// applyDroplet keeps only the newest keep managed snapshots of a droplet.
func (e *Engine) applyDroplet(ctx context.Context, dc config.DropletConfig) (pruned, failed int, err error) {
	d, err := e.inv.FindDroplet(ctx, dc.Name)
	if err != nil {
		return 0, 0, err
	}

	// newest → oldest
	managed, err := e.inv.ListManagedSnapshots(ctx, d)
	if err != nil {
		return 0, 0, err
	}

	keep := dc.Keep(e.defaultKeep)
	if len(managed) <= keep {
		e.log.Debug("retention: nothing to prune", "droplet", dc.Name, "managed", len(managed), "keep", keep)
		return 0, 0, nil
	}

	for _, s := range managed[keep:] {
		if e.dryRun {
			e.log.Info("retention: would delete snapshot", "droplet", dc.Name, "snapshot", s.Name, "id", s.ID)
			continue
		}
		if err := e.client.DeleteSnapshot(ctx, s.ID); err != nil {
			failed++
			e.log.Error("retention: delete failed", "droplet", dc.Name, "snapshot", s.Name, "id", s.ID, "error", err)
			continue
		}
		pruned++
		e.log.Info("retention: deleted snapshot", "droplet", dc.Name, "snapshot", s.Name, "id", s.ID)
	}

	return pruned, failed, nil
}
