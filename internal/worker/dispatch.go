package worker

import (
	"context"

	"github.com/raoulx24/do-snapmanager/internal/config"
	"github.com/raoulx24/do-snapmanager/internal/inventory"
	"github.com/raoulx24/do-snapmanager/internal/logging"
	"github.com/raoulx24/do-snapmanager/internal/naming"
	"github.com/raoulx24/do-snapmanager/internal/provider"
)

// Dispatcher requests a new snapshot for every configured droplet.
type Dispatcher struct {
	client provider.Client
	inv    *inventory.Accessor
	scheme *naming.Scheme
	log    logging.Logger
}

func NewDispatcher(client provider.Client, inv *inventory.Accessor, scheme *naming.Scheme, log logging.Logger) *Dispatcher {
	return &Dispatcher{client: client, inv: inv, scheme: scheme, log: log}
}

// Dispatch returns one job per droplet whose creation was accepted, in config
// order, and the number of droplets that failed. A failing droplet never
// stops the others.
func (d *Dispatcher) Dispatch(ctx context.Context, droplets []config.DropletConfig) ([]Job, int) {
	var (
		jobs   []Job
		failed int
	)
	for _, dc := range droplets {
		if ctx.Err() != nil {
			break
		}
		job, err := d.dispatchOne(ctx, dc)
		if err != nil {
			failed++
			d.log.Error("can't start snapshot creation", "droplet", dc.Name,
				"keepSnapshots", dc.KeepSnapshots, "copyToRegions", dc.CopyToRegions, "error", err)
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, failed
}

func (d *Dispatcher) dispatchOne(ctx context.Context, dc config.DropletConfig) (Job, error) {
	droplet, err := d.inv.FindDroplet(ctx, dc.Name)
	if err != nil {
		return Job{}, err
	}

	name := d.scheme.NewName(droplet.Name)
	action, err := d.client.CreateSnapshot(ctx, droplet.ID, name)
	if err != nil {
		return Job{}, err
	}

	d.log.Info("creating snapshot", "droplet", droplet.Name, "dropletID", droplet.ID,
		"snapshot", name, "action", action.ID)

	return Job{
		ActionID:     action.ID,
		Droplet:      droplet,
		SnapshotName: name,
		Config:       dc,
	}, nil
}
