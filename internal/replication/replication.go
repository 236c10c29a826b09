// Package replication copies completed snapshots to secondary regions.
package replication

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/juju/clock"
	"github.com/juju/retry"

	"github.com/raoulx24/do-snapmanager/internal/inventory"
	"github.com/raoulx24/do-snapmanager/internal/logging"
	"github.com/raoulx24/do-snapmanager/internal/provider"
)

// ErrSnapshotUnresolvable means the snapshot never showed up on its droplet
// within the lookup budget.
var ErrSnapshotUnresolvable = errors.New("snapshot not found on droplet")

var errNotVisible = errors.New("snapshot not visible yet")

type Options struct {
	LookupAttempts int
	LookupDelay    time.Duration
	Clock          clock.Clock
}

// Result reports what happened to each requested region.
type Result struct {
	SnapshotID int
	Requested  []string
	Skipped    []string // already present in the region
	Failed     map[string]error
}

type Replicator struct {
	client provider.Client
	inv    *inventory.Accessor
	log    logging.Logger
	opts   Options
}

func New(client provider.Client, inv *inventory.Accessor, log logging.Logger, opts Options) *Replicator {
	if opts.Clock == nil {
		opts.Clock = clock.WallClock
	}
	return &Replicator{client: client, inv: inv, log: log, opts: opts}
}

// Replicate resolves the named snapshot on the droplet and requests a transfer
// to every region. It returns once each request was accepted or rejected;
// transfers themselves are not awaited.
func (r *Replicator) Replicate(ctx context.Context, dropletName, snapshotName string, regions []string) (Result, error) {
	res := Result{Failed: map[string]error{}}
	if len(regions) == 0 {
		return res, nil
	}

	snap, err := r.lookup(ctx, dropletName, snapshotName)
	if err != nil {
		return res, err
	}
	res.SnapshotID = snap.ID

	for _, region := range regions {
		if slices.Contains(snap.Regions, region) {
			r.log.Debug("snapshot already in region", "snapshot", snapshotName, "region", region)
			res.Skipped = append(res.Skipped, region)
			continue
		}

		r.log.Info("starting transfer to region", "snapshot", snapshotName, "region", region)
		action, err := r.client.TransferSnapshot(ctx, snap.ID, region)
		if err != nil {
			r.log.Error("failed to start copy to region", "snapshot", snapshotName, "region", region, "error", err)
			res.Failed[region] = err
			continue
		}
		r.log.Debug("transfer accepted", "snapshot", snapshotName, "region", region, "action", action.ID)
		res.Requested = append(res.Requested, region)
	}

	return res, nil
}

// lookup re-reads the droplet on every attempt because a freshly completed
// snapshot may take a while to appear in its snapshot list.
func (r *Replicator) lookup(ctx context.Context, dropletName, snapshotName string) (provider.Snapshot, error) {
	var (
		found   provider.Snapshot
		lastErr error
	)

	err := retry.Call(retry.CallArgs{
		Func: func() error {
			d, err := r.inv.FindDroplet(ctx, dropletName)
			if err != nil {
				return err
			}
			managed, err := r.inv.ListManagedSnapshots(ctx, d)
			if err != nil {
				return err
			}
			for _, s := range managed {
				if s.Name == snapshotName {
					found = s
					return nil
				}
			}
			return errNotVisible
		},
		IsFatalError: func(err error) bool {
			return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
		NotifyFunc: func(err error, attempt int) {
			lastErr = err
			r.log.Debug("snapshot lookup retry", "snapshot", snapshotName, "attempt", attempt, "error", err)
		},
		Attempts: r.opts.LookupAttempts,
		Delay:    r.opts.LookupDelay,
		Clock:    r.opts.Clock,
		Stop:     ctx.Done(),
	})
	switch {
	case err == nil:
		return found, nil
	case retry.IsAttemptsExceeded(err):
		return provider.Snapshot{}, fmt.Errorf("%w: %q after %d attempts (last error: %v)",
			ErrSnapshotUnresolvable, snapshotName, r.opts.LookupAttempts, lastErr)
	case retry.IsRetryStopped(err):
		return provider.Snapshot{}, ctx.Err()
	default:
		return provider.Snapshot{}, err
	}
}
