// Package worker runs the snapshot lifecycle: creation, completion tracking
// with region replication, then retention.
package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/juju/clock"

	"github.com/raoulx24/do-snapmanager/internal/config"
	"github.com/raoulx24/do-snapmanager/internal/inventory"
	"github.com/raoulx24/do-snapmanager/internal/logging"
	"github.com/raoulx24/do-snapmanager/internal/naming"
	"github.com/raoulx24/do-snapmanager/internal/provider"
	"github.com/raoulx24/do-snapmanager/internal/replication"
	"github.com/raoulx24/do-snapmanager/internal/retention"
)

// Worker owns the API client and the current config. Every run works on the
// config as it was when the run started.
type Worker struct {
	mu     sync.RWMutex
	cfg    config.Config
	client provider.Client
	log    logging.Logger

	// clock stamps snapshot names and the summary; waits use waitClock.
	clock     clock.Clock
	waitClock clock.Clock
}

// New creates a worker. A nil clock means the wall clock.
func New(cfg config.Config, client provider.Client, log logging.Logger, clk clock.Clock) *Worker {
	log.Debug("creating worker")
	if clk == nil {
		clk = clock.WallClock
	}
	return &Worker{
		cfg:       cfg,
		client:    client,
		log:       log,
		clock:     clk,
		waitClock: clock.WallClock,
	}
}

// UpdateConfig hot‑reloads the config for the next run.
func (w *Worker) UpdateConfig(cfg config.Config) {
	w.mu.Lock()
	w.cfg = cfg
	w.mu.Unlock()
	w.log.Info("worker config updated", "droplets", len(cfg.Droplets))
}

func (w *Worker) currentConfig() config.Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.cfg
}

// Run executes one full lifecycle pass. The returned error is only set when
// the run could not finish: ctx was cancelled. Per-droplet failures are
// logged and counted in the summary instead.
func (w *Worker) Run(ctx context.Context) (Summary, error) {
	cfg := w.currentConfig()
	sum := Summary{StartedAt: w.clock.Now()}

	scheme := naming.New(cfg.Naming.Prefix, w.clock)
	inv := inventory.New(w.client, scheme)
	repl := replication.New(w.client, inv, w.log, replication.Options{
		LookupAttempts: cfg.Replication.LookupAttempts,
		LookupDelay:    cfg.Replication.LookupDelay,
		Clock:          w.waitClock,
	})
	tracker := NewTracker(w.client, repl, w.log, TrackerOptions{
		PollInterval: cfg.Tracking.PollInterval,
		Timeout:      cfg.Tracking.Timeout,
		Concurrency:  cfg.Tracking.Concurrency,
		Clock:        w.waitClock,
	})
	var ret Retention = retention.New(w.client, inv, w.log, cfg.Retention)

	w.log.Info("starting snap manager", "droplets", len(cfg.Droplets), "prefix", cfg.Naming.Prefix)

	w.log.Info("starting snapshots creation")
	jobs, failed := NewDispatcher(w.client, inv, scheme, w.log).Dispatch(ctx, cfg.Droplets)
	sum.Dispatched, sum.DispatchFailed = len(jobs), failed

	tr, err := tracker.Track(ctx, jobs)
	sum.Completed = tr.Completed
	sum.CreationFailed = tr.Errored
	sum.TimedOut = tr.TimedOut
	sum.Replicated = tr.Replicated
	sum.ReplicationFailed = tr.ReplicationFailed
	sum.Unresolved = tr.Unresolved
	if err != nil && !errors.Is(err, ErrTrackingTimedOut) {
		return w.finish(sum), err
	}
	if err != nil {
		w.log.Warn("continuing with retention after tracking timeout", "error", err)
	}

	w.log.Info("starting retention")
	pr := ret.Apply(ctx, cfg.Droplets)
	sum.Pruned = pr.Pruned
	sum.PruneFailed = pr.Failed + pr.DropletsFailed

	if ctx.Err() != nil {
		return w.finish(sum), ctx.Err()
	}
	return w.finish(sum), nil
}

func (w *Worker) finish(sum Summary) Summary {
	sum.FinishedAt = w.clock.Now()
	w.log.Info("snap manager run finished", sum.KV()...)
	return sum
}
