package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/juju/clock"
	"github.com/juju/retry"
	"golang.org/x/sync/errgroup"

	"github.com/raoulx24/do-snapmanager/internal/logging"
	"github.com/raoulx24/do-snapmanager/internal/provider"
)

// ErrTrackingTimedOut is returned when creations were still running at the
// tracking deadline.
var ErrTrackingTimedOut = errors.New("snapshot creation tracking timed out")

var errStillPending = errors.New("creations still pending")

type TrackerOptions struct {
	PollInterval time.Duration
	Timeout      time.Duration // zero polls until every action finishes
	Concurrency  int
	Clock        clock.Clock
}

// TrackResult counts jobs and replication outcomes over a tracking session.
type TrackResult struct {
	Completed int
	Errored   int
	TimedOut  int

	Replicated        int // accepted region transfers
	ReplicationFailed int // rejected region transfers
	Unresolved        int // completed snapshots never found for replication
}

// Tracker polls creation actions and replicates each snapshot once its
// creation completed.
type Tracker struct {
	client provider.Client
	repl   Replicator
	log    logging.Logger
	opts   TrackerOptions
}

func NewTracker(client provider.Client, repl Replicator, log logging.Logger, opts TrackerOptions) *Tracker {
	if opts.Clock == nil {
		opts.Clock = clock.WallClock
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Tracker{client: client, repl: repl, log: log, opts: opts}
}

type poll struct {
	action provider.Action
	err    error
}

// Track returns when every job reached a terminal status, the timeout passed
// or ctx was cancelled. Each pass builds a fresh pending set, so a job is
// handled at most once.
func (t *Tracker) Track(ctx context.Context, jobs []Job) (TrackResult, error) {
	var res TrackResult
	if len(jobs) == 0 {
		return res, nil
	}

	pending := jobs
	pass := func() error {
		polls := t.poll(ctx, pending)

		still := make([]Job, 0, len(pending))
		for i, job := range pending {
			p := polls[i]
			switch {
			case p.err != nil:
				t.log.Warn("fetching action status failed", "droplet", job.Droplet.Name, "action", job.ActionID, "error", p.err)
				still = append(still, job)
			case p.action.Status == provider.ActionCompleted:
				res.Completed++
				t.log.Info("droplet snapshot creation completed", "droplet", job.Droplet.Name, "snapshot", job.SnapshotName)
				t.replicate(ctx, job, &res)
			case p.action.Status == provider.ActionErrored:
				res.Errored++
				t.log.Error("droplet snapshot creation failed", "droplet", job.Droplet.Name, "snapshot", job.SnapshotName, "action", job.ActionID)
			default:
				t.log.Debug("action status", "action", job.ActionID, "status", p.action.Status)
				still = append(still, job)
			}
		}
		pending = still

		if ctx.Err() != nil {
			return ctx.Err()
		}
		if len(pending) > 0 {
			return errStillPending
		}
		return nil
	}

	err := retry.Call(retry.CallArgs{
		Func: pass,
		IsFatalError: func(err error) bool {
			return !errors.Is(err, errStillPending)
		},
		NotifyFunc: func(_ error, attempt int) {
			t.log.Debug("waiting for snapshot creations", "pass", attempt, "pending", len(pending))
		},
		Attempts:    -1,
		Delay:       t.opts.PollInterval,
		MaxDuration: t.opts.Timeout,
		Clock:       t.opts.Clock,
		Stop:        ctx.Done(),
	})
	switch {
	case err == nil:
		return res, nil
	case retry.IsDurationExceeded(err):
		res.TimedOut = len(pending)
		for _, job := range pending {
			t.log.Error("gave up waiting for snapshot creation", "droplet", job.Droplet.Name,
				"snapshot", job.SnapshotName, "action", job.ActionID, "timeout", t.opts.Timeout)
		}
		return res, fmt.Errorf("%w: %d creation(s) unfinished after %s", ErrTrackingTimedOut, len(pending), t.opts.Timeout)
	case retry.IsRetryStopped(err), ctx.Err() != nil:
		return res, ctx.Err()
	default:
		return res, err
	}
}

// poll fetches every action status of the pass, a few at a time.
func (t *Tracker) poll(ctx context.Context, jobs []Job) []poll {
	out := make([]poll, len(jobs))

	var g errgroup.Group
	g.SetLimit(t.opts.Concurrency)
	for i, job := range jobs {
		g.Go(func() error {
			a, err := t.client.GetAction(ctx, job.ActionID)
			out[i] = poll{action: a, err: err}
			return nil
		})
	}
	_ = g.Wait()

	return out
}

func (t *Tracker) replicate(ctx context.Context, job Job, res *TrackResult) {
	regions := job.Config.CopyToRegions
	if len(regions) == 0 {
		return
	}

	r, err := t.repl.Replicate(ctx, job.Droplet.Name, job.SnapshotName, regions)
	if err != nil {
		res.Unresolved++
		t.log.Error("replication abandoned", "droplet", job.Droplet.Name, "snapshot", job.SnapshotName, "error", err)
		return
	}
	res.Replicated += len(r.Requested)
	res.ReplicationFailed += len(r.Failed)
}
