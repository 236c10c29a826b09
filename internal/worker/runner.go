package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/raoulx24/do-snapmanager/internal/logging"
	"github.com/raoulx24/do-snapmanager/internal/mailbox"
)

// contains the loop that pulls run requests from the mailbox
// and executes them using the Worker.

// Trigger asks for one run. At most one trigger waits at a time.
type Trigger struct {
	At time.Time
}

// RunLoop runs w once per trigger until ctx is done. done, when set, sees
// every run's outcome.
func RunLoop(ctx context.Context, w *Worker, mb *mailbox.Mailbox[Trigger], done func(Summary, error)) {
	for {
		t, ok := mb.Take(ctx)
		if !ok {
			return
		}

		w.log.Info("scheduled run starting", "triggeredAt", t.At)
		sum, err := w.Run(ctx)
		if err != nil {
			w.log.Error("scheduled run interrupted", "error", err)
		}
		if done != nil {
			done(sum, err)
		}
	}
}

// Schedule fires a trigger into mb on every tick of the standard cron expression.
// Ticks arriving while a run is in progress collapse into one. The returned
// stop function waits for the scheduler to shut down.
func Schedule(expr string, mb *mailbox.Mailbox[Trigger], log logging.Logger) (stop func(), err error) {
	c := cron.New()
	_, err = c.AddFunc(expr, func() {
		if mb.Put(Trigger{At: time.Now()}) {
			log.Warn("previous scheduled run still waiting, ticks coalesced", "schedule", expr)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("parsing schedule %q: %w", expr, err)
	}

	c.Start()
	log.Info("scheduler started", "schedule", expr)

	return func() {
		<-c.Stop().Done()
	}, nil
}
