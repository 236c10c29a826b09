// Package metrics exposes run summaries to Prometheus through the
// node_exporter textfile collector.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/raoulx24/do-snapmanager/internal/worker"
)

type Recorder struct {
	reg *prometheus.Registry

	items        *prometheus.GaugeVec
	lastRun      prometheus.Gauge
	lastDuration prometheus.Gauge
	lastSuccess  prometheus.Gauge
}

func New() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		reg: reg,
		items: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "dosnap_last_run_items",
			Help: "Items handled by the last run, by stage and outcome",
		}, []string{"stage", "outcome"}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dosnap_last_run_timestamp_seconds",
			Help: "Unix time the last run finished",
		}),
		lastDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dosnap_last_run_duration_seconds",
			Help: "Wall time of the last run",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dosnap_last_run_success",
			Help: "1 if the last run finished without failures, 0 otherwise",
		}),
	}
	reg.MustRegister(r.items, r.lastRun, r.lastDuration, r.lastSuccess)
	return r
}

// Record stores a summary; interrupted marks a run that did not finish.
func (r *Recorder) Record(s worker.Summary, interrupted bool) {
	set := func(stage, outcome string, v int) {
		r.items.WithLabelValues(stage, outcome).Set(float64(v))
	}
	set("create", "ok", s.Dispatched)
	set("create", "failed", s.DispatchFailed)
	set("complete", "ok", s.Completed)
	set("complete", "failed", s.CreationFailed)
	set("complete", "timeout", s.TimedOut)
	set("replicate", "ok", s.Replicated)
	set("replicate", "failed", s.ReplicationFailed)
	set("replicate", "unresolved", s.Unresolved)
	set("prune", "ok", s.Pruned)
	set("prune", "failed", s.PruneFailed)

	r.lastRun.Set(float64(s.FinishedAt.Unix()))
	r.lastDuration.Set(s.Duration().Seconds())
	if interrupted || s.Failures() > 0 {
		r.lastSuccess.Set(0)
	} else {
		r.lastSuccess.Set(1)
	}
}

// WriteTextfile writes every metric to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}

func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.reg
}
