package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/raoulx24/do-snapmanager/internal/config"
	"github.com/raoulx24/do-snapmanager/internal/lock"
	"github.com/raoulx24/do-snapmanager/internal/logging"
	"github.com/raoulx24/do-snapmanager/internal/mailbox"
	"github.com/raoulx24/do-snapmanager/internal/metrics"
	"github.com/raoulx24/do-snapmanager/internal/provider"
	"github.com/raoulx24/do-snapmanager/internal/watcher"
	"github.com/raoulx24/do-snapmanager/internal/worker"
)

var Version = "dev"

type options struct {
	configPath    string
	prefix        string
	keepSnapshots int
	dryRun        bool
	once          bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "do-snapmanager",
		Short: "Digital Ocean snapshot manager",
		Long: `Digital Ocean snapshot manager.

Creates a snapshot of every configured droplet, waits for the snapshots to
complete, copies them to the configured regions and deletes the oldest
managed snapshots beyond the retention count.

Only snapshots whose name contains "<prefix><droplet name>" are managed;
other snapshots of the droplet are never deleted.`,
		Version:      Version,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("keep-snapshots") && opts.keepSnapshots < 1 {
				return errors.New("--keep-snapshots must be at least 1")
			}
			return run(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "config.yaml", "path to the config file")
	cmd.Flags().StringVar(&opts.prefix, "prefix", "", "prefix prepended to snapshot's name (overrides naming.prefix)")
	cmd.Flags().IntVar(&opts.keepSnapshots, "keep-snapshots", 0, "number of snapshots to be kept for each droplet without its own keepSnapshots")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "log the snapshots retention would delete without deleting them")
	cmd.Flags().BoolVar(&opts.once, "once", false, "run once and exit even when a schedule is configured")

	return cmd
}

// load reads the config file and applies the command line overrides on top.
func (o options) load() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.prefix != "" {
		cfg.Naming.Prefix = o.prefix
	}
	if o.keepSnapshots > 0 {
		cfg.Retention.DefaultKeepSnapshots = o.keepSnapshots
	}
	if o.dryRun {
		cfg.Retention.DryRun = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(parent context.Context, opts options) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	// Load config
	cfg, err := opts.load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Logger
	logg, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer logg.Close()

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)
		select {
		case s := <-sigCh:
			logg.Warn("shutting down", "signal", s.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	// One run at a time
	runLock, err := lock.Acquire(cfg.LockFile)
	if err != nil {
		logg.Error("cannot take run lock", "error", err)
		return err
	}
	defer runLock.Release()

	client, err := provider.NewGodoClient(ctx, cfg.DigitalOcean)
	if err != nil {
		return err
	}
	if err := client.VerifyCredentials(ctx); err != nil {
		logg.Error("digitalocean credentials rejected", "error", err)
		return fmt.Errorf("verifying credentials: %w", err)
	}

	w := worker.New(*cfg, client, logg, nil)

	recorder := metrics.New()
	report := func(sum worker.Summary, runErr error) {
		recorder.Record(sum, runErr != nil)
		if cfg.Metrics.Textfile == "" {
			return
		}
		if err := recorder.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			logg.Warn("writing metrics failed", "error", err)
		}
	}

	if cfg.Schedule.Cron == "" || opts.once {
		sum, err := w.Run(ctx)
		report(sum, err)
		return err
	}

	return runScheduled(ctx, opts, cfg, w, logg, report)
}

func runScheduled(ctx context.Context, opts options, cfg *config.Config, w *worker.Worker, logg logging.Logger, report func(worker.Summary, error)) error {
	mb := mailbox.New[worker.Trigger]()

	stop, err := worker.Schedule(cfg.Schedule.Cron, mb, logg)
	if err != nil {
		return err
	}
	defer stop()

	if cfg.ConfigReload.Enabled {
		watch := watcher.New(opts.configPath, opts.load, w.UpdateConfig, logg)

		if cfg.ConfigReload.Method == "fsnotify" {
			if err := watcher.Probe(filepath.Dir(opts.configPath), time.Second); err != nil {
				logg.Warn("fsnotify disabled, reload with SIGHUP", "reason", err)
			} else {
				go func() {
					if err := watch.Start(ctx); err != nil {
						logg.Error("config watcher stopped", "error", err)
					}
				}()
			}
		}

		// Hot reload on SIGHUP
		go func() {
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGHUP)
			defer signal.Stop(sigCh)

			for {
				select {
				case <-sigCh:
					watch.Reload()
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	worker.RunLoop(ctx, w, mb, report)
	logg.Info("exit complete")
	return nil
}
