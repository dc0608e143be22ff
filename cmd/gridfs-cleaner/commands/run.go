package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Dualog-students/GridFSCleaner/internal/cli/output"
	"github.com/Dualog-students/GridFSCleaner/internal/cli/prompt"
	"github.com/Dualog-students/GridFSCleaner/internal/logger"
	"github.com/Dualog-students/GridFSCleaner/internal/scheduler"
	"github.com/Dualog-students/GridFSCleaner/pkg/config"
	"github.com/Dualog-students/GridFSCleaner/pkg/gc"
	"github.com/Dualog-students/GridFSCleaner/pkg/metrics"
	mongostore "github.com/Dualog-students/GridFSCleaner/pkg/store/mongo"

	// Import prometheus metrics to register init() functions
	_ "github.com/Dualog-students/GridFSCleaner/pkg/metrics/prometheus"
)

var (
	skipConfirm  bool
	outputFormat string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Scan the bucket and reconcile orphan chunks",
	Long: `Scan the GridFS bucket and reconcile orphan chunks.

In dry-run mode (the default) the cleaner reports what it would delete and
touches nothing. Set GRIDFS_CLEANER_DRY_RUN=false (or dry_run: false in the
config file) to delete for real; execute mode asks for confirmation unless
--yes is given.

With a cron schedule configured, the cleaner stays resident and runs the
scan on every tick until interrupted.

Examples:
  # Preview (dry-run is the default)
  GRIDFS_CLEANER_DATABASE_URI=mongodb://localhost:27017/mydb gridfs-cleaner run

  # Delete orphan chunks, skipping the confirmation prompt
  GRIDFS_CLEANER_DRY_RUN=false gridfs-cleaner run --yes

  # Machine-readable report
  gridfs-cleaner run --output json

  # Run every night at 03:00
  GRIDFS_CLEANER_SCHEDULE="0 3 * * *" gridfs-cleaner run --yes`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVarP(&skipConfirm, "yes", "y", false, "Skip the confirmation prompt in execute mode")
	runCmd.Flags().StringVarP(&outputFormat, "output", "o", "table", "Report format: table or json")
}

func runRun(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(outputFormat)
	if err != nil {
		return err
	}

	cfg, err := config.Load(resolveConfigFile())
	if err != nil {
		return err
	}

	if err := InitLogger(cfg); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := mongostore.Connect(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to store: %w", err)
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			logger.Error("store disconnect error", logger.KeyError, err)
		}
	}()

	mode := "dry-run"
	if !cfg.DryRun {
		mode = "execute"
	}
	logger.Info("starting GridFS cleaner",
		logger.KeyMode, mode,
		logger.KeyTarget, store.Target(),
		"bucket", cfg.Database.Bucket,
		"workers", cfg.Workers,
	)

	if !cfg.DryRun && !skipConfirm {
		label := fmt.Sprintf("About to permanently delete orphan chunks from %s", store.Target())
		ok, err := prompt.ConfirmDanger(label, "delete")
		if err != nil {
			if errors.Is(err, prompt.ErrAborted) {
				return prompt.ErrAborted
			}
			return fmt.Errorf("confirmation failed (use --yes for non-interactive runs): %w", err)
		}
		if !ok {
			return prompt.ErrAborted
		}
	}

	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		metricsServer := metrics.NewServer(cfg.Metrics.Port)
		go func() {
			if err := metricsServer.Start(ctx); err != nil {
				logger.Error("metrics server error", logger.KeyError, err)
			}
		}()
	}

	// Constructed once for the process; scheduled runs share the collectors.
	gcMetrics := metrics.NewGCMetrics()

	if cfg.Schedule != "" {
		return runScheduled(ctx, store, cfg, gcMetrics, format)
	}

	return runOnce(ctx, store, cfg, gcMetrics, format)
}

// runOnce performs a single collection and prints the report.
func runOnce(ctx context.Context, store *mongostore.Store, cfg *config.Config, gcMetrics gc.Metrics, format output.Format) error {
	opts := &gc.Options{
		DryRun:           cfg.DryRun,
		Workers:          cfg.Workers,
		ProgressInterval: cfg.ProgressInterval,
		Metrics:          gcMetrics,
	}

	stats, err := gc.Collect(ctx, store, store, opts)
	if stats != nil {
		if printErr := output.Print(os.Stdout, format, output.Report{
			Target: store.Target(),
			Stats:  stats,
		}); printErr != nil && err == nil {
			return printErr
		}
	}
	if err != nil {
		return fmt.Errorf("collection failed: %w", err)
	}
	return nil
}

// runScheduled runs the collection on the configured cron schedule until
// the context is cancelled.
func runScheduled(ctx context.Context, store *mongostore.Store, cfg *config.Config, gcMetrics gc.Metrics, format output.Format) error {
	sched := scheduler.New()
	err := sched.SetJob(ctx, cfg.Schedule, func(ctx context.Context) {
		if err := runOnce(ctx, store, cfg, gcMetrics, format); err != nil {
			logger.Error("scheduled run failed", logger.KeyError, err)
		}
	})
	if err != nil {
		return err
	}

	sched.Run(ctx)
	logger.Info("scheduler stopped")
	return nil
}
