package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"catalog-service/core/collector"
	"catalog-service/core/config"
	"catalog-service/core/database"
	"catalog-service/core/logger"
	"catalog-service/core/reconcile"
	"catalog-service/core/resilience"
	"catalog-service/feature/catalog"
	catalogsync "catalog-service/feature/catalog/sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var maxPagesFlag int

// syncCmd runs one reconciliation pass and exits.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one reconciliation pass against the collector",
	Long: `Fetches the collector's record stream page by page, validates it, and
commits it into the catalog store batch by batch. Cache entries touched by the
run are invalidated before the command exits.

A batch failure aborts the run but leaves earlier batches committed; the next
run resumes from the last committed batch.

Examples:
  # Full pass
  catalog-service sync

  # Bounded pass (useful for smoke tests against a large collector)
  catalog-service sync --max-pages 5`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().IntVar(&maxPagesFlag, "max-pages", 0, "Stop after this many pages (0 = no limit beyond config)")
	RootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()

	l.Info("Starting reconciliation run")

	// Connect to database
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if maxPagesFlag > 0 {
		cfg.Sync.MaxPages = maxPagesFlag
	}

	feature := catalog.NewFeature(db, cfg.Cache, l)
	gate := resilience.NewGate("collector", cfg.Resilience, l)
	client := collector.NewClient(cfg.Collector, gate, l)
	synchronizer := catalogsync.NewSynchronizer(feature.Cache(), l)
	engine := reconcile.NewEngine(client, feature.Repository(), synchronizer, cfg.Sync, l)

	// Ctrl-C cancels the run cleanly: the store keeps its committed batches
	// and the cursor resumes from there next time.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := engine.Run(ctx)
	if report != nil {
		printSyncReport(l, report)
	}
	if err != nil {
		return fmt.Errorf("reconciliation run failed: %w", err)
	}
	return nil
}

// printSyncReport prints a formatted run report using logger.
func printSyncReport(l *zap.Logger, report *reconcile.Report) {
	l.Info("Reconciliation report",
		zap.Int("pages", report.Pages),
		zap.Int("fetched", report.Fetched),
		zap.Int("invalid", report.Invalid),
		zap.Int("skipped", report.Skipped),
		zap.Int("applied", report.Applied),
		zap.Duration("elapsed", report.Finished.Sub(report.Started)),
	)

	// Show a sample of changes (max 5 for logger)
	maxShow := 5
	if len(report.Changes) < maxShow {
		maxShow = len(report.Changes)
	}
	for i := 0; i < maxShow; i++ {
		ch := report.Changes[i]
		l.Info("Sample change",
			zap.String("entity", string(ch.Entity)),
			zap.Uint64("id", ch.ID),
			zap.Uint64("brand_id", ch.BrandID),
			zap.String("op", string(ch.Op)),
		)
	}
	if len(report.Changes) > maxShow {
		l.Info("Additional changes not shown", zap.Int("count", len(report.Changes)-maxShow))
	}
}
