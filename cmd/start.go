package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"catalog-service/core/collector"
	"catalog-service/core/config"
	"catalog-service/core/database"
	"catalog-service/core/loader"
	"catalog-service/core/logger"
	"catalog-service/core/middleware/rayid"
	"catalog-service/core/reconcile"
	"catalog-service/core/resilience"

	"catalog-service/feature/catalog"
	catalogsync "catalog-service/feature/catalog/sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "catalog-service/docs/swagger"
)

// @title Catalog Service API
// @version 1.0
// @description Read API for the commerce catalog.
// @host localhost:8080
// @BasePath /

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the catalog service",
	Long:  `Starts the HTTP read API and the background reconciliation scheduler.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Connect to Database
		db, err := database.Connect(cfg.Database)
		if err != nil {
			logg.Fatal("Failed to connect to database", zap.Error(err))
		}
		logg.Info("Connected to catalog database")

		// 4. Build the catalog feature (repository + cache + handlers)
		feature := catalog.NewFeature(db, cfg.Cache, logg)

		// 5. Build the reconciliation pipeline: collector behind its gate,
		// engine over the repository, synchronizer over the cache.
		gate := resilience.NewGate("collector", cfg.Resilience, logg)
		client := collector.NewClient(cfg.Collector, gate, logg)
		synchronizer := catalogsync.NewSynchronizer(feature.Cache(), logg)
		engine := reconcile.NewEngine(client, feature.Repository(), synchronizer, cfg.Sync, logg)

		schedCtx, stopScheduler := context.WithCancel(context.Background())
		defer stopScheduler()
		if cfg.Sync.Enabled {
			scheduler := reconcile.NewScheduler(engine, cfg.Sync, logg)
			go func() {
				if err := scheduler.Run(schedCtx); err != nil && schedCtx.Err() == nil {
					logg.Error("Scheduler stopped", zap.Error(err))
				}
			}()
		}

		// 6. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We log our own startup message
		})

		// RayID must be first to trace everything
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		app.Get("/swagger/*", swagger.HandlerDefault)

		// 7. Load Features
		mgr := loader.NewManager()
		mgr.Register(feature)
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 8. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 9. Graceful Shutdown: stop the scheduler first so a cancelled run
		// leaves the store at its last committed batch.
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		stopScheduler()
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
