package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"proxy-manager/core/config"
	"proxy-manager/core/database"
	"proxy-manager/core/inventory"
	"proxy-manager/core/logger"
	"proxy-manager/core/middleware/auth"
	"proxy-manager/core/middleware/rayid"
	"proxy-manager/core/reconcile"
	"proxy-manager/feature/status"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the sync scheduler and status API",
	Long:  `Starts the periodic inventory sync and the operational HTTP server.`,
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
		if err := inventory.AutoMigrate(db); err != nil {
			logg.Fatal("Failed to migrate schema", zap.Error(err))
		}

		// 4. Build Engine and Providers
		engine, store, err := buildEngine(cfg, db, logg)
		if err != nil {
			logg.Fatal("Failed to build engine", zap.Error(err))
		}
		providers := buildProviders(cfg, logg)
		if len(providers) == 0 {
			logg.Warn("No providers enabled; the scheduler will idle")
		}

		// 5. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
		})

		// Middleware: RayID first so every request is traceable.
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
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		svc := status.NewService(engine, store, providers, logg)
		status.NewHandler(svc).RegisterRoutes(app)

		// 6. Start Scheduler
		schedulerCtx, stopScheduler := context.WithCancel(context.Background())
		go runScheduler(schedulerCtx, engine, providers, cfg.Sync, logg)

		// 7. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 8. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down...")
		stopScheduler()
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}

// runScheduler triggers one pass per provider on a fixed interval. The
// engine serializes passes per provider, so a pass outliving the interval
// cannot overlap with the next trigger.
func runScheduler(ctx context.Context, engine *reconcile.Engine, providers []reconcile.Provider, cfg reconcile.Config, logg *zap.Logger) {
	interval := time.Duration(cfg.IntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = time.Hour
	}

	runAll := func() {
		for _, p := range providers {
			if _, err := engine.Run(ctx, p); err != nil {
				logg.Error("scheduled sync failed",
					zap.String("provider", p.Name()),
					zap.Error(err))
			}
		}
	}

	// First pass right away, then on the interval.
	runAll()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			runAll()
		case <-ctx.Done():
			return
		}
	}
}
