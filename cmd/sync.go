package cmd

import (
	"context"
	"fmt"

	"proxy-manager/core/config"
	"proxy-manager/core/database"
	"proxy-manager/core/inventory"
	"proxy-manager/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// syncCmd runs one reconciliation pass and exits.
var syncCmd = &cobra.Command{
	Use:   "sync [provider]",
	Short: "Run one inventory reconciliation pass",
	Long: `Run one reconciliation pass against the enabled providers and exit.

With a provider argument (ipr, ltn) only that provider is synced.

Examples:
  # Sync all enabled providers
  proxy-manager sync

  # Sync only iproxy
  proxy-manager sync ipr`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSync,
}

func init() {
	RootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := inventory.AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	engine, _, err := buildEngine(cfg, db, l)
	if err != nil {
		return fmt.Errorf("failed to build engine: %w", err)
	}

	providers := buildProviders(cfg, l)
	if len(providers) == 0 {
		return fmt.Errorf("no providers enabled; set IPROXY_ENABLED or LOCALTONET_ENABLED")
	}

	var ran, failed int
	for _, p := range providers {
		if len(args) == 1 && p.Name() != args[0] {
			continue
		}
		ran++
		res, err := engine.Run(ctx, p)
		if err != nil {
			failed++
			continue
		}
		l.Info("sync finished",
			zap.String("provider", res.Provider),
			zap.Int("created", res.Created),
			zap.Int("updated", res.Updated),
			zap.Int("deactivated", res.Deactivated))
	}

	if ran == 0 {
		return fmt.Errorf("provider %q is not enabled", args[0])
	}
	if failed > 0 {
		return fmt.Errorf("%d provider sync(s) failed", failed)
	}
	return nil
}
