package cmd

import (
	"context"
	"time"

	"proxy-manager/core/archive"
	"proxy-manager/core/config"
	"proxy-manager/core/inventory"
	"proxy-manager/core/reconcile"
	"proxy-manager/core/retry"
	"proxy-manager/core/storage"
	"proxy-manager/feature/iproxy"
	"proxy-manager/feature/localtonet"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// buildProviders constructs the enabled provider adapters, all sharing one
// retry policy from the sync configuration.
func buildProviders(cfg *config.Config, l *zap.Logger) []reconcile.Provider {
	policy := retry.Policy{
		Attempts: cfg.Sync.RetryAttempts,
		Delay:    time.Duration(cfg.Sync.RetryDelaySeconds) * time.Second,
	}

	var providers []reconcile.Provider
	if cfg.IProxy.Enabled {
		providers = append(providers, iproxy.NewClient(cfg.IProxy, policy, l))
	}
	if cfg.Localtonet.Enabled {
		providers = append(providers, localtonet.NewClient(cfg.Localtonet, policy, l))
	}
	return providers
}

// buildEngine wires the store and optional snapshot archiver into an engine.
func buildEngine(cfg *config.Config, db *gorm.DB, l *zap.Logger) (*reconcile.Engine, inventory.Store, error) {
	store := inventory.NewStore(db)

	var opts []reconcile.Option
	if cfg.Storage.Enabled {
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, nil, err
		}
		archiver := archive.New(client, cfg.Storage.Bucket, l)
		if err := archiver.EnsureBucket(context.Background()); err != nil {
			// Snapshots are best effort; a dead storage backend must not
			// block syncing.
			l.Warn("snapshot bucket unavailable", zap.Error(err))
		}
		opts = append(opts, reconcile.WithArchiver(archiver))
	}

	return reconcile.New(store, l, opts...), store, nil
}
