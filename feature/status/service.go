package status

import (
	"context"
	"errors"
	"fmt"

	"proxy-manager/core/inventory"
	"proxy-manager/core/reconcile"

	"go.uber.org/zap"
)

// ErrUnknownProvider is returned when a sync is triggered for a provider
// that is not configured.
var ErrUnknownProvider = errors.New("unknown provider")

// Service exposes the sync engine and audit trail to the operational API.
type Service struct {
	engine    *reconcile.Engine
	store     inventory.Store
	providers map[string]reconcile.Provider
	logger    *zap.Logger
}

// NewService creates the status service over the given providers.
func NewService(engine *reconcile.Engine, store inventory.Store, providers []reconcile.Provider, logger *zap.Logger) *Service {
	byName := make(map[string]reconcile.Provider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	return &Service{
		engine:    engine,
		store:     store,
		providers: byName,
		logger:    logger,
	}
}

// TriggerSync runs one reconciliation pass for the named provider.
func (s *Service) TriggerSync(ctx context.Context, name string) (*reconcile.SyncResult, error) {
	p, ok := s.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
	return s.engine.Run(ctx, p)
}

// Results returns the last sync result per provider.
func (s *Service) Results() map[string]*reconcile.SyncResult {
	return s.engine.Results()
}

// ConnectionHistory returns the audit trail of one connection.
func (s *Service) ConnectionHistory(ctx context.Context, connectionID string) ([]inventory.ChangeRecord, []inventory.AssignmentChange, error) {
	return s.store.ConnectionHistory(ctx, connectionID)
}
