package reconcile

import (
	"context"
	"fmt"
	"sync"
	"time"

	"proxy-manager/core/inventory"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// connectionLease is how far ahead a freshly inserted connection is
// considered paid for until the billing layer takes over.
const connectionLease = 30 * 24 * time.Hour

// Engine orchestrates reconciliation passes. One pass per provider runs at a
// time: concurrent triggers for the same provider join the in-flight pass via
// singleflight; passes for different providers proceed independently.
type Engine struct {
	store    inventory.Store
	log      *zap.Logger
	archiver Archiver
	now      func() time.Time

	group singleflight.Group

	mu   sync.RWMutex
	last map[string]*SyncResult
}

// Option customizes an Engine.
type Option func(*Engine)

// WithArchiver enables raw inventory snapshot archiving per successful fetch.
func WithArchiver(a Archiver) Option {
	return func(e *Engine) { e.archiver = a }
}

// WithClock overrides the engine clock, used by tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an Engine writing through the given store.
func New(store inventory.Store, log *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		store: store,
		log:   log,
		now:   time.Now,
		last:  make(map[string]*SyncResult),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// LastResult returns the most recent result for a provider, or nil if the
// provider has not run yet.
func (e *Engine) LastResult(provider string) *SyncResult {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.last[provider]
}

// Results returns the most recent result per provider.
func (e *Engine) Results() map[string]*SyncResult {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make(map[string]*SyncResult, len(e.last))
	for k, v := range e.last {
		out[k] = v
	}
	return out
}

// Run executes one reconciliation pass for the provider. A trigger arriving
// while a pass for the same provider is in flight does not start a second
// pass; it waits for and shares the in-flight result.
func (e *Engine) Run(ctx context.Context, p Provider) (*SyncResult, error) {
	type outcome struct {
		res *SyncResult
		err error
	}

	v, _, shared := e.group.Do(p.Name(), func() (interface{}, error) {
		res, err := e.runOnce(ctx, p)
		return outcome{res: res, err: err}, nil
	})
	if shared {
		e.log.Info("sync already in flight, sharing result",
			zap.String("provider", p.Name()))
	}

	o := v.(outcome)
	return o.res, o.err
}

func (e *Engine) runOnce(ctx context.Context, p Provider) (*SyncResult, error) {
	started := e.now()
	res := &SyncResult{
		Provider:  p.Name(),
		RunID:     uuid.NewString(),
		StartedAt: started,
	}
	log := e.log.With(zap.String("provider", p.Name()), zap.String("run_id", res.RunID))

	fetched, err := p.FetchInventory(ctx)
	if err != nil {
		// Fetch failure aborts the pass before any write: local state stays
		// untouched and the next scheduled run starts clean.
		res.Err = err.Error()
		res.Duration = e.now().Sub(started)
		e.saveResult(res)
		log.Error("inventory fetch failed", zap.Error(err))
		return res, fmt.Errorf("fetch inventory from %s: %w", p.Name(), err)
	}
	log.Info("fetched inventory", zap.Int("proxies", len(fetched)))

	if e.archiver != nil {
		if err := e.archiver.Snapshot(ctx, p.Name(), fetched); err != nil {
			log.Warn("snapshot archiving failed", zap.Error(err))
		}
	}

	err = e.store.InTransaction(ctx, func(tx inventory.Tx) error {
		return e.reconcile(tx, p.Name(), fetched, res, log)
	})
	if err != nil {
		// The transaction rolled back; discard the partial counters.
		*res = SyncResult{
			Provider:  p.Name(),
			RunID:     res.RunID,
			StartedAt: started,
			Err:       err.Error(),
		}
		res.Duration = e.now().Sub(started)
		e.saveResult(res)
		log.Error("reconciliation pass failed, rolled back", zap.Error(err))
		return res, fmt.Errorf("reconcile %s: %w", p.Name(), err)
	}

	res.Duration = e.now().Sub(started)
	e.saveResult(res)
	log.Info("reconciliation pass finished",
		zap.Int("created", res.Created),
		zap.Int("updated", res.Updated),
		zap.Int("deactivated", res.Deactivated),
		zap.Int("skipped", res.Skipped),
		zap.Duration("duration", res.Duration))
	return res, nil
}

func (e *Engine) saveResult(res *SyncResult) {
	e.mu.Lock()
	e.last[res.Provider] = res
	e.mu.Unlock()
}

// reconcile runs the diff-and-merge cycle inside one transaction. Order is
// fixed: the deactivation pass runs before the upsert pass so a connection id
// cannot be deleted and re-created within the same pass.
func (e *Engine) reconcile(tx inventory.Tx, provider string, fetched []NormalizedProxy, res *SyncResult, log *zap.Logger) error {
	users := inventory.NewUserResolver(tx, log)
	hosts := inventory.NewHostRegistry(tx)
	history := inventory.NewHistoryRecorder(tx)

	locals, err := tx.ProxiesByProvider(provider)
	if err != nil {
		return fmt.Errorf("load local proxies: %w", err)
	}

	localByID := make(map[string]*inventory.Proxy, len(locals))
	for i := range locals {
		localByID[locals[i].ID] = &locals[i]
	}
	upstream := make(map[string]struct{}, len(fetched))
	upstreamConns := make(map[string]struct{})
	for i := range fetched {
		upstream[fetched[i].ID] = struct{}{}
		for j := range fetched[i].Connections {
			upstreamConns[fetched[i].Connections[j].ID] = struct{}{}
		}
	}

	// Pass 1: deactivate proxies the provider stopped reporting.
	for id, lp := range localByID {
		if !lp.Active {
			continue
		}
		if _, ok := upstream[id]; ok {
			continue
		}
		lp.Active = false
		if err := tx.SaveProxy(lp); err != nil {
			return fmt.Errorf("deactivate proxy %s: %w", id, err)
		}
		log.Info("proxy no longer reported, deactivated", zap.String("proxy_id", id))

		conns, err := tx.ConnectionsByProxy(id)
		if err != nil {
			return fmt.Errorf("load connections of proxy %s: %w", id, err)
		}
		for i := range conns {
			c := &conns[i]
			if c.Deleted {
				continue
			}
			if _, ok := upstreamConns[c.ID]; ok {
				// The id is still reported, under another proxy; pass 2
				// migrates it instead.
				continue
			}
			c.Deleted = true
			if err := tx.SaveConnection(c); err != nil {
				return fmt.Errorf("soft-delete connection %s: %w", c.ID, err)
			}
			if err := history.AssignmentChanged(c.ID, c.UserID, nil, inventory.AssignmentUnassigned); err != nil {
				return fmt.Errorf("record unassignment of %s: %w", c.ID, err)
			}
			res.Deactivated++
		}
	}

	// Pass 2: upsert fetched proxies and their connections.
	for i := range fetched {
		np := &fetched[i]
		lp := localByID[np.ID]
		if lp == nil {
			lp = newLocalProxy(provider, np)
			if err := tx.CreateProxy(lp); err != nil {
				return fmt.Errorf("insert proxy %s: %w", np.ID, err)
			}
			res.Created++
			log.Info("new proxy sighted", zap.String("proxy_id", np.ID), zap.String("name", np.Name))
		} else {
			changes := proxyChanges(lp, np)
			if len(changes) > 0 {
				for _, ch := range changes {
					if err := history.FieldChanged(inventory.EntityProxy, lp.ID, ch.Field, ch.Old, ch.New, nil); err != nil {
						return fmt.Errorf("record proxy change %s.%s: %w", lp.ID, ch.Field, err)
					}
					ch.Apply()
				}
				if err := tx.SaveProxy(lp); err != nil {
					return fmt.Errorf("update proxy %s: %w", lp.ID, err)
				}
				res.Updated++
			}
		}

		if err := e.syncConnections(tx, np, upstreamConns, users, hosts, history, res, log); err != nil {
			return err
		}
	}

	return nil
}

func newLocalProxy(provider string, np *NormalizedProxy) *inventory.Proxy {
	p := &inventory.Proxy{
		ID:              np.ID,
		Provider:        provider,
		Name:            np.Name,
		TariffPlan:      np.TariffPlan,
		TariffExpiresAt: np.TariffExpiresAt,
		DeviceModel:     np.DeviceModel,
		Active:          np.Active,
	}
	if !np.LeaseExpiresAt.IsZero() {
		lease := np.LeaseExpiresAt
		p.LeaseExpiresAt = &lease
	}
	return p
}

func (e *Engine) syncConnections(tx inventory.Tx, np *NormalizedProxy, upstreamConns map[string]struct{}, users *inventory.UserResolver, hosts *inventory.HostRegistry, history *inventory.HistoryRecorder, res *SyncResult, log *zap.Logger) error {
	localConns, err := tx.ConnectionsByProxy(np.ID)
	if err != nil {
		return fmt.Errorf("load connections of proxy %s: %w", np.ID, err)
	}
	localByID := make(map[string]*inventory.Connection, len(localConns))
	for i := range localConns {
		localByID[localConns[i].ID] = &localConns[i]
	}

	for i := range np.Connections {
		nc := &np.Connections[i]

		var userID *int64
		ownerUnresolved := false
		owner, err := users.Resolve(nc.OwnerTag)
		if err != nil {
			// Skip the owner assignment for this pass rather than aborting.
			ownerUnresolved = true
			log.Warn("owner resolution failed, skipping owner assignment",
				zap.String("connection_id", nc.ID),
				zap.String("owner_tag", nc.OwnerTag),
				zap.Error(err))
		} else if owner != nil {
			userID = &owner.ID
		}

		var hostID *int64
		if nc.IP != "" {
			host, err := hosts.Resolve(nc.IP)
			if err != nil {
				return err
			}
			hostID = &host.ID
		}

		existing := localByID[nc.ID]
		if existing == nil {
			// The id may exist under another proxy of the same provider;
			// the global lookup keeps the primary key honest.
			existing, err = tx.ConnectionByID(nc.ID)
			if err != nil {
				return fmt.Errorf("lookup connection %s: %w", nc.ID, err)
			}
		}

		if existing == nil {
			c := &inventory.Connection{
				ID:             nc.ID,
				ProxyID:        np.ID,
				UserID:         userID,
				HostID:         hostID,
				Name:           nc.Name,
				Description:    nc.Description,
				Port:           nc.Port,
				Login:          nc.Login,
				Password:       nc.Password,
				ConnectionType: nc.Type,
				Active:         nc.Active,
				ExpiresAt:      e.now().Add(connectionLease),
				CreatedAt:      nc.CreatedAt,
			}
			if err := tx.CreateConnection(c); err != nil {
				return fmt.Errorf("insert connection %s: %w", nc.ID, err)
			}
			if err := history.AssignmentChanged(c.ID, nil, userID, inventory.AssignmentAssigned); err != nil {
				return fmt.Errorf("record assignment of %s: %w", c.ID, err)
			}
			res.Created++
			continue
		}

		if existing.Deleted {
			// Deleted is terminal. A provider re-issuing the slot must use a
			// fresh id.
			log.Warn("provider re-reported a deleted connection id, skipping",
				zap.String("connection_id", nc.ID))
			res.Skipped++
			continue
		}

		if ownerUnresolved {
			// A transient lookup failure must not unassign a stored owner.
			userID = existing.UserID
		}

		oldUserID := existing.UserID
		changes := connectionChanges(existing, nc, np.ID, hostID, userID)
		if len(changes) == 0 {
			continue
		}
		for _, ch := range changes {
			if err := history.FieldChanged(inventory.EntityConnection, existing.ID, ch.Field, ch.Old, ch.New, nil); err != nil {
				return fmt.Errorf("record connection change %s.%s: %w", existing.ID, ch.Field, err)
			}
			ch.Apply()
		}
		existing.UpdatedAt = e.now()
		if err := tx.SaveConnection(existing); err != nil {
			return fmt.Errorf("update connection %s: %w", existing.ID, err)
		}
		res.Updated++

		if !refEqual(oldUserID, userID) {
			if err := history.AssignmentChanged(existing.ID, oldUserID, userID, inventory.AssignmentReassigned); err != nil {
				return fmt.Errorf("record reassignment of %s: %w", existing.ID, err)
			}
		}
	}

	// Pass 3: soft-delete local connections absent from the fetched set. An id
	// reported under a different proxy is a move, not a removal, so the sweep
	// checks the whole fetch rather than this proxy's slice of it.
	for i := range localConns {
		lc := &localConns[i]
		if lc.Deleted {
			continue
		}
		if _, ok := upstreamConns[lc.ID]; ok {
			continue
		}
		lc.Deleted = true
		if err := tx.SaveConnection(lc); err != nil {
			return fmt.Errorf("soft-delete connection %s: %w", lc.ID, err)
		}
		if err := history.AssignmentChanged(lc.ID, lc.UserID, nil, inventory.AssignmentUnassigned); err != nil {
			return fmt.Errorf("record unassignment of %s: %w", lc.ID, err)
		}
		res.Deactivated++
	}

	return nil
}

func refEqual(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
