package reconcile

import (
	"context"
	"time"
)

// Provider is the interface each upstream proxy vendor adapter implements.
// Adapters normalize vendor-specific encodings (date formats, field names,
// response envelopes) so the engine never sees provider quirks.
type Provider interface {
	// Name returns the short provider code embedded in proxy rows (e.g.
	// "ipr", "ltn"). It also keys the per-provider run lock.
	Name() string

	// FetchInventory returns the authoritative list of leased devices with
	// their connections. A returned error means the whole fetch failed and
	// the engine must leave local state untouched. Individual malformed
	// records are the adapter's problem: it substitutes documented defaults
	// and keeps going.
	FetchInventory(ctx context.Context) ([]NormalizedProxy, error)
}

// NormalizedProxy is one leasable device slot in the common in-memory model.
type NormalizedProxy struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	OwnerTag        string    `json:"owner_tag"`
	TariffPlan      string    `json:"tariff_plan"`
	TariffExpiresAt time.Time `json:"tariff_expires_at"`
	LeaseExpiresAt  time.Time `json:"lease_expires_at"`
	DeviceModel     string    `json:"device_model"`
	Active          bool      `json:"active"`

	Connections []NormalizedConnection `json:"connections"`
}

// NormalizedConnection is one network egress endpoint under a proxy.
type NormalizedConnection struct {
	ID          string    `json:"id"`
	OwnerTag    string    `json:"owner_tag"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IP          string    `json:"ip"`
	Port        int       `json:"port"`
	Login       string    `json:"login"`
	Password    string    `json:"password"`
	Type        string    `json:"type"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Archiver persists a raw inventory snapshot per successful fetch. Snapshot
// failures are logged by the engine but never fail a run.
type Archiver interface {
	Snapshot(ctx context.Context, provider string, inventory []NormalizedProxy) error
}
