package reconcile

import "time"

// SyncResult summarizes one reconciliation pass for one provider.
type SyncResult struct {
	// Provider is the short provider code this pass ran against.
	Provider string `json:"provider"`

	// RunID uniquely identifies this pass across restarts.
	RunID string `json:"run_id"`

	// StartedAt is when the pass began.
	StartedAt time.Time `json:"started_at"`

	// Duration is the wall time of the pass, fetch included.
	Duration time.Duration `json:"duration"`

	// Created counts inserted proxies and connections.
	Created int `json:"created"`

	// Updated counts proxies and connections with at least one field change.
	Updated int `json:"updated"`

	// Deactivated counts soft-deleted connections.
	Deactivated int `json:"deactivated"`

	// Skipped counts records ignored during the pass, e.g. a provider
	// re-issuing an id that is terminally deleted locally.
	Skipped int `json:"skipped"`

	// Err is the failure description for a failed run, empty on success.
	Err string `json:"error,omitempty"`
}
