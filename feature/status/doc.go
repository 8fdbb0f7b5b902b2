// Package status exposes the operational HTTP API.
//
// It serves health checks, the last sync result per provider, manual sync
// triggers, and the per-connection audit trail. The API is internal tooling:
// it renders nothing user-facing and is protected by the API key middleware.
package status
