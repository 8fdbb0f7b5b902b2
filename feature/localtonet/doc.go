// Package localtonet adapts the localtonet.com tunnel API to the
// reconcile.Provider interface.
//
// Tunnels map to proxies; the endpoints behind each tunnel's auth token map
// to connections. The service reports no tariff, so every tunnel carries the
// "Unlimited" plan with a far-future expiry. Lease expiration comes from a
// separate per-tunnel endpoint and the owner tag is embedded in
// externalUserId after a "---" marker.
package localtonet
