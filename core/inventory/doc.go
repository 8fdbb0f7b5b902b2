// Package inventory owns the persisted proxy inventory and its audit trail.
//
// It defines the six entities (Proxy, Connection, Host, User, ChangeRecord,
// AssignmentChange), the Store/Tx persistence boundary, and the three
// transaction-scoped helpers the sync engine drives:
//
//   - UserResolver: owner tag -> local user, creating placeholders on first
//     sight and absorbing uniqueness races.
//   - HostRegistry: egress ip -> deduplicated host row.
//   - HistoryRecorder: append-only writer for the audit tables.
//
// Proxies and connections are keyed by provider-issued string ids and are
// never hard deleted: a proxy deactivates, a connection soft-deletes, and the
// history tables keep every field edit and ownership transition.
package inventory
