// Package reconcile implements the inventory reconciliation engine.
//
// One pass pulls the authoritative device list from a provider adapter,
// diffs it against the local store, and merges it inside a single
// transaction: unreported proxies deactivate, their connections soft-delete,
// new entities insert, and every tracked field edit or ownership transition
// lands in the append-only audit trail.
//
// # Guarantees
//
//   - Idempotent: a second pass over byte-identical input writes nothing,
//     because every comparison runs against the just-committed values.
//   - Atomic per provider: a fetch failure aborts before any write; a store
//     failure mid-pass rolls the whole transaction back.
//   - Serialized per provider: concurrent triggers for the same provider
//     share one in-flight pass (singleflight); different providers run
//     independently because each pass only touches rows scoped to its
//     provider code.
//   - Provider wins: upstream values always overwrite locally cached ones,
//     and nothing is ever pushed upstream.
//
// # Architecture
//
// The engine is parameterized by the Provider interface; vendor quirks (date
// formats, response envelopes, field names) live only in the adapters under
// feature/. Field comparisons are enumerated explicitly in diff.go, one
// tracked field at a time, so the diff set is type-checked instead of
// discovered via reflection.
package reconcile
