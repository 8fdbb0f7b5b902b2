// Package archive persists raw inventory snapshots to object storage.
//
// Each successful provider fetch produces one JSON object under
// snapshots/<provider>/<timestamp>.json. Archiving is best effort: a failed
// upload is logged and never fails the reconciliation pass.
package archive
