// Package database manages the connection to the inventory database.
//
// It supports MySQL for production deployments and SQLite for local runs and
// tests. The connection is configured with conservative pool limits and
// per-operation timeouts, and is verified with a ping before use.
//
// Duplicate-key errors are translated to gorm.ErrDuplicatedKey so callers can
// detect uniqueness races without inspecting driver-specific error codes.
package database
