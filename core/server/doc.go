// Package server holds configuration for the operational HTTP server.
package server
