// Package config loads application configuration from the environment.
//
// Defaults come from `default` struct tags on the partial configs, a local
// .env file is overlaid when present, and environment variables win over
// both (DATABASE_HOST maps to database.host and so on).
package config
