package iproxy

// Config holds configuration for the iproxy.online adapter.
type Config struct {
	// Enabled toggles syncing against this provider.
	Enabled bool `mapstructure:"enabled" default:"false"`
	// ApiKey is the account API key sent in the Authorization header.
	ApiKey string `mapstructure:"api_key" default:""`
	// BaseURL is the API root.
	BaseURL string `mapstructure:"base_url" default:"https://api.iproxy.online/v1"`
	// TimeoutSeconds is the per-request timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
