package localtonet

// Config holds configuration for the localtonet.com adapter.
type Config struct {
	// Enabled toggles syncing against this provider.
	Enabled bool `mapstructure:"enabled" default:"false"`
	// ApiKey is the bearer token for the API.
	ApiKey string `mapstructure:"api_key" default:""`
	// BaseURL is the API root.
	BaseURL string `mapstructure:"base_url" default:"https://localtonet.com/api"`
	// TimeoutSeconds is the per-request timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
