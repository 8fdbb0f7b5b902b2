package reconcile

// Config holds configuration for the sync scheduling glue.
type Config struct {
	// IntervalMinutes is the pause between scheduled passes.
	IntervalMinutes int `mapstructure:"interval_minutes" default:"60"`
	// RetryAttempts bounds the fetch retry loop in the provider adapters.
	RetryAttempts int `mapstructure:"retry_attempts" default:"3"`
	// RetryDelaySeconds is the fixed pause between fetch attempts.
	RetryDelaySeconds int `mapstructure:"retry_delay_seconds" default:"2"`
}
