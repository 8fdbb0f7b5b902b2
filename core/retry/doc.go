// Package retry provides a small bounded retry policy with a fixed delay.
//
// It exists so the provider adapters share one retry behavior instead of
// embedding ad-hoc sleep loops in their fetch code. Transient upstream
// failures (timeouts, connection resets, truncated payloads) are retried up
// to the attempt budget; errors wrapped with Permanent short-circuit the loop.
//
// # Usage
//
//	policy := retry.Policy{Attempts: 3, Delay: 2 * time.Second}
//	err := policy.Do(ctx, func() error {
//	    return client.fetchPage(ctx)
//	})
package retry
