// Package retry provides the bounded exponential backoff used around order
// persistence calls.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Config configures retry behavior.
type Config struct {
	MaxAttempts int
	// BaseDelay is the first sleep; each further attempt doubles it, so
	// attempt n sleeps BaseDelay * 2^(n-1) before the next try.
	BaseDelay time.Duration
}

// DefaultConfig matches the checkout persistence policy: 3 attempts with
// delays of 2s then 4s.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		BaseDelay:   2 * time.Second,
	}
}

func backoffDelay(base time.Duration, attempt int) time.Duration {
	return base * time.Duration(1<<uint(attempt-1))
}

// Do executes fn until it succeeds, attempts are exhausted, or the context is
// cancelled. The last error is wrapped with the attempt count.
func Do(ctx context.Context, cfg Config, fn func() error) error {
	if cfg.MaxAttempts <= 0 {
		cfg = DefaultConfig()
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
		}

		if attempt == cfg.MaxAttempts {
			break
		}

		timer := time.NewTimer(backoffDelay(cfg.BaseDelay, attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return fmt.Errorf("max retry attempts (%d) exceeded: %w", cfg.MaxAttempts, lastErr)
}
