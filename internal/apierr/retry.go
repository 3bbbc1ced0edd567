package apierr

import (
	"context"
	"fmt"
	"time"
)

// RetryConfig bounds RetryWithBackoff. Zero or negative fields are
// replaced: MaxRetries below 0 means a single attempt, BaseDelay at or
// below 0 becomes 1ms, MaxDelay at or below 0 becomes BaseDelay.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

func (c RetryConfig) withDefaults() RetryConfig {
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = time.Millisecond
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = c.BaseDelay
	}
	return c
}

// RetryWithBackoff runs fn up to 1+MaxRetries times, doubling the wait
// between attempts from BaseDelay up to MaxDelay. shouldRetry decides
// which errors earn another attempt; the first error it rejects is
// returned unchanged. The wait respects ctx, so a cancelled run never
// sits out a backoff delay.
func RetryWithBackoff[T any](
	ctx context.Context,
	cfg RetryConfig,
	fn func() (T, error),
	shouldRetry func(error) bool,
) (T, error) {
	cfg = cfg.withDefaults()

	var zero T
	var lastErr error

	for attempt, delay := 0, cfg.BaseDelay; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := wait(ctx, delay); err != nil {
				return zero, err
			}
			delay = min(delay*2, cfg.MaxDelay)
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		if !shouldRetry(err) {
			return zero, err
		}
		lastErr = err
	}

	return zero, fmt.Errorf("max retries (%d) exceeded: %w", cfg.MaxRetries, lastErr)
}

func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
