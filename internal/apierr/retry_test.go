package apierr_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"viddigest/internal/apierr"
)

// Coverage Notes:
// - RetryWithBackoff driven by IsRetryable, the predicate the
//   transcription client uses: transient sentinels earn more attempts,
//   ErrBadRequest stops on the first.
// - Attempt budget, last-error wrapping after exhaustion, zero-value
//   config normalization, and cancellation during a backoff wait.
// - Backoff timing itself is not asserted, only attempt counts.

// fastRetry keeps test waits negligible.
var fastRetry = apierr.RetryConfig{
	MaxRetries: 3,
	BaseDelay:  time.Millisecond,
	MaxDelay:   time.Millisecond,
}

// failNTimes returns a call that fails with err n times, then succeeds.
func failNTimes(n int, err error) (*int, func() (string, error)) {
	calls := new(int)
	return calls, func() (string, error) {
		*calls++
		if *calls <= n {
			return "", err
		}
		return "transcript text", nil
	}
}

func TestRetryAttemptCounts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		failures  int
		err       error
		wantCalls int
		wantErr   error
	}{
		{"first attempt succeeds", 0, nil, 1, nil},
		{"rate limit retried until success", 2, fmt.Errorf("429: %w", apierr.ErrRateLimit), 3, nil},
		{"timeout retried until success", 1, fmt.Errorf("504: %w", apierr.ErrTimeout), 2, nil},
		{"bad request stops immediately", 3, fmt.Errorf("400: %w", apierr.ErrBadRequest), 1, apierr.ErrBadRequest},
		{"quota failure stops immediately", 3, fmt.Errorf("429: %w", apierr.ErrQuotaExceeded), 1, apierr.ErrQuotaExceeded},
		{"budget exhausted keeps last error", 10, fmt.Errorf("429: %w", apierr.ErrRateLimit), 4, apierr.ErrRateLimit},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			calls, fn := failNTimes(tt.failures, tt.err)
			result, err := apierr.RetryWithBackoff(context.Background(), fastRetry, fn, apierr.IsRetryable)

			if *calls != tt.wantCalls {
				t.Errorf("call count = %d, want %d", *calls, tt.wantCalls)
			}
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("RetryWithBackoff() error = %v", err)
				}
				if result != "transcript text" {
					t.Errorf("result = %q", result)
				}
			} else if !errors.Is(err, tt.wantErr) {
				t.Errorf("RetryWithBackoff() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRetryZeroConfigMeansSingleAttempt(t *testing.T) {
	t.Parallel()

	calls, fn := failNTimes(10, fmt.Errorf("429: %w", apierr.ErrRateLimit))
	_, err := apierr.RetryWithBackoff(context.Background(), apierr.RetryConfig{}, fn, apierr.IsRetryable)

	if !errors.Is(err, apierr.ErrRateLimit) {
		t.Errorf("RetryWithBackoff() error = %v, want ErrRateLimit", err)
	}
	if *calls != 1 {
		t.Errorf("call count = %d, want 1", *calls)
	}
}

func TestRetryCancelledContextStopsBeforeBackoff(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := apierr.RetryConfig{MaxRetries: 5, BaseDelay: time.Hour, MaxDelay: time.Hour}
	calls, fn := failNTimes(10, fmt.Errorf("429: %w", apierr.ErrRateLimit))

	_, err := apierr.RetryWithBackoff(ctx, cfg, fn, apierr.IsRetryable)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("RetryWithBackoff() error = %v, want context.Canceled", err)
	}
	// The first attempt runs; the cancelled context is seen before the
	// backoff wait for the second.
	if *calls != 1 {
		t.Errorf("call count = %d, want 1", *calls)
	}
}
