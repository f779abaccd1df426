package scheduler

import (
	"context"
	"time"
)

// Retry runs fn up to maxAttempts times, doubling baseDelay after each
// failure, stopping early when shouldRetry(err) is false or the context is
// canceled. Matches §5's "exponential-backoff retry up to 5 attempts on
// transient transport errors or 5xx; 4xx is not retried."
func Retry(ctx context.Context, maxAttempts int, baseDelay time.Duration, shouldRetry func(error) bool, fn func(ctx context.Context) error) error {
	var lastErr error

	delay := baseDelay

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		if !shouldRetry(lastErr) || attempt == maxAttempts {
			return lastErr
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay *= 2
	}

	return lastErr
}
