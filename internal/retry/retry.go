// Package retry wraps a fallible operation with bounded, truncated
// exponential backoff.
package retry

import (
	"context"
	"time"
)

// Options configures the retry helper.
type Options struct {
	// MaxAttempts is the total number of attempts (1 means no retry).
	MaxAttempts int
	// BaseDelayMs is the base backoff delay.
	BaseDelayMs int
	// MaxDelayMs caps the backoff delay.
	MaxDelayMs int
}

// Op is the operation to retry. Any returned error is treated as retryable;
// classifying retryable vs. fatal errors is the caller's responsibility.
type Op func(ctx context.Context) (string, error)

// Do runs fn up to opts.MaxAttempts times, sleeping
// min(BaseDelayMs*2^(attempt-1), MaxDelayMs) between failed attempts. It
// returns on the first success, or the most recent error after the final
// attempt. Sleeps are plain time.Sleep and do not observe ctx cancellation;
// this is a documented limitation, not an oversight — see spec.md §5/§9.
func Do(ctx context.Context, opts Options, fn Op) (string, error) {
	maxAttempts := opts.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		out, err := fn(ctx)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if attempt < maxAttempts {
			time.Sleep(delayFor(attempt, opts.BaseDelayMs, opts.MaxDelayMs))
		}
	}
	return "", lastErr
}

// delayFor computes min(baseDelayMs*2^(attempt-1), maxDelayMs) for the delay
// following the given attempt (1-indexed).
func delayFor(attempt int, baseDelayMs, maxDelayMs int) time.Duration {
	if baseDelayMs <= 0 {
		baseDelayMs = 1
	}
	delay := baseDelayMs << uint(attempt-1)
	if maxDelayMs > 0 && delay > maxDelayMs {
		delay = maxDelayMs
	}
	return time.Duration(delay) * time.Millisecond
}
