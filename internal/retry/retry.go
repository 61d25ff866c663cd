package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/amishk599/jobscout/internal/model"
)

// Policy is a fixed-delay retry policy for scrape-level operations.
type Policy struct {
	Attempts int           // total attempts including the first; < 1 means 1
	Delay    time.Duration // pause between attempts
	Logger   *slog.Logger
}

// Do runs fn until it succeeds, fails with a non-retryable error, or the
// policy's attempts are exhausted. The attempt counter lives in this call
// only, so concurrent callers never share retry state. fn receives the
// 1-based attempt number.
func Do[T any](ctx context.Context, p Policy, op string, fn func(ctx context.Context, attempt int) (T, error)) (T, error) {
	var zero T
	attempts := max(p.Attempts, 1)

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		v, err := fn(ctx, attempt)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if !IsRetryable(err) || attempt == attempts {
			break
		}

		if p.Logger != nil {
			p.Logger.Warn("retrying after transient error",
				"op", op,
				"attempt", attempt,
				"max_attempts", attempts,
				"delay", p.Delay,
				"error", err,
			)
		}

		select {
		case <-ctx.Done():
			return zero, fmt.Errorf("%s: retry cancelled: %w", op, ctx.Err())
		case <-time.After(p.Delay):
		}
	}

	return zero, lastErr
}

// IsRetryable returns true if the error represents a transient failure worth retrying.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	// Caller cancellation: never retry. A per-request timeout surfaces as a
	// *url.Error wrapping DeadlineExceeded and stays retryable.
	if errors.Is(err, context.Canceled) {
		return false
	}

	var vErr *model.ValidationError
	if errors.As(err, &vErr) {
		return false
	}

	// Throttling and server faults are retried, other statuses are not.
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusTooManyRequests || httpErr.StatusCode >= 500
	}

	// Network, DNS, timeout and parse failures.
	return true
}
