package retry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"
)

// Transport is an http.RoundTripper that retries a single HTTP call on
// network-level failure (and 502/503/504 for idempotent requests) with
// exponential backoff and jitter. It is independent of Policy/Do, which retry
// whole scrape operations.
type Transport struct {
	inner          http.RoundTripper
	maxRetries     int
	baseDelay      time.Duration
	attemptTimeout time.Duration
	logger         *slog.Logger
}

// NewTransport wraps inner with retry logic.
// maxRetries is the number of additional attempts after the first failure.
// baseDelay is the delay before the first retry, doubled on each subsequent retry.
func NewTransport(inner http.RoundTripper, maxRetries int, baseDelay time.Duration, logger *slog.Logger) *Transport {
	if inner == nil {
		inner = http.DefaultTransport
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Transport{
		inner:      inner,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		logger:     logger,
	}
}

// WithAttemptTimeout bounds each attempt, body read included. A timed-out
// attempt is a transient failure and is retried like a network error.
func (t *Transport) WithAttemptTimeout(d time.Duration) *Transport {
	t.attemptTimeout = d
	return t
}

// RoundTrip sends req, retrying transient failures.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.attempt(req)
	if !t.idempotent(req) {
		return resp, err
	}

	for attempt := 1; attempt <= t.maxRetries && shouldRetryCall(req.Context(), resp, err); attempt++ {
		delay := t.backoffDelay(attempt)
		t.logger.Debug("retrying http call",
			"url", req.URL.String(),
			"attempt", attempt,
			"max_retries", t.maxRetries,
			"delay", delay,
			"error", err,
			"status", statusOf(resp),
		)

		if resp != nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}

		select {
		case <-req.Context().Done():
			return nil, req.Context().Err()
		case <-time.After(delay):
		}

		resp, err = t.attempt(req)
	}

	return resp, err
}

// attempt runs one call under the per-attempt deadline. The deadline stays
// armed until the caller closes the body.
func (t *Transport) attempt(req *http.Request) (*http.Response, error) {
	if t.attemptTimeout <= 0 {
		return t.inner.RoundTrip(req)
	}
	ctx, cancel := context.WithTimeout(req.Context(), t.attemptTimeout)
	resp, err := t.inner.RoundTrip(req.WithContext(ctx))
	if err != nil {
		cancel()
		return nil, err
	}
	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelOnClose) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}

func (t *Transport) idempotent(req *http.Request) bool {
	switch req.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return req.Body == nil || req.Body == http.NoBody
	}
	return false
}

// backoffDelay computes the delay for a given attempt with ±30% jitter.
func (t *Transport) backoffDelay(attempt int) time.Duration {
	// Exponential: baseDelay * 2^(attempt-1)
	delay := t.baseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
	}

	jitter := float64(delay) * 0.3
	return time.Duration(float64(delay) + (rand.Float64()*2-1)*jitter)
}

func shouldRetryCall(ctx context.Context, resp *http.Response, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if err != nil {
		return !errors.Is(err, context.Canceled)
	}
	switch resp.StatusCode {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

func statusOf(resp *http.Response) int {
	if resp == nil {
		return 0
	}
	return resp.StatusCode
}
