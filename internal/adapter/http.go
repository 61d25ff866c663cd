package adapter

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/amishk599/jobscout/internal/model"
	"github.com/amishk599/jobscout/internal/retry"
)

// DefaultTimeout is the per-request timeout of the shared client.
const DefaultTimeout = 30 * time.Second

// HTTPOptions configures the shared client used by every board.
type HTTPOptions struct {
	Timeout        time.Duration // 0 means DefaultTimeout
	Retries        int           // client-level retries per HTTP call
	RetryBaseDelay time.Duration // first client-level backoff step
	Transport      http.RoundTripper
	Logger         *slog.Logger
}

// NewHTTPClient returns the single client shared by all boards. Timeout
// applies per attempt; network-level failures and timeouts are retried inside
// the transport, scrape-level retries happen in the boards.
func NewHTTPClient(opts HTTPOptions) *http.Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	base := opts.RetryBaseDelay
	if base <= 0 {
		base = 500 * time.Millisecond
	}
	return &http.Client{
		Timeout: overallTimeout(timeout, opts.Retries, base),
		Transport: retry.NewTransport(opts.Transport, opts.Retries, base, opts.Logger).
			WithAttemptTimeout(timeout),
	}
}

// overallTimeout is the client ceiling: every attempt at its own timeout plus
// the longest backoff schedule (base doubling, +30% jitter).
func overallTimeout(perAttempt time.Duration, retries int, base time.Duration) time.Duration {
	retries = max(retries, 0)
	backoff := time.Duration(0)
	for i := range retries {
		backoff += base << i
	}
	return perAttempt*time.Duration(retries+1) + backoff*13/10 + time.Second
}

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
}

func setBrowserHeaders(h http.Header) {
	h.Set("User-Agent", userAgents[rand.IntN(len(userAgents))])
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	h.Set("Accept-Language", "en-US,en;q=0.9")
	// Only gzip: readBody cannot decode brotli.
	h.Set("Accept-Encoding", "gzip")
	h.Set("Upgrade-Insecure-Requests", "1")
	h.Set("Sec-Fetch-Dest", "document")
	h.Set("Sec-Fetch-Mode", "navigate")
}

// fetchDocument GETs url and parses the body as HTML. Non-2xx responses are
// returned as *model.HTTPError so retry classification can inspect them.
func fetchDocument(ctx context.Context, client *http.Client, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", url, err)
	}
	setBrowserHeaders(req.Header)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("fetching %s: unexpected status %d", url, resp.StatusCode),
		}
	}

	body, err := readBody(resp)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", url, err)
	}
	return doc, nil
}

// readBody returns the response body, decoding gzip when the server sent it.
// The caller closes the returned reader; closing it does not close resp.Body.
func readBody(resp *http.Response) (io.ReadCloser, error) {
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		zr, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("creating gzip reader: %w", err)
		}
		return zr, nil
	}
	return io.NopCloser(resp.Body), nil
}

// parseRetryAfter parses the Retry-After header value into a duration.
// Supports seconds format (e.g. "120"). Returns zero if absent or unparseable.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
