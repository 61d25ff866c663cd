package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces outbound requests per source: each key gets its own token
// bucket of size one refilled every minDelay. A nil Pacer never waits.
type Pacer struct {
	minDelay time.Duration

	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

// NewPacer returns a pacer with minDelay between requests to one source.
// A non-positive minDelay disables pacing.
func NewPacer(minDelay time.Duration) *Pacer {
	return &Pacer{minDelay: minDelay, buckets: make(map[string]*rate.Limiter)}
}

func (p *Pacer) bucket(source string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	b, ok := p.buckets[source]
	if !ok {
		b = rate.NewLimiter(rate.Every(p.minDelay), 1)
		p.buckets[source] = b
	}
	return b
}

// Wait blocks until source may be contacted again. The first request for a
// source proceeds at once. A cancelled ctx returns early and gives the slot
// back.
func (p *Pacer) Wait(ctx context.Context, source string) error {
	if p == nil || p.minDelay <= 0 {
		return nil
	}

	r := p.bucket(source).Reserve()
	delay := r.Delay()
	if delay == 0 {
		return nil
	}

	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		r.Cancel()
		return fmt.Errorf("pacing %s: %w", source, ctx.Err())
	}
}

// MinDelay returns the configured spacing.
func (p *Pacer) MinDelay() time.Duration {
	if p == nil {
		return 0
	}
	return p.minDelay
}
