package ratelimit

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/amishk599/jobscout/internal/model"
)

// Operation names with a configured budget.
const (
	OpJobSearch   = "jobSearch"
	OpCVAnalysis  = "cvAnalysis"
	OpCVTailoring = "cvTailoring"
	OpCoverLetter = "coverLetter"
)

// DefaultIdentifier models one shared quota per operation.
const DefaultIdentifier = "default"

// Budget is the number of points an operation may spend per window.
type Budget struct {
	Points int
	Window time.Duration
}

// bucket is a fixed window that starts on its first consumption.
type bucket struct {
	windowStart time.Time
	used        int
}

// Limiter enforces per-operation point budgets. One bucket exists per
// (operation, identifier) pair; buckets are never shared across operations.
type Limiter struct {
	mu      sync.Mutex
	budgets map[string]Budget
	buckets map[string]*bucket
	now     func() time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// NewLimiter creates a limiter for the given operation budgets.
func NewLimiter(budgets map[string]Budget, opts ...Option) *Limiter {
	l := &Limiter{
		budgets: make(map[string]Budget, len(budgets)),
		buckets: make(map[string]*bucket),
		now:     time.Now,
	}
	for op, b := range budgets {
		l.budgets[op] = b
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Check consumes one point from the operation's shared (default) bucket.
func (l *Limiter) Check(operation string) error {
	return l.CheckFor(operation, DefaultIdentifier)
}

// CheckFor consumes one point from the (operation, identifier) bucket. When the
// bucket is exhausted it returns a *model.RateLimitError carrying the seconds
// until the window resets.
func (l *Limiter) CheckFor(operation, identifier string) error {
	budget, ok := l.budgets[operation]
	if !ok || budget.Points <= 0 || budget.Window <= 0 {
		return &model.AppError{
			ErrCode: "unconfigured_operation",
			Message: fmt.Sprintf("no rate limit configured for operation %q", operation),
		}
	}
	if identifier == "" {
		identifier = DefaultIdentifier
	}
	key := operation + ":" + identifier

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok || !now.Before(b.windowStart.Add(budget.Window)) {
		b = &bucket{windowStart: now}
		l.buckets[key] = b
	}

	if b.used >= budget.Points {
		return &model.RateLimitError{
			Operation:  operation,
			RetryAfter: retryAfterSeconds(b.windowStart.Add(budget.Window).Sub(now)),
		}
	}
	b.used++
	return nil
}

// Remaining returns the points left in the current window.
func (l *Limiter) Remaining(operation, identifier string) int {
	budget, ok := l.budgets[operation]
	if !ok {
		return 0
	}
	if identifier == "" {
		identifier = DefaultIdentifier
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[operation+":"+identifier]
	if !ok || !l.now().Before(b.windowStart.Add(budget.Window)) {
		return budget.Points
	}
	return max(budget.Points-b.used, 0)
}

// Reset drops all buckets.
func (l *Limiter) Reset() {
	l.mu.Lock()
	l.buckets = make(map[string]*bucket)
	l.mu.Unlock()
}

func retryAfterSeconds(d time.Duration) int {
	secs := int(math.Floor(d.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}
