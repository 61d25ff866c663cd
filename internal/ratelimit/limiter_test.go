package ratelimit

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amishk599/jobscout/internal/model"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestCheck_FailsOnPointsPlusOne(t *testing.T) {
	clock := newFakeClock()
	l := NewLimiter(map[string]Budget{OpJobSearch: {Points: 10, Window: 60 * time.Second}}, WithClock(clock.Now))

	for i := 0; i < 10; i++ {
		if err := l.Check(OpJobSearch); err != nil {
			t.Fatalf("call %d: unexpected error %v", i+1, err)
		}
		clock.Advance(time.Second)
	}

	err := l.Check(OpJobSearch)
	var rlErr *model.RateLimitError
	if !errors.As(err, &rlErr) {
		t.Fatalf("expected RateLimitError on 11th call, got %v", err)
	}
	if rlErr.RetryAfter <= 0 {
		t.Errorf("RetryAfter = %d, want positive", rlErr.RetryAfter)
	}
	// Window started at t0; now is t0+10s, so 50s remain.
	if rlErr.RetryAfter != 50 {
		t.Errorf("RetryAfter = %d, want 50", rlErr.RetryAfter)
	}
	if rlErr.Operation != OpJobSearch {
		t.Errorf("Operation = %q", rlErr.Operation)
	}
}

func TestCheck_RetryAfterFlooredMinimumOne(t *testing.T) {
	clock := newFakeClock()
	l := NewLimiter(map[string]Budget{OpCVTailoring: {Points: 1, Window: 60 * time.Second}}, WithClock(clock.Now))

	if err := l.Check(OpCVTailoring); err != nil {
		t.Fatalf("first call: %v", err)
	}
	clock.Advance(59*time.Second + 700*time.Millisecond)

	err := l.Check(OpCVTailoring)
	var rlErr *model.RateLimitError
	if !errors.As(err, &rlErr) {
		t.Fatalf("expected RateLimitError, got %v", err)
	}
	if rlErr.RetryAfter != 1 {
		t.Errorf("RetryAfter = %d, want 1", rlErr.RetryAfter)
	}
}

func TestCheck_WindowResets(t *testing.T) {
	clock := newFakeClock()
	l := NewLimiter(map[string]Budget{OpCoverLetter: {Points: 2, Window: time.Minute}}, WithClock(clock.Now))

	for i := 0; i < 2; i++ {
		if err := l.Check(OpCoverLetter); err != nil {
			t.Fatalf("call %d: %v", i+1, err)
		}
	}
	if err := l.Check(OpCoverLetter); err == nil {
		t.Fatal("expected exhaustion")
	}

	clock.Advance(time.Minute)
	if err := l.Check(OpCoverLetter); err != nil {
		t.Fatalf("expected fresh window after refill, got %v", err)
	}
	if got := l.Remaining(OpCoverLetter, ""); got != 1 {
		t.Errorf("Remaining = %d, want 1", got)
	}
}

func TestCheck_IdentifiersAndOperationsAreIndependent(t *testing.T) {
	clock := newFakeClock()
	l := NewLimiter(map[string]Budget{
		OpJobSearch:   {Points: 1, Window: time.Minute},
		OpCVTailoring: {Points: 1, Window: time.Minute},
	}, WithClock(clock.Now))

	if err := l.CheckFor(OpJobSearch, "alice"); err != nil {
		t.Fatalf("alice: %v", err)
	}
	if err := l.CheckFor(OpJobSearch, "bob"); err != nil {
		t.Fatalf("bob should have own bucket: %v", err)
	}
	if err := l.Check(OpCVTailoring); err != nil {
		t.Fatalf("cvTailoring should not share jobSearch bucket: %v", err)
	}
	if err := l.CheckFor(OpJobSearch, "alice"); err == nil {
		t.Fatal("expected alice to be exhausted")
	}
}

func TestCheck_UnknownOperationFails(t *testing.T) {
	l := NewLimiter(nil)
	err := l.Check("mystery")
	var appErr *model.AppError
	if !errors.As(err, &appErr) || appErr.Code() != "unconfigured_operation" {
		t.Fatalf("expected unconfigured_operation AppError, got %v", err)
	}
}

func TestCheck_ConcurrentCallersShareBucket(t *testing.T) {
	l := NewLimiter(map[string]Budget{OpJobSearch: {Points: 10, Window: time.Hour}})

	var ok, limited atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := l.Check(OpJobSearch); err != nil {
				limited.Add(1)
				return
			}
			ok.Add(1)
		}()
	}
	wg.Wait()

	if ok.Load() != 10 || limited.Load() != 15 {
		t.Errorf("ok=%d limited=%d, want 10/15", ok.Load(), limited.Load())
	}
}
