package retry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/amishk599/jobscout/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testPolicy(attempts int) Policy {
	return Policy{Attempts: attempts, Delay: time.Millisecond, Logger: discardLogger()}
}

func TestDo_SucceedsOnFirstAttempt(t *testing.T) {
	calls := 0
	got, err := Do(context.Background(), testPolicy(3), "test", func(_ context.Context, _ int) (string, error) {
		calls++
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" {
		t.Fatalf("got %q", got)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestDo_RetriesOn5xx_SucceedsOnSecondAttempt(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), testPolicy(3), "test", func(_ context.Context, attempt int) (int, error) {
		calls++
		if attempt == 1 {
			return 0, &model.HTTPError{StatusCode: 503, Err: errors.New("service unavailable")}
		}
		return attempt, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestDo_DoesNotRetryOn4xx(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), testPolicy(3), "test", func(_ context.Context, _ int) (int, error) {
		calls++
		return 0, &model.HTTPError{StatusCode: 404, Err: errors.New("not found")}
	})
	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != 404 {
		t.Fatalf("expected HTTPError with status 404, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call (no retry), got %d", calls)
	}
}

func TestDo_GivesUpAfterAttempts(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), testPolicy(3), "test", func(_ context.Context, _ int) (int, error) {
		calls++
		return 0, errors.New("connection reset")
	})
	if err == nil {
		t.Fatal("expected error after attempts exhausted, got nil")
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestDo_AttemptCountIsPerCall(t *testing.T) {
	var seen []int
	fn := func(_ context.Context, attempt int) (int, error) {
		seen = append(seen, attempt)
		return 0, errors.New("flaky")
	}
	Do(context.Background(), testPolicy(2), "a", fn)
	Do(context.Background(), testPolicy(2), "b", fn)

	want := []int{1, 2, 1, 2}
	if len(seen) != len(want) {
		t.Fatalf("attempts = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("attempts = %v, want %v", seen, want)
		}
	}
}

func TestDo_RespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	// Cancel immediately so the retry pause is interrupted.
	cancel()

	calls := 0
	p := Policy{Attempts: 3, Delay: time.Second, Logger: discardLogger()}
	_, err := Do(ctx, p, "test", func(_ context.Context, _ int) (int, error) {
		calls++
		return 0, &model.HTTPError{StatusCode: 500}
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call before cancellation, got %d", calls)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"cancelled", context.Canceled, false},
		{"validation", &model.ValidationError{Message: "bad"}, false},
		{"429", &model.HTTPError{StatusCode: 429}, true},
		{"500", &model.HTTPError{StatusCode: 500}, true},
		{"403", &model.HTTPError{StatusCode: 403}, false},
		{"network", errors.New("dial tcp: i/o timeout"), true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsRetryable(tc.err); got != tc.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
