package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"
)

func timeWait(t *testing.T, p *Pacer, ctx context.Context, source string) time.Duration {
	t.Helper()
	start := time.Now()
	if err := p.Wait(ctx, source); err != nil {
		t.Fatalf("Wait(%s): %v", source, err)
	}
	return time.Since(start)
}

func TestPacer_SpacesSameSource(t *testing.T) {
	p := NewPacer(100 * time.Millisecond)
	ctx := context.Background()

	if d := timeWait(t, p, ctx, "seek"); d > 20*time.Millisecond {
		t.Errorf("first request waited %v, want immediate", d)
	}
	if d := timeWait(t, p, ctx, "seek"); d < 80*time.Millisecond {
		t.Errorf("second request waited %v, want about 100ms", d)
	}
}

func TestPacer_SourcesAreIndependent(t *testing.T) {
	p := NewPacer(200 * time.Millisecond)
	ctx := context.Background()

	timeWait(t, p, ctx, "seek")
	if d := timeWait(t, p, ctx, "indeed"); d > 50*time.Millisecond {
		t.Errorf("indeed waited %v behind seek", d)
	}
}

func TestPacer_CancelledWait(t *testing.T) {
	p := NewPacer(5 * time.Second)
	timeWait(t, p, context.Background(), "seek")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := p.Wait(ctx, "seek")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Wait() = %v, want deadline exceeded", err)
	}
}

func TestPacer_Disabled(t *testing.T) {
	tests := []struct {
		name  string
		pacer *Pacer
	}{
		{"zero delay", NewPacer(0)},
		{"nil pacer", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := time.Now()
			for range 5 {
				if err := tt.pacer.Wait(context.Background(), "linkedin"); err != nil {
					t.Fatalf("Wait: %v", err)
				}
			}
			if d := time.Since(start); d > 50*time.Millisecond {
				t.Errorf("expected no pacing, took %v", d)
			}
			if tt.pacer.MinDelay() != 0 {
				t.Errorf("MinDelay = %v", tt.pacer.MinDelay())
			}
		})
	}
}
