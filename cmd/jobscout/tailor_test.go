package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/amishk599/jobscout/internal/enrich"
	"github.com/amishk599/jobscout/internal/model"
	"github.com/amishk599/jobscout/internal/ratelimit"
	"github.com/amishk599/jobscout/internal/store"
)

const tailorCV = `Summary
Python developer with Docker and PostgreSQL experience.
Experience
- Improved deployment time by 40%`

func newTailorDeps(t *testing.T, dsn string) (*store.SQLiteStore, *enrich.Enricher) {
	t.Helper()
	limiter := ratelimit.NewLimiter(map[string]ratelimit.Budget{
		ratelimit.OpCVAnalysis:  {Points: 10, Window: time.Hour},
		ratelimit.OpCVTailoring: {Points: 10, Window: time.Hour},
	})
	tracker, err := store.NewSQLiteStore(dsn, limiter, discardLogger())
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { tracker.Close() })
	return tracker, enrich.New(nil, limiter, nil, discardLogger())
}

func TestTailorPosting_EndsTailored(t *testing.T) {
	tracker, e := newTailorDeps(t, "file:jobscout_tailor_ok?mode=memory&cache=shared")

	report, err := tailorPosting(context.Background(), tracker, e, "seek-1", "cv.txt", tailorCV,
		[]string{"python", "kubernetes"}, nil)
	if err != nil {
		t.Fatalf("tailorPosting: %v", err)
	}
	if report.Status != model.StatusTailored {
		t.Errorf("status = %q, want tailored", report.Status)
	}
	if report.MatchScore != 50 {
		t.Errorf("match score = %d, want 50", report.MatchScore)
	}
	if len(report.MissingKeywords) != 1 || report.MissingKeywords[0] != "kubernetes" {
		t.Errorf("missing = %v, want [kubernetes]", report.MissingKeywords)
	}
	if report.ATSScore <= 0 {
		t.Errorf("ats score = %d, want > 0", report.ATSScore)
	}

	if st, _ := tracker.SetStatus(context.Background(), "seek-1", model.StatusApplied); st != model.StatusApplied {
		t.Errorf("SetStatus = %q, want applied", st)
	}
}

func TestTailorPosting_FailureRestoresStatus(t *testing.T) {
	tracker, e := newTailorDeps(t, "file:jobscout_tailor_fail?mode=memory&cache=shared")

	_, err := tailorPosting(context.Background(), tracker, e, "seek-2", "cv.txt", "   ", nil, nil)
	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}

	st, err := tracker.Status(context.Background(), "seek-2")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if st != model.StatusNotApplied {
		t.Errorf("status = %q, want not_applied", st)
	}
}

func TestWriteTailorReport(t *testing.T) {
	var buf bytes.Buffer
	writeTailorReport(&buf, tailorReport{
		JobID:           "seek-1",
		Status:          model.StatusTailored,
		ATSScore:        70,
		MatchScore:      50,
		MissingKeywords: []string{"kubernetes", "terraform"},
		Suggestions:     []string{"Add a projects section"},
	})
	out := buf.String()
	for _, want := range []string{"seek-1 (tailored)", "70/100", "50%", "kubernetes, terraform", "- Add a projects section"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
