package adapter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amishk599/jobscout/internal/model"
	"github.com/amishk599/jobscout/internal/retry"
)

var testNow = time.Date(2026, 1, 10, 15, 0, 0, 0, time.UTC)

func newTestOptions(attempts int) BoardOptions {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return BoardOptions{
		Retry:  retry.Policy{Attempts: attempts, Delay: time.Millisecond, Logger: logger},
		Logger: logger,
		Now:    func() time.Time { return testNow },
	}
}

func newTestClient(timeout time.Duration) *http.Client {
	return NewHTTPClient(HTTPOptions{Timeout: timeout, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
}

const seekSearchPage = `<html><body>
<article data-card-type="JobCard" data-job-id="111">
  <a data-automation="jobTitle" href="/job/111">Senior Go Engineer</a>
  <a data-automation="jobCompany">Acme</a>
  <a data-automation="jobLocation">Sydney NSW</a>
  <span data-automation="jobSalary">$150k - $170k</span>
  <span data-automation="jobListingDate">3d ago</span>
</article>
<article data-card-type="JobCard" data-job-id="222">
  <a data-automation="jobTitle" href="/job/222">Listing Without Company</a>
</article>
<article data-card-type="JobCard">
  <a data-automation="jobTitle" href="/job/333">Platform Engineer</a>
  <a data-automation="jobCompany">Globex</a>
</article>
</body></html>`

const seekDetailPage = `<html><body>
<div data-automation="jobAdDetails"><p>You bring 5+ years of experience with Golang.</p><ul><li>Kubernetes &amp; friends</li></ul></div>
</body></html>`

func TestSeekBoard_FetchJobs(t *testing.T) {
	var detailFailures atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/jobs":
			if got := r.URL.Query().Get("keywords"); got != "golang kubernetes" {
				t.Errorf("keywords = %q", got)
			}
			if got := r.URL.Query().Get("where"); got != "Sydney" {
				t.Errorf("where = %q", got)
			}
			w.Write([]byte(seekSearchPage))
		case "/job/111":
			w.Write([]byte(seekDetailPage))
		case "/job/333":
			detailFailures.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		default:
			t.Errorf("unexpected request %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	board := NewSeekBoard(srv.URL, newTestClient(time.Second), newTestOptions(2))
	if board.Source() != model.SourceSeek {
		t.Fatalf("source = %s", board.Source())
	}

	jobs, err := board.FetchJobs(context.Background(), model.Query{Keywords: []string{"golang", "kubernetes"}, Location: "Sydney"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs (malformed card skipped), got %d", len(jobs))
	}

	j := jobs[0]
	if j.ID != "seek-111" {
		t.Errorf("ID = %s, want seek-111", j.ID)
	}
	if j.Title != "Senior Go Engineer" || j.Company != "Acme" || j.Location != "Sydney NSW" {
		t.Errorf("unexpected listing fields: %+v", j)
	}
	if j.Salary != "$150k - $170k" {
		t.Errorf("Salary = %q", j.Salary)
	}
	if want := time.Date(2026, 1, 7, 0, 0, 0, 0, time.UTC); !j.DatePosted.Equal(want) {
		t.Errorf("DatePosted = %v, want %v", j.DatePosted, want)
	}
	if j.URL != srv.URL+"/job/111" {
		t.Errorf("URL = %s", j.URL)
	}
	if j.Source != model.SourceSeek || j.Status != model.StatusNotApplied {
		t.Errorf("source/status = %s/%s", j.Source, j.Status)
	}
	if j.Description != "You bring 5+ years of experience with Golang. Kubernetes & friends" {
		t.Errorf("Description = %q", j.Description)
	}
	wantReqs := []string{"Golang", "Kubernetes", "5+ years of experience"}
	if fmt.Sprint(j.Requirements) != fmt.Sprint(wantReqs) {
		t.Errorf("Requirements = %v, want %v", j.Requirements, wantReqs)
	}

	// Second listing: no id, no salary, no date, detail page failing.
	k := jobs[1]
	if !strings.HasPrefix(k.ID, "seek-") || len(k.ID) <= len("seek-") {
		t.Errorf("expected generated seek- ID, got %q", k.ID)
	}
	if k.Salary != model.SalaryNotSpecified {
		t.Errorf("Salary = %q, want %q", k.Salary, model.SalaryNotSpecified)
	}
	if want := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC); !k.DatePosted.Equal(want) {
		t.Errorf("DatePosted = %v, want today %v", k.DatePosted, want)
	}
	if k.Description != "" || len(k.Requirements) != 0 {
		t.Errorf("failed detail should leave description empty, got %q %v", k.Description, k.Requirements)
	}
	if detailFailures.Load() != 2 {
		t.Errorf("expected detail fetch retried to 2 attempts, got %d", detailFailures.Load())
	}
}

func TestBoard_TimeoutsYieldScrapingError(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	board := NewIndeedBoard(srv.URL, newTestClient(20*time.Millisecond), newTestOptions(3))
	_, err := board.FetchJobs(context.Background(), model.Query{Keywords: []string{"golang"}})

	var scrapeErr *model.ScrapingError
	if !errors.As(err, &scrapeErr) {
		t.Fatalf("expected *model.ScrapingError, got %T: %v", err, err)
	}
	if scrapeErr.Source != "indeed" {
		t.Errorf("Source = %q, want indeed", scrapeErr.Source)
	}
	if hits.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", hits.Load())
	}
}

func TestBoard_ClientErrorNotRetried(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	board := NewLinkedInBoard(srv.URL, newTestClient(time.Second), newTestOptions(3))
	_, err := board.FetchJobs(context.Background(), model.Query{Keywords: []string{"golang"}})

	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusForbidden {
		t.Fatalf("expected wrapped 403 HTTPError, got %v", err)
	}
	if hits.Load() != 1 {
		t.Errorf("expected 1 attempt, got %d", hits.Load())
	}
}

func TestBoard_CapsListings(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><body>")
	for i := 0; i < 15; i++ {
		fmt.Fprintf(&b, `<article data-card-type="JobCard" data-job-id="%d"><a data-automation="jobTitle">Role %d</a><a data-automation="jobCompany">Co</a></article>`, i, i)
	}
	b.WriteString("</body></html>")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(b.String()))
	}))
	defer srv.Close()

	board := NewSeekBoard(srv.URL, newTestClient(time.Second), newTestOptions(1))
	jobs, err := board.FetchJobs(context.Background(), model.Query{Keywords: []string{"x"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != DefaultMaxListings {
		t.Fatalf("expected %d jobs, got %d", DefaultMaxListings, len(jobs))
	}
	if jobs[9].ID != "seek-9" {
		t.Errorf("last ID = %s", jobs[9].ID)
	}
}

func TestIndeedBoard_ParsesCardsAndDetail(t *testing.T) {
	search := `<html><body>
<div class="job_seen_beacon">
  <h2 class="jobTitle"><a data-jk="abc123"><span title="Backend Developer">Backend Developer</span></a></h2>
  <span data-testid="company-name">Initech</span>
  <div data-testid="text-location">Melbourne VIC</div>
  <div class="salary-snippet-container">$120,000 a year</div>
  <span class="date">Posted 5 days ago</span>
</div>
</body></html>`
	detail := `<div id="jobDescriptionText">Python and AWS. Agile team.</div>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/jobs":
			if got := r.URL.Query().Get("q"); got != "python developer" {
				t.Errorf("q = %q", got)
			}
			w.Write([]byte(search))
		case "/viewjob":
			if got := r.URL.Query().Get("jk"); got != "abc123" {
				t.Errorf("jk = %q", got)
			}
			w.Write([]byte(detail))
		}
	}))
	defer srv.Close()

	board := NewIndeedBoard(srv.URL, newTestClient(time.Second), newTestOptions(1))
	jobs, err := board.FetchJobs(context.Background(), model.Query{Keywords: []string{"python", "developer"}, Location: "Melbourne"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(jobs))
	}
	j := jobs[0]
	if j.ID != "indeed-abc123" || j.Title != "Backend Developer" || j.Company != "Initech" {
		t.Errorf("unexpected job: %+v", j)
	}
	if want := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC); !j.DatePosted.Equal(want) {
		t.Errorf("DatePosted = %v, want %v", j.DatePosted, want)
	}
	if j.Description != "Python and AWS. Agile team." {
		t.Errorf("Description = %q", j.Description)
	}
	if fmt.Sprint(j.Requirements) != "[Python AWS Agile]" {
		t.Errorf("Requirements = %v", j.Requirements)
	}
}

func TestLinkedInBoard_ParsesGuestCards(t *testing.T) {
	var srvURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case linkedinSearchPath:
			fmt.Fprintf(w, `<div class="base-card" data-entity-urn="urn:li:jobPosting:987">
  <a class="base-card__full-link" href="%s/jobs/view/987"></a>
  <h3 class="base-search-card__title">Site Reliability Engineer</h3>
  <h4 class="base-search-card__subtitle">Hooli</h4>
  <span class="job-search-card__location">Brisbane</span>
  <time datetime="2026-01-02">1 week ago</time>
</div>`, srvURL)
		case "/jobs/view/987":
			w.Write([]byte(`<div class="show-more-less-html__markup">Terraform and Docker daily.</div>`))
		}
	}))
	defer srv.Close()
	srvURL = srv.URL

	board := NewLinkedInBoard(srv.URL, newTestClient(time.Second), newTestOptions(1))
	jobs, err := board.FetchJobs(context.Background(), model.Query{Keywords: []string{"sre"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(jobs))
	}
	j := jobs[0]
	if j.ID != "linkedin-987" || j.Company != "Hooli" || j.Salary != model.SalaryNotSpecified {
		t.Errorf("unexpected job: %+v", j)
	}
	if want := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC); !j.DatePosted.Equal(want) {
		t.Errorf("DatePosted = %v, want %v", j.DatePosted, want)
	}
	if fmt.Sprint(j.Requirements) != "[Terraform Docker]" {
		t.Errorf("Requirements = %v", j.Requirements)
	}
}
