package adapter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"github.com/amishk599/jobscout/internal/keywords"
	"github.com/amishk599/jobscout/internal/model"
	"github.com/amishk599/jobscout/internal/ratelimit"
	"github.com/amishk599/jobscout/internal/retry"
)

// Defaults for BoardOptions.
const (
	DefaultMaxListings    = 10
	DefaultMaxDescription = 5000
)

var (
	errMissingTitle   = errors.New("listing has no title")
	errMissingCompany = errors.New("listing has no company")
)

// site is the source-specific part of a board: where to search and how to
// read its markup.
type site interface {
	source() model.Source
	searchURL(q model.Query) string
	cardSelector() string
	parseCard(card *goquery.Selection) (listing, error)
	detailSelector() string
}

// listing is one card as read from a search page. job.URL is the detail page.
type listing struct {
	job    model.Job
	id     string // raw site id, unprefixed
	posted string // date text as shown by the site
}

// BoardOptions bounds and paces a board.
type BoardOptions struct {
	MaxListings    int          // cap on listings per search
	MaxDescription int          // rune cap on detail text
	Retry          retry.Policy // scrape-level retry for search and detail pages
	Pacer          *ratelimit.Pacer
	Logger         *slog.Logger
	Now            func() time.Time
}

// Board scrapes one listing site. It implements model.JobFetcher.
type Board struct {
	site   site
	client *http.Client
	opts   BoardOptions
	logger *slog.Logger
}

func newBoard(s site, client *http.Client, opts BoardOptions) *Board {
	if opts.MaxListings <= 0 {
		opts.MaxListings = DefaultMaxListings
	}
	if opts.MaxDescription <= 0 {
		opts.MaxDescription = DefaultMaxDescription
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Retry.Logger == nil {
		opts.Retry.Logger = logger
	}
	if client == nil {
		client = NewHTTPClient(HTTPOptions{Logger: logger})
	}
	return &Board{
		site:   s,
		client: client,
		opts:   opts,
		logger: logger.With("source", string(s.source())),
	}
}

// Source implements model.JobFetcher.
func (b *Board) Source() model.Source {
	return b.site.source()
}

// FetchJobs searches the site, parses up to MaxListings cards and then fills
// each listing's description from its detail page, one at a time. A search
// page that cannot be fetched after all retries yields a *model.ScrapingError.
func (b *Board) FetchJobs(ctx context.Context, q model.Query) ([]model.Job, error) {
	src := string(b.site.source())
	searchURL := b.site.searchURL(q)

	doc, err := retry.Do(ctx, b.opts.Retry, src+" search", func(ctx context.Context, _ int) (*goquery.Document, error) {
		if err := b.opts.Pacer.Wait(ctx, src); err != nil {
			return nil, err
		}
		return fetchDocument(ctx, b.client, searchURL)
	})
	if err != nil {
		return nil, &model.ScrapingError{Source: src, Err: err}
	}

	jobs := b.parseListings(doc)
	b.logger.Debug("parsed listings", "count", len(jobs), "url", searchURL)

	for i := range jobs {
		if ctx.Err() != nil {
			break
		}
		b.fillDetail(ctx, &jobs[i])
	}
	return jobs, nil
}

func (b *Board) parseListings(doc *goquery.Document) []model.Job {
	var jobs []model.Job
	doc.Find(b.site.cardSelector()).EachWithBreak(func(i int, card *goquery.Selection) bool {
		job, err := b.parseCard(card)
		if err != nil {
			b.logger.Debug("skipping malformed listing", "index", i, "error", err)
			return true
		}
		jobs = append(jobs, job)
		return len(jobs) < b.opts.MaxListings
	})
	return jobs
}

// parseCard applies listing defaults around the site parser. A panic while
// reading one card only drops that card.
func (b *Board) parseCard(card *goquery.Selection) (job model.Job, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic parsing listing: %v", r)
		}
	}()

	l, err := b.site.parseCard(card)
	if err != nil {
		return model.Job{}, err
	}
	job = l.job
	if job.Title == "" {
		return model.Job{}, errMissingTitle
	}
	if job.Company == "" {
		return model.Job{}, errMissingCompany
	}

	src := b.site.source()
	id := l.id
	if id == "" {
		id = uuid.NewString()
	}
	job.ID = string(src) + "-" + id
	job.Source = src
	if job.Salary == "" {
		job.Salary = model.SalaryNotSpecified
	}
	job.DatePosted = parsePostedDate(l.posted, b.opts.Now())
	job.Status = model.StatusNotApplied
	return job, nil
}

// fillDetail fetches the listing's detail page. On failure the listing is
// kept without description or requirements.
func (b *Board) fillDetail(ctx context.Context, job *model.Job) {
	if job.URL == "" {
		return
	}
	src := string(b.site.source())

	text, err := retry.Do(ctx, b.opts.Retry, src+" detail", func(ctx context.Context, _ int) (string, error) {
		if err := b.opts.Pacer.Wait(ctx, src); err != nil {
			return "", err
		}
		doc, err := fetchDocument(ctx, b.client, job.URL)
		if err != nil {
			return "", err
		}
		html, err := doc.Find(b.site.detailSelector()).First().Html()
		if err != nil {
			return "", fmt.Errorf("reading detail for %s: %w", job.ID, err)
		}
		return extractText(html), nil
	})
	if err != nil {
		b.logger.Warn("detail fetch failed, keeping listing",
			"listing_id", job.ID,
			"error", err,
		)
		return
	}

	job.Description = truncate(text, b.opts.MaxDescription)
	job.Requirements = keywords.Requirements(job.Description)
}
