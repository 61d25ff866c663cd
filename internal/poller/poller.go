package poller

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/amishk599/jobscout/internal/model"
)

// Searcher runs one enriched, aggregated search.
type Searcher interface {
	SearchJobs(ctx context.Context, keywords []string, location string) ([]model.Job, error)
}

// SearchPoller owns the watch pipeline for one saved query:
// search → filter → dedup → notify → mark seen.
type SearchPoller struct {
	Name     string
	searcher Searcher
	query    model.Query
	filter   model.JobFilter
	store    model.JobStore
	notifier model.Notifier
	logger   *slog.Logger
}

// NewSearchPoller creates a poller wired with all its dependencies. Name
// defaults to the query's terms.
func NewSearchPoller(
	name string,
	searcher Searcher,
	query model.Query,
	filter model.JobFilter,
	store model.JobStore,
	notifier model.Notifier,
	logger *slog.Logger,
) *SearchPoller {
	if strings.TrimSpace(name) == "" {
		name = query.Terms()
	}
	return &SearchPoller{
		Name:     name,
		searcher: searcher,
		query:    query,
		filter:   filter,
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

// Poll runs one cycle. Postings are marked seen only after a successful
// notification, so a failed notify is retried on the next cycle.
func (p *SearchPoller) Poll(ctx context.Context) error {
	jobs, err := p.searcher.SearchJobs(ctx, p.query.Keywords, p.query.Location)
	if err != nil {
		return fmt.Errorf("polling %s: %w", p.Name, err)
	}

	matched, fresh, err := p.selectNew(jobs)
	if err != nil {
		return fmt.Errorf("polling %s: %w", p.Name, err)
	}

	if len(fresh) > 0 {
		if err := p.notifier.Notify(fresh); err != nil {
			return fmt.Errorf("polling %s: notifying: %w", p.Name, err)
		}
		for _, job := range fresh {
			if err := p.store.MarkSeen(job.ID); err != nil {
				return fmt.Errorf("polling %s: marking %s seen: %w", p.Name, job.ID, err)
			}
		}
	}

	p.logger.Info("polled search",
		"query", p.Name,
		"fetched", len(jobs),
		"matched", matched,
		"new", len(fresh),
	)
	return nil
}

// selectNew keeps postings that pass the filter and have not been reported.
// A posting listed twice in one result is reported once.
func (p *SearchPoller) selectNew(jobs []model.Job) (int, []model.Job, error) {
	var (
		matched int
		fresh   []model.Job
		batch   = make(map[string]struct{}, len(jobs))
	)
	for _, job := range jobs {
		if !p.filter.Match(job) {
			continue
		}
		matched++
		if _, dup := batch[job.ID]; dup {
			continue
		}
		batch[job.ID] = struct{}{}

		seen, err := p.store.HasSeen(job.ID)
		if err != nil {
			return 0, nil, fmt.Errorf("checking seen status of %s: %w", job.ID, err)
		}
		if !seen {
			fresh = append(fresh, job)
		}
	}
	return matched, fresh, nil
}

// Label names the poller in logs.
func (p *SearchPoller) Label() string { return p.Name }
