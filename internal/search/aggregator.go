// Package search fans a query out to every source, merges the results and
// serves cached, enriched result sets.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/amishk599/jobscout/internal/model"
)

// DefaultMaxConcurrent bounds the number of sources fetched at once.
const DefaultMaxConcurrent = 5

// Outcome is the settled result of one source in a Collect call.
type Outcome struct {
	Source   model.Source
	Jobs     int
	Err      error
	Duration time.Duration
}

// Aggregator fetches from all configured sources concurrently and keeps the
// outcome of every source, whether it failed or not.
type Aggregator struct {
	fetchers      []model.JobFetcher
	maxConcurrent int
	logger        *slog.Logger
}

// NewAggregator returns an aggregator over fetchers, in priority order: on a
// duplicate the earlier fetcher's posting wins.
func NewAggregator(fetchers []model.JobFetcher, maxConcurrent int, logger *slog.Logger) *Aggregator {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	return &Aggregator{
		fetchers:      fetchers,
		maxConcurrent: maxConcurrent,
		logger:        logger,
	}
}

// Sources lists the configured sources in priority order.
func (a *Aggregator) Sources() []model.Source {
	out := make([]model.Source, len(a.fetchers))
	for i, f := range a.fetchers {
		out[i] = f.Source()
	}
	return out
}

// Collect runs q against every source and waits for all of them. Failed
// sources contribute nothing. The error is non-nil only when every source
// failed (a *model.ScrapingError for source "all") or none is configured.
func (a *Aggregator) Collect(ctx context.Context, q model.Query) ([]model.Job, []Outcome, error) {
	if len(a.fetchers) == 0 {
		return nil, nil, &model.AppError{ErrCode: "no_sources", Message: "no job sources configured"}
	}

	results := make([][]model.Job, len(a.fetchers))
	outcomes := make([]Outcome, len(a.fetchers))

	// Tasks never return an error so one failing source cannot cancel the rest.
	var g errgroup.Group
	g.SetLimit(a.maxConcurrent)
	for i, f := range a.fetchers {
		g.Go(func() error {
			start := time.Now()
			jobs, err := f.FetchJobs(ctx, q)
			results[i] = jobs
			outcomes[i] = Outcome{Source: f.Source(), Jobs: len(jobs), Err: err, Duration: time.Since(start)}
			return nil
		})
	}
	g.Wait()

	var (
		all  []model.Job
		errs []error
	)
	for i, o := range outcomes {
		if o.Err != nil {
			a.logger.Warn("source failed",
				"source", string(o.Source),
				"duration", o.Duration,
				"error", o.Err,
			)
			errs = append(errs, fmt.Errorf("%s: %w", o.Source, o.Err))
			continue
		}
		a.logger.Debug("source fetched",
			"source", string(o.Source),
			"jobs", o.Jobs,
			"duration", o.Duration,
		)
		all = append(all, results[i]...)
	}

	if len(errs) == len(a.fetchers) {
		return nil, outcomes, &model.ScrapingError{Source: "all", Err: errors.Join(errs...)}
	}

	merged := Dedup(all)
	a.logger.Info("search aggregated",
		"sources", len(a.fetchers),
		"failed", len(errs),
		"fetched", len(all),
		"unique", len(merged),
	)
	return merged, outcomes, nil
}

// Dedup drops postings whose title and company (case-insensitive) or ID was
// already seen. The first occurrence wins.
func Dedup(jobs []model.Job) []model.Job {
	seenKey := make(map[string]bool, len(jobs))
	seenID := make(map[string]bool, len(jobs))
	out := make([]model.Job, 0, len(jobs))
	for _, j := range jobs {
		key := j.DedupKey()
		if seenKey[key] || (j.ID != "" && seenID[j.ID]) {
			continue
		}
		seenKey[key] = true
		if j.ID != "" {
			seenID[j.ID] = true
		}
		out = append(out, j)
	}
	return out
}
