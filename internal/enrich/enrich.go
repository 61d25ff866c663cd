// Package enrich scores CVs and annotates postings with keywords and match
// scores. An optional AI collaborator is consulted first; any failure falls
// back to the deterministic scorers.
package enrich

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/amishk599/jobscout/internal/ai"
	"github.com/amishk599/jobscout/internal/cache"
	"github.com/amishk599/jobscout/internal/keywords"
	"github.com/amishk599/jobscout/internal/model"
	"github.com/amishk599/jobscout/internal/ratelimit"
	"github.com/amishk599/jobscout/internal/scoring"
)

// DefaultConcurrency bounds collaborator calls made by EnrichJobs.
const DefaultConcurrency = 3

// Analyzer is the optional AI collaborator.
type Analyzer interface {
	AnalyzeCV(ctx context.Context, text string) (ai.CVInsights, error)
	ExtractJobKeywords(ctx context.Context, title, description string) ([]string, error)
}

// Limiter consumes one point of an operation budget.
type Limiter interface {
	Check(operation string) error
}

// Enricher is safe for concurrent use.
type Enricher struct {
	analyzer    Analyzer
	limiter     Limiter
	cvCache     *cache.Typed[model.CVAnalysis]
	concurrency int
	logger      *slog.Logger
}

// New creates an Enricher. A nil analyzer disables the collaborator.
func New(analyzer Analyzer, limiter Limiter, cvCache *cache.Typed[model.CVAnalysis], logger *slog.Logger) *Enricher {
	if analyzer == nil {
		analyzer = ai.NewNopAnalyzer()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Enricher{
		analyzer:    analyzer,
		limiter:     limiter,
		cvCache:     cvCache,
		concurrency: DefaultConcurrency,
		logger:      logger,
	}
}

// AnalyzeCV scores a CV. Byte-identical text within the cache TTL is served
// from the cache without recomputation.
func (e *Enricher) AnalyzeCV(ctx context.Context, fileName, text string) (model.CVAnalysis, error) {
	if strings.TrimSpace(text) == "" {
		return model.CVAnalysis{}, &model.ValidationError{Field: "text", Message: "CV text is empty"}
	}
	if e.limiter != nil {
		if err := e.limiter.Check(ratelimit.OpCVAnalysis); err != nil {
			return model.CVAnalysis{}, err
		}
	}

	key := cache.ContentHash(text)
	if e.cvCache != nil {
		if hit, ok := e.cvCache.Get(key); ok {
			e.logger.Debug("cv analysis cache hit", "file", fileName)
			hit.FileName = fileName
			return hit, nil
		}
	}

	analysis := e.analyze(ctx, fileName, text)

	if e.cvCache != nil && !e.cvCache.Set(key, analysis) {
		e.logger.Warn("caching cv analysis failed", "file", fileName)
	}
	return analysis, nil
}

func (e *Enricher) analyze(ctx context.Context, fileName, text string) model.CVAnalysis {
	insights, err := e.analyzer.AnalyzeCV(ctx, text)
	if err != nil {
		e.logger.Debug("collaborator cv analysis unavailable, using deterministic scoring", "error", err)
		return scoring.AnalyzeCV(fileName, text)
	}
	suggestions := insights.Suggestions
	if len(suggestions) == 0 {
		suggestions = scoring.Suggestions(insights.Score, text)
	}
	return model.CVAnalysis{
		FileName:    fileName,
		Content:     text,
		Keywords:    insights.Keywords,
		ATSScore:    insights.Score,
		Suggestions: suggestions,
	}
}

// EnrichJobs fills Keywords and MatchScore on every posting in place and
// returns the slice. MatchScore is 0 when cvText is blank.
func (e *Enricher) EnrichJobs(ctx context.Context, jobs []model.Job, cvText string) []model.Job {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i := range jobs {
		g.Go(func() error {
			j := &jobs[i]
			j.Keywords = e.jobKeywords(gctx, *j)
			if strings.TrimSpace(cvText) == "" {
				j.MatchScore = 0
			} else {
				j.MatchScore = scoring.MatchScore(cvText, j.Keywords, j.Requirements)
			}
			return nil
		})
	}
	_ = g.Wait()
	return jobs
}

func (e *Enricher) jobKeywords(ctx context.Context, j model.Job) []string {
	kws, err := e.analyzer.ExtractJobKeywords(ctx, j.Title, j.Description)
	if err == nil && len(kws) > 0 {
		return kws
	}
	if err != nil {
		e.logger.Debug("collaborator keywords unavailable", "job_id", j.ID, "error", err)
	}
	return keywords.Extract(j.Title + " " + j.Description)
}

// MatchScore scores cvText against a posting's keywords and requirements.
func (e *Enricher) MatchScore(cvText string, jobKeywords, requirements []string) int {
	return scoring.MatchScore(cvText, jobKeywords, requirements)
}
