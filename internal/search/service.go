package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/amishk599/jobscout/internal/cache"
	"github.com/amishk599/jobscout/internal/model"
	"github.com/amishk599/jobscout/internal/ratelimit"
)

// DefaultProfileID is the profile used when the caller has no user concept.
const DefaultProfileID = "default"

// Limiter is the slice of ratelimit.Limiter the service needs.
type Limiter interface {
	Check(operation string) error
}

// Enricher fills keywords and match scores on postings.
type Enricher interface {
	EnrichJobs(ctx context.Context, jobs []model.Job, cvText string) []model.Job
}

// Collector produces the merged result set for a query.
type Collector interface {
	Collect(ctx context.Context, q model.Query) ([]model.Job, []Outcome, error)
}

type searchRequest struct {
	Keywords []string `validate:"min=1,max=20,dive,max=100"`
	Location string   `validate:"max=100"`
}

// Service is the searchJobs entry point: validated, rate-limited, cached.
type Service struct {
	collector Collector
	enricher  Enricher
	limiter   Limiter
	jobs      *cache.Typed[[]model.Job]
	profiles  *cache.Typed[model.Profile]
	validate  *validator.Validate
	logger    *slog.Logger
}

// NewService wires the search flow. enricher may be nil, in which case
// postings are returned without keywords or scores.
func NewService(
	collector Collector,
	enricher Enricher,
	limiter Limiter,
	jobs *cache.Typed[[]model.Job],
	profiles *cache.Typed[model.Profile],
	logger *slog.Logger,
) *Service {
	return &Service{
		collector: collector,
		enricher:  enricher,
		limiter:   limiter,
		jobs:      jobs,
		profiles:  profiles,
		validate:  validator.New(),
		logger:    logger,
	}
}

// SearchJobs returns deduplicated, enriched postings for keywords and
// location. Once collection has started it is not cancelled by ctx.
// It fails with a *model.ScrapingError only when every source failed.
func (s *Service) SearchJobs(ctx context.Context, keywords []string, location string) ([]model.Job, error) {
	q, err := s.normalize(keywords, location)
	if err != nil {
		return nil, err
	}

	if err := s.limiter.Check(ratelimit.OpJobSearch); err != nil {
		return nil, err
	}

	key := cache.SearchKey(q)
	if jobs, ok := s.jobs.Get(key); ok {
		s.logger.Debug("search cache hit", "key", key, "jobs", len(jobs))
		return jobs, nil
	}

	jobs, _, err := s.collector.Collect(context.WithoutCancel(ctx), q)
	if err != nil {
		return nil, err
	}

	if s.enricher != nil {
		jobs = s.enricher.EnrichJobs(ctx, jobs, s.profileText(DefaultProfileID))
	}

	if !s.jobs.Set(key, jobs) {
		s.logger.Warn("search cache write failed", "key", key)
	}
	return jobs, nil
}

func (s *Service) normalize(keywords []string, location string) (model.Query, error) {
	req := searchRequest{
		Keywords: make([]string, 0, len(keywords)),
		Location: strings.TrimSpace(location),
	}
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			req.Keywords = append(req.Keywords, k)
		}
	}

	if err := s.validate.Struct(req); err != nil {
		return model.Query{}, toValidationError(err)
	}
	return model.Query{Keywords: req.Keywords, Location: req.Location}, nil
}

func toValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &model.ValidationError{Message: err.Error()}
	}
	fe := verrs[0]
	field := strings.ToLower(fe.StructField())
	var msg string
	switch {
	case field == "keywords" && fe.Tag() == "min":
		msg = "at least one keyword is required"
	case field == "keywords" && fe.Tag() == "max":
		msg = fmt.Sprintf("at most %s keywords are allowed", fe.Param())
	case fe.Tag() == "max":
		msg = fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		msg = fmt.Sprintf("failed %s validation", fe.Tag())
	}
	return &model.ValidationError{Field: field, Message: msg}
}

// SetProfile stores the profile used for match scoring. Changing the default
// profile drops cached search results.
func (s *Service) SetProfile(userID string, p model.Profile) error {
	if strings.TrimSpace(userID) == "" {
		return &model.ValidationError{Field: "user_id", Message: "is required"}
	}
	if !s.profiles.Set(userID, p) {
		return &model.AppError{ErrCode: "cache_write_failed", Message: "could not store profile"}
	}
	// Cached results carry match scores computed against the previous profile.
	if userID == DefaultProfileID {
		if n := s.jobs.Clear(); n > 0 {
			s.logger.Debug("search cache cleared after profile change", "entries", n)
		}
	}
	return nil
}

// Profile returns the stored profile for userID.
func (s *Service) Profile(userID string) (model.Profile, bool) {
	return s.profiles.Get(userID)
}

func (s *Service) profileText(userID string) string {
	p, ok := s.profiles.Get(userID)
	if !ok {
		return ""
	}
	return p.Text()
}
