package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/amishk599/jobscout/internal/adapter"
	"github.com/amishk599/jobscout/internal/ai"
	"github.com/amishk599/jobscout/internal/cache"
	"github.com/amishk599/jobscout/internal/config"
	"github.com/amishk599/jobscout/internal/enrich"
	"github.com/amishk599/jobscout/internal/model"
	"github.com/amishk599/jobscout/internal/ratelimit"
	"github.com/amishk599/jobscout/internal/retry"
	"github.com/amishk599/jobscout/internal/search"
)

// app holds the process-wide shared resources. Each is constructed once and
// injected into the components that use it.
type app struct {
	cfg        *config.Config
	logger     *slog.Logger
	store      *cache.Store
	limiter    *ratelimit.Limiter
	httpClient *http.Client
	enricher   *enrich.Enricher
	service    *search.Service
	closers    []func() error
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	a.store = cache.New(cache.Options{
		DefaultTTL:    cfg.Cache.DefaultTTL,
		SweepInterval: cfg.Cache.SweepInterval,
	})
	a.closers = append(a.closers, func() error { a.store.Close(); return nil })

	budgets := make(map[string]ratelimit.Budget, len(cfg.RateLimits))
	for op, rl := range cfg.RateLimits {
		budgets[op] = ratelimit.Budget{Points: rl.Points, Window: rl.Window}
	}
	a.limiter = ratelimit.NewLimiter(budgets)

	a.httpClient = adapter.NewHTTPClient(adapter.HTTPOptions{
		Timeout: cfg.HTTP.Timeout,
		Retries: cfg.HTTP.ClientRetries,
		Logger:  logger,
	})

	fetchers := buildFetchers(cfg, a.httpClient, logger)

	analyzer, closeAnalyzer, err := setupAnalyzer(ctx, cfg, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	if closeAnalyzer != nil {
		a.closers = append(a.closers, closeAnalyzer)
	}

	a.enricher = enrich.New(analyzer, a.limiter, cache.NewCVAnalysisCache(a.store, cfg.Cache.CVTTL), logger)
	a.service = search.NewService(
		search.NewAggregator(fetchers, cfg.Search.MaxConcurrent, logger),
		a.enricher,
		a.limiter,
		cache.NewJobSearchCache(a.store, cfg.Cache.SearchTTL),
		cache.NewProfileCache(a.store, cfg.Cache.ProfileTTL),
		logger,
	)

	logger.Debug("app ready",
		"sources", cfg.Sources,
		"max_concurrent", cfg.Search.MaxConcurrent,
		"ai_enabled", cfg.AI.Enabled,
	)
	return a, nil
}

// Close releases resources in reverse construction order.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("closing resource failed", "error", err)
		}
	}
	a.closers = nil
}

func buildFetchers(cfg *config.Config, client *http.Client, logger *slog.Logger) []model.JobFetcher {
	opts := adapter.BoardOptions{
		MaxListings:    cfg.Search.MaxListings,
		MaxDescription: cfg.Search.MaxDescription,
		Retry: retry.Policy{
			Attempts: cfg.HTTP.RetryAttempts,
			Delay:    cfg.HTTP.RetryDelay,
			Logger:   logger,
		},
		Pacer:  ratelimit.NewPacer(cfg.HTTP.RequestDelay),
		Logger: logger,
	}

	var fetchers []model.JobFetcher
	for _, src := range cfg.Sources {
		switch model.Source(src) {
		case model.SourceSeek:
			fetchers = append(fetchers, adapter.NewSeekBoard("", client, opts))
		case model.SourceIndeed:
			fetchers = append(fetchers, adapter.NewIndeedBoard("", client, opts))
		case model.SourceLinkedIn:
			fetchers = append(fetchers, adapter.NewLinkedInBoard("", client, opts))
		default:
			logger.Warn("unsupported source, skipping", "source", src)
		}
	}
	return fetchers
}

// setupAnalyzer returns the configured AI collaborator and an optional
// close function. Disabled AI yields a NopAnalyzer.
func setupAnalyzer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (enrich.Analyzer, func() error, error) {
	if !cfg.AI.Enabled {
		return ai.NewNopAnalyzer(), nil, nil
	}

	switch cfg.AI.Provider {
	case "gemini":
		provider, err := ai.NewGeminiProvider(ctx, cfg.AI.APIKey, cfg.AI.Model)
		if err != nil {
			return nil, nil, &model.AppError{ErrCode: "ai_setup_failed", Message: "creating gemini provider", Err: err}
		}
		logger.Info("ai enrichment enabled", "provider", "gemini", "model", cfg.AI.Model)
		return ai.NewLLMAnalyzer(provider, logger), provider.Close, nil
	case "openai":
		provider := ai.NewOpenAIProvider(cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.Model, &http.Client{Timeout: cfg.AI.Timeout})
		logger.Info("ai enrichment enabled", "provider", "openai", "model", cfg.AI.Model)
		return ai.NewLLMAnalyzer(provider, logger), nil, nil
	default:
		return nil, nil, &model.AppError{ErrCode: "ai_setup_failed", Message: fmt.Sprintf("unknown ai provider %q", cfg.AI.Provider)}
	}
}

// bootstrap loads config, builds the logger and the app.
func bootstrap(ctx context.Context) (*app, error) {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return nil, &model.AppError{ErrCode: "config_error", Message: "loading config", Err: err}
	}
	return newApp(ctx, cfg, logger)
}
