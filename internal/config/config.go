package config

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for jobscout.
type Config struct {
	Sources    []string
	Search     SearchConfig
	HTTP       HTTPConfig
	Cache      CacheConfig
	RateLimits map[string]RateLimit
	AI         AIConfig
	Watch      WatchConfig
}

// SearchConfig controls the aggregate search.
type SearchConfig struct {
	MaxConcurrent  int
	MaxListings    int
	MaxDescription int
}

// HTTPConfig controls the shared scraping client and fetcher-level retries.
type HTTPConfig struct {
	Timeout       time.Duration
	RequestDelay  time.Duration // minimum gap between requests to the same source
	ClientRetries int           // transport-level retries for idempotent requests
	RetryAttempts int           // fetcher-level attempts per page
	RetryDelay    time.Duration
}

// CacheConfig holds TTLs for the process cache.
type CacheConfig struct {
	DefaultTTL    time.Duration
	SweepInterval time.Duration
	SearchTTL     time.Duration
	CVTTL         time.Duration
	ProfileTTL    time.Duration
}

// RateLimit is a fixed-window point budget.
type RateLimit struct {
	Points int
	Window time.Duration
}

// AIConfig controls the optional generative collaborator.
type AIConfig struct {
	Enabled  bool
	Provider string // "openai" or "gemini"
	BaseURL  string // OpenAI-compatible endpoint
	Model    string
	APIKey   string // expanded from env var by Load
	Timeout  time.Duration
}

// WatchConfig drives the watch command.
type WatchConfig struct {
	Interval     time.Duration
	Gap          time.Duration // pause between saved searches in one cycle
	Retention    time.Duration // how long a reported posting stays suppressed
	Queries      []QueryConfig
	Filters      FilterConfig
	Notification NotificationConfig
}

// QueryConfig is one saved search.
type QueryConfig struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
	Location string   `yaml:"location"`
}

// FilterConfig narrows which postings watch mode reports.
type FilterConfig struct {
	TitleKeywords        []string `yaml:"title_keywords"`
	TitleExcludeKeywords []string `yaml:"title_exclude_keywords"`
	Locations            []string `yaml:"locations"`
	MinMatchScore        int      `yaml:"min_match_score"`
}

// NotificationConfig controls which notifier is used and its settings.
type NotificationConfig struct {
	Type       string `yaml:"type"`        // "log" or "slack"
	WebhookURL string `yaml:"webhook_url"` // required if type is "slack"
}

// Known source and provider names.
var (
	KnownSources   = []string{"seek", "indeed", "linkedin"}
	knownProviders = []string{"openai", "gemini"}
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	slackWebhookPrefix   = "https://hooks.slack.com/"
)

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Sources: slices.Clone(KnownSources),
		Search: SearchConfig{
			MaxConcurrent:  5,
			MaxListings:    10,
			MaxDescription: 5000,
		},
		HTTP: HTTPConfig{
			Timeout:       30 * time.Second,
			RequestDelay:  2 * time.Second,
			ClientRetries: 3,
			RetryAttempts: 3,
			RetryDelay:    5 * time.Second,
		},
		Cache: CacheConfig{
			DefaultTTL:    600 * time.Second,
			SweepInterval: 120 * time.Second,
			SearchTTL:     300 * time.Second,
			CVTTL:         3600 * time.Second,
			ProfileTTL:    86400 * time.Second,
		},
		RateLimits: map[string]RateLimit{
			"jobSearch":   {Points: 10, Window: time.Minute},
			"cvAnalysis":  {Points: 10, Window: time.Minute},
			"cvTailoring": {Points: 5, Window: time.Minute},
			"coverLetter": {Points: 10, Window: time.Minute},
		},
		AI: AIConfig{
			Provider: "openai",
			BaseURL:  defaultOpenAIBaseURL,
			Model:    "gpt-4o-mini",
			Timeout:  30 * time.Second,
		},
		Watch: WatchConfig{
			Interval:     30 * time.Minute,
			Gap:          time.Second,
			Retention:    24 * time.Hour,
			Notification: NotificationConfig{Type: "log"},
		},
	}
}

// rawConfig is used for YAML unmarshaling (snake_case fields and duration as string).
type rawConfig struct {
	Sources    []string                `yaml:"sources"`
	Search     rawSearchConfig         `yaml:"search"`
	HTTP       rawHTTPConfig           `yaml:"http"`
	Cache      rawCacheConfig          `yaml:"cache"`
	RateLimits map[string]rawRateLimit `yaml:"rate_limits"`
	AI         rawAIConfig             `yaml:"ai"`
	Watch      rawWatchConfig          `yaml:"watch"`
}

type rawSearchConfig struct {
	MaxConcurrent  *int `yaml:"max_concurrent"`
	MaxListings    *int `yaml:"max_listings"`
	MaxDescription *int `yaml:"max_description"`
}

type rawHTTPConfig struct {
	Timeout       string `yaml:"timeout"`
	RequestDelay  string `yaml:"request_delay"`
	ClientRetries *int   `yaml:"client_retries"`
	RetryAttempts *int   `yaml:"retry_attempts"`
	RetryDelay    string `yaml:"retry_delay"`
}

type rawCacheConfig struct {
	DefaultTTL    string `yaml:"default_ttl"`
	SweepInterval string `yaml:"sweep_interval"`
	SearchTTL     string `yaml:"search_ttl"`
	CVTTL         string `yaml:"cv_ttl"`
	ProfileTTL    string `yaml:"profile_ttl"`
}

type rawRateLimit struct {
	Points   int    `yaml:"points"`
	Duration string `yaml:"duration"`
}

type rawAIConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Provider string `yaml:"provider"`
	BaseURL  string `yaml:"base_url"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
	Timeout  string `yaml:"timeout"`
}

type rawWatchConfig struct {
	Interval     string             `yaml:"interval"`
	Gap          string             `yaml:"gap"`
	Retention    string             `yaml:"retention"`
	Queries      []QueryConfig      `yaml:"queries"`
	Filters      FilterConfig       `yaml:"filters"`
	Notification NotificationConfig `yaml:"notification"`
}

// Load reads the YAML file at path over the defaults, applies JOBSCOUT_*
// environment overrides and validates the result. An empty path skips the
// file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}

		// Expand environment variables
		expanded := os.ExpandEnv(string(data))

		var raw rawConfig
		if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
		if err := apply(cfg, &raw); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func apply(cfg *Config, raw *rawConfig) error {
	if raw.Sources != nil {
		cfg.Sources = raw.Sources
	}

	setInt(&cfg.Search.MaxConcurrent, raw.Search.MaxConcurrent)
	setInt(&cfg.Search.MaxListings, raw.Search.MaxListings)
	setInt(&cfg.Search.MaxDescription, raw.Search.MaxDescription)

	setInt(&cfg.HTTP.ClientRetries, raw.HTTP.ClientRetries)
	setInt(&cfg.HTTP.RetryAttempts, raw.HTTP.RetryAttempts)

	durations := []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"http.timeout", raw.HTTP.Timeout, &cfg.HTTP.Timeout},
		{"http.request_delay", raw.HTTP.RequestDelay, &cfg.HTTP.RequestDelay},
		{"http.retry_delay", raw.HTTP.RetryDelay, &cfg.HTTP.RetryDelay},
		{"cache.default_ttl", raw.Cache.DefaultTTL, &cfg.Cache.DefaultTTL},
		{"cache.sweep_interval", raw.Cache.SweepInterval, &cfg.Cache.SweepInterval},
		{"cache.search_ttl", raw.Cache.SearchTTL, &cfg.Cache.SearchTTL},
		{"cache.cv_ttl", raw.Cache.CVTTL, &cfg.Cache.CVTTL},
		{"cache.profile_ttl", raw.Cache.ProfileTTL, &cfg.Cache.ProfileTTL},
		{"ai.timeout", raw.AI.Timeout, &cfg.AI.Timeout},
		{"watch.interval", raw.Watch.Interval, &cfg.Watch.Interval},
		{"watch.gap", raw.Watch.Gap, &cfg.Watch.Gap},
		{"watch.retention", raw.Watch.Retention, &cfg.Watch.Retention},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("parse %s %q: %w", d.key, d.raw, err)
		}
		*d.dst = v
	}

	for op, rl := range raw.RateLimits {
		window, err := time.ParseDuration(rl.Duration)
		if err != nil {
			return fmt.Errorf("parse rate_limits[%q].duration %q: %w", op, rl.Duration, err)
		}
		cfg.RateLimits[op] = RateLimit{Points: rl.Points, Window: window}
	}

	cfg.AI.Enabled = raw.AI.Enabled
	if raw.AI.Provider != "" {
		cfg.AI.Provider = strings.ToLower(raw.AI.Provider)
	}
	if raw.AI.BaseURL != "" {
		cfg.AI.BaseURL = raw.AI.BaseURL
	}
	if raw.AI.Model != "" {
		cfg.AI.Model = raw.AI.Model
	}
	cfg.AI.APIKey = raw.AI.APIKey

	cfg.Watch.Queries = raw.Watch.Queries
	cfg.Watch.Filters = raw.Watch.Filters
	if raw.Watch.Notification.Type != "" {
		cfg.Watch.Notification = raw.Watch.Notification
	}
	return nil
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

// applyEnv applies JOBSCOUT_* overrides. Millisecond and second suffixes
// are part of the variable names.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	ints := []struct {
		name string
		dst  *int
	}{
		{"JOBSCOUT_MAX_CONCURRENT_REQUESTS", &cfg.Search.MaxConcurrent},
		{"JOBSCOUT_RETRY_ATTEMPTS", &cfg.HTTP.RetryAttempts},
	}
	for _, e := range ints {
		v, ok := lookup(e.name)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse %s %q: %w", e.name, v, err)
		}
		*e.dst = n
	}

	durations := []struct {
		name string
		unit time.Duration
		dst  *time.Duration
	}{
		{"JOBSCOUT_REQUEST_DELAY_MS", time.Millisecond, &cfg.HTTP.RequestDelay},
		{"JOBSCOUT_REQUEST_TIMEOUT_MS", time.Millisecond, &cfg.HTTP.Timeout},
		{"JOBSCOUT_RETRY_DELAY_MS", time.Millisecond, &cfg.HTTP.RetryDelay},
		{"JOBSCOUT_CACHE_TTL_SEARCH", time.Second, &cfg.Cache.SearchTTL},
		{"JOBSCOUT_CACHE_TTL_CV", time.Second, &cfg.Cache.CVTTL},
		{"JOBSCOUT_CACHE_TTL_PROFILE", time.Second, &cfg.Cache.ProfileTTL},
	}
	for _, e := range durations {
		v, ok := lookup(e.name)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse %s %q: %w", e.name, v, err)
		}
		*e.dst = time.Duration(n) * e.unit
	}

	if err := applyRateLimitEnv(cfg, lookup); err != nil {
		return err
	}

	if v, ok := lookup("JOBSCOUT_AI_API_KEY"); ok && v != "" {
		cfg.AI.APIKey = v
	}
	if v, ok := lookup("JOBSCOUT_AI_ENABLED"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse JOBSCOUT_AI_ENABLED %q: %w", v, err)
		}
		cfg.AI.Enabled = b
	}
	return nil
}

// applyRateLimitEnv reads JOBSCOUT_RATE_LIMIT_<OP>_POINTS (integer) and
// JOBSCOUT_RATE_LIMIT_<OP>_DURATION (Go duration) for every configured
// operation, e.g. JOBSCOUT_RATE_LIMIT_CV_TAILORING_POINTS for cvTailoring.
func applyRateLimitEnv(cfg *Config, lookup func(string) (string, bool)) error {
	for _, op := range slices.Sorted(maps.Keys(cfg.RateLimits)) {
		rl := cfg.RateLimits[op]
		prefix := "JOBSCOUT_RATE_LIMIT_" + envSegment(op)

		if v, ok := lookup(prefix + "_POINTS"); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("parse %s_POINTS %q: %w", prefix, v, err)
			}
			rl.Points = n
		}
		if v, ok := lookup(prefix + "_DURATION"); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("parse %s_DURATION %q: %w", prefix, v, err)
			}
			rl.Window = d
		}
		cfg.RateLimits[op] = rl
	}
	return nil
}

// envSegment turns an operation name like "coverLetter" into "COVER_LETTER".
func envSegment(op string) string {
	var b strings.Builder
	for i, r := range op {
		if unicode.IsUpper(r) && i > 0 {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

func validate(cfg *Config) error {
	if len(cfg.Sources) == 0 {
		return fmt.Errorf("at least one source must be enabled")
	}
	for _, s := range cfg.Sources {
		if !slices.Contains(KnownSources, s) {
			return fmt.Errorf("unknown source %q (known: %s)", s, strings.Join(KnownSources, ", "))
		}
	}

	if cfg.Search.MaxConcurrent < 1 {
		return fmt.Errorf("search.max_concurrent must be at least 1, got %d", cfg.Search.MaxConcurrent)
	}
	if cfg.Search.MaxListings < 1 {
		return fmt.Errorf("search.max_listings must be at least 1, got %d", cfg.Search.MaxListings)
	}
	if cfg.Search.MaxDescription < 1 {
		return fmt.Errorf("search.max_description must be at least 1, got %d", cfg.Search.MaxDescription)
	}

	if cfg.HTTP.Timeout <= 0 {
		return fmt.Errorf("http.timeout must be positive, got %v", cfg.HTTP.Timeout)
	}
	if cfg.HTTP.RequestDelay < 0 || cfg.HTTP.RetryDelay < 0 {
		return fmt.Errorf("http delays must not be negative")
	}
	if cfg.HTTP.ClientRetries < 0 {
		return fmt.Errorf("http.client_retries must not be negative, got %d", cfg.HTTP.ClientRetries)
	}
	if cfg.HTTP.RetryAttempts < 1 {
		return fmt.Errorf("http.retry_attempts must be at least 1, got %d", cfg.HTTP.RetryAttempts)
	}

	for key, ttl := range map[string]time.Duration{
		"cache.default_ttl": cfg.Cache.DefaultTTL,
		"cache.search_ttl":  cfg.Cache.SearchTTL,
		"cache.cv_ttl":      cfg.Cache.CVTTL,
		"cache.profile_ttl": cfg.Cache.ProfileTTL,
	} {
		if ttl <= 0 {
			return fmt.Errorf("%s must be positive, got %v", key, ttl)
		}
	}

	for op, rl := range cfg.RateLimits {
		if rl.Points < 1 || rl.Window <= 0 {
			return fmt.Errorf("rate_limits[%q] needs positive points and duration", op)
		}
	}

	if cfg.AI.Enabled {
		if !slices.Contains(knownProviders, cfg.AI.Provider) {
			return fmt.Errorf("ai.provider must be one of %s, got %q", strings.Join(knownProviders, ", "), cfg.AI.Provider)
		}
		if cfg.AI.APIKey == "" {
			return fmt.Errorf("ai.api_key is required when ai.enabled is true")
		}
		if cfg.AI.Provider == "openai" && cfg.AI.BaseURL == "" {
			return fmt.Errorf("ai.base_url is required for the openai provider")
		}
		if cfg.AI.Model == "" {
			return fmt.Errorf("ai.model is required when ai.enabled is true")
		}
	}

	if cfg.Watch.Interval <= 0 {
		return fmt.Errorf("watch.interval must be positive, got %v", cfg.Watch.Interval)
	}
	for i, q := range cfg.Watch.Queries {
		if len(q.Keywords) == 0 {
			return fmt.Errorf("watch.queries[%d] needs at least one keyword", i)
		}
	}
	if s := cfg.Watch.Filters.MinMatchScore; s < 0 || s > 100 {
		return fmt.Errorf("watch.filters.min_match_score must be between 0 and 100, got %d", s)
	}

	switch cfg.Watch.Notification.Type {
	case "log":
	case "slack":
		if !strings.HasPrefix(cfg.Watch.Notification.WebhookURL, slackWebhookPrefix) {
			return fmt.Errorf("watch.notification.webhook_url must start with %s", slackWebhookPrefix)
		}
	default:
		return fmt.Errorf("watch.notification.type must be \"log\" or \"slack\", got %q", cfg.Watch.Notification.Type)
	}

	return nil
}
