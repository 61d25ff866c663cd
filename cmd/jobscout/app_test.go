package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/amishk599/jobscout/internal/ai"
	"github.com/amishk599/jobscout/internal/config"
	"github.com/amishk599/jobscout/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSplitKeywords(t *testing.T) {
	got := splitKeywords([]string{"golang, rust", " ", "kubernetes"})
	if strings.Join(got, "|") != "golang|rust|kubernetes" {
		t.Errorf("splitKeywords = %v", got)
	}
}

func TestBuildFetchers_FollowsConfiguredSources(t *testing.T) {
	cfg := config.Default()
	cfg.Sources = []string{"linkedin", "seek"}

	fetchers := buildFetchers(cfg, http.DefaultClient, discardLogger())
	if len(fetchers) != 2 {
		t.Fatalf("got %d fetchers, want 2", len(fetchers))
	}
	if fetchers[0].Source() != model.SourceLinkedIn || fetchers[1].Source() != model.SourceSeek {
		t.Errorf("sources = %s, %s", fetchers[0].Source(), fetchers[1].Source())
	}
}

func TestSetupAnalyzer_DisabledIsNop(t *testing.T) {
	analyzer, closeFn, err := setupAnalyzer(context.Background(), config.Default(), discardLogger())
	if err != nil {
		t.Fatalf("setupAnalyzer: %v", err)
	}
	if _, ok := analyzer.(*ai.NopAnalyzer); !ok {
		t.Errorf("analyzer = %T, want *ai.NopAnalyzer", analyzer)
	}
	if closeFn != nil {
		t.Error("nop analyzer needs no close function")
	}
}

func TestSetupAnalyzer_OpenAI(t *testing.T) {
	cfg := config.Default()
	cfg.AI.Enabled = true
	cfg.AI.APIKey = "sk-test"

	analyzer, _, err := setupAnalyzer(context.Background(), cfg, discardLogger())
	if err != nil {
		t.Fatalf("setupAnalyzer: %v", err)
	}
	if _, ok := analyzer.(*ai.LLMAnalyzer); !ok {
		t.Errorf("analyzer = %T, want *ai.LLMAnalyzer", analyzer)
	}
}

func TestLoadProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	content := `
name: Sam Lee
summary: Backend engineer
skills: [Golang, Kubernetes]
experience:
  - title: Engineer
    company: Acme
    description: Built Docker pipelines
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := loadProfile(path)
	if err != nil {
		t.Fatalf("loadProfile: %v", err)
	}
	if p.Name != "Sam Lee" || len(p.Skills) != 2 || len(p.Experience) != 1 {
		t.Errorf("profile = %+v", p)
	}
	if !strings.Contains(p.Text(), "Docker pipelines") {
		t.Errorf("Text() = %q", p.Text())
	}
}

func TestLoadProfile_MissingFileIsValidationError(t *testing.T) {
	_, err := loadProfile(filepath.Join(t.TempDir(), "missing.yaml"))
	if code, _ := model.CodeOf(err); code != "validation_error" {
		t.Errorf("code = %q, want validation_error", code)
	}
}
