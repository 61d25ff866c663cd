package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/template"
)

// CVInsights is the collaborator's view of a CV.
type CVInsights struct {
	Score       int
	Keywords    []string
	Suggestions []string
}

// LLMAnalyzer scores CVs and extracts posting keywords using an LLM. Every
// reply is validated against a JSON schema before it is trusted.
type LLMAnalyzer struct {
	provider LLMProvider
	cvTmpl   *template.Template
	jobTmpl  *template.Template
	logger   *slog.Logger
}

// NewLLMAnalyzer creates an analyzer using the embedded prompt templates.
func NewLLMAnalyzer(provider LLMProvider, logger *slog.Logger) *LLMAnalyzer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &LLMAnalyzer{
		provider: provider,
		cvTmpl:   CVAnalysisTemplate,
		jobTmpl:  JobKeywordsTemplate,
		logger:   logger,
	}
}

// rawCVAnalysis is the JSON shape returned by the LLM (matches cvAnalysisSchema).
type rawCVAnalysis struct {
	Score       int      `json:"score"`
	Keywords    []string `json:"keywords"`
	Suggestions []string `json:"suggestions"`
}

type rawJobKeywords struct {
	Keywords []string `json:"keywords"`
}

// AnalyzeCV asks the LLM to score text.
func (a *LLMAnalyzer) AnalyzeCV(ctx context.Context, text string) (CVInsights, error) {
	prompt, err := render(a.cvTmpl, struct{ Text string }{Text: text})
	if err != nil {
		return CVInsights{}, err
	}

	var raw rawCVAnalysis
	if err := a.complete(ctx, Request{
		System:     cvAnalysisSystem,
		Prompt:     prompt,
		SchemaName: "cv_analysis",
		Schema:     cvAnalysisSchema,
	}, &raw); err != nil {
		return CVInsights{}, fmt.Errorf("analyze cv: %w", err)
	}

	return CVInsights{
		Score:       max(0, min(raw.Score, 100)),
		Keywords:    compact(raw.Keywords),
		Suggestions: compact(raw.Suggestions),
	}, nil
}

// ExtractJobKeywords asks the LLM for the skills a posting asks for.
func (a *LLMAnalyzer) ExtractJobKeywords(ctx context.Context, title, description string) ([]string, error) {
	if strings.TrimSpace(title) == "" && strings.TrimSpace(description) == "" {
		return nil, fmt.Errorf("extract job keywords: nothing to analyze")
	}

	prompt, err := render(a.jobTmpl, struct{ Title, Description string }{Title: title, Description: description})
	if err != nil {
		return nil, err
	}

	var raw rawJobKeywords
	if err := a.complete(ctx, Request{
		System:     jobKeywordsSystem,
		Prompt:     prompt,
		SchemaName: "job_keywords",
		Schema:     jobKeywordsSchema,
	}, &raw); err != nil {
		return nil, fmt.Errorf("extract job keywords: %w", err)
	}
	return compact(raw.Keywords), nil
}

// complete runs req, validates the reply against req.Schema and decodes it
// strictly into out.
func (a *LLMAnalyzer) complete(ctx context.Context, req Request, out any) error {
	reply, err := a.provider.Complete(ctx, req)
	if err != nil {
		return fmt.Errorf("llm complete: %w", err)
	}
	reply = cleanJSONBlock(reply)

	if err := validateReply(req.Schema, reply); err != nil {
		a.logger.Debug("llm reply rejected", "schema", req.SchemaName, "error", err)
		return err
	}

	dec := json.NewDecoder(strings.NewReader(reply))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode %s reply: %w", req.SchemaName, err)
	}
	return nil
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

// compact trims entries and drops blanks and case-insensitive duplicates.
func compact(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}
