package ai

import (
	_ "embed"
	"text/template"
)

//go:embed prompts/cv_analysis.md
var cvAnalysisPromptRaw string

//go:embed prompts/job_keywords.md
var jobKeywordsPromptRaw string

// Prompt templates, parsed once at package init.
var (
	CVAnalysisTemplate  = template.Must(template.New("cv_analysis").Parse(cvAnalysisPromptRaw))
	JobKeywordsTemplate = template.Must(template.New("job_keywords").Parse(jobKeywordsPromptRaw))
)

const (
	cvAnalysisSystem  = "You are a precise reviewer of CVs for applicant tracking systems. Reply with JSON only."
	jobKeywordsSystem = "You are a precise structured data extractor for job descriptions. Reply with JSON only."
)
