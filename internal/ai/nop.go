package ai

import (
	"context"

	"github.com/amishk599/jobscout/internal/model"
)

// errDisabled is returned by every NopAnalyzer method.
var errDisabled = &model.AppError{ErrCode: "ai_disabled", Message: "AI analysis is disabled"}

// NopAnalyzer is used when ai.enabled is false. Every call fails so callers
// fall back to deterministic scoring.
type NopAnalyzer struct{}

// NewNopAnalyzer returns a NopAnalyzer.
func NewNopAnalyzer() *NopAnalyzer {
	return &NopAnalyzer{}
}

// AnalyzeCV always fails with ai_disabled.
func (n *NopAnalyzer) AnalyzeCV(_ context.Context, _ string) (CVInsights, error) {
	return CVInsights{}, errDisabled
}

// ExtractJobKeywords always fails with ai_disabled.
func (n *NopAnalyzer) ExtractJobKeywords(_ context.Context, _, _ string) ([]string, error) {
	return nil, errDisabled
}
