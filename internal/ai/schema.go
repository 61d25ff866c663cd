package ai

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// cvAnalysisSchema is the reply shape for AnalyzeCV.
var cvAnalysisSchema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"properties": map[string]any{
		"score": map[string]any{"type": "integer", "minimum": 0, "maximum": 100},
		"keywords": map[string]any{
			"type":     "array",
			"items":    map[string]any{"type": "string"},
			"maxItems": 30,
		},
		"suggestions": map[string]any{
			"type":     "array",
			"items":    map[string]any{"type": "string"},
			"maxItems": 10,
		},
	},
	"required": []string{"score", "keywords", "suggestions"},
}

// jobKeywordsSchema is the reply shape for ExtractJobKeywords.
var jobKeywordsSchema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"properties": map[string]any{
		"keywords": map[string]any{
			"type":     "array",
			"items":    map[string]any{"type": "string"},
			"maxItems": 20,
		},
	},
	"required": []string{"keywords"},
}

// validateReply checks raw against schema.
func validateReply(schema map[string]any, raw string) error {
	result, err := gojsonschema.Validate(gojsonschema.NewGoLoader(schema), gojsonschema.NewStringLoader(raw))
	if err != nil {
		return fmt.Errorf("loading reply: %w", err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		msgs = append(msgs, field+": "+desc.Description())
	}
	return fmt.Errorf("reply does not match schema: %s", strings.Join(msgs, "; "))
}
