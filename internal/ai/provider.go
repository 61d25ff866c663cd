package ai

import "context"

// Request is one structured-output completion.
type Request struct {
	System     string         // system instruction
	Prompt     string         // rendered user prompt
	SchemaName string         // identifier sent with the schema
	Schema     map[string]any // JSON Schema the reply must satisfy
}

// LLMProvider sends a request to an LLM and returns the raw text response.
// Used only by LLMAnalyzer; not exported to the rest of the system.
type LLMProvider interface {
	Complete(ctx context.Context, req Request) (string, error)
}
