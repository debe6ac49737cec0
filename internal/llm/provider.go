package llm

import (
	"context"
	"encoding/json"
)

// Provider answers single-turn prompts with JSON matching the request's
// schema.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID is the configured model, used when a reply omits it.
	ModelID() string
}

// Request is one prompt. Hanzo never holds a conversation with a model, so
// there is no message history.
type Request struct {
	// Purpose labels the request in the event log and in errors.
	Purpose string

	System string
	Prompt string

	// Schema, when set, asks the provider for structured output and the
	// reply is validated against it before it is returned.
	Schema *Schema

	MaxTokens   int
	Temperature float64 // 0 leaves the provider default
}

// Schema is a named JSON Schema.
type Schema struct {
	// Name is kebab-case; it doubles as the OpenAI schema name and the
	// validator cache key.
	Name        string
	Description string
	Definition  map[string]any
}

// Response is a validated reply.
type Response struct {
	Content json.RawMessage
	Usage   Usage
	Model   string
}

// Usage counts tokens for one request.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Total is input plus output tokens.
func (u Usage) Total() int {
	return u.InputTokens + u.OutputTokens
}

// purposeOr returns the request's purpose, or "unknown".
func (r Request) purposeOr() string {
	if r.Purpose == "" {
		return "unknown"
	}
	return r.Purpose
}
