package llm

import (
	"context"
	"encoding/json"
)

// Provider is the abstraction over the external model. The tutor hands
// it a composed prompt plus a structured-output schema and gets back
// JSON conforming to that schema, or an error, never a partial result.
type Provider interface {
	// Generate sends the request and returns the model's structured
	// response. When req.Schema is set the returned Content is JSON
	// already validated against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured for.
	ModelID() string
}

// Request describes one call to the model.
type Request struct {
	// System sets the model's role and output policy.
	System string

	// Messages is the conversation. Turn processing sends a single
	// user message carrying the composed turn context.
	Messages []Message

	// Schema is the JSON Schema the response must conform to. When
	// nil the response is raw text.
	Schema *Schema

	// MaxTokens caps the response length.
	MaxTokens int

	// Temperature in 0.0–1.0. Zero means provider default.
	Temperature float64
}

// Message is one entry in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema names a JSON Schema contract for structured output.
type Schema struct {
	// Name identifies the schema (tool name for Anthropic, schema
	// name for OpenAI). Kebab-case.
	Name string

	// Description guides the model.
	Description string

	// Definition is the JSON Schema definition.
	Definition map[string]any
}

// Response is the model's output.
type Response struct {
	// Content is the generated JSON (schema-validated when the
	// request carried a Schema).
	Content json.RawMessage

	// Usage reports token consumption.
	Usage Usage

	// Model is the model that actually served the request.
	Model string

	// StopReason is normalized to "end", "max_tokens" or "error".
	StopReason string
}

// Usage tracks token consumption for one request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
