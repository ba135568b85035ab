// Package providers contains the LLM client boundary: a small interface over
// chat-completion backends plus shared request/response types for
// schema-constrained structured output.
package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// LLMClient is the interface for chat/completion backends.
type LLMClient interface {
	// Chat sends a chat completion request.
	Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error)

	// Name returns the client identifier (e.g., "openrouter").
	Name() string
}

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"` // "system", "user", "assistant"
	Content string `json:"content"`
}

// ResponseFormat requests structured output from the backend.
// JSONSchema holds the {"name","strict","schema"} wrapper object.
type ResponseFormat struct {
	Type       string          `json:"type"` // "json_schema"
	JSONSchema json.RawMessage `json:"json_schema,omitempty"`
}

// ChatRequest is a request to an LLM.
type ChatRequest struct {
	// Required
	Messages []Message `json:"messages"`

	// Model selection (uses client default if empty)
	Model string `json:"model,omitempty"`

	// Generation parameters
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Timeout     time.Duration

	// Structured output
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`

	// Request tracking
	RequestID string `json:"-"`
}

// ChatResult is the complete response from an LLM call.
type ChatResult struct {
	// Response content
	Content    string          `json:"content"`
	ParsedJSON json.RawMessage `json:"parsed_json,omitempty"` // Parsed if ResponseFormat was set

	// Token counts
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`

	// Timing
	ExecutionTime time.Duration `json:"execution_time"`
	TotalTime     time.Duration `json:"total_time"`

	// Provider info
	Provider  string `json:"provider"`
	ModelUsed string `json:"model_used"`

	// Request tracking
	RequestID string `json:"request_id"`
	Attempts  int    `json:"attempts"`

	// Success/error
	Success      bool          `json:"success"`
	ErrorType    string        `json:"error_type,omitempty"`
	ErrorMessage string        `json:"error_message,omitempty"`
	RetryAfter   time.Duration `json:"-"`
}

// structuredSpec is the decoded {"name","strict","schema"} wrapper from a
// ResponseFormat. Backends that need the pieces separately (OpenAI SDK)
// decode it; backends that accept the wrapper verbatim (OpenRouter) pass the
// raw bytes through.
type structuredSpec struct {
	Name   string         `json:"name"`
	Strict bool           `json:"strict"`
	Schema map[string]any `json:"schema"`
}

// tryParseRaw returns content as raw JSON if it parses, nil otherwise.
func tryParseRaw(content string) json.RawMessage {
	var parsed json.RawMessage
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil
	}
	return parsed
}

func decodeStructuredSpec(rf *ResponseFormat) (*structuredSpec, error) {
	if rf == nil || len(rf.JSONSchema) == 0 {
		return nil, nil
	}
	var spec structuredSpec
	if err := json.Unmarshal(rf.JSONSchema, &spec); err != nil {
		return nil, fmt.Errorf("invalid structured output schema: %w", err)
	}
	if spec.Name == "" {
		spec.Name = "response"
	}
	return &spec, nil
}
