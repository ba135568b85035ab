// Package extract implements schema-constrained structured extraction: it
// drives a chat backend with a JSON-schema response format, validates the
// output locally, and re-prompts with the validation error until the output
// conforms or the attempt budget runs out.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/voyagehq/waypoint/internal/llmcall"
	"github.com/voyagehq/waypoint/internal/providers"
)

// DefaultMaxAttempts bounds the validate/repair loop.
const DefaultMaxAttempts = 3

// Config configures an extraction engine.
type Config struct {
	// Client is the chat backend (required).
	Client providers.LLMClient

	// Limiter, when set, is waited on before every attempt.
	Limiter *providers.RateLimiter

	// MaxAttempts bounds the validate/repair loop (default: 3).
	MaxAttempts int

	// Recorder, when set, records every attempt.
	Recorder *llmcall.Recorder

	Logger *slog.Logger
}

// Engine runs the extraction loop against a single backend client.
// It is stateless across calls; every Extract is an independent round trip.
type Engine struct {
	client      providers.LLMClient
	limiter     *providers.RateLimiter
	maxAttempts int
	recorder    *llmcall.Recorder
	logger      *slog.Logger
}

// New creates an extraction engine.
func New(cfg Config) *Engine {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		client:      cfg.Client,
		limiter:     cfg.Limiter,
		maxAttempts: maxAttempts,
		recorder:    cfg.Recorder,
		logger:      logger,
	}
}

// Request describes one extraction call.
type Request struct {
	// SystemPrompt is the assembled instruction text.
	SystemPrompt string

	// UserMessage is the input payload sent as the user turn.
	UserMessage string

	// Schema is the {"name","strict","schema"} output contract wrapper.
	Schema json.RawMessage

	// Model overrides the client default when non-empty.
	Model       string
	Temperature float64
	MaxTokens   int

	// PromptKey identifies the prompt for call recording.
	PromptKey string
	// PromptHash links recorded calls to the exact prompt version.
	PromptHash string

	// RequestID correlates attempts (auto-generated if empty).
	RequestID string
}

// Result is a conformant extraction outcome.
type Result struct {
	// Output is the schema-conformant JSON document.
	Output json.RawMessage

	// Attempts is the number of model calls made.
	Attempts int

	Model            string
	PromptTokens     int
	CompletionTokens int
	Elapsed          time.Duration
}

// Extract runs the extraction loop until the output validates or the attempt
// budget is exhausted. Backend errors propagate immediately; schema
// exhaustion returns an error wrapping ErrSchemaExhausted. A partial result
// is never returned.
func (e *Engine) Extract(ctx context.Context, req Request) (*Result, error) {
	if e.client == nil {
		return nil, fmt.Errorf("extraction engine has no client")
	}
	if len(req.Schema) == 0 {
		return nil, fmt.Errorf("extraction request has no output schema")
	}

	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}

	start := time.Now()
	messages := []providers.Message{
		{Role: "system", Content: req.SystemPrompt},
		{Role: "user", Content: req.UserMessage},
	}

	result := &Result{}
	var lastIssue error

	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		if e.limiter != nil {
			if err := e.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		chatReq := &providers.ChatRequest{
			Messages:    messages,
			Model:       req.Model,
			Temperature: req.Temperature,
			MaxTokens:   req.MaxTokens,
			RequestID:   requestID,
			ResponseFormat: &providers.ResponseFormat{
				Type:       "json_schema",
				JSONSchema: req.Schema,
			},
		}

		chatRes, err := e.client.Chat(ctx, chatReq)
		e.record(req, chatRes, attempt, requestID, err)
		if err != nil {
			return nil, fmt.Errorf("backend call failed: %w", err)
		}

		result.Attempts = attempt
		result.Model = chatRes.ModelUsed
		result.PromptTokens += chatRes.PromptTokens
		result.CompletionTokens += chatRes.CompletionTokens

		parsed := chatRes.ParsedJSON
		if len(parsed) == 0 {
			parsed, err = ParseStructuredJSON(chatRes.Content)
		}
		if err == nil {
			err = ValidateStructuredJSON(req.Schema, parsed)
		}
		if err == nil {
			result.Output = parsed
			result.Elapsed = time.Since(start)
			e.logger.Debug("extraction complete",
				"prompt_key", req.PromptKey,
				"attempts", attempt,
				"elapsed", result.Elapsed)
			return result, nil
		}

		lastIssue = err
		e.logger.Warn("structured output rejected",
			"prompt_key", req.PromptKey,
			"attempt", attempt,
			"issue", err)

		// Feed the failure back: previous output as the assistant turn, the
		// validation issue in a repair instruction as the next user turn.
		messages = append(messages,
			providers.Message{Role: "assistant", Content: chatRes.Content},
			providers.Message{Role: "user", Content: RepairPrompt(req.Schema, chatRes.Content, err)},
		)
	}

	return nil, fmt.Errorf("%w after %d attempts: %v", ErrSchemaExhausted, e.maxAttempts, lastIssue)
}

func (e *Engine) record(req Request, res *providers.ChatResult, attempt int, requestID string, err error) {
	if e.recorder == nil {
		return
	}

	call := llmcall.Call{
		RequestID:  requestID,
		Attempt:    attempt,
		PromptKey:  req.PromptKey,
		PromptHash: req.PromptHash,
		Provider:   e.client.Name(),
		Model:      req.Model,
	}
	if res != nil {
		call.LatencyMs = int(res.TotalTime.Milliseconds())
		call.InputTokens = res.PromptTokens
		call.OutputTokens = res.CompletionTokens
		call.Response = res.Content
		call.Success = res.Success
		if res.ModelUsed != "" {
			call.Model = res.ModelUsed
		}
	}
	if err != nil {
		call.Success = false
		call.Error = err.Error()
	}
	e.recorder.Record(call)
}
