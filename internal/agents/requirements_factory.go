// Package agents wires prompt assembly, output schemas and the extraction
// engine into ready-to-run agents. Construction is explicit: callers build a
// fresh agent per configuration instead of sharing a global instance.
package agents

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/voyagehq/waypoint/internal/agents/requirements"
	"github.com/voyagehq/waypoint/internal/extract"
	"github.com/voyagehq/waypoint/internal/llmcall"
	"github.com/voyagehq/waypoint/internal/prompt"
	"github.com/voyagehq/waypoint/internal/providers"
)

// RequirementsConfig configures a travel requirements agent.
type RequirementsConfig struct {
	// Client is the chat backend (required).
	Client providers.LLMClient

	// Limiter, when set, throttles backend calls.
	Limiter *providers.RateLimiter

	// Model overrides the client default when non-empty.
	Model       string
	Temperature float64
	MaxTokens   int

	// MaxAttempts bounds the validate/repair loop (default: 3).
	MaxAttempts int

	// Draft selects the loose first-iteration output contract instead of the
	// strict three-field one.
	Draft bool

	// Now is the reference time for the current-date context fact. The date is
	// frozen at construction; the zero value means the wall clock.
	Now time.Time

	// Recorder, when set, records every backend call.
	Recorder *llmcall.Recorder

	Logger *slog.Logger
}

// RequirementsAgent extracts structured travel requirements from free text.
// The system prompt and the current-date fact are fixed at construction.
type RequirementsAgent struct {
	engine       *extract.Engine
	systemPrompt string
	promptKey    string
	promptHash   string
	schemaRaw    []byte
	draft        bool
	model        string
	temperature  float64
	maxTokens    int
	logger       *slog.Logger
}

// NewRequirementsAgent builds an agent from the config.
func NewRequirementsAgent(cfg RequirementsConfig) (*RequirementsAgent, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("requirements agent requires a backend client")
	}

	now := cfg.Now
	if now.IsZero() {
		now = time.Now()
	}
	dateProvider := prompt.NewCurrentDateProviderAt("Current date", now)
	systemPrompt := requirements.NewGenerator(cfg.Draft, dateProvider).Generate()

	schemaRaw, err := requirements.SchemaJSON()
	promptKey := requirements.SystemPromptKey
	if cfg.Draft {
		schemaRaw, err = requirements.DraftSchemaJSON()
		promptKey = requirements.DraftSystemPromptKey
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build output schema: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	engine := extract.New(extract.Config{
		Client:      cfg.Client,
		Limiter:     cfg.Limiter,
		MaxAttempts: cfg.MaxAttempts,
		Recorder:    cfg.Recorder,
		Logger:      logger,
	})

	// Hash the date-free prompt text so recorded calls match the hash the
	// registry publishes for the same key.
	stableText := requirements.NewGenerator(cfg.Draft).Generate()

	return &RequirementsAgent{
		engine:       engine,
		systemPrompt: systemPrompt,
		promptKey:    promptKey,
		promptHash:   prompt.HashText(stableText),
		schemaRaw:    schemaRaw,
		draft:        cfg.Draft,
		model:        cfg.Model,
		temperature:  cfg.Temperature,
		maxTokens:    cfg.MaxTokens,
		logger:       logger,
	}, nil
}

// SystemPrompt returns the assembled system prompt.
func (a *RequirementsAgent) SystemPrompt() string {
	return a.systemPrompt
}

// Draft reports whether the agent uses the loose output contract.
func (a *RequirementsAgent) Draft() bool {
	return a.draft
}

// Run extracts the strict three-field requirements from the request.
// The input is validated before any backend call is made.
func (a *RequirementsAgent) Run(ctx context.Context, req requirements.Request) (*requirements.Result, error) {
	if a.draft {
		return nil, fmt.Errorf("agent is configured for draft output, use RunDraft")
	}

	raw, err := a.extract(ctx, req)
	if err != nil {
		return nil, err
	}
	return requirements.ParseResult(raw.Output)
}

// RunDraft extracts the loose draft-contract output from the request.
func (a *RequirementsAgent) RunDraft(ctx context.Context, req requirements.Request) (*requirements.DraftResult, error) {
	if !a.draft {
		return nil, fmt.Errorf("agent is configured for strict output, use Run")
	}

	raw, err := a.extract(ctx, req)
	if err != nil {
		return nil, err
	}
	return requirements.ParseDraftResult(raw.Output)
}

func (a *RequirementsAgent) extract(ctx context.Context, req requirements.Request) (*extract.Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	userPrompt, err := requirements.UserPrompt(req)
	if err != nil {
		return nil, fmt.Errorf("failed to render user prompt: %w", err)
	}

	result, err := a.engine.Extract(ctx, extract.Request{
		SystemPrompt: a.systemPrompt,
		UserMessage:  userPrompt,
		Schema:       a.schemaRaw,
		Model:        a.model,
		Temperature:  a.temperature,
		MaxTokens:    a.maxTokens,
		PromptKey:    a.promptKey,
		PromptHash:   a.promptHash,
	})
	if err != nil {
		return nil, err
	}

	a.logger.Debug("requirements extracted",
		"attempts", result.Attempts,
		"model", result.Model,
		"elapsed", result.Elapsed)
	return result, nil
}
