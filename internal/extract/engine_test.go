package extract

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/voyagehq/waypoint/internal/llmcall"
	"github.com/voyagehq/waypoint/internal/providers"
)

var testSchema = json.RawMessage(`{
	"name":"travel_requirements",
	"strict":true,
	"schema":{
		"type":"object",
		"properties":{
			"user_requirements":{
				"type":"object",
				"properties":{
					"destination":{"type":"string","minLength":1},
					"departure_date":{"type":"string","pattern":"^\\d{4}-\\d{2}-\\d{2}$"},
					"departure_time":{"type":"string","minLength":1}
				},
				"required":["destination","departure_date","departure_time"],
				"additionalProperties":false
			}
		},
		"required":["user_requirements"],
		"additionalProperties":false
	}
}`)

const validPayload = `{"user_requirements":{"destination":"Paris","departure_date":"2024-06-02","departure_time":"morning"}}`

func newTestEngine(client providers.LLMClient, maxAttempts int) *Engine {
	return New(Config{
		Client:      client,
		MaxAttempts: maxAttempts,
	})
}

func TestEngine_ValidFirstAttempt(t *testing.T) {
	mock := providers.NewMockClient()
	mock.Responses = []string{validPayload}

	e := newTestEngine(mock, 3)
	result, err := e.Extract(context.Background(), Request{
		SystemPrompt: "extract travel requirements",
		UserMessage:  "Paris tomorrow morning",
		Schema:       testSchema,
	})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if result.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", result.Attempts)
	}
	if !strings.Contains(string(result.Output), `"destination":"Paris"`) {
		t.Errorf("Output = %s", result.Output)
	}
	if mock.RequestCount() != 1 {
		t.Errorf("backend calls = %d, want 1", mock.RequestCount())
	}
}

func TestEngine_RepairThenValid(t *testing.T) {
	mock := providers.NewMockClient()
	mock.Responses = []string{
		`{"user_requirements":{"destination":"Paris","departure_date":"tomorrow","departure_time":"morning"}}`,
		validPayload,
	}

	e := newTestEngine(mock, 3)
	result, err := e.Extract(context.Background(), Request{
		SystemPrompt: "extract travel requirements",
		UserMessage:  "Paris tomorrow morning",
		Schema:       testSchema,
	})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if result.Attempts != 2 {
		t.Errorf("Attempts = %d, want 2", result.Attempts)
	}

	// The second request must carry the repair conversation: the rejected
	// output as an assistant turn and a repair instruction as a user turn.
	reqs := mock.Requests()
	if len(reqs) != 2 {
		t.Fatalf("backend calls = %d, want 2", len(reqs))
	}
	second := reqs[1].Messages
	if len(second) != 4 {
		t.Fatalf("second request has %d messages, want 4", len(second))
	}
	if second[2].Role != "assistant" || !strings.Contains(second[2].Content, "tomorrow") {
		t.Errorf("assistant turn = %+v", second[2])
	}
	if second[3].Role != "user" || !strings.Contains(second[3].Content, "Validation issue") {
		t.Errorf("repair turn = %+v", second[3])
	}
}

func TestEngine_Exhaustion(t *testing.T) {
	mock := providers.NewMockClient()
	// Missing departure_time every time; must never yield a partial result.
	mock.Responses = []string{
		`{"user_requirements":{"destination":"Paris","departure_date":"2024-06-02"}}`,
	}

	e := newTestEngine(mock, 3)
	result, err := e.Extract(context.Background(), Request{
		SystemPrompt: "extract travel requirements",
		UserMessage:  "Paris tomorrow",
		Schema:       testSchema,
	})
	if result != nil {
		t.Fatalf("result = %+v, want nil", result)
	}
	if !errors.Is(err, ErrSchemaExhausted) {
		t.Fatalf("error = %v, want ErrSchemaExhausted", err)
	}
	if mock.RequestCount() != 3 {
		t.Errorf("backend calls = %d, want 3", mock.RequestCount())
	}
}

func TestEngine_BackendErrorPropagates(t *testing.T) {
	mock := providers.NewMockClient()
	mock.ShouldFail = true

	e := newTestEngine(mock, 3)
	result, err := e.Extract(context.Background(), Request{
		SystemPrompt: "extract travel requirements",
		UserMessage:  "Paris tomorrow morning",
		Schema:       testSchema,
	})
	if result != nil {
		t.Fatal("expected nil result on backend failure")
	}
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrSchemaExhausted) {
		t.Error("backend failure must not masquerade as schema exhaustion")
	}
	// Backend failures are terminal; no repair attempts follow.
	if mock.RequestCount() != 1 {
		t.Errorf("backend calls = %d, want 1", mock.RequestCount())
	}
}

func TestEngine_NonJSONOutputRetried(t *testing.T) {
	mock := providers.NewMockClient()
	mock.Responses = []string{
		"I'm sorry, I can't produce JSON right now.",
		"```json\n" + validPayload + "\n```",
	}

	e := newTestEngine(mock, 3)
	result, err := e.Extract(context.Background(), Request{
		SystemPrompt: "extract travel requirements",
		UserMessage:  "Paris tomorrow morning",
		Schema:       testSchema,
	})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if result.Attempts != 2 {
		t.Errorf("Attempts = %d, want 2", result.Attempts)
	}
}

func TestEngine_RecordsAttempts(t *testing.T) {
	mock := providers.NewMockClient()
	mock.Responses = []string{
		`not json`,
		validPayload,
	}
	rec := llmcall.NewRecorder(nil)

	e := New(Config{Client: mock, MaxAttempts: 3, Recorder: rec})
	if _, err := e.Extract(context.Background(), Request{
		SystemPrompt: "extract travel requirements",
		UserMessage:  "Paris tomorrow morning",
		Schema:       testSchema,
		PromptKey:    "agents.requirements.system",
	}); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	calls := rec.Calls()
	if len(calls) != 2 {
		t.Fatalf("recorded calls = %d, want 2", len(calls))
	}
	if calls[0].Attempt != 1 || calls[1].Attempt != 2 {
		t.Error("attempt numbers wrong")
	}
	if calls[0].PromptKey != "agents.requirements.system" {
		t.Errorf("PromptKey = %q", calls[0].PromptKey)
	}
	if calls[0].RequestID == "" || calls[0].RequestID != calls[1].RequestID {
		t.Error("attempts should share a request ID")
	}
}

func TestEngine_MissingSchemaRejected(t *testing.T) {
	e := newTestEngine(providers.NewMockClient(), 3)
	if _, err := e.Extract(context.Background(), Request{
		SystemPrompt: "x",
		UserMessage:  "y",
	}); err == nil {
		t.Error("expected error for missing schema")
	}
}
