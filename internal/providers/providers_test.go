package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestMockClient(t *testing.T) {
	t.Run("chat", func(t *testing.T) {
		c := NewMockClient()
		c.ResponseText = "hello world"

		result, err := c.Chat(context.Background(), &ChatRequest{
			Model: "test-model",
			Messages: []Message{
				{Role: "user", Content: "test"},
			},
		})

		if err != nil {
			t.Fatalf("Chat() error = %v", err)
		}
		if !result.Success {
			t.Errorf("Success = false, want true")
		}
		if result.Content != "hello world" {
			t.Errorf("Content = %q, want %q", result.Content, "hello world")
		}
		if c.RequestCount() != 1 {
			t.Errorf("RequestCount = %d, want 1", c.RequestCount())
		}
	})

	t.Run("structured output", func(t *testing.T) {
		c := NewMockClient()
		c.ResponseJSON = json.RawMessage(`{"destination":"Paris"}`)

		result, err := c.Chat(context.Background(), &ChatRequest{
			Messages:       []Message{{Role: "user", Content: "test"}},
			ResponseFormat: &ResponseFormat{Type: "json_schema"},
		})
		if err != nil {
			t.Fatalf("Chat() error = %v", err)
		}
		if string(result.ParsedJSON) != `{"destination":"Paris"}` {
			t.Errorf("ParsedJSON = %s", result.ParsedJSON)
		}
		if result.Content != `{"destination":"Paris"}` {
			t.Errorf("Content = %q", result.Content)
		}
	})

	t.Run("scripted responses repeat last", func(t *testing.T) {
		c := NewMockClient()
		c.Responses = []string{"first", "second"}

		for i, want := range []string{"first", "second", "second"} {
			result, err := c.Chat(context.Background(), &ChatRequest{
				Messages: []Message{{Role: "user", Content: "test"}},
			})
			if err != nil {
				t.Fatalf("Chat() #%d error = %v", i, err)
			}
			if result.Content != want {
				t.Errorf("Chat() #%d Content = %q, want %q", i, result.Content, want)
			}
		}
	})

	t.Run("fail mode", func(t *testing.T) {
		c := NewMockClient()
		c.ShouldFail = true

		result, err := c.Chat(context.Background(), &ChatRequest{
			Messages: []Message{{Role: "user", Content: "test"}},
		})
		if err == nil {
			t.Fatal("Chat() expected error, got nil")
		}
		if result.Success {
			t.Error("Success = true, want false")
		}
	})

	t.Run("fail after N", func(t *testing.T) {
		c := NewMockClient()
		c.FailAfter = 2

		for i := 0; i < 2; i++ {
			if _, err := c.Chat(context.Background(), &ChatRequest{
				Messages: []Message{{Role: "user", Content: "test"}},
			}); err != nil {
				t.Fatalf("Chat() #%d error = %v", i, err)
			}
		}
		if _, err := c.Chat(context.Background(), &ChatRequest{
			Messages: []Message{{Role: "user", Content: "test"}},
		}); err == nil {
			t.Fatal("Chat() #3 expected error, got nil")
		}
	})

	t.Run("records requests", func(t *testing.T) {
		c := NewMockClient()
		_, _ = c.Chat(context.Background(), &ChatRequest{
			Messages: []Message{{Role: "system", Content: "sys"}, {Role: "user", Content: "hi"}},
		})

		reqs := c.Requests()
		if len(reqs) != 1 {
			t.Fatalf("len(Requests()) = %d, want 1", len(reqs))
		}
		if reqs[0].Messages[0].Content != "sys" {
			t.Errorf("first message = %q, want %q", reqs[0].Messages[0].Content, "sys")
		}

		c.Reset()
		if c.RequestCount() != 0 || len(c.Requests()) != 0 {
			t.Error("Reset() did not clear state")
		}
	})
}

func TestRateLimitError(t *testing.T) {
	rle := &RateLimitError{Message: "slow down", RetryAfter: 2 * time.Second, StatusCode: 429}
	wrapped := fmt.Errorf("call failed: %w", rle)

	got, ok := IsRateLimitError(wrapped)
	if !ok {
		t.Fatal("IsRateLimitError() = false, want true")
	}
	if got.RetryAfter != 2*time.Second {
		t.Errorf("RetryAfter = %v, want 2s", got.RetryAfter)
	}

	if _, ok := IsRateLimitError(errors.New("other")); ok {
		t.Error("IsRateLimitError(other) = true, want false")
	}
}

func TestParseRetryAfter(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
	}{
		{"", 0},
		{"2", 2 * time.Second},
		{"0.5", 500 * time.Millisecond},
		{"garbage", 0},
		{"-1", 0},
	}
	for _, tc := range cases {
		if got := parseRetryAfter(tc.in); got != tc.want {
			t.Errorf("parseRetryAfter(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestDecodeStructuredSpec(t *testing.T) {
	rf := &ResponseFormat{
		Type:       "json_schema",
		JSONSchema: json.RawMessage(`{"name":"travel","strict":true,"schema":{"type":"object"}}`),
	}
	spec, err := decodeStructuredSpec(rf)
	if err != nil {
		t.Fatalf("decodeStructuredSpec() error = %v", err)
	}
	if spec.Name != "travel" || !spec.Strict {
		t.Errorf("spec = %+v", spec)
	}
	if spec.Schema["type"] != "object" {
		t.Errorf("schema type = %v, want object", spec.Schema["type"])
	}

	if spec, err := decodeStructuredSpec(nil); err != nil || spec != nil {
		t.Errorf("decodeStructuredSpec(nil) = %v, %v", spec, err)
	}
}
