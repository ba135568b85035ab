// Package requirements defines the travel requirements extraction agent:
// input/output contracts, prompt text, and result decoding.
package requirements

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Request is the input record: one free-text message from the user.
type Request struct {
	ChatMessage string `json:"chat_message"`
}

// Validate rejects degenerate input before any backend call is made.
func (r Request) Validate() error {
	if strings.TrimSpace(r.ChatMessage) == "" {
		return fmt.Errorf("chat_message must not be empty")
	}
	return nil
}

// UserRequirements is the structured travel requirements record.
type UserRequirements struct {
	// Destination the user wants to travel to.
	Destination string `json:"destination"`
	// DepartureDate in YYYY-MM-DD form.
	DepartureDate string `json:"departure_date"`
	// DepartureTime as HH:MM or a textual time of day ("morning").
	DepartureTime string `json:"departure_time"`
}

// Result is the strict extraction output.
type Result struct {
	UserRequirements UserRequirements `json:"user_requirements"`
}

// DraftResult is the loose first-iteration output: a free-form requirements
// mapping plus a probe field for exercising the output contract.
type DraftResult struct {
	TestResponse     string            `json:"test_response"`
	UserRequirements map[string]string `json:"user_requirements"`
}

// ExtractionSchema is the strict output contract: a fixed three-field
// requirements record. The departure date pattern is enforced mechanically,
// not just requested in the prompt.
var ExtractionSchema = map[string]any{
	"name":   "travel_requirements",
	"strict": true,
	"schema": map[string]any{
		"type": "object",
		"properties": map[string]any{
			"user_requirements": map[string]any{
				"type":        "object",
				"description": "The user's structured travel requirements.",
				"properties": map[string]any{
					"destination": map[string]any{
						"type":        "string",
						"minLength":   1,
						"description": "Where the user wants to travel to.",
					},
					"departure_date": map[string]any{
						"type":        "string",
						"pattern":     `^\d{4}-\d{2}-\d{2}$`,
						"description": "Departure date as an ISO calendar date (YYYY-MM-DD).",
					},
					"departure_time": map[string]any{
						"type":        "string",
						"minLength":   1,
						"description": "Departure time as a 24-hour clock time (HH:MM) or free text.",
					},
				},
				"required":             []string{"destination", "departure_date", "departure_time"},
				"additionalProperties": false,
			},
		},
		"required":             []string{"user_requirements"},
		"additionalProperties": false,
	},
}

// DraftExtractionSchema is the loose output contract: an open-ended
// requirements mapping with at least one entry.
var DraftExtractionSchema = map[string]any{
	"name":   "travel_requirements_draft",
	"strict": true,
	"schema": map[string]any{
		"type": "object",
		"properties": map[string]any{
			"test_response": map[string]any{
				"type":        "string",
				"description": "A test response to check the output schema.",
			},
			"user_requirements": map[string]any{
				"type":                 "object",
				"minProperties":        1,
				"additionalProperties": map[string]any{"type": "string"},
				"description":          "The user's travel requirements as key-value pairs. At least one pair.",
			},
		},
		"required":             []string{"test_response", "user_requirements"},
		"additionalProperties": false,
	},
}

// SchemaJSON marshals the strict output contract wrapper.
func SchemaJSON() (json.RawMessage, error) {
	return marshalSchema(ExtractionSchema)
}

// DraftSchemaJSON marshals the loose output contract wrapper.
func DraftSchemaJSON() (json.RawMessage, error) {
	return marshalSchema(DraftExtractionSchema)
}

func marshalSchema(schema map[string]any) (json.RawMessage, error) {
	b, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal extraction schema: %w", err)
	}
	return b, nil
}

// ParseResult decodes a schema-conformant strict output document.
func ParseResult(raw json.RawMessage) (*Result, error) {
	var result Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to decode requirements result: %w", err)
	}
	return &result, nil
}

// ParseDraftResult decodes a schema-conformant draft output document.
func ParseDraftResult(raw json.RawMessage) (*DraftResult, error) {
	var result DraftResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to decode draft requirements result: %w", err)
	}
	return &result, nil
}
