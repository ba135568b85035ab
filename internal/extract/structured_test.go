package extract

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseStructuredJSON(t *testing.T) {
	t.Run("plain object", func(t *testing.T) {
		got, err := ParseStructuredJSON(`{"ok":true}`)
		if err != nil {
			t.Fatalf("ParseStructuredJSON() error = %v", err)
		}
		var parsed map[string]any
		if err := json.Unmarshal(got, &parsed); err != nil {
			t.Fatalf("failed to unmarshal parsed JSON: %v", err)
		}
		if ok, _ := parsed["ok"].(bool); !ok {
			t.Fatalf("expected ok=true, got %#v", parsed)
		}
	})

	t.Run("strips code fence", func(t *testing.T) {
		got, err := ParseStructuredJSON("```json\n{\"ok\":true}\n```")
		if err != nil {
			t.Fatalf("ParseStructuredJSON() error = %v", err)
		}
		if !strings.Contains(string(got), `"ok":true`) {
			t.Errorf("got %s", got)
		}
	})

	t.Run("recovers object from prose", func(t *testing.T) {
		got, err := ParseStructuredJSON(`Here is the result: {"destination":"Paris"} hope that helps!`)
		if err != nil {
			t.Fatalf("ParseStructuredJSON() error = %v", err)
		}
		if !strings.Contains(string(got), `"destination":"Paris"`) {
			t.Errorf("got %s", got)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if _, err := ParseStructuredJSON("   "); err == nil {
			t.Error("expected error for empty input")
		}
	})

	t.Run("no JSON present", func(t *testing.T) {
		if _, err := ParseStructuredJSON("sorry, I cannot help with that"); err == nil {
			t.Error("expected error for non-JSON output")
		}
	})
}

func TestValidateStructuredJSON(t *testing.T) {
	schema := json.RawMessage(`{
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

	t.Run("conformant", func(t *testing.T) {
		doc := json.RawMessage(`{"user_requirements":{"destination":"Paris","departure_date":"2024-06-02","departure_time":"morning"}}`)
		if err := ValidateStructuredJSON(schema, doc); err != nil {
			t.Fatalf("ValidateStructuredJSON() error = %v", err)
		}
	})

	t.Run("missing field", func(t *testing.T) {
		doc := json.RawMessage(`{"user_requirements":{"destination":"Paris","departure_date":"2024-06-02"}}`)
		if err := ValidateStructuredJSON(schema, doc); err == nil {
			t.Error("expected error for missing departure_time")
		}
	})

	t.Run("bad date format", func(t *testing.T) {
		doc := json.RawMessage(`{"user_requirements":{"destination":"Paris","departure_date":"June 2nd","departure_time":"morning"}}`)
		if err := ValidateStructuredJSON(schema, doc); err == nil {
			t.Error("expected error for non-ISO date")
		}
	})

	t.Run("wrong type", func(t *testing.T) {
		doc := json.RawMessage(`{"user_requirements":"Paris tomorrow morning"}`)
		if err := ValidateStructuredJSON(schema, doc); err == nil {
			t.Error("expected error for wrong type")
		}
	})

	t.Run("empty schema is a no-op", func(t *testing.T) {
		if err := ValidateStructuredJSON(nil, json.RawMessage(`{}`)); err != nil {
			t.Errorf("ValidateStructuredJSON(nil schema) error = %v", err)
		}
	})
}

func TestExtractValidationSchema(t *testing.T) {
	inner := `{"type":"object"}`

	cases := []struct {
		name string
		in   string
	}{
		{"name wrapper", `{"name":"x","strict":true,"schema":` + inner + `}`},
		{"json_schema wrapper", `{"type":"json_schema","json_schema":{"name":"x","schema":` + inner + `}}`},
		{"raw document", inner},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := extractValidationSchema(json.RawMessage(tc.in))
			if err != nil {
				t.Fatalf("extractValidationSchema() error = %v", err)
			}
			if string(got) != inner {
				t.Errorf("got %s, want %s", got, inner)
			}
		})
	}
}

func TestRepairPrompt(t *testing.T) {
	schema := json.RawMessage(`{"schema":{"type":"object"}}`)
	got := RepairPrompt(schema, `{"bad":1}`, ErrSchemaExhausted)

	for _, want := range []string{"ONLY valid JSON", `{"bad":1}`, string(schema)} {
		if !strings.Contains(got, want) {
			t.Errorf("RepairPrompt missing %q", want)
		}
	}

	long := strings.Repeat("x", 20000)
	got = RepairPrompt(schema, long, ErrSchemaExhausted)
	if !strings.Contains(got, "[truncated]") {
		t.Error("long output should be truncated")
	}
}
