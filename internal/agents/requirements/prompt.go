package requirements

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"text/template"

	"github.com/voyagehq/waypoint/internal/prompt"
)

//go:embed user.tmpl
var userPromptTmpl string

var userTemplate = template.Must(template.New("user").Parse(userPromptTmpl))

// Background describes the agent's purpose.
var Background = []string{
	"You are a Requirements Generator that generates a set of requirements for the user's travel plans based on the user input.",
}

// Steps is the ordered instruction list for the strict contract.
var Steps = []string{
	"Analyse the user input and identify the travel information it contains.",
	"Use the available context to resolve relative dates and times.",
	"Translate the information into the structured requirements form.",
	"Check your output against the required fields and formats, and correct it until it conforms.",
}

// OutputInstructions constrain the strict output shape.
var OutputInstructions = []string{
	"The output must contain a user_requirements object with exactly 3 fields: destination, departure_date and departure_time.",
	"destination is the place the user wants to travel to.",
	"departure_date is the departure date in format YYYY-MM-DD, resolved against the current date.",
	"departure_time is the departure time, either as a 24-hour clock time (HH:MM) or the user's own wording.",
}

// DraftOutputInstructions constrain the loose first-iteration output shape.
var DraftOutputInstructions = []string{
	"Analyse the user input and provide an output which captures the information provided.",
	"The output should contain 2 fields: test_response and user_requirements.",
	"test_response should be a string that is a test response to check the output schema.",
	"user_requirements should be a dictionary containing the user's travel requirements. It should have at least one key-value pair.",
}

// NewGenerator builds the system prompt generator for the agent.
// Draft mode drops the step list and uses the loose output instructions,
// matching the agent's first iteration.
func NewGenerator(draft bool, providers ...prompt.ContextProvider) *prompt.Generator {
	if draft {
		return &prompt.Generator{
			Background:         Background,
			OutputInstructions: DraftOutputInstructions,
			Providers:          providers,
		}
	}
	return &prompt.Generator{
		Background:         Background,
		Steps:              Steps,
		OutputInstructions: OutputInstructions,
		Providers:          providers,
	}
}

// UserPrompt renders the input record as the user turn.
func UserPrompt(req Request) (string, error) {
	msg, err := json.Marshal(req.ChatMessage)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	data := struct{ ChatMessageJSON string }{ChatMessageJSON: string(msg)}
	if err := userTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Prompt keys
const (
	SystemPromptKey      = "agents.requirements.system"
	DraftSystemPromptKey = "agents.requirements.draft_system"
	UserPromptKey        = "agents.requirements.user"
)

// RegisterPrompts registers the agent's prompts with the registry.
// System prompts are registered without context providers so their hashes
// stay stable across days.
func RegisterPrompts(r *prompt.Registry) error {
	if err := r.Register(prompt.Embedded{
		Key:         SystemPromptKey,
		Text:        NewGenerator(false).Generate(),
		Description: "Travel requirements extraction system prompt - strict three-field contract",
	}); err != nil {
		return err
	}
	if err := r.Register(prompt.Embedded{
		Key:         DraftSystemPromptKey,
		Text:        NewGenerator(true).Generate(),
		Description: "Travel requirements extraction system prompt - loose draft contract",
	}); err != nil {
		return err
	}
	return r.Register(prompt.Embedded{
		Key:         UserPromptKey,
		Text:        userPromptTmpl,
		Description: "Travel requirements user prompt - wraps the chat message as the input record",
	})
}
