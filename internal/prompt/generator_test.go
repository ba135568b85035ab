package prompt

import (
	"strings"
	"testing"
	"time"
)

type staticProvider struct {
	title string
	info  string
}

func (p staticProvider) Title() string { return p.title }
func (p staticProvider) Info() string  { return p.info }

func TestGenerator_Generate(t *testing.T) {
	g := &Generator{
		Background:         []string{"You are a travel requirements generator."},
		Steps:              []string{"Analyse the input.", "Translate it to structured form."},
		OutputInstructions: []string{"Output exactly the requested fields."},
		Providers: []ContextProvider{
			staticProvider{title: "Current Date", info: "Current date in format YYYY-MM-DD: 2024-06-01"},
		},
	}

	got := g.Generate()

	sections := []string{
		"# IDENTITY and PURPOSE",
		"# INTERNAL ASSISTANT STEPS",
		"# EXTRA INFORMATION AND CONTEXT",
		"## Current Date",
		"Current date in format YYYY-MM-DD: 2024-06-01",
		"# OUTPUT INSTRUCTIONS",
	}
	last := -1
	for _, s := range sections {
		idx := strings.Index(got, s)
		if idx < 0 {
			t.Fatalf("prompt missing section %q:\n%s", s, got)
		}
		if idx < last {
			t.Errorf("section %q out of order", s)
		}
		last = idx
	}
}

func TestGenerator_Deterministic(t *testing.T) {
	g := &Generator{
		Background:         []string{"a"},
		OutputInstructions: []string{"b"},
		Providers:          []ContextProvider{NewCurrentDateProviderAt("Current Date", time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))},
	}
	if g.Generate() != g.Generate() {
		t.Error("Generate() not deterministic")
	}
}

func TestGenerator_OmitsEmptySections(t *testing.T) {
	g := &Generator{Background: []string{"only background"}}
	got := g.Generate()

	if strings.Contains(got, "# INTERNAL ASSISTANT STEPS") {
		t.Error("empty steps section rendered")
	}
	if strings.Contains(got, "# EXTRA INFORMATION AND CONTEXT") {
		t.Error("empty context section rendered")
	}
	if strings.Contains(got, "# OUTPUT INSTRUCTIONS") {
		t.Error("empty instructions section rendered")
	}
	if !strings.Contains(got, "- only background") {
		t.Errorf("background missing:\n%s", got)
	}
}
