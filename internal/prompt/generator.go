// Package prompt assembles system prompts from static instruction blocks and
// dynamic context providers, and keeps a registry of embedded prompt texts
// for traceability.
package prompt

import "strings"

// Section headings, rendered in this order.
const (
	headingBackground   = "# IDENTITY and PURPOSE"
	headingSteps        = "# INTERNAL ASSISTANT STEPS"
	headingContext      = "# EXTRA INFORMATION AND CONTEXT"
	headingInstructions = "# OUTPUT INSTRUCTIONS"
)

// Generator composes a system prompt from ordered parts. Assembly is
// deterministic pure string composition; empty sections are omitted.
type Generator struct {
	// Background describes the agent's purpose.
	Background []string

	// Steps is an optional ordered list of instructions the model should
	// follow internally.
	Steps []string

	// OutputInstructions constrain the output shape.
	OutputInstructions []string

	// Providers contribute dynamic facts, each under its own sub-heading.
	Providers []ContextProvider
}

// Generate assembles the full system prompt.
func (g *Generator) Generate() string {
	var b strings.Builder

	writeList(&b, headingBackground, g.Background)
	writeList(&b, headingSteps, g.Steps)

	if len(g.Providers) > 0 {
		b.WriteString(headingContext)
		b.WriteString("\n")
		for _, p := range g.Providers {
			b.WriteString("## ")
			b.WriteString(p.Title())
			b.WriteString("\n")
			b.WriteString(p.Info())
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	writeList(&b, headingInstructions, g.OutputInstructions)

	return strings.TrimRight(b.String(), "\n") + "\n"
}

func writeList(b *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString(heading)
	b.WriteString("\n")
	for _, item := range items {
		b.WriteString("- ")
		b.WriteString(item)
		b.WriteString("\n")
	}
	b.WriteString("\n")
}
