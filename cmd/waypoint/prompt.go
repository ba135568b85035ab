package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/voyagehq/waypoint/internal/agents/requirements"
	"github.com/voyagehq/waypoint/internal/cli"
	"github.com/voyagehq/waypoint/internal/prompt"
)

var promptDraft bool

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Inspect the agent's prompts",
	Long: `Prompt prints the assembled system prompt, including the current-date
context section, without making any backend calls.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		gen := requirements.NewGenerator(promptDraft, prompt.NewCurrentDateProvider("Current date"))
		fmt.Println(gen.Generate())
		return nil
	},
}

var promptListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered prompts with hashes and variables",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry := prompt.NewRegistry()
		if err := requirements.RegisterPrompts(registry); err != nil {
			return err
		}
		return cli.Output(registry.List())
	},
}

func init() {
	promptCmd.Flags().BoolVar(&promptDraft, "draft", false, "show the loose draft contract prompt")
	promptCmd.AddCommand(promptListCmd)
}
