package main

import (
	"github.com/spf13/cobra"

	"github.com/voyagehq/waypoint/internal/cli"
	"github.com/voyagehq/waypoint/version"
)

var (
	cfgFile      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "waypoint",
	Short: "LLM-powered travel requirements extraction",
	Long: `Waypoint turns free-text travel requests into structured requirements
using schema-constrained LLM extraction.

Given a message like "I want to travel to Paris tomorrow and leave in
the morning", it produces a validated record with the destination,
departure date and departure time. Outputs are checked against a JSON
schema and repaired through bounded re-prompting until they conform.`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.waypoint/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		cli.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(promptCmd)
	rootCmd.AddCommand(configCmd)
}
