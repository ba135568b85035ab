package main

import (
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/voyagehq/waypoint/internal/agents"
	"github.com/voyagehq/waypoint/internal/agents/requirements"
	"github.com/voyagehq/waypoint/internal/cli"
	"github.com/voyagehq/waypoint/internal/config"
	"github.com/voyagehq/waypoint/internal/llmcall"
	"github.com/voyagehq/waypoint/internal/providers"
)

const defaultChatMessage = "I want to travel to Paris tomorrow and leave in the morning."

var (
	extractMessage     string
	extractProvider    string
	extractModel       string
	extractTemperature float64
	extractMaxAttempts int
	extractDraft       bool
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract structured travel requirements from a message",
	Long: `Extract runs the requirements agent against a free-text travel message
and prints the structured result together with call statistics.

With --draft the agent uses the loose output contract: a test_response
string plus an open-ended requirements map.`,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVarP(
		&extractMessage, "message", "m", defaultChatMessage, "travel message to extract requirements from",
	)
	extractCmd.Flags().StringVarP(
		&extractProvider, "provider", "p", "", "LLM provider name (default: from config)",
	)
	extractCmd.Flags().StringVar(
		&extractModel, "model", "", "model override (default: provider default)",
	)
	extractCmd.Flags().Float64Var(
		&extractTemperature, "temperature", 0, "sampling temperature",
	)
	extractCmd.Flags().IntVar(
		&extractMaxAttempts, "max-attempts", 0, "schema repair attempts (default: from config)",
	)
	extractCmd.Flags().BoolVar(
		&extractDraft, "draft", false, "use the loose draft output contract",
	)
}

// extractOutput is the command's printed result.
type extractOutput struct {
	ChatMessage string                    `json:"chat_message" yaml:"chat_message"`
	Result      *requirements.Result      `json:"result,omitempty" yaml:"result,omitempty"`
	Draft       *requirements.DraftResult `json:"draft,omitempty" yaml:"draft,omitempty"`
	Stats       extractStats              `json:"stats" yaml:"stats"`
	Calls       []llmcall.Call            `json:"calls,omitempty" yaml:"calls,omitempty"`
}

type extractStats struct {
	Provider     string `json:"provider" yaml:"provider"`
	Model        string `json:"model,omitempty" yaml:"model,omitempty"`
	TotalCalls   int    `json:"total_calls" yaml:"total_calls"`
	InputTokens  int    `json:"input_tokens" yaml:"input_tokens"`
	OutputTokens int    `json:"output_tokens" yaml:"output_tokens"`
}

func runExtract(cmd *cobra.Command, args []string) error {
	// Load .env if present, ignore if missing
	_ = godotenv.Load()

	mgr, err := config.NewManager(cfgFile)
	if err != nil {
		return err
	}
	cfg := mgr.Get()

	providerName := extractProvider
	if providerName == "" {
		providerName = cfg.Defaults.LLMProvider
	}

	registry := providers.NewRegistryFromConfig(cfg.ToProviderRegistryConfig())

	// Pick up config file edits mid-run; extraction can sit in rate-limit
	// waits and repair retries for a while.
	mgr.OnChange(func(c *config.Config) {
		registry.Reload(c.ToProviderRegistryConfig())
	})
	mgr.WatchConfig()

	client, err := registry.Get(providerName)
	if err != nil {
		return fmt.Errorf("provider %q not available (enabled with an API key?): %w", providerName, err)
	}

	var limiter *providers.RateLimiter
	if provCfg, ok := cfg.GetLLMProvider(providerName); ok && provCfg.RateLimit > 0 {
		limiter = providers.NewRateLimiter(int(provCfg.RateLimit))
	}

	maxAttempts := extractMaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = cfg.Defaults.MaxAttempts
	}
	model := extractModel
	if model == "" {
		model = cfg.Defaults.Model
	}
	temperature := extractTemperature
	if !cmd.Flags().Changed("temperature") {
		temperature = cfg.Defaults.Temperature
	}

	recorder := llmcall.NewRecorder(slog.Default())
	agent, err := agents.NewRequirementsAgent(agents.RequirementsConfig{
		Client:      client,
		Limiter:     limiter,
		Model:       model,
		Temperature: temperature,
		MaxTokens:   cfg.Defaults.MaxTokens,
		MaxAttempts: maxAttempts,
		Draft:       extractDraft,
		Recorder:    recorder,
	})
	if err != nil {
		return err
	}

	req := requirements.Request{ChatMessage: extractMessage}
	out := extractOutput{ChatMessage: extractMessage}

	if extractDraft {
		out.Draft, err = agent.RunDraft(cmd.Context(), req)
	} else {
		out.Result, err = agent.Run(cmd.Context(), req)
	}
	if err != nil {
		return err
	}

	summary := recorder.Summary()
	out.Stats = extractStats{
		Provider:     client.Name(),
		Model:        model,
		TotalCalls:   summary.TotalCalls,
		InputTokens:  summary.InputTokens,
		OutputTokens: summary.OutputTokens,
	}
	out.Calls = recorder.Calls()

	return cli.Output(out)
}
