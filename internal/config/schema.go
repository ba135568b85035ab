package config

// Config holds waypoint configuration.
// Loaded from config.yaml in the working directory or $HOME/.waypoint.
type Config struct {
	LLMProviders map[string]LLMProviderCfg `mapstructure:"llm_providers" yaml:"llm_providers"`
	Defaults     DefaultsCfg               `mapstructure:"defaults" yaml:"defaults"`
}

// LLMProviderCfg configures an LLM provider.
type LLMProviderCfg struct {
	Type       string  `mapstructure:"type" yaml:"type"`               // "openrouter", "openai", "mock"
	Model      string  `mapstructure:"model" yaml:"model"`             // Default model name
	APIKey     string  `mapstructure:"api_key" yaml:"api_key"`         // API key (supports ${ENV_VAR} syntax)
	BaseURL    string  `mapstructure:"base_url" yaml:"base_url"`       // Endpoint override
	RateLimit  float64 `mapstructure:"rate_limit" yaml:"rate_limit"`   // Requests per minute (0 = unlimited)
	MaxRetries int     `mapstructure:"max_retries" yaml:"max_retries"` // Transport retry attempts
	Enabled    bool    `mapstructure:"enabled" yaml:"enabled"`
}

// DefaultsCfg specifies default agent settings.
type DefaultsCfg struct {
	LLMProvider string  `mapstructure:"llm_provider" yaml:"llm_provider"` // Default LLM provider
	Model       string  `mapstructure:"model" yaml:"model"`               // Model override (empty = provider default)
	Temperature float64 `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens" yaml:"max_tokens"`
	MaxAttempts int     `mapstructure:"max_attempts" yaml:"max_attempts"` // Schema repair attempts per extraction
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LLMProviders: map[string]LLMProviderCfg{
			"openrouter": {
				Type:    "openrouter",
				Model:   "openai/gpt-4o-mini",
				APIKey:  "${OPENROUTER_API_KEY}",
				Enabled: true,
			},
			"openai": {
				Type:    "openai",
				Model:   "gpt-4o-mini",
				APIKey:  "${OPENAI_API_KEY}",
				Enabled: true,
			},
		},
		Defaults: DefaultsCfg{
			LLMProvider: "openrouter",
			Temperature: 0,
			MaxAttempts: 3,
		},
	}
}

// GetLLMProvider returns an LLM provider config by name.
func (c *Config) GetLLMProvider(name string) (LLMProviderCfg, bool) {
	cfg, ok := c.LLMProviders[name]
	return cfg, ok
}

// EnabledLLMProviders returns all enabled LLM providers.
func (c *Config) EnabledLLMProviders() map[string]LLMProviderCfg {
	result := make(map[string]LLMProviderCfg)
	for name, cfg := range c.LLMProviders {
		if cfg.Enabled {
			result[name] = cfg
		}
	}
	return result
}
