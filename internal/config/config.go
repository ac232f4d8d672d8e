// Package config loads settings from ~/.config/bmtidy/config.yaml with
// BMTIDY_-prefixed environment overrides. API keys are never stored in
// the config file; they come from the provider's usual environment
// variable (bring your own key).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/nikbrunner/bmtidy/internal/ai"
)

type Config struct {
	DataDir string   `mapstructure:"data_dir"`
	AI      AIConfig `mapstructure:"ai"`
}

type AIConfig struct {
	Provider       string  `mapstructure:"provider"` // anthropic | openai | openrouter
	Model          string  `mapstructure:"model"`
	BaseURL        string  `mapstructure:"base_url"`
	BatchSize      int     `mapstructure:"batch_size"`
	CacheTTLHours  int     `mapstructure:"cache_ttl_hours"`
	CostPerMTokIn  float64 `mapstructure:"cost_per_mtok_in"`
	CostPerMTokOut float64 `mapstructure:"cost_per_mtok_out"`

	DailyTokens   int     `mapstructure:"daily_tokens"`
	MonthlyTokens int     `mapstructure:"monthly_tokens"`
	DailyCost     float64 `mapstructure:"daily_cost"`
	MonthlyCost   float64 `mapstructure:"monthly_cost"`
}

func Load() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	defaultDataDir := filepath.Join(homeDir, ".config", "bmtidy")

	viper.SetDefault("data_dir", defaultDataDir)
	viper.SetDefault("ai.provider", "anthropic")
	viper.SetDefault("ai.model", "claude-haiku-4-5-20251001")
	viper.SetDefault("ai.batch_size", 20)
	viper.SetDefault("ai.cache_ttl_hours", 24)

	// Environment variable overrides
	viper.SetEnvPrefix("BMTIDY")
	viper.AutomaticEnv()
	viper.BindEnv("data_dir", "BMTIDY_DATA_DIR")
	viper.BindEnv("ai.provider", "BMTIDY_AI_PROVIDER")
	viper.BindEnv("ai.model", "BMTIDY_AI_MODEL")
	viper.BindEnv("ai.base_url", "BMTIDY_AI_BASE_URL")
	viper.BindEnv("ai.batch_size", "BMTIDY_AI_BATCH_SIZE")

	// Config file
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(defaultDataDir)

	// Read config file if exists (ignore error if not found)
	_ = viper.ReadInConfig()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Ensure data directory exists
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "bmtidy.db")
}

func (c *Config) CachePath() string {
	return filepath.Join(c.DataDir, "ai-cache.json")
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.AI.CacheTTLHours) * time.Hour
}

func (c *Config) UsageLimits() ai.UsageLimits {
	return ai.UsageLimits{
		DailyTokens:   c.AI.DailyTokens,
		MonthlyTokens: c.AI.MonthlyTokens,
		DailyCost:     c.AI.DailyCost,
		MonthlyCost:   c.AI.MonthlyCost,
	}
}

// NewProvider builds the configured AI provider, reading the API key
// from the provider's usual environment variable.
func (c *Config) NewProvider() (ai.Provider, error) {
	switch c.AI.Provider {
	case "anthropic":
		return ai.NewAnthropicProvider(os.Getenv("ANTHROPIC_API_KEY"), c.AI.Model)
	case "openai":
		return ai.NewOpenAIProvider(os.Getenv("OPENAI_API_KEY"), c.AI.Model, c.AI.BaseURL, "openai")
	case "openrouter":
		baseURL := c.AI.BaseURL
		if baseURL == "" {
			baseURL = "https://openrouter.ai/api/v1"
		}
		return ai.NewOpenAIProvider(os.Getenv("OPENROUTER_API_KEY"), c.AI.Model, baseURL, "openrouter")
	default:
		return nil, fmt.Errorf("unknown AI provider %q", c.AI.Provider)
	}
}
