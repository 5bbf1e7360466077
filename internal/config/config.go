package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pookan/stockbot/models"
	"github.com/rs/zerolog/log"
)

// ErrNoProviders is the configuration error reported when no LLM provider
// has both a credential and the enabled flag.
var ErrNoProviders = errors.New("no LLM provider is configured: set ANTHROPIC_API_KEY or OPENAI_API_KEY")

// Config holds all application configuration
type Config struct {
	DiscordToken  string
	TelegramToken string

	AnthropicAPIKey  string
	AnthropicModel   string
	AnthropicEnabled bool
	OpenAIAPIKey     string
	OpenAIModel      string
	OpenAIEnabled    bool
	ProviderOrder    []string
	LLMTimeout       time.Duration
	LLMMaxTokens     int

	MarketDataSource string
	TwelveAPIKey     string
	HistoryRange     string
	FetchTimeout     time.Duration
	RequestsPerSec   int
	BenchmarkTicker  string

	CommandPrefix       string
	PromptTemplate      string
	PromptTemplatesFile string

	LogLevel    string
	MetricsAddr string
}

// Load initializes configuration from environment variables
func Load() (*Config, error) {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}

	var cfg Config

	cfg.DiscordToken = os.Getenv("DISCORD_TOKEN")
	cfg.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")

	cfg.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")
	cfg.AnthropicModel = getEnvWithDefault("ANTHROPIC_MODEL", "claude-sonnet-4-0")
	cfg.AnthropicEnabled = getEnvBoolWithDefault("ANTHROPIC_ENABLED", true)
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.OpenAIModel = getEnvWithDefault("OPENAI_MODEL", "gpt-4")
	cfg.OpenAIEnabled = getEnvBoolWithDefault("OPENAI_ENABLED", true)
	cfg.ProviderOrder = splitList(getEnvWithDefault("LLM_PROVIDER_ORDER", "anthropic,openai"))
	cfg.LLMTimeout = time.Duration(getEnvIntWithDefault("LLM_TIMEOUT", 30)) * time.Second
	cfg.LLMMaxTokens = getEnvIntWithDefault("LLM_MAX_TOKENS", 1024)

	cfg.MarketDataSource = strings.ToLower(getEnvWithDefault("MARKET_DATA_SOURCE", "yahoo"))
	cfg.TwelveAPIKey = os.Getenv("TWELVE_API_KEY")
	cfg.HistoryRange = getEnvWithDefault("HISTORY_RANGE", "6mo")
	cfg.FetchTimeout = time.Duration(getEnvIntWithDefault("FETCH_TIMEOUT", 20)) * time.Second
	cfg.RequestsPerSec = getEnvIntWithDefault("REQUESTS_PER_SEC", 5)
	cfg.BenchmarkTicker = strings.ToUpper(getEnvWithDefault("BENCHMARK_TICKER", "SPY"))

	cfg.CommandPrefix = getEnvWithDefault("COMMAND_PREFIX", "!")
	cfg.PromptTemplate = getEnvWithDefault("PROMPT_TEMPLATE", "single-agent")
	cfg.PromptTemplatesFile = os.Getenv("PROMPT_TEMPLATES_FILE")

	cfg.LogLevel = getEnvWithDefault("LOG_LEVEL", "info")
	cfg.MetricsAddr = os.Getenv("METRICS_ADDR")

	return &cfg, nil
}

// Providers returns the LLM providers in fallback order. Names in the
// order list that are not known backends are returned as unavailable.
func (c *Config) Providers() []models.ProviderConfig {
	seen := make(map[string]bool, len(c.ProviderOrder))
	providers := make([]models.ProviderConfig, 0, len(c.ProviderOrder))

	for _, name := range c.ProviderOrder {
		if seen[name] {
			continue
		}
		seen[name] = true

		switch name {
		case "anthropic":
			providers = append(providers, models.ProviderConfig{
				Name:       name,
				Credential: c.AnthropicAPIKey,
				Model:      c.AnthropicModel,
				Enabled:    c.AnthropicEnabled,
			})
		case "openai":
			providers = append(providers, models.ProviderConfig{
				Name:       name,
				Credential: c.OpenAIAPIKey,
				Model:      c.OpenAIModel,
				Enabled:    c.OpenAIEnabled,
			})
		default:
			providers = append(providers, models.ProviderConfig{Name: name})
		}
	}
	return providers
}

// AvailableProviders filters Providers to those that can be attempted.
func (c *Config) AvailableProviders() []models.ProviderConfig {
	var available []models.ProviderConfig
	for _, p := range c.Providers() {
		if p.Available() {
			available = append(available, p)
		}
	}
	return available
}

// Validate reports invalid settings. ErrNoProviders is returned last so
// callers can treat it as a soft failure and keep serving status and help.
func (c *Config) Validate() error {
	switch c.MarketDataSource {
	case "yahoo":
	case "twelvedata":
		if c.TwelveAPIKey == "" {
			return errors.New("MARKET_DATA_SOURCE=twelvedata requires TWELVE_API_KEY")
		}
	default:
		return fmt.Errorf("unknown MARKET_DATA_SOURCE %q", c.MarketDataSource)
	}

	if c.CommandPrefix == "" {
		return errors.New("COMMAND_PREFIX must not be empty")
	}
	if c.LLMTimeout <= 0 || c.FetchTimeout <= 0 {
		return errors.New("LLM_TIMEOUT and FETCH_TIMEOUT must be positive")
	}

	if len(c.AvailableProviders()) == 0 {
		return ErrNoProviders
	}
	return nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolWithDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}
