package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/pookan/stockbot/internal/api/anthropic"
	"github.com/pookan/stockbot/internal/api/openai"
	"github.com/pookan/stockbot/internal/api/twelvedata"
	"github.com/pookan/stockbot/internal/api/yahoo"
	"github.com/pookan/stockbot/internal/config"
	"github.com/pookan/stockbot/internal/dispatcher"
	"github.com/pookan/stockbot/internal/llm"
	"github.com/pookan/stockbot/internal/metrics"
	"github.com/pookan/stockbot/internal/prompt"
	"github.com/pookan/stockbot/models"
	"github.com/rs/zerolog/log"
)

// App holds everything built from the configuration.
type App struct {
	Config     *config.Config
	Metrics    *metrics.Metrics
	Dispatcher *dispatcher.Dispatcher
}

// newApp loads the configuration and wires the components. A missing LLM
// provider is not fatal: status and help keep working.
func newApp() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	setupLogger(cfg.LogLevel)

	configErr := cfg.Validate()
	switch {
	case errors.Is(configErr, config.ErrNoProviders):
		log.Warn().Err(configErr).Msg("ConfigurationError, analyze is disabled until a provider key is set")
	case configErr != nil:
		return nil, configErr
	}

	fetcher, err := newFetcher(cfg)
	if err != nil {
		return nil, err
	}

	prompts, err := prompt.NewBuilder(cfg.PromptTemplate, cfg.PromptTemplatesFile)
	if err != nil {
		return nil, err
	}

	m := metrics.NewMetrics()

	gateway := llm.NewGateway(llm.GatewayOptions{
		Timeout:   cfg.LLMTimeout,
		Providers: newProviders(cfg),
		Observer:  m,
	})
	log.Info().Strs("providers", gateway.Providers()).Str("template", prompts.Active()).Str("market_data", fetcher.Name()).Msg("Components ready")

	return &App{
		Config:  cfg,
		Metrics: m,
		Dispatcher: dispatcher.New(dispatcher.Options{
			Prefix:       cfg.CommandPrefix,
			Fetcher:      fetcher,
			Gateway:      gateway,
			Prompts:      prompts,
			Providers:    cfg.Providers(),
			ConfigErr:    configErr,
			FetchTimeout: cfg.FetchTimeout,
			Benchmark:    cfg.BenchmarkTicker,
			Metrics:      m,
		}),
	}, nil
}

func newFetcher(cfg *config.Config) (models.MarketDataFetcher, error) {
	switch cfg.MarketDataSource {
	case "yahoo":
		return yahoo.NewClient(yahoo.ClientOptions{
			Range:           cfg.HistoryRange,
			RequestTimeout:  cfg.FetchTimeout,
			RequestsPerSec:  cfg.RequestsPerSec,
			MaxRetries:      3,
			MaxRetryTimeout: cfg.FetchTimeout,
			InitialInterval: 500 * time.Millisecond,
		}), nil
	case "twelvedata":
		return twelvedata.NewClient(twelvedata.ClientOptions{
			APIKey:          cfg.TwelveAPIKey,
			Range:           cfg.HistoryRange,
			RequestTimeout:  cfg.FetchTimeout,
			MaxRetries:      3,
			MaxRetryTimeout: cfg.FetchTimeout,
			InitialInterval: time.Second,
		}), nil
	default:
		return nil, fmt.Errorf("unknown MARKET_DATA_SOURCE %q", cfg.MarketDataSource)
	}
}

// newProviders maps available providers to clients, keeping config order.
func newProviders(cfg *config.Config) []llm.Entry {
	var entries []llm.Entry
	for _, p := range cfg.AvailableProviders() {
		switch p.Name {
		case anthropic.Name:
			entries = append(entries, llm.Entry{Name: p.Name, Provider: anthropic.NewClient(anthropic.ClientOptions{
				APIKey:    p.Credential,
				Model:     p.Model,
				MaxTokens: cfg.LLMMaxTokens,
			})})
		case openai.Name:
			entries = append(entries, llm.Entry{Name: p.Name, Provider: openai.NewClient(openai.ClientOptions{
				APIKey:    p.Credential,
				Model:     p.Model,
				MaxTokens: cfg.LLMMaxTokens,
			})})
		default:
			log.Warn().Str("provider", p.Name).Msg("Unknown LLM provider in LLM_PROVIDER_ORDER, skipped")
		}
	}
	return entries
}
