package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const DefaultTimeout = 30 * time.Second

// Provider generates text for a prompt. Implementations should return a
// *ProviderError so the gateway can report a precise failure kind.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Entry is a named provider in fallback order.
type Entry struct {
	Name     string
	Provider Provider
}

// Observer receives one call per attempt. outcome is "success" or a FailureKind.
type Observer interface {
	ObserveAttempt(provider, outcome string, elapsed time.Duration)
}

// Generation is the result of the first successful attempt.
type Generation struct {
	Text     string
	Provider string
	Latency  time.Duration
}

// GatewayOptions holds options for creating a new Gateway
type GatewayOptions struct {
	Timeout   time.Duration
	Providers []Entry
	Observer  Observer
}

// Gateway tries providers in order until one succeeds.
type Gateway struct {
	timeout   time.Duration
	providers []Entry
	observer  Observer
	logger    zerolog.Logger
}

// NewGateway creates a gateway. Providers must already be filtered to the
// available ones and are attempted in slice order.
func NewGateway(opts GatewayOptions) *Gateway {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	providers := make([]Entry, len(opts.Providers))
	copy(providers, opts.Providers)

	return &Gateway{
		timeout:   opts.Timeout,
		providers: providers,
		observer:  opts.Observer,
		logger:    log.With().Str("component", "llm_gateway").Logger(),
	}
}

// Providers returns the provider names in attempt order.
func (g *Gateway) Providers() []string {
	names := make([]string, len(g.providers))
	for i, p := range g.providers {
		names[i] = p.Name
	}
	return names
}

// Generate returns the first successful completion. If every provider
// fails the error is an *AggregateError; a cancelled ctx stops iteration
// and returns ctx.Err().
func (g *Gateway) Generate(ctx context.Context, prompt string) (Generation, error) {
	if len(g.providers) == 0 {
		return Generation{}, ErrNoProviders
	}

	var failures []*ProviderError
	for _, entry := range g.providers {
		if err := ctx.Err(); err != nil {
			return Generation{}, err
		}

		start := time.Now()
		text, err := g.attempt(ctx, entry, prompt)
		elapsed := time.Since(start)

		if err == nil {
			g.observe(entry.Name, "success", elapsed)
			g.logger.Info().Str("provider", entry.Name).Dur("latency", elapsed).Msg("Generation succeeded")
			return Generation{Text: text, Provider: entry.Name, Latency: elapsed}, nil
		}

		// The caller gave up; the failure says nothing about the provider
		if ctx.Err() != nil {
			return Generation{}, ctx.Err()
		}

		failure := asProviderError(entry.Name, err)
		g.observe(entry.Name, string(failure.Kind), elapsed)
		g.logger.Warn().
			Str("provider", entry.Name).
			Str("kind", string(failure.Kind)).
			Err(failure.Err).
			Msg("Provider failed, trying next")
		failures = append(failures, failure)
	}

	return Generation{}, &AggregateError{Failures: failures}
}

func (g *Gateway) attempt(ctx context.Context, entry Entry, prompt string) (text string, err error) {
	attemptCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			g.logger.Error().Str("provider", entry.Name).Interface("panic", r).Msg("Provider panicked")
			err = &ProviderError{Provider: entry.Name, Kind: FailureUnavailable, Err: errors.New("provider panicked")}
		}
	}()

	text, err = entry.Provider.Generate(attemptCtx, prompt)
	if err != nil {
		if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return "", &ProviderError{Provider: entry.Name, Kind: FailureTimeout, Err: err}
		}
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", &ProviderError{Provider: entry.Name, Kind: FailureMalformed, Err: ErrEmptyResponse}
	}
	return text, nil
}

func (g *Gateway) observe(provider, outcome string, elapsed time.Duration) {
	if g.observer != nil {
		g.observer.ObserveAttempt(provider, outcome, elapsed)
	}
}

func asProviderError(name string, err error) *ProviderError {
	var pe *ProviderError
	if errors.As(err, &pe) {
		named := *pe
		named.Provider = name
		return &named
	}
	return &ProviderError{Provider: name, Kind: Classify(0, err), Err: err}
}
