package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"runtime/debug"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pookan/stockbot/internal/analyze"
	"github.com/pookan/stockbot/internal/anomaly"
	"github.com/pookan/stockbot/internal/calculate"
	"github.com/pookan/stockbot/internal/format"
	"github.com/pookan/stockbot/internal/llm"
	"github.com/pookan/stockbot/internal/metrics"
	"github.com/pookan/stockbot/internal/prompt"
	"github.com/pookan/stockbot/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	maxQueryRunes       = 500
	defaultFetchTimeout = 20 * time.Second
)

var tickerPattern = regexp.MustCompile(`^[A-Z0-9^][A-Z0-9.\-=^]{0,19}$`)

// Generator is the part of the LLM gateway the dispatcher needs.
type Generator interface {
	Generate(ctx context.Context, prompt string) (llm.Generation, error)
}

// Options holds the dependencies of a Dispatcher
type Options struct {
	Prefix       string
	Fetcher      models.MarketDataFetcher
	Gateway      Generator
	Prompts      *prompt.Builder
	Providers    []models.ProviderConfig // every configured provider, for status
	ConfigErr    error                   // set when no provider is available
	FetchTimeout time.Duration
	Benchmark    string
	Metrics      *metrics.Metrics
}

// Dispatcher parses chat commands and produces replies.
type Dispatcher struct {
	prefix       string
	fetcher      models.MarketDataFetcher
	gateway      Generator
	prompts      *prompt.Builder
	providers    []models.ProviderConfig
	configErr    error
	fetchTimeout time.Duration
	benchmark    string
	metrics      *metrics.Metrics
	logger       zerolog.Logger
}

// New creates a Dispatcher.
func New(opts Options) *Dispatcher {
	if opts.Prefix == "" {
		opts.Prefix = "!"
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = defaultFetchTimeout
	}

	return &Dispatcher{
		prefix:       opts.Prefix,
		fetcher:      opts.Fetcher,
		gateway:      opts.Gateway,
		prompts:      opts.Prompts,
		providers:    opts.Providers,
		configErr:    opts.ConfigErr,
		fetchTimeout: opts.FetchTimeout,
		benchmark:    strings.ToUpper(opts.Benchmark),
		metrics:      opts.Metrics,
		logger:       log.With().Str("component", "dispatcher").Logger(),
	}
}

// Handle implements models.CommandHandler. Every failure, including a
// panic, is turned into a reply.
func (d *Dispatcher) Handle(ctx context.Context, cmd models.Command) (reply string, handled bool) {
	verb, args, ok := d.parse(cmd.Text)
	if !ok {
		return "", false
	}

	requestID := uuid.NewString()
	logger := d.logger.With().
		Str("request_id", requestID).
		Str("verb", verb).
		Str("user_id", cmd.UserID).
		Str("source", cmd.Source).
		Logger()

	outcome := "ok"
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Str("stack", string(debug.Stack())).Msg("Command panicked")
			reply, handled, outcome = internalErrorReply(requestID), true, CategoryInternalError
		}
		d.metrics.ObserveCommand(verb, outcome)
	}()

	logger.Info().Strs("args", args).Msg("Handling command")

	switch verb {
	case "analyze":
		reply, outcome = d.analyze(ctx, requestID, cmd, args, logger)
	case "status":
		reply = d.status()
	case "help", "start":
		reply = helpReply(d.prefix)
	default:
		reply, outcome = unknownVerbReply(d.prefix, verb), "unknown_verb"
	}

	return reply, true
}

// parse splits "<prefix><verb> <args>". Both the configured prefix and "/"
// are accepted; a Telegram "@botname" suffix on the verb is dropped.
func (d *Dispatcher) parse(text string) (verb string, args []string, ok bool) {
	text = strings.TrimSpace(text)

	var rest string
	switch {
	case strings.HasPrefix(text, d.prefix):
		rest = text[len(d.prefix):]
	case strings.HasPrefix(text, "/"):
		rest = text[1:]
	default:
		return "", nil, false
	}

	fields := strings.Fields(rest)
	if len(fields) == 0 || rest[0] == ' ' {
		return "", nil, false
	}

	verb = strings.ToLower(fields[0])
	if at := strings.IndexByte(verb, '@'); at > 0 {
		verb = verb[:at]
	}
	return verb, fields[1:], true
}

func (d *Dispatcher) analyze(ctx context.Context, requestID string, cmd models.Command, args []string, logger zerolog.Logger) (string, string) {
	if len(args) == 0 {
		return missingTickerReply(d.prefix), CategoryInvalidTicker
	}

	ticker := strings.ToUpper(args[0])
	if !tickerPattern.MatchString(ticker) {
		logger.Info().Str("ticker", args[0]).Msg("Rejected ticker")
		return invalidTickerReply(args[0]), CategoryInvalidTicker
	}

	req := models.AnalysisRequest{
		ID:        requestID,
		Ticker:    ticker,
		Query:     truncateRunes(strings.Join(args[1:], " "), maxQueryRunes),
		UserID:    cmd.UserID,
		Source:    cmd.Source,
		Timestamp: time.Now().UTC(),
	}
	logger = logger.With().Str("ticker", ticker).Logger()

	if d.configErr != nil || d.gateway == nil {
		logger.Warn().Msg("Analysis refused, no LLM provider configured")
		return configurationErrorReply(), CategoryConfigurationError
	}

	snapshot, err := d.fetch(ctx, ticker)
	if err != nil {
		kind := models.FetchKindOf(err)
		logger.Warn().Err(err).Str("kind", kind.String()).Msg("Market data unavailable")
		return DataUnavailableReply(ticker, kind), CategoryDataUnavailable
	}

	benchmark := d.fetchBenchmark(ctx, snapshot, logger)

	indicators := calculate.Compute(snapshot, benchmark)
	degraded := indicators.Degraded()
	if len(degraded) > 0 {
		logger.Info().Strs("degraded", degraded).Int("candles", len(snapshot.Candles)).Msg("Insufficient history for some indicators")
	}

	data := prompt.Data{
		Request:     req,
		Snapshot:    snapshot,
		Indicators:  indicators,
		Technical:   analyze.Technical(snapshot, indicators),
		Fundamental: analyze.Fundamental(snapshot.Fundamentals),
		Risk:        analyze.Risk(indicators, snapshot.Fundamentals),
		Regime:      anomaly.ClassifyRegime(snapshot.Candles),
		Anomaly:     anomaly.Detect(snapshot.Candles),
		Degraded:    degraded,
	}
	if data.Anomaly.Detected() {
		logger.Info().Strs("anomalies", data.Anomaly.Kinds).Float64("score", data.Anomaly.Score).Msg("Unusual activity on last bar")
	}

	text, err := d.prompts.Render(data)
	if err != nil {
		logger.Error().Err(err).Msg("Prompt rendering failed")
		return analysisUnavailableReply(nil), CategoryAnalysisUnavailable
	}
	logger.Debug().Str("prompt", text).Msg("Rendered prompt")

	gen, err := d.gateway.Generate(ctx, text)
	if err != nil {
		return d.generationFailure(err, logger)
	}

	result := models.AnalysisResult{
		Request:        req,
		Snapshot:       snapshot,
		Indicators:     indicators,
		Technical:      data.Technical,
		Fundamental:    data.Fundamental,
		Risk:           data.Risk,
		Regime:         data.Regime,
		Anomaly:        data.Anomaly,
		Recommendation: analyze.ExtractRecommendation(gen.Text),
		Text:           gen.Text,
		Provider:       gen.Provider,
		Latency:        gen.Latency,
	}

	logger.Info().
		Str("provider", gen.Provider).
		Dur("latency", gen.Latency).
		Str("recommendation", result.Recommendation.Action).
		Msg("Analysis completed")

	outcome := "ok"
	if len(degraded) > 0 {
		outcome = CategoryInsufficientHistory
	}
	return format.Result(result), outcome
}

func (d *Dispatcher) fetch(ctx context.Context, ticker string) (*models.MarketSnapshot, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, d.fetchTimeout)
	defer cancel()

	start := time.Now()
	snapshot, err := d.fetcher.Fetch(fetchCtx, ticker)
	outcome := "ok"
	if err != nil {
		outcome = models.FetchKindOf(err).String()
	}
	d.metrics.ObserveFetch(d.fetcher.Name(), outcome, time.Since(start))

	if err != nil {
		return nil, err
	}
	if snapshot == nil {
		return nil, &models.FetchError{Kind: models.FetchNetwork, Ticker: ticker, Err: errors.New("empty snapshot")}
	}
	return snapshot, nil
}

// fetchBenchmark is best-effort; a failure only leaves beta insufficient.
func (d *Dispatcher) fetchBenchmark(ctx context.Context, snapshot *models.MarketSnapshot, logger zerolog.Logger) *models.MarketSnapshot {
	if d.benchmark == "" {
		return nil
	}
	if snapshot.Ticker == d.benchmark {
		return snapshot
	}

	benchmark, err := d.fetch(ctx, d.benchmark)
	if err != nil {
		logger.Warn().Err(err).Str("benchmark", d.benchmark).Msg("Benchmark unavailable, beta skipped")
		return nil
	}
	return benchmark
}

func (d *Dispatcher) generationFailure(err error, logger zerolog.Logger) (string, string) {
	var agg *llm.AggregateError
	switch {
	case errors.Is(err, llm.ErrNoProviders):
		logger.Error().Err(err).Msg("Gateway has no providers")
		return configurationErrorReply(), CategoryConfigurationError
	case errors.As(err, &agg):
		logger.Error().Err(err).Msg("All LLM providers failed")
		return analysisUnavailableReply(agg.Reasons()), CategoryAnalysisUnavailable
	default:
		logger.Warn().Err(err).Msg("Generation aborted")
		return analysisUnavailableReply(nil), CategoryAnalysisUnavailable
	}
}

func (d *Dispatcher) status() string {
	var sb strings.Builder
	sb.WriteString("Status: online\n")
	sb.WriteString("LLM providers (fallback order):\n")

	available := 0
	for _, p := range d.providers {
		state := "available"
		switch {
		case p.Available():
			available++
		case p.Model == "" && p.Credential == "" && !p.Enabled:
			state = "unknown provider"
		case !p.Enabled:
			state = "disabled"
		default:
			state = "missing credential"
		}
		model := p.Model
		if model == "" {
			model = "-"
		}
		sb.WriteString(fmt.Sprintf("- %s (%s): %s\n", p.Name, model, state))
	}
	if len(d.providers) == 0 {
		sb.WriteString("- none configured\n")
	}

	sb.WriteString(fmt.Sprintf("Available providers: %d of %d\n", available, len(d.providers)))
	if d.prompts != nil {
		sb.WriteString(fmt.Sprintf("Prompt template: %s\n", d.prompts.Active()))
	}
	if d.fetcher != nil {
		sb.WriteString(fmt.Sprintf("Market data: %s (benchmark %s)\n", d.fetcher.Name(), d.benchmark))
	}
	if available == 0 || d.configErr != nil {
		sb.WriteString(configurationErrorReply())
	}
	return strings.TrimRight(sb.String(), "\n")
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}
