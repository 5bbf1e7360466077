package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	httpClient "github.com/pookan/stockbot/internal/platform/http"
	"github.com/pookan/stockbot/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	defaultBaseURL = "https://query1.finance.yahoo.com"
	summaryModules = "summaryDetail,financialData,defaultKeyStatistics"
)

// Client fetches daily history and fundamentals from Yahoo Finance
type Client struct {
	baseURL    string
	rng        string
	httpClient *httpClient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new Yahoo client
type ClientOptions struct {
	BaseURL         string
	Range           string
	RequestTimeout  time.Duration
	RequestsPerSec  int
	MaxRetries      int
	MaxRetryTimeout time.Duration
	InitialInterval time.Duration
}

// NewClient creates a new Yahoo Finance client
func NewClient(options ClientOptions) *Client {
	if options.BaseURL == "" {
		options.BaseURL = defaultBaseURL
	}
	if options.Range == "" {
		options.Range = "6mo"
	}

	return &Client{
		baseURL: strings.TrimRight(options.BaseURL, "/"),
		rng:     options.Range,
		httpClient: httpClient.NewClient(httpClient.ClientOptions{
			Timeout:         options.RequestTimeout,
			RequestsPerSec:  options.RequestsPerSec,
			MaxRetries:      options.MaxRetries,
			MaxRetryTimeout: options.MaxRetryTimeout,
			InitialInterval: options.InitialInterval,
		}),
		logger: log.With().Str("component", "yahoo_client").Logger(),
	}
}

func (c *Client) Name() string { return "yahoo" }

// Fetch returns daily candles for the configured range plus fundamentals.
// Fundamentals are best-effort and only mark the snapshot as degraded.
func (c *Client) Fetch(ctx context.Context, ticker string) (*models.MarketSnapshot, error) {
	candles, err := c.fetchChart(ctx, ticker)
	if err != nil {
		return nil, err
	}

	fundamentals, err := c.fetchFundamentals(ctx, ticker)
	if err != nil {
		c.logger.Warn().Err(err).Str("ticker", ticker).Msg("Fundamentals unavailable")
		fundamentals = models.MissingFundamentals()
	}

	return &models.MarketSnapshot{
		Ticker:       ticker,
		Candles:      candles,
		Fundamentals: fundamentals,
		Source:       c.Name(),
	}, nil
}

func (c *Client) fetchChart(ctx context.Context, ticker string) ([]models.Candle, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=%s",
		c.baseURL, url.PathEscape(ticker), url.QueryEscape(c.rng))

	body, err := c.get(ctx, u)
	if err != nil {
		return nil, fetchError(ticker, err)
	}

	var chart chartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		c.logger.Error().Err(err).Str("ticker", ticker).Msg("Error parsing chart JSON")
		return nil, &models.FetchError{Kind: models.FetchNetwork, Ticker: ticker, Err: fmt.Errorf("parsing JSON: %w", err)}
	}
	if e := chart.Chart.Error; e != nil {
		return nil, chartError(ticker, e)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, &models.FetchError{Kind: models.FetchUnknownTicker, Ticker: ticker, Err: errors.New("no data returned")}
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	candles := make([]models.Candle, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		closePrice := at(quote.Close, i)
		if closePrice == nil {
			continue // skip null bars (halts, holidays)
		}
		candle := models.Candle{
			Time:  time.Unix(ts, 0).UTC(),
			Close: *closePrice,
			Open:  valueOr(at(quote.Open, i), *closePrice),
			High:  valueOr(at(quote.High, i), *closePrice),
			Low:   valueOr(at(quote.Low, i), *closePrice),
		}
		if i < len(quote.Volume) && quote.Volume[i] != nil {
			candle.Volume = *quote.Volume[i]
		}
		candles = append(candles, candle)
	}

	if len(candles) == 0 {
		return nil, &models.FetchError{Kind: models.FetchUnknownTicker, Ticker: ticker, Err: errors.New("no candles in response")}
	}

	c.logger.Debug().Str("ticker", ticker).Int("count", len(candles)).Msg("Fetched candles")
	return candles, nil
}

func (c *Client) fetchFundamentals(ctx context.Context, ticker string) (models.Fundamentals, error) {
	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s",
		c.baseURL, url.PathEscape(ticker), url.QueryEscape(summaryModules))

	body, err := c.get(ctx, u)
	if err != nil {
		return models.Fundamentals{}, err
	}

	var summary summaryResponse
	if err := json.Unmarshal(body, &summary); err != nil {
		return models.Fundamentals{}, fmt.Errorf("parsing JSON: %w", err)
	}
	if e := summary.QuoteSummary.Error; e != nil {
		return models.Fundamentals{}, fmt.Errorf("quoteSummary error: %s: %s", e.Code, e.Description)
	}
	if len(summary.QuoteSummary.Result) == 0 {
		return models.Fundamentals{}, errors.New("empty quoteSummary result")
	}

	r := summary.QuoteSummary.Result[0]
	f := models.MissingFundamentals()
	f.Available = true
	f.MarketCap = raw(r.SummaryDetail.MarketCap)
	f.TrailingPE = raw(r.SummaryDetail.TrailingPE)
	f.PriceToBook = raw(r.DefaultKeyStatistics.PriceToBook)
	// Yahoo reports debt/equity as a percentage
	f.DebtToEquity = raw(r.FinancialData.DebtToEquity) / 100
	f.ProfitMargins = raw(r.FinancialData.ProfitMargins)
	f.RevenueGrowth = raw(r.FinancialData.RevenueGrowth)
	f.ReturnOnEquity = raw(r.FinancialData.ReturnOnEquity)
	return f, nil
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return body, nil
}

// fetchError maps a transport failure to its fetch category.
func fetchError(ticker string, err error) *models.FetchError {
	kind := models.FetchNetwork
	var statusErr *httpClient.HTTPStatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusNotFound:
			kind = models.FetchUnknownTicker
		case http.StatusTooManyRequests:
			kind = models.FetchRateLimited
		}
	}
	return &models.FetchError{Kind: kind, Ticker: ticker, Err: err}
}

func chartError(ticker string, e *apiError) *models.FetchError {
	kind := models.FetchNetwork
	if strings.EqualFold(e.Code, "Not Found") {
		kind = models.FetchUnknownTicker
	}
	return &models.FetchError{Kind: kind, Ticker: ticker, Err: fmt.Errorf("yahoo api error: %s", e.Description)}
}

func at(values []*float64, i int) *float64 {
	if i >= len(values) {
		return nil
	}
	return values[i]
}

func valueOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}

func raw(v rawValue) float64 {
	if v.Raw == nil {
		return math.NaN()
	}
	return *v.Raw
}
