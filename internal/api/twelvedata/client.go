package twelvedata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	httpClient "github.com/pookan/stockbot/internal/platform/http"
	"github.com/pookan/stockbot/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Client is the TwelveData API client
type Client struct {
	apiKey     string
	baseURL    string
	outputSize int
	httpClient *httpClient.Client
	logger     zerolog.Logger
}

// ClientOptions holds options for creating a new TwelveData client
type ClientOptions struct {
	APIKey          string
	BaseURL         string
	Range           string
	RequestTimeout  time.Duration
	RequestsPerSec  int
	MaxRetries      int
	MaxRetryTimeout time.Duration
	InitialInterval time.Duration
}

// NewClient creates a new TwelveData API client
func NewClient(options ClientOptions) *Client {
	httpOpts := httpClient.ClientOptions{
		Timeout:         options.RequestTimeout,
		RequestsPerSec:  options.RequestsPerSec,
		MaxRetries:      options.MaxRetries,
		MaxRetryTimeout: options.MaxRetryTimeout,
		InitialInterval: options.InitialInterval,
	}

	// Free plan allows 8 requests per minute
	if httpOpts.RequestsPerSec == 0 {
		httpOpts.RequestsPerSec = 1
	}
	if options.BaseURL == "" {
		options.BaseURL = "https://api.twelvedata.com"
	}

	return &Client{
		apiKey:     options.APIKey,
		baseURL:    strings.TrimRight(options.BaseURL, "/"),
		outputSize: models.CandlesForRange(options.Range),
		httpClient: httpClient.NewClient(httpOpts),
		logger:     log.With().Str("component", "twelvedata_client").Logger(),
	}
}

func (c *Client) Name() string { return "twelvedata" }

// Fetch returns daily candles. Twelve Data has no fundamentals on this
// endpoint, so the snapshot is always degraded on that side.
func (c *Client) Fetch(ctx context.Context, ticker string) (*models.MarketSnapshot, error) {
	candles, err := c.GetCandles(ctx, ticker, "1day", c.outputSize)
	if err != nil {
		return nil, err
	}
	return &models.MarketSnapshot{
		Ticker:       ticker,
		Candles:      candles,
		Fundamentals: models.MissingFundamentals(),
		Source:       c.Name(),
	}, nil
}

// GetCandles fetches candle data from Twelve Data API, oldest first
func (c *Client) GetCandles(ctx context.Context, symbol string, interval string, count int) ([]models.Candle, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", interval)
	q.Set("outputsize", fmt.Sprint(count))
	q.Set("apikey", c.apiKey)
	u := c.baseURL + "/time_series?" + q.Encode()

	c.logger.Debug().Str("symbol", symbol).Str("interval", interval).Int("count", count).Msg("Fetching candles")

	// Create a new request with context
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &models.FetchError{Kind: models.FetchNetwork, Ticker: symbol, Err: fmt.Errorf("creating request: %w", err)}
	}

	resp, err := c.httpClient.DoRequest(ctx, req)
	if err != nil {
		return nil, fetchError(symbol, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &models.FetchError{Kind: models.FetchNetwork, Ticker: symbol, Err: fmt.Errorf("reading response body: %w", err)}
	}

	var data timeSeriesResponse
	if err := json.Unmarshal(body, &data); err != nil {
		c.logger.Error().Err(err).Str("symbol", symbol).Msg("Error parsing JSON")
		return nil, &models.FetchError{Kind: models.FetchNetwork, Ticker: symbol, Err: fmt.Errorf("parsing JSON: %w", err)}
	}

	if data.Status == "error" {
		c.logger.Warn().Int("code", data.Code).Str("message", data.Message).Msg("Twelve Data API error")
		return nil, apiError(symbol, data.Code, data.Message)
	}

	if len(data.Values) == 0 {
		return nil, &models.FetchError{Kind: models.FetchUnknownTicker, Ticker: symbol, Err: errors.New("empty data returned")}
	}

	// Sort candles by datetime (oldest first for proper calculations)
	sort.Slice(data.Values, func(i, j int) bool {
		return data.Values[i].Datetime < data.Values[j].Datetime
	})

	candles := make([]models.Candle, 0, len(data.Values))
	for _, v := range data.Values {
		ts, err := parseDatetime(v.Datetime)
		if err != nil {
			c.logger.Warn().Err(err).Str("datetime", v.Datetime).Msg("Skipping bar")
			continue
		}
		candles = append(candles, models.Candle{
			Time:   ts,
			Open:   v.Open,
			High:   v.High,
			Low:    v.Low,
			Close:  v.Close,
			Volume: v.Volume,
		})
	}

	c.logger.Debug().Int("count", len(candles)).Msg("Fetched candles")
	return candles, nil
}

func parseDatetime(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", s)
}

func apiError(symbol string, code int, message string) *models.FetchError {
	kind := models.FetchNetwork
	switch code {
	case http.StatusBadRequest, http.StatusNotFound:
		kind = models.FetchUnknownTicker
	case http.StatusTooManyRequests:
		kind = models.FetchRateLimited
	}
	return &models.FetchError{Kind: kind, Ticker: symbol, Err: fmt.Errorf("twelve data error %d: %s", code, message)}
}

func fetchError(symbol string, err error) *models.FetchError {
	var statusErr *httpClient.HTTPStatusError
	if errors.As(err, &statusErr) {
		fe := apiError(symbol, statusErr.StatusCode, statusErr.Body)
		fe.Err = err
		return fe
	}
	return &models.FetchError{Kind: models.FetchNetwork, Ticker: symbol, Err: err}
}
