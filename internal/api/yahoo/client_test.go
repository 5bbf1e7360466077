package yahoo

import (
	"context"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pookan/stockbot/models"
)

const chartOK = `{"chart":{"result":[{"timestamp":[1704153600,1704240000,1704326400],
"indicators":{"quote":[{"open":[185.0,null,182.1],"high":[186.2,184.0,183.3],"low":[183.4,182.0,181.0],
"close":[185.6,null,181.9],"volume":[82488700,null,71983600]}]}}],"error":null}}`

const summaryOK = `{"quoteSummary":{"result":[{
"summaryDetail":{"marketCap":{"raw":2.9e12,"fmt":"2.9T"},"trailingPE":{"raw":29.5}},
"financialData":{"debtToEquity":{"raw":145.0},"profitMargins":{"raw":0.25},"revenueGrowth":{"raw":0.06},"returnOnEquity":{"raw":1.5}},
"defaultKeyStatistics":{"priceToBook":{"raw":45.1}}}],"error":null}}`

const chartNotFound = `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`

func newTestClient(url string) *Client {
	return NewClient(ClientOptions{
		BaseURL:         url,
		RequestTimeout:  2 * time.Second,
		RequestsPerSec:  100,
		MaxRetries:      2,
		MaxRetryTimeout: time.Second,
		InitialInterval: time.Millisecond,
	})
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/v8/finance/chart/AAPL"):
			if r.URL.Query().Get("range") != "6mo" || r.URL.Query().Get("interval") != "1d" {
				t.Errorf("unexpected query %q", r.URL.RawQuery)
			}
			_, _ = io.WriteString(w, chartOK)
		case strings.HasPrefix(r.URL.Path, "/v10/finance/quoteSummary/AAPL"):
			_, _ = io.WriteString(w, summaryOK)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	snapshot, err := newTestClient(srv.URL).Fetch(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if len(snapshot.Candles) != 2 {
		t.Fatalf("expected null bar to be skipped, got %d candles", len(snapshot.Candles))
	}
	if snapshot.Candles[1].Close != 181.9 || snapshot.Candles[1].Volume != 71983600 {
		t.Errorf("unexpected last candle %+v", snapshot.Candles[1])
	}
	if !snapshot.Candles[0].Time.Before(snapshot.Candles[1].Time) {
		t.Error("candles must be oldest first")
	}
	if snapshot.Source != "yahoo" {
		t.Errorf("source = %q", snapshot.Source)
	}

	f := snapshot.Fundamentals
	if !f.Available {
		t.Fatal("expected fundamentals")
	}
	if math.Abs(f.DebtToEquity-1.45) > 1e-9 {
		t.Errorf("debt/equity = %v, want ratio 1.45", f.DebtToEquity)
	}
	if f.TrailingPE != 29.5 || f.PriceToBook != 45.1 {
		t.Errorf("unexpected fundamentals %+v", f)
	}
}

func TestFetchDegradesWithoutFundamentals(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/v8/finance/chart/") {
			_, _ = io.WriteString(w, chartOK)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	snapshot, err := newTestClient(srv.URL).Fetch(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if snapshot.Fundamentals.Available {
		t.Error("expected unavailable fundamentals")
	}
	if !math.IsNaN(snapshot.Fundamentals.TrailingPE) {
		t.Errorf("missing P/E should be NaN, got %v", snapshot.Fundamentals.TrailingPE)
	}
}

func TestFetchErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		sentinel error
		calls    int32
	}{
		{name: "Unknown ticker", status: http.StatusNotFound, body: chartNotFound, sentinel: models.ErrUnknownTicker, calls: 1},
		{name: "Empty result", status: http.StatusOK, body: `{"chart":{"result":[],"error":null}}`, sentinel: models.ErrUnknownTicker, calls: 1},
		{name: "Rate limited", status: http.StatusTooManyRequests, body: "Too Many Requests", sentinel: models.ErrRateLimited, calls: 1},
		{name: "Server down", status: http.StatusBadGateway, body: "", sentinel: models.ErrNetwork, calls: 3},
		{name: "Garbled body", status: http.StatusOK, body: "<html>", sentinel: models.ErrNetwork, calls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := newTestClient(srv.URL).Fetch(context.Background(), "ZZZZINVALID")
			if !errors.Is(err, tt.sentinel) {
				t.Fatalf("Fetch() error = %v, want %v", err, tt.sentinel)
			}
			var fe *models.FetchError
			if !errors.As(err, &fe) || fe.Ticker != "ZZZZINVALID" {
				t.Errorf("expected *FetchError for the ticker, got %#v", err)
			}
			if got := atomic.LoadInt32(&calls); got != tt.calls {
				t.Errorf("server calls = %d, want %d", got, tt.calls)
			}
		})
	}
}
