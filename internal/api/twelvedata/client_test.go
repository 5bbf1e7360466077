package twelvedata

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pookan/stockbot/models"
)

func newTestClient(url string) *Client {
	return NewClient(ClientOptions{
		APIKey:          "test-key",
		BaseURL:         url,
		Range:           "1mo",
		RequestTimeout:  2 * time.Second,
		RequestsPerSec:  100,
		MaxRetries:      1,
		MaxRetryTimeout: time.Second,
		InitialInterval: time.Millisecond,
	})
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("symbol") != "MSFT" || q.Get("interval") != "1day" || q.Get("outputsize") != "23" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}
		// newest first, as the API returns it
		_, _ = io.WriteString(w, `{"meta":{"symbol":"MSFT","interval":"1day"},"values":[
{"datetime":"2024-01-03","open":"370.1","high":"373.2","low":"368.5","close":"370.6","volume":"23000000"},
{"datetime":"2024-01-02","open":"373.8","high":"375.9","low":"366.8","close":"370.9","volume":"25000000"}],"status":"ok"}`)
	}))
	defer srv.Close()

	snapshot, err := newTestClient(srv.URL).Fetch(context.Background(), "MSFT")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(snapshot.Candles) != 2 {
		t.Fatalf("got %d candles, want 2", len(snapshot.Candles))
	}
	if snapshot.Candles[0].Close != 370.9 || snapshot.Candles[1].Close != 370.6 {
		t.Errorf("candles not sorted oldest first: %+v", snapshot.Candles)
	}
	if snapshot.Fundamentals.Available {
		t.Error("twelvedata snapshots carry no fundamentals")
	}
}

func TestFetchErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		sentinel error
	}{
		{name: "Unknown symbol", status: http.StatusOK, body: `{"code":400,"message":"**symbol** not found","status":"error"}`, sentinel: models.ErrUnknownTicker},
		{name: "Credits exhausted", status: http.StatusOK, body: `{"code":429,"message":"You have run out of API credits","status":"error"}`, sentinel: models.ErrRateLimited},
		{name: "Server error", status: http.StatusInternalServerError, body: "", sentinel: models.ErrNetwork},
		{name: "No values", status: http.StatusOK, body: `{"values":[],"status":"ok"}`, sentinel: models.ErrUnknownTicker},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := newTestClient(srv.URL).Fetch(context.Background(), "NOPE")
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("Fetch() error = %v, want %v", err, tt.sentinel)
			}
		})
	}
}
