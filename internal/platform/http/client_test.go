package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func testClient() *Client {
	return NewClient(ClientOptions{
		Timeout:         2 * time.Second,
		RequestsPerSec:  100,
		MaxRetries:      3,
		MaxRetryTimeout: 2 * time.Second,
		InitialInterval: time.Millisecond,
	})
}

func TestDoRequest(t *testing.T) {
	tests := []struct {
		name      string
		statuses  []int
		wantCalls int32
		wantCode  int
	}{
		{name: "OK first try", statuses: []int{200}, wantCalls: 1},
		{name: "Server error then OK", statuses: []int{503, 502, 200}, wantCalls: 3},
		{name: "Not found is permanent", statuses: []int{404, 200}, wantCalls: 1, wantCode: 404},
		{name: "Rate limit is permanent", statuses: []int{429, 200}, wantCalls: 1, wantCode: 429},
		{name: "Retries exhausted", statuses: []int{500, 500, 500, 500, 500}, wantCalls: 4, wantCode: 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				n := atomic.AddInt32(&calls, 1)
				status := tt.statuses[int(n)-1]
				w.WriteHeader(status)
				_, _ = io.WriteString(w, "body")
			}))
			defer srv.Close()

			req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
			resp, err := testClient().DoRequest(context.Background(), req)

			if got := atomic.LoadInt32(&calls); got != tt.wantCalls {
				t.Errorf("calls = %d, want %d", got, tt.wantCalls)
			}

			if tt.wantCode == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				resp.Body.Close()
				return
			}

			var statusErr *HTTPStatusError
			if !errors.As(err, &statusErr) {
				t.Fatalf("expected *HTTPStatusError, got %v", err)
			}
			if statusErr.StatusCode != tt.wantCode {
				t.Errorf("status = %d, want %d", statusErr.StatusCode, tt.wantCode)
			}
			if statusErr.Body != "body" {
				t.Errorf("body = %q, want %q", statusErr.Body, "body")
			}
		})
	}
}

func TestDoRequestStopsOnCancel(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	_, err := testClient().DoRequest(ctx, req)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 0 {
		t.Errorf("server contacted %d times after cancellation", got)
	}
}
