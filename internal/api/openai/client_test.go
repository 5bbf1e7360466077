package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pookan/stockbot/internal/llm"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
		kind   llm.FailureKind
	}{
		{
			name:   "Completion",
			status: http.StatusOK,
			body:   `{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"HOLD until earnings"},"finish_reason":"stop"}]}`,
			want:   "HOLD until earnings",
		},
		{
			name:   "Bad key",
			status: http.StatusUnauthorized,
			body:   `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`,
			kind:   llm.FailureAuth,
		},
		{
			name:   "Rate limited",
			status: http.StatusTooManyRequests,
			body:   `{"error":{"message":"Rate limit reached","type":"requests","code":"rate_limit_exceeded"}}`,
			kind:   llm.FailureRateLimit,
		},
		{
			name:   "No choices",
			status: http.StatusOK,
			body:   `{"id":"c2","object":"chat.completion","choices":[]}`,
			kind:   llm.FailureMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/v1/chat/completions" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				var req struct {
					Model     string `json:"model"`
					MaxTokens int    `json:"max_tokens"`
				}
				_ = json.NewDecoder(r.Body).Decode(&req)
				if req.Model != "gpt-4" || req.MaxTokens != 256 {
					t.Errorf("unexpected request model=%q max_tokens=%d", req.Model, req.MaxTokens)
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			client := NewClient(ClientOptions{APIKey: "sk-test", Model: "gpt-4", MaxTokens: 256, BaseURL: srv.URL + "/v1"})
			text, err := client.Generate(context.Background(), "Analyze AAPL")

			if tt.kind == "" {
				if err != nil {
					t.Fatalf("Generate() error = %v", err)
				}
				if text != tt.want {
					t.Errorf("Generate() = %q, want %q", text, tt.want)
				}
				return
			}

			var pe *llm.ProviderError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *llm.ProviderError, got %v", err)
			}
			if pe.Kind != tt.kind || pe.Provider != Name {
				t.Errorf("got %s/%s, want %s/%s", pe.Provider, pe.Kind, Name, tt.kind)
			}
		})
	}
}
