package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

type fakeProvider struct {
	text  string
	err   error
	delay time.Duration
	calls int
}

func (f *fakeProvider) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls++
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.text, f.err
}

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []string
}

func (r *recordingObserver) ObserveAttempt(provider, outcome string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, provider+"="+outcome)
}

func TestGenerateFallback(t *testing.T) {
	a := &fakeProvider{err: &ProviderError{Kind: FailureRateLimit, Err: errors.New("429")}}
	b := &fakeProvider{text: "BUY: strong momentum"}
	c := &fakeProvider{text: "never reached"}
	obs := &recordingObserver{}

	gw := NewGateway(GatewayOptions{
		Timeout:   time.Second,
		Providers: []Entry{{Name: "a", Provider: a}, {Name: "b", Provider: b}, {Name: "c", Provider: c}},
		Observer:  obs,
	})

	gen, err := gw.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if gen.Provider != "b" || gen.Text != "BUY: strong momentum" {
		t.Errorf("Generate() = %+v, want provider b", gen)
	}
	if a.calls != 1 || b.calls != 1 || c.calls != 0 {
		t.Errorf("calls a=%d b=%d c=%d, want 1 1 0", a.calls, b.calls, c.calls)
	}
	want := []string{"a=rate_limit", "b=success"}
	if fmt.Sprint(obs.outcomes) != fmt.Sprint(want) {
		t.Errorf("observed %v, want %v", obs.outcomes, want)
	}
}

func TestGenerateAllFail(t *testing.T) {
	a := &fakeProvider{err: &ProviderError{Kind: FailureAuth, Err: errors.New("401")}}
	b := &fakeProvider{err: errors.New("connection refused")}

	gw := NewGateway(GatewayOptions{
		Timeout:   time.Second,
		Providers: []Entry{{Name: "anthropic", Provider: a}, {Name: "openai", Provider: b}},
	})

	_, err := gw.Generate(context.Background(), "prompt")
	if !errors.Is(err, ErrAllProvidersFailed) {
		t.Fatalf("expected ErrAllProvidersFailed, got %v", err)
	}

	var agg *AggregateError
	if !errors.As(err, &agg) {
		t.Fatalf("expected *AggregateError, got %T", err)
	}
	if len(agg.Failures) != 2 {
		t.Fatalf("got %d failures, want 2", len(agg.Failures))
	}

	tests := []struct {
		provider string
		kind     FailureKind
	}{
		{provider: "anthropic", kind: FailureAuth},
		{provider: "openai", kind: FailureUnavailable},
	}
	for i, tt := range tests {
		if agg.Failures[i].Provider != tt.provider || agg.Failures[i].Kind != tt.kind {
			t.Errorf("failure %d = %s/%s, want %s/%s", i, agg.Failures[i].Provider, agg.Failures[i].Kind, tt.provider, tt.kind)
		}
	}

	reasons := agg.Reasons()
	if reasons[0] != "anthropic: authentication failed" || reasons[1] != "openai: service unavailable" {
		t.Errorf("unexpected reasons %v", reasons)
	}
}

func TestGenerateNoProviders(t *testing.T) {
	gw := NewGateway(GatewayOptions{})
	if _, err := gw.Generate(context.Background(), "prompt"); !errors.Is(err, ErrNoProviders) {
		t.Fatalf("expected ErrNoProviders, got %v", err)
	}
}

func TestGenerateAttemptTimeout(t *testing.T) {
	slow := &fakeProvider{text: "late", delay: time.Second}
	fast := &fakeProvider{text: "HOLD"}

	gw := NewGateway(GatewayOptions{
		Timeout:   20 * time.Millisecond,
		Providers: []Entry{{Name: "slow", Provider: slow}, {Name: "fast", Provider: fast}},
	})

	gen, err := gw.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if gen.Provider != "fast" {
		t.Errorf("provider = %q, want fast", gen.Provider)
	}
}

func TestGenerateEmptyTextIsMalformed(t *testing.T) {
	gw := NewGateway(GatewayOptions{
		Providers: []Entry{{Name: "blank", Provider: &fakeProvider{text: "  \n"}}},
	})

	_, err := gw.Generate(context.Background(), "prompt")
	var agg *AggregateError
	if !errors.As(err, &agg) || agg.Failures[0].Kind != FailureMalformed {
		t.Fatalf("expected malformed failure, got %v", err)
	}
}

func TestGenerateStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	first := &fakeProvider{delay: time.Second}
	second := &fakeProvider{text: "BUY"}

	gw := NewGateway(GatewayOptions{
		Timeout:   5 * time.Second,
		Providers: []Entry{{Name: "first", Provider: first}, {Name: "second", Provider: second}},
	})

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := gw.Generate(ctx, "prompt")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if second.calls != 0 {
		t.Errorf("second provider called %d times after cancellation", second.calls)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		status int
		err    error
		want   FailureKind
	}{
		{name: "Unauthorized", status: 401, err: errors.New("bad key"), want: FailureAuth},
		{name: "Forbidden", status: 403, want: FailureAuth},
		{name: "Too many requests", status: 429, want: FailureRateLimit},
		{name: "Gateway timeout", status: 504, want: FailureTimeout},
		{name: "Deadline", err: fmt.Errorf("post: %w", context.DeadlineExceeded), want: FailureTimeout},
		{name: "Garbled", err: errors.New("invalid character '<' looking for beginning of value"), want: FailureMalformed},
		{name: "Empty", err: ErrEmptyResponse, want: FailureMalformed},
		{name: "Overloaded", status: 529, err: errors.New("overloaded"), want: FailureUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.status, tt.err); got != tt.want {
				t.Errorf("Classify(%d, %v) = %s, want %s", tt.status, tt.err, got, tt.want)
			}
		})
	}
}
