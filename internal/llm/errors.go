package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrNoProviders means no provider is both configured and enabled.
	ErrNoProviders = errors.New("no LLM providers available")
	// ErrAllProvidersFailed is matched by *AggregateError.
	ErrAllProvidersFailed = errors.New("all LLM providers failed")
	// ErrEmptyResponse is returned by providers when the completion has no text.
	ErrEmptyResponse = errors.New("empty completion")
)

// FailureKind categorizes a single provider attempt.
type FailureKind string

const (
	FailureAuth        FailureKind = "auth"
	FailureRateLimit   FailureKind = "rate_limit"
	FailureTimeout     FailureKind = "timeout"
	FailureMalformed   FailureKind = "malformed"
	FailureUnavailable FailureKind = "unavailable"
)

// Description is the user-facing wording of the failure.
func (k FailureKind) Description() string {
	switch k {
	case FailureAuth:
		return "authentication failed"
	case FailureRateLimit:
		return "rate limited"
	case FailureTimeout:
		return "timed out"
	case FailureMalformed:
		return "malformed response"
	default:
		return "service unavailable"
	}
}

// Classify maps an HTTP status and transport error to a failure kind.
// status is 0 when no response was received.
func Classify(status int, err error) FailureKind {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return FailureTimeout
	case errors.Is(err, ErrEmptyResponse):
		return FailureMalformed
	}

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return FailureAuth
	case http.StatusTooManyRequests:
		return FailureRateLimit
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return FailureTimeout
	}

	if err != nil {
		msg := strings.ToLower(err.Error())
		if strings.Contains(msg, "unmarshal") || strings.Contains(msg, "invalid character") || strings.Contains(msg, "unexpected end of json") {
			return FailureMalformed
		}
		if strings.Contains(msg, "timeout") {
			return FailureTimeout
		}
	}
	return FailureUnavailable
}

// ProviderError records why one provider attempt failed.
type ProviderError struct {
	Provider string
	Kind     FailureKind
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Provider, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Reason is a short, credential-free explanation suitable for chat replies.
func (e *ProviderError) Reason() string {
	return fmt.Sprintf("%s: %s", e.Provider, e.Kind.Description())
}

// AggregateError lists every failed attempt in call order.
type AggregateError struct {
	Failures []*ProviderError
}

func (e *AggregateError) Error() string {
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = f.Error()
	}
	return fmt.Sprintf("%s: %s", ErrAllProvidersFailed, strings.Join(parts, "; "))
}

func (e *AggregateError) Is(target error) bool {
	return target == ErrAllProvidersFailed
}

// Reasons returns the user-facing reason of each failure in call order.
func (e *AggregateError) Reasons() []string {
	reasons := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		reasons[i] = f.Reason()
	}
	return reasons
}
