package models

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownTicker = errors.New("unknown ticker")
	ErrRateLimited   = errors.New("rate limited")
	ErrNetwork       = errors.New("network error")
)

// FetchKind categorizes market data failures
type FetchKind int

const (
	FetchNetwork FetchKind = iota
	FetchUnknownTicker
	FetchRateLimited
)

func (k FetchKind) String() string {
	switch k {
	case FetchUnknownTicker:
		return "unknown ticker"
	case FetchRateLimited:
		return "rate limited"
	default:
		return "network error"
	}
}

// FetchError is returned by every MarketDataFetcher
type FetchError struct {
	Kind   FetchKind
	Ticker string
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("fetch %s: %s", e.Ticker, e.Kind)
	}
	return fmt.Sprintf("fetch %s: %s: %v", e.Ticker, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is matches the category sentinels.
func (e *FetchError) Is(target error) bool {
	switch target {
	case ErrUnknownTicker:
		return e.Kind == FetchUnknownTicker
	case ErrRateLimited:
		return e.Kind == FetchRateLimited
	case ErrNetwork:
		return e.Kind == FetchNetwork
	}
	return false
}

// FetchKindOf returns the category of err, defaulting to FetchNetwork.
func FetchKindOf(err error) FetchKind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return FetchNetwork
}
