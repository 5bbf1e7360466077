package models

import "context"

// MarketDataFetcher returns recent price history and fundamentals for a ticker.
// Errors are *FetchError values.
type MarketDataFetcher interface {
	Fetch(ctx context.Context, ticker string) (*MarketSnapshot, error)
	Name() string
}

// CommandHandler turns a chat message into a reply. handled is false for
// messages that are not commands, which transports ignore.
type CommandHandler interface {
	Handle(ctx context.Context, cmd Command) (reply string, handled bool)
}
