package anthropic

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/pookan/stockbot/internal/llm"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const Name = "anthropic"

// Client wraps the Anthropic Messages API
type Client struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	logger    zerolog.Logger
}

// ClientOptions holds options for creating a new Anthropic client
type ClientOptions struct {
	APIKey    string
	Model     string
	MaxTokens int
	BaseURL   string
}

// NewClient creates a new Anthropic client. SDK retries are disabled; the
// gateway falls back to the next provider instead.
func NewClient(options ClientOptions) *Client {
	if options.Model == "" {
		options.Model = "claude-sonnet-4-0"
	}
	if options.MaxTokens <= 0 {
		options.MaxTokens = 1024
	}

	opts := []option.RequestOption{
		option.WithAPIKey(options.APIKey),
		option.WithMaxRetries(0),
	}
	if options.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(options.BaseURL))
	}

	return &Client{
		client:    anthropic.NewClient(opts...),
		model:     options.Model,
		maxTokens: int64(options.MaxTokens),
		logger:    log.With().Str("component", "anthropic_client").Logger(),
	}
}

// Generate sends a single user message and joins the text blocks of the reply
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	c.logger.Debug().Str("model", c.model).Str("prompt", prompt).Msg("Sending prompt to Anthropic")

	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		c.logger.Error().Err(err).Msg("Anthropic API error")
		return "", &llm.ProviderError{Provider: Name, Kind: llm.Classify(statusCode(err), err), Err: err}
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	text := sb.String()
	if strings.TrimSpace(text) == "" {
		c.logger.Warn().Str("stop_reason", string(msg.StopReason)).Msg("Anthropic returned no text")
		return "", &llm.ProviderError{Provider: Name, Kind: llm.FailureMalformed, Err: llm.ErrEmptyResponse}
	}
	return text, nil
}

func statusCode(err error) int {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
