package openai

import (
	"context"
	"errors"
	"strings"

	"github.com/pookan/stockbot/internal/llm"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sashabaranov/go-openai"
)

const Name = "openai"

// Client wraps the OpenAI API client
type Client struct {
	client    *openai.Client
	model     string
	maxTokens int
	logger    zerolog.Logger
}

// ClientOptions holds options for creating a new OpenAI client
type ClientOptions struct {
	APIKey    string
	Model     string
	MaxTokens int
	BaseURL   string
}

// NewClient creates a new OpenAI client
func NewClient(options ClientOptions) *Client {
	cfg := openai.DefaultConfig(options.APIKey)
	if options.BaseURL != "" {
		cfg.BaseURL = options.BaseURL
	}
	if options.Model == "" {
		options.Model = openai.GPT4
	}

	return &Client{
		client:    openai.NewClientWithConfig(cfg),
		model:     options.Model,
		maxTokens: options.MaxTokens,
		logger:    log.With().Str("component", "openai_client").Logger(),
	}
}

// Generate sends a prompt to OpenAI and returns the completion
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	c.logger.Debug().Str("model", c.model).Str("prompt", prompt).Msg("Sending prompt to OpenAI")

	resp, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model:     c.model,
			MaxTokens: c.maxTokens,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
		},
	)

	if err != nil {
		c.logger.Error().Err(err).Msg("OpenAI API error")
		return "", &llm.ProviderError{Provider: Name, Kind: llm.Classify(statusCode(err), err), Err: err}
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		c.logger.Warn().Msg("OpenAI returned empty choices")
		return "", &llm.ProviderError{Provider: Name, Kind: llm.FailureMalformed, Err: llm.ErrEmptyResponse}
	}

	return resp.Choices[0].Message.Content, nil
}

func statusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
