// Package openai implements the chat-completion client used by the
// query rewriter and the answer generator.
package openai

import (
	"context"
	"fmt"
	"math"

	openai "github.com/sashabaranov/go-openai"

	"ragchat/internal/domain"
)

// Client maps a rendered prompt to a single completion.
type Client struct {
	api         *openai.Client
	model       string
	temperature float32
}

// Config configures the chat-completion client.
type Config struct {
	APIKey      string
	Model       string
	Temperature float32
	BaseURL     string
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: LLM API key is empty", domain.ErrConfiguration)
	}
	if cfg.Model == "" {
		cfg.Model = openai.GPT4oMini
	}
	c := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		c.BaseURL = cfg.BaseURL
	}
	temperature := cfg.Temperature
	if temperature == 0 {
		// The request struct omits a zero temperature, which would make
		// the API fall back to its own default. The smallest positive
		// value keeps sampling effectively deterministic while staying
		// on the wire.
		temperature = math.SmallestNonzeroFloat32
	}
	return &Client{
		api:         openai.NewClientWithConfig(c),
		model:       cfg.Model,
		temperature: temperature,
	}, nil
}

// Complete sends the prompt as a single user message and returns the
// model's completion verbatim. Not retried; a failure surfaces to the
// caller wrapped in ErrLLMCall.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %s", domain.ErrLLMCall, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: response contains no choices", domain.ErrLLMCall)
	}
	return resp.Choices[0].Message.Content, nil
}
