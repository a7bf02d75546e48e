// Package openai implements the embedding client against an
// OpenAI-compatible embeddings endpoint.
package openai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"ragchat/internal/domain"
)

// Client generates embeddings via the OpenAI API.
type Client struct {
	api   *openai.Client
	model string
}

// Config configures the embeddings client. BaseURL is optional and
// exists for tests and OpenAI-compatible gateways.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: embeddings API key is empty", domain.ErrConfiguration)
	}
	if cfg.Model == "" {
		cfg.Model = string(openai.SmallEmbedding3)
	}
	c := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		c.BaseURL = cfg.BaseURL
	}
	return &Client{api: openai.NewClientWithConfig(c), model: cfg.Model}, nil
}

// Embed returns one vector per input text, in input order. It either
// returns a vector for every text or fails as a whole; no partial
// results. An empty input returns nil without a network call.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(c.model),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrEmbeddingService, err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d inputs", domain.ErrEmbeddingService, len(resp.Data), len(texts))
	}
	vectors := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return nil, fmt.Errorf("%w: embedding index %d out of range", domain.ErrEmbeddingService, d.Index)
		}
		vec := make([]float32, len(d.Embedding))
		for i, x := range d.Embedding {
			vec[i] = float32(x)
		}
		vectors[d.Index] = vec
	}
	for i, v := range vectors {
		if v == nil {
			return nil, fmt.Errorf("%w: no embedding returned for input %d", domain.ErrEmbeddingService, i)
		}
	}
	return vectors, nil
}
