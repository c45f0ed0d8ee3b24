// Package openai implements pkg/provider's Provider on top of the OpenAI
// API via the go-openai client.
package openai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/summitchronicles/basecamp/pkg/provider"
)

const (
	// DefaultEmbeddingModel is the default model used for embeddings.
	DefaultEmbeddingModel = "text-embedding-3-small"

	// DefaultGenerationModel is the default model used for completions.
	DefaultGenerationModel = "gpt-4o-mini"
)

// Client wraps the OpenAI embedding and chat APIs.
type Client struct {
	client          *openai.Client
	embeddingModel  string
	generationModel string
}

// Config holds configuration for the OpenAI client.
type Config struct {
	// APIKey is required.
	APIKey string

	// BaseURL overrides the API endpoint, for OpenAI-compatible servers.
	BaseURL string

	// EmbeddingModel defaults to DefaultEmbeddingModel if empty.
	EmbeddingModel string

	// GenerationModel defaults to DefaultGenerationModel if empty.
	GenerationModel string
}

// New creates a new OpenAI-backed provider client.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	embeddingModel := cfg.EmbeddingModel
	if embeddingModel == "" {
		embeddingModel = DefaultEmbeddingModel
	}

	generationModel := cfg.GenerationModel
	if generationModel == "" {
		generationModel = DefaultGenerationModel
	}

	return &Client{
		client:          openai.NewClientWithConfig(clientConfig),
		embeddingModel:  embeddingModel,
		generationModel: generationModel,
	}, nil
}

// Name returns the canonical provider name.
func (c *Client) Name() string {
	return "openai"
}

// Embed converts text into a vector embedding.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(c.embeddingModel),
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", provider.ErrEmbedding, err)
	}

	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: no embedding data returned", provider.ErrEmbedding)
	}

	return resp.Data[0].Embedding, nil
}

// Complete submits a prompt as a single-turn chat completion.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.generationModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", provider.ErrGeneration, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no completion choices returned", provider.ErrGeneration)
	}

	return resp.Choices[0].Message.Content, nil
}

// Ping checks connectivity by listing the available models.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.client.ListModels(ctx); err != nil {
		return fmt.Errorf("%w: %v", provider.ErrConnection, err)
	}
	return nil
}

// Close releases resources held by the client.
func (c *Client) Close() error {
	return nil
}

var _ provider.Provider = (*Client)(nil)
