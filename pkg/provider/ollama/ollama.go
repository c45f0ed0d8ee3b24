// Package ollama implements pkg/provider's Provider against Ollama's
// embedding and generation APIs.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/summitchronicles/basecamp/pkg/provider"
)

const (
	// DefaultEmbeddingModel is the default model used for embeddings.
	DefaultEmbeddingModel = "nomic-embed-text"

	// DefaultGenerationModel is the default model used for completions.
	DefaultGenerationModel = "llama3.1:8b"

	// DefaultBaseURL is the default Ollama API URL.
	DefaultBaseURL = "http://localhost:11434"

	// DefaultTimeout bounds every provider call. A timeout surfaces as a
	// provider error and is never retried here.
	DefaultTimeout = 120 * time.Second
)

// Client wraps Ollama's embedding and generation APIs.
type Client struct {
	baseURL         string
	embeddingModel  string
	generationModel string
	httpClient      *http.Client
}

// Config holds configuration for the Ollama client.
type Config struct {
	// BaseURL is the Ollama API URL (e.g., "http://localhost:11434").
	// Defaults to DefaultBaseURL if empty.
	BaseURL string

	// EmbeddingModel defaults to DefaultEmbeddingModel if empty.
	EmbeddingModel string

	// GenerationModel defaults to DefaultGenerationModel if empty.
	GenerationModel string

	// Timeout defaults to DefaultTimeout if zero.
	Timeout time.Duration
}

type embedRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float32 `json:"temperature"`
	TopP        float32 `json:"top_p"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// New creates a new client for Ollama's embedding and generation APIs.
func New(cfg Config) (*Client, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	embeddingModel := cfg.EmbeddingModel
	if embeddingModel == "" {
		embeddingModel = DefaultEmbeddingModel
	}

	generationModel := cfg.GenerationModel
	if generationModel == "" {
		generationModel = DefaultGenerationModel
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		baseURL:         baseURL,
		embeddingModel:  embeddingModel,
		generationModel: generationModel,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// Name returns the canonical provider name.
func (c *Client) Name() string {
	return "ollama"
}

// Embed converts text into a vector embedding.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	reqBody := embedRequest{
		Model: c.embeddingModel,
		Input: text,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("%w: marshaling request: %v", provider.ErrEmbedding, err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/embed", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", provider.ErrEmbedding, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: sending request: %v", provider.ErrEmbedding, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: ollama returned status %d: %s", provider.ErrEmbedding, resp.StatusCode, string(body))
	}

	var embedResp embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", provider.ErrEmbedding, err)
	}

	if len(embedResp.Embeddings) == 0 {
		return nil, fmt.Errorf("%w: no embeddings returned", provider.ErrEmbedding)
	}

	return embedResp.Embeddings[0], nil
}

// Complete submits a prompt to Ollama's generate API and returns the
// generated text.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	reqBody := generateRequest{
		Model:  c.generationModel,
		Prompt: prompt,
		Stream: false,
		Options: generateOptions{
			Temperature: 0.7,
			TopP:        0.9,
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("%w: marshaling request: %v", provider.ErrGeneration, err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/generate", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("%w: creating request: %v", provider.ErrGeneration, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: sending request: %v", provider.ErrGeneration, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: ollama returned status %d: %s", provider.ErrGeneration, resp.StatusCode, string(body))
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", provider.ErrGeneration, err)
	}

	return strings.TrimSpace(genResp.Response), nil
}

// Ping checks whether the Ollama server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("%w: creating request: %v", provider.ErrConnection, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", provider.ErrConnection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: ollama returned status %d", provider.ErrConnection, resp.StatusCode)
	}

	return nil
}

// Close releases resources held by the client.
func (c *Client) Close() error {
	// HTTP client doesn't require explicit cleanup
	return nil
}

var _ provider.Provider = (*Client)(nil)
