// Package testutils holds shared fakes for the basecamp test suites.
package testutils

import (
	"context"
	"fmt"
	"sync"
)

// MockProvider is a test double for the embedding and generation provider.
// Embeddings are looked up in the Embeddings map; unknown texts get a
// fixed default vector. Call counts are recorded so tests can assert that
// cached content never reaches the provider.
type MockProvider struct {
	mu sync.Mutex

	// Embeddings maps exact input text to the vector to return.
	Embeddings map[string][]float32

	// DefaultEmbedding is returned for texts not in Embeddings.
	DefaultEmbedding []float32

	// Completion is the canned generation output.
	Completion string

	// FailEmbedOn causes Embed to fail when the input matches exactly.
	FailEmbedOn string

	// FailEmbed causes every Embed call to fail.
	FailEmbed bool

	// FailComplete causes every Complete call to fail.
	FailComplete bool

	// PingErr is returned by Ping.
	PingErr error

	embedCalls    int
	completeCalls int
	lastPrompt    string
}

func NewMockProvider() *MockProvider {
	return &MockProvider{
		Embeddings:       make(map[string][]float32),
		DefaultEmbedding: []float32{0.1, 0.2, 0.3},
		Completion:       "mock answer",
	}
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailEmbed || (m.FailEmbedOn != "" && text == m.FailEmbedOn) {
		return nil, fmt.Errorf("mock embedding failure for: %s", text)
	}

	m.embedCalls++

	if emb, ok := m.Embeddings[text]; ok {
		return emb, nil
	}
	return m.DefaultEmbedding, nil
}

func (m *MockProvider) Complete(_ context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailComplete {
		return "", fmt.Errorf("mock generation failure")
	}

	m.completeCalls++
	m.lastPrompt = prompt
	return m.Completion, nil
}

func (m *MockProvider) Ping(_ context.Context) error {
	return m.PingErr
}

func (m *MockProvider) Close() error { return nil }

// EmbedCalls reports how many successful Embed calls were made.
func (m *MockProvider) EmbedCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.embedCalls
}

// CompleteCalls reports how many successful Complete calls were made.
func (m *MockProvider) CompleteCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.completeCalls
}

// LastPrompt returns the prompt passed to the most recent Complete call.
func (m *MockProvider) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastPrompt
}

// ResetCalls zeroes the recorded call counts.
func (m *MockProvider) ResetCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.embedCalls = 0
	m.completeCalls = 0
}
