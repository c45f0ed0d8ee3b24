// Package provider defines the narrow interfaces through which the engine
// talks to embedding and text-generation services. Either side can be
// swapped or mocked without touching retrieval or ranking logic.
package provider

import "context"

// Embedder converts text into a fixed-dimension vector embedding.
type Embedder interface {
	// Embed converts text into a vector embedding.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Close releases any resources held by the embedder.
	Close() error
}

// Generator produces natural-language text from a prompt.
type Generator interface {
	// Complete submits a prompt and returns the generated text.
	Complete(ctx context.Context, prompt string) (string, error)

	// Close releases any resources held by the generator.
	Close() error
}

// Pinger reports whether the backing service is reachable.
// The health monitor probes through this rather than issuing real
// embedding or generation calls.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Provider is a combined embedding and generation backend. Both bundled
// adapters (ollama, openai) serve the two concerns from one client.
type Provider interface {
	Embedder
	Generator
	Pinger

	// Name returns the canonical provider name (e.g., "ollama", "openai").
	Name() string
}
