package provider

import "errors"

var (
	// ErrEmbedding is returned when embedding generation fails or times out.
	ErrEmbedding = errors.New("embedding failed")

	// ErrGeneration is returned when a completion call fails or times out.
	ErrGeneration = errors.New("generation failed")

	// ErrConnection is returned when the provider cannot be reached at all.
	ErrConnection = errors.New("provider connection failed")
)
