package config

import (
	"github.com/summitchronicles/basecamp/pkg/answer"
	"github.com/summitchronicles/basecamp/pkg/segment"
)

const (
	defaultListen = ":8090"

	defaultProvider        = "ollama"
	defaultTarget          = "http://localhost:11434"
	defaultEmbeddingModel  = "nomic-embed-text"
	defaultGenerationModel = "llama3.1:8b"
	defaultTimeoutSeconds  = 120

	defaultCachePath = ".basecamp/embeddings.json"

	defaultHealthTTLSecs = 30
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Listen: defaultListen,
		},
		Provider: ProviderConfig{
			Name:            defaultProvider,
			Target:          defaultTarget,
			EmbeddingModel:  defaultEmbeddingModel,
			GenerationModel: defaultGenerationModel,
			TimeoutSeconds:  defaultTimeoutSeconds,
		},
		Cache: CacheConfig{
			Path: defaultCachePath,
		},
		Content: ContentConfig{
			Watch: true,
		},
		Engine: EngineConfig{
			MaxChunkSize:  segment.DefaultMaxChunkSize,
			ContextBudget: answer.DefaultContextBudget,
			HealthTTLSecs: defaultHealthTTLSecs,
		},
	}
}
