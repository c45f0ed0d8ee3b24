// Package config defines the basecamp configuration and its loading
// order: defaults, then a TOML config file, then BASECAMP_* environment
// variables, then CLI flags.
package config

// Config is the full basecamp configuration. The TOML layout uses
// sections for logical grouping.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Provider ProviderConfig `toml:"provider"`
	Cache    CacheConfig    `toml:"cache"`
	Content  ContentConfig  `toml:"content"`
	Engine   EngineConfig   `toml:"engine"`
	Debug    bool           `toml:"debug,omitempty"`
}

// ServerConfig holds HTTP API server settings.
type ServerConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// ProviderConfig holds embedding/generation provider settings. APIKey is
// only read from the environment, never from the config file.
type ProviderConfig struct {
	Name            string `toml:"name,omitempty"`
	Target          string `toml:"target,omitempty"`
	EmbeddingModel  string `toml:"embedding_model,omitempty"`
	GenerationModel string `toml:"generation_model,omitempty"`
	TimeoutSeconds  uint   `toml:"timeout_seconds,omitempty"`
	APIKey          string `toml:"-"`
}

// CacheConfig holds embedding cache persistence settings.
type CacheConfig struct {
	Path string `toml:"path,omitempty"`
}

// ContentConfig holds markdown content ingestion settings.
type ContentConfig struct {
	Dir   string `toml:"dir,omitempty"`
	Watch bool   `toml:"watch,omitempty"`
}

// EngineConfig holds retrieval engine tunables.
type EngineConfig struct {
	MaxChunkSize  int  `toml:"max_chunk_size,omitempty"`
	ContextBudget int  `toml:"context_budget,omitempty"`
	HealthTTLSecs uint `toml:"health_ttl_seconds,omitempty"`
}
