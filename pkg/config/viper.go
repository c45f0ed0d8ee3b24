package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the TOML config file
// at configPath (if given and present), and binds environment variables
// with the BASECAMP_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (BASECAMP_SERVER_LISTEN, BASECAMP_PROVIDER_NAME, etc.)
//  3. Config file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configPath string) (*viper.Viper, error) {
	v := viper.New()

	setViperDefaults(v)

	v.SetConfigType("toml")
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("basecamp")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine, defaults will apply. An explicit
		// path that does not exist is fine too.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix("BASECAMP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// FromViper materializes a Config from the resolved viper state. The
// provider API key comes from OPENAI_API_KEY since it must never land in
// a config file.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Listen: v.GetString("server.listen"),
		},
		Provider: ProviderConfig{
			Name:            v.GetString("provider.name"),
			Target:          v.GetString("provider.target"),
			EmbeddingModel:  v.GetString("provider.embedding_model"),
			GenerationModel: v.GetString("provider.generation_model"),
			TimeoutSeconds:  v.GetUint("provider.timeout_seconds"),
			APIKey:          os.Getenv("OPENAI_API_KEY"),
		},
		Cache: CacheConfig{
			Path: expandHome(v.GetString("cache.path")),
		},
		Content: ContentConfig{
			Dir:   expandHome(v.GetString("content.dir")),
			Watch: v.GetBool("content.watch"),
		},
		Engine: EngineConfig{
			MaxChunkSize:  v.GetInt("engine.max_chunk_size"),
			ContextBudget: v.GetInt("engine.context_budget"),
			HealthTTLSecs: v.GetUint("engine.health_ttl_seconds"),
		},
		Debug: v.GetBool("debug"),
	}
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source
// of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("debug", d.Debug)

	// Server
	v.SetDefault("server.listen", d.Server.Listen)

	// Provider
	v.SetDefault("provider.name", d.Provider.Name)
	v.SetDefault("provider.target", d.Provider.Target)
	v.SetDefault("provider.embedding_model", d.Provider.EmbeddingModel)
	v.SetDefault("provider.generation_model", d.Provider.GenerationModel)
	v.SetDefault("provider.timeout_seconds", d.Provider.TimeoutSeconds)

	// Cache
	v.SetDefault("cache.path", d.Cache.Path)

	// Content
	v.SetDefault("content.dir", d.Content.Dir)
	v.SetDefault("content.watch", d.Content.Watch)

	// Engine
	v.SetDefault("engine.max_chunk_size", d.Engine.MaxChunkSize)
	v.SetDefault("engine.context_budget", d.Engine.ContextBudget)
	v.SetDefault("engine.health_ttl_seconds", d.Engine.HealthTTLSecs)
}

// expandHome resolves a leading ~/ against the current user's home dir.
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
