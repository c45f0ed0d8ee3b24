package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag. Commands reference
// flags by registry key rather than hard-coding names, shorthands,
// defaults and descriptions inline, so the same logical flag cannot
// drift across commands.
type Flag struct {
	// Name is the long flag name (e.g. "listen").
	Name string

	// Shorthand is the one-letter short flag. Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to.
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet maps registry keys to Flag definitions.
type FlagSet map[string]Flag

// Flag registry keys.
const (
	FlagListen          = "listen"
	FlagProvider        = "provider"
	FlagTarget          = "target"
	FlagEmbeddingModel  = "embedding-model"
	FlagGenerationModel = "generation-model"
	FlagCachePath       = "cache-path"
	FlagContentDir      = "content-dir"
)

// Flags is the basecamp flag registry.
var Flags = FlagSet{
	FlagListen: {
		Name:        "listen",
		Shorthand:   "l",
		ViperKey:    "server.listen",
		Description: "address the API server listens on",
	},
	FlagProvider: {
		Name:        "provider",
		Shorthand:   "p",
		ViperKey:    "provider.name",
		Description: "embedding/generation provider (ollama, openai)",
	},
	FlagTarget: {
		Name:        "target",
		ViperKey:    "provider.target",
		Description: "provider base URL",
	},
	FlagEmbeddingModel: {
		Name:        "embedding-model",
		ViperKey:    "provider.embedding_model",
		Description: "model used for embeddings",
	},
	FlagGenerationModel: {
		Name:        "generation-model",
		ViperKey:    "provider.generation_model",
		Description: "model used for answer generation",
	},
	FlagCachePath: {
		Name:        "cache-path",
		ViperKey:    "cache.path",
		Description: "embedding cache file (empty disables persistence)",
	},
	FlagContentDir: {
		Name:        "content-dir",
		Shorthand:   "c",
		ViperKey:    "content.dir",
		Description: "markdown content directory ingested at startup",
	},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default and description all come from the
// FlagSet entry.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using
// definitions from the given FlagSet. Call this in PreRunE after
// InitViper to connect flags to the viper precedence chain
// (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaultString returns the default string value for a viper key from
// NewDefaultConfig.
func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}
