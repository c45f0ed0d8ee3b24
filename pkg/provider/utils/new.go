// Package providerutils is the provider utility package
package providerutils

import (
	"fmt"
	"time"

	"github.com/summitchronicles/basecamp/pkg/provider"
	"github.com/summitchronicles/basecamp/pkg/provider/ollama"
	"github.com/summitchronicles/basecamp/pkg/provider/openai"
)

type NewProviderOpts struct {
	ProviderType    string
	TargetURL       string
	APIKey          string
	EmbeddingModel  string
	GenerationModel string
	Timeout         time.Duration
}

func NewProvider(o *NewProviderOpts) (provider.Provider, error) {
	switch o.ProviderType {
	case "ollama":
		return ollama.New(ollama.Config{
			BaseURL:         o.TargetURL,
			EmbeddingModel:  o.EmbeddingModel,
			GenerationModel: o.GenerationModel,
			Timeout:         o.Timeout,
		})
	case "openai":
		return openai.New(openai.Config{
			APIKey:          o.APIKey,
			BaseURL:         o.TargetURL,
			EmbeddingModel:  o.EmbeddingModel,
			GenerationModel: o.GenerationModel,
		})
	default:
		return nil, fmt.Errorf("unsupported provider: %s", o.ProviderType)
	}
}
