package embed

import (
	"errors"
	"fmt"

	"github.com/amikos-tech/chroma-go/pkg/embeddings"
	gemini "github.com/amikos-tech/chroma-go/pkg/embeddings/gemini"
	openai "github.com/amikos-tech/chroma-go/pkg/embeddings/openai"
)

type ProviderConfig struct {
	OpenAIKey   string
	OpenAIModel string
	GeminiKey   string
	GeminiModel string
}

// NewEmbeddingFunction builds the provider-side embedding function. Exactly
// one provider must be configured.
func NewEmbeddingFunction(cfg ProviderConfig) (embeddings.EmbeddingFunction, error) {
	if cfg.OpenAIKey != "" {
		ef, err := openai.NewOpenAIEmbeddingFunction(
			cfg.OpenAIKey,
			openai.WithModel(openai.EmbeddingModel(cfg.OpenAIModel)))
		if err != nil {
			return nil, fmt.Errorf("failed to create OpenAI embedding function: %w", err)
		}

		return ef, nil
	}

	if cfg.GeminiKey != "" {
		ef, err := gemini.NewGeminiEmbeddingFunction(
			gemini.WithAPIKey(cfg.GeminiKey),
			gemini.WithDefaultModel(embeddings.EmbeddingModel(cfg.GeminiModel)))
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini embedding function: %w", err)
		}

		return ef, nil
	}

	return nil, errors.New("invalid embeddings provider configuration")
}
