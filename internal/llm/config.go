package llm

import (
	"os"

	"github.com/aura-assistant/aura/internal/schema"
)

const (
	DefaultModel          = "gpt-4o-mini"
	DefaultEmbeddingModel = "text-embedding-3-small"
)

// Config selects the OpenAI-compatible endpoint and models.
type Config struct {
	// APIKey defaults to OPENAI_API_KEY.
	APIKey string

	// BaseURL overrides the API endpoint (OPENAI_BASE_URL), for proxies and
	// compatible servers.
	BaseURL string

	// Model is the chat model used for schema generation (AURA_LLM_MODEL).
	Model string

	// EmbeddingModel is used for entity and query vectors (AURA_EMBEDDING_MODEL).
	EmbeddingModel string

	// Dimension is the expected embedding width.
	Dimension int
}

// DefaultConfig reads the configuration from the environment.
func DefaultConfig() Config {
	return Config{
		APIKey:         os.Getenv("OPENAI_API_KEY"),
		BaseURL:        os.Getenv("OPENAI_BASE_URL"),
		Model:          envOr("AURA_LLM_MODEL", DefaultModel),
		EmbeddingModel: envOr("AURA_EMBEDDING_MODEL", DefaultEmbeddingModel),
		Dimension:      schema.VectorDimension,
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
