package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	WeaviateHost   string `envconfig:"WEAVIATE_HOST" default:"localhost:8080"`
	WeaviateScheme string `envconfig:"WEAVIATE_SCHEME" default:"http"`
	IndexName      string `envconfig:"INDEX_NAME" default:"study_docs"`

	EmbeddingModel     string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-004"`
	EmbeddingDimension int    `envconfig:"EMBEDDING_DIMENSION" default:"384"`

	ChunkSize    int `envconfig:"CHUNK_SIZE" default:"1000"`
	ChunkOverlap int `envconfig:"CHUNK_OVERLAP" default:"200"`
	TopK         int `envconfig:"TOP_K" default:"5"`

	GeminiAPIKey string `envconfig:"GOOGLE_API_KEY"`
	LLMModel     string `envconfig:"LLM_MODEL" default:"gemini-2.0-flash"`
	OllamaHost   string `envconfig:"OLLAMA_HOST" default:"http://localhost:11434"`

	ProbeTimeout    time.Duration `envconfig:"LLM_PROBE_TIMEOUT" default:"2s"`
	GenerateTimeout time.Duration `envconfig:"LLM_GENERATE_TIMEOUT" default:"180s"`
}

func Load() (*Config, error) {
	// Env vars set in the shell take precedence over .env values.
	_ = godotenv.Load(".env")

	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.WeaviateHost == "" {
		return fmt.Errorf("%w: WEAVIATE_HOST must be set", ErrInvalidConfig)
	}
	if c.IndexName == "" {
		return fmt.Errorf("%w: INDEX_NAME must be set", ErrInvalidConfig)
	}
	if c.EmbeddingDimension <= 0 {
		return fmt.Errorf("%w: EMBEDDING_DIMENSION must be positive, got %d", ErrInvalidConfig, c.EmbeddingDimension)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: CHUNK_SIZE must be positive, got %d", ErrInvalidConfig, c.ChunkSize)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: CHUNK_OVERLAP must be in [0, CHUNK_SIZE), got %d", ErrInvalidConfig, c.ChunkOverlap)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("%w: TOP_K must be positive, got %d", ErrInvalidConfig, c.TopK)
	}
	return nil
}
