package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"

	"studyrag/internal/adapter/gemini"
	"studyrag/internal/config"
	"studyrag/internal/document"
	"studyrag/internal/embed"
	"studyrag/internal/generate"
	"studyrag/internal/ingest"
	"studyrag/internal/logger"
	"studyrag/internal/rag"
	"studyrag/internal/text"
	"studyrag/internal/vector"
)

// Runner is the slice of the pipeline the commands drive.
type Runner interface {
	Ingest(ctx context.Context, dir string, recreateIndex bool) (int, error)
	Query(ctx context.Context, question string, topK int) (*document.Response, error)
	ClearIndex(ctx context.Context) error
	Stats(ctx context.Context) map[string]any
	Backend() generate.Kind
}

var (
	pipeline Runner
	cfg      *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "studyrag",
	Short: "RAG assistant for studying from your own documents",
	Long: `Ingests PDF, text and markdown documents into a vector index and
answers questions grounded in the retrieved passages.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if pipeline != nil {
			return nil
		}
		return initPipeline(cmd.Context())
	},
}

// Execute runs the CLI. A non-nil error means the process should exit 1.
func Execute() error {
	ctx := logger.WithRunID(context.Background(), uuid.NewString())
	return rootCmd.ExecuteContext(ctx)
}

func initPipeline(ctx context.Context) error {
	loaded, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	cfg = loaded

	client, err := weaviate.NewClient(weaviate.Config{
		Host:   cfg.WeaviateHost,
		Scheme: cfg.WeaviateScheme,
	})
	if err != nil {
		return fmt.Errorf("creating weaviate client: %w", err)
	}
	adapter := vector.NewWeaviateAdapter(client)
	store := vector.NewStore(adapter, adapter, cfg.IndexName, cfg.EmbeddingDimension)

	encoder, err := gemini.NewEncoder(ctx, cfg.GeminiAPIKey, cfg.EmbeddingModel)
	if err != nil {
		return fmt.Errorf("creating embedding encoder: %w", err)
	}
	embedder := embed.NewEmbedder(encoder, cfg.EmbeddingModel, cfg.EmbeddingDimension)

	splitter, err := text.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return fmt.Errorf("creating splitter: %w", err)
	}

	backend := generate.Resolve(ctx, generate.Options{
		OllamaHost:      cfg.OllamaHost,
		Model:           cfg.LLMModel,
		APIKey:          cfg.GeminiAPIKey,
		RemoteModel:     cfg.LLMModel,
		ProbeTimeout:    cfg.ProbeTimeout,
		GenerateTimeout: cfg.GenerateTimeout,
	})

	pipeline = rag.NewPipeline(ingest.NewLoader(), splitter, embedder, store, backend, cfg.TopK)
	slog.InfoContext(ctx, "pipeline ready",
		"index", cfg.IndexName,
		"embedding_model", cfg.EmbeddingModel,
		"backend", pipeline.Backend())
	return nil
}
