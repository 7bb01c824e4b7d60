package gemini

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"studyrag/internal/embed"
)

// Encoder implements embed.Encoder on top of the Gemini embedding API.
type Encoder struct {
	client *genai.Client
	model  string
}

var _ embed.Encoder = (*Encoder)(nil)

func NewEncoder(ctx context.Context, apiKey, model string) (*Encoder, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &Encoder{client: client, model: model}, nil
}

func (e *Encoder) Close() error {
	return e.client.Close()
}

func (e *Encoder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	slog.DebugContext(ctx, "embedding batch", "model", e.model, "count", len(texts))

	em := e.client.EmbeddingModel(e.model)
	batch := em.NewBatch()
	for _, t := range texts {
		batch.AddContent(genai.Text(t))
	}

	res, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		slog.ErrorContext(ctx, "embedding failed", "model", e.model, "error", err)
		return nil, err
	}
	if len(res.Embeddings) != len(texts) {
		return nil, fmt.Errorf("gemini returned %d embeddings for %d inputs", len(res.Embeddings), len(texts))
	}

	vectors := make([][]float32, len(res.Embeddings))
	for i, emb := range res.Embeddings {
		if emb == nil || len(emb.Values) == 0 {
			return nil, fmt.Errorf("gemini returned an empty embedding at position %d", i)
		}
		vectors[i] = emb.Values
	}
	return vectors, nil
}
