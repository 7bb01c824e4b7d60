package rag

import (
	"context"
	"fmt"
	"log/slog"

	"studyrag/internal/document"
	"studyrag/internal/generate"
)

// Loader provides study documents from disk.
type Loader interface {
	LoadDirectory(dir string) ([]document.Document, error)
}

// Splitter cuts documents into retrievable chunks.
type Splitter interface {
	ChunkDocuments(docs []document.Document) []document.Chunk
}

// Embedder turns text into fixed-dimension vectors.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Store persists chunk vectors and answers similarity queries.
type Store interface {
	EnsureIndex(ctx context.Context, recreate bool) error
	UpsertChunks(ctx context.Context, chunks []document.Chunk, embeddings [][]float32) (int, error)
	Search(ctx context.Context, queryVector []float32, topK int, sourceFilter string) ([]document.SearchResult, error)
	DeleteIndex(ctx context.Context) error
	Stats(ctx context.Context) map[string]any
}

// Pipeline sequences ingestion (load, chunk, embed, upsert) and query (embed,
// search, generate). Stages run strictly in order with no retries; partial
// ingestion progress already in the index is kept on failure.
type Pipeline struct {
	loader   Loader
	splitter Splitter
	embedder Embedder
	store    Store
	backend  generate.Backend
	topK     int
}

func NewPipeline(loader Loader, splitter Splitter, embedder Embedder, store Store, backend generate.Backend, topK int) *Pipeline {
	return &Pipeline{
		loader:   loader,
		splitter: splitter,
		embedder: embedder,
		store:    store,
		backend:  backend,
		topK:     topK,
	}
}

// Backend exposes the resolved generation backend kind, mostly for status
// output.
func (p *Pipeline) Backend() generate.Kind {
	return p.backend.Kind()
}

// Ingest loads every supported document under dir, chunks and embeds them, and
// upserts the result into the index. Returns the number of chunks stored.
// A directory with no documents returns 0 without touching the index.
func (p *Pipeline) Ingest(ctx context.Context, dir string, recreateIndex bool) (int, error) {
	slog.InfoContext(ctx, "loading documents", "stage", "1/4", "dir", dir)
	docs, err := p.loader.LoadDirectory(dir)
	if err != nil {
		return 0, fmt.Errorf("load documents: %w", err)
	}
	if len(docs) == 0 {
		slog.WarnContext(ctx, "no documents found", "dir", dir)
		return 0, nil
	}

	slog.InfoContext(ctx, "chunking documents", "stage", "2/4", "documents", len(docs))
	chunks := p.splitter.ChunkDocuments(docs)

	slog.InfoContext(ctx, "generating embeddings", "stage", "3/4", "chunks", len(chunks))
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	embeddings, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed chunks: %w", err)
	}

	slog.InfoContext(ctx, "storing vectors", "stage", "4/4", "recreate", recreateIndex)
	if err := p.store.EnsureIndex(ctx, recreateIndex); err != nil {
		return 0, err
	}
	stored, err := p.store.UpsertChunks(ctx, chunks, embeddings)
	if err != nil {
		return stored, err
	}

	slog.InfoContext(ctx, "ingestion complete", "chunks", stored)
	return stored, nil
}

// Query answers a question from the indexed materials. Embedding or search
// failures abort the query; generation failures degrade the answer but never
// fail it.
func (p *Pipeline) Query(ctx context.Context, question string, topK int) (*document.Response, error) {
	k := topK
	if k <= 0 {
		k = p.topK
	}

	slog.InfoContext(ctx, "embedding query", "stage", "1/3")
	queryVector, err := p.embedder.EmbedText(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	slog.InfoContext(ctx, "searching index", "stage", "2/3", "top_k", k)
	results, err := p.store.Search(ctx, queryVector, k, "")
	if err != nil {
		return nil, err
	}

	if len(results) == 0 {
		slog.InfoContext(ctx, "no relevant chunks found")
		return &document.Response{
			Answer:          noInformationAnswer,
			Sources:         []document.SourceRef{},
			Query:           question,
			RetrievedChunks: 0,
		}, nil
	}

	contextBlock, sources := buildContext(results)

	slog.InfoContext(ctx, "generating answer", "stage", "3/3", "backend", p.backend.Kind(), "chunks", len(results))
	answer := p.generateAnswer(ctx, contextBlock, question)

	return &document.Response{
		Answer:          answer,
		Sources:         sources,
		Query:           question,
		RetrievedChunks: len(results),
	}, nil
}

func (p *Pipeline) generateAnswer(ctx context.Context, contextBlock, question string) string {
	if p.backend.Kind() == generate.KindUnavailable {
		return "Retrieved context (LLM not configured):\n\n" + contextBlock
	}

	answer, err := p.backend.Generate(ctx, buildPrompt(contextBlock, question))
	if err != nil {
		slog.WarnContext(ctx, "generation failed, degrading to raw context", "error", err)
		return fmt.Sprintf("Error generating answer: %v\n\nRetrieved context:\n%s", err, contextBlock)
	}
	return answer
}

// ClearIndex drops the vector index.
func (p *Pipeline) ClearIndex(ctx context.Context) error {
	return p.store.DeleteIndex(ctx)
}

// Stats reports index statistics, best effort.
func (p *Pipeline) Stats(ctx context.Context) map[string]any {
	return p.store.Stats(ctx)
}
