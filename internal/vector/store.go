package vector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"unicode"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/weaviate/weaviate/entities/models"

	"studyrag/internal/document"
)

var ErrLengthMismatch = errors.New("number of chunks and embeddings must match")

const (
	// upsertBatchSize bounds the payload of a single batch call.
	upsertBatchSize = 100
	// searchBreadth is how many candidates are requested from the engine
	// before truncating to top_k. Wider than any sensible top_k to favor
	// recall over latency.
	searchBreadth = 128
	// previewChars is the length of the stored content preview.
	previewChars = 200
)

// presence tracks what we know about the index on the engine side.
type presence int

const (
	presenceUnknown presence = iota
	presenceAbsent
	presencePresent
)

// Store manages one named vector index: lifecycle, batched upserts and
// similarity search. All durable state lives in the engine; Store only caches
// whether the index is known to exist.
type Store struct {
	schema    SchemaClient
	data      DataClient
	indexName string
	className string
	dimension int
	state     presence
}

func NewStore(schema SchemaClient, data DataClient, indexName string, dimension int) *Store {
	return &Store{
		schema:    schema,
		data:      data,
		indexName: indexName,
		className: ClassName(indexName),
		dimension: dimension,
		state:     presenceUnknown,
	}
}

// ClassName converts an index name into a valid GraphQL class name: leading
// uppercase letter, word characters only.
func ClassName(indexName string) string {
	var b strings.Builder
	for _, r := range indexName {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	name := b.String()
	if name == "" {
		name = "Index"
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

func (s *Store) IndexName() string { return s.indexName }

// EnsureIndex makes sure the index exists. With recreate an existing index is
// dropped first. A failure to list classes is treated as "assume absent" and
// creation is attempted anyway.
func (s *Store) EnsureIndex(ctx context.Context, recreate bool) error {
	exists := s.resolvePresence(ctx)

	if exists {
		if !recreate {
			slog.InfoContext(ctx, "index already exists", "index", s.indexName)
			s.state = presencePresent
			return nil
		}
		slog.InfoContext(ctx, "deleting existing index", "index", s.indexName)
		if err := s.schema.DeleteClass(ctx, s.className); err != nil {
			s.state = presenceUnknown
			return fmt.Errorf("delete index %q: %w", s.indexName, err)
		}
	}

	slog.InfoContext(ctx, "creating index", "index", s.indexName, "dimension", s.dimension)
	if err := s.schema.CreateClass(ctx, s.newClass()); err != nil {
		s.state = presenceUnknown
		return fmt.Errorf("create index %q: %w", s.indexName, err)
	}
	s.state = presencePresent
	return nil
}

// resolvePresence answers whether the index exists, consulting the engine only
// when the local state is unknown.
func (s *Store) resolvePresence(ctx context.Context) bool {
	switch s.state {
	case presencePresent:
		return true
	case presenceAbsent:
		return false
	}

	names, err := s.schema.ListClasses(ctx)
	if err != nil {
		slog.WarnContext(ctx, "could not list indexes, assuming absent", "error", err)
		return false
	}
	for _, n := range names {
		if n == s.className {
			s.state = presencePresent
			return true
		}
	}
	s.state = presenceAbsent
	return false
}

// newClass builds the engine-side index definition: cosine distance and binary
// quantization are configuration of the engine, passed through unchanged.
func (s *Store) newClass() *models.Class {
	return &models.Class{
		Class:       s.className,
		Description: fmt.Sprintf("Study document chunks (%d-dimensional embeddings)", s.dimension),
		Vectorizer:  "none",
		VectorIndexConfig: map[string]interface{}{
			"distance": "cosine",
			"bq":       map[string]interface{}{"enabled": true},
		},
		Properties: []*models.Property{
			{Name: "content", DataType: []string{"text"}},
			{Name: "contentPreview", DataType: []string{"text"}},
			{Name: "chunkKey", DataType: []string{"string"}},
			{Name: "source", DataType: []string{"string"}},
			{Name: "chunkId", DataType: []string{"int"}},
			{Name: "startChar", DataType: []string{"int"}},
			{Name: "endChar", DataType: []string{"int"}},
		},
	}
}

// UpsertChunks writes chunks with their embeddings in fixed-size batches and
// returns how many records were accepted. On a mid-stream failure the count of
// already-accepted records is reported and retained by the engine; there is no
// rollback.
func (s *Store) UpsertChunks(ctx context.Context, chunks []document.Chunk, embeddings [][]float32) (int, error) {
	if len(chunks) != len(embeddings) {
		return 0, fmt.Errorf("%w: %d chunks, %d embeddings", ErrLengthMismatch, len(chunks), len(embeddings))
	}
	if len(chunks) == 0 {
		return 0, nil
	}

	objects := make([]*models.Object, len(chunks))
	for i, chunk := range chunks {
		objects[i] = s.newRecord(chunk, embeddings[i])
	}

	total := 0
	for start := 0; start < len(objects); start += upsertBatchSize {
		end := start + upsertBatchSize
		if end > len(objects) {
			end = len(objects)
		}
		if err := s.data.BatchUpsert(ctx, objects[start:end]); err != nil {
			slog.ErrorContext(ctx, "upsert failed mid-stream", "index", s.indexName, "accepted", total, "total", len(objects), "error", err)
			return total, fmt.Errorf("upsert batch: %w", err)
		}
		total = end
		slog.InfoContext(ctx, "upserted vectors", "index", s.indexName, "accepted", total, "total", len(objects))
	}
	return total, nil
}

// newRecord builds one engine object. The object id is a UUIDv5 of the
// composite chunk key, so re-ingesting the same chunk overwrites the prior
// record.
func (s *Store) newRecord(chunk document.Chunk, embedding []float32) *models.Object {
	key := chunk.Key()
	return &models.Object{
		Class:  s.className,
		ID:     strfmt.UUID(uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()),
		Vector: embedding,
		Properties: map[string]interface{}{
			"content":        chunk.Content,
			"contentPreview": document.Preview(chunk.Content, previewChars),
			"chunkKey":       key,
			"source":         chunk.Source,
			"chunkId":        chunk.ChunkID,
			"startChar":      chunk.StartChar,
			"endChar":        chunk.EndChar,
		},
	}
}

// Search returns the topK most similar chunks, optionally restricted to a
// single source document. Results come back similarity-descending.
func (s *Store) Search(ctx context.Context, queryVector []float32, topK int, sourceFilter string) ([]document.SearchResult, error) {
	res, err := s.data.NearVector(ctx, s.className, queryVector, searchBreadth, sourceFilter)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	if len(res.Errors) > 0 {
		return nil, fmt.Errorf("vector search: graphql error: %v", res.Errors[0].Message)
	}

	results := parseSearchResponse(res, s.className)

	// Ranking is delegated to the engine, but descending similarity is our
	// postcondition.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func parseSearchResponse(res *models.GraphQLResponse, className string) []document.SearchResult {
	data, ok := res.Data["Get"].(map[string]interface{})
	if !ok {
		return nil
	}
	items, ok := data[className].([]interface{})
	if !ok {
		return nil
	}

	var results []document.SearchResult
	for _, item := range items {
		props, ok := item.(map[string]interface{})
		if !ok {
			continue
		}

		r := document.SearchResult{Metadata: make(map[string]any)}
		for k, v := range props {
			if k != "_additional" {
				r.Metadata[k] = v
			}
		}
		if content, ok := props["content"].(string); ok {
			r.Content = content
		}
		if source, ok := props["source"].(string); ok {
			r.Source = source
		}
		if key, ok := props["chunkKey"].(string); ok {
			r.ID = key
		}
		if additional, ok := props["_additional"].(map[string]interface{}); ok {
			if certainty, ok := additional["certainty"].(float64); ok {
				r.Similarity = certainty
			}
		}
		results = append(results, r)
	}
	return results
}

// DeleteIndex drops the index. The caller decides whether a failure matters;
// local presence state goes back to unknown either way so the next operation
// re-resolves it.
func (s *Store) DeleteIndex(ctx context.Context) error {
	s.state = presenceUnknown
	if err := s.schema.DeleteClass(ctx, s.className); err != nil {
		slog.WarnContext(ctx, "could not delete index", "index", s.indexName, "error", err)
		return fmt.Errorf("delete index %q: %w", s.indexName, err)
	}
	s.state = presenceAbsent
	slog.InfoContext(ctx, "index deleted", "index", s.indexName)
	return nil
}

// Stats returns whatever the engine reports about the index. Failures degrade
// to an error description, never an error return.
func (s *Store) Stats(ctx context.Context) map[string]any {
	stats := map[string]any{
		"index":     s.indexName,
		"class":     s.className,
		"dimension": s.dimension,
	}

	res, err := s.data.Aggregate(ctx, s.className)
	if err != nil {
		stats["error"] = err.Error()
		return stats
	}
	if len(res.Errors) > 0 {
		stats["error"] = res.Errors[0].Message
		return stats
	}

	if count, ok := parseAggregateCount(res, s.className); ok {
		stats["total_chunks"] = count
	}
	return stats
}

func parseAggregateCount(res *models.GraphQLResponse, className string) (int, bool) {
	data, ok := res.Data["Aggregate"].(map[string]interface{})
	if !ok {
		return 0, false
	}
	items, ok := data[className].([]interface{})
	if !ok || len(items) == 0 {
		return 0, false
	}
	entry, ok := items[0].(map[string]interface{})
	if !ok {
		return 0, false
	}
	meta, ok := entry["meta"].(map[string]interface{})
	if !ok {
		return 0, false
	}
	count, ok := meta["count"].(float64)
	if !ok {
		return 0, false
	}
	return int(count), true
}
