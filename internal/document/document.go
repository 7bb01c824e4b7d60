package document

import "fmt"

// Document is a single loaded study document. It is built once per file and
// discarded after chunking.
type Document struct {
	Content  string
	Source   string
	Metadata map[string]any
}

// Chunk is a bounded slice of a document, the unit of embedding and retrieval.
// StartChar/EndChar are 0-indexed offsets into the original content, EndChar
// exclusive. ChunkID is the ordinal position within the source, starting at 0.
type Chunk struct {
	Content   string
	ChunkID   int
	Source    string
	StartChar int
	EndChar   int
	Metadata  map[string]any
}

// Key returns the composite identity of a chunk used as the vector record id.
// Upserting the same key again overwrites the prior record.
func (c Chunk) Key() string {
	return fmt.Sprintf("%s_chunk_%d", c.Source, c.ChunkID)
}

// SearchResult is one ranked hit from the vector index.
type SearchResult struct {
	ID         string
	Similarity float64
	Content    string
	Source     string
	Metadata   map[string]any
}

// SourceRef is a provenance record attached to a response.
type SourceRef struct {
	Source     string  `json:"source"`
	Similarity float64 `json:"similarity"`
	Preview    string  `json:"preview"`
}

// Response is the final answer to a query, with provenance.
type Response struct {
	Answer          string      `json:"answer"`
	Sources         []SourceRef `json:"sources"`
	Query           string      `json:"query"`
	RetrievedChunks int         `json:"retrieved_chunks"`
}

// Preview truncates s for display, appending a marker when content was cut.
func Preview(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
