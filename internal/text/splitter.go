package text

import (
	"errors"
	"strings"

	"studyrag/internal/document"
)

var ErrInvalidChunking = errors.New("chunk_overlap must be non-negative and smaller than chunk_size")

// boundaries are tried in priority order when trimming a chunk: paragraph
// break, line break, sentence end, clause break.
var boundaries = []string{"\n\n", "\n", ". ", "! ", "? ", ", "}

// Splitter cuts raw text into overlapping chunks, snapping chunk ends to the
// nearest natural boundary past the midpoint so each chunk stays reasonably
// self-contained.
type Splitter struct {
	chunkSize    int
	chunkOverlap int
}

func NewSplitter(chunkSize, chunkOverlap int) (*Splitter, error) {
	if chunkSize <= 0 || chunkOverlap < 0 || chunkOverlap >= chunkSize {
		return nil, ErrInvalidChunking
	}
	return &Splitter{chunkSize: chunkSize, chunkOverlap: chunkOverlap}, nil
}

// chunkBody is the first phase of chunk construction: boundaries are fixed but
// the total count is not yet known.
type chunkBody struct {
	content string
	start   int
	end     int
}

// ChunkText splits text into overlapping chunks attributed to source.
// Chunk ids are sequential from 0 and start offsets strictly increase.
func (s *Splitter) ChunkText(text, source string) []document.Chunk {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var bodies []chunkBody
	start := 0

	for start < len(text) {
		end := start + s.chunkSize
		if end > len(text) {
			end = len(text)
		}

		if end < len(text) {
			end = s.snapToBoundary(text, start, end)
		}

		if content := strings.TrimSpace(text[start:end]); content != "" {
			bodies = append(bodies, chunkBody{content: content, start: start, end: end})
		}

		if end == len(text) {
			break
		}
		next := end - s.chunkOverlap
		if next <= start {
			// A snapped end inside the overlap window would re-select the
			// same region forever.
			break
		}
		start = next
	}

	// Second phase: the total is known, produce the final records.
	chunks := make([]document.Chunk, len(bodies))
	for i, b := range bodies {
		chunks[i] = document.Chunk{
			Content:   b.content,
			ChunkID:   i,
			Source:    source,
			StartChar: b.start,
			EndChar:   b.end,
			Metadata: map[string]any{
				"chunk_size":   len(b.content),
				"total_chunks": len(bodies),
			},
		}
	}
	return chunks
}

// snapToBoundary searches [start, end) backward for the highest-priority
// delimiter past the chunk midpoint and returns the position just after it.
// If no delimiter qualifies the naive end stands (hard cut).
func (s *Splitter) snapToBoundary(text string, start, end int) int {
	mid := start + s.chunkSize/2
	for _, b := range boundaries {
		idx := strings.LastIndex(text[start:end], b)
		if idx < 0 {
			continue
		}
		if pos := start + idx; pos > mid {
			return pos + len(b)
		}
	}
	return end
}

// ChunkDocuments chunks every document in input order and concatenates the
// results. Chunk ids restart at 0 per source.
func (s *Splitter) ChunkDocuments(docs []document.Document) []document.Chunk {
	var all []document.Chunk
	for _, doc := range docs {
		all = append(all, s.ChunkText(doc.Content, doc.Source)...)
	}
	return all
}
