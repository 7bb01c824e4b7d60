package embed

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var ErrEmptyText = errors.New("cannot embed empty text")

// encoderBatchSize bounds the payload of a single call into the underlying
// embedding capability.
const encoderBatchSize = 32

// Encoder is the raw text-to-vector capability. Implementations are expected
// to return one vector per input, in input order.
type Encoder interface {
	Encode(ctx context.Context, texts []string) ([][]float32, error)
}

// Embedder wraps an Encoder with a declared dimension and batch semantics:
// blank inputs never reach the encoder, and batch output is always positionally
// aligned with batch input.
type Embedder struct {
	encoder   Encoder
	model     string
	dimension int
}

func NewEmbedder(encoder Encoder, model string, dimension int) *Embedder {
	return &Embedder{encoder: encoder, model: model, dimension: dimension}
}

func (e *Embedder) Model() string { return e.model }

// Dimension returns the declared vector length of the model.
func (e *Embedder) Dimension() int { return e.dimension }

// EmbedText embeds a single text. Blank input is a validation error.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	vectors, err := e.encoder.Encode(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("encoder returned %d vectors for 1 input", len(vectors))
	}
	return vectors[0], nil
}

// EmbedBatch embeds texts and returns exactly one vector per input. Blank
// inputs map to an empty vector; all other positions carry the computed
// embedding. Only non-blank texts are sent to the encoder, in their original
// relative order.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	result := make([][]float32, len(texts))
	for i := range result {
		result[i] = []float32{}
	}

	var (
		valid   []string
		indices []int
	)
	for i, t := range texts {
		if strings.TrimSpace(t) != "" {
			valid = append(valid, t)
			indices = append(indices, i)
		}
	}
	if len(valid) == 0 {
		return result, nil
	}

	var vectors [][]float32
	for start := 0; start < len(valid); start += encoderBatchSize {
		end := start + encoderBatchSize
		if end > len(valid) {
			end = len(valid)
		}
		batch, err := e.encoder.Encode(ctx, valid[start:end])
		if err != nil {
			return nil, err
		}
		if len(batch) != end-start {
			return nil, fmt.Errorf("encoder returned %d vectors for %d inputs", len(batch), end-start)
		}
		vectors = append(vectors, batch...)
	}

	// Scatter back to the original positions.
	for i, idx := range indices {
		result[idx] = vectors[i]
	}
	return result, nil
}
