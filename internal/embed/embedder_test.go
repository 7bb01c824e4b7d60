package embed_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyrag/internal/embed"
)

// fakeEncoder produces deterministic vectors of a fixed dimension and records
// every call it receives.
type fakeEncoder struct {
	dimension int
	calls     [][]string
	err       error
}

func (f *fakeEncoder) Encode(_ context.Context, texts []string) ([][]float32, error) {
	f.calls = append(f.calls, texts)
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec := make([]float32, f.dimension)
		vec[0] = float32(len(t))
		out[i] = vec
	}
	return out, nil
}

func TestEmbedText(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		enc := &fakeEncoder{dimension: 384}
		e := embed.NewEmbedder(enc, "all-MiniLM-L6-v2", 384)

		vec, err := e.EmbedText(context.Background(), "hello world")
		require.NoError(t, err)
		assert.Len(t, vec, 384)
		assert.Equal(t, 384, e.Dimension())
	})

	t.Run("Empty Text Rejected", func(t *testing.T) {
		e := embed.NewEmbedder(&fakeEncoder{dimension: 8}, "m", 8)

		_, err := e.EmbedText(context.Background(), "")
		assert.ErrorIs(t, err, embed.ErrEmptyText)

		_, err = e.EmbedText(context.Background(), "  \n\t ")
		assert.ErrorIs(t, err, embed.ErrEmptyText)
	})

	t.Run("Encoder Error Propagates", func(t *testing.T) {
		enc := &fakeEncoder{dimension: 8, err: errors.New("quota exceeded")}
		e := embed.NewEmbedder(enc, "m", 8)

		_, err := e.EmbedText(context.Background(), "hi")
		assert.Error(t, err)
	})
}

func TestEmbedBatch(t *testing.T) {
	t.Run("Output Aligned With Input", func(t *testing.T) {
		enc := &fakeEncoder{dimension: 384}
		e := embed.NewEmbedder(enc, "m", 384)

		out, err := e.EmbedBatch(context.Background(), []string{"", "hello world"})
		require.NoError(t, err)
		require.Len(t, out, 2)
		assert.Empty(t, out[0])
		assert.Len(t, out[1], 384)
	})

	t.Run("Blank Positions Keep Sentinel", func(t *testing.T) {
		enc := &fakeEncoder{dimension: 4}
		e := embed.NewEmbedder(enc, "m", 4)

		out, err := e.EmbedBatch(context.Background(), []string{"a", " ", "b", "", "c"})
		require.NoError(t, err)
		require.Len(t, out, 5)
		assert.Len(t, out[0], 4)
		assert.Empty(t, out[1])
		assert.Len(t, out[2], 4)
		assert.Empty(t, out[3])
		assert.Len(t, out[4], 4)

		// Only the non-blank texts reached the encoder, in order.
		require.Len(t, enc.calls, 1)
		assert.Equal(t, []string{"a", "b", "c"}, enc.calls[0])
	})

	t.Run("All Blank", func(t *testing.T) {
		enc := &fakeEncoder{dimension: 4}
		e := embed.NewEmbedder(enc, "m", 4)

		out, err := e.EmbedBatch(context.Background(), []string{"", "   "})
		require.NoError(t, err)
		require.Len(t, out, 2)
		assert.Empty(t, out[0])
		assert.Empty(t, out[1])
		assert.Empty(t, enc.calls, "encoder should not be called")
	})

	t.Run("Large Batch Split Into Sub Calls", func(t *testing.T) {
		enc := &fakeEncoder{dimension: 4}
		e := embed.NewEmbedder(enc, "m", 4)

		texts := make([]string, 70)
		for i := range texts {
			texts[i] = "text"
		}
		out, err := e.EmbedBatch(context.Background(), texts)
		require.NoError(t, err)
		assert.Len(t, out, 70)
		require.Len(t, enc.calls, 3)
		assert.Len(t, enc.calls[0], 32)
		assert.Len(t, enc.calls[1], 32)
		assert.Len(t, enc.calls[2], 6)
	})

	t.Run("Empty Input", func(t *testing.T) {
		e := embed.NewEmbedder(&fakeEncoder{dimension: 4}, "m", 4)
		out, err := e.EmbedBatch(context.Background(), nil)
		assert.NoError(t, err)
		assert.Nil(t, out)
	})
}
