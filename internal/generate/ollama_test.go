package generate_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyrag/internal/generate"
)

func TestOllama_Generate(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3", req["model"])
		assert.Equal(t, false, req["stream"])
		assert.Contains(t, req["prompt"], "What is a hash table?")

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"response": "A hash table maps keys to values."})
	}))
	defer ts.Close()

	o := generate.NewOllama(ts.URL, "llama3", 0, 0)
	answer, err := o.Generate(context.Background(), "What is a hash table?")
	require.NoError(t, err)
	assert.Equal(t, "A hash table maps keys to values.", answer)
	assert.Equal(t, generate.KindLocal, o.Kind())
}

func TestOllama_Generate_HTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer ts.Close()

	o := generate.NewOllama(ts.URL, "llama3", 0, 0)
	_, err := o.Generate(context.Background(), "q")
	assert.ErrorContains(t, err, "HTTP 404")
}

func TestOllama_Ping(t *testing.T) {
	t.Run("Healthy", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/tags", r.URL.Path)
			w.WriteHeader(http.StatusOK)
		}))
		defer ts.Close()

		o := generate.NewOllama(ts.URL, "llama3", 0, 0)
		assert.NoError(t, o.Ping(context.Background()))
	})

	t.Run("Down", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		ts.Close()

		o := generate.NewOllama(ts.URL, "llama3", 0, 0)
		assert.Error(t, o.Ping(context.Background()))
	})
}

func TestUnavailable(t *testing.T) {
	b := generate.Unavailable()
	assert.Equal(t, generate.KindUnavailable, b.Kind())
	_, err := b.Generate(context.Background(), "anything")
	assert.ErrorIs(t, err, generate.ErrUnavailable)
}
