package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyrag/internal/document"
	"studyrag/internal/generate"
)

type mockRunner struct {
	ingestCount int
	ingestErr   error
	lastDir     string
	lastRecreate bool

	response  *document.Response
	queryErr  error
	lastTopK  int
	lastQuery string

	clearErr   error
	clearCalls int

	stats map[string]any
	kind  generate.Kind
}

func (m *mockRunner) Ingest(_ context.Context, dir string, recreate bool) (int, error) {
	m.lastDir = dir
	m.lastRecreate = recreate
	return m.ingestCount, m.ingestErr
}

func (m *mockRunner) Query(_ context.Context, question string, topK int) (*document.Response, error) {
	m.lastQuery = question
	m.lastTopK = topK
	return m.response, m.queryErr
}

func (m *mockRunner) ClearIndex(context.Context) error {
	m.clearCalls++
	return m.clearErr
}

func (m *mockRunner) Stats(context.Context) map[string]any { return m.stats }

func (m *mockRunner) Backend() generate.Kind { return m.kind }

// setupRunner swaps the package pipeline for a mock so commands run without
// any external services.
func setupRunner(m *mockRunner) func() {
	prev := pipeline
	pipeline = m
	return func() {
		pipeline = prev
	}
}

func execute(t *testing.T, in string, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	if in != "" {
		rootCmd.SetIn(strings.NewReader(in))
	}
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

func TestIngestCmd(t *testing.T) {
	t.Run("Requires Directory Argument", func(t *testing.T) {
		defer setupRunner(&mockRunner{})()
		_, err := execute(t, "", "ingest")
		assert.Error(t, err)
	})

	t.Run("Reports Chunk Count", func(t *testing.T) {
		m := &mockRunner{ingestCount: 42}
		defer setupRunner(m)()

		out, err := execute(t, "", "ingest", "docs")
		require.NoError(t, err)
		assert.Equal(t, "docs", m.lastDir)
		assert.False(t, m.lastRecreate)
		assert.Contains(t, out, "Ingested 42 chunks")
	})

	t.Run("Recreate Flag Forwarded", func(t *testing.T) {
		m := &mockRunner{ingestCount: 1}
		defer setupRunner(m)()
		defer func() { ingestRecreate = false }()

		_, err := execute(t, "", "ingest", "--recreate", "docs")
		require.NoError(t, err)
		assert.True(t, m.lastRecreate)
	})

	t.Run("Empty Directory Message", func(t *testing.T) {
		defer setupRunner(&mockRunner{ingestCount: 0})()

		out, err := execute(t, "", "ingest", "docs")
		require.NoError(t, err)
		assert.Contains(t, out, "No documents found")
	})

	t.Run("Failure Surfaces As Error", func(t *testing.T) {
		defer setupRunner(&mockRunner{ingestErr: errors.New("boom")})()

		_, err := execute(t, "", "ingest", "docs")
		assert.ErrorContains(t, err, "ingestion failed")
	})
}

func TestQueryCmd(t *testing.T) {
	resp := &document.Response{
		Answer:          "A hash table maps keys to values.",
		Query:           "What is a hash table?",
		RetrievedChunks: 2,
		Sources: []document.SourceRef{
			{Source: "cs.txt", Similarity: 0.93, Preview: "A hash table..."},
			{Source: "cs.txt", Similarity: 0.88, Preview: "Collisions..."},
		},
	}

	t.Run("Prints Answer And Sources", func(t *testing.T) {
		m := &mockRunner{response: resp}
		defer setupRunner(m)()

		out, err := execute(t, "", "query", "What is a hash table?")
		require.NoError(t, err)
		assert.Equal(t, "What is a hash table?", m.lastQuery)
		assert.Contains(t, out, "ANSWER")
		assert.Contains(t, out, "A hash table maps keys to values.")
		assert.Contains(t, out, "Sources (2 chunks retrieved):")
		assert.Contains(t, out, "[1] cs.txt (similarity: 0.930)")
	})

	t.Run("TopK Flag Forwarded", func(t *testing.T) {
		m := &mockRunner{response: resp}
		defer setupRunner(m)()
		defer func() { queryTopK = 0 }()

		_, err := execute(t, "", "query", "--top-k", "3", "q")
		require.NoError(t, err)
		assert.Equal(t, 3, m.lastTopK)
	})

	t.Run("Failure Surfaces As Error", func(t *testing.T) {
		defer setupRunner(&mockRunner{queryErr: errors.New("engine down")})()

		_, err := execute(t, "", "query", "q")
		assert.ErrorContains(t, err, "query failed")
	})
}

func TestInteractiveCmd(t *testing.T) {
	resp := &document.Response{Answer: "42", RetrievedChunks: 1}

	t.Run("Exit Ends Session", func(t *testing.T) {
		defer setupRunner(&mockRunner{response: resp})()

		out, err := execute(t, "exit\n", "interactive")
		require.NoError(t, err)
		assert.Contains(t, out, "Goodbye!")
	})

	t.Run("Question Is Answered Then Quit", func(t *testing.T) {
		m := &mockRunner{response: resp}
		defer setupRunner(m)()

		out, err := execute(t, "what is the answer\nquit\n", "interactive")
		require.NoError(t, err)
		assert.Equal(t, "what is the answer", m.lastQuery)
		assert.Contains(t, out, "42")
	})

	t.Run("Help Lists Commands", func(t *testing.T) {
		defer setupRunner(&mockRunner{response: resp})()

		out, err := execute(t, "help\nexit\n", "interactive")
		require.NoError(t, err)
		assert.Contains(t, out, "exit/quit/q")
	})

	t.Run("Query Error Does Not End Session", func(t *testing.T) {
		defer setupRunner(&mockRunner{queryErr: errors.New("engine down")})()

		out, err := execute(t, "q1\nexit\n", "interactive")
		require.NoError(t, err)
		assert.Contains(t, out, "Error: ")
		assert.Contains(t, out, "Goodbye!")
	})

	t.Run("End Of Input Ends Session", func(t *testing.T) {
		defer setupRunner(&mockRunner{response: resp})()

		_, err := execute(t, "\n", "interactive")
		assert.NoError(t, err)
	})
}

func TestClearCmd(t *testing.T) {
	t.Run("Confirmation Required", func(t *testing.T) {
		m := &mockRunner{}
		defer setupRunner(m)()

		out, err := execute(t, "no\n", "clear")
		require.NoError(t, err)
		assert.Contains(t, out, "Cancelled.")
		assert.Zero(t, m.clearCalls)
	})

	t.Run("Yes Clears Index", func(t *testing.T) {
		m := &mockRunner{}
		defer setupRunner(m)()

		out, err := execute(t, "yes\n", "clear")
		require.NoError(t, err)
		assert.Contains(t, out, "Index cleared.")
		assert.Equal(t, 1, m.clearCalls)
	})

	t.Run("Yes Flag Skips Prompt", func(t *testing.T) {
		m := &mockRunner{}
		defer setupRunner(m)()
		defer func() { clearYes = false }()

		out, err := execute(t, "", "clear", "--yes")
		require.NoError(t, err)
		assert.Contains(t, out, "Index cleared.")
		assert.Equal(t, 1, m.clearCalls)
	})

	t.Run("Failure Surfaces As Error", func(t *testing.T) {
		defer setupRunner(&mockRunner{clearErr: errors.New("engine down")})()

		_, err := execute(t, "yes\n", "clear")
		assert.ErrorContains(t, err, "clearing index")
	})
}

func TestStatusCmd(t *testing.T) {
	m := &mockRunner{
		stats: map[string]any{"index": "study_docs", "total_chunks": 7},
		kind:  generate.KindLocal,
	}
	defer setupRunner(m)()

	out, err := execute(t, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "INDEX STATUS")
	assert.Contains(t, out, "Backend: local")
	assert.Contains(t, out, "index: study_docs")
	assert.Contains(t, out, "total_chunks: 7")
}
