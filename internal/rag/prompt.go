package rag

import (
	"fmt"
	"strings"

	"studyrag/internal/document"
)

// systemPrompt enforces strict grounding: answers come from the retrieved
// context or not at all.
const systemPrompt = `You are a study assistant helping someone prepare from their own materials.

CRITICAL RULES:
1. Answer ONLY using the provided context below
2. If the context doesn't contain relevant information, say: "I don't have information about this topic in my current knowledge base. Please add relevant study materials."
3. Never make up information or use knowledge outside the provided context
4. Cite the source document when providing information
5. Keep answers concise but comprehensive

Context from study materials:
%s

---
Answer the following question based ONLY on the context above.`

const noInformationAnswer = "I couldn't find any relevant information in my knowledge base. Please make sure documents have been ingested."

const contextDivider = "\n\n---\n\n"

const sourcePreviewChars = 150

// buildContext renders retrieved chunks into the context block fed to the
// generation backend, plus the provenance list returned to the caller.
// Order follows the search ranking.
func buildContext(results []document.SearchResult) (string, []document.SourceRef) {
	parts := make([]string, len(results))
	sources := make([]document.SourceRef, len(results))
	for i, r := range results {
		parts[i] = fmt.Sprintf("[%d] From '%s' (similarity: %.3f):\n%s", i+1, r.Source, r.Similarity, r.Content)
		sources[i] = document.SourceRef{
			Source:     r.Source,
			Similarity: r.Similarity,
			Preview:    document.Preview(r.Content, sourcePreviewChars),
		}
	}
	return strings.Join(parts, contextDivider), sources
}

func buildPrompt(contextBlock, question string) string {
	return fmt.Sprintf(systemPrompt, contextBlock) + fmt.Sprintf("\n\nQuestion: %s\n\nAnswer:", question)
}
