package generate

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Gemini is the remote generation backend.
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &Gemini{client: client, model: client.GenerativeModel(model)}, nil
}

func (g *Gemini) Kind() Kind { return KindRemote }

func (g *Gemini) Close() error {
	return g.client.Close()
}

func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	res, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini generate: empty response")
	}

	var b strings.Builder
	for _, part := range res.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String(), nil
}
