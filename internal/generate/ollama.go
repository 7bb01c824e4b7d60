package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultOllamaHost = "http://localhost:11434"
	// Generation waits out cold model loads; the probe must answer fast.
	defaultProbeTimeout    = 2 * time.Second
	defaultGenerateTimeout = 180 * time.Second
)

// Ollama is the local generation backend, a thin client over the Ollama HTTP
// API.
type Ollama struct {
	baseURL     string
	model       string
	probeClient *http.Client
	genClient   *http.Client
}

func NewOllama(baseURL, model string, probeTimeout, generateTimeout time.Duration) *Ollama {
	if baseURL == "" {
		baseURL = defaultOllamaHost
	}
	if probeTimeout <= 0 {
		probeTimeout = defaultProbeTimeout
	}
	if generateTimeout <= 0 {
		generateTimeout = defaultGenerateTimeout
	}
	return &Ollama{
		baseURL:     baseURL,
		model:       model,
		probeClient: &http.Client{Timeout: probeTimeout},
		genClient:   &http.Client{Timeout: generateTimeout},
	}
}

func (o *Ollama) Kind() Kind { return KindLocal }

// Ping checks whether the local endpoint is serving. Used as the default
// availability probe during backend resolution.
func (o *Ollama) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/api/tags", nil)
	if err != nil {
		return err
	}
	resp, err := o.probeClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama probe: unexpected status %d", resp.StatusCode)
	}
	return nil
}

func (o *Ollama) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody := map[string]interface{}{
		"model":  o.model,
		"prompt": prompt,
		"stream": false,
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.genClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ollama generate: HTTP %d: %s", resp.StatusCode, string(data))
	}

	var result struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("ollama generate: decode response: %w", err)
	}
	return result.Response, nil
}
