package summary

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/ollama/ollama/api"
)

// OllamaSummarizer asks a local Ollama server for a summary. Requests are
// serialized; a small local model handles one prompt at a time anyway.
type OllamaSummarizer struct {
	client  *api.Client
	prompt  string
	model   string
	timeout time.Duration
	mu      sync.Mutex
}

// NewOllamaSummarizer takes the server as host:port.
func NewOllamaSummarizer(host, prompt, model string, timeout time.Duration) *OllamaSummarizer {
	c := api.NewClient(&url.URL{
		Scheme: "http",
		Host:   host,
		Path:   "/",
	}, &http.Client{})

	return &OllamaSummarizer{
		client:  c,
		prompt:  prompt,
		model:   model,
		timeout: timeout,
	}
}

func (o *OllamaSummarizer) Summarize(ctx context.Context, title, text string) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	req := &api.GenerateRequest{
		Model:  o.model,
		System: o.prompt,
		Prompt: articleMessage(title, text),
	}

	ctx, cancel := withTimeout(ctx, o.timeout)
	defer cancel()

	var b strings.Builder
	err := o.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		b.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}

	return strings.TrimSpace(b.String()), nil
}
