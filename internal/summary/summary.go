// Package summary turns article text into a short AI-written summary.
package summary

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	KindOpenAI = "openai"
	KindOllama = "ollama"
)

// Long articles are cut to keep prompts inside small local context windows.
const maxInputRunes = 12000

type Summarizer interface {
	Summarize(ctx context.Context, title, text string) (string, error)
}

// New builds the summarizer named by kind. An empty kind returns nil, which
// callers treat as "summaries disabled".
func New(kind, baseURL, apiKey, prompt, model string, timeout time.Duration) (Summarizer, error) {
	switch kind {
	case "":
		return nil, nil
	case KindOpenAI:
		return NewOpenAISummarizer(baseURL, apiKey, prompt, model, timeout), nil
	case KindOllama:
		return NewOllamaSummarizer(baseURL, prompt, model, timeout), nil
	default:
		return nil, fmt.Errorf("unknown ai type %q", kind)
	}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// articleMessage is the user prompt shared by every backend.
func articleMessage(title, text string) string {
	var b strings.Builder

	if title = strings.TrimSpace(title); title != "" {
		b.WriteString("Title: ")
		b.WriteString(title)
		b.WriteString("\n\n")
	}

	body := []rune(strings.TrimSpace(text))
	if len(body) > maxInputRunes {
		body = body[:maxInputRunes]
	}
	b.WriteString(string(body))

	return b.String()
}
