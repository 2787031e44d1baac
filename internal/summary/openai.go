package summary

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	openAITemperature = 0.2
	openAIMaxTokens   = 256
)

// OpenAISummarizer talks to any OpenAI-compatible chat completion API
// (api.openai.com, LM Studio, llama.cpp, Ollama's /v1).
type OpenAISummarizer struct {
	client  *openai.Client
	prompt  string
	model   string
	timeout time.Duration
}

// NewOpenAISummarizer leaves the client on api.openai.com when baseURL is empty.
func NewOpenAISummarizer(baseURL, apiKey, prompt, model string, timeout time.Duration) *OpenAISummarizer {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &OpenAISummarizer{
		client:  openai.NewClientWithConfig(cfg),
		prompt:  prompt,
		model:   model,
		timeout: timeout,
	}
}

// Summarize sends the headline and the article body as one user message.
func (o *OpenAISummarizer) Summarize(ctx context.Context, title, text string) (string, error) {
	ctx, cancel := withTimeout(ctx, o.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: openAITemperature,
		MaxTokens:   openAIMaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: o.prompt},
			{Role: openai.ChatMessageRoleUser, Content: articleMessage(title, text)},
		},
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("summarizing %q with %s: %w", title, o.model, err)
	}

	for _, choice := range resp.Choices {
		if out := strings.TrimSpace(choice.Message.Content); out != "" {
			return out, nil
		}
	}

	return "", errors.New("model " + o.model + " returned no summary")
}
