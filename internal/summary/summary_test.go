package summary

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	s, err := New("", "", "", "", "", time.Second)
	require.NoError(t, err)
	assert.Nil(t, s)

	s, err = New(KindOpenAI, "", "key", "prompt", "gpt", time.Second)
	require.NoError(t, err)
	assert.IsType(t, &OpenAISummarizer{}, s)

	s, err = New(KindOllama, "localhost:11434", "", "prompt", "llama3", time.Second)
	require.NoError(t, err)
	assert.IsType(t, &OllamaSummarizer{}, s)

	_, err = New("claude", "", "", "", "", time.Second)
	assert.Error(t, err)
}

func TestOpenAISummarizer(t *testing.T) {
	var (
		gotModel, gotSystem, gotUser string
		gotMaxTokens                 int
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)

		var req struct {
			Model     string `json:"model"`
			MaxTokens int    `json:"max_tokens"`
			Messages  []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)
		gotModel = req.Model
		gotMaxTokens = req.MaxTokens
		gotSystem = req.Messages[0].Content
		gotUser = req.Messages[1].Content

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"  Short summary. "}}]}`))
	}))
	defer srv.Close()

	s := NewOpenAISummarizer(srv.URL, "key", "be brief", "test-model", time.Second)

	got, err := s.Summarize(context.Background(), " Storm hits coast ", "long article text\n")
	require.NoError(t, err)

	assert.Equal(t, "Short summary.", got)
	assert.Equal(t, "test-model", gotModel)
	assert.Equal(t, openAIMaxTokens, gotMaxTokens)
	assert.Equal(t, "be brief", gotSystem)
	assert.Equal(t, "Title: Storm hits coast\n\nlong article text", gotUser)
}

func TestOpenAISummarizer_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","choices":[]}`))
	}))
	defer srv.Close()

	s := NewOpenAISummarizer(srv.URL, "key", "", "m", time.Second)

	_, err := s.Summarize(context.Background(), "title", "text")
	assert.ErrorContains(t, err, "returned no summary")
}

func TestOpenAISummarizer_BlankContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","choices":[{"index":0,"message":{"role":"assistant","content":"  \n"}}]}`))
	}))
	defer srv.Close()

	s := NewOpenAISummarizer(srv.URL, "key", "", "m", time.Second)

	_, err := s.Summarize(context.Background(), "title", "text")
	assert.ErrorContains(t, err, "returned no summary")
}

func TestOllamaSummarizer(t *testing.T) {
	var gotPrompt string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)

		var req struct {
			Prompt string `json:"prompt"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotPrompt = req.Prompt

		w.Header().Set("Content-Type", "application/x-ndjson")
		_, _ = w.Write([]byte(`{"model":"llama3","response":"Hello","done":false}` + "\n"))
		_, _ = w.Write([]byte(`{"model":"llama3","response":" world.","done":true}` + "\n"))
	}))
	defer srv.Close()

	s := NewOllamaSummarizer(strings.TrimPrefix(srv.URL, "http://"), "be brief", "llama3", time.Second)

	got, err := s.Summarize(context.Background(), "Headline", "text")
	require.NoError(t, err)
	assert.Equal(t, "Hello world.", got)
	assert.Equal(t, "Title: Headline\n\ntext", gotPrompt)
}

func TestArticleMessage(t *testing.T) {
	assert.Equal(t, "body only", articleMessage("  ", " body only "))

	long := strings.Repeat("é", maxInputRunes+10)
	msg := articleMessage("T", long)
	assert.Equal(t, "Title: T\n\n"+strings.Repeat("é", maxInputRunes), msg)
}
