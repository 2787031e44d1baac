package detail

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0x0BSoD/heroNews/internal/model"
)

type stubSummarizer struct {
	gotTitle string
	got      string
	out      string
	err      error
}

func (s *stubSummarizer) Summarize(_ context.Context, title, text string) (string, error) {
	s.gotTitle = title
	s.got = text
	return s.out, s.err
}

const paragraph = "The city council approved the new transit plan on Tuesday after months of debate, " +
	"committing to three additional bus lines, longer service hours and a pilot program for " +
	"electric ferries that officials say will cut commute times across the river by a third."

const page = `<!DOCTYPE html><html><head><title>Transit</title></head><body>
<nav><a href="/">Home</a></nav>
<article><h1>Transit plan approved</h1>
<p>` + paragraph + `</p>
<p>` + paragraph + `</p>
</article></body></html>`

func newReader(s Summarizer, client *http.Client) *Reader {
	r := NewReader(s, client)
	r.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	return r
}

func TestReader_PlainContent(t *testing.T) {
	r := newReader(nil, nil)

	got := r.Read(context.Background(), model.Article{
		Title:   " Headline ",
		Content: "Plain body text.",
		Source:  "Wire",
	})

	assert.Equal(t, "Headline", got.Title)
	assert.Equal(t, "Wire", got.Author)
	assert.Equal(t, "Plain body text.", got.Content)
	assert.Empty(t, got.Summary)
}

func TestReader_FallsBackToSummary(t *testing.T) {
	r := newReader(nil, nil)

	got := r.Read(context.Background(), model.Article{Summary: "only a summary"})

	assert.Equal(t, "only a summary", got.Content)
}

func TestReader_HTMLContent(t *testing.T) {
	r := newReader(nil, nil)

	got := r.Read(context.Background(), model.Article{Content: page})

	assert.Contains(t, got.Content, "approved the new transit plan")
	assert.NotContains(t, got.Content, "<p>")
}

func TestReader_FetchesLinkWhenContentEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	s := &stubSummarizer{out: "Council expands transit."}
	r := newReader(s, srv.Client())

	got := r.Read(context.Background(), model.Article{
		Title:   " Transit ",
		Summary: "short",
		Link:    srv.URL + "/story",
	})

	assert.Contains(t, got.Content, "electric ferries")
	assert.Equal(t, got.Content, s.got)
	assert.Equal(t, "Transit", s.gotTitle)
	assert.Equal(t, "Council expands transit.", got.Summary)
	assert.Equal(t, srv.URL+"/story", got.Link)
}

func TestReader_LinkFailureKeepsSummary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	r := newReader(nil, srv.Client())

	got := r.Read(context.Background(), model.Article{Summary: "short", Link: srv.URL})

	assert.Equal(t, "short", got.Content)
}

func TestReader_SummarizerFailure(t *testing.T) {
	s := &stubSummarizer{err: errors.New("model offline")}
	r := newReader(s, nil)

	got := r.Read(context.Background(), model.Article{Content: "body"})

	require.Equal(t, "body", got.Content)
	assert.Empty(t, got.Summary)
}
