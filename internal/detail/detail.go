// Package detail prepares the reading view of one article: readable text
// and, when a summarizer is configured, a short summary.
package detail

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"

	"github.com/0x0BSoD/heroNews/internal/model"
	"github.com/0x0BSoD/heroNews/internal/viewmodel"
)

type Summarizer interface {
	Summarize(ctx context.Context, title, text string) (string, error)
}

// Page is a Detail plus the optional summary.
type Page struct {
	viewmodel.Detail
	Summary string
}

type Reader struct {
	summarizer Summarizer
	client     *http.Client
	now        func() time.Time
}

// NewReader builds a reader. summarizer may be nil.
func NewReader(summarizer Summarizer, client *http.Client) *Reader {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Reader{
		summarizer: summarizer,
		client:     client,
		now:        time.Now,
	}
}

// Read never fails because of extraction or summary problems; those are
// logged and the page falls back to the article's own text.
func (r *Reader) Read(ctx context.Context, article model.Article) Page {
	page := Page{Detail: viewmodel.NewDetail(article, r.now())}

	text, err := r.text(ctx, article)
	if err != nil {
		slog.Warn("failed to extract article text", "link", article.Link, "err", err)
	} else if text != "" {
		page.Content = text
	}

	if r.summarizer == nil || page.Content == "" {
		return page
	}

	summary, err := r.summarizer.Summarize(ctx, page.Title, page.Content)
	if err != nil {
		slog.Error("failed to summarize article", "title", article.Title, "err", err)
		return page
	}
	page.Summary = summary

	return page
}

var (
	htmlTag           = regexp.MustCompile(`<[a-zA-Z/!][^>]*>`)
	redundantNewLines = regexp.MustCompile(`\n{3,}`)
)

func (r *Reader) text(ctx context.Context, article model.Article) (string, error) {
	var src io.Reader

	switch {
	case article.Content != "":
		if !htmlTag.MatchString(article.Content) {
			return "", nil
		}
		src = strings.NewReader(article.Content)
	case article.Link != "":
		body, err := r.fetch(ctx, article.Link)
		if err != nil {
			return "", err
		}
		defer body.Close()
		src = body
	default:
		return "", nil
	}

	doc, err := readability.FromReader(src, nil)
	if err != nil {
		return "", fmt.Errorf("readability: %w", err)
	}

	return cleanupText(doc.TextContent), nil
}

func (r *Reader) fetch(ctx context.Context, link string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: status %d", link, resp.StatusCode)
	}

	return resp.Body, nil
}

func cleanupText(text string) string {
	return strings.TrimSpace(redundantNewLines.ReplaceAllString(text, "\n"))
}
