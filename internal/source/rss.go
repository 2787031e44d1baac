package source

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/SlyMarbo/rss"
	"github.com/samber/lo"

	"github.com/0x0BSoD/heroNews/internal/model"
)

// contextTransport injects a context into every outgoing request so that
// context cancellation and deadlines propagate through the rss library.
// It also remembers the last status code, which the library does not expose.
type contextTransport struct {
	ctx    context.Context
	base   http.RoundTripper
	status *int
}

func (t contextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req.WithContext(t.ctx))
	if err == nil && t.status != nil {
		*t.status = resp.StatusCode
	}
	return resp, err
}

// RSSSource reads headlines from a single RSS or Atom feed. Items carry no
// author information, so rows fall back to the source name.
type RSSSource struct {
	URL      string
	Name     string
	Insecure bool
	Timeout  time.Duration
}

func NewRSSSource(feedURL, name string, timeout time.Duration) RSSSource {
	return RSSSource{URL: feedURL, Name: name, Timeout: timeout}
}

func (s RSSSource) Fetch(ctx context.Context) ([]model.Article, error) {
	feed, err := s.loadFeed(ctx)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(s.Name)
	if name == "" {
		name = strings.TrimSpace(feed.Title)
	}

	return lo.Map(feed.Items, func(item *rss.Item, _ int) model.Article {
		var published *time.Time
		if !item.Date.IsZero() {
			d := item.Date
			published = &d
		}

		link := strings.TrimSpace(item.Link)

		return model.Article{
			ID:          articleID(strings.TrimSpace(item.ID), link),
			Title:       orDefault(strings.TrimSpace(item.Title), UnknownTitle),
			Summary:     orDefault(strings.TrimSpace(item.Summary), UnknownSummary),
			Content:     strings.TrimSpace(item.Content),
			PublishedAt: published,
			ImageURL:    enclosureImage(item),
			Link:        link,
			Source:      orDefault(name, UnknownSource),
			Authors:     []string{},
		}
	}), nil
}

func enclosureImage(item *rss.Item) string {
	for _, enc := range item.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "image/") {
			return imageURL(strings.TrimSpace(enc.URL))
		}
	}
	return ""
}

func (s RSSSource) loadFeed(ctx context.Context) (*rss.Feed, error) {
	base := http.DefaultTransport
	if s.Insecure {
		base = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec
		}
	}

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	var status int
	client := &http.Client{
		Transport: contextTransport{ctx: ctx, base: base, status: &status},
		Timeout:   timeout,
	}

	feed, err := rss.FetchByClient(s.URL, client)
	if err != nil {
		var urlErr *url.Error
		switch {
		case errors.As(err, &urlErr):
			return nil, transportError(err)
		case status != 0 && (status < 200 || status > 299):
			return nil, &Error{Kind: KindBadStatus, StatusCode: status, Err: err}
		default:
			return nil, &Error{Kind: KindDecode, Err: err}
		}
	}

	return feed, nil
}
