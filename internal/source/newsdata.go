// Package source implements the headline fetchers: the newsdata.io JSON API and plain RSS feeds.
package source

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/0x0BSoD/heroNews/internal/model"
)

const (
	DefaultNewsDataBaseURL = "https://newsdata.io/api/1"
	DefaultLanguage        = "en"

	headlinesPath = "/news"
)

type NewsDataSource struct {
	BaseURL  string
	APIKey   string
	Language string

	client *http.Client
}

func NewNewsDataSource(baseURL, apiKey, language string, timeout time.Duration) *NewsDataSource {
	if baseURL == "" {
		baseURL = DefaultNewsDataBaseURL
	}
	if language == "" {
		language = DefaultLanguage
	}

	return &NewsDataSource{
		BaseURL:  baseURL,
		APIKey:   apiKey,
		Language: language,
		client:   &http.Client{Timeout: timeout},
	}
}

// newsResponse fields are pointers so a payload missing any of them can be
// told apart from an empty feed.
type newsResponse struct {
	Status       *string        `json:"status"`
	TotalResults *int           `json:"totalResults"`
	Results      *[]newsArticle `json:"results"`
}

func (r newsResponse) complete() bool {
	return r.Status != nil && r.TotalResults != nil && r.Results != nil
}

type newsArticle struct {
	ArticleID   *string  `json:"article_id"`
	Title       *string  `json:"title"`
	Link        *string  `json:"link"`
	Description *string  `json:"description"`
	Content     *string  `json:"content"`
	PubDate     *string  `json:"pubDate"`
	ImageURL    *string  `json:"image_url"`
	SourceID    *string  `json:"source_id"`
	Creators    []string `json:"creator"`
}

func (s *NewsDataSource) endpoint() (string, error) {
	raw := strings.TrimRight(s.BaseURL, "/") + headlinesPath

	u, err := url.Parse(raw)
	if err != nil {
		return "", &Error{Kind: KindInvalidEndpoint, Endpoint: raw, Err: err}
	}
	if u.Scheme == "" || u.Host == "" {
		return "", &Error{Kind: KindInvalidEndpoint, Endpoint: raw}
	}

	q := u.Query()
	q.Set("apikey", s.APIKey)
	q.Set("language", s.Language)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// Fetch performs a single GET against the headlines endpoint.
func (s *NewsDataSource) Fetch(ctx context.Context) ([]model.Article, error) {
	endpoint, err := s.endpoint()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &Error{Kind: KindInvalidEndpoint, Endpoint: endpoint, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindUnknown, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Kind: KindBadStatus, StatusCode: resp.StatusCode}
	}

	if len(body) == 0 {
		return nil, &Error{Kind: KindEmptyBody}
	}

	var payload newsResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &Error{Kind: KindDecode, Err: err}
	}
	if !payload.complete() {
		return nil, &Error{Kind: KindDecode, Err: errors.New("missing status, totalResults or results")}
	}

	return lo.Map(*payload.Results, func(a newsArticle, _ int) model.Article {
		return a.toDomain()
	}), nil
}

func transportError(err error) *Error {
	e := &Error{Kind: KindTransport, Err: err}

	var (
		netErr net.Error
		opErr  *net.OpError
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		e.Timeout = true
	case errors.As(err, &netErr) && netErr.Timeout():
		e.Timeout = true
	case errors.As(err, &opErr) && opErr.Op == "dial":
		e.Offline = true
	}

	return e
}
