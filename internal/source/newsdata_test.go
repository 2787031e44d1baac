package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const headlinesPayload = `{
  "status": "success",
  "totalResults": 2,
  "results": [
    {
      "article_id": "abc123",
      "title": "  Apple launches iPhone 16 ",
      "link": "https://example.com/apple",
      "description": "The new phone is here",
      "content": "Long body",
      "pubDate": "2025-12-11 09:30:00",
      "image_url": "https://img.example.com/apple.jpg",
      "source_id": "verge",
      "creator": ["  ", "Jane Doe"]
    },
    {
      "title": null,
      "description": "",
      "pubDate": "not a date",
      "image_url": "::bad",
      "creator": null
    }
  ]
}`

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestNewsDataSource_Fetch(t *testing.T) {
	var gotQuery map[string]string
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/1/news", r.URL.Path)
		gotQuery = map[string]string{
			"apikey":   r.URL.Query().Get("apikey"),
			"language": r.URL.Query().Get("language"),
		}
		_, _ = w.Write([]byte(headlinesPayload))
	})

	src := NewNewsDataSource(srv.URL+"/api/1", "secret", "", time.Second)
	articles, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, articles, 2)

	assert.Equal(t, map[string]string{"apikey": "secret", "language": "en"}, gotQuery)

	first := articles[0]
	assert.Equal(t, "Apple launches iPhone 16", first.Title)
	assert.Equal(t, "The new phone is here", first.Summary)
	assert.Equal(t, "Long body", first.Content)
	assert.Equal(t, "verge", first.Source)
	assert.Equal(t, []string{"Jane Doe"}, first.Authors)
	assert.Equal(t, "https://img.example.com/apple.jpg", first.ImageURL)
	require.NotNil(t, first.PublishedAt)
	assert.Equal(t, time.Date(2025, 12, 11, 9, 30, 0, 0, time.UTC), *first.PublishedAt)

	second := articles[1]
	assert.Equal(t, UnknownTitle, second.Title)
	assert.Equal(t, UnknownSummary, second.Summary)
	assert.Equal(t, UnknownSource, second.Source)
	assert.Nil(t, second.PublishedAt)
	assert.Empty(t, second.ImageURL)
	assert.Empty(t, second.Authors)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestNewsDataSource_StableIDs(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(headlinesPayload))
	})
	src := NewNewsDataSource(srv.URL, "k", "en", time.Second)

	a, err := src.Fetch(context.Background())
	require.NoError(t, err)
	b, err := src.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, a[0].ID, b[0].ID, "provider id must map to the same article id")
	assert.NotEqual(t, a[1].ID, b[1].ID, "articles without identity get fresh ids")
}

func TestNewsDataSource_EmptyResults(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"success","totalResults":0,"results":[]}`))
	})
	src := NewNewsDataSource(srv.URL, "k", "en", time.Second)

	articles, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, articles)
}

func TestNewsDataSource_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    error
		message string
	}{
		{
			name: "bad status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"status":"error"}`))
			},
			want:    ErrBadStatus,
			message: "Invalid server response. HTTP 401",
		},
		{
			name:    "empty body",
			handler: func(w http.ResponseWriter, r *http.Request) {},
			want:    ErrEmptyBody,
			message: "The server returned no data.",
		},
		{
			name: "malformed payload",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"results": "nope"`))
			},
			want:    ErrDecode,
			message: "Failed to decode response. API format may have changed.",
		},
	}

	for _, body := range []string{
		`{}`,
		`null`,
		`{"status":"error","totalResults":0}`,
		`{"totalResults":0,"results":[]}`,
		`{"status":"success","results":[]}`,
	} {
		tests = append(tests, struct {
			name    string
			handler http.HandlerFunc
			want    error
			message string
		}{
			name: "incomplete payload " + body,
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			},
			want:    ErrDecode,
			message: "Failed to decode response. API format may have changed.",
		})
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.handler)
			src := NewNewsDataSource(srv.URL, "k", "en", time.Second)

			articles, err := src.Fetch(context.Background())
			require.Error(t, err)
			assert.Nil(t, articles)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestNewsDataSource_StatusCodeCarried(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	src := NewNewsDataSource(srv.URL, "k", "en", time.Second)

	_, err := src.Fetch(context.Background())

	var fetchErr *Error
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, KindBadStatus, fetchErr.Kind)
	assert.Equal(t, http.StatusTooManyRequests, fetchErr.StatusCode)
}

func TestNewsDataSource_InvalidEndpoint(t *testing.T) {
	src := NewNewsDataSource("not a url", "k", "en", time.Second)

	_, err := src.Fetch(context.Background())
	assert.ErrorIs(t, err, ErrInvalidEndpoint)
}

func TestNewsDataSource_Transport(t *testing.T) {
	t.Run("connection refused", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()

		src := NewNewsDataSource(srv.URL, "k", "en", time.Second)
		_, err := src.Fetch(context.Background())

		assert.ErrorIs(t, err, ErrTransport)
		assert.True(t, IsTransient(err))
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		})
		defer close(release)

		src := NewNewsDataSource(srv.URL, "k", "en", 50*time.Millisecond)
		_, err := src.Fetch(context.Background())

		var fetchErr *Error
		require.True(t, errors.As(err, &fetchErr))
		assert.Equal(t, KindTransport, fetchErr.Kind)
		assert.True(t, fetchErr.Timeout)
		assert.Equal(t, "The request timed out. Please try again.", fetchErr.Error())
	})
}
