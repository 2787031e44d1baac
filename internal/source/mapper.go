package source

import (
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/0x0BSoD/heroNews/internal/model"
)

const (
	UnknownTitle   = "No Title"
	UnknownSummary = "No Summary"
	UnknownSource  = "Unknown Source"

	pubDateLayout = "2006-01-02 15:04:05"
)

func (a newsArticle) toDomain() model.Article {
	link := trimmed(a.Link)

	return model.Article{
		ID:          articleID(trimmed(a.ArticleID), link),
		Title:       orDefault(trimmed(a.Title), UnknownTitle),
		Summary:     orDefault(trimmed(a.Description), UnknownSummary),
		Content:     trimmed(a.Content),
		PublishedAt: parsePubDate(trimmed(a.PubDate)),
		ImageURL:    imageURL(trimmed(a.ImageURL)),
		Link:        link,
		Source:      orDefault(trimmed(a.SourceID), UnknownSource),
		Authors: lo.FilterMap(a.Creators, func(c string, _ int) (string, bool) {
			c = strings.TrimSpace(c)
			return c, c != ""
		}),
	}
}

// articleID derives a stable id from the provider's identity so saved flags
// survive a refresh. Articles without one get a random id.
func articleID(keys ...string) uuid.UUID {
	for _, k := range keys {
		if k != "" {
			return uuid.NewSHA1(uuid.NameSpaceURL, []byte(k))
		}
	}
	return uuid.New()
}

// parsePubDate accepts "yyyy-MM-dd HH:mm:ss" in UTC first, then ISO-8601
// with fractional seconds.
func parsePubDate(s string) *time.Time {
	if s == "" {
		return nil
	}

	if t, err := time.ParseInLocation(pubDateLayout, s, time.UTC); err == nil {
		return &t
	}

	if !hasFractionalSeconds(s) {
		return nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return &t
	}

	return nil
}

func hasFractionalSeconds(s string) bool {
	i := strings.IndexByte(s, 'T')
	if i < 0 {
		return false
	}
	return strings.ContainsRune(s[i:], '.')
}

func imageURL(s string) string {
	if s == "" {
		return ""
	}
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.String()
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
