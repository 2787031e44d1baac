// Package model defines the Article value shared by the feed sources, the reading list and the sync engine.
package model

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Article is an immutable headline. Saved copies in the reading list are
// independent values; dropping an article from the live feed keeps them.
type Article struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Summary     string     `json:"summary"`
	Content     string     `json:"content"`
	PublishedAt *time.Time `json:"publishedAt"`
	ImageURL    string     `json:"imageURL,omitempty"`
	Link        string     `json:"link,omitempty"`
	Source      string     `json:"source"`
	Authors     []string   `json:"authors"`
}

// SameContent reports whether a and b carry the same headline, ignoring ID.
func (a Article) SameContent(b Article) bool {
	if a.Title != b.Title ||
		a.Summary != b.Summary ||
		a.Content != b.Content ||
		a.ImageURL != b.ImageURL ||
		a.Link != b.Link ||
		a.Source != b.Source {
		return false
	}

	switch {
	case a.PublishedAt == nil && b.PublishedAt == nil:
	case a.PublishedAt == nil || b.PublishedAt == nil:
		return false
	case !a.PublishedAt.Equal(*b.PublishedAt):
		return false
	}

	return slices.Equal(a.Authors, b.Authors)
}

// SameHeadlines compares two feed snapshots element-wise by content.
func SameHeadlines(a, b []Article) bool {
	return slices.EqualFunc(a, b, Article.SameContent)
}
