package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestArticle_SameContent(t *testing.T) {
	published := time.Date(2025, 12, 11, 9, 30, 0, 0, time.UTC)
	samePublished := published.In(time.FixedZone("UTC+3", 3*60*60))

	base := Article{
		ID:          uuid.New(),
		Title:       "Apple launches iPhone 16",
		Summary:     "New phone",
		Source:      "verge",
		PublishedAt: &published,
		Authors:     []string{"Jane"},
	}

	tests := []struct {
		name   string
		modify func(a Article) Article
		want   bool
	}{
		{"different id only", func(a Article) Article { a.ID = uuid.New(); return a }, true},
		{"same instant other zone", func(a Article) Article { a.PublishedAt = &samePublished; return a }, true},
		{"title changed", func(a Article) Article { a.Title = "Other"; return a }, false},
		{"date dropped", func(a Article) Article { a.PublishedAt = nil; return a }, false},
		{"author added", func(a Article) Article { a.Authors = append([]string{}, "Jane", "John"); return a }, false},
		{"image added", func(a Article) Article { a.ImageURL = "https://img.example.com/a.png"; return a }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.SameContent(tt.modify(base)))
		})
	}
}

func TestSameHeadlines(t *testing.T) {
	a := []Article{{ID: uuid.New(), Title: "A"}, {ID: uuid.New(), Title: "B"}}
	b := []Article{{ID: uuid.New(), Title: "A"}, {ID: uuid.New(), Title: "B"}}

	assert.True(t, SameHeadlines(a, b))
	assert.False(t, SameHeadlines(a, b[:1]))
	assert.False(t, SameHeadlines(a, []Article{b[1], b[0]}))
	assert.True(t, SameHeadlines(nil, []Article{}))
}
