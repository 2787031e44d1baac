// Package viewmodel turns articles into display-ready values for any presentation layer.
package viewmodel

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/0x0BSoD/heroNews/internal/model"
)

const (
	UnknownAuthor = "Unknown Author"
	MetaSeparator = "•"
)

// Row is what a list cell shows for one article.
type Row struct {
	Title    string
	Summary  string
	Author   string
	DateText string
	Meta     string
	ImageURL string
	IsSaved  bool
	Article  model.Article
}

// NewRow is pure: the same inputs always produce the same row.
func NewRow(article model.Article, saved bool, now time.Time) Row {
	author := ResolveAuthor(article)
	date := RelativeDate(article.PublishedAt, now)

	meta := author
	if date != "" {
		meta = author + " " + MetaSeparator + " " + date
	}

	return Row{
		Title:    article.Title,
		Summary:  article.Summary,
		Author:   author,
		DateText: date,
		Meta:     meta,
		ImageURL: article.ImageURL,
		IsSaved:  saved,
		Article:  article,
	}
}

// ResolveAuthor picks the first non-blank author, then the source, then
// UnknownAuthor.
func ResolveAuthor(article model.Article) string {
	for _, a := range article.Authors {
		if a = strings.TrimSpace(a); a != "" {
			return a
		}
	}

	if s := strings.TrimSpace(article.Source); s != "" {
		return s
	}

	return UnknownAuthor
}

// RelativeDate renders "3 hours ago" style text, or "" when the date is unknown.
func RelativeDate(published *time.Time, now time.Time) string {
	if published == nil {
		return ""
	}
	return humanize.RelTime(*published, now, "ago", "from now")
}

// Detail is the full-screen reading view of one article.
type Detail struct {
	Title    string
	Author   string
	DateText string
	Content  string
	ImageURL string
	Link     string
}

func NewDetail(article model.Article, now time.Time) Detail {
	author := article.Source
	if len(article.Authors) > 0 {
		author = article.Authors[0]
	}

	content := article.Content
	if content == "" {
		content = article.Summary
	}

	return Detail{
		Title:    strings.TrimSpace(article.Title),
		Author:   strings.TrimSpace(author),
		DateText: RelativeDate(article.PublishedAt, now),
		Content:  strings.TrimSpace(content),
		ImageURL: article.ImageURL,
		Link:     article.Link,
	}
}
