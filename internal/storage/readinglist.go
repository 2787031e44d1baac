package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/0x0BSoD/heroNews/internal/model"
)

const DefaultReadingListKey = "saved_articles"

// ReadingList is the durable set of saved articles. Every mutation
// re-encodes the whole list and writes it under one key while holding the
// lock, so concurrent Add/Remove calls never interleave on the backend.
type ReadingList struct {
	mu    sync.Mutex
	blobs BlobStore
	key   string
	cache []model.Article
}

// OpenReadingList loads the saved list. A missing or undecodable blob
// yields an empty list; only the warning is logged.
func OpenReadingList(ctx context.Context, blobs BlobStore, key string) *ReadingList {
	if key == "" {
		key = DefaultReadingListKey
	}

	return &ReadingList{
		blobs: blobs,
		key:   key,
		cache: load(ctx, blobs, key),
	}
}

func load(ctx context.Context, blobs BlobStore, key string) []model.Article {
	data, err := blobs.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrBlobNotFound) {
			slog.Warn("reading list load failed, starting empty", "key", key, "err", err)
		}
		return nil
	}

	var articles []model.Article
	if err := json.Unmarshal(data, &articles); err != nil {
		slog.Warn("reading list decode failed, starting empty", "key", key, "err", err)
		return nil
	}

	return articles
}

// Add appends the article unless one with the same id is already saved.
func (l *ReadingList) Add(ctx context.Context, article model.Article) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.indexOf(article.ID) >= 0 {
		return nil
	}

	next := append(slices.Clone(l.cache), article)
	if err := l.persist(ctx, next); err != nil {
		return err
	}
	l.cache = next

	return nil
}

// Remove drops the article with the same id. Absent ids are a no-op.
func (l *ReadingList) Remove(ctx context.Context, article model.Article) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(article.ID)
	if i < 0 {
		return nil
	}

	next := slices.Delete(slices.Clone(l.cache), i, i+1)
	if err := l.persist(ctx, next); err != nil {
		return err
	}
	l.cache = next

	return nil
}

func (l *ReadingList) Contains(id uuid.UUID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.indexOf(id) >= 0
}

// List returns a snapshot in insertion order.
func (l *ReadingList) List(_ context.Context) ([]model.Article, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return slices.Clone(l.cache), nil
}

func (l *ReadingList) indexOf(id uuid.UUID) int {
	return slices.IndexFunc(l.cache, func(a model.Article) bool {
		return a.ID == id
	})
}

func (l *ReadingList) persist(ctx context.Context, articles []model.Article) error {
	if articles == nil {
		articles = []model.Article{}
	}

	data, err := json.Marshal(articles)
	if err != nil {
		slog.Error("reading list encode failed", "key", l.key, "err", err)
		return fmt.Errorf("encoding reading list: %w", err)
	}

	if err := l.blobs.Save(ctx, l.key, data); err != nil {
		return fmt.Errorf("saving reading list: %w", err)
	}

	return nil
}
