package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0x0BSoD/heroNews/internal/model"
)

type memBlobStore struct {
	mu      sync.Mutex
	blobs   map[string][]byte
	saves   int
	failErr error
}

func newMemBlobStore() *memBlobStore {
	return &memBlobStore{blobs: map[string][]byte{}}
}

func (m *memBlobStore) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.blobs[key]
	if !ok {
		return nil, ErrBlobNotFound
	}
	return data, nil
}

func (m *memBlobStore) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failErr != nil {
		return m.failErr
	}
	m.saves++
	m.blobs[key] = append([]byte(nil), data...)
	return nil
}

func sampleArticle(title string) model.Article {
	published := time.Date(2025, 12, 11, 9, 0, 0, 0, time.UTC)
	return model.Article{
		ID:          uuid.New(),
		Title:       title,
		Summary:     "summary of " + title,
		Content:     "content",
		PublishedAt: &published,
		ImageURL:    "https://img.example.com/" + title + ".png",
		Source:      "example",
		Authors:     []string{"Jane"},
	}
}

func TestReadingList_AddIsIdempotent(t *testing.T) {
	ctx := context.Background()
	list := OpenReadingList(ctx, newMemBlobStore(), "")
	a := sampleArticle("a")

	require.NoError(t, list.Add(ctx, a))
	require.NoError(t, list.Add(ctx, a))

	got, err := list.List(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.True(t, list.Contains(a.ID))
}

func TestReadingList_RemoveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	list := OpenReadingList(ctx, newMemBlobStore(), "")
	a, b := sampleArticle("a"), sampleArticle("b")

	require.NoError(t, list.Add(ctx, a))
	require.NoError(t, list.Add(ctx, b))
	require.NoError(t, list.Remove(ctx, a))
	require.NoError(t, list.Remove(ctx, a))

	got, err := list.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, b.ID, got[0].ID)
	assert.False(t, list.Contains(a.ID))
}

func TestReadingList_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	blobs := newMemBlobStore()
	a, b := sampleArticle("a"), sampleArticle("b")

	first := OpenReadingList(ctx, blobs, "saved")
	require.NoError(t, first.Add(ctx, a))
	require.NoError(t, first.Add(ctx, b))

	second := OpenReadingList(ctx, blobs, "saved")
	got, err := second.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, a.ID, got[0].ID)
	assert.True(t, a.SameContent(got[0]))
	assert.True(t, b.SameContent(got[1]))
}

func TestReadingList_CorruptBlobIsEmpty(t *testing.T) {
	ctx := context.Background()
	blobs := newMemBlobStore()
	blobs.blobs[DefaultReadingListKey] = []byte("{not json")

	list := OpenReadingList(ctx, blobs, "")
	got, err := list.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, list.Add(ctx, sampleArticle("a")))
	got, _ = list.List(ctx)
	assert.Len(t, got, 1)
}

func TestReadingList_SaveFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	blobs := newMemBlobStore()
	list := OpenReadingList(ctx, blobs, "")
	a := sampleArticle("a")

	blobs.failErr = errors.New("disk full")
	err := list.Add(ctx, a)
	require.Error(t, err)
	assert.ErrorIs(t, err, blobs.failErr)
	assert.False(t, list.Contains(a.ID))
}

func TestReadingList_ConcurrentMutations(t *testing.T) {
	ctx := context.Background()
	blobs := newMemBlobStore()
	list := OpenReadingList(ctx, blobs, "")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a := sampleArticle(fmt.Sprintf("article-%d", i))
			assert.NoError(t, list.Add(ctx, a))
			if i%2 == 0 {
				assert.NoError(t, list.Remove(ctx, a))
			}
		}(i)
	}
	wg.Wait()

	got, err := list.List(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 25)

	reopened, _ := OpenReadingList(ctx, blobs, "").List(ctx)
	assert.Len(t, reopened, 25, "persisted blob must match the in-memory list")
}
