package storage

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

type RedisBlobStore struct {
	client *redis.Client
	prefix string
}

// NewRedisBlobStore stores blobs under "<prefix><key>".
func NewRedisBlobStore(client *redis.Client, prefix string) *RedisBlobStore {
	return &RedisBlobStore{client: client, prefix: prefix}
}

func (s *RedisBlobStore) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrBlobNotFound
	}
	return data, err
}

func (s *RedisBlobStore) Save(ctx context.Context, key string, data []byte) error {
	return s.client.Set(ctx, s.prefix+key, data, 0).Err()
}
