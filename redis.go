package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisBlobStore keeps blobs as plain string values.
type RedisBlobStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisBlobStore(ctx context.Context, opts *redis.Options) (*RedisBlobStore, error) {
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisBlobStore{rdb: rdb, prefix: "studysched:"}, nil
}

func (r *RedisBlobStore) Put(ctx context.Context, key string, blob []byte) error {
	if err := r.rdb.Set(ctx, r.prefix+key, blob, 0).Err(); err != nil {
		return fmt.Errorf("error writing blob %q: %w", key, err)
	}
	return nil
}

func (r *RedisBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	blob, err := r.rdb.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("error reading blob %q: %w", key, err)
	}
	return blob, nil
}

func (r *RedisBlobStore) Close() error {
	return r.rdb.Close()
}
