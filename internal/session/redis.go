package session

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sakura-poetry/poetryctl/internal/errors"
)

// DefaultRedisKey is the key used when none is configured.
const DefaultRedisKey = "poetryctl:token"

// RedisStorage keeps the token under a single Redis key, which lets several
// machines share one admin session.
type RedisStorage struct {
	client redis.UniversalClient
	key    string
	ttl    time.Duration
}

// NewRedisStorage creates a storage on an existing client. A zero ttl stores
// the key without expiry.
func NewRedisStorage(client redis.UniversalClient, key string, ttl time.Duration) *RedisStorage {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStorage{client: client, key: key, ttl: ttl}
}

// Load returns the stored token, or "" when the key does not exist.
func (r *RedisStorage) Load(ctx context.Context) (string, error) {
	token, err := r.client.Get(ctx, r.key).Result()
	if stderrors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", errors.NewStorageError(errors.ErrCodeStorageRead, "failed to read token from redis", err)
	}
	return token, nil
}

// Save stores the token.
func (r *RedisStorage) Save(ctx context.Context, token string) error {
	if err := r.client.Set(ctx, r.key, token, r.ttl).Err(); err != nil {
		return errors.NewStorageError(errors.ErrCodeStorageWrite, "failed to write token to redis", err)
	}
	return nil
}

// Clear deletes the key. DEL on a missing key succeeds.
func (r *RedisStorage) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return errors.NewStorageError(errors.ErrCodeStorageClear, "failed to delete token from redis", err)
	}
	return nil
}
