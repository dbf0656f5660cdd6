package adapter

import (
	"context"
	"errors"
	"sort"
	"time"

	"smartstudy/internal/domain"

	"github.com/redis/go-redis/v9"
)

// RedisCacheAdapter implements the domain.Cache interface using a Redis client.
type RedisCacheAdapter struct {
	client *redis.Client
}

// NewRedisCacheAdapter creates a new instance of RedisCacheAdapter.
// It expects a connected *redis.Client.
func NewRedisCacheAdapter(client *redis.Client) domain.Cache {
	return &RedisCacheAdapter{client: client}
}

// Get translates redis.Nil to domain.ErrCacheMiss.
func (r *RedisCacheAdapter) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domain.ErrCacheMiss
		}
		return "", err
	}
	return val, nil
}

// Set adds an item to the Redis cache.
func (r *RedisCacheAdapter) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	return r.client.Set(ctx, key, value, expiration).Err()
}

// Delete removes an item from the Redis cache.
func (r *RedisCacheAdapter) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

// Ping checks the health of the Redis server.
func (r *RedisCacheAdapter) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// HGetAll reports a missing or empty hash as domain.ErrCacheMiss.
func (r *RedisCacheAdapter) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	val, err := r.client.HGetAll(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrCacheMiss
		}
		return nil, err
	}
	if len(val) == 0 {
		return nil, domain.ErrCacheMiss
	}
	return val, nil
}

// HSet writes fields in sorted order so the command is deterministic.
func (r *RedisCacheAdapter) HSet(ctx context.Context, key string, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	values := make([]interface{}, 0, len(fields)*2)
	for _, name := range names {
		values = append(values, name, fields[name])
	}
	return r.client.HSet(ctx, key, values...).Err()
}

// RPush appends value and keeps only the newest keep entries.
func (r *RedisCacheAdapter) RPush(ctx context.Context, key string, value string, keep int64) error {
	_, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, value)
		if keep > 0 {
			pipe.LTrim(ctx, key, -keep, -1)
		}
		return nil
	})
	return err
}

// LRange returns the full list, oldest first. A missing key is an empty list.
func (r *RedisCacheAdapter) LRange(ctx context.Context, key string) ([]string, error) {
	return r.client.LRange(ctx, key, 0, -1).Result()
}

// Expire implements Cache.Expire
func (r *RedisCacheAdapter) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return r.client.Expire(ctx, key, expiration).Err()
}
