package domain

import (
	"context"
	"time"
)

// CacheError represents an error originating from the cache.
type CacheError string

func (e CacheError) Error() string {
	return string(e)
}

// ErrCacheMiss is returned when a key is not found in the cache.
const ErrCacheMiss = CacheError("cache: key not found")

// Cache is the key/value port used for extraction results and job state.
type Cache interface {
	// Get returns ErrCacheMiss if the key is not found.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key. An expiration of 0 keeps it indefinitely.
	Set(ctx context.Context, key string, value string, expiration time.Duration) error

	// Delete must not fail when the key does not exist.
	Delete(ctx context.Context, key string) error

	Ping(ctx context.Context) error

	// HGetAll returns ErrCacheMiss if the hash does not exist.
	HGetAll(ctx context.Context, key string) (map[string]string, error)

	// HSet writes several fields of the hash at key in one call.
	HSet(ctx context.Context, key string, fields map[string]string) error

	// RPush appends a value to the list at key and trims it to the last keep entries.
	RPush(ctx context.Context, key string, value string, keep int64) error

	// LRange returns the whole list at key, oldest first.
	LRange(ctx context.Context, key string) ([]string, error)

	Expire(ctx context.Context, key string, expiration time.Duration) error
}
