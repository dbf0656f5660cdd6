package cache

import (
	"context"
	"fmt"
	"time"

	"smartstudy/internal/config"

	"github.com/redis/go-redis/v9"
)

const connectTimeout = 5 * time.Second

// NewRedisClient creates a Redis client and pings the server once.
// An empty address means Redis is not configured.
func NewRedisClient(redisCfg config.RedisConfig) (*redis.Client, error) {
	if redisCfg.Address == "" {
		return nil, fmt.Errorf("redis configuration is missing or address is empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:        redisCfg.Address,
		Password:    redisCfg.Password,
		DB:          redisCfg.DB,
		DialTimeout: connectTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", redisCfg.Address, err)
	}

	return client, nil
}
