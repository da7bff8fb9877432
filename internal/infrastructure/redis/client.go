package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ClientOptions overrides values parsed from the Redis URL. Zero values keep the
// URL's settings.
type ClientOptions struct {
	PoolSize    int
	DialTimeout time.Duration
}

// NewClient connects to redisURL with the URL's own settings.
func NewClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	return NewClientWithOptions(ctx, redisURL, ClientOptions{})
}

// NewClientWithOptions connects to redisURL and pings it; the client is closed
// again if the ping fails.
func NewClientWithOptions(ctx context.Context, redisURL string, o ClientOptions) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	applyOptions(opts, o)

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", opts.Addr, err)
	}

	return client, nil
}

func applyOptions(dst *redis.Options, o ClientOptions) {
	if o.PoolSize > 0 {
		dst.PoolSize = o.PoolSize
	}
	if o.DialTimeout > 0 {
		dst.DialTimeout = o.DialTimeout
	}
}
