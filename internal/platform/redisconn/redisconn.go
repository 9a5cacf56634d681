// Package redisconn provides a shared Redis client factory with
// fail-fast connectivity checking.
package redisconn

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Options configures the Redis connection. Zero values fall back to
// env vars or built-in defaults.
type Options struct {
	URL         string        // default from REDIS_URL or redis://redis:6379
	DialTimeout time.Duration // default 5s
}

// Connect opens a Redis client and verifies connectivity with a ping so the
// caller can fail-fast on startup.
func Connect(ctx context.Context, opts Options) (*redis.Client, error) {
	if opts.URL == "" {
		opts.URL = strings.TrimSpace(os.Getenv("REDIS_URL"))
		if opts.URL == "" {
			opts.URL = "redis://redis:6379"
		}
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = 5 * time.Second
	}

	ropts, err := redis.ParseURL(opts.URL)
	if err != nil {
		// Allow plain host:port addresses.
		ropts = &redis.Options{Addr: opts.URL}
	}
	ropts.DialTimeout = opts.DialTimeout

	client := redis.NewClient(ropts)

	pingCtx, cancel := context.WithTimeout(ctx, opts.DialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connect %s: %w", opts.URL, err)
	}
	return client, nil
}
