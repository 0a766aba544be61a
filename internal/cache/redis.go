// Package cache provides the optional Redis client and JSON helpers used by
// the token cache and the rate limiter.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"patisson-users/internal/middleware"
	"patisson-users/internal/observability"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by GetJSON when the key does not exist.
var ErrMiss = errors.New("cache miss")

// errorCounter counts failed commands per command name. A missing key is not a failure.
type errorCounter struct{}

func (errorCounter) DialHook(next redis.DialHook) redis.DialHook { return next }

func (errorCounter) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		countError(cmd.Name(), err)
		return err
	}
}

func (errorCounter) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		countError("pipeline", err)
		return err
	}
}

func countError(name string, err error) {
	if err != nil && !errors.Is(err, redis.Nil) {
		observability.RedisErrors.WithLabelValues(name).Inc()
	}
}

// NewClient builds a client from a redis:// URL or a bare host:port.
func NewClient(addr string) (*redis.Client, error) {
	opts := &redis.Options{Addr: addr}
	if strings.Contains(addr, "://") {
		var err error
		if opts, err = redis.ParseURL(addr); err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
	}
	client := redis.NewClient(opts)
	client.AddHook(errorCounter{})
	return client, nil
}

// Connect returns a pinged client, or nil when addr is empty or Redis cannot
// be reached. Without Redis, tokens are verified on every request and rate
// limits fail open.
func Connect(ctx context.Context, addr string) *redis.Client {
	if addr == "" {
		middleware.Logger.InfoContext(ctx, "redis not configured")
		return nil
	}
	client, err := NewClient(addr)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "redis disabled", "error", err)
		return nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "redis unreachable, continuing without it", "addr", client.Options().Addr, "error", err)
		_ = client.Close()
		return nil
	}

	middleware.Logger.InfoContext(ctx, "redis connected", "addr", client.Options().Addr)
	return client
}

// GetJSON decodes the value stored at key into dst. Missing keys return ErrMiss.
func GetJSON(ctx context.Context, rdb *redis.Client, key string, dst any) error {
	raw, err := rdb.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return ErrMiss
	case err != nil:
		return err
	}
	return json.Unmarshal(raw, dst)
}

// SetJSON stores v at key as JSON with the given TTL.
func SetJSON(ctx context.Context, rdb *redis.Client, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return rdb.Set(ctx, key, raw, ttl).Err()
}
