// Package cache holds the shared Redis client plus the rating cache built
// on top of it. Redis is an accelerator here, not a store of record: every
// consumer (ratings, rate limiting, readiness) tolerates a nil client.
package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	"critica/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// connectTimeout bounds the startup ping; a slow Redis must not delay boot.
const connectTimeout = 5 * time.Second

var client *redis.Client

type metricsHook struct{}

func (h metricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (h metricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, redis.Nil) {
			middleware.RedisErrors.WithLabelValues(cmd.Name()).Inc()
		}
		return err
	}
}

func (h metricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		if err != nil && !errors.Is(err, redis.Nil) {
			middleware.RedisErrors.WithLabelValues("pipeline").Inc()
		}
		return err
	}
}

// InitRedis connects to the given address, which may be a plain host:port or
// a redis:// URL. On any failure the client stays nil and ratings fall back
// to aggregate queries against the database.
func InitRedis(addr string) {
	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			middleware.Logger.Warn("invalid REDIS_URL, rating cache disabled",
				"url", addr, "error", err)
			client = nil
			return
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}

	client = redis.NewClient(opts)
	client.AddHook(metricsHook{})

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		middleware.Logger.Warn("redis unreachable, rating cache disabled",
			"addr", opts.Addr, "error", err)
		client = nil
		return
	}
	middleware.Logger.Info("redis connected", "addr", opts.Addr)
}

// GetClient returns the current Redis client instance, nil when disabled.
func GetClient() *redis.Client {
	return client
}
