// Package redisstore wraps the Redis operations used to publish and read the
// map datasets.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	maintnotifications "github.com/redis/go-redis/v9/maintnotifications"

	"github.com/mohammed-shakir/storefront-map/internal/core/config"
	"github.com/mohammed-shakir/storefront-map/internal/core/observability"
)

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("redis key not found")

type Option func(*redis.Options)

func WithPoolSize(n int) Option {
	return func(o *redis.Options) {
		if n > 0 {
			o.PoolSize = n
		}
	}
}

func WithDialTimeout(d time.Duration) Option {
	return func(o *redis.Options) {
		if d > 0 {
			o.DialTimeout = d
		}
	}
}

func WithReadTimeout(d time.Duration) Option {
	return func(o *redis.Options) {
		if d > 0 {
			o.ReadTimeout = d
		}
	}
}

func WithWriteTimeout(d time.Duration) Option {
	return func(o *redis.Options) {
		if d > 0 {
			o.WriteTimeout = d
		}
	}
}

// FromConfig connects with the pool and timeouts from the environment.
func FromConfig(ctx context.Context, c config.RedisCfg) (*Client, error) {
	return New(ctx, c.Addr,
		WithPoolSize(c.PoolSize),
		WithDialTimeout(c.DialTimeout),
		WithReadTimeout(c.ReadTimeout),
		WithWriteTimeout(c.WriteTimeout),
	)
}

type Client struct {
	rdb *redis.Client
}

func New(ctx context.Context, addr string, opts ...Option) (*Client, error) {
	if addr == "" {
		return nil, errors.New("redis address is required")
	}

	ro := &redis.Options{
		Addr:         addr,
		PoolSize:     16,
		MinIdleConns: 1,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		MaintNotificationsConfig: &maintnotifications.Config{
			Mode: maintnotifications.ModeDisabled,
		},
	}
	for _, f := range opts {
		f(ro)
	}

	rdb := redis.NewClient(ro)

	start := time.Now()
	err := rdb.Ping(ctx).Err()
	observability.ObserveStoreOp("ping", err, time.Since(start).Seconds())
	if err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Client{rdb: rdb}, nil
}

func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	b, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		observability.ObserveStoreOp("get", nil, time.Since(start).Seconds())
		return nil, fmt.Errorf("redis GET %q: %w", key, ErrNotFound)
	}
	observability.ObserveStoreOp("get", err, time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("redis GET %q: %w", key, err)
	}
	return b, nil
}

// MSet writes all pairs in one pipeline.
func (c *Client) MSet(ctx context.Context, kv map[string][]byte, ttl time.Duration) error {
	start := time.Now()
	if len(kv) == 0 {
		observability.ObserveStoreOp("mset", nil, time.Since(start).Seconds())
		return nil
	}

	_, err := c.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		for k, v := range kv {
			if err := p.Set(ctx, k, v, ttl).Err(); err != nil {
				return fmt.Errorf("redis MSET pipeline SET %q: %w", k, err)
			}
		}
		return nil
	})

	observability.ObserveStoreOp("mset", err, time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("redis MSET %d keys (pipeline): %w", len(kv), err)
	}
	return nil
}

// Ping backs the readiness probe when the map reads its data from redis.
func (c *Client) Ping(ctx context.Context) error {
	start := time.Now()
	err := c.rdb.Ping(ctx).Err()
	observability.ObserveStoreOp("ping", err, time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func (c *Client) Close() error {
	if err := c.rdb.Close(); err != nil {
		return fmt.Errorf("redis close: %w", err)
	}
	return nil
}
