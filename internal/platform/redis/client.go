// Package redis connects the lottery's Redis state backend. Phase, round,
// admin and ticket records live under the configured key prefix; the phase
// record's expiry is the key's Redis TTL.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"lotto/internal/platform/config"
)

// Client is a pinged go-redis client plus the key prefix the lottery store
// namespaces its records under.
type Client struct {
	*redis.Client
	KeyPrefix string
}

// New parses cfg.URL, applies the pool settings and pings the server. Unlike
// the optional caches of other deployments, lottery state cannot run without
// Redis once it is selected, so an empty URL is an error.
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("redis URL is required for redis storage")
	}

	opts, err := options(cfg)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &Client{Client: client, KeyPrefix: cfg.KeyPrefix}, nil
}

func options(cfg config.RedisConfig) (*redis.Options, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if cfg.MinIdleConns > 0 {
		opts.MinIdleConns = cfg.MinIdleConns
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}
	return opts, nil
}

// Health backs the /healthz "redis" check.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}
