package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lotto/internal/platform/config"
)

func TestNewRequiresURL(t *testing.T) {
	_, err := New(context.Background(), config.RedisConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required")
}

func TestNewRejectsMalformedURL(t *testing.T) {
	_, err := New(context.Background(), config.RedisConfig{URL: "http://not-redis"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse redis URL")
}

func TestOptionsApplyPoolOverrides(t *testing.T) {
	opts, err := options(config.RedisConfig{
		URL:         "redis://localhost:6379/2",
		PoolSize:    7,
		DialTimeout: 2 * time.Second,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, 7, opts.PoolSize)
	assert.Equal(t, 2*time.Second, opts.DialTimeout)
	assert.Zero(t, opts.MinIdleConns, "unset values keep the go-redis default")
}
