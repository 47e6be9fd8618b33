//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"lotto/pkg/testutil/containers"
)

func TestRedisBackendSuite(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	suite.Run(t, &BackendSuite{newBackend: func() Backend {
		if err := rc.FlushAll(context.Background()); err != nil {
			t.Fatalf("flush redis: %v", err)
		}
		return NewRedisBackend(rc.Client, WithRedisKeyPrefix("lotto-test:"))
	}})
}

func TestRedisBackend_ExpiryUsesClock(t *testing.T) {
	ctx := context.Background()
	rc := containers.NewRedisContainer(t)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	backend := NewRedisBackend(rc.Client, WithRedisClock(func() time.Time { return now }))
	require.NoError(t, backend.Apply(ctx, []Mutation{
		{Op: OpSet, Key: PhaseKey(), Value: []byte(`"sale"`)},
		{Op: OpExtend, Key: PhaseKey(), TTL: time.Hour},
	}))

	expiry, err := backend.Expiry(ctx, PhaseKey())
	require.NoError(t, err)
	assert.WithinDuration(t, now.Add(time.Hour), expiry, 5*time.Second)
}
