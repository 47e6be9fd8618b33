//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"lotto/pkg/platform/sentinel"
	"lotto/pkg/testutil/containers"
)

func TestPostgresBackendSuite(t *testing.T) {
	pc := containers.NewPostgresContainer(t)
	const table = "lottery_state_test"

	backend := NewPostgresBackend(pc.DB, WithPostgresTable(table))
	if err := backend.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}

	suite.Run(t, &BackendSuite{newBackend: func() Backend {
		if err := pc.Truncate(context.Background(), table); err != nil {
			t.Fatalf("truncate: %v", err)
		}
		return backend
	}})
}

func TestPostgresBackend_ExpiryFollowsClock(t *testing.T) {
	ctx := context.Background()
	pc := containers.NewPostgresContainer(t)
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}

	backend := NewPostgresBackend(pc.DB, WithPostgresTable("lottery_state_clock"), WithPostgresClock(clock.Now))
	require.NoError(t, backend.EnsureSchema(ctx))
	require.NoError(t, backend.Apply(ctx, []Mutation{
		{Op: OpSet, Key: PhaseKey(), Value: []byte(`"sale"`)},
		{Op: OpExtend, Key: PhaseKey(), TTL: time.Hour},
	}))

	expiry, err := backend.Expiry(ctx, PhaseKey())
	require.NoError(t, err)
	assert.True(t, expiry.Equal(clock.Now().Add(time.Hour)))

	clock.Advance(time.Hour)
	_, err = backend.Get(ctx, PhaseKey())
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}
