package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"lotto/internal/lottery/models"
	dErrors "lotto/pkg/domain-errors"
)

func TestInMemoryBackendSuite(t *testing.T) {
	suite.Run(t, &BackendSuite{newBackend: func() Backend { return NewInMemoryBackend() }})
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestInMemory_ExpiredPhaseIsMissing(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	st := NewInMemory(clock.Now)

	require.NoError(t, st.RunInTx(ctx, func(kv KV) error {
		if err := SavePhase(ctx, kv, models.PhaseSale); err != nil {
			return err
		}
		return kv.Extend(ctx, PhaseKey(), time.Hour)
	}))

	require.NoError(t, st.View(ctx, func(r Reader) error {
		exp, err := r.Expiry(ctx, PhaseKey())
		require.NoError(t, err)
		assert.Equal(t, clock.Now().Add(time.Hour), exp)
		return nil
	}))

	clock.Advance(time.Hour)

	err := st.View(ctx, func(r Reader) error {
		_, err := LoadPhase(ctx, r)
		return err
	})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNoStateFound))
}

func TestInMemory_StagedExtendUsesStoreClock(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	st := NewInMemory(clock.Now)

	require.NoError(t, st.RunInTx(ctx, func(kv KV) error {
		require.NoError(t, SavePhase(ctx, kv, models.PhaseRaffle))
		require.NoError(t, kv.Extend(ctx, PhaseKey(), 30*time.Minute))
		exp, err := kv.Expiry(ctx, PhaseKey())
		require.NoError(t, err)
		assert.Equal(t, clock.Now().Add(30*time.Minute), exp)
		return nil
	}))
}

func TestRunInTx_CancelledContext(t *testing.T) {
	st := NewInMemory(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := st.RunInTx(ctx, func(KV) error {
		called = true
		return nil
	})
	assert.False(t, called)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeTimeout))
}

func TestRunInTx_RejectsNonPositiveTTL(t *testing.T) {
	ctx := context.Background()
	st := NewInMemory(nil)
	err := st.RunInTx(ctx, func(kv KV) error {
		if err := SavePhase(ctx, kv, models.PhaseSale); err != nil {
			return err
		}
		return kv.Extend(ctx, PhaseKey(), 0)
	})
	assert.Error(t, err)
}

// Concurrent purchases must accumulate rather than overwrite.
func TestRunInTx_SerializesReadModifyWrite(t *testing.T) {
	ctx := context.Background()
	st := NewInMemory(nil)
	require.NoError(t, st.RunInTx(ctx, func(kv KV) error {
		return SaveRound(ctx, kv, models.NewRound(1))
	}))

	const buyers = 50
	var wg sync.WaitGroup
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := st.RunInTx(ctx, func(kv KV) error {
				round, err := LoadRound(ctx, kv)
				if err != nil {
					return err
				}
				round.AddStake("alice", models.TicketSmall.Amount())
				return SaveRound(ctx, kv, round)
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	require.NoError(t, st.View(ctx, func(r Reader) error {
		round, err := LoadRound(ctx, r)
		require.NoError(t, err)
		assert.Equal(t, models.Amount(buyers)*models.TicketSmall.Amount(), round.TotalPrincipal)
		return nil
	}))
}
