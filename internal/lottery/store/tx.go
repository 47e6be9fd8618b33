package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	dErrors "lotto/pkg/domain-errors"
	"lotto/pkg/platform/sentinel"
)

// defaultTxTimeout bounds a single lottery operation, external calls included.
const defaultTxTimeout = 30 * time.Second

// Store serializes operations over a Backend. Each RunInTx call has exclusive
// access to lottery state for its duration and commits all of its writes or
// none of them.
type Store struct {
	mu      sync.Mutex
	backend Backend
	clock   func() time.Time
	timeout time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used to resolve staged expiries.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithTxTimeout bounds each transaction when the caller's context has no deadline.
func WithTxTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// New wraps backend.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		clock:   time.Now,
		timeout: defaultTxTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// RunInTx runs fn against a staged view of state. When fn returns nil the
// staged writes are applied atomically; otherwise they are discarded and fn's
// error is returned unchanged.
func (s *Store) RunInTx(ctx context.Context, fn func(kv KV) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	tx := newStagedTx(s.backend, s.clock)
	if err := fn(tx); err != nil {
		return err
	}
	if len(tx.muts) == 0 {
		return nil
	}
	if err := s.backend.Apply(ctx, tx.muts); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to commit lottery state")
	}
	return nil
}

// View runs fn against committed state. Writes inside fn are rejected.
func (s *Store) View(ctx context.Context, fn func(r Reader) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.backend)
}

type stagedEntry struct {
	value     []byte
	deleted   bool
	expiresAt time.Time
}

// stagedTx overlays pending writes on the backend.
type stagedTx struct {
	backend Backend
	clock   func() time.Time
	overlay map[Key]*stagedEntry
	muts    []Mutation
}

func newStagedTx(backend Backend, clock func() time.Time) *stagedTx {
	return &stagedTx{
		backend: backend,
		clock:   clock,
		overlay: make(map[Key]*stagedEntry),
	}
}

func (t *stagedTx) Get(ctx context.Context, key Key) ([]byte, error) {
	if e, ok := t.overlay[key]; ok {
		if e.deleted {
			return nil, fmt.Errorf("%s: %w", key, sentinel.ErrNotFound)
		}
		return append([]byte(nil), e.value...), nil
	}
	return t.backend.Get(ctx, key)
}

func (t *stagedTx) Has(ctx context.Context, key Key) (bool, error) {
	if e, ok := t.overlay[key]; ok {
		return !e.deleted, nil
	}
	return t.backend.Has(ctx, key)
}

func (t *stagedTx) Expiry(ctx context.Context, key Key) (time.Time, error) {
	if e, ok := t.overlay[key]; ok {
		if e.deleted {
			return time.Time{}, fmt.Errorf("%s: %w", key, sentinel.ErrNotFound)
		}
		return e.expiresAt, nil
	}
	return t.backend.Expiry(ctx, key)
}

func (t *stagedTx) Set(_ context.Context, key Key, value []byte) error {
	v := append([]byte(nil), value...)
	t.overlay[key] = &stagedEntry{value: v}
	t.muts = append(t.muts, Mutation{Op: OpSet, Key: key, Value: v})
	return nil
}

func (t *stagedTx) Delete(_ context.Context, key Key) error {
	t.overlay[key] = &stagedEntry{deleted: true}
	t.muts = append(t.muts, Mutation{Op: OpDelete, Key: key})
	return nil
}

func (t *stagedTx) Extend(ctx context.Context, key Key, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive: %w", sentinel.ErrInvalidState)
	}
	e, ok := t.overlay[key]
	if !ok {
		value, err := t.backend.Get(ctx, key)
		if err != nil {
			return err
		}
		e = &stagedEntry{value: value}
		t.overlay[key] = e
	}
	if e.deleted {
		return fmt.Errorf("%s: %w", key, sentinel.ErrNotFound)
	}
	e.expiresAt = t.clock().Add(ttl)
	t.muts = append(t.muts, Mutation{Op: OpExtend, Key: key, TTL: ttl})
	return nil
}
