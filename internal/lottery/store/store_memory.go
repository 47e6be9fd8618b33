package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"lotto/pkg/platform/sentinel"
)

// InMemoryBackend keeps records in a map. Expired records are treated as
// missing on read and dropped on the next write.
type InMemoryBackend struct {
	mu      sync.RWMutex
	records map[Key]memoryRecord
	clock   func() time.Time
}

type memoryRecord struct {
	value     []byte
	expiresAt time.Time
}

func (r memoryRecord) expired(now time.Time) bool {
	return !r.expiresAt.IsZero() && !now.Before(r.expiresAt)
}

// InMemoryOption configures an InMemoryBackend.
type InMemoryOption func(*InMemoryBackend)

// WithMemoryClock sets the clock used for expiry.
func WithMemoryClock(clock func() time.Time) InMemoryOption {
	return func(b *InMemoryBackend) {
		if clock != nil {
			b.clock = clock
		}
	}
}

// NewInMemoryBackend creates an empty backend.
func NewInMemoryBackend(opts ...InMemoryOption) *InMemoryBackend {
	b := &InMemoryBackend{
		records: make(map[Key]memoryRecord),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NewInMemory is a Store over a fresh InMemoryBackend sharing one clock.
func NewInMemory(clock func() time.Time) *Store {
	if clock == nil {
		clock = time.Now
	}
	return New(NewInMemoryBackend(WithMemoryClock(clock)), WithClock(clock))
}

func (b *InMemoryBackend) lookup(key Key) (memoryRecord, bool) {
	rec, ok := b.records[key]
	if !ok || rec.expired(b.clock()) {
		return memoryRecord{}, false
	}
	return rec, true
}

func (b *InMemoryBackend) Get(_ context.Context, key Key) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	rec, ok := b.lookup(key)
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, sentinel.ErrNotFound)
	}
	return append([]byte(nil), rec.value...), nil
}

func (b *InMemoryBackend) Has(_ context.Context, key Key) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.lookup(key)
	return ok, nil
}

func (b *InMemoryBackend) Expiry(_ context.Context, key Key) (time.Time, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	rec, ok := b.lookup(key)
	if !ok {
		return time.Time{}, fmt.Errorf("%s: %w", key, sentinel.ErrNotFound)
	}
	return rec.expiresAt, nil
}

// Apply validates the whole batch against a scratch copy before swapping it in.
func (b *InMemoryBackend) Apply(_ context.Context, muts []Mutation) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.clock()
	next := make(map[Key]memoryRecord, len(b.records))
	for k, rec := range b.records {
		if !rec.expired(now) {
			next[k] = rec
		}
	}

	for _, m := range muts {
		switch m.Op {
		case OpSet:
			next[m.Key] = memoryRecord{value: append([]byte(nil), m.Value...)}
		case OpDelete:
			delete(next, m.Key)
		case OpExtend:
			rec, ok := next[m.Key]
			if !ok {
				return fmt.Errorf("extend %s: %w", m.Key, sentinel.ErrNotFound)
			}
			rec.expiresAt = now.Add(m.TTL)
			next[m.Key] = rec
		default:
			return fmt.Errorf("unknown mutation op %d: %w", m.Op, sentinel.ErrInvalidState)
		}
	}

	b.records = next
	return nil
}
