package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"lotto/pkg/platform/sentinel"
)

var (
	redisApplyDurationMs = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "lotto_store_redis_apply_duration_ms",
		Help:    "Latency of committing a lottery state batch to Redis in milliseconds",
		Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 25, 50},
	})
)

const defaultRedisKeyPrefix = "lotto:"

// RedisBackend stores each record under its own key and relies on Redis key
// expiry for record TTLs.
type RedisBackend struct {
	client *redis.Client
	prefix string
	clock  func() time.Time
}

// RedisOption configures a RedisBackend.
type RedisOption func(*RedisBackend)

// WithRedisKeyPrefix namespaces keys, e.g. per deployment.
func WithRedisKeyPrefix(prefix string) RedisOption {
	return func(b *RedisBackend) {
		if prefix != "" {
			b.prefix = prefix
		}
	}
}

// WithRedisClock sets the clock used to turn remaining TTLs into expiry times.
func WithRedisClock(clock func() time.Time) RedisOption {
	return func(b *RedisBackend) {
		if clock != nil {
			b.clock = clock
		}
	}
}

// NewRedisBackend constructs a Redis-backed substrate.
func NewRedisBackend(client *redis.Client, opts ...RedisOption) *RedisBackend {
	b := &RedisBackend{
		client: client,
		prefix: defaultRedisKeyPrefix,
		clock:  time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

func (b *RedisBackend) key(k Key) string {
	return b.prefix + k.String()
}

func (b *RedisBackend) Get(ctx context.Context, key Key) ([]byte, error) {
	value, err := b.client.Get(ctx, b.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%s: %w", key, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, nil
}

func (b *RedisBackend) Has(ctx context.Context, key Key) (bool, error) {
	n, err := b.client.Exists(ctx, b.key(key)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists %s: %w", key, err)
	}
	return n > 0, nil
}

func (b *RedisBackend) Expiry(ctx context.Context, key Key) (time.Time, error) {
	ttl, err := b.client.PTTL(ctx, b.key(key)).Result()
	if err != nil {
		return time.Time{}, fmt.Errorf("redis pttl %s: %w", key, err)
	}
	switch {
	case ttl == -2:
		return time.Time{}, fmt.Errorf("%s: %w", key, sentinel.ErrNotFound)
	case ttl < 0:
		return time.Time{}, nil
	default:
		return b.clock().Add(ttl), nil
	}
}

// Apply commits the batch in one MULTI/EXEC while watching every touched key,
// so a concurrent writer from another process aborts the commit.
func (b *RedisBackend) Apply(ctx context.Context, muts []Mutation) error {
	start := time.Now()
	defer func() {
		redisApplyDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	keys := make([]string, 0, len(muts))
	seen := make(map[string]bool, len(muts))
	for _, m := range muts {
		k := b.key(m.Key)
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}

	err := b.client.Watch(ctx, func(tx *redis.Tx) error {
		if err := b.checkExtendTargets(ctx, tx, muts); err != nil {
			return err
		}
		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, m := range muts {
				k := b.key(m.Key)
				switch m.Op {
				case OpSet:
					pipe.Set(ctx, k, m.Value, 0)
				case OpDelete:
					pipe.Del(ctx, k)
				case OpExtend:
					pipe.PExpire(ctx, k, m.TTL)
				default:
					return fmt.Errorf("unknown mutation op %d: %w", m.Op, sentinel.ErrInvalidState)
				}
			}
			return nil
		})
		return err
	}, keys...)
	if errors.Is(err, redis.TxFailedErr) {
		return fmt.Errorf("lottery state changed concurrently: %w", sentinel.ErrUnavailable)
	}
	return err
}

// checkExtendTargets rejects extending a key that neither exists nor is
// written earlier in the batch; PEXPIRE inside MULTI would silently no-op.
func (b *RedisBackend) checkExtendTargets(ctx context.Context, tx *redis.Tx, muts []Mutation) error {
	present := make(map[Key]bool)
	for _, m := range muts {
		switch m.Op {
		case OpSet:
			present[m.Key] = true
		case OpDelete:
			present[m.Key] = false
		case OpExtend:
			exists, staged := present[m.Key]
			if staged {
				if !exists {
					return fmt.Errorf("extend %s: %w", m.Key, sentinel.ErrNotFound)
				}
				continue
			}
			n, err := tx.Exists(ctx, b.key(m.Key)).Result()
			if err != nil {
				return fmt.Errorf("redis exists %s: %w", m.Key, err)
			}
			if n == 0 {
				return fmt.Errorf("extend %s: %w", m.Key, sentinel.ErrNotFound)
			}
			present[m.Key] = true
		}
	}
	return nil
}
