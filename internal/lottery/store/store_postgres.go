package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"lotto/pkg/platform/sentinel"
)

const defaultPostgresTable = "lottery_state"

// PostgresBackend keeps records as rows with an optional expires_at. Expired
// rows are invisible to reads and are replaced on the next write.
type PostgresBackend struct {
	db    *sql.DB
	table string
	clock func() time.Time
}

// PostgresOption configures a PostgresBackend.
type PostgresOption func(*PostgresBackend)

// WithPostgresTable overrides the table name.
func WithPostgresTable(table string) PostgresOption {
	return func(b *PostgresBackend) {
		if table != "" {
			b.table = table
		}
	}
}

// WithPostgresClock sets the clock function for testability.
func WithPostgresClock(clock func() time.Time) PostgresOption {
	return func(b *PostgresBackend) {
		if clock != nil {
			b.clock = clock
		}
	}
}

// NewPostgresBackend constructs a PostgreSQL-backed substrate.
func NewPostgresBackend(db *sql.DB, opts ...PostgresOption) *PostgresBackend {
	b := &PostgresBackend{
		db:    db,
		table: defaultPostgresTable,
		clock: time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

func (b *PostgresBackend) ident() string {
	return pq.QuoteIdentifier(b.table)
}

// EnsureSchema creates the state table if it does not exist.
func (b *PostgresBackend) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			key        TEXT PRIMARY KEY,
			value      BYTEA NOT NULL,
			expires_at TIMESTAMPTZ NULL
		)`, b.ident())
	if _, err := b.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create lottery state table: %w", err)
	}
	return nil
}

func (b *PostgresBackend) load(ctx context.Context, q queryRower, key Key) ([]byte, sql.NullTime, error) {
	var value []byte
	var expiresAt sql.NullTime
	query := fmt.Sprintf(`SELECT value, expires_at FROM %s WHERE key = $1`, b.ident())
	err := q.QueryRowContext(ctx, query, key.String()).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sql.NullTime{}, fmt.Errorf("%s: %w", key, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, sql.NullTime{}, fmt.Errorf("select %s: %w", key, err)
	}
	if expiresAt.Valid && !b.clock().Before(expiresAt.Time) {
		return nil, sql.NullTime{}, fmt.Errorf("%s: %w", key, sentinel.ErrNotFound)
	}
	return value, expiresAt, nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (b *PostgresBackend) Get(ctx context.Context, key Key) ([]byte, error) {
	value, _, err := b.load(ctx, b.db, key)
	return value, err
}

func (b *PostgresBackend) Has(ctx context.Context, key Key) (bool, error) {
	_, _, err := b.load(ctx, b.db, key)
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (b *PostgresBackend) Expiry(ctx context.Context, key Key) (time.Time, error) {
	_, expiresAt, err := b.load(ctx, b.db, key)
	if err != nil {
		return time.Time{}, err
	}
	if !expiresAt.Valid {
		return time.Time{}, nil
	}
	return expiresAt.Time, nil
}

// Apply runs the batch inside one SQL transaction.
func (b *PostgresBackend) Apply(ctx context.Context, muts []Mutation) (err error) {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin lottery state tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := b.clock()
	upsert := fmt.Sprintf(`
		INSERT INTO %s (key, value, expires_at)
		VALUES ($1, $2, NULL)
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			expires_at = NULL`, b.ident())
	del := fmt.Sprintf(`DELETE FROM %s WHERE key = $1`, b.ident())
	extend := fmt.Sprintf(`
		UPDATE %s SET expires_at = $2
		WHERE key = $1 AND (expires_at IS NULL OR expires_at > $3)`, b.ident())

	for _, m := range muts {
		switch m.Op {
		case OpSet:
			if _, err = tx.ExecContext(ctx, upsert, m.Key.String(), m.Value); err != nil {
				return fmt.Errorf("upsert %s: %w", m.Key, err)
			}
		case OpDelete:
			if _, err = tx.ExecContext(ctx, del, m.Key.String()); err != nil {
				return fmt.Errorf("delete %s: %w", m.Key, err)
			}
		case OpExtend:
			var res sql.Result
			res, err = tx.ExecContext(ctx, extend, m.Key.String(), now.Add(m.TTL), now)
			if err != nil {
				return fmt.Errorf("extend %s: %w", m.Key, err)
			}
			var n int64
			if n, err = res.RowsAffected(); err != nil {
				return fmt.Errorf("extend %s: %w", m.Key, err)
			}
			if n == 0 {
				err = fmt.Errorf("extend %s: %w", m.Key, sentinel.ErrNotFound)
				return err
			}
		default:
			err = fmt.Errorf("unknown mutation op %d: %w", m.Op, sentinel.ErrInvalidState)
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit lottery state tx: %w", err)
	}
	return nil
}
