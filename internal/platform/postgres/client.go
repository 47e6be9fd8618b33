package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"lotto/internal/platform/config"
)

// Client wraps a database/sql pool on the lib/pq driver.
type Client struct {
	*sql.DB
}

// New opens a pool from the provided configuration and verifies it with a
// ping. Returns nil if the DSN is empty (PostgreSQL not configured).
func New(ctx context.Context, cfg config.PostgresConfig) (*Client, error) {
	if cfg.DSN == "" {
		return nil, nil
	}
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	return &Client{DB: db}, nil
}

// Health checks if the database is reachable.
func (c *Client) Health(ctx context.Context) error {
	return c.PingContext(ctx)
}
