package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens a PostgreSQL connection pool using pgx and verifies connectivity.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database DSN must not be empty")
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pgx config: %w", err)
	}

	cfg.MaxConnLifetime = 1 * time.Hour
	cfg.MaxConnIdleTime = 15 * time.Minute
	cfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// Execer is satisfied by *pgxpool.Pool and pgx.Tx.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS enriched_persons (
        id            UUID PRIMARY KEY,
        full_name     TEXT NOT NULL DEFAULT '',
        primary_email TEXT NOT NULL DEFAULT '',
        company       TEXT NOT NULL DEFAULT '',
        source        TEXT NOT NULL,
        payload       JSONB NOT NULL,
        enriched_at   TIMESTAMPTZ NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS enriched_persons_enriched_at_idx ON enriched_persons (enriched_at DESC)`,
	`CREATE TABLE IF NOT EXISTS enriched_companies (
        id           UUID PRIMARY KEY,
        name         TEXT NOT NULL DEFAULT '',
        domain       TEXT NOT NULL DEFAULT '',
        payload      JSONB NOT NULL,
        last_updated TIMESTAMPTZ NOT NULL
    )`,
	`CREATE INDEX IF NOT EXISTS enriched_companies_last_updated_idx ON enriched_companies (last_updated DESC)`,
}

// EnsureSchema creates the enrichment record tables when they are missing.
func EnsureSchema(ctx context.Context, db Execer) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
