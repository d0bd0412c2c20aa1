// Package store is the persistence gateway for jobs and matches, backed by
// PostgreSQL.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPostgresPool creates and verifies a pgxpool connection pool.
func NewPostgresPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	return pool, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS jobs (
	job_hash              TEXT PRIMARY KEY,
	title                 TEXT NOT NULL,
	company               TEXT NOT NULL,
	location              TEXT NOT NULL DEFAULT '',
	city                  TEXT NOT NULL DEFAULT '',
	country               TEXT NOT NULL DEFAULT '',
	description           TEXT NOT NULL DEFAULT '',
	apply_url             TEXT NOT NULL DEFAULT '',
	categories            TEXT[] NOT NULL DEFAULT '{}',
	work_environment      TEXT NOT NULL DEFAULT '',
	is_internship         BOOLEAN NOT NULL DEFAULT FALSE,
	is_graduate           BOOLEAN NOT NULL DEFAULT FALSE,
	language_requirements TEXT[] NOT NULL DEFAULT '{}',
	source                TEXT NOT NULL,
	posted_at             TIMESTAMPTZ,
	scrape_timestamp      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	last_seen_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	created_at            TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	is_active             BOOLEAN NOT NULL DEFAULT TRUE,
	status                TEXT NOT NULL DEFAULT 'active',
	filtered_reason       TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS jobs_active_posted_idx ON jobs (is_active, posted_at DESC NULLS LAST);

CREATE TABLE IF NOT EXISTS matches (
	user_email TEXT NOT NULL,
	tier       TEXT NOT NULL,
	job_hash   TEXT NOT NULL REFERENCES jobs (job_hash),
	score      DOUBLE PRECISION NOT NULL,
	reason     TEXT NOT NULL DEFAULT '',
	method     TEXT NOT NULL DEFAULT '',
	matched_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (user_email, tier, job_hash)
);

CREATE INDEX IF NOT EXISTS matches_user_tier_idx ON matches (user_email, tier);
`

// EnsureSchema creates the tables this core reads and writes. The uniqueness
// of matches per (user_email, tier, job_hash) is what makes concurrent
// matching requests converge instead of racing.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
