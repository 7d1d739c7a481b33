// Package store persists ranking rows and session state in Postgres.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS rankings (
	id          BIGSERIAL PRIMARY KEY,
	institution TEXT NOT NULL,
	category    TEXT NOT NULL,
	city        TEXT NOT NULL,
	department  TEXT NOT NULL DEFAULT '',
	lat         DOUBLE PRECISION NOT NULL DEFAULT 0,
	lon         DOUBLE PRECISION NOT NULL DEFAULT 0,
	specialty   TEXT NOT NULL DEFAULT '',
	rank        INT NOT NULL,
	score       DOUBLE PRECISION NOT NULL,
	year        INT NOT NULL,
	UNIQUE (year, specialty, category, institution)
);

CREATE INDEX IF NOT EXISTS rankings_lookup_idx ON rankings (year, specialty, category);

CREATE TABLE IF NOT EXISTS chat_sessions (
	id         TEXT PRIMARY KEY,
	state      JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// EnsureSchema creates the tables this store reads and writes. It is
// safe to call on every start.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
