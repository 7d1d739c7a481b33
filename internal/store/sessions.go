package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/opalia-labs/palmares/internal/session"
)

// SaveSession upserts one session snapshot as JSONB. Implements
// session.Persister.
func (s *Store) SaveSession(ctx context.Context, snap session.Snapshot) error {
	state, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", snap.ID, err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO chat_sessions (id, state, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (id) DO UPDATE SET state = EXCLUDED.state, updated_at = now()`,
		snap.ID, state,
	)
	if err != nil {
		return fmt.Errorf("save session %s: %w", snap.ID, err)
	}
	return nil
}

// LoadSession reads a snapshot back, or session.ErrSessionNotFound.
func (s *Store) LoadSession(ctx context.Context, id string) (session.Snapshot, error) {
	var state []byte
	err := s.pool.QueryRow(ctx, `SELECT state FROM chat_sessions WHERE id = $1`, id).Scan(&state)
	if errors.Is(err, pgx.ErrNoRows) {
		return session.Snapshot{}, session.ErrSessionNotFound
	}
	if err != nil {
		return session.Snapshot{}, fmt.Errorf("load session %s: %w", id, err)
	}

	var snap session.Snapshot
	if err := json.Unmarshal(state, &snap); err != nil {
		return session.Snapshot{}, fmt.Errorf("decode session %s: %w", id, err)
	}
	return snap, nil
}

// DeleteSession removes a persisted session.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM chat_sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}
