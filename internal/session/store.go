package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultTTL           = 30 * time.Minute
	DefaultSweepInterval = time.Minute
)

// Store keeps live sessions in memory and expires idle ones. An optional
// Persister mirrors state across restarts.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session

	ttl       time.Duration
	persister Persister
	onExpire  func(id string)
	logger    *slog.Logger
}

// NewStore builds a store with the given idle TTL. persister may be nil.
func NewStore(ttl time.Duration, persister Persister, logger *slog.Logger) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		sessions:  make(map[string]*Session),
		ttl:       ttl,
		persister: persister,
		logger:    logger,
	}
}

// OnExpire registers a hook invoked with each expired session id. Set it
// before the janitor starts.
func (s *Store) OnExpire(hook func(id string)) {
	s.onExpire = hook
}

// Acquire returns the session for id with exclusive ownership until
// Release. A blank id, an unknown id or an id idle past the TTL all
// start a fresh conversation. Acquire blocks while another turn owns the
// session.
func (s *Store) Acquire(ctx context.Context, id string) *Session {
	if id == "" {
		id = uuid.NewString()
	}
	for {
		s.mu.Lock()
		sess, ok := s.sessions[id]
		if !ok {
			sess = s.insertLocked(id)
		}
		s.mu.Unlock()

		sess.mu.Lock()
		if sess.evicted {
			// The janitor removed it while we waited for the lock.
			sess.mu.Unlock()
			continue
		}
		if !sess.hydrated {
			sess.hydrated = true
			s.hydrate(ctx, sess)
		}
		if time.Since(sess.LastSeen) > s.ttl {
			s.logger.Info("session idle past ttl, restarting", "session_id", sess.ID)
			sess.Restart()
		}
		return sess
	}
}

// Release ends the turn's ownership and mirrors the state to the
// persister when one is configured.
func (s *Store) Release(ctx context.Context, sess *Session) {
	sess.LastSeen = time.Now().UTC()
	if s.persister != nil {
		if err := s.persister.SaveSession(ctx, sess.Snapshot); err != nil {
			s.logger.Warn("session persist failed", "session_id", sess.ID, "error", err)
		}
	}
	sess.mu.Unlock()
}

// Run sweeps idle sessions until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if expired := s.sweep(ctx, now); len(expired) > 0 {
				s.logger.Info("expired sessions removed", "count", len(expired))
			}
		}
	}
}

// Len reports how many sessions are live.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// insertLocked creates a fresh session under id. Caller holds s.mu.
func (s *Store) insertLocked(id string) *Session {
	now := time.Now().UTC()
	sess := &Session{Snapshot: Snapshot{ID: id, CreatedAt: now, LastSeen: now}}
	s.sessions[id] = sess
	return sess
}

// hydrate pulls persisted state into a session the store has not seen
// since startup. Best effort: a failed load just starts fresh.
func (s *Store) hydrate(ctx context.Context, sess *Session) {
	if s.persister == nil {
		return
	}
	snap, err := s.persister.LoadSession(ctx, sess.ID)
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) {
			s.logger.Warn("session load failed", "session_id", sess.ID, "error", err)
		}
		return
	}
	snap.ID = sess.ID
	sess.Snapshot = snap
}

// Reset explicitly restarts a conversation, waiting for any in-flight
// turn to finish first.
func (s *Store) Reset(ctx context.Context, id string) {
	sess := s.Acquire(ctx, id)
	sess.Restart()
	s.Release(ctx, sess)
}

// sweep removes sessions idle past the TTL. Held sessions are skipped;
// they are in the middle of a turn and therefore not idle.
func (s *Store) sweep(ctx context.Context, now time.Time) []string {
	s.mu.Lock()
	var expired []string
	for id, sess := range s.sessions {
		if !sess.mu.TryLock() {
			continue
		}
		if now.Sub(sess.LastSeen) > s.ttl {
			sess.evicted = true
			delete(s.sessions, id)
			expired = append(expired, id)
		}
		sess.mu.Unlock()
	}
	s.mu.Unlock()

	for _, id := range expired {
		if s.persister != nil {
			if err := s.persister.DeleteSession(ctx, id); err != nil && !errors.Is(err, ErrSessionNotFound) {
				s.logger.Warn("persisted session delete failed", "session_id", id, "error", err)
			}
		}
		if s.onExpire != nil {
			s.onExpire(id)
		}
	}
	return expired
}
