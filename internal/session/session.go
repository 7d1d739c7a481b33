// Package session holds conversation state between turns. Each session
// is owned by at most one turn at a time: Store.Acquire hands out
// exclusive access and Store.Release returns it.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/opalia-labs/palmares/internal/analyst"
)

var ErrSessionNotFound = errors.New("session not found")

// maxHistory bounds how many exchanges a session keeps for prompt
// context.
const maxHistory = 10

// Turn is one stored exchange line.
type Turn struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// Snapshot is the serializable part of a session. Writing it out and
// reading it back yields an equivalent session.
type Snapshot struct {
	ID        string                  `json:"id"`
	CreatedAt time.Time               `json:"created_at"`
	LastSeen  time.Time               `json:"last_seen"`
	UserTurns int                     `json:"user_turns"`
	Filters   analyst.ResolvedFilters `json:"filters"`
	History   []Turn                  `json:"history,omitempty"`
}

// Session is one conversation's state. Field access is only safe
// between Acquire and Release.
type Session struct {
	Snapshot

	mu       sync.Mutex
	evicted  bool
	hydrated bool
}

// Restart wipes the conversation state, keeping the id. Only the owning
// turn may call it.
func (s *Session) Restart() {
	now := time.Now().UTC()
	s.Snapshot = Snapshot{ID: s.ID, CreatedAt: now, LastSeen: now}
}

// AppendTurn records an exchange, keeping only the most recent ones.
func (s *Session) AppendTurn(role, content string) {
	s.History = append(s.History, Turn{Role: role, Content: content, At: time.Now().UTC()})
	if len(s.History) > maxHistory {
		s.History = s.History[len(s.History)-maxHistory:]
	}
}

// HistoryText renders the kept exchanges for prompt context.
func (s *Session) HistoryText() string {
	var sb strings.Builder
	for _, t := range s.History {
		fmt.Fprintf(&sb, "%s: %s\n", t.Role, t.Content)
	}
	return strings.TrimSpace(sb.String())
}

// Persister mirrors session state to durable storage. Implementations
// return ErrSessionNotFound when no state exists for an id.
type Persister interface {
	LoadSession(ctx context.Context, id string) (Snapshot, error)
	SaveSession(ctx context.Context, snap Snapshot) error
	DeleteSession(ctx context.Context, id string) error
}
