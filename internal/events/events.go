// Package events publishes pipeline audit events to NATS. The publisher
// is an optional collaborator; callers skip it when it is nil.
package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/opalia-labs/palmares/internal/analyst"
)

const (
	// SubjectTurnCompleted carries one event per handled turn.
	SubjectTurnCompleted = "sante.palmares.turn.completed"
	// SubjectSessionExpired carries the ids the janitor removed.
	SubjectSessionExpired = "sante.palmares.session.expired"
)

// TurnCompleted is the audit record of one turn: how it ended and with
// which filter set.
type TurnCompleted struct {
	SessionID  string                  `json:"session_id"`
	TurnID     string                  `json:"turn_id"`
	Outcome    string                  `json:"outcome"`
	Filters    analyst.ResolvedFilters `json:"filters"`
	DurationMs int64                   `json:"duration_ms"`
	At         time.Time               `json:"at"`
}

// SessionExpired marks an idle session removal.
type SessionExpired struct {
	SessionID string    `json:"session_id"`
	At        time.Time `json:"at"`
}

type Publisher struct {
	conn   *nats.Conn
	logger *slog.Logger
}

func Connect(url, token string, logger *slog.Logger) (*Publisher, error) {
	opts := []nats.Option{
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &Publisher{conn: nc, logger: logger}, nil
}

func (p *Publisher) TurnCompleted(evt TurnCompleted) error {
	return p.publish(SubjectTurnCompleted, evt)
}

func (p *Publisher) SessionExpired(id string) error {
	return p.publish(SubjectSessionExpired, SessionExpired{SessionID: id, At: time.Now().UTC()})
}

func (p *Publisher) publish(subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

func (p *Publisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	p.conn.Close()
}
