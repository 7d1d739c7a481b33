// Package pipeline orchestrates one conversation turn end to end: sanity
// checks, filter resolution, data retrieval, response composition. Every
// turn terminates in a response, whatever happens upstream.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/opalia-labs/palmares/internal/analyst"
	"github.com/opalia-labs/palmares/internal/checks"
	"github.com/opalia-labs/palmares/internal/composer"
	"github.com/opalia-labs/palmares/internal/events"
	"github.com/opalia-labs/palmares/internal/ranking"
	"github.com/opalia-labs/palmares/internal/session"
)

// State names a turn's position in the pipeline, for logs and events.
type State string

const (
	StateReceived        State = "received"
	StateSanityChecked   State = "sanity_checked"
	StateFiltersResolved State = "filters_resolved"
	StateDataFetched     State = "data_fetched"
	StateResponded       State = "responded"
)

// Outcome tags how a turn reached its response.
type Outcome string

const (
	OutcomeAnswered      Outcome = "answered"
	OutcomeRejected      Outcome = "rejected"
	OutcomeClarification Outcome = "clarification"
	OutcomeFailed        Outcome = "failed"
)

// Reply is what a handled turn gives back to the transport.
type Reply struct {
	SessionID string                  `json:"session_id"`
	TurnID    string                  `json:"turn_id"`
	Text      string                  `json:"text"`
	Outcome   Outcome                 `json:"outcome"`
	Filters   analyst.ResolvedFilters `json:"filters"`
	Links     []string                `json:"links,omitempty"`
}

// Pipeline wires the four stages around the session store. The events
// publisher is optional.
type Pipeline struct {
	checks   *checks.Chain
	analyst  *analyst.Analyst
	fetcher  *ranking.Fetcher
	composer *composer.Composer
	sessions *session.Store
	events   *events.Publisher
	logger   *slog.Logger

	defaultCount int
}

func New(ch *checks.Chain, an *analyst.Analyst, fe *ranking.Fetcher, co *composer.Composer, st *session.Store, ev *events.Publisher, defaultCount int, logger *slog.Logger) *Pipeline {
	if defaultCount < 1 {
		defaultCount = analyst.DefaultResultCount
	}
	return &Pipeline{
		checks:       ch,
		analyst:      an,
		fetcher:      fe,
		composer:     co,
		sessions:     st,
		events:       ev,
		logger:       logger,
		defaultCount: defaultCount,
	}
}

// HandleTurn runs one user message through the pipeline. It always
// returns a reply: upstream failures become the generic try-again text,
// never a raw error. Turns against the same session are serialized by
// the store.
func (p *Pipeline) HandleTurn(ctx context.Context, sessionID, message string) Reply {
	sess := p.sessions.Acquire(ctx, sessionID)
	defer p.sessions.Release(ctx, sess)

	turnID := uuid.NewString()
	logger := p.logger.With("session_id", sess.ID, "turn_id", turnID)
	logger.Info("turn received", "state", StateReceived)

	started := time.Now()
	reply := Reply{SessionID: sess.ID, TurnID: turnID}

	check, err := p.checks.Run(ctx, checks.Turn{
		Message:   message,
		UserTurns: sess.UserTurns,
		History:   sess.HistoryText(),
	})
	if err != nil {
		return p.finish(sess, logger, reply, message, started, OutcomeFailed, composer.MsgTryAgain, fmt.Errorf("sanity checks: %w", err))
	}
	if !check.OK {
		if check.Check == checks.NameTurnLimit {
			// The cap reply announces a restart; make it true.
			sess.Restart()
		}
		return p.finish(sess, logger, reply, message, started, OutcomeRejected, check.Reply, nil)
	}
	logger.Info("sanity checks passed", "state", StateSanityChecked)

	filters, err := p.analyst.Resolve(ctx, message, sess.Filters)
	if err != nil {
		return p.finish(sess, logger, reply, message, started, OutcomeFailed, composer.MsgTryAgain, fmt.Errorf("resolve filters: %w", err))
	}
	sess.Filters = filters
	logger.Info("filters resolved", "state", StateFiltersResolved)

	if facet, _, pending := filters.FirstPending(); pending {
		logger.Info("clarification needed", "facet", facet)
		return p.finish(sess, logger, reply, message, started, OutcomeClarification, p.composer.ComposeClarify(filters), nil)
	}

	result, err := p.fetcher.Fetch(ctx, p.filterSpec(filters))
	if err != nil {
		return p.finish(sess, logger, reply, message, started, OutcomeFailed, composer.MsgTryAgain, fmt.Errorf("fetch rankings: %w", err))
	}
	logger.Info("data fetched", "state", StateDataFetched, "rows", len(result.Rows), "total", result.Total)

	reply.Links = result.Links
	return p.finish(sess, logger, reply, message, started, OutcomeAnswered, p.composer.ComposeResult(ctx, message, result), nil)
}

// Reset explicitly restarts a conversation.
func (p *Pipeline) Reset(ctx context.Context, sessionID string) {
	p.sessions.Reset(ctx, sessionID)
	p.logger.Info("session reset", "session_id", sessionID)
}

// finish records the exchange on the session, publishes the audit event
// and logs the terminal transition. cause is the wrapped upstream error
// behind a failed outcome; it goes to the log, never to the user.
func (p *Pipeline) finish(sess *session.Session, logger *slog.Logger, reply Reply, message string, started time.Time, outcome Outcome, text string, cause error) Reply {
	if cause != nil {
		logger.Error("turn failed", "error", cause)
	}
	reply.Outcome = outcome
	reply.Text = text
	reply.Filters = sess.Filters

	sess.UserTurns++
	sess.AppendTurn("user", message)
	sess.AppendTurn("assistant", text)

	elapsed := time.Since(started)
	logger.Info("turn responded", "state", StateResponded, "outcome", outcome, "duration_ms", elapsed.Milliseconds())

	if p.events != nil {
		evt := events.TurnCompleted{
			SessionID:  sess.ID,
			TurnID:     reply.TurnID,
			Outcome:    string(outcome),
			Filters:    sess.Filters,
			DurationMs: elapsed.Milliseconds(),
			At:         time.Now().UTC(),
		}
		if err := p.events.TurnCompleted(evt); err != nil {
			logger.Warn("turn event publish failed", "error", err)
		}
	}
	return reply
}

// filterSpec lowers the confirmed facets into the retrieval spec.
func (p *Pipeline) filterSpec(f analyst.ResolvedFilters) ranking.FilterSpec {
	spec := ranking.FilterSpec{Count: f.CountOrDefault(p.defaultCount)}
	if f.Location.IsConfirmed() {
		spec.City = f.Location.Value
	}
	if f.InstitutionName.IsConfirmed() {
		spec.Institution = f.InstitutionName.Value
	}
	if f.InstitutionCategory.IsConfirmed() {
		spec.Category = f.InstitutionCategory.Value
	}
	if f.Specialty.IsConfirmed() {
		spec.Specialty = f.Specialty.Value
	}
	return spec
}
