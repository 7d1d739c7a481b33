package checks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/opalia-labs/palmares/internal/openai"
)

// Turn is the unit the chain screens before any filter work happens.
type Turn struct {
	// Message is the raw user message for this turn.
	Message string
	// UserTurns counts the user messages the session held before this one.
	UserTurns int
	// History carries recent conversation text so the relevance check can
	// judge short follow-ups ("à Lyon", "et en privé ?") in context.
	History string
}

// Result is the outcome of one check or of the whole chain.
type Result struct {
	OK bool
	// Check names the failing check. Empty when OK.
	Check string
	// Reply is the user-facing refusal. Empty when OK.
	Reply string
}

// Check names, surfaced in Result.Check and in logs.
const (
	NameLength    = "message_length"
	NameTurnLimit = "turn_limit"
	NameRelevance = "message_relevance"
)

// Check screens an incoming message. A false Result rejects the turn with
// a canned reply; an error means the check itself could not run.
type Check interface {
	Name() string
	Run(ctx context.Context, turn Turn) (Result, error)
}

// Chain runs checks in order and stops at the first failure. Later checks
// are never invoked once one fails.
type Chain struct {
	checks []Check
	logger *slog.Logger
}

func NewChain(logger *slog.Logger, checks ...Check) *Chain {
	return &Chain{checks: checks, logger: logger}
}

// Default assembles the standard chain: length bound, session turn limit,
// then model-backed relevance. The cheap deterministic checks come first
// so a rejected message never reaches the model.
func Default(llm *openai.Client, maxLength, maxTurns int, logger *slog.Logger) *Chain {
	return NewChain(logger,
		NewLengthCheck(maxLength),
		NewTurnLimitCheck(maxTurns),
		NewRelevanceCheck(llm),
	)
}

func (c *Chain) Run(ctx context.Context, turn Turn) (Result, error) {
	for _, chk := range c.checks {
		res, err := chk.Run(ctx, turn)
		if err != nil {
			return Result{}, fmt.Errorf("%s check: %w", chk.Name(), err)
		}
		if !res.OK {
			res.Check = chk.Name()
			c.logger.Info("message rejected", "check", chk.Name())
			return res, nil
		}
	}
	return Result{OK: true}, nil
}
