package checks

import (
	"context"
	"strings"
	"unicode/utf8"
)

const (
	msgEmpty    = "Je n'ai pas bien saisi la nature de votre demande. Merci de reformuler."
	msgTooLong  = "Votre message est trop long. Merci de reformuler."
	msgTurnCap  = "La limite de messages a été atteinte. La conversation va redémarrer."
	msgOffTopic = "Cet assistant a pour but de fournir des informations sur les classements des établissements de soins de cette année. Merci de reformuler."
)

// LengthCheck rejects blank messages and messages over the rune bound.
type LengthCheck struct {
	max int
}

func NewLengthCheck(max int) *LengthCheck {
	return &LengthCheck{max: max}
}

func (c *LengthCheck) Name() string { return NameLength }

func (c *LengthCheck) Run(_ context.Context, turn Turn) (Result, error) {
	msg := strings.TrimSpace(turn.Message)
	if msg == "" {
		return Result{Reply: msgEmpty}, nil
	}
	if utf8.RuneCountInString(msg) > c.max {
		return Result{Reply: msgTooLong}, nil
	}
	return Result{OK: true}, nil
}

// TurnLimitCheck caps how many user messages a session may spend.
type TurnLimitCheck struct {
	max int
}

func NewTurnLimitCheck(max int) *TurnLimitCheck {
	return &TurnLimitCheck{max: max}
}

func (c *TurnLimitCheck) Name() string { return NameTurnLimit }

func (c *TurnLimitCheck) Run(_ context.Context, turn Turn) (Result, error) {
	if turn.UserTurns >= c.max {
		return Result{Reply: msgTurnCap}, nil
	}
	return Result{OK: true}, nil
}
