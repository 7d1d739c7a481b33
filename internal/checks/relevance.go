package checks

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/opalia-labs/palmares/internal/openai"
)

const relevanceMaxTokens = 32

const relevanceSystem = "You screen messages for a French hospital-ranking assistant. Answer with JSON only."

const relevancePrompt = `Decide whether the user message belongs in a conversation about the annual ranking of hospitals and clinics.

A message belongs when it concerns any of:
- a disease, a symptom or a medical specialty
- the ranking of hospitals and clinics
- finding a hospital, a clinic or a medical service

Short follow-ups that refine an earlier search (a city name, a number, "et en privé ?") belong as well.

Answer {"relevant": true} or {"relevant": false}.`

// RelevanceCheck asks the model whether the message belongs to the
// hospital-ranking domain at all.
type RelevanceCheck struct {
	llm *openai.Client
}

func NewRelevanceCheck(llm *openai.Client) *RelevanceCheck {
	return &RelevanceCheck{llm: llm}
}

func (c *RelevanceCheck) Name() string { return NameRelevance }

func (c *RelevanceCheck) Run(ctx context.Context, turn Turn) (Result, error) {
	var sb strings.Builder
	sb.WriteString(relevancePrompt)
	if turn.History != "" {
		fmt.Fprintf(&sb, "\n\nRecent conversation:\n%s", turn.History)
	}
	fmt.Fprintf(&sb, "\n\nMessage: %q", turn.Message)

	raw, err := c.llm.Complete(ctx, relevanceSystem, []openai.Message{
		{Role: "user", Content: sb.String()},
	}, relevanceMaxTokens)
	if err != nil {
		return Result{}, fmt.Errorf("relevance completion: %w", err)
	}

	var verdict struct {
		Relevant bool `json:"relevant"`
	}
	if err := json.Unmarshal(fenceTrimmed(raw), &verdict); err != nil {
		return Result{}, fmt.Errorf("parse relevance verdict %q: %w", raw, err)
	}
	if !verdict.Relevant {
		return Result{Reply: msgOffTopic}, nil
	}
	return Result{OK: true}, nil
}

// fenceTrimmed strips markdown code fences some models wrap around JSON.
func fenceTrimmed(raw string) []byte {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return []byte(strings.TrimSpace(s))
}
