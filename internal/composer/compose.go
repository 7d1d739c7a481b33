// Package composer turns pipeline outcomes into user-facing French
// replies. Row data is embedded verbatim; the model contributes only a
// lead-in sentence and every other path is canned text.
package composer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/opalia-labs/palmares/internal/analyst"
	"github.com/opalia-labs/palmares/internal/openai"
	"github.com/opalia-labs/palmares/internal/ranking"
)

const introMaxTokens = 96

type Composer struct {
	llm    *openai.Client
	logger *slog.Logger
}

func New(llm *openai.Client, logger *slog.Logger) *Composer {
	return &Composer{llm: llm, logger: logger}
}

// ComposeResult words a retrieval outcome. Institution lookups and empty
// results are fully deterministic; row listings get a model lead-in with
// the canned header as fallback, so the reply survives a model outage.
func (c *Composer) ComposeResult(ctx context.Context, question string, res ranking.QueryResult) string {
	if res.Filters.Institution != "" {
		return rankAnswer(res)
	}
	if len(res.Rows) == 0 {
		return emptyResult(res.Filters)
	}

	rows := rowsBlock(res)
	header := c.intro(ctx, question, rows)
	if header == "" {
		header = resultHeader(res)
	}
	return header + "\n" + rows
}

// ComposeClarify words the question for the first pending facet.
func (c *Composer) ComposeClarify(filters analyst.ResolvedFilters) string {
	facet, v, ok := filters.FirstPending()
	if !ok {
		return msgClarifyDefault
	}
	return clarify(facet, v)
}

// intro asks the model for the lead-in sentence. Empty on any failure.
func (c *Composer) intro(ctx context.Context, question, rows string) string {
	raw, err := c.llm.Complete(ctx, composerSystem, []openai.Message{
		{Role: "user", Content: fmt.Sprintf(introPrompt, question, rows)},
	}, introMaxTokens)
	if err != nil {
		c.logger.Warn("intro completion failed, using canned header", "error", err)
		return ""
	}
	intro := strings.TrimSpace(raw)
	intro = strings.Trim(intro, `"«»`)
	if intro == "" || strings.Count(intro, "\n") > 0 {
		// A multi-line reply ignored the instructions; the canned header
		// is safer than guessing which line to keep.
		return ""
	}
	return strings.TrimSpace(intro)
}
