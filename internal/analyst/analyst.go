package analyst

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/opalia-labs/palmares/internal/openai"
	"github.com/opalia-labs/palmares/internal/vocab"
)

const extractMaxTokens = 256

// Analyst resolves one turn's message into the merged filter set: every
// facet's extractor runs (concurrently), every candidate is validated, and
// confirmed values override the carried-over set facet by facet.
type Analyst struct {
	llm    *openai.Client
	vocab  *vocab.Vocab
	facets []Facet
	logger *slog.Logger
}

func New(llm *openai.Client, v *vocab.Vocab, logger *slog.Logger) *Analyst {
	return &Analyst{
		llm:    llm,
		vocab:  v,
		logger: logger,
		// Construction order must match FacetOrder: the merge walks this
		// slice, which is what makes it deterministic.
		facets: []Facet{
			&locationFacet{llm: llm, vocab: v},
			&institutionFacet{llm: llm, vocab: v},
			&categoryFacet{llm: llm},
			&countFacet{llm: llm},
			&specialtyFacet{llm: llm, vocab: v},
		},
	}
}

// Resolve runs every facet pair against the message and merges the
// outcomes over the carried-over filters. Extractions run concurrently;
// the merge applies them in FacetOrder regardless of completion order. An
// error means a model call ultimately failed and the turn cannot proceed;
// the carried-over filters are returned untouched alongside it.
func (a *Analyst) Resolve(ctx context.Context, message string, prior ResolvedFilters) (ResolvedFilters, error) {
	if hasConfirmed(prior) {
		reset, err := a.classifyIntent(ctx, message, prior)
		switch {
		case err != nil:
			// Failing open to continuation keeps the carry-forward
			// guarantee; a reset must be unambiguous.
			a.logger.Warn("intent classification failed, assuming continuation", "error", err)
		case reset:
			a.logger.Info("new search requested, clearing carried filters")
			prior = ResolvedFilters{}
		}
	}

	// A Pending facet was consumed by last turn's clarification question;
	// only Confirmed values carry across turns.
	prior = dropPending(prior)

	cands := make([]Candidate, len(a.facets))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range a.facets {
		i, f := i, f
		g.Go(func() error {
			cand, err := f.Extract(gctx, message, prior)
			if err != nil {
				return err
			}
			cands[i] = cand
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return prior, fmt.Errorf("facet extraction: %w", err)
	}

	merged := prior
	for i, f := range a.facets {
		v := f.Validate(cands[i], merged.Get(f.Name()))
		merged.Set(f.Name(), v)
		a.logger.Debug("facet resolved", "facet", f.Name(), "state", string(v.State), "value", v.Value)
	}
	return merged, nil
}

type intentResponse struct {
	Intent string `json:"intent"`
}

// classifyIntent decides whether the turn continues the carried search or
// explicitly starts over.
func (a *Analyst) classifyIntent(ctx context.Context, message string, prior ResolvedFilters) (bool, error) {
	raw, err := a.llm.Complete(ctx, analystSystem, []openai.Message{
		{Role: "user", Content: fmt.Sprintf(intentPrompt, describeFilters(prior), message)},
	}, extractMaxTokens)
	if err != nil {
		return false, err
	}

	var resp intentResponse
	if err := decodeJSON(raw, &resp); err != nil {
		return false, err
	}
	return resp.Intent == "nouvelle_recherche", nil
}

func dropPending(f ResolvedFilters) ResolvedFilters {
	for _, name := range FacetOrder {
		if f.Get(name).IsPending() {
			f.Set(name, FacetValue{})
		}
	}
	return f
}

func hasConfirmed(f ResolvedFilters) bool {
	for _, name := range FacetOrder {
		if f.Get(name).IsConfirmed() {
			return true
		}
	}
	return false
}

func describeFilters(f ResolvedFilters) string {
	var parts []string
	for _, name := range FacetOrder {
		if v := f.Get(name); v.IsConfirmed() {
			parts = append(parts, name+"="+v.Value)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}
