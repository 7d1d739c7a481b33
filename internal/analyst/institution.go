package analyst

import (
	"context"
	"fmt"
	"strings"

	"github.com/opalia-labs/palmares/internal/openai"
	"github.com/opalia-labs/palmares/internal/vocab"
)

const institutionMatchThreshold = 0.8

type institutionFacet struct {
	llm   *openai.Client
	vocab *vocab.Vocab
}

func (f *institutionFacet) Name() string { return FacetInstitutionName }

type institutionResponse struct {
	Institution string `json:"institution"`
}

func (f *institutionFacet) Extract(ctx context.Context, message string, _ ResolvedFilters) (Candidate, error) {
	raw, err := f.llm.Complete(ctx, analystSystem, []openai.Message{
		{Role: "user", Content: fmt.Sprintf(institutionPrompt, message)},
	}, extractMaxTokens)
	if err != nil {
		return Candidate{}, fmt.Errorf("institution extract: %w", err)
	}

	var resp institutionResponse
	if err := decodeJSON(raw, &resp); err != nil {
		return Candidate{}, fmt.Errorf("institution extract: %w", err)
	}

	name := strings.TrimSpace(resp.Institution)
	return Candidate{Mentioned: name != "", Value: name}, nil
}

func (f *institutionFacet) Validate(cand Candidate, prior FacetValue) FacetValue {
	if !cand.Mentioned {
		return prior
	}

	if inst, ok := f.vocab.FindInstitution(cand.Value); ok {
		return Confirm(inst.Name)
	}

	needle := stripGeneric(vocab.Fold(cand.Value))
	var close []string
	for _, inst := range f.vocab.Institutions() {
		hay := stripGeneric(vocab.Fold(inst.Name))
		switch {
		case similarity(needle, hay) >= institutionMatchThreshold:
			close = append(close, inst.Name)
		case len(needle) >= 5 && strings.Contains(hay, needle):
			// Partial official names ("clinique pasteur") count; very short
			// fragments would match half the list.
			close = append(close, inst.Name)
		}
	}

	switch len(close) {
	case 1:
		return Confirm(close[0])
	case 0:
		// Named but absent from the ranking: interrupt with a dedicated
		// answer rather than querying for something that cannot match.
		return NeedsClarification(ReasonUnknownInst, cand.Value)
	default:
		if prior.IsConfirmed() {
			return prior
		}
		return NeedsClarification(ReasonAmbiguous, cand.Value, close...)
	}
}
