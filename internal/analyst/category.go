package analyst

import (
	"context"
	"fmt"

	"github.com/opalia-labs/palmares/internal/openai"
	"github.com/opalia-labs/palmares/internal/vocab"
)

type categoryFacet struct {
	llm *openai.Client
}

func (f *categoryFacet) Name() string { return FacetInstitutionCategory }

type categoryResponse struct {
	Category string `json:"category"`
}

func (f *categoryFacet) Extract(ctx context.Context, message string, _ ResolvedFilters) (Candidate, error) {
	raw, err := f.llm.Complete(ctx, analystSystem, []openai.Message{
		{Role: "user", Content: fmt.Sprintf(categoryPrompt, message)},
	}, extractMaxTokens)
	if err != nil {
		return Candidate{}, fmt.Errorf("category extract: %w", err)
	}

	var resp categoryResponse
	if err := decodeJSON(raw, &resp); err != nil {
		return Candidate{}, fmt.Errorf("category extract: %w", err)
	}

	if resp.Category == "" || resp.Category == "none" {
		return Candidate{}, nil
	}
	return Candidate{Mentioned: true, Value: resp.Category}, nil
}

func (f *categoryFacet) Validate(cand Candidate, prior FacetValue) FacetValue {
	if !cand.Mentioned {
		return prior
	}
	if c, ok := vocab.NormalizeCategory(cand.Value); ok {
		return Confirm(c)
	}
	return prior
}
