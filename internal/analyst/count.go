package analyst

import (
	"context"
	"fmt"
	"strconv"

	"github.com/opalia-labs/palmares/internal/openai"
)

// Result-count bounds for one answer. Requests outside the bounds are
// validator rejections, so a carried-over count survives a bad extraction.
const (
	DefaultResultCount = 3
	MinResultCount     = 1
	MaxResultCount     = 10
)

type countFacet struct {
	llm *openai.Client
}

func (f *countFacet) Name() string { return FacetResultCount }

type countResponse struct {
	Count *int `json:"count"`
}

func (f *countFacet) Extract(ctx context.Context, message string, _ ResolvedFilters) (Candidate, error) {
	raw, err := f.llm.Complete(ctx, analystSystem, []openai.Message{
		{Role: "user", Content: fmt.Sprintf(countPrompt, message)},
	}, extractMaxTokens)
	if err != nil {
		return Candidate{}, fmt.Errorf("count extract: %w", err)
	}

	var resp countResponse
	if err := decodeJSON(raw, &resp); err != nil {
		return Candidate{}, fmt.Errorf("count extract: %w", err)
	}

	if resp.Count == nil {
		return Candidate{}, nil
	}
	return Candidate{Mentioned: true, Value: strconv.Itoa(*resp.Count)}, nil
}

func (f *countFacet) Validate(cand Candidate, prior FacetValue) FacetValue {
	if !cand.Mentioned {
		return prior
	}
	n, err := strconv.Atoi(cand.Value)
	if err != nil || n < MinResultCount || n > MaxResultCount {
		return prior
	}
	return Confirm(cand.Value)
}
