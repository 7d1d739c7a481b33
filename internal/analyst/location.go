package analyst

import (
	"context"
	"fmt"
	"strings"

	"github.com/opalia-labs/palmares/internal/openai"
	"github.com/opalia-labs/palmares/internal/vocab"
)

// Location extractor status tags.
const (
	locFrench    = "french"
	locForeign   = "foreign"
	locAmbiguous = "ambiguous"
)

type locationFacet struct {
	llm   *openai.Client
	vocab *vocab.Vocab
}

func (f *locationFacet) Name() string { return FacetLocation }

type locationResponse struct {
	Status string `json:"status"`
	City   string `json:"city"`
}

func (f *locationFacet) Extract(ctx context.Context, message string, _ ResolvedFilters) (Candidate, error) {
	raw, err := f.llm.Complete(ctx, analystSystem, []openai.Message{
		{Role: "user", Content: fmt.Sprintf(locationPrompt, message)},
	}, extractMaxTokens)
	if err != nil {
		return Candidate{}, fmt.Errorf("location extract: %w", err)
	}

	var resp locationResponse
	if err := decodeJSON(raw, &resp); err != nil {
		return Candidate{}, fmt.Errorf("location extract: %w", err)
	}

	switch resp.Status {
	case locFrench, locForeign, locAmbiguous:
		return Candidate{Mentioned: true, Value: strings.TrimSpace(resp.City), Status: resp.Status}, nil
	default:
		// Unknown status tags collapse to "not mentioned".
		return Candidate{}, nil
	}
}

func (f *locationFacet) Validate(cand Candidate, prior FacetValue) FacetValue {
	if !cand.Mentioned {
		return prior
	}

	// A foreign place always interrupts, even over a confirmed prior city:
	// the user asked for something the ranking does not cover.
	if cand.Status == locForeign {
		return NeedsClarification(ReasonForeign, cand.Value)
	}

	if cand.Value == "" {
		// "near me", "on the coast"... a place was meant but not named.
		if prior.IsConfirmed() {
			return prior
		}
		return NeedsClarification(ReasonAmbiguous, "")
	}

	if c, ok := f.vocab.CityByLabel(cand.Value); ok {
		return Confirm(f.vocab.CityLabel(c))
	}

	if matches := f.vocab.FindCities(cand.Value); len(matches) > 1 {
		if prior.IsConfirmed() {
			return prior
		}
		labels := make([]string, len(matches))
		for i, c := range matches {
			labels[i] = f.vocab.CityLabel(c)
		}
		return NeedsClarification(ReasonAmbiguous, cand.Value, labels...)
	}

	// Not in the coordinate table. Confirmed anyway so retrieval can name
	// the city in an empty-result answer.
	return Confirm(cand.Value)
}
