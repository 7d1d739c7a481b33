package analyst

import (
	"context"
	"fmt"
	"strings"

	"github.com/opalia-labs/palmares/internal/openai"
	"github.com/opalia-labs/palmares/internal/vocab"
)

const specialtyMatchThreshold = 0.8

type specialtyFacet struct {
	llm   *openai.Client
	vocab *vocab.Vocab
}

func (f *specialtyFacet) Name() string { return FacetSpecialty }

type specialtyResponse struct {
	Specialty string `json:"specialty"`
}

func (f *specialtyFacet) Extract(ctx context.Context, message string, _ ResolvedFilters) (Candidate, error) {
	var list strings.Builder
	for _, s := range f.vocab.Specialties() {
		list.WriteString("- ")
		list.WriteString(s.Name)
		list.WriteString("\n")
	}

	raw, err := f.llm.Complete(ctx, analystSystem, []openai.Message{
		{Role: "user", Content: fmt.Sprintf(specialtyPrompt, list.String(), message)},
	}, extractMaxTokens)
	if err != nil {
		return Candidate{}, fmt.Errorf("specialty extract: %w", err)
	}

	var resp specialtyResponse
	if err := decodeJSON(raw, &resp); err != nil {
		return Candidate{}, fmt.Errorf("specialty extract: %w", err)
	}

	name := strings.TrimSpace(resp.Specialty)
	return Candidate{Mentioned: name != "", Value: name}, nil
}

func (f *specialtyFacet) Validate(cand Candidate, prior FacetValue) FacetValue {
	if !cand.Mentioned {
		return prior
	}

	if canonical, ok := f.vocab.CanonicalSpecialty(cand.Value); ok {
		return Confirm(canonical)
	}

	needle := stripGeneric(vocab.Fold(cand.Value))
	if needle == "" {
		return prior
	}

	var matches []string
	for _, s := range f.vocab.Specialties() {
		hay := stripGeneric(vocab.Fold(s.Name))
		if similarity(needle, hay) >= specialtyMatchThreshold ||
			strings.Contains(hay, needle) || strings.Contains(needle, hay) {
			matches = append(matches, s.Name)
		}
	}

	switch len(matches) {
	case 0:
		return prior
	case 1:
		return Confirm(matches[0])
	default:
		if prior.IsConfirmed() {
			return prior
		}
		return NeedsClarification(ReasonAmbiguous, cand.Value, matches...)
	}
}
