package analyst

import (
	"context"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
)

// Facet is one extract+validate pair of the query analyst. Extraction is
// model-driven and may run concurrently with other facets; validation is
// deterministic and runs in FacetOrder during the merge. Validate returns
// the slot's new value, which is the prior value whenever the candidate
// does not survive validation.
type Facet interface {
	Name() string
	Extract(ctx context.Context, message string, prior ResolvedFilters) (Candidate, error)
	Validate(cand Candidate, prior FacetValue) FacetValue
}

// similarity is the normalized match ratio in [0,1] between two folded
// strings, derived from edit distance over the longer length.
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}

// Filler words carry no signal when matching specialty names: "chirurgie
// de la cataracte" and "cataracte" must meet.
var genericWords = map[string]struct{}{
	"chirurgie": {}, "maladie": {}, "maladies": {},
	"de": {}, "du": {}, "des": {}, "d": {},
	"la": {}, "le": {}, "les": {}, "l": {},
	"et": {}, "en": {}, "a": {}, "au": {}, "aux": {},
}

// stripGeneric removes filler words from an already-folded string.
func stripGeneric(folded string) string {
	fields := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	kept := fields[:0]
	for _, f := range fields {
		if _, skip := genericWords[f]; !skip {
			kept = append(kept, f)
		}
	}
	return strings.Join(kept, " ")
}
