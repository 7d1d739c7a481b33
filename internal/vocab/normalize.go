package vocab

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Ligatures have no canonical decomposition, so the transform chain misses
// them; curly apostrophes are folded to the straight form users' keyboards
// and the vocabulary files disagree on.
var foldReplacer = strings.NewReplacer("œ", "oe", "Œ", "OE", "æ", "ae", "Æ", "AE", "’", "'")

// Fold normalizes user text for vocabulary lookups: trims, lowercases and
// strips accents, so "Sclérose" and "sclerose" compare equal.
func Fold(s string) string {
	s = strings.TrimSpace(strings.ToLower(foldReplacer.Replace(s)))
	out, _, err := transform.String(foldTransformer, s)
	if err != nil {
		return s
	}
	return out
}

// Slug renders a value as a URL path segment: folded, with every
// non-alphanumeric run collapsed to a single dash.
func Slug(s string) string {
	folded := Fold(s)
	var b strings.Builder
	dash := false
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
