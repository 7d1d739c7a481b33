package ranking

import (
	"sort"
	"strings"

	"github.com/opalia-labs/palmares/internal/vocab"
)

// orderRows makes retrieval deterministic: score descending, then table
// rank ascending, then folded institution name.
func orderRows(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Score != rows[j].Score {
			return rows[i].Score > rows[j].Score
		}
		if rows[i].Rank != rows[j].Rank {
			return rows[i].Rank < rows[j].Rank
		}
		return vocab.Fold(rows[i].Institution) < vocab.Fold(rows[j].Institution)
	})
}

// matchInstitution keeps the rows naming the confirmed establishment.
func matchInstitution(rows []Row, name string) []Row {
	needle := vocab.Fold(name)
	var kept []Row
	for _, r := range rows {
		hay := vocab.Fold(r.Institution)
		if hay == needle || strings.Contains(hay, needle) {
			kept = append(kept, r)
		}
	}
	orderRows(kept)
	return kept
}
