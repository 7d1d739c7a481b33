package ranking

import (
	"fmt"

	"github.com/opalia-labs/palmares/internal/vocab"
)

const rankingBaseURL = "https://www.lepoint.fr/hopitaux/classements"

const honorRollName = "tableau d'honneur"

// pageLink builds the published ranking page for a specialty and
// category, e.g. .../prothese-de-hanche-public.php. An empty specialty
// points at the honor roll.
func pageLink(specialty, category string) string {
	if specialty == "" {
		specialty = honorRollName
	}
	return fmt.Sprintf("%s/%s-%s.php", rankingBaseURL, vocab.Slug(specialty), vocab.Slug(category))
}

// pageLinks collects the distinct pages backing a row set, in first-seen
// order so the composer output is stable.
func pageLinks(rows []Row) []string {
	var links []string
	seen := make(map[string]struct{}, 2)
	for _, r := range rows {
		link := pageLink(r.Specialty, r.Category)
		if _, dup := seen[link]; dup {
			continue
		}
		seen[link] = struct{}{}
		links = append(links, link)
	}
	return links
}
