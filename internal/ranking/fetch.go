package ranking

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/opalia-labs/palmares/internal/vocab"
)

// Fetcher runs retrieval for one turn.
type Fetcher struct {
	querier Querier
	vocab   *vocab.Vocab
	logger  *slog.Logger
}

func NewFetcher(querier Querier, v *vocab.Vocab, logger *slog.Logger) *Fetcher {
	return &Fetcher{querier: querier, vocab: v, logger: logger}
}

// Fetch resolves a confirmed filter spec against the ranking tables. The
// same spec over the same table contents always returns the same result;
// zero rows is a normal outcome.
func (f *Fetcher) Fetch(ctx context.Context, spec FilterSpec) (QueryResult, error) {
	rows, err := f.querier.RankingRows(ctx, spec.Specialty, spec.Category)
	if err != nil {
		return QueryResult{}, fmt.Errorf("fetch ranking rows: %w", err)
	}

	res := QueryResult{Filters: spec}

	if spec.Institution != "" {
		res.Rows = matchInstitution(rows, spec.Institution)
		res.Total = len(res.Rows)
		res.Links = pageLinks(res.Rows)
		f.logger.Info("institution lookup",
			"institution", spec.Institution,
			"specialty", spec.Specialty,
			"rows", res.Total,
		)
		return res, nil
	}

	if spec.City != "" {
		city, ok := f.vocab.CityByLabel(spec.City)
		if !ok {
			// The city passed validation but the tables do not cover it.
			f.logger.Info("city not covered by rankings", "city", spec.City)
			return res, nil
		}
		rows, res.RadiusKm = narrowByRadius(rows, city.Lat, city.Lon, spec.Count)
	}

	orderRows(rows)
	res.Total = len(rows)
	if spec.Count > 0 && len(rows) > spec.Count {
		rows = rows[:spec.Count]
		res.Truncated = true
	}
	res.Rows = rows
	res.Links = pageLinks(rows)

	f.logger.Info("retrieval complete",
		"specialty", spec.Specialty,
		"category", spec.Category,
		"city", spec.City,
		"radius_km", res.RadiusKm,
		"total", res.Total,
		"returned", len(res.Rows),
	)
	return res, nil
}

// narrowByRadius widens the search over the radius ladder until enough
// rows are inside, and settles for the widest cut when the ladder is
// exhausted.
func narrowByRadius(rows []Row, lat, lon float64, want int) ([]Row, int) {
	if want < 1 {
		want = 1
	}
	for _, km := range SearchRadiiKm {
		inside := withinRadius(rows, lat, lon, km)
		if len(inside) >= want {
			return inside, km
		}
	}
	km := SearchRadiiKm[len(SearchRadiiKm)-1]
	return withinRadius(rows, lat, lon, km), km
}
