package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/opalia-labs/palmares/internal/ranking"
	"github.com/opalia-labs/palmares/internal/store"
)

// Loader parses an export and swaps it in as one year of rankings.
type Loader struct {
	store  *store.Store
	logger *slog.Logger
}

func NewLoader(st *store.Store, logger *slog.Logger) *Loader {
	return &Loader{store: st, logger: logger}
}

// Run loads one export file as the given year's rankings.
func (l *Loader) Run(ctx context.Context, path string, year int) error {
	rows, skipped, err := ParseFile(path)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if skipped > 0 {
		l.logger.Warn("unusable rows skipped", "file", filepath.Base(path), "count", skipped)
	}
	if len(rows) == 0 {
		return fmt.Errorf("no usable rows in %s", path)
	}

	fillRanks(rows)

	if err := l.store.ReplaceYear(ctx, year, rows); err != nil {
		return fmt.Errorf("replace year %d: %w", year, err)
	}

	l.logger.Info("rankings loaded",
		"file", filepath.Base(path),
		"year", year,
		"rows", len(rows),
	)
	return nil
}

// fillRanks assigns positions by descending score within each
// specialty and sector table, for rows the export left unranked.
// Exports that carry their own rank column are left alone.
func fillRanks(rows []ranking.Row) {
	groups := make(map[string][]int)
	for i, r := range rows {
		key := r.Specialty + "\x00" + r.Category
		groups[key] = append(groups[key], i)
	}

	for _, idx := range groups {
		sort.SliceStable(idx, func(a, b int) bool {
			return rows[idx[a]].Score > rows[idx[b]].Score
		})
		for pos, i := range idx {
			if rows[i].Rank == 0 {
				rows[i].Rank = pos + 1
			}
		}
	}
}
