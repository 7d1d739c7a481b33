package store

import (
	"context"
	"fmt"

	"github.com/opalia-labs/palmares/internal/ranking"
)

// RankingRows returns the latest-year rows for one specialty. Empty
// specialty selects the honor roll, empty category selects both
// sectors. Implements ranking.Querier.
func (s *Store) RankingRows(ctx context.Context, specialty, category string) ([]ranking.Row, error) {
	query := `
		SELECT institution, category, city, department, lat, lon, specialty, rank, score, year
		FROM rankings
		WHERE specialty = $1
		  AND ($2 = '' OR category = $2)
		  AND year = (SELECT COALESCE(MAX(year), 0) FROM rankings)
		ORDER BY score DESC, rank ASC`

	rows, err := s.pool.Query(ctx, query, specialty, category)
	if err != nil {
		return nil, fmt.Errorf("query rankings: %w", err)
	}
	defer rows.Close()

	var out []ranking.Row
	for rows.Next() {
		var r ranking.Row
		if err := rows.Scan(&r.Institution, &r.Category, &r.City, &r.Department, &r.Lat, &r.Lon, &r.Specialty, &r.Rank, &r.Score, &r.Year); err != nil {
			return nil, fmt.Errorf("scan ranking row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return out, nil
}

// ReplaceYear swaps in a full year of ranking rows in one transaction.
// The year parameter wins over whatever the rows carry.
func (s *Store) ReplaceYear(ctx context.Context, year int, rows []ranking.Row) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM rankings WHERE year = $1`, year); err != nil {
		return fmt.Errorf("clear year %d: %w", year, err)
	}

	for _, r := range rows {
		_, err := tx.Exec(ctx, `
			INSERT INTO rankings (institution, category, city, department, lat, lon, specialty, rank, score, year)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			r.Institution, r.Category, r.City, r.Department, r.Lat, r.Lon, r.Specialty, r.Rank, r.Score, year,
		)
		if err != nil {
			return fmt.Errorf("insert ranking %q: %w", r.Institution, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// RankingCount reports how many rows a year holds.
func (s *Store) RankingCount(ctx context.Context, year int) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM rankings WHERE year = $1`, year).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count rankings: %w", err)
	}
	return n, nil
}
