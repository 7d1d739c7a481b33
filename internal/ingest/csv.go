// Package ingest loads annual ranking exports into the store.
package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/opalia-labs/palmares/internal/ranking"
	"github.com/opalia-labs/palmares/internal/vocab"
)

// Column aliases seen across the yearly exports, folded.
var columnAliases = map[string]string{
	"etablissement": "institution",
	"nom print":     "institution",
	"categorie":     "category",
	"secteur":       "category",
	"ville":         "city",
	"commune":       "city",
	"departement":   "department",
	"latitude":      "lat",
	"lat":           "lat",
	"longitude":     "lon",
	"lon":           "lon",
	"lng":           "lon",
	"specialite":    "specialty",
	"pathologie":    "specialty",
	"rang":          "rank",
	"note / 20":     "score",
	"note":          "score",
	"score final":   "score",
}

// ParseFile reads one CSV export from disk.
func ParseFile(path string) ([]ranking.Row, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a ranking export. The files come out of French Excel, so
// both field separators and both decimal conventions show up. Rows
// missing an institution, a recognizable sector or a score are skipped;
// the count of skips is returned alongside the usable rows.
func Parse(r io.Reader) ([]ranking.Row, int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, fmt.Errorf("read: %w", err)
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = sniffSeparator(data)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, 0, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) < 2 {
		return nil, 0, fmt.Errorf("no data rows")
	}

	cols, err := mapHeader(records[0])
	if err != nil {
		return nil, 0, err
	}

	var rows []ranking.Row
	skipped := 0
	for _, rec := range records[1:] {
		row, ok := buildRow(cols, rec)
		if !ok {
			skipped++
			continue
		}
		rows = append(rows, row)
	}
	return rows, skipped, nil
}

// sniffSeparator picks ';' when the header line carries more of them
// than commas, which is what fr-locale Excel writes.
func sniffSeparator(data []byte) rune {
	header := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		header = data[:i]
	}
	if bytes.Count(header, []byte{';'}) > bytes.Count(header, []byte{','}) {
		return ';'
	}
	return ','
}

func mapHeader(header []string) (map[string]int, error) {
	cols := make(map[string]int)
	for i, cell := range header {
		name, ok := columnAliases[vocab.Fold(cell)]
		if !ok {
			continue
		}
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	for _, required := range []string{"institution", "category", "score"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}
	return cols, nil
}

func buildRow(cols map[string]int, rec []string) (ranking.Row, bool) {
	cell := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	institution := cell("institution")
	if institution == "" {
		return ranking.Row{}, false
	}
	category, ok := vocab.NormalizeCategory(cell("category"))
	if !ok {
		return ranking.Row{}, false
	}
	score, err := parseScore(cell("score"))
	if err != nil {
		return ranking.Row{}, false
	}

	row := ranking.Row{
		Institution: institution,
		Category:    category,
		City:        cell("city"),
		Department:  cell("department"),
		Specialty:   cell("specialty"),
		Score:       score,
	}
	row.Lat, _ = parseScore(cell("lat"))
	row.Lon, _ = parseScore(cell("lon"))
	if n, err := strconv.Atoi(cell("rank")); err == nil {
		row.Rank = n
	}
	return row, true
}

// parseScore accepts both "18.6" and the French "18,6".
func parseScore(s string) (float64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty")
	}
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
}
