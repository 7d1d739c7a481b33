package ranking

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"

	"github.com/opalia-labs/palmares/internal/vocab"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// staticQuerier filters an in-memory table the way the store does in SQL.
type staticQuerier struct {
	rows []Row
	err  error
}

func (q *staticQuerier) RankingRows(_ context.Context, specialty, category string) ([]Row, error) {
	if q.err != nil {
		return nil, q.err
	}
	var out []Row
	for _, r := range q.rows {
		if r.Specialty != specialty {
			continue
		}
		if category != "" && r.Category != category {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func testFetcher(t *testing.T, rows []Row) *Fetcher {
	t.Helper()
	v, err := vocab.Load()
	if err != nil {
		t.Fatalf("load vocab: %v", err)
	}
	return NewFetcher(&staticQuerier{rows: rows}, v, discardLogger())
}

// cardioParis builds ten cardiology rows around Paris with distinct
// scores so ordering is unambiguous.
func cardioParis() []Row {
	rows := make([]Row, 0, 10)
	names := []string{
		"Hôpital A", "Hôpital B", "Hôpital C", "Hôpital D", "Hôpital E",
		"Hôpital F", "Hôpital G", "Hôpital H", "Hôpital I", "Hôpital J",
	}
	for i, name := range names {
		rows = append(rows, Row{
			Institution: name,
			Category:    vocab.CategoryPublic,
			City:        "Paris",
			Lat:         48.8566,
			Lon:         2.3522,
			Specialty:   "Cardiologie",
			Rank:        i + 1,
			Score:       19.0 - float64(i)*0.3,
			Year:        2025,
		})
	}
	return rows
}

func TestFetch_TruncatesToCount(t *testing.T) {
	f := testFetcher(t, cardioParis())

	res, err := f.Fetch(context.Background(), FilterSpec{
		City: "Paris", Specialty: "Cardiologie", Count: 3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(res.Rows))
	}
	if !res.Truncated {
		t.Error("result should be marked truncated")
	}
	if res.Total != 10 {
		t.Errorf("Total = %d, want 10", res.Total)
	}
	// Highest scores first.
	if res.Rows[0].Institution != "Hôpital A" || res.Rows[2].Institution != "Hôpital C" {
		t.Errorf("unexpected top rows: %v", res.Rows)
	}
}

func TestFetch_FewerRowsThanRequested(t *testing.T) {
	f := testFetcher(t, cardioParis()[:2])

	res, err := f.Fetch(context.Background(), FilterSpec{
		City: "Paris", Specialty: "Cardiologie", Count: 5,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Rows) != 2 || res.Truncated {
		t.Errorf("want all 2 rows untruncated, got %d truncated=%v", len(res.Rows), res.Truncated)
	}
}

func TestFetch_UnknownCityIsEmpty(t *testing.T) {
	f := testFetcher(t, cardioParis())

	spec := FilterSpec{City: "Trifouillis-les-Oies", Specialty: "Cardiologie", Count: 3}
	first, err := f.Fetch(context.Background(), spec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first.Rows) != 0 || first.Total != 0 {
		t.Fatalf("unknown city should yield no rows, got %v", first.Rows)
	}
	if first.Filters.City != spec.City {
		t.Errorf("result must keep the city for the reply, got %q", first.Filters.City)
	}

	// Same spec, same outcome.
	second, err := f.Fetch(context.Background(), spec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("retrieval for the same spec should be identical")
	}
}

func TestFetch_CityBeyondAllRadii(t *testing.T) {
	f := testFetcher(t, cardioParis())

	// Saint-Denis (La Réunion) is thousands of km from every row.
	res, err := f.Fetch(context.Background(), FilterSpec{
		City: "Saint-Denis (La Réunion)", Specialty: "Cardiologie", Count: 3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Rows) != 0 {
		t.Errorf("expected no rows within the widest radius, got %d", len(res.Rows))
	}
	if res.RadiusKm != SearchRadiiKm[len(SearchRadiiKm)-1] {
		t.Errorf("RadiusKm = %d, want the widest radius", res.RadiusKm)
	}
}

func TestFetch_InstitutionLookup(t *testing.T) {
	rows := cardioParis()
	f := testFetcher(t, rows)

	res, err := f.Fetch(context.Background(), FilterSpec{
		Institution: "Hôpital D", Specialty: "Cardiologie", Count: 3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Rows) != 1 || res.Rows[0].Rank != 4 {
		t.Fatalf("want the rank-4 row, got %v", res.Rows)
	}
	if len(res.Links) != 1 {
		t.Errorf("want one backing link, got %v", res.Links)
	}
}

func TestFetch_QuerierError(t *testing.T) {
	v, err := vocab.Load()
	if err != nil {
		t.Fatalf("load vocab: %v", err)
	}
	boom := errors.New("connection refused")
	f := NewFetcher(&staticQuerier{err: boom}, v, discardLogger())

	if _, err := f.Fetch(context.Background(), FilterSpec{Count: 3}); !errors.Is(err, boom) {
		t.Fatalf("want wrapped querier error, got %v", err)
	}
}

func TestFetch_NoFiltersReturnsHonorRoll(t *testing.T) {
	rows := []Row{
		{Institution: "CHU de Lille", Category: vocab.CategoryPublic, City: "Lille", Lat: 50.6292, Lon: 3.0573, Rank: 1, Score: 18.5, Year: 2025},
		{Institution: "Clinique du Parc", Category: vocab.CategoryPrivate, City: "Lyon", Lat: 45.764, Lon: 4.8357, Rank: 1, Score: 17.9, Year: 2025},
	}
	f := testFetcher(t, rows)

	res, err := f.Fetch(context.Background(), FilterSpec{Count: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Rows) != 2 || res.RadiusKm != 0 {
		t.Fatalf("want both honor-roll rows with no radius, got %+v", res)
	}
	if res.Rows[0].Institution != "CHU de Lille" {
		t.Errorf("rows not ordered by score: %v", res.Rows)
	}
}
