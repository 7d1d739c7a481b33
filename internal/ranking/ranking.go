// Package ranking turns a confirmed filter set into the rows the response
// is composed from: table selection, geographic narrowing, deterministic
// ordering and truncation. Row fetching is behind Querier so the Postgres
// adapter stays in the store package.
package ranking

import "context"

// Row is one ranked establishment from the published tables.
type Row struct {
	Institution string  `json:"institution"`
	Category    string  `json:"category"`
	City        string  `json:"city"`
	Department  string  `json:"department,omitempty"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Specialty   string  `json:"specialty,omitempty"`
	Rank        int     `json:"rank"`
	Score       float64 `json:"score"`
	Year        int     `json:"year"`
}

// FilterSpec is the confirmed facet set a retrieval runs with. Empty
// fields mean the facet was not restricted.
type FilterSpec struct {
	City        string `json:"city,omitempty"`
	Institution string `json:"institution,omitempty"`
	Category    string `json:"category,omitempty"`
	Specialty   string `json:"specialty,omitempty"`
	Count       int    `json:"count"`
}

// QueryResult is what retrieval hands the composer. An empty Rows slice
// is a normal outcome, not an error.
type QueryResult struct {
	Rows []Row
	// Total counts the rows that matched before truncation.
	Total int
	// RadiusKm is the search radius that produced the rows. Zero when no
	// location narrowed the search.
	RadiusKm int
	// Truncated reports that Rows was cut down to the requested count.
	Truncated bool
	// Links are the published ranking pages the rows come from.
	Links []string
	// Filters echoes the spec the result was produced for.
	Filters FilterSpec
}

// Querier fetches the candidate rows for one specialty and category
// slice. Empty specialty selects the honor roll; empty category selects
// both sectors.
type Querier interface {
	RankingRows(ctx context.Context, specialty, category string) ([]Row, error)
}
