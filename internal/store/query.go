// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"fmt"
	"strings"
)

// QueryOptions holds parameters for measurement queries (R3).
type QueryOptions struct {
	// Text is the FTS5 full-text search string over paper title,
	// abstract, journal, and keywords (R3.1).
	Text string

	// Property filters by canonical property name (R3.2).
	Property string

	// Category filters by property category (R3.3).
	Category string

	// Material filters by material name (R3.4).
	Material string

	// MinConfidence drops measurements scored below the threshold.
	MinConfidence float64

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Text == "" && q.Property == "" && q.Category == "" &&
		q.Material == "" && q.MinConfidence == 0
}

// QueryRecord is one measurement joined with its paper provenance.
type QueryRecord struct {
	ExtractionID string  `json:"extractionId" yaml:"extraction_id"`
	PaperTitle   string  `json:"paperTitle" yaml:"paper_title"`
	DOI          string  `json:"doi" yaml:"doi"`
	Material     string  `json:"material" yaml:"material"`
	Property     string  `json:"property" yaml:"property"`
	Category     string  `json:"category" yaml:"category"`
	Value        float64 `json:"value" yaml:"value"`
	Unit         string  `json:"unit" yaml:"unit"`
	SIValue      float64 `json:"siValue" yaml:"si_value"`
	SIUnit       string  `json:"siUnit" yaml:"si_unit"`
	Confidence   float64 `json:"confidence" yaml:"confidence"`
}

// Query returns measurements matching the options. Full-text matches
// rank by relevance; structured-only queries sort by property then SI
// value for stable output (R3.5).
func (s *Store) Query(ctx context.Context, opts QueryOptions) ([]QueryRecord, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Text != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT e.id, e.title, e.doi, m.material, m.property, m.category,
				m.value, m.unit, m.si_value, m.si_unit, m.confidence, extractions_fts.rank
			FROM extractions_fts
			JOIN extractions e ON e.rowid = extractions_fts.rowid
			JOIN measurements m ON m.extraction_id = e.id
			WHERE extractions_fts MATCH ?`)
		args = append(args, opts.Text)
	} else {
		qb.WriteString(
			`SELECT e.id, e.title, e.doi, m.material, m.property, m.category,
				m.value, m.unit, m.si_value, m.si_unit, m.confidence, 0 AS rank
			FROM measurements m
			JOIN extractions e ON e.id = m.extraction_id
			WHERE 1=1`)
	}

	if opts.Property != "" {
		qb.WriteString(` AND m.property = ? COLLATE NOCASE`)
		args = append(args, opts.Property)
	}
	if opts.Category != "" {
		qb.WriteString(` AND m.category = ? COLLATE NOCASE`)
		args = append(args, opts.Category)
	}
	if opts.Material != "" {
		qb.WriteString(` AND m.material = ? COLLATE NOCASE`)
		args = append(args, opts.Material)
	}
	if opts.MinConfidence > 0 {
		qb.WriteString(` AND m.confidence >= ?`)
		args = append(args, opts.MinConfidence)
	}

	if useFTS {
		qb.WriteString(` ORDER BY extractions_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY m.property, m.si_value`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying measurements: %w", err)
	}
	defer rows.Close()

	var results []QueryRecord
	for rows.Next() {
		var (
			r    QueryRecord
			rank float64
		)
		if err := rows.Scan(
			&r.ExtractionID, &r.PaperTitle, &r.DOI, &r.Material, &r.Property,
			&r.Category, &r.Value, &r.Unit, &r.SIValue, &r.SIUnit,
			&r.Confidence, &rank,
		); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		results = append(results, r)
	}

	return results, rows.Err()
}

// Summary holds extraction counts for the status report.
type Summary struct {
	Extractions  int
	Measurements int
	Tables       int
}

// Summarize reports row counts across the store.
func (s *Store) Summarize(ctx context.Context) (Summary, error) {
	var sum Summary
	for _, q := range []struct {
		query string
		dst   *int
	}{
		{`SELECT count(*) FROM extractions`, &sum.Extractions},
		{`SELECT count(*) FROM measurements`, &sum.Measurements},
		{`SELECT count(*) FROM doc_tables`, &sum.Tables},
	} {
		if err := s.db.QueryRowContext(ctx, q.query).Scan(q.dst); err != nil {
			return Summary{}, fmt.Errorf("counting rows: %w", err)
		}
	}
	return sum, nil
}
