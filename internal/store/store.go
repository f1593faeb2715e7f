// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists normalized extraction results and serves
// queries over them. One SQLite database holds the result payloads plus
// flattened measurement and table rows for filtering, with an FTS5
// index over paper metadata for full-text search.
// Implements: prd006-store (R1-R4).
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/matex/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "matex.db"
)

// Store manages the results database.
type Store struct {
	db         *sql.DB
	dir        string
	maxResults int
}

// Open opens or creates the database at {dir}/index/matex.db, creating
// the schema when missing (R1.1, R1.2).
func Open(cfg types.StoreConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.Dir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, dir: cfg.Dir, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS extractions (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			title TEXT,
			doi TEXT,
			journal TEXT,
			abstract TEXT,
			keywords TEXT,
			extracted_at TEXT,
			exported_at TEXT,
			overall_confidence REAL,
			warnings TEXT,
			result_json TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_extractions_doi ON extractions(doi)`,
		`CREATE TABLE IF NOT EXISTS measurements (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			extraction_id TEXT NOT NULL REFERENCES extractions(id) ON DELETE CASCADE,
			material TEXT,
			property TEXT NOT NULL,
			original_name TEXT,
			category TEXT,
			value REAL,
			unit TEXT,
			si_value REAL,
			si_unit TEXT,
			conversion_factor REAL,
			confidence REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_measurements_extraction ON measurements(extraction_id)`,
		`CREATE INDEX IF NOT EXISTS idx_measurements_property ON measurements(property)`,
		`CREATE INDEX IF NOT EXISTS idx_measurements_category ON measurements(category)`,
		`CREATE TABLE IF NOT EXISTS doc_tables (
			table_id TEXT PRIMARY KEY,
			extraction_id TEXT NOT NULL REFERENCES extractions(id) ON DELETE CASCADE,
			page INTEGER,
			caption TEXT,
			data_type TEXT,
			confidence REAL,
			row_count INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_doc_tables_extraction ON doc_tables(extraction_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='extractions_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE extractions_fts USING fts5(title, abstract, journal, keywords, content=extractions, content_rowid=rowid)`,
			`CREATE TRIGGER extractions_ai AFTER INSERT ON extractions BEGIN
				INSERT INTO extractions_fts(rowid, title, abstract, journal, keywords)
				VALUES (new.rowid, new.title, new.abstract, new.journal, new.keywords);
			END`,
			`CREATE TRIGGER extractions_ad AFTER DELETE ON extractions BEGIN
				INSERT INTO extractions_fts(extractions_fts, rowid, title, abstract, journal, keywords)
				VALUES('delete', old.rowid, old.title, old.abstract, old.journal, old.keywords);
			END`,
			`CREATE TRIGGER extractions_au AFTER UPDATE ON extractions BEGIN
				INSERT INTO extractions_fts(extractions_fts, rowid, title, abstract, journal, keywords)
				VALUES('delete', old.rowid, old.title, old.abstract, old.journal, old.keywords);
				INSERT INTO extractions_fts(rowid, title, abstract, journal, keywords)
				VALUES (new.rowid, new.title, new.abstract, new.journal, new.keywords);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// Ingest stores one result, returning its ID. A result with the same
// DOI — or, lacking a DOI, the same title — replaces the earlier one
// under the same ID; the updated flag reports which happened (R2.1-R2.3).
func (s *Store) Ingest(ctx context.Context, result *types.Result) (id string, updated bool, err error) {
	n := &result.Normalized

	doi := ""
	if n.DOI != nil {
		doi = *n.DOI
	}

	id, updated, err = s.findExisting(ctx, doi, n.Title)
	if err != nil {
		return "", false, err
	}
	if !updated {
		id = uuid.NewString()
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return "", false, fmt.Errorf("marshaling result: %w", err)
	}
	keywordsJSON, _ := json.Marshal(n.Keywords)
	warningsJSON, _ := json.Marshal(n.Metadata.Warnings)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if updated {
		// The upsert keeps the extraction row, so the delete cascade
		// never fires; child rows are cleared explicitly.
		if _, err := tx.ExecContext(ctx, `DELETE FROM measurements WHERE extraction_id = ?`, id); err != nil {
			return "", false, fmt.Errorf("clearing measurements: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM doc_tables WHERE extraction_id = ?`, id); err != nil {
			return "", false, fmt.Errorf("clearing tables: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO extractions (id, title, doi, journal, abstract, keywords, extracted_at, exported_at, overall_confidence, warnings, result_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, doi=excluded.doi, journal=excluded.journal,
			abstract=excluded.abstract, keywords=excluded.keywords,
			extracted_at=excluded.extracted_at, exported_at=excluded.exported_at,
			overall_confidence=excluded.overall_confidence,
			warnings=excluded.warnings, result_json=excluded.result_json`,
		id, n.Title, doi, n.Journal.Name, n.Abstract, string(keywordsJSON),
		n.Metadata.ExtractionTimestamp, result.ExportedAt,
		n.Metadata.OverallConfidence, string(warningsJSON), string(payload),
	)
	if err != nil {
		return "", false, fmt.Errorf("upserting extraction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO measurements (extraction_id, material, property, original_name, category, value, unit, si_value, si_unit, conversion_factor, confidence)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", false, fmt.Errorf("preparing measurement insert: %w", err)
	}
	defer stmt.Close()

	for _, m := range n.Measurements {
		material := ""
		if m.Material != nil {
			material = *m.Material
		}
		_, err := stmt.ExecContext(ctx,
			id, material, m.Property.Name, m.Property.OriginalName, m.Property.Category,
			m.Value, m.Unit.OriginalUnit, m.Unit.SIValue, m.Unit.CanonicalUnit,
			m.Unit.ConversionFactor, m.Confidence,
		)
		if err != nil {
			return "", false, fmt.Errorf("inserting measurement: %w", err)
		}
	}

	for _, t := range n.Tables {
		caption := ""
		if t.Caption != nil {
			caption = *t.Caption
		}
		_, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO doc_tables (table_id, extraction_id, page, caption, data_type, confidence, row_count)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			t.TableID, id, t.PageNumber, caption, string(t.DataType), t.Confidence, len(t.Rows),
		)
		if err != nil {
			return "", false, fmt.Errorf("inserting table %s: %w", t.TableID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", false, err
	}
	return id, updated, nil
}

// findExisting locates a prior ingest of the same paper. DOI match wins;
// a title match applies only when the incoming result has no DOI.
func (s *Store) findExisting(ctx context.Context, doi, title string) (string, bool, error) {
	var (
		id    string
		query string
		arg   string
	)
	switch {
	case doi != "":
		query, arg = `SELECT id FROM extractions WHERE doi = ? LIMIT 1`, doi
	case strings.TrimSpace(title) != "":
		query, arg = `SELECT id FROM extractions WHERE doi = '' AND title = ? LIMIT 1`, title
	default:
		return "", false, nil
	}

	err := s.db.QueryRowContext(ctx, query, arg).Scan(&id)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("checking for existing extraction: %w", err)
	}
	return id, true, nil
}

// Get returns the stored result by extraction ID.
func (s *Store) Get(ctx context.Context, id string) (*types.Result, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT result_json FROM extractions WHERE id = ?`, id,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("extraction %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("looking up extraction: %w", err)
	}

	var result types.Result
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, fmt.Errorf("decoding stored result: %w", err)
	}
	return &result, nil
}
