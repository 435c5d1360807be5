// Package catalog records every exported feature specification in a
// local SQLite database so agents can see which features were already
// replicated, where their Markdown lives and which tables they touch.
package catalog

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/HendryAvila/feature-replicator/internal/model"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// DBFile is the catalog database file name inside the data directory.
const DBFile = "catalog.db"

// DefaultListLimit is used when List is called with a non-positive limit.
const DefaultListLimit = 20

// Entry is one recorded export.
type Entry struct {
	ID          string    `json:"id"`
	FeatureID   string    `json:"feature_id"`
	Name        string    `json:"name"`
	Language    string    `json:"language,omitempty"`
	FilePath    string    `json:"file_path"`
	DataSources int       `json:"data_sources"`
	Tables      []string  `json:"tables"`
	ExportedAt  time.Time `json:"exported_at"`
}

// Config holds catalog store configuration.
type Config struct {
	DataDir string
}

// Store is the SQLite-backed export catalog.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// New opens (or creates) the catalog database under cfg.DataDir.
func New(cfg Config) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("catalog: create data dir: %w", err)
	}

	db, err := openDB("sqlite", filepath.Join(cfg.DataDir, DBFile))
	if err != nil {
		return nil, fmt.Errorf("catalog: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("catalog: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog: migration: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS exports (
			id           TEXT PRIMARY KEY,
			feature_id   TEXT NOT NULL,
			name         TEXT NOT NULL,
			language     TEXT NOT NULL DEFAULT '',
			file_path    TEXT NOT NULL,
			data_sources INTEGER NOT NULL DEFAULT 0,
			tables       TEXT NOT NULL DEFAULT '',
			exported_at  TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_exports_feature ON exports(feature_id);
		CREATE INDEX IF NOT EXISTS idx_exports_time ON exports(exported_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record stores one export of spec written to filePath.
func (s *Store) Record(spec *model.FeatureSpec, filePath string) (*Entry, error) {
	e := &Entry{
		ID:          uuid.NewString(),
		FeatureID:   spec.FeatureID,
		Name:        spec.Name,
		Language:    spec.TechStack.NormalizedLanguage(),
		FilePath:    filePath,
		DataSources: len(spec.DataSources),
		Tables:      spec.Tables(),
		ExportedAt:  s.now().UTC().Truncate(time.Second),
	}
	if e.Tables == nil {
		e.Tables = []string{}
	}

	_, err := s.db.Exec(
		`INSERT INTO exports (id, feature_id, name, language, file_path, data_sources, tables, exported_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.FeatureID, e.Name, e.Language, e.FilePath, e.DataSources,
		strings.Join(e.Tables, ","), e.ExportedAt.Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("catalog: record export: %w", err)
	}
	return e, nil
}

// List returns recorded exports, newest first. A non-empty featureID
// restricts the result to that feature.
func (s *Store) List(featureID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	query := `SELECT id, feature_id, name, language, file_path, data_sources, tables, exported_at
		FROM exports`
	args := []any{}
	if featureID != "" {
		query += ` WHERE feature_id = ?`
		args = append(args, featureID)
	}
	query += ` ORDER BY exported_at DESC, rowid DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("catalog: list exports: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			e          Entry
			tables     string
			exportedAt string
		)
		if err := rows.Scan(&e.ID, &e.FeatureID, &e.Name, &e.Language, &e.FilePath,
			&e.DataSources, &tables, &exportedAt); err != nil {
			return nil, fmt.Errorf("catalog: scan export: %w", err)
		}
		e.Tables = splitTables(tables)
		if t, err := time.Parse(time.RFC3339, exportedAt); err == nil {
			e.ExportedAt = t
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: iterate exports: %w", err)
	}
	return entries, nil
}

// Count returns the number of recorded exports. A non-empty featureID
// counts only that feature.
func (s *Store) Count(featureID string) (int, error) {
	query := `SELECT COUNT(*) FROM exports`
	args := []any{}
	if featureID != "" {
		query += ` WHERE feature_id = ?`
		args = append(args, featureID)
	}
	var n int
	if err := s.db.QueryRow(query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("catalog: count exports: %w", err)
	}
	return n, nil
}

func splitTables(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}
