// Package storage persists researcher snapshots, reconstructed h-index
// history and sync bookkeeping in a single SQLite database.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a researcher does not exist.
var ErrNotFound = errors.New("researcher not found")

// schemaVersion is recorded in _meta when the schema is created.
const schemaVersion = "1"

// DB wraps a SQLite database connection.
type DB struct {
	db  *sql.DB
	now func() time.Time
}

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db, now: time.Now}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS researchers (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			orcid TEXT,
			primary_category TEXT NOT NULL DEFAULT '',
			h_index INTEGER NOT NULL DEFAULT 0,
			i10_index INTEGER NOT NULL DEFAULT 0,
			works_count INTEGER NOT NULL DEFAULT 0,
			cited_by_count INTEGER NOT NULL DEFAULT 0,
			two_yr_citedness REAL NOT NULL DEFAULT 0,
			topics_json TEXT,
			affiliations_json TEXT,
			counts_by_year_json TEXT,
			synced_from TEXT NOT NULL DEFAULT '',
			institution_count INTEGER,
			likely_bad_merge INTEGER NOT NULL DEFAULT 0,
			history_computed INTEGER NOT NULL DEFAULT 0,
			slope REAL NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_researchers_h_index ON researchers(h_index DESC);
		CREATE INDEX IF NOT EXISTS idx_researchers_cited_by ON researchers(cited_by_count DESC);
		CREATE INDEX IF NOT EXISTS idx_researchers_category ON researchers(primary_category);
		CREATE INDEX IF NOT EXISTS idx_researchers_pending ON researchers(history_computed, two_yr_citedness DESC);

		CREATE TABLE IF NOT EXISTS h_index_history (
			researcher_id TEXT NOT NULL,
			year INTEGER NOT NULL,
			h_index INTEGER NOT NULL,
			PRIMARY KEY (researcher_id, year)
		);

		CREATE TABLE IF NOT EXISTS sync_log (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			sources TEXT NOT NULL DEFAULT '',
			started_at TEXT NOT NULL,
			completed_at TEXT,
			processed INTEGER NOT NULL DEFAULT 0,
			added INTEGER NOT NULL DEFAULT 0,
			errors INTEGER NOT NULL DEFAULT 0,
			notes TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS monthly_snapshots (
			researcher_id TEXT NOT NULL,
			month TEXT NOT NULL,
			h_index INTEGER NOT NULL,
			works_count INTEGER NOT NULL,
			cited_by_count INTEGER NOT NULL,
			PRIMARY KEY (researcher_id, month)
		);

		CREATE TABLE IF NOT EXISTS _meta (
			key TEXT PRIMARY KEY,
			value TEXT
		);
	`
	if _, err := db.Exec(schema); err != nil {
		return err
	}
	_, err := db.Exec(`INSERT OR IGNORE INTO _meta (key, value) VALUES ('schema_version', ?)`, schemaVersion)
	return err
}

// Meta returns a value from the _meta table, or "" if unset.
func (d *DB) Meta(ctx context.Context, key string) (string, error) {
	var v sql.NullString
	err := d.db.QueryRowContext(ctx, "SELECT value FROM _meta WHERE key = ?", key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading meta %s: %w", key, err)
	}
	return v.String, nil
}

// SetMeta stores a value in the _meta table.
func (d *DB) SetMeta(ctx context.Context, key, value string) error {
	_, err := d.db.ExecContext(ctx, `INSERT OR REPLACE INTO _meta (key, value) VALUES (?, ?)`, key, value)
	if err != nil {
		return fmt.Errorf("writing meta %s: %w", key, err)
	}
	return nil
}

// timestamp formats t the way every table stores times.
func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTimestamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// joinSources and splitSources store sync sources as a comma-separated list.
func joinSources(sources []string) string {
	return strings.Join(sources, ",")
}

func splitSources(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
