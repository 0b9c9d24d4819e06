package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/scholarboard/hix/internal/researcher"
)

// SyncRun is one row of the sync log.
type SyncRun struct {
	ID          string     `json:"id"`
	Kind        string     `json:"kind"`
	Sources     []string   `json:"sources,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Processed   int        `json:"processed"`
	Added       int        `json:"added"`
	Errors      int        `json:"errors"`
	Notes       string     `json:"notes,omitempty"`
}

// StartSync records the start of a batch run and returns its ID.
func (d *DB) StartSync(ctx context.Context, kind string, sources []string) (string, error) {
	id := uuid.NewString()
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO sync_log (id, kind, sources, started_at) VALUES (?, ?, ?, ?)`,
		id, kind, joinSources(sources), timestamp(d.now()))
	if err != nil {
		return "", fmt.Errorf("starting sync log: %w", err)
	}
	return id, nil
}

// FinishSync completes a sync log row and records the time as last_sync.
func (d *DB) FinishSync(ctx context.Context, id string, processed, added, errs int, notes string) error {
	now := timestamp(d.now())
	res, err := d.db.ExecContext(ctx, `
		UPDATE sync_log SET completed_at = ?, processed = ?, added = ?, errors = ?, notes = ?
		WHERE id = ?`,
		now, processed, added, errs, notes, id)
	if err != nil {
		return fmt.Errorf("finishing sync log %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("sync log %s not found", id)
	}
	return d.SetMeta(ctx, "last_sync", now)
}

// SyncRuns returns the most recent runs first.
func (d *DB) SyncRuns(ctx context.Context, limit int) ([]SyncRun, error) {
	query := `SELECT id, kind, sources, started_at, completed_at, processed, added, errors, notes
		FROM sync_log ORDER BY started_at DESC, id`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing sync runs: %w", err)
	}
	defer rows.Close()

	runs := []SyncRun{}
	for rows.Next() {
		var run SyncRun
		var sources, started string
		var completed sql.NullString
		if err := rows.Scan(&run.ID, &run.Kind, &sources, &started, &completed,
			&run.Processed, &run.Added, &run.Errors, &run.Notes); err != nil {
			return nil, err
		}
		run.Sources = splitSources(sources)
		run.StartedAt = parseTimestamp(started)
		if completed.Valid {
			t := parseTimestamp(completed.String)
			run.CompletedAt = &t
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Snapshot is a researcher's headline metrics in one calendar month.
type Snapshot struct {
	Month        string `json:"month"`
	HIndex       int    `json:"h_index"`
	WorksCount   int    `json:"works_count"`
	CitedByCount int    `json:"cited_by_count"`
}

// RecordSnapshot stores r's current metrics for the month containing at.
// A later snapshot in the same month replaces the earlier one.
func (d *DB) RecordSnapshot(ctx context.Context, r researcher.Researcher, at time.Time) error {
	_, err := d.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO monthly_snapshots (researcher_id, month, h_index, works_count, cited_by_count)
		VALUES (?, ?, ?, ?, ?)`,
		r.ID, at.UTC().Format("2006-01"), r.HIndex, r.WorksCount, r.CitedByCount)
	if err != nil {
		return fmt.Errorf("recording snapshot for %s: %w", r.ID, err)
	}
	return nil
}

// Snapshots returns a researcher's monthly snapshots, oldest first.
func (d *DB) Snapshots(ctx context.Context, id string) ([]Snapshot, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT month, h_index, works_count, cited_by_count FROM monthly_snapshots
		WHERE researcher_id = ? ORDER BY month`, id)
	if err != nil {
		return nil, fmt.Errorf("reading snapshots for %s: %w", id, err)
	}
	defer rows.Close()

	out := []Snapshot{}
	for rows.Next() {
		var s Snapshot
		if err := rows.Scan(&s.Month, &s.HIndex, &s.WorksCount, &s.CitedByCount); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
