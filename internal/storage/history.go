package storage

import (
	"context"
	"fmt"

	"github.com/scholarboard/hix/internal/researcher"
)

// SaveHistory replaces the stored history of one researcher, records its
// slope and marks the history as computed, all in one transaction. Nothing
// is written if the researcher does not exist.
func (d *DB) SaveHistory(ctx context.Context, id string, points []researcher.HistoryPoint, slope float64) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE researchers SET history_computed = 1, slope = ?, updated_at = ? WHERE id = ?`,
		slope, timestamp(d.now()), id)
	if err != nil {
		return fmt.Errorf("updating slope for %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM h_index_history WHERE researcher_id = ?`, id); err != nil {
		return fmt.Errorf("clearing history for %s: %w", id, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO h_index_history (researcher_id, year, h_index) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing history insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range points {
		if _, err := stmt.ExecContext(ctx, id, p.Year, p.HIndex); err != nil {
			return fmt.Errorf("inserting history %s/%d: %w", id, p.Year, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing history for %s: %w", id, err)
	}
	return nil
}

// History returns the stored history of a researcher in ascending year
// order. A researcher without history yields an empty slice.
func (d *DB) History(ctx context.Context, id string) ([]researcher.HistoryPoint, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT year, h_index FROM h_index_history WHERE researcher_id = ? ORDER BY year`, id)
	if err != nil {
		return nil, fmt.Errorf("reading history for %s: %w", id, err)
	}
	defer rows.Close()

	points := []researcher.HistoryPoint{}
	for rows.Next() {
		p := researcher.HistoryPoint{ResearcherID: id}
		if err := rows.Scan(&p.Year, &p.HIndex); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}
