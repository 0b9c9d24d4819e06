package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/scholarboard/hix/internal/researcher"
)

// selectResearcherFields is the column list scanResearcher expects.
const selectResearcherFields = `id, name, orcid, primary_category,
	h_index, i10_index, works_count, cited_by_count, two_yr_citedness,
	topics_json, affiliations_json, counts_by_year_json,
	synced_from, institution_count, likely_bad_merge,
	history_computed, slope`

// UpsertResult describes what UpsertResearcher changed.
type UpsertResult struct {
	Inserted bool
	// HistoryReset is set when changed yearly counts invalidated the stored
	// history of an existing researcher.
	HistoryReset bool
}

// UpsertResearcher stores a fresh snapshot of r. Snapshot fields replace the
// stored ones; source is appended to the researcher's sync sources if not
// already present. The merge-check columns are kept. When the per-year
// counts differ from the stored ones, the researcher's history is deleted
// and marked for recomputation.
func (d *DB) UpsertResearcher(ctx context.Context, r researcher.Researcher, source string) (UpsertResult, error) {
	var res UpsertResult

	topics, err := marshalJSON(r.Topics)
	if err != nil {
		return res, fmt.Errorf("marshaling topics for %s: %w", r.ID, err)
	}
	affiliations, err := marshalJSON(r.Affiliations)
	if err != nil {
		return res, fmt.Errorf("marshaling affiliations for %s: %w", r.ID, err)
	}
	counts, err := marshalJSON(r.CountsByYear)
	if err != nil {
		return res, fmt.Errorf("marshaling counts for %s: %w", r.ID, err)
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	now := timestamp(d.now())

	var storedSources string
	var storedCounts sql.NullString
	err = tx.QueryRowContext(ctx,
		`SELECT synced_from, counts_by_year_json FROM researchers WHERE id = ?`, r.ID,
	).Scan(&storedSources, &storedCounts)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		sources := mergeSources(r.SyncedFrom, source)
		_, err = tx.ExecContext(ctx, `
			INSERT INTO researchers (
				id, name, orcid, primary_category,
				h_index, i10_index, works_count, cited_by_count, two_yr_citedness,
				topics_json, affiliations_json, counts_by_year_json,
				synced_from, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.Name, nullableString(r.ORCID), r.Category,
			r.HIndex, r.I10Index, r.WorksCount, r.CitedByCount, r.TwoYearCitedness,
			topics, affiliations, counts,
			joinSources(sources), now, now,
		)
		if err != nil {
			return res, fmt.Errorf("inserting researcher %s: %w", r.ID, err)
		}
		res.Inserted = true

	case err != nil:
		return res, fmt.Errorf("reading researcher %s: %w", r.ID, err)

	default:
		sources := mergeSources(splitSources(storedSources), source)
		res.HistoryReset = storedCounts.String != counts.String

		_, err = tx.ExecContext(ctx, `
			UPDATE researchers SET
				name = ?, orcid = ?, primary_category = ?,
				h_index = ?, i10_index = ?, works_count = ?, cited_by_count = ?, two_yr_citedness = ?,
				topics_json = ?, affiliations_json = ?, counts_by_year_json = ?,
				synced_from = ?, updated_at = ?
			WHERE id = ?`,
			r.Name, nullableString(r.ORCID), r.Category,
			r.HIndex, r.I10Index, r.WorksCount, r.CitedByCount, r.TwoYearCitedness,
			topics, affiliations, counts,
			joinSources(sources), now, r.ID,
		)
		if err != nil {
			return res, fmt.Errorf("updating researcher %s: %w", r.ID, err)
		}

		if res.HistoryReset {
			if _, err := tx.ExecContext(ctx,
				`UPDATE researchers SET history_computed = 0, slope = 0 WHERE id = ?`, r.ID); err != nil {
				return res, fmt.Errorf("resetting history flag for %s: %w", r.ID, err)
			}
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM h_index_history WHERE researcher_id = ?`, r.ID); err != nil {
				return res, fmt.Errorf("deleting history for %s: %w", r.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return res, fmt.Errorf("committing researcher %s: %w", r.ID, err)
	}
	return res, nil
}

func mergeSources(existing []string, source string) []string {
	if source == "" {
		return existing
	}
	for _, s := range existing {
		if s == source {
			return existing
		}
	}
	return append(existing, source)
}

// GetResearcher returns the researcher with the given ID.
func (d *DB) GetResearcher(ctx context.Context, id string) (*researcher.Researcher, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+selectResearcherFields+` FROM researchers WHERE id = ?`, id)
	r, err := scanResearcher(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("reading researcher %s: %w", id, err)
	}
	return r, nil
}

// ListFilter narrows ListResearchers. Zero values do not filter.
type ListFilter struct {
	Search        string // substring of name, case-insensitive
	Category      string // exact primary category
	WithHistory   bool   // only researchers with computed history
	PositiveSlope bool   // only researchers whose stored slope is > 0
}

// ListResearchers returns every researcher matching f, ordered by ID.
// Callers rank the full result set before paginating.
func (d *DB) ListResearchers(ctx context.Context, f ListFilter) ([]researcher.Researcher, error) {
	query := `SELECT ` + selectResearcherFields + ` FROM researchers WHERE 1=1`
	var args []any

	if f.Search != "" {
		query += " AND name LIKE ?"
		args = append(args, "%"+f.Search+"%")
	}
	if f.Category != "" {
		query += " AND primary_category = ?"
		args = append(args, f.Category)
	}
	if f.WithHistory {
		query += " AND history_computed = 1"
	}
	if f.PositiveSlope {
		query += " AND slope > 0"
	}
	query += " ORDER BY id"

	return d.queryResearchers(ctx, query, args...)
}

// PendingHistory returns up to limit researchers whose history has not been
// computed, highest two-year citedness first.
func (d *DB) PendingHistory(ctx context.Context, limit int) ([]researcher.Researcher, error) {
	query := `SELECT ` + selectResearcherFields + ` FROM researchers
		WHERE history_computed = 0
		ORDER BY two_yr_citedness DESC, id`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return d.queryResearchers(ctx, query, args...)
}

// MergeCandidates returns up to limit researchers whose institution count
// is unknown, most cited first.
func (d *DB) MergeCandidates(ctx context.Context, limit int) ([]researcher.Researcher, error) {
	query := `SELECT ` + selectResearcherFields + ` FROM researchers
		WHERE institution_count IS NULL
		ORDER BY cited_by_count DESC, id`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return d.queryResearchers(ctx, query, args...)
}

// SetInstitutionCount records the merge-check result for a researcher.
func (d *DB) SetInstitutionCount(ctx context.Context, id string, count int, likelyBadMerge bool) error {
	res, err := d.db.ExecContext(ctx,
		`UPDATE researchers SET institution_count = ?, likely_bad_merge = ? WHERE id = ?`,
		count, likelyBadMerge, id)
	if err != nil {
		return fmt.Errorf("updating institution count for %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// LikelyBadMerges returns flagged researchers with the most institutions first.
func (d *DB) LikelyBadMerges(ctx context.Context, limit int) ([]researcher.Researcher, error) {
	query := `SELECT ` + selectResearcherFields + ` FROM researchers
		WHERE likely_bad_merge = 1
		ORDER BY institution_count DESC, id`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return d.queryResearchers(ctx, query, args...)
}

// CategoryCount is the number of researchers in one primary category.
type CategoryCount struct {
	Category    string `json:"category"`
	Researchers int    `json:"researchers"`
}

// Stats holds aggregate figures over all researchers.
type Stats struct {
	TotalResearchers int             `json:"total_researchers"`
	AvgHIndex        float64         `json:"avg_h_index"`
	MaxHIndex        int             `json:"max_h_index"`
	TotalCitations   int64           `json:"total_citations"`
	WithHistory      int             `json:"with_history"`
	LikelyBadMerges  int             `json:"likely_bad_merges"`
	Categories       []CategoryCount `json:"categories"`
}

// Stats computes aggregate figures. An empty database yields zeros.
func (d *DB) Stats(ctx context.Context) (*Stats, error) {
	var s Stats
	err := d.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(AVG(h_index), 0),
			COALESCE(MAX(h_index), 0),
			COALESCE(SUM(cited_by_count), 0),
			COALESCE(SUM(history_computed), 0),
			COALESCE(SUM(likely_bad_merge), 0)
		FROM researchers`,
	).Scan(&s.TotalResearchers, &s.AvgHIndex, &s.MaxHIndex, &s.TotalCitations, &s.WithHistory, &s.LikelyBadMerges)
	if err != nil {
		return nil, fmt.Errorf("computing stats: %w", err)
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT primary_category, COUNT(*) FROM researchers
		GROUP BY primary_category
		ORDER BY COUNT(*) DESC, primary_category`)
	if err != nil {
		return nil, fmt.Errorf("counting categories: %w", err)
	}
	defer rows.Close()

	s.Categories = []CategoryCount{}
	for rows.Next() {
		var c CategoryCount
		if err := rows.Scan(&c.Category, &c.Researchers); err != nil {
			return nil, err
		}
		s.Categories = append(s.Categories, c)
	}
	return &s, rows.Err()
}

// scanner interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanResearcher(s scanner) (*researcher.Researcher, error) {
	var r researcher.Researcher
	var orcid, topics, affiliations, counts sql.NullString
	var sources string
	var institutions sql.NullInt64

	err := s.Scan(
		&r.ID, &r.Name, &orcid, &r.Category,
		&r.HIndex, &r.I10Index, &r.WorksCount, &r.CitedByCount, &r.TwoYearCitedness,
		&topics, &affiliations, &counts,
		&sources, &institutions, &r.LikelyBadMerge,
		&r.HistoryComputed, &r.Slope,
	)
	if err != nil {
		return nil, err
	}

	r.ORCID = orcid.String
	r.SyncedFrom = splitSources(sources)
	if institutions.Valid {
		n := int(institutions.Int64)
		r.InstitutionCount = &n
	}

	if err := unmarshalJSON(topics, &r.Topics); err != nil {
		return nil, fmt.Errorf("parsing topics JSON for %s: %w", r.ID, err)
	}
	if err := unmarshalJSON(affiliations, &r.Affiliations); err != nil {
		return nil, fmt.Errorf("parsing affiliations JSON for %s: %w", r.ID, err)
	}
	if err := unmarshalJSON(counts, &r.CountsByYear); err != nil {
		return nil, fmt.Errorf("parsing counts JSON for %s: %w", r.ID, err)
	}
	return &r, nil
}

func (d *DB) queryResearchers(ctx context.Context, query string, args ...any) ([]researcher.Researcher, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing researchers: %w", err)
	}
	defer rows.Close()

	out := []researcher.Researcher{}
	for rows.Next() {
		r, err := scanResearcher(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// marshalJSON stores empty slices as NULL.
func marshalJSON[T any](v []T) (sql.NullString, error) {
	if len(v) == 0 {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func unmarshalJSON[T any](s sql.NullString, dst *[]T) error {
	if !s.Valid || s.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(s.String), dst)
}
