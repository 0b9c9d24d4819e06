package batch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/scholarboard/hix/internal/category"
	"github.com/scholarboard/hix/internal/logging"
	"github.com/scholarboard/hix/internal/openalex"
	"github.com/scholarboard/hix/internal/researcher"
	"github.com/scholarboard/hix/internal/storage"
)

// SyncKind is the sync log kind written by RunSync.
const SyncKind = "institutions"

// AuthorSource pages the authors of an institution.
type AuthorSource interface {
	FetchAuthors(ctx context.Context, rorID, cursor string, perPage int) (*openalex.AuthorsPage, error)
}

// SyncStore persists snapshots and the sync log.
type SyncStore interface {
	UpsertResearcher(ctx context.Context, r researcher.Researcher, source string) (storage.UpsertResult, error)
	RecordSnapshot(ctx context.Context, r researcher.Researcher, at time.Time) error
	StartSync(ctx context.Context, kind string, sources []string) (string, error)
	FinishSync(ctx context.Context, id string, processed, added, errs int, notes string) error
}

// Target is an institution to sync.
type Target struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	ROR  string `json:"ror"`
}

// SyncOptions configures an institution sync.
type SyncOptions struct {
	Limit  int // max authors per institution; 0 means all
	Cache  Invalidator
	Logger *slog.Logger
	Now    func() time.Time
}

// InstitutionResult reports the sync of one institution.
type InstitutionResult struct {
	Target
	Processed int    `json:"processed"`
	Added     int    `json:"added"`
	Reset     int    `json:"history_reset"`
	Errors    int    `json:"errors"`
	Error     string `json:"error,omitempty"`
}

// SyncSummary reports an institution sync.
type SyncSummary struct {
	RunID        string              `json:"run_id"`
	Processed    int                 `json:"processed"`
	Added        int                 `json:"added"`
	Errors       int                 `json:"errors"`
	Interrupted  bool                `json:"interrupted"`
	Duration     time.Duration       `json:"duration_ns"`
	Institutions []InstitutionResult `json:"institutions"`
}

// RunSync pages the authors of every target, stores a categorized snapshot
// of each and records the run in the sync log. A researcher found at
// several institutions is stored once with every institution key in its
// sync sources. A failed page ends that institution and the run moves on
// to the next one.
func RunSync(ctx context.Context, src AuthorSource, store SyncStore, targets []Target, opts SyncOptions) (SyncSummary, error) {
	began := time.Now()
	log := logging.Module(opts.Logger, "batch.sync")
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	keys := make([]string, len(targets))
	for i, t := range targets {
		keys[i] = t.Key
	}

	runID, err := store.StartSync(ctx, SyncKind, keys)
	if err != nil {
		return SyncSummary{}, err
	}
	summary := SyncSummary{RunID: runID}

	for _, t := range targets {
		if ctx.Err() != nil {
			summary.Interrupted = true
			break
		}

		res := syncInstitution(ctx, src, store, t, opts, now, log)
		summary.Processed += res.Processed
		summary.Added += res.Added
		summary.Errors += res.Errors
		summary.Institutions = append(summary.Institutions, res)
	}
	if ctx.Err() != nil {
		summary.Interrupted = true
	}
	summary.Duration = time.Since(began)

	notes := syncNotes(summary)
	if err := store.FinishSync(context.WithoutCancel(ctx), runID, summary.Processed, summary.Added, summary.Errors, notes); err != nil {
		return summary, err
	}

	log.Info("sync finished",
		"run", runID,
		"processed", summary.Processed,
		"added", summary.Added,
		"errors", summary.Errors,
		"interrupted", summary.Interrupted)

	return summary, nil
}

func syncInstitution(ctx context.Context, src AuthorSource, store SyncStore, t Target, opts SyncOptions, now func() time.Time, log *slog.Logger) InstitutionResult {
	res := InstitutionResult{Target: t}
	log = log.With("institution", t.Key)
	log.Info("syncing institution", "name", t.Name, "ror", t.ROR)

	perPage := openalex.DefaultAuthorsPerPage
	if opts.Limit > 0 && opts.Limit < perPage {
		perPage = opts.Limit
	}

	cursor := "*"
	for cursor != "" {
		if opts.Limit > 0 && res.Processed+res.Errors >= opts.Limit {
			break
		}

		page, err := src.FetchAuthors(ctx, t.ROR, cursor, perPage)
		if err != nil {
			if !isCancellation(ctx, err) {
				res.Errors++
				res.Error = err.Error()
				log.Warn("fetching authors failed", "error", err)
			}
			return res
		}

		for _, a := range page.Authors {
			if ctx.Err() != nil {
				return res
			}
			if opts.Limit > 0 && res.Processed+res.Errors >= opts.Limit {
				break
			}

			r := openalex.ToResearcher(a)
			r.Category = category.Primary(r.Topics)

			up, err := store.UpsertResearcher(ctx, r, t.Key)
			if err != nil {
				if isCancellation(ctx, err) {
					return res
				}
				res.Errors++
				log.Warn("storing researcher failed", "id", r.ID, "error", err)
				continue
			}
			if up.Inserted {
				res.Added++
			}
			if up.HistoryReset {
				res.Reset++
				if opts.Cache != nil {
					opts.Cache.Invalidate(r.ID)
				}
			}
			if err := store.RecordSnapshot(ctx, r, now()); err != nil && !isCancellation(ctx, err) {
				log.Warn("recording snapshot failed", "id", r.ID, "error", err)
			}
			res.Processed++
		}

		log.Debug("page stored", "processed", res.Processed, "total", page.Count)
		cursor = page.NextCursor
	}

	log.Info("institution synced", "processed", res.Processed, "added", res.Added, "errors", res.Errors)
	return res
}

func syncNotes(s SyncSummary) string {
	parts := make([]string, 0, len(s.Institutions)+1)
	for _, r := range s.Institutions {
		parts = append(parts, fmt.Sprintf("%s: %d", r.Key, r.Processed))
	}
	if s.Interrupted {
		parts = append(parts, "interrupted")
	}
	return strings.Join(parts, ", ")
}
