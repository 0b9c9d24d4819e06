package batch

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/scholarboard/hix/internal/anomaly"
	"github.com/scholarboard/hix/internal/logging"
	"github.com/scholarboard/hix/internal/researcher"
)

// InstitutionCounter reports how many institutions the catalog attributes
// to an author.
type InstitutionCounter interface {
	InstitutionCount(ctx context.Context, authorID string) (int, error)
}

// MergeStore lists researchers with an unknown institution count and
// records the check result.
type MergeStore interface {
	MergeCandidates(ctx context.Context, limit int) ([]researcher.Researcher, error)
	SetInstitutionCount(ctx context.Context, id string, count int, likelyBadMerge bool) error
}

// MergeOptions configures a merge check.
type MergeOptions struct {
	Limit   int
	Workers int
	Logger  *slog.Logger
}

// Suspect is a researcher flagged as a likely bad merge.
type Suspect struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Institutions int    `json:"institutions"`
	HIndex       int    `json:"h_index"`
}

// MergeSummary reports a merge check.
type MergeSummary struct {
	Candidates  int           `json:"candidates"`
	Processed   int           `json:"processed"`
	Flagged     int           `json:"flagged"`
	Errors      int           `json:"errors"`
	Interrupted bool          `json:"interrupted"`
	Duration    time.Duration `json:"duration_ns"`
	Suspects    []Suspect     `json:"suspects"`
}

// RunMerges fetches the institution count of every researcher whose count
// is unknown and flags likely bad merges. Suspects are ordered by
// institution count, highest first.
func RunMerges(ctx context.Context, counter InstitutionCounter, store MergeStore, opts MergeOptions) (MergeSummary, error) {
	began := time.Now()
	log := logging.Module(opts.Logger, "batch.merges")

	candidates, err := store.MergeCandidates(ctx, opts.Limit)
	if err != nil {
		return MergeSummary{}, err
	}
	log.Info("merge check starting", "candidates", len(candidates))

	var c counters
	suspects := newResultSet[Suspect](len(candidates))

	interrupted := forEach(ctx, len(candidates), opts.Workers, func(i int) {
		r := candidates[i]

		n, err := counter.InstitutionCount(ctx, r.ID)
		if err != nil {
			if !isCancellation(ctx, err) {
				c.errors.Add(1)
				log.Warn("fetching institutions failed", "id", r.ID, "error", err)
			}
			return
		}

		bad := anomaly.IsLikelyBadMerge(n)
		if err := store.SetInstitutionCount(ctx, r.ID, n, bad); err != nil {
			if !isCancellation(ctx, err) {
				c.errors.Add(1)
				log.Warn("saving institution count failed", "id", r.ID, "error", err)
			}
			return
		}
		c.processed.Add(1)

		if bad {
			suspects.set(i, Suspect{ID: r.ID, Name: r.Name, Institutions: n, HIndex: r.HIndex})
			log.Debug("likely bad merge", "id", r.ID, "institutions", n)
		}
	})

	flagged := suspects.collect()
	sort.SliceStable(flagged, func(i, j int) bool {
		return flagged[i].Institutions > flagged[j].Institutions
	})

	summary := MergeSummary{
		Candidates:  len(candidates),
		Processed:   int(c.processed.Load()),
		Flagged:     len(flagged),
		Errors:      int(c.errors.Load()),
		Interrupted: interrupted,
		Duration:    time.Since(began),
		Suspects:    flagged,
	}

	log.Info("merge check finished",
		"processed", summary.Processed,
		"flagged", summary.Flagged,
		"errors", summary.Errors,
		"interrupted", summary.Interrupted)

	return summary, nil
}
