package batch

import (
	"context"
	"log/slog"
	"time"

	"github.com/scholarboard/hix/internal/history"
	"github.com/scholarboard/hix/internal/logging"
	"github.com/scholarboard/hix/internal/researcher"
	"github.com/scholarboard/hix/internal/trend"
)

// WorkFetcher supplies the works of one researcher.
type WorkFetcher interface {
	FetchWorks(ctx context.Context, authorID string) ([]researcher.Work, error)
}

// HistoryStore lists researchers awaiting history and commits results.
// SaveHistory must write one researcher's points, slope and computed flag
// atomically.
type HistoryStore interface {
	PendingHistory(ctx context.Context, limit int) ([]researcher.Researcher, error)
	SaveHistory(ctx context.Context, id string, points []researcher.HistoryPoint, slope float64) error
}

// HistoryOptions configures a history run.
type HistoryOptions struct {
	Limit   int // max candidates; 0 means all pending
	Workers int
	Start   int
	End     int
	Cache   Invalidator // optional
	Logger  *slog.Logger
}

// HistoryResult is the outcome for one researcher.
type HistoryResult struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Works       int     `json:"works"`
	FinalHIndex int     `json:"final_h_index"`
	Slope       float64 `json:"slope"`
	Error       string  `json:"error,omitempty"`
}

// HistorySummary reports a history run.
type HistorySummary struct {
	Candidates  int             `json:"candidates"`
	Processed   int             `json:"processed"`
	Errors      int             `json:"errors"`
	Interrupted bool            `json:"interrupted"`
	StartYear   int             `json:"start_year"`
	EndYear     int             `json:"end_year"`
	Duration    time.Duration   `json:"duration_ns"`
	Results     []HistoryResult `json:"results"`
}

// RunHistory reconstructs history and slope for pending researchers, highest
// two-year citedness first. Each researcher is fetched, computed and
// committed on its own; results of different researchers never share a
// transaction.
func RunHistory(ctx context.Context, fetcher WorkFetcher, store HistoryStore, opts HistoryOptions) (HistorySummary, error) {
	began := time.Now()
	log := logging.Module(opts.Logger, "batch.history")
	start, end := researcher.ClampRange(opts.Start, opts.End)

	candidates, err := store.PendingHistory(ctx, opts.Limit)
	if err != nil {
		return HistorySummary{}, err
	}

	log.Info("history run starting", "candidates", len(candidates), "workers", opts.Workers, "start", start, "end", end)

	var c counters
	results := newResultSet[HistoryResult](len(candidates))

	interrupted := forEach(ctx, len(candidates), opts.Workers, func(i int) {
		r := candidates[i]
		res := HistoryResult{ID: r.ID, Name: r.Name}

		works, err := fetcher.FetchWorks(ctx, r.ID)
		if err != nil {
			if isCancellation(ctx, err) {
				return
			}
			c.errors.Add(1)
			res.Error = err.Error()
			results.set(i, res)
			log.Warn("fetching works failed", "id", r.ID, "error", err)
			return
		}

		points := history.Reconstruct(r.ID, works, start, end)
		slope := trend.Slope(researcher.SeriesOf(points), start, end)

		if err := store.SaveHistory(ctx, r.ID, points, slope); err != nil {
			if isCancellation(ctx, err) {
				return
			}
			c.errors.Add(1)
			res.Error = err.Error()
			results.set(i, res)
			log.Warn("saving history failed", "id", r.ID, "error", err)
			return
		}

		if opts.Cache != nil {
			opts.Cache.Invalidate(r.ID)
		}

		res.Works = len(works)
		res.Slope = slope
		if len(points) > 0 {
			res.FinalHIndex = points[len(points)-1].HIndex
		}
		results.set(i, res)

		n := c.processed.Add(1)
		log.Debug("history saved", "id", r.ID, "works", len(works), "slope", slope)
		if n%50 == 0 {
			log.Info("history progress", "processed", n, "of", len(candidates))
		}
	})

	summary := HistorySummary{
		Candidates:  len(candidates),
		Processed:   int(c.processed.Load()),
		Errors:      int(c.errors.Load()),
		Interrupted: interrupted,
		StartYear:   start,
		EndYear:     end,
		Duration:    time.Since(began),
		Results:     results.collect(),
	}

	log.Info("history run finished",
		"processed", summary.Processed,
		"errors", summary.Errors,
		"interrupted", summary.Interrupted,
		"duration", summary.Duration)

	return summary, nil
}
