// Package analytics serves the read side: ranked listings, rising
// researchers and per-researcher detail reports built from stored snapshots
// and history.
package analytics

import (
	"context"
	"errors"
	"fmt"

	"github.com/scholarboard/hix/internal/anomaly"
	"github.com/scholarboard/hix/internal/cache"
	"github.com/scholarboard/hix/internal/rank"
	"github.com/scholarboard/hix/internal/researcher"
	"github.com/scholarboard/hix/internal/storage"
	"github.com/scholarboard/hix/internal/trend"
)

// Listing defaults.
const (
	DefaultPerPage     = 50
	MaxPerPage         = 500
	DefaultRisingLimit = 100
)

// ErrUnknownMetric is returned when a percentile is requested for a metric
// the ranker does not know.
var ErrUnknownMetric = errors.New("unknown metric")

// Source is the read access the service needs from storage.
type Source interface {
	GetResearcher(ctx context.Context, id string) (*researcher.Researcher, error)
	ListResearchers(ctx context.Context, f storage.ListFilter) ([]researcher.Researcher, error)
	History(ctx context.Context, id string) ([]researcher.HistoryPoint, error)
	Snapshots(ctx context.Context, id string) ([]storage.Snapshot, error)
}

// Options configures a Service.
type Options struct {
	Cache *cache.Store
	// HistoryStart and HistoryEnd are the range stored slopes were
	// estimated over.
	HistoryStart int
	HistoryEnd   int
}

// Service answers read queries.
type Service struct {
	src         Source
	cache       *cache.Store
	storedStart int
	storedEnd   int
}

// New creates a service over src. A nil cache gets a private one.
func New(src Source, opts Options) *Service {
	c := opts.Cache
	if c == nil {
		c = cache.New(cache.DefaultTTL)
	}
	start, end := opts.HistoryStart, opts.HistoryEnd
	if start == 0 && end == 0 {
		start, end = researcher.MinYear, researcher.MaxYear
	}
	start, end = researcher.ClampRange(start, end)
	return &Service{src: src, cache: c, storedStart: start, storedEnd: end}
}

// History returns the stored history of id restricted to [start, end].
func (s *Service) History(ctx context.Context, id string, start, end int) ([]researcher.HistoryPoint, error) {
	start, end = researcher.ClampRange(start, end)
	return s.cache.History(id, start, end, func() ([]researcher.HistoryPoint, error) {
		all, err := s.src.History(ctx, id)
		if err != nil {
			return nil, err
		}
		points := make([]researcher.HistoryPoint, 0, len(all))
		for _, p := range all {
			if p.Year >= start && p.Year <= end {
				points = append(points, p)
			}
		}
		return points, nil
	})
}

// Trend estimates the h-index trend of id over [start, end] from stored
// history. A researcher without history gets a zero trend.
func (s *Service) Trend(ctx context.Context, id string, start, end int) (researcher.TrendResult, error) {
	start, end = researcher.ClampRange(start, end)
	return s.cache.Trend(id, start, end, func() (researcher.TrendResult, error) {
		points, err := s.History(ctx, id, start, end)
		if err != nil {
			return researcher.TrendResult{}, err
		}
		return trend.Estimate(points, start, end), nil
	})
}

// ListOptions selects and orders a page of researchers.
type ListOptions struct {
	Search   string
	Category string
	Sort     []rank.SortKey
	Page     int
	PerPage  int
}

// ListResult is one page of a ranked listing.
type ListResult struct {
	Researchers []researcher.Researcher `json:"researchers"`
	Total       int                     `json:"total"`
	Page        int                     `json:"page"`
	PerPage     int                     `json:"per_page"`
	TotalPages  int                     `json:"total_pages"`
}

// List filters, fully sorts and then paginates researchers.
func (s *Service) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	page := max(opts.Page, 1)
	perPage := opts.PerPage
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	perPage = min(perPage, MaxPerPage)
	keys := opts.Sort
	if len(keys) == 0 {
		keys = rank.DefaultKeys
	}

	rs, err := s.src.ListResearchers(ctx, storage.ListFilter{Search: opts.Search, Category: opts.Category})
	if err != nil {
		return nil, fmt.Errorf("listing researchers: %w", err)
	}
	rank.Sort(rs, keys)

	return &ListResult{
		Researchers: rank.Page(rs, (page-1)*perPage, perPage),
		Total:       len(rs),
		Page:        page,
		PerPage:     perPage,
		TotalPages:  rank.TotalPages(len(rs), perPage),
	}, nil
}

// RisingOptions selects rising researchers.
type RisingOptions struct {
	Start    int
	End      int
	Category string
	Limit    int
}

// risingKeys orders rising researchers.
var risingKeys = []rank.SortKey{
	{Metric: rank.MetricSlope, Dir: rank.Desc},
	{Metric: rank.MetricHIndex, Dir: rank.Desc},
	{Metric: rank.MetricName, Dir: rank.Asc},
}

// Rising returns researchers with computed history and a positive slope,
// steepest first. Over the stored range the stored slope is used; any other
// range re-estimates each slope from stored history.
func (s *Service) Rising(ctx context.Context, opts RisingOptions) ([]researcher.Researcher, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultRisingLimit
	}
	start, end := s.storedStart, s.storedEnd
	if opts.Start != 0 || opts.End != 0 {
		start, end = opts.Start, opts.End
		if start == 0 {
			start = s.storedStart
		}
		if end == 0 {
			end = s.storedEnd
		}
		start, end = researcher.ClampRange(start, end)
	}
	stored := start == s.storedStart && end == s.storedEnd

	rs, err := s.src.ListResearchers(ctx, storage.ListFilter{
		Category:      opts.Category,
		WithHistory:   true,
		PositiveSlope: stored,
	})
	if err != nil {
		return nil, fmt.Errorf("listing researchers: %w", err)
	}

	if !stored {
		rising := rs[:0]
		for _, r := range rs {
			t, err := s.Trend(ctx, r.ID, start, end)
			if err != nil {
				return nil, fmt.Errorf("estimating trend for %s: %w", r.ID, err)
			}
			if t.Slope > 0 {
				r.Slope = t.Slope
				rising = append(rising, r)
			}
		}
		rs = rising
	}

	rank.Sort(rs, risingKeys)
	return rank.Page(rs, 0, limit), nil
}

// DetailOptions configures a detail report.
type DetailOptions struct {
	Start  int
	End    int
	Metric string // percentile metric; defaults to h_index
}

// Detail is everything known about one researcher.
type Detail struct {
	Researcher researcher.Researcher     `json:"researcher"`
	History    []researcher.HistoryPoint `json:"history"`
	Trend      researcher.TrendResult    `json:"trend"`
	Standing   rank.Standing             `json:"standing"`
	Anomalies  anomaly.Report            `json:"anomalies"`
	Snapshots  []storage.Snapshot        `json:"snapshots"`
}

// Detail builds the report for id. The percentile compares the current
// snapshot metric against researchers in the same category.
func (s *Service) Detail(ctx context.Context, id string, opts DetailOptions) (*Detail, error) {
	metric := opts.Metric
	if metric == "" {
		metric = rank.MetricHIndex
	}
	if !rank.IsKnownMetric(metric) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMetric, metric)
	}
	start, end := opts.Start, opts.End
	if start == 0 {
		start = s.storedStart
	}
	if end == 0 {
		end = s.storedEnd
	}

	r, err := s.src.GetResearcher(ctx, id)
	if err != nil {
		return nil, err
	}

	d := &Detail{
		Researcher: *r,
		History:    []researcher.HistoryPoint{},
		Anomalies:  anomaly.Detect(r.CountsByYear, r.InstitutionCount),
	}

	if r.HistoryComputed {
		if d.History, err = s.History(ctx, r.ID, start, end); err != nil {
			return nil, err
		}
	}
	if d.Trend, err = s.Trend(ctx, r.ID, start, end); err != nil {
		return nil, err
	}

	peers, err := s.src.ListResearchers(ctx, storage.ListFilter{Category: r.Category})
	if err != nil {
		return nil, fmt.Errorf("listing peers: %w", err)
	}
	d.Standing = rank.Percentile(r, peers, metric)

	if d.Snapshots, err = s.src.Snapshots(ctx, r.ID); err != nil {
		return nil, err
	}
	return d, nil
}
