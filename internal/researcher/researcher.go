// Package researcher defines the tracked entities, their works, and the
// derived history and trend values computed from them.
package researcher

// Supported history bounds. Requests outside are clamped, not rejected.
const (
	MinYear = 2015
	MaxYear = 2025
)

// YearCitations is the number of citations a work received in one year.
type YearCitations struct {
	Year      int `json:"year"`
	Citations int `json:"cited_by_count"`
}

// Work is one publication record owned by a single researcher.
type Work struct {
	ID              string          `json:"id,omitempty"`
	PublicationYear int             `json:"publication_year"`         // 0 when unknown
	CitationsByYear []YearCitations `json:"counts_by_year,omitempty"` // sparse
	CitedByCount    int             `json:"cited_by_count"`           // lifetime total
}

// YearCount is a researcher's output and citations within one calendar year.
type YearCount struct {
	Year      int `json:"year"`
	Works     int `json:"works"`
	Citations int `json:"cited"`
}

// Topic is a research topic attached to a researcher by the catalog.
type Topic struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Affiliation is an institution a researcher is affiliated with.
type Affiliation struct {
	Name    string `json:"name"`
	Type    string `json:"type,omitempty"`
	Country string `json:"country,omitempty"`
}

// Researcher is a tracked author with snapshot metrics. Snapshot fields are
// replaced wholesale on every sync; Slope and HistoryComputed are derived.
type Researcher struct {
	ID               string        `json:"id"`
	Name             string        `json:"name"`
	ORCID            string        `json:"orcid,omitempty"`
	Category         string        `json:"category"`
	HIndex           int           `json:"h_index"`
	I10Index         int           `json:"i10_index"`
	WorksCount       int           `json:"works_count"`
	CitedByCount     int           `json:"cited_by_count"`
	TwoYearCitedness float64       `json:"two_yr_citedness"`
	Topics           []Topic       `json:"topics,omitempty"`
	Affiliations     []Affiliation `json:"affiliations,omitempty"`
	CountsByYear     []YearCount   `json:"counts_by_year,omitempty"`
	SyncedFrom       []string      `json:"synced_from,omitempty"`
	InstitutionCount *int          `json:"institution_count,omitempty"`
	LikelyBadMerge   bool          `json:"likely_bad_merge,omitempty"`
	Slope            float64       `json:"slope"`
	HistoryComputed  bool          `json:"history_computed"`
}

// HistoryPoint is the reconstructed h-index of a researcher at the end of a year.
type HistoryPoint struct {
	ResearcherID string `json:"researcher_id,omitempty"`
	Year         int    `json:"year"`
	HIndex       int    `json:"h_index"`
}

// TrendResult is a linear trend over an inclusive year range.
type TrendResult struct {
	StartYear  int     `json:"start_year"`
	EndYear    int     `json:"end_year"`
	Slope      float64 `json:"slope"`
	StartValue float64 `json:"start_value"`
	EndValue   float64 `json:"end_value"`
}

// ClampRange restricts [start, end] to [MinYear, MaxYear]. An inverted range
// is swapped first.
func ClampRange(start, end int) (int, int) {
	if start > end {
		start, end = end, start
	}
	return clampYear(start), clampYear(end)
}

func clampYear(y int) int {
	if y < MinYear {
		return MinYear
	}
	if y > MaxYear {
		return MaxYear
	}
	return y
}

// SeriesOf converts history points to a year-keyed series.
func SeriesOf(points []HistoryPoint) map[int]float64 {
	series := make(map[int]float64, len(points))
	for _, p := range points {
		series[p.Year] = float64(p.HIndex)
	}
	return series
}

// HasSyncSource reports whether key is already recorded in SyncedFrom.
func (r *Researcher) HasSyncSource(key string) bool {
	for _, s := range r.SyncedFrom {
		if s == key {
			return true
		}
	}
	return false
}
