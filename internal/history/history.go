// Package history reconstructs a researcher's h-index at past points in time
// from per-year citation deltas of their works.
//
// Every computation is a pure function of (works, year). Nothing here caches;
// callers that want caching use internal/cache.
package history

import (
	"sort"

	"github.com/scholarboard/hix/internal/researcher"
)

// MaxWorks is the safety ceiling on works considered per researcher.
const MaxWorks = 2000

// Cap truncates works to MaxWorks. The input slice is not modified.
func Cap(works []researcher.Work) []researcher.Work {
	if len(works) <= MaxWorks {
		return works
	}
	return works[:MaxWorks]
}

// CitationsAsOf returns the citations a work had accrued by the end of year.
//
// A work with no yearly breakdown at all falls back to its lifetime total.
// This overcounts early years for works cited mostly later; it is kept as-is.
func CitationsAsOf(w researcher.Work, year int) int {
	if len(w.CitationsByYear) == 0 {
		return w.CitedByCount
	}
	total := 0
	for _, c := range w.CitationsByYear {
		if c.Year <= year {
			total += c.Citations
		}
	}
	return total
}

// HIndexAt computes the h-index a researcher would have had at the end of year.
// Works with an unknown publication year or published after year are ignored.
func HIndexAt(works []researcher.Work, year int) int {
	counts := make([]int, 0, len(works))
	for _, w := range works {
		if w.PublicationYear == 0 || w.PublicationYear > year {
			continue
		}
		counts = append(counts, CitationsAsOf(w, year))
	}
	return HIndex(counts)
}

// HIndex returns the largest k such that k of the counts are each >= k.
// The counts slice is sorted in place.
func HIndex(counts []int) int {
	sort.Sort(sort.Reverse(sort.IntSlice(counts)))
	h := 0
	for i, c := range counts {
		if c < i+1 {
			break
		}
		h = i + 1
	}
	return h
}

// Reconstruct computes the h-index for every year in [start, end], clamped to
// the supported bounds. Each year is computed independently, so the series is
// not forced to be monotonic.
func Reconstruct(researcherID string, works []researcher.Work, start, end int) []researcher.HistoryPoint {
	start, end = researcher.ClampRange(start, end)
	works = Cap(works)

	points := make([]researcher.HistoryPoint, 0, end-start+1)
	for year := start; year <= end; year++ {
		points = append(points, researcher.HistoryPoint{
			ResearcherID: researcherID,
			Year:         year,
			HIndex:       HIndexAt(works, year),
		})
	}
	return points
}
