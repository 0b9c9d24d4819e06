// Package anomaly flags suspicious patterns in a researcher's per-year output
// and citation series, and likely bad author merges in the catalog.
package anomaly

import (
	"fmt"
	"sort"

	"github.com/scholarboard/hix/internal/researcher"
)

// Thresholds for the individual checks.
const (
	MinYears = 3

	PublicationMedianFloor = 5
	PublicationSpikeFactor = 5

	CitationMedianFloor = 100
	CitationSpikeFactor = 10

	MergeInstitutionThreshold = 10
)

// Kind identifies the type of an anomaly flag.
type Kind string

const (
	PublicationSpike Kind = "publication_spike"
	CitationSpike    Kind = "citation_spike"
	MergeSuspicion   Kind = "merge_suspicion"
)

// Flag is a single anomaly raised for a researcher.
type Flag struct {
	Kind    Kind   `json:"kind"`
	Year    int    `json:"year,omitempty"`
	Value   int    `json:"value"`
	Median  int    `json:"median,omitempty"`
	Message string `json:"message"`
}

// Velocity summarizes a researcher's typical and peak yearly output.
type Velocity struct {
	Years            int `json:"years"`
	MedianWorks      int `json:"median_works"`
	MaxWorks         int `json:"max_works"`
	MaxWorksYear     int `json:"max_works_year"`
	MedianCitations  int `json:"median_citations"`
	MaxCitations     int `json:"max_citations"`
	MaxCitationsYear int `json:"max_citations_year"`
}

// Report is the outcome of Detect. Velocity is nil when the series is too
// short to judge.
type Report struct {
	Velocity *Velocity `json:"velocity,omitempty"`
	Flags    []Flag    `json:"flags"`
}

// Median returns the element at index n/2 of the ascending-sorted values.
// For even n this is the upper of the two middle elements; no averaging is
// done. An empty input yields 0. The input is not modified.
func Median(values []int) int {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]int(nil), values...)
	sort.Ints(sorted)
	return sorted[len(sorted)/2]
}

// Detect evaluates all checks. Series shorter than MinYears produce neither
// velocity figures nor flags. institutionCount comes from catalog metadata and
// may be nil when unknown.
func Detect(counts []researcher.YearCount, institutionCount *int) Report {
	report := Report{Flags: []Flag{}}

	if len(counts) >= MinYears {
		v := velocity(counts)
		report.Velocity = &v

		if v.MedianWorks > PublicationMedianFloor && v.MaxWorks > PublicationSpikeFactor*v.MedianWorks {
			report.Flags = append(report.Flags, Flag{
				Kind:   PublicationSpike,
				Year:   v.MaxWorksYear,
				Value:  v.MaxWorks,
				Median: v.MedianWorks,
				Message: fmt.Sprintf("%d works in %d vs a median of %d per year",
					v.MaxWorks, v.MaxWorksYear, v.MedianWorks),
			})
		}

		if v.MedianCitations > CitationMedianFloor && v.MaxCitations > CitationSpikeFactor*v.MedianCitations {
			report.Flags = append(report.Flags, Flag{
				Kind:   CitationSpike,
				Year:   v.MaxCitationsYear,
				Value:  v.MaxCitations,
				Median: v.MedianCitations,
				Message: fmt.Sprintf("%d citations in %d vs a median of %d per year",
					v.MaxCitations, v.MaxCitationsYear, v.MedianCitations),
			})
		}

		if institutionCount != nil && IsLikelyBadMerge(*institutionCount) {
			report.Flags = append(report.Flags, Flag{
				Kind:    MergeSuspicion,
				Value:   *institutionCount,
				Message: fmt.Sprintf("%d affiliated institutions; profile may merge several people", *institutionCount),
			})
		}
	}

	return report
}

// IsLikelyBadMerge reports whether an institution count crosses the merge threshold.
func IsLikelyBadMerge(institutionCount int) bool {
	return institutionCount >= MergeInstitutionThreshold
}

func velocity(counts []researcher.YearCount) Velocity {
	works := make([]int, len(counts))
	cites := make([]int, len(counts))
	v := Velocity{Years: len(counts), MaxWorks: -1, MaxCitations: -1}

	for i, c := range counts {
		works[i] = c.Works
		cites[i] = c.Citations
		// Earliest year wins ties so the result does not depend on input order.
		if c.Works > v.MaxWorks || (c.Works == v.MaxWorks && c.Year < v.MaxWorksYear) {
			v.MaxWorks, v.MaxWorksYear = c.Works, c.Year
		}
		if c.Citations > v.MaxCitations || (c.Citations == v.MaxCitations && c.Year < v.MaxCitationsYear) {
			v.MaxCitations, v.MaxCitationsYear = c.Citations, c.Year
		}
	}

	v.MedianWorks = Median(works)
	v.MedianCitations = Median(cites)
	return v
}
