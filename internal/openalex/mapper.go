package openalex

import (
	"sort"
	"strings"

	"github.com/scholarboard/hix/internal/researcher"
)

// Caps on what a researcher snapshot keeps from an author record.
const (
	maxTopics       = 5
	maxAffiliations = 5
)

// ToResearcher converts an author record into a researcher snapshot.
// Category, sync sources and derived fields are left for the caller.
func ToResearcher(a Author) researcher.Researcher {
	r := researcher.Researcher{
		ID:           NormalizeID(a.ID),
		Name:         a.DisplayName,
		WorksCount:   a.WorksCount,
		CitedByCount: a.CitedByCount,
	}
	if r.Name == "" {
		r.Name = "Unknown"
	}
	if a.ORCID != nil {
		r.ORCID = strings.TrimPrefix(*a.ORCID, "https://orcid.org/")
	}
	if s := a.SummaryStats; s != nil {
		r.HIndex = s.HIndex
		r.I10Index = s.I10Index
		r.TwoYearCitedness = s.TwoYearMeanCitedness
	}

	for i, t := range a.Topics {
		if i == maxTopics {
			break
		}
		r.Topics = append(r.Topics, researcher.Topic{Name: t.DisplayName, Count: t.Count})
	}

	for i, inst := range a.LastKnownInstitutions {
		if i == maxAffiliations {
			break
		}
		r.Affiliations = append(r.Affiliations, researcher.Affiliation{
			Name:    inst.DisplayName,
			Type:    inst.Type,
			Country: inst.CountryCode,
		})
	}

	for _, c := range a.CountsByYear {
		if c.Year < researcher.MinYear {
			continue
		}
		r.CountsByYear = append(r.CountsByYear, researcher.YearCount{
			Year:      c.Year,
			Works:     c.WorksCount,
			Citations: c.CitedByCount,
		})
	}
	sort.Slice(r.CountsByYear, func(i, j int) bool {
		return r.CountsByYear[i].Year < r.CountsByYear[j].Year
	})

	return r
}
