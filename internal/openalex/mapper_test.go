package openalex

import (
	"encoding/json"
	"testing"
)

const authorJSON = `{
	"id": "https://openalex.org/A5000000001",
	"display_name": "Lena Hartmann",
	"orcid": "https://orcid.org/0000-0002-1825-0097",
	"works_count": 118,
	"cited_by_count": 5120,
	"summary_stats": {"2yr_mean_citedness": 4.75, "h_index": 31, "i10_index": 70},
	"topics": [
		{"display_name": "T-cell Exhaustion", "count": 30},
		{"display_name": "Cytokine Signaling", "count": 22},
		{"display_name": "Tumor Microenvironment", "count": 15},
		{"display_name": "Vaccine Design", "count": 9},
		{"display_name": "Flow Cytometry", "count": 7},
		{"display_name": "Sixth Topic", "count": 2}
	],
	"last_known_institutions": [
		{"display_name": "Harvard Medical School", "type": "education", "country_code": "US"}
	],
	"counts_by_year": [
		{"year": 2023, "works_count": 12, "cited_by_count": 800},
		{"year": 2016, "works_count": 4, "cited_by_count": 90},
		{"year": 2012, "works_count": 1, "cited_by_count": 10}
	]
}`

func TestToResearcher(t *testing.T) {
	var a Author
	if err := json.Unmarshal([]byte(authorJSON), &a); err != nil {
		t.Fatal(err)
	}
	r := ToResearcher(a)

	if r.ID != "A5000000001" || r.Name != "Lena Hartmann" {
		t.Errorf("identity = %q %q", r.ID, r.Name)
	}
	if r.ORCID != "0000-0002-1825-0097" {
		t.Errorf("ORCID = %q", r.ORCID)
	}
	if r.HIndex != 31 || r.I10Index != 70 || r.TwoYearCitedness != 4.75 {
		t.Errorf("summary stats = %d %d %v", r.HIndex, r.I10Index, r.TwoYearCitedness)
	}
	if r.WorksCount != 118 || r.CitedByCount != 5120 {
		t.Errorf("counts = %d %d", r.WorksCount, r.CitedByCount)
	}
	if len(r.Topics) != 5 || r.Topics[0].Name != "T-cell Exhaustion" {
		t.Errorf("topics = %+v", r.Topics)
	}
	if len(r.Affiliations) != 1 || r.Affiliations[0].Country != "US" {
		t.Errorf("affiliations = %+v", r.Affiliations)
	}
	if len(r.CountsByYear) != 2 || r.CountsByYear[0].Year != 2016 || r.CountsByYear[1].Citations != 800 {
		t.Errorf("counts by year = %+v", r.CountsByYear)
	}
}

func TestToResearcher_Sparse(t *testing.T) {
	r := ToResearcher(Author{ID: "A1"})
	if r.Name != "Unknown" || r.HIndex != 0 || r.ORCID != "" || r.Topics != nil {
		t.Errorf("sparse author = %+v", r)
	}
}
