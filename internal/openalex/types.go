package openalex

// Wire types for the subset of the OpenAlex API that hix reads.

type listMeta struct {
	Count      int     `json:"count"`
	PerPage    int     `json:"per_page"`
	NextCursor *string `json:"next_cursor"`
}

type worksResponse struct {
	Meta    listMeta `json:"meta"`
	Results []work   `json:"results"`
}

type work struct {
	ID              string        `json:"id"`
	PublicationYear *int          `json:"publication_year"`
	CitedByCount    int           `json:"cited_by_count"`
	CountsByYear    []yearCounted `json:"counts_by_year"`
}

type yearCounted struct {
	Year         int `json:"year"`
	WorksCount   int `json:"works_count"`
	CitedByCount int `json:"cited_by_count"`
}

// AuthorsPage is one cursor page of authors.
type AuthorsPage struct {
	Authors    []Author
	Count      int
	NextCursor string
}

type authorsResponse struct {
	Meta    listMeta `json:"meta"`
	Results []Author `json:"results"`
}

// Author is an OpenAlex author record as returned by /authors.
type Author struct {
	ID                    string        `json:"id"`
	DisplayName           string        `json:"display_name"`
	ORCID                 *string       `json:"orcid"`
	WorksCount            int           `json:"works_count"`
	CitedByCount          int           `json:"cited_by_count"`
	SummaryStats          *summaryStats `json:"summary_stats"`
	Topics                []topic       `json:"topics"`
	LastKnownInstitutions []institution `json:"last_known_institutions"`
	CountsByYear          []yearCounted `json:"counts_by_year"`
}

type summaryStats struct {
	TwoYearMeanCitedness float64 `json:"2yr_mean_citedness"`
	HIndex               int     `json:"h_index"`
	I10Index             int     `json:"i10_index"`
}

type topic struct {
	DisplayName string `json:"display_name"`
	Count       int    `json:"count"`
}

type institution struct {
	DisplayName string `json:"display_name"`
	Type        string `json:"type"`
	CountryCode string `json:"country_code"`
}
