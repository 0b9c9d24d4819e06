package rank

import (
	"strings"

	"github.com/scholarboard/hix/internal/researcher"
)

// Value is a metric value that compares either numerically or lexically.
type Value struct {
	Num     float64
	Str     string
	Lexical bool
}

// Compare returns -1, 0 or 1. Lexical values order before numeric ones so
// that a mixed comparison is still deterministic.
func (v Value) Compare(o Value) int {
	switch {
	case v.Lexical && o.Lexical:
		return strings.Compare(v.Str, o.Str)
	case v.Lexical:
		return -1
	case o.Lexical:
		return 1
	case v.Num < o.Num:
		return -1
	case v.Num > o.Num:
		return 1
	default:
		return 0
	}
}

// Supported metric names.
const (
	MetricHIndex           = "h_index"
	MetricI10Index         = "i10_index"
	MetricWorksCount       = "works_count"
	MetricCitedByCount     = "cited_by_count"
	MetricTwoYearCitedness = "two_yr_citedness"
	MetricSlope            = "slope"
	MetricInstitutions     = "institution_count"
	MetricName             = "name"
	MetricID               = "id"
	MetricCategory         = "category"
	MetricORCID            = "orcid"
)

// numericMetrics maps metric names to accessors for numeric snapshot fields.
var numericMetrics = map[string]func(*researcher.Researcher) float64{
	MetricHIndex:           func(r *researcher.Researcher) float64 { return float64(r.HIndex) },
	MetricI10Index:         func(r *researcher.Researcher) float64 { return float64(r.I10Index) },
	MetricWorksCount:       func(r *researcher.Researcher) float64 { return float64(r.WorksCount) },
	MetricCitedByCount:     func(r *researcher.Researcher) float64 { return float64(r.CitedByCount) },
	MetricTwoYearCitedness: func(r *researcher.Researcher) float64 { return r.TwoYearCitedness },
	MetricSlope:            func(r *researcher.Researcher) float64 { return r.Slope },
	MetricInstitutions: func(r *researcher.Researcher) float64 {
		if r.InstitutionCount == nil {
			return 0
		}
		return float64(*r.InstitutionCount)
	},
}

// lexicalMetrics maps metric names to accessors for string fields.
var lexicalMetrics = map[string]func(*researcher.Researcher) string{
	MetricName:     func(r *researcher.Researcher) string { return r.Name },
	MetricID:       func(r *researcher.Researcher) string { return r.ID },
	MetricCategory: func(r *researcher.Researcher) string { return r.Category },
	MetricORCID:    func(r *researcher.Researcher) string { return r.ORCID },
}

// IsKnownMetric reports whether name is a recognized metric.
func IsKnownMetric(name string) bool {
	_, num := numericMetrics[name]
	_, lex := lexicalMetrics[name]
	return num || lex
}

// IsLexical reports whether name is a string-valued metric.
func IsLexical(name string) bool {
	_, ok := lexicalMetrics[name]
	return ok
}

// MetricValue returns the value of the named metric for r. Unrecognized
// names yield the same zero value for every researcher, so sorting on them
// leaves the order unchanged.
func MetricValue(r *researcher.Researcher, name string) Value {
	if f, ok := numericMetrics[name]; ok {
		return Value{Num: f(r)}
	}
	if f, ok := lexicalMetrics[name]; ok {
		return Value{Str: f(r), Lexical: true}
	}
	return Value{}
}
