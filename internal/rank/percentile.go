package rank

import (
	"math"

	"github.com/scholarboard/hix/internal/researcher"
)

// Standing is a researcher's position among the peers in their category.
// Percentile and Rank are nil when the category has no members.
type Standing struct {
	Metric     string   `json:"metric"`
	Category   string   `json:"category"`
	Below      int      `json:"below"`
	PeerTotal  int      `json:"peer_total"`
	Percentile *float64 `json:"percentile"`
	Rank       *int     `json:"rank"`
	Label      string   `json:"label,omitempty"`
}

// labelThresholds is checked from the highest threshold down.
var labelThresholds = []struct {
	min   float64
	label string
}{
	{99, "Top 1%"},
	{95, "Top 5%"},
	{90, "Top 10%"},
	{75, "Top 25%"},
	{50, "Top 50%"},
}

// Label returns the bucket label for a percentile, or "" below 50.
func Label(percentile float64) string {
	for _, t := range labelThresholds {
		if percentile >= t.min {
			return t.label
		}
	}
	return ""
}

// Percentile computes subject's standing on metric among the researchers in
// population that share its category. Peers tied with the subject share its
// rank, since rank derives from the count strictly below.
func Percentile(subject *researcher.Researcher, population []researcher.Researcher, metric string) Standing {
	s := Standing{Metric: metric, Category: subject.Category}
	value := MetricValue(subject, metric)

	for i := range population {
		peer := &population[i]
		if peer.Category != subject.Category {
			continue
		}
		s.PeerTotal++
		if MetricValue(peer, metric).Compare(value) < 0 {
			s.Below++
		}
	}

	if s.PeerTotal == 0 {
		return s
	}

	pct := math.Round(1000*float64(s.Below)/float64(s.PeerTotal)) / 10
	rank := s.PeerTotal - s.Below
	s.Percentile = &pct
	s.Rank = &rank
	s.Label = Label(pct)
	return s
}
