package rank

import (
	"testing"

	"github.com/scholarboard/hix/internal/researcher"
)

func population(category string, values ...int) []researcher.Researcher {
	rs := make([]researcher.Researcher, len(values))
	for i, v := range values {
		rs[i] = researcher.Researcher{ID: string(rune('a' + i)), Category: category, HIndex: v}
	}
	return rs
}

func TestPercentile(t *testing.T) {
	pop := population("Immunology", 10, 20, 30, 40)
	s := Percentile(&pop[2], pop, MetricHIndex)

	if s.Below != 2 || s.PeerTotal != 4 {
		t.Errorf("below/total = %d/%d, want 2/4", s.Below, s.PeerTotal)
	}
	if s.Percentile == nil || *s.Percentile != 50.0 {
		t.Errorf("percentile = %v, want 50.0", s.Percentile)
	}
	if s.Rank == nil || *s.Rank != 2 {
		t.Errorf("rank = %v, want 2", s.Rank)
	}
	if s.Label != "Top 50%" {
		t.Errorf("label = %q, want Top 50%%", s.Label)
	}
}

func TestPercentile_OnlySameCategory(t *testing.T) {
	pop := population("Immunology", 10, 20, 30, 40)
	pop = append(pop, population("Chemistry", 1, 2, 3, 4, 5, 6)...)
	s := Percentile(&pop[3], pop, MetricHIndex)
	if s.PeerTotal != 4 || s.Below != 3 {
		t.Errorf("below/total = %d/%d, want 3/4", s.Below, s.PeerTotal)
	}
	if *s.Percentile != 75.0 || s.Label != "Top 25%" {
		t.Errorf("percentile = %v label %q", *s.Percentile, s.Label)
	}
}

func TestPercentile_TiesShareRank(t *testing.T) {
	pop := population("Other/Interdisciplinary", 5, 8, 8, 8, 12)
	for _, i := range []int{1, 2, 3} {
		s := Percentile(&pop[i], pop, MetricHIndex)
		if *s.Rank != 4 || s.Below != 1 {
			t.Errorf("member %d: rank %d below %d, want rank 4 below 1", i, *s.Rank, s.Below)
		}
	}
}

func TestPercentile_EmptyPeerGroup(t *testing.T) {
	subject := researcher.Researcher{ID: "x", Category: "Dermatology", HIndex: 9}
	s := Percentile(&subject, population("Immunology", 1, 2, 3), MetricHIndex)
	if s.PeerTotal != 0 {
		t.Errorf("peer total = %d, want 0", s.PeerTotal)
	}
	if s.Percentile != nil || s.Rank != nil || s.Label != "" {
		t.Errorf("expected undefined standing, got %+v", s)
	}
}

func TestPercentile_Rounding(t *testing.T) {
	pop := population("Chemistry", 1, 2, 3)
	s := Percentile(&pop[2], pop, MetricHIndex)
	if *s.Percentile != 66.7 {
		t.Errorf("percentile = %v, want 66.7", *s.Percentile)
	}
}

func TestLabel(t *testing.T) {
	tests := []struct {
		pct  float64
		want string
	}{
		{100, "Top 1%"},
		{99, "Top 1%"},
		{98.9, "Top 5%"},
		{95, "Top 5%"},
		{90, "Top 10%"},
		{89.9, "Top 25%"},
		{75, "Top 25%"},
		{50, "Top 50%"},
		{49.9, ""},
		{0, ""},
	}
	for _, tt := range tests {
		if got := Label(tt.pct); got != tt.want {
			t.Errorf("Label(%v) = %q, want %q", tt.pct, got, tt.want)
		}
	}
}
