package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/scholarboard/hix/internal/researcher"
)

func TestHistory_LoadsOnce(t *testing.T) {
	s := New(time.Minute)
	calls := 0
	load := func() ([]researcher.HistoryPoint, error) {
		calls++
		return []researcher.HistoryPoint{{Year: 2020, HIndex: 4}}, nil
	}

	for i := 0; i < 3; i++ {
		got, err := s.History("A1", 2015, 2025, load)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 1 || got[0].HIndex != 4 {
			t.Errorf("History() = %v", got)
		}
	}
	if calls != 1 {
		t.Errorf("load called %d times, want 1", calls)
	}
}

func TestHistory_EquivalentRangesShareEntry(t *testing.T) {
	s := New(time.Minute)
	calls := 0
	load := func() ([]researcher.HistoryPoint, error) {
		calls++
		return nil, nil
	}

	// Both clamp to 2015-2025.
	s.History("A1", 1990, 2040, load)
	s.History("A1", 2040, 1990, load)
	if calls != 1 {
		t.Errorf("load called %d times, want 1", calls)
	}
}

func TestHistory_ErrorsNotCached(t *testing.T) {
	s := New(time.Minute)
	boom := errors.New("boom")
	if _, err := s.History("A1", 2015, 2025, func() ([]researcher.HistoryPoint, error) { return nil, boom }); !errors.Is(err, boom) {
		t.Fatalf("error = %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("error result was cached")
	}
}

func TestTrend_KeyedByRange(t *testing.T) {
	s := New(time.Minute)
	calls := 0
	load := func(slope float64) func() (researcher.TrendResult, error) {
		return func() (researcher.TrendResult, error) {
			calls++
			return researcher.TrendResult{Slope: slope}, nil
		}
	}

	a, _ := s.Trend("A1", 2015, 2025, load(1))
	b, _ := s.Trend("A1", 2020, 2025, load(2))
	c, _ := s.Trend("A1", 2015, 2025, load(3))
	if a.Slope != 1 || b.Slope != 2 || c.Slope != 1 || calls != 2 {
		t.Errorf("slopes %v %v %v, calls %d", a.Slope, b.Slope, c.Slope, calls)
	}
}

func TestInvalidate(t *testing.T) {
	s := New(time.Minute)
	noHistory := func() ([]researcher.HistoryPoint, error) { return nil, nil }
	noTrend := func() (researcher.TrendResult, error) { return researcher.TrendResult{}, nil }

	s.History("A1", 2015, 2025, noHistory)
	s.Trend("A1", 2015, 2025, noTrend)
	s.History("A12", 2015, 2025, noHistory)
	s.History("B7", 2015, 2025, noHistory)

	s.Invalidate("A1")
	if s.Len() != 2 {
		t.Errorf("Len() = %d after invalidate, want 2", s.Len())
	}

	calls := 0
	s.History("A12", 2015, 2025, func() ([]researcher.HistoryPoint, error) { calls++; return nil, nil })
	if calls != 0 {
		t.Error("invalidating A1 evicted A12")
	}
}
