package researcher

import "testing"

func TestClampRange(t *testing.T) {
	tests := []struct {
		name      string
		start     int
		end       int
		wantStart int
		wantEnd   int
	}{
		{"inside bounds", 2018, 2022, 2018, 2022},
		{"start before bound", 1990, 2020, MinYear, 2020},
		{"end after bound", 2020, 2040, 2020, MaxYear},
		{"both outside", 1900, 2100, MinYear, MaxYear},
		{"inverted range", 2022, 2018, 2018, 2022},
		{"entirely before bound", 1990, 2000, MinYear, MinYear},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotStart, gotEnd := ClampRange(tt.start, tt.end)
			if gotStart != tt.wantStart || gotEnd != tt.wantEnd {
				t.Errorf("ClampRange(%d, %d) = (%d, %d), want (%d, %d)",
					tt.start, tt.end, gotStart, gotEnd, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestSeriesOf(t *testing.T) {
	points := []HistoryPoint{{Year: 2020, HIndex: 3}, {Year: 2021, HIndex: 4}}
	series := SeriesOf(points)
	if len(series) != 2 || series[2020] != 3 || series[2021] != 4 {
		t.Errorf("SeriesOf = %v", series)
	}
}

func TestHasSyncSource(t *testing.T) {
	r := Researcher{SyncedFrom: []string{"hms", "mit"}}
	if !r.HasSyncSource("mit") {
		t.Error("expected mit to be a sync source")
	}
	if r.HasSyncSource("yale") {
		t.Error("yale should not be a sync source")
	}
}
