package storage

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/scholarboard/hix/internal/researcher"
)

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

// setupTestDB opens an empty database in a temp dir.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := OpenDB(filepath.Join(t.TempDir(), "hix.db"))
	if err != nil {
		t.Fatalf("Failed to open test DB: %v", err)
	}
	db.now = func() time.Time { return fixedNow }
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleResearcher(id, name string, h int) researcher.Researcher {
	return researcher.Researcher{
		ID:               id,
		Name:             name,
		ORCID:            "0000-0001-0000-000" + id[len(id)-1:],
		Category:         "Immunology",
		HIndex:           h,
		I10Index:         h * 2,
		WorksCount:       h * 4,
		CitedByCount:     h * 100,
		TwoYearCitedness: float64(h) / 10,
		Topics:           []researcher.Topic{{Name: "Cytokine Signaling", Count: 12}},
		Affiliations:     []researcher.Affiliation{{Name: "Harvard Medical School", Type: "education", Country: "US"}},
		CountsByYear: []researcher.YearCount{
			{Year: 2023, Works: 4, Citations: 120},
			{Year: 2024, Works: 6, Citations: 180},
		},
	}
}

func mustUpsert(t *testing.T, db *DB, r researcher.Researcher, source string) UpsertResult {
	t.Helper()
	res, err := db.UpsertResearcher(context.Background(), r, source)
	if err != nil {
		t.Fatalf("UpsertResearcher(%s) error = %v", r.ID, err)
	}
	return res
}

func TestOpenDB_SchemaVersion(t *testing.T) {
	db := setupTestDB(t)
	v, err := db.Meta(context.Background(), "schema_version")
	if err != nil {
		t.Fatal(err)
	}
	if v != schemaVersion {
		t.Errorf("schema_version = %q, want %q", v, schemaVersion)
	}
}

func TestOpenDB_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hix.db")
	db, err := OpenDB(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.UpsertResearcher(context.Background(), sampleResearcher("A1", "Ada", 5), "hms"); err != nil {
		t.Fatal(err)
	}
	db.Close()

	db, err = OpenDB(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer db.Close()
	if _, err := db.GetResearcher(context.Background(), "A1"); err != nil {
		t.Errorf("researcher lost across reopen: %v", err)
	}
}

func TestUpsertResearcher_InsertAndGet(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	want := sampleResearcher("A1", "Ada Osei", 12)

	res := mustUpsert(t, db, want, "hms")
	if !res.Inserted || res.HistoryReset {
		t.Errorf("result = %+v, want inserted", res)
	}

	got, err := db.GetResearcher(ctx, "A1")
	if err != nil {
		t.Fatalf("GetResearcher() error = %v", err)
	}

	want.SyncedFrom = []string{"hms"}
	if !reflect.DeepEqual(*got, want) {
		t.Errorf("GetResearcher() =\n%+v\nwant\n%+v", *got, want)
	}
}

func TestUpsertResearcher_MergesSources(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	r := sampleResearcher("A1", "Ada Osei", 12)

	mustUpsert(t, db, r, "hms")
	res := mustUpsert(t, db, r, "mit")
	if res.Inserted {
		t.Error("second upsert should not insert")
	}
	mustUpsert(t, db, r, "hms")

	got, err := db.GetResearcher(ctx, "A1")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got.SyncedFrom, []string{"hms", "mit"}) {
		t.Errorf("SyncedFrom = %v, want [hms mit]", got.SyncedFrom)
	}
}

func TestUpsertResearcher_KeepsHistoryWhenCountsUnchanged(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	r := sampleResearcher("A1", "Ada Osei", 12)
	mustUpsert(t, db, r, "hms")

	points := []researcher.HistoryPoint{{Year: 2023, HIndex: 10}, {Year: 2024, HIndex: 12}}
	if err := db.SaveHistory(ctx, "A1", points, 2); err != nil {
		t.Fatal(err)
	}

	r.HIndex = 13
	if res := mustUpsert(t, db, r, "hms"); res.HistoryReset {
		t.Error("unchanged counts should not reset history")
	}

	got, _ := db.GetResearcher(ctx, "A1")
	if !got.HistoryComputed || got.Slope != 2 || got.HIndex != 13 {
		t.Errorf("got computed=%v slope=%v h=%d", got.HistoryComputed, got.Slope, got.HIndex)
	}
}

func TestUpsertResearcher_ChangedCountsResetHistory(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	r := sampleResearcher("A1", "Ada Osei", 12)
	mustUpsert(t, db, r, "hms")
	if err := db.SaveHistory(ctx, "A1", []researcher.HistoryPoint{{Year: 2024, HIndex: 12}}, 1.5); err != nil {
		t.Fatal(err)
	}

	r.CountsByYear = append(r.CountsByYear, researcher.YearCount{Year: 2025, Works: 3, Citations: 90})
	if res := mustUpsert(t, db, r, "hms"); !res.HistoryReset {
		t.Error("changed counts should reset history")
	}

	got, _ := db.GetResearcher(ctx, "A1")
	if got.HistoryComputed || got.Slope != 0 {
		t.Errorf("got computed=%v slope=%v, want reset", got.HistoryComputed, got.Slope)
	}
	h, err := db.History(ctx, "A1")
	if err != nil {
		t.Fatal(err)
	}
	if len(h) != 0 {
		t.Errorf("history = %v, want empty", h)
	}
}

func TestUpsertResearcher_KeepsMergeColumns(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	r := sampleResearcher("A1", "Ada Osei", 12)
	mustUpsert(t, db, r, "hms")
	if err := db.SetInstitutionCount(ctx, "A1", 14, true); err != nil {
		t.Fatal(err)
	}
	mustUpsert(t, db, r, "hms")

	got, _ := db.GetResearcher(ctx, "A1")
	if got.InstitutionCount == nil || *got.InstitutionCount != 14 || !got.LikelyBadMerge {
		t.Errorf("merge columns lost: %v %v", got.InstitutionCount, got.LikelyBadMerge)
	}
}

func TestGetResearcher_NotFound(t *testing.T) {
	db := setupTestDB(t)
	_, err := db.GetResearcher(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestSaveHistory(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	mustUpsert(t, db, sampleResearcher("A1", "Ada Osei", 12), "hms")

	first := []researcher.HistoryPoint{{Year: 2015, HIndex: 1}, {Year: 2016, HIndex: 3}, {Year: 2017, HIndex: 2}}
	if err := db.SaveHistory(ctx, "A1", first, 0.5); err != nil {
		t.Fatalf("SaveHistory() error = %v", err)
	}

	got, err := db.History(ctx, "A1")
	if err != nil {
		t.Fatal(err)
	}
	want := []researcher.HistoryPoint{
		{ResearcherID: "A1", Year: 2015, HIndex: 1},
		{ResearcherID: "A1", Year: 2016, HIndex: 3},
		{ResearcherID: "A1", Year: 2017, HIndex: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("History() = %v, want %v", got, want)
	}

	// A second save replaces rather than merges.
	if err := db.SaveHistory(ctx, "A1", []researcher.HistoryPoint{{Year: 2020, HIndex: 7}}, 0); err != nil {
		t.Fatal(err)
	}
	got, _ = db.History(ctx, "A1")
	if len(got) != 1 || got[0].Year != 2020 {
		t.Errorf("History() after replace = %v", got)
	}
}

func TestSaveHistory_UnknownResearcher(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	err := db.SaveHistory(ctx, "ghost", []researcher.HistoryPoint{{Year: 2020, HIndex: 1}}, 1)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
	h, _ := db.History(ctx, "ghost")
	if len(h) != 0 {
		t.Errorf("orphan history written: %v", h)
	}
}

func TestPendingHistory(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	low := sampleResearcher("A1", "Low", 3)
	high := sampleResearcher("A2", "High", 30)
	mid := sampleResearcher("A3", "Mid", 10)
	for _, r := range []researcher.Researcher{low, high, mid} {
		mustUpsert(t, db, r, "hms")
	}
	if err := db.SaveHistory(ctx, "A3", nil, 0); err != nil {
		t.Fatal(err)
	}

	got, err := db.PendingHistory(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID != "A2" || got[1].ID != "A1" {
		t.Errorf("PendingHistory() = %v", idsOf(got))
	}

	limited, _ := db.PendingHistory(ctx, 1)
	if len(limited) != 1 || limited[0].ID != "A2" {
		t.Errorf("PendingHistory(1) = %v", idsOf(limited))
	}
}

func TestListResearchers_Filters(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	a := sampleResearcher("A1", "Ada Osei", 12)
	b := sampleResearcher("A2", "Bruno Adams", 8)
	b.Category = "Chemistry"
	c := sampleResearcher("A3", "Chen Wei", 20)
	for _, r := range []researcher.Researcher{a, b, c} {
		mustUpsert(t, db, r, "hms")
	}
	if err := db.SaveHistory(ctx, "A1", nil, 1.25); err != nil {
		t.Fatal(err)
	}
	if err := db.SaveHistory(ctx, "A3", nil, -0.5); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		filter ListFilter
		want   []string
	}{
		{"all", ListFilter{}, []string{"A1", "A2", "A3"}},
		{"search case-insensitive", ListFilter{Search: "ada"}, []string{"A1", "A2"}},
		{"category", ListFilter{Category: "Chemistry"}, []string{"A2"}},
		{"with history", ListFilter{WithHistory: true}, []string{"A1", "A3"}},
		{"rising", ListFilter{WithHistory: true, PositiveSlope: true}, []string{"A1"}},
		{"no match", ListFilter{Search: "zzz"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.ListResearchers(ctx, tt.filter)
			if err != nil {
				t.Fatal(err)
			}
			if ids := idsOf(got); !reflect.DeepEqual(ids, tt.want) {
				t.Errorf("ListResearchers(%+v) = %v, want %v", tt.filter, ids, tt.want)
			}
		})
	}
}

func TestMergeCheckColumns(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	for _, r := range []researcher.Researcher{
		sampleResearcher("A1", "One", 5),
		sampleResearcher("A2", "Two", 50),
		sampleResearcher("A3", "Three", 20),
	} {
		mustUpsert(t, db, r, "hms")
	}

	candidates, err := db.MergeCandidates(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if ids := idsOf(candidates); !reflect.DeepEqual(ids, []string{"A2", "A3", "A1"}) {
		t.Errorf("MergeCandidates() = %v, want most cited first", ids)
	}

	if err := db.SetInstitutionCount(ctx, "A2", 23, true); err != nil {
		t.Fatal(err)
	}
	if err := db.SetInstitutionCount(ctx, "A3", 11, true); err != nil {
		t.Fatal(err)
	}
	if err := db.SetInstitutionCount(ctx, "A1", 2, false); err != nil {
		t.Fatal(err)
	}
	if err := db.SetInstitutionCount(ctx, "ghost", 1, false); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetInstitutionCount(ghost) error = %v", err)
	}

	candidates, _ = db.MergeCandidates(ctx, 0)
	if len(candidates) != 0 {
		t.Errorf("checked researchers still candidates: %v", idsOf(candidates))
	}

	flagged, err := db.LikelyBadMerges(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if ids := idsOf(flagged); !reflect.DeepEqual(ids, []string{"A2", "A3"}) {
		t.Errorf("LikelyBadMerges() = %v", ids)
	}
}

func TestStats(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	empty, err := db.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if empty.TotalResearchers != 0 || empty.MaxHIndex != 0 || len(empty.Categories) != 0 {
		t.Errorf("empty stats = %+v", empty)
	}

	a := sampleResearcher("A1", "One", 10)
	b := sampleResearcher("A2", "Two", 20)
	b.Category = "Chemistry"
	c := sampleResearcher("A3", "Three", 30)
	for _, r := range []researcher.Researcher{a, b, c} {
		mustUpsert(t, db, r, "hms")
	}
	if err := db.SaveHistory(ctx, "A1", nil, 0); err != nil {
		t.Fatal(err)
	}

	s, err := db.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if s.TotalResearchers != 3 || s.AvgHIndex != 20 || s.MaxHIndex != 30 || s.TotalCitations != 6000 || s.WithHistory != 1 {
		t.Errorf("stats = %+v", s)
	}
	want := []CategoryCount{{"Immunology", 2}, {"Chemistry", 1}}
	if !reflect.DeepEqual(s.Categories, want) {
		t.Errorf("categories = %v, want %v", s.Categories, want)
	}
}

func TestSyncLog(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	id, err := db.StartSync(ctx, "institutions", []string{"hms", "mit"})
	if err != nil {
		t.Fatal(err)
	}
	if id == "" {
		t.Fatal("empty sync id")
	}

	runs, _ := db.SyncRuns(ctx, 5)
	if len(runs) != 1 || runs[0].CompletedAt != nil {
		t.Fatalf("runs before finish = %+v", runs)
	}

	if err := db.FinishSync(ctx, id, 120, 100, 2, "limit 60"); err != nil {
		t.Fatal(err)
	}
	runs, err = db.SyncRuns(ctx, 5)
	if err != nil {
		t.Fatal(err)
	}
	run := runs[0]
	if run.CompletedAt == nil || !run.CompletedAt.Equal(fixedNow) {
		t.Errorf("completed_at = %v", run.CompletedAt)
	}
	if run.Processed != 120 || run.Added != 100 || run.Errors != 2 || !reflect.DeepEqual(run.Sources, []string{"hms", "mit"}) {
		t.Errorf("run = %+v", run)
	}

	last, _ := db.Meta(ctx, "last_sync")
	if last != timestamp(fixedNow) {
		t.Errorf("last_sync = %q", last)
	}

	if err := db.FinishSync(ctx, "missing", 0, 0, 0, ""); err == nil {
		t.Error("finishing unknown run should fail")
	}
}

func TestRecordSnapshot(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	r := sampleResearcher("A1", "Ada", 10)

	if err := db.RecordSnapshot(ctx, r, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatal(err)
	}
	if err := db.RecordSnapshot(ctx, r, time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatal(err)
	}
	r.HIndex = 11
	if err := db.RecordSnapshot(ctx, r, time.Date(2025, 3, 28, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatal(err)
	}

	snaps, err := db.Snapshots(ctx, "A1")
	if err != nil {
		t.Fatal(err)
	}
	if len(snaps) != 2 || snaps[0].Month != "2025-02" || snaps[1].HIndex != 11 {
		t.Errorf("snapshots = %+v", snaps)
	}
}

func idsOf(rs []researcher.Researcher) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return out
}
