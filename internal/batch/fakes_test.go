package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/scholarboard/hix/internal/openalex"
	"github.com/scholarboard/hix/internal/researcher"
	"github.com/scholarboard/hix/internal/storage"
)

// fakeFetcher serves canned works and tracks peak concurrency.
type fakeFetcher struct {
	works map[string][]researcher.Work
	fail  map[string]bool
	delay time.Duration

	active atomic.Int32
	peak   atomic.Int32
	calls  atomic.Int32
}

func (f *fakeFetcher) FetchWorks(ctx context.Context, id string) ([]researcher.Work, error) {
	f.calls.Add(1)
	n := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.fail[id] {
		return nil, fmt.Errorf("fetching works for %s: %w", id, openalex.ErrNetworkError)
	}
	return f.works[id], nil
}

type savedHistory struct {
	points []researcher.HistoryPoint
	slope  float64
}

type fakeHistoryStore struct {
	mu      sync.Mutex
	pending []researcher.Researcher
	saved   map[string]savedHistory
}

func (s *fakeHistoryStore) PendingHistory(ctx context.Context, limit int) ([]researcher.Researcher, error) {
	if limit > 0 && limit < len(s.pending) {
		return s.pending[:limit], nil
	}
	return s.pending, nil
}

func (s *fakeHistoryStore) SaveHistory(ctx context.Context, id string, points []researcher.HistoryPoint, slope float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saved == nil {
		s.saved = make(map[string]savedHistory)
	}
	s.saved[id] = savedHistory{points: points, slope: slope}
	return nil
}

type fakeInvalidator struct {
	mu  sync.Mutex
	ids []string
}

func (f *fakeInvalidator) Invalidate(id string) {
	f.mu.Lock()
	f.ids = append(f.ids, id)
	f.mu.Unlock()
}

func (f *fakeInvalidator) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.ids)
}

type fakeCounter struct {
	counts map[string]int
}

func (f *fakeCounter) InstitutionCount(ctx context.Context, id string) (int, error) {
	n, ok := f.counts[id]
	if !ok {
		return 0, fmt.Errorf("fetching author %s: %w", id, openalex.ErrNotFound)
	}
	return n, nil
}

type mergeResult struct {
	count int
	bad   bool
}

type fakeMergeStore struct {
	mu         sync.Mutex
	candidates []researcher.Researcher
	results    map[string]mergeResult
}

func (s *fakeMergeStore) MergeCandidates(ctx context.Context, limit int) ([]researcher.Researcher, error) {
	return s.candidates, nil
}

func (s *fakeMergeStore) SetInstitutionCount(ctx context.Context, id string, count int, bad bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.results == nil {
		s.results = make(map[string]mergeResult)
	}
	s.results[id] = mergeResult{count, bad}
	return nil
}

// fakeAuthorSource serves pages keyed by ROR and cursor.
type fakeAuthorSource struct {
	pages    map[string]map[string]*openalex.AuthorsPage
	perPages []int
}

func (f *fakeAuthorSource) FetchAuthors(ctx context.Context, ror, cursor string, perPage int) (*openalex.AuthorsPage, error) {
	f.perPages = append(f.perPages, perPage)
	byCursor, ok := f.pages[ror]
	if !ok {
		return nil, fmt.Errorf("fetching authors for %s: %w", ror, &openalex.APIError{StatusCode: 503, Message: "unavailable", Path: "/authors"})
	}
	return byCursor[cursor], nil
}

type finishedRun struct {
	id                       string
	processed, added, errors int
	notes                    string
}

type fakeSyncStore struct {
	researchers map[string]researcher.Researcher
	snapshots   map[string]int
	started     []string
	finished    *finishedRun
	resetIDs    map[string]bool
}

func newFakeSyncStore() *fakeSyncStore {
	return &fakeSyncStore{
		researchers: make(map[string]researcher.Researcher),
		snapshots:   make(map[string]int),
		resetIDs:    make(map[string]bool),
	}
}

func (s *fakeSyncStore) UpsertResearcher(ctx context.Context, r researcher.Researcher, source string) (storage.UpsertResult, error) {
	existing, ok := s.researchers[r.ID]
	if ok {
		r.SyncedFrom = existing.SyncedFrom
	}
	if !r.HasSyncSource(source) {
		r.SyncedFrom = append(r.SyncedFrom, source)
	}
	s.researchers[r.ID] = r
	return storage.UpsertResult{Inserted: !ok, HistoryReset: ok && s.resetIDs[r.ID]}, nil
}

func (s *fakeSyncStore) RecordSnapshot(ctx context.Context, r researcher.Researcher, at time.Time) error {
	s.snapshots[r.ID]++
	return nil
}

func (s *fakeSyncStore) StartSync(ctx context.Context, kind string, sources []string) (string, error) {
	s.started = sources
	return "run-1", nil
}

func (s *fakeSyncStore) FinishSync(ctx context.Context, id string, processed, added, errs int, notes string) error {
	s.finished = &finishedRun{id, processed, added, errs, notes}
	return nil
}

// author builds an author record through its wire form.
func author(t *testing.T, id, topic string) openalex.Author {
	t.Helper()
	body := fmt.Sprintf(`{
		"id": "https://openalex.org/%s",
		"display_name": "Author %s",
		"works_count": 10,
		"cited_by_count": 100,
		"summary_stats": {"h_index": 5, "i10_index": 2, "2yr_mean_citedness": 1.5},
		"topics": [{"display_name": %q, "count": 4}],
		"counts_by_year": [{"year": 2023, "works_count": 2, "cited_by_count": 30}]
	}`, id, id, topic)
	var a openalex.Author
	if err := json.Unmarshal([]byte(body), &a); err != nil {
		t.Fatal(err)
	}
	return a
}
