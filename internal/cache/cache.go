// Package cache memoizes derived per-researcher values (reconstructed
// history and trend estimates) keyed by researcher and year range.
package cache

import (
	"fmt"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/scholarboard/hix/internal/researcher"
)

// DefaultTTL is how long a derived value stays cached.
const DefaultTTL = 5 * time.Minute

// Store caches derived values. Entries are keyed by researcher ID and the
// clamped year range, so requests for equivalent ranges share one entry.
type Store struct {
	c *gocache.Cache
}

// New creates a store whose entries expire after ttl.
func New(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{c: gocache.New(ttl, ttl*2)}
}

func key(id, kind string, start, end int) string {
	start, end = researcher.ClampRange(start, end)
	return fmt.Sprintf("%s|%s|%d-%d", id, kind, start, end)
}

// History returns the cached history for (id, start, end), calling load on
// a miss. Errors from load are returned and not cached.
func (s *Store) History(id string, start, end int, load func() ([]researcher.HistoryPoint, error)) ([]researcher.HistoryPoint, error) {
	k := key(id, "history", start, end)
	if v, ok := s.c.Get(k); ok {
		return v.([]researcher.HistoryPoint), nil
	}
	points, err := load()
	if err != nil {
		return nil, err
	}
	s.c.Set(k, points, gocache.DefaultExpiration)
	return points, nil
}

// Trend returns the cached trend for (id, start, end), calling load on a miss.
func (s *Store) Trend(id string, start, end int, load func() (researcher.TrendResult, error)) (researcher.TrendResult, error) {
	k := key(id, "trend", start, end)
	if v, ok := s.c.Get(k); ok {
		return v.(researcher.TrendResult), nil
	}
	t, err := load()
	if err != nil {
		return researcher.TrendResult{}, err
	}
	s.c.Set(k, t, gocache.DefaultExpiration)
	return t, nil
}

// Invalidate drops every cached value for one researcher.
func (s *Store) Invalidate(id string) {
	prefix := id + "|"
	for k := range s.c.Items() {
		if strings.HasPrefix(k, prefix) {
			s.c.Delete(k)
		}
	}
}

// Len returns the number of live entries.
func (s *Store) Len() int {
	return s.c.ItemCount()
}
