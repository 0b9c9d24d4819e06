// Package batch runs the long-lived jobs that fill the database: institution
// sync, h-index history reconstruction and the merge check.
//
// Each job processes entities independently. A failure on one entity is
// logged and counted and the job moves on; cancelling the context stops
// dispatching new entities while work already committed stays committed.
package batch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is the pool size used when none is given.
const DefaultWorkers = 4

// Invalidator drops cached derived values for a researcher.
type Invalidator interface {
	Invalidate(id string)
}

// counters tracks per-entity outcomes across workers.
type counters struct {
	processed atomic.Int64
	errors    atomic.Int64
}

// forEach runs fn for every index in [0, n) on at most workers goroutines.
// It stops dispatching once ctx is done and reports whether that happened
// before every index was dispatched.
func forEach(ctx context.Context, n, workers int, fn func(i int)) (interrupted bool) {
	if workers < 1 {
		workers = DefaultWorkers
	}

	var g errgroup.Group
	g.SetLimit(workers)

	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			interrupted = true
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			fn(i)
			return nil
		})
	}
	_ = g.Wait()

	return interrupted || ctx.Err() != nil
}

// isCancellation reports whether err came from the job being cancelled
// rather than from the entity itself.
func isCancellation(ctx context.Context, err error) bool {
	return ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded))
}

// resultSet collects per-entity results at their dispatch index.
type resultSet[T any] struct {
	mu    sync.Mutex
	items []*T
}

func newResultSet[T any](n int) *resultSet[T] {
	return &resultSet[T]{items: make([]*T, n)}
}

func (s *resultSet[T]) set(i int, v T) {
	s.mu.Lock()
	s.items[i] = &v
	s.mu.Unlock()
}

// collect returns the recorded results in dispatch order.
func (s *resultSet[T]) collect() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]T, 0, len(s.items))
	for _, v := range s.items {
		if v != nil {
			out = append(out, *v)
		}
	}
	return out
}
