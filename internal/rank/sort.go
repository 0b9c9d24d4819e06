// Package rank orders researchers by weighted sort keys and computes their
// standing within a peer category.
package rank

import (
	"fmt"
	"slices"
	"strings"

	"github.com/scholarboard/hix/internal/researcher"
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// SortKey is one metric to order by. The first key in a list has the
// highest priority.
type SortKey struct {
	Metric string    `json:"metric"`
	Dir    Direction `json:"direction"`
}

func (k SortKey) String() string {
	return k.Metric + ":" + string(k.Dir)
}

// DefaultKeys is the ordering used when none is requested.
var DefaultKeys = []SortKey{{Metric: MetricHIndex, Dir: Desc}, {Metric: MetricName, Dir: Asc}}

// ParseSortKeys parses a comma-separated list like "h_index:desc,name".
// A key without a direction sorts numeric metrics descending and lexical
// metrics ascending. Unknown metric names are accepted and sort as no-ops.
func ParseSortKeys(spec string) ([]SortKey, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return DefaultKeys, nil
	}

	var keys []SortKey
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		metric, dir, hasDir := strings.Cut(part, ":")
		key := SortKey{Metric: strings.TrimSpace(metric)}
		switch d := strings.ToLower(strings.TrimSpace(dir)); {
		case !hasDir:
			key.Dir = defaultDirection(key.Metric)
		case d == "asc":
			key.Dir = Asc
		case d == "desc":
			key.Dir = Desc
		default:
			return nil, fmt.Errorf("invalid sort direction %q for %s (valid: asc, desc)", dir, key.Metric)
		}
		keys = append(keys, key)
	}

	if len(keys) == 0 {
		return DefaultKeys, nil
	}
	return keys, nil
}

func defaultDirection(metric string) Direction {
	if IsLexical(metric) {
		return Asc
	}
	return Desc
}

// Compare orders a and b by keys in priority order. It returns 0 only when
// every key ties.
func Compare(a, b *researcher.Researcher, keys []SortKey) int {
	for _, k := range keys {
		c := MetricValue(a, k.Metric).Compare(MetricValue(b, k.Metric))
		if k.Dir == Desc {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	return 0
}

// Sort orders rs in place by keys, first key primary. The sort is stable, so
// researchers tied on every key keep their relative input order. This gives
// the same result as one full stable sort per key applied from the last key
// to the first.
func Sort(rs []researcher.Researcher, keys []SortKey) {
	slices.SortStableFunc(rs, func(a, b researcher.Researcher) int {
		return Compare(&a, &b, keys)
	})
}

// Page returns the slice of an already fully sorted collection starting at
// offset with at most limit items. A non-positive limit returns everything
// from offset on; an offset past the end yields an empty slice.
func Page(rs []researcher.Researcher, offset, limit int) []researcher.Researcher {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(rs) {
		return []researcher.Researcher{}
	}
	end := len(rs)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return rs[offset:end]
}

// TotalPages returns the number of pages of size perPage needed for total items.
func TotalPages(total, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}
