// Package trend fits linear trends to year-keyed metric series.
package trend

import (
	"math"
	"sort"

	"github.com/scholarboard/hix/internal/researcher"
)

// Slope returns the ordinary-least-squares slope of series over the inclusive
// range [start, end], rounded to 3 decimals. Fewer than two populated years,
// or a degenerate denominator, yield 0.
func Slope(series map[int]float64, start, end int) float64 {
	years := yearsInRange(series, start, end)
	n := float64(len(years))
	if len(years) < 2 {
		return 0
	}

	var sumX, sumY, sumXY, sumX2 float64
	for _, year := range years {
		x := float64(year)
		y := series[year]
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}

	denominator := n*sumX2 - sumX*sumX
	if denominator == 0 {
		return 0
	}

	return round3((n*sumXY - sumX*sumY) / denominator)
}

// Estimate computes the trend of a reconstructed h-index history over
// [start, end], clamped to the supported year bounds. StartValue and EndValue
// are taken at the first and last populated years inside the range.
func Estimate(points []researcher.HistoryPoint, start, end int) researcher.TrendResult {
	start, end = researcher.ClampRange(start, end)
	series := researcher.SeriesOf(points)

	result := researcher.TrendResult{
		StartYear: start,
		EndYear:   end,
		Slope:     Slope(series, start, end),
	}
	if years := yearsInRange(series, start, end); len(years) > 0 {
		result.StartValue = series[years[0]]
		result.EndValue = series[years[len(years)-1]]
	}
	return result
}

// yearsInRange returns the sorted populated years of series within [start, end].
func yearsInRange(series map[int]float64, start, end int) []int {
	years := make([]int, 0, len(series))
	for year := range series {
		if year >= start && year <= end {
			years = append(years, year)
		}
	}
	sort.Ints(years)
	return years
}

// round3 rounds half away from zero to 3 decimal places.
func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
