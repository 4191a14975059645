package metrics

import (
	"math"
	"sort"

	"github.com/consultores-turismo/str-insights/internal/model"
)

// ConcentrationIndex measures how unevenly a city's listings spread across
// its neighborhoods: a normalized Herfindahl index over listing shares.
// 0 means perfectly even, 1 means everything in one neighborhood. A city
// with zero or one neighborhood reports 0.
func ConcentrationIndex(hoods []model.NeighborhoodAggregate) float64 {
	total := 0
	for _, h := range hoods {
		total += h.TotalListings
	}
	n := len(hoods)
	if n < 2 || total == 0 {
		return 0
	}

	var hhi float64
	for _, h := range hoods {
		share := float64(h.TotalListings) / float64(total)
		hhi += share * share
	}

	floor := 1 / float64(n)
	return (hhi - floor) / (1 - floor)
}

// HighConcentration returns the neighborhoods whose listing count exceeds
// the city's 90th percentile, the original alerting rule for territorial
// concentration hotspots.
func HighConcentration(hoods []model.NeighborhoodAggregate) []string {
	if len(hoods) == 0 {
		return nil
	}

	counts := make([]int, len(hoods))
	for i, h := range hoods {
		counts[i] = h.TotalListings
	}
	sort.Ints(counts)
	threshold := percentile(counts, 0.9)

	var names []string
	for _, h := range hoods {
		if float64(h.TotalListings) > threshold {
			names = append(names, h.Neighborhood)
		}
	}
	sort.Strings(names)
	return names
}

// percentile computes the p-quantile of sorted ints by linear interpolation,
// matching the default quantile method of the original analysis.
func percentile(sorted []int, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return float64(sorted[0])
	}
	rank := p * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return float64(sorted[lo])
	}
	frac := rank - float64(lo)
	return float64(sorted[lo])*(1-frac) + float64(sorted[hi])*frac
}
