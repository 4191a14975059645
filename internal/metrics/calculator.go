package metrics

import (
	"math"

	"go.uber.org/zap"

	"github.com/consultores-turismo/str-insights/internal/model"
)

// Metric is one summary value plus the flag recording whether the declared
// fallback constant was substituted. The distinction between a computed
// value and a fallback is never silently lost to the caller.
type Metric struct {
	Value    float64 `json:"value"`
	Fallback bool    `json:"fallback"`
}

// Summary holds the headline dashboard indicators. Every field is always
// present and usable, empty inputs included.
type Summary struct {
	TotalListings     Metric `json:"total_listings"`
	MeanPrice         Metric `json:"mean_price"`
	CriticalCount     Metric `json:"critical_neighborhoods"`
	OverallRatioPct   Metric `json:"overall_ratio_pct"`
	MeanOccupancyPct  Metric `json:"mean_occupancy_pct"`
	EconomicImpactMEUR Metric `json:"economic_impact_meur"`
}

// Calculator derives summary metrics from the aggregate tables. It holds no
// mutable state across calls.
type Calculator struct {
	limits    Limits
	refPrices map[string]float64
}

// NewCalculator builds a calculator with the given limits table. refPrices
// may be nil; the documented defaults apply.
func NewCalculator(limits Limits, refPrices map[string]float64) *Calculator {
	if refPrices == nil {
		refPrices = defaultReferencePrices
	}
	return &Calculator{limits: limits, refPrices: refPrices}
}

// bounded validates a computed value against its limit. computed=false, NaN,
// or an out-of-range value substitutes the fallback and logs the swap.
func (c *Calculator) bounded(name string, value float64, computed bool, limit Limit) Metric {
	if computed && !math.IsNaN(value) && value >= limit.Min && value <= limit.Max {
		return Metric{Value: value}
	}
	zap.L().Warn("metrics: fallback substituted",
		zap.String("metric", name),
		zap.Float64("computed", value),
		zap.Bool("had_value", computed),
		zap.Float64("fallback", limit.Fallback),
	)
	return Metric{Value: limit.Fallback, Fallback: true}
}

// Summarize computes the headline indicators from the current aggregate
// tables and the cleaned listing set.
func (c *Calculator) Summarize(cities []model.CityAggregate, hoods []model.NeighborhoodAggregate, listings []model.Listing) Summary {
	var s Summary

	// Total listings across cities. An empty collection substitutes the
	// documented default rather than a zero that reads like an error.
	total := 0
	for _, city := range cities {
		total += city.TotalListings
	}
	s.TotalListings = c.bounded("total_listings", float64(total), total > 0, c.limits.TotalListings)

	// Headline mean price over listings inside the outlier window.
	var priceSum float64
	priceCount := 0
	for _, l := range listings {
		if l.Price >= headlinePriceMin && l.Price <= headlinePriceMax {
			priceSum += l.Price
			priceCount++
		}
	}
	meanPrice := 0.0
	if priceCount > 0 {
		meanPrice = priceSum / float64(priceCount)
	}
	s.MeanPrice = c.bounded("mean_price", meanPrice, priceCount > 0, c.limits.MeanPrice)

	// Critical neighborhoods: ratio above the 70% threshold. Zero is a
	// valid computed value when any neighborhood rows exist.
	critical := 0
	for _, h := range hoods {
		if h.RatioEntireHomePct > CriticalRatioPct {
			critical++
		}
	}
	s.CriticalCount = c.bounded("critical_neighborhoods", float64(critical), len(hoods) > 0, c.limits.CriticalCount)

	// Overall ratio: unweighted mean across city rows. A listing-weighted
	// mean would differ; the unweighted form is the documented default.
	var ratioSum float64
	for _, city := range cities {
		ratioSum += city.RatioEntireHomePct
	}
	overallRatio := 0.0
	if len(cities) > 0 {
		overallRatio = ratioSum / float64(len(cities))
	}
	s.OverallRatioPct = c.bounded("overall_ratio_pct", overallRatio, len(cities) > 0, c.limits.OverallRatioPct)

	// Mean occupancy from availability, floored at the range minimum.
	var availSum float64
	availCount := 0
	for _, l := range listings {
		if l.HasAvailability {
			availSum += float64(l.Availability365)
			availCount++
		}
	}
	occupancy := 0.0
	if availCount > 0 {
		occupancy = (365 - availSum/float64(availCount)) / 365 * 100
		if occupancy < c.limits.OccupancyPct.Min {
			occupancy = c.limits.OccupancyPct.Min
		}
	}
	s.MeanOccupancyPct = c.bounded("mean_occupancy_pct", occupancy, availCount > 0, c.limits.OccupancyPct)

	s.EconomicImpactMEUR = c.economicImpact(s)

	return s
}

// economicImpact applies the conservative sector model:
// listings × price × occupancy × operating days × spend multiplier.
func (c *Calculator) economicImpact(s Summary) Metric {
	occupancy := s.MeanOccupancyPct.Value
	if occupancy < occupancyFloor {
		occupancy = occupancyFloor
	}
	impact := s.TotalListings.Value * s.MeanPrice.Value * (occupancy / 100) * operatingDays * spendMultiplier / 1e6
	if impact < impactFloorMEUR {
		impact = impactFloorMEUR
	}
	// The inputs are themselves guarded, so the model always has usable
	// operands; the range check still applies.
	return c.bounded("economic_impact_meur", impact, true, c.limits.ImpactMEUR)
}

// AccessibilityIndex is a per-city price-accessibility proxy: the official
// reference nightly price over the observed mean, clamped to [0, 1]. Values
// near 1 mean short-term-rental prices sit at or below the reference.
func (c *Calculator) AccessibilityIndex(city string, meanPrice float64) float64 {
	ref, ok := c.refPrices[city]
	if !ok {
		ref = c.limits.MeanPrice.Fallback
	}
	if meanPrice <= 0 {
		return 1
	}
	idx := ref / meanPrice
	if idx > 1 {
		return 1
	}
	if idx < 0 {
		return 0
	}
	return idx
}
