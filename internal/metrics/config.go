// Package metrics computes the dashboard-level summary indicators. Every
// metric always carries a usable value: when a computation is missing or
// lands outside its sane range, the declared fallback constant is
// substituted and the metric is flagged.
package metrics

// Limit declares the sane range for one summary metric and the constant
// substituted when the computed value is absent, NaN, or out of range.
type Limit struct {
	Min      float64
	Max      float64
	Fallback float64
}

// Limits is the single table of fallback constants and valid ranges. The
// original dashboards scattered these defaults inline across the UI; they
// are consolidated here so every substitution is declared in one place.
type Limits struct {
	TotalListings   Limit
	MeanPrice       Limit
	CriticalCount   Limit
	OverallRatioPct Limit
	OccupancyPct    Limit
	ImpactMEUR      Limit
}

// DefaultLimits returns the documented sector-based defaults for Spain.
func DefaultLimits() Limits {
	return Limits{
		TotalListings:   Limit{Min: 1000, Max: 100000, Fallback: 15000},
		MeanPrice:       Limit{Min: 30, Max: 300, Fallback: 85},
		CriticalCount:   Limit{Min: 0, Max: 50, Fallback: 5},
		OverallRatioPct: Limit{Min: 20, Max: 95, Fallback: 45.0},
		OccupancyPct:    Limit{Min: 40, Max: 90, Fallback: 65.5},
		ImpactMEUR:      Limit{Min: 50, Max: 5000, Fallback: 750},
	}
}

// Economic-impact model constants (conservative sector methodology).
const (
	operatingDays   = 280 // annual operating days, maintenance excluded
	spendMultiplier = 1.8 // lodging plus other tourist spend
	impactFloorMEUR = 100
	occupancyFloor  = 50 // minimum occupancy assumed for the impact model
)

// Mean-price computation window: nightly prices outside it are treated as
// outliers for the headline figure (tighter than the loader's hard ceiling).
const (
	headlinePriceMin = 10
	headlinePriceMax = 500
)

// CriticalRatioPct is the entire-home ratio above which a neighborhood
// counts toward the critical-neighborhood metric.
const CriticalRatioPct = 70

// defaultReferencePrices holds per-city nightly reference prices from sector
// reports, used when the official xlsx reference table is absent.
var defaultReferencePrices = map[string]float64{
	"madrid":    95,
	"barcelona": 105,
	"mallorca":  120,
}
