package metrics

// Tier classifies a neighborhood's entire-home ratio into saturation bands.
type Tier string

const (
	TierSustainable Tier = "SUSTAINABLE"
	TierModerate    Tier = "MODERATE"
	TierHigh        Tier = "HIGH"
	TierCritical    Tier = "CRITICAL"
)

// ClassifyTier is a pure function of the entire-home ratio:
// <40 sustainable, 40 to 60 moderate, above 60 to 80 high, >80 critical.
func ClassifyTier(ratioPct float64) Tier {
	switch {
	case ratioPct > 80:
		return TierCritical
	case ratioPct > 60:
		return TierHigh
	case ratioPct >= 40:
		return TierModerate
	default:
		return TierSustainable
	}
}

// TierCounts tallies neighborhoods per saturation tier.
type TierCounts struct {
	Sustainable int `json:"sustainable"`
	Moderate    int `json:"moderate"`
	High        int `json:"high"`
	Critical    int `json:"critical"`
}

// CountTiers classifies each ratio and tallies the bands.
func CountTiers(ratios []float64) TierCounts {
	var counts TierCounts
	for _, r := range ratios {
		switch ClassifyTier(r) {
		case TierCritical:
			counts.Critical++
		case TierHigh:
			counts.High++
		case TierModerate:
			counts.Moderate++
		default:
			counts.Sustainable++
		}
	}
	return counts
}
