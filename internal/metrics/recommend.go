package metrics

import (
	"github.com/consultores-turismo/str-insights/internal/model"
)

// RecommendLevel grades the urgency of a regulatory recommendation.
type RecommendLevel string

const (
	LevelCritical RecommendLevel = "critical"
	LevelWarning  RecommendLevel = "warning"
	LevelInfo     RecommendLevel = "info"
	LevelOK       RecommendLevel = "ok"
)

// Recommendation is the per-city regulatory guidance derived from the
// entire-home ratio.
type Recommendation struct {
	City     string         `json:"city"`
	RatioPct float64        `json:"ratio_pct"`
	Level    RecommendLevel `json:"level"`
	Action   string         `json:"action"`
}

// Recommend derives the regulatory recommendation for one city aggregate.
// Thresholds follow the original consultancy guidance: >75 moratorium,
// >60 graduated license limits, >40 intensified monitoring, else maintain.
func Recommend(city model.CityAggregate) Recommendation {
	rec := Recommendation{City: city.City, RatioPct: city.RatioEntireHomePct}
	switch {
	case city.RatioEntireHomePct > 75:
		rec.Level = LevelCritical
		rec.Action = "Implement an immediate moratorium on new licenses in central zones"
	case city.RatioEntireHomePct > 60:
		rec.Level = LevelWarning
		rec.Action = "Establish graduated limits on new short-term-rental licenses"
	case city.RatioEntireHomePct > 40:
		rec.Level = LevelInfo
		rec.Action = "Intensify quarterly monitoring of neighborhood saturation"
	default:
		rec.Level = LevelOK
		rec.Action = "Maintain current policy under continued observation"
	}
	return rec
}

// RecommendAll maps Recommend over every city row.
func RecommendAll(cities []model.CityAggregate) []Recommendation {
	recs := make([]Recommendation, 0, len(cities))
	for _, city := range cities {
		recs = append(recs, Recommend(city))
	}
	return recs
}
