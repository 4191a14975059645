package geodata

import (
	"sort"

	"go.uber.org/zap"

	"github.com/consultores-turismo/str-insights/internal/model"
	"github.com/consultores-turismo/str-insights/internal/normalize"
)

// MatchReport describes how a city's aggregate neighborhood names joined
// against its boundary polygons. Unmatched names are reported, never
// silently dropped; map rendering skips them.
type MatchReport struct {
	City                string   `json:"city"`
	AggregateTotal      int      `json:"aggregate_total"`
	BoundaryTotal       int      `json:"boundary_total"`
	Matched             int      `json:"matched"`
	UnmatchedAggregates []string `json:"unmatched_aggregates,omitempty"`
	UnmatchedBoundaries []string `json:"unmatched_boundaries,omitempty"`
}

// Match joins neighborhood aggregate rows against a boundary set using
// canonical names on both sides. A nil boundary set reports zero matches
// with every aggregate name unmatched.
func Match(aggs []model.NeighborhoodAggregate, set *BoundarySet) MatchReport {
	report := MatchReport{AggregateTotal: len(aggs)}
	if set != nil {
		report.City = set.City
		report.BoundaryTotal = len(set.Features)
	}

	boundaryNames := map[string]string{}
	if set != nil {
		for _, f := range set.Features {
			boundaryNames[f.CanonicalName] = f.Name
		}
	}

	seen := map[string]bool{}
	for _, agg := range aggs {
		canonical := normalize.Name(agg.Neighborhood)
		if _, ok := boundaryNames[canonical]; ok {
			report.Matched++
			seen[canonical] = true
		} else {
			report.UnmatchedAggregates = append(report.UnmatchedAggregates, agg.Neighborhood)
		}
	}

	for canonical, name := range boundaryNames {
		if !seen[canonical] {
			report.UnmatchedBoundaries = append(report.UnmatchedBoundaries, name)
		}
	}
	sort.Strings(report.UnmatchedAggregates)
	sort.Strings(report.UnmatchedBoundaries)

	if len(report.UnmatchedAggregates) > 0 {
		zap.L().Warn("geodata: unmatched neighborhood names",
			zap.String("city", report.City),
			zap.Int("matched", report.Matched),
			zap.Int("aggregate_total", report.AggregateTotal),
			zap.Strings("unmatched", report.UnmatchedAggregates),
		)
	}

	return report
}
