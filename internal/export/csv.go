// Package export writes the filtered neighborhood aggregate table as the
// downloadable CSV the dashboards offer.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/consultores-turismo/str-insights/internal/metrics"
	"github.com/consultores-turismo/str-insights/internal/model"
	"github.com/consultores-turismo/str-insights/internal/normalize"
)

// columns mirrors the field order of model.NeighborhoodAggregate exactly;
// the export contract fixes the column order to the aggregate's field order.
var columns = []string{
	"city",
	"neighborhood",
	"total_listings",
	"entire_home_count",
	"ratio_entire_home_pct",
	"mean_price",
	"mean_availability",
	"mean_latitude",
	"mean_longitude",
	"est_occupancy_pct",
}

// Filter selects the aggregate rows to export. Zero values select everything.
type Filter struct {
	City     string       // canonical-name comparison
	MinRatio float64      // minimum entire-home ratio, percent
	Tier     metrics.Tier // saturation tier, empty = all
}

// Apply returns the rows passing the filter, preserving input order.
func Apply(rows []model.NeighborhoodAggregate, f Filter) []model.NeighborhoodAggregate {
	var out []model.NeighborhoodAggregate
	city := normalize.Name(f.City)
	for _, r := range rows {
		if city != "" && normalize.Name(r.City) != city {
			continue
		}
		if r.RatioEntireHomePct < f.MinRatio {
			continue
		}
		if f.Tier != "" && metrics.ClassifyTier(r.RatioEntireHomePct) != f.Tier {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Write emits the rows as CSV with the fixed column header.
func Write(w io.Writer, rows []model.NeighborhoodAggregate) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(columns); err != nil {
		return eris.Wrap(err, "export: write header")
	}

	for _, r := range rows {
		record := []string{
			r.City,
			r.Neighborhood,
			strconv.Itoa(r.TotalListings),
			strconv.Itoa(r.EntireHomeCount),
			formatFloat(r.RatioEntireHomePct),
			formatFloat(r.MeanPrice),
			formatFloat(r.MeanAvailability),
			formatFloat(r.MeanLatitude),
			formatFloat(r.MeanLongitude),
			formatFloat(r.EstOccupancyPct),
		}
		if err := cw.Write(record); err != nil {
			return eris.Wrap(err, "export: write row")
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush")
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}
