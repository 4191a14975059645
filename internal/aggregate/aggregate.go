// Package aggregate groups cleaned listings into the per-city and
// per-neighborhood KPI tables the dashboards read.
package aggregate

import (
	"sort"

	"github.com/consultores-turismo/str-insights/internal/model"
	"github.com/consultores-turismo/str-insights/internal/normalize"
)

// DefaultAvailability is the documented stand-in for mean availability when
// no listing in a group carries a usable availability_365 value.
const DefaultAvailability = 200

// Result holds both aggregate tables. Rows are sorted by (city, neighborhood)
// so rebuilding from the same listing set yields identical output.
type Result struct {
	Cities        []model.CityAggregate
	Neighborhoods []model.NeighborhoodAggregate
}

// group accumulates raw sums for one grouping key.
type group struct {
	count       int
	entireHome  int
	priceSum    float64
	priceCount  int
	availSum    float64
	availCount  int
	latSum      float64
	lonSum      float64
	coordCount  int
	barrios     map[string]struct{} // city groups only
}

func (g *group) add(l model.Listing) {
	g.count++
	if l.RoomType == model.RoomTypeEntireHome {
		g.entireHome++
	}
	// Loader guarantees a valid positive price on every row.
	g.priceSum += l.Price
	g.priceCount++
	if l.HasAvailability {
		g.availSum += float64(l.Availability365)
		g.availCount++
	}
	if l.HasCoordinates {
		g.latSum += l.Latitude
		g.lonSum += l.Longitude
		g.coordCount++
	}
}

func (g *group) ratioPct() float64 {
	if g.count == 0 {
		return 0
	}
	return float64(g.entireHome) / float64(g.count) * 100
}

func (g *group) meanPrice() float64 {
	if g.priceCount == 0 {
		return 0
	}
	return g.priceSum / float64(g.priceCount)
}

func (g *group) meanAvailability() float64 {
	if g.availCount == 0 {
		return DefaultAvailability
	}
	return g.availSum / float64(g.availCount)
}

func (g *group) meanLat() float64 {
	if g.coordCount == 0 {
		return 0
	}
	return g.latSum / float64(g.coordCount)
}

func (g *group) meanLon() float64 {
	if g.coordCount == 0 {
		return 0
	}
	return g.lonSum / float64(g.coordCount)
}

// estOccupancyPct estimates annual occupancy from mean availability:
// the share of the year the listing is not open for booking. Zero mean
// availability reports zero rather than full occupancy, matching the
// original dashboards.
func estOccupancyPct(meanAvail float64) float64 {
	if meanAvail <= 0 {
		return 0
	}
	pct := 100 - meanAvail/365*100
	if pct < 0 {
		return 0
	}
	return pct
}

// Build computes both aggregate tables from a cleaned listing set. It is a
// pure function of its input: no incremental update, no retained state.
// Neighborhood spelling variants are kept as distinct groups here;
// deduplication happens at the normalization/join stage.
func Build(listings []model.Listing) *Result {
	cityGroups := map[string]*group{}
	hoodGroups := map[string]map[string]*group{}

	for _, l := range listings {
		cg, ok := cityGroups[l.City]
		if !ok {
			cg = &group{barrios: map[string]struct{}{}}
			cityGroups[l.City] = cg
		}
		cg.add(l)
		cg.barrios[l.Neighborhood] = struct{}{}

		hoods, ok := hoodGroups[l.City]
		if !ok {
			hoods = map[string]*group{}
			hoodGroups[l.City] = hoods
		}
		hg, ok := hoods[l.Neighborhood]
		if !ok {
			hg = &group{}
			hoods[l.Neighborhood] = hg
		}
		hg.add(l)
	}

	res := &Result{}

	for city, g := range cityGroups {
		meanAvail := g.meanAvailability()
		res.Cities = append(res.Cities, model.CityAggregate{
			City:               city,
			TotalListings:      g.count,
			EntireHomeCount:    g.entireHome,
			RatioEntireHomePct: g.ratioPct(),
			MeanPrice:          g.meanPrice(),
			MeanAvailability:   meanAvail,
			BarriosCount:       len(g.barrios),
			EstOccupancyPct:    estOccupancyPct(meanAvail),
		})
	}

	for city, hoods := range hoodGroups {
		for hood, g := range hoods {
			meanAvail := g.meanAvailability()
			res.Neighborhoods = append(res.Neighborhoods, model.NeighborhoodAggregate{
				City:               city,
				Neighborhood:       hood,
				TotalListings:      g.count,
				EntireHomeCount:    g.entireHome,
				RatioEntireHomePct: g.ratioPct(),
				MeanPrice:          g.meanPrice(),
				MeanAvailability:   meanAvail,
				MeanLatitude:       g.meanLat(),
				MeanLongitude:      g.meanLon(),
				EstOccupancyPct:    estOccupancyPct(meanAvail),
			})
		}
	}

	sort.Slice(res.Cities, func(i, j int) bool {
		return res.Cities[i].City < res.Cities[j].City
	})
	sort.Slice(res.Neighborhoods, func(i, j int) bool {
		a, b := res.Neighborhoods[i], res.Neighborhoods[j]
		if a.City != b.City {
			return a.City < b.City
		}
		return a.Neighborhood < b.Neighborhood
	})

	return res
}

// ForCity returns the neighborhood rows belonging to one city. The name is
// compared in canonical form, so caller casing does not matter.
func (r *Result) ForCity(city string) []model.NeighborhoodAggregate {
	canonical := normalize.Name(city)
	var out []model.NeighborhoodAggregate
	for _, n := range r.Neighborhoods {
		if normalize.Name(n.City) == canonical {
			out = append(out, n)
		}
	}
	return out
}

// City returns the city aggregate row, or nil if the city is absent. The
// name is compared in canonical form.
func (r *Result) City(city string) *model.CityAggregate {
	canonical := normalize.Name(city)
	for i := range r.Cities {
		if normalize.Name(r.Cities[i].City) == canonical {
			return &r.Cities[i]
		}
	}
	return nil
}
