package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/consultores-turismo/str-insights/internal/aggregate"
	"github.com/consultores-turismo/str-insights/internal/geodata"
	"github.com/consultores-turismo/str-insights/internal/listing"
	"github.com/consultores-turismo/str-insights/internal/metrics"
	"github.com/consultores-turismo/str-insights/internal/model"
)

// dataEnv holds one full computation pass over the source files. Commands
// build it once; the serve command holds it for the process lifetime.
type dataEnv struct {
	Listings   []model.Listing
	Drops      listing.DropStats
	Result     *aggregate.Result
	Boundaries map[string]*geodata.BoundarySet
	Centroids  *geodata.Calculator
	Metrics    *metrics.Calculator
	Summary    metrics.Summary
	Reports    []geodata.MatchReport
	Unmatched  int
}

// initDataEnv loads the listing dataset, builds the aggregate tables, loads
// boundary geometries, and computes the headline summary.
func initDataEnv(ctx context.Context) (*dataEnv, error) {
	loader := listing.NewLoader(cfg.Data.ListingsPath, cfg.Data.Charset)
	res, err := loader.Load(ctx)
	if err != nil {
		// An unavailable source degrades to empty collections; the summary
		// then reports its fallback values instead of aborting the session.
		if !errors.Is(err, listing.ErrDataUnavailable) {
			return nil, err
		}
		fmt.Fprintf(os.Stderr, "Listings source unavailable (%s); continuing with empty data.\n",
			cfg.Data.ListingsPath)
		zap.L().Warn("listings source unavailable", zap.Error(err))
		res = &listing.LoadResult{}
	}

	env := &dataEnv{
		Listings: res.Listings,
		Drops:    res.Dropped,
		Result:   aggregate.Build(res.Listings),
	}

	env.Boundaries, err = geodata.LoadDir(ctx, cfg.Data.BoundariesDir, cfg.Cities)
	if err != nil {
		return nil, err
	}

	env.Centroids = geodata.NewCalculator()
	for city, set := range env.Boundaries {
		if skipped := env.Centroids.Index(set); len(skipped) > 0 {
			zap.L().Warn("degenerate boundary geometries skipped",
				zap.String("city", city),
				zap.Strings("names", skipped),
			)
		}
	}

	for _, city := range cfg.Cities {
		report := geodata.Match(env.Result.ForCity(city), env.Boundaries[city])
		if report.City == "" {
			report.City = city
		}
		env.Reports = append(env.Reports, report)
		env.Unmatched += len(report.UnmatchedAggregates)
	}

	env.Metrics = metrics.NewCalculator(metrics.DefaultLimits(),
		metrics.LoadReferencePrices(cfg.Data.PriceReferencePath))
	env.Summary = env.Metrics.Summarize(env.Result.Cities, env.Result.Neighborhoods, env.Listings)

	zap.L().Info("data environment ready",
		zap.Int("listings", len(env.Listings)),
		zap.Int("dropped", env.Drops.Total()),
		zap.Int("neighborhoods", len(env.Result.Neighborhoods)),
		zap.Int("unmatched_names", env.Unmatched),
	)
	return env, nil
}

// placement is one neighborhood's map position. Fallback positions ring the
// city center when no boundary polygon matched the name.
type placement struct {
	Neighborhood string  `json:"neighborhood"`
	Lat          float64 `json:"lat"`
	Lon          float64 `json:"lon"`
	Fallback     bool    `json:"fallback,omitempty"`
}

// placements returns a map position for every aggregate row of a city.
func (e *dataEnv) placements(city string) []placement {
	rows := e.Result.ForCity(city)

	var unplaced int
	for _, r := range rows {
		if _, ok := e.Centroids.Lookup(city, r.Neighborhood); !ok {
			unplaced++
		}
	}

	out := make([]placement, 0, len(rows))
	ordinal := 0
	for _, r := range rows {
		if c, ok := e.Centroids.Lookup(city, r.Neighborhood); ok {
			out = append(out, placement{Neighborhood: r.Neighborhood, Lat: c.Lat, Lon: c.Lon})
			continue
		}
		c := geodata.FallbackPosition(city, ordinal, unplaced)
		ordinal++
		out = append(out, placement{Neighborhood: r.Neighborhood, Lat: c.Lat, Lon: c.Lon, Fallback: true})
	}
	return out
}
