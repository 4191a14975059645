package metrics

import (
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/consultores-turismo/str-insights/internal/fetcher"
	"github.com/consultores-turismo/str-insights/internal/normalize"
)

// LoadReferencePrices reads the official per-city nightly reference price
// table from an xlsx export (city in the first column, price in the second).
// The source is opportunistic: a missing or unreadable file degrades to the
// documented defaults with a log line, never an error.
func LoadReferencePrices(path string) map[string]float64 {
	if path == "" {
		return defaultReferencePrices
	}
	if _, err := os.Stat(path); err != nil {
		zap.L().Info("metrics: reference price table absent, using defaults", zap.String("path", path))
		return defaultReferencePrices
	}

	rows, err := fetcher.ReadXLSX(path, fetcher.XLSXOptions{SkipRows: 1})
	if err != nil {
		zap.L().Warn("metrics: reference price table unreadable, using defaults",
			zap.String("path", path), zap.Error(err))
		return defaultReferencePrices
	}

	prices := make(map[string]float64, len(rows))
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		city := normalize.Name(row[0])
		price, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		if err != nil || price <= 0 {
			continue
		}
		prices[city] = price
	}

	if len(prices) == 0 {
		zap.L().Warn("metrics: reference price table had no usable rows, using defaults", zap.String("path", path))
		return defaultReferencePrices
	}

	zap.L().Info("metrics: reference prices loaded", zap.String("path", path), zap.Int("cities", len(prices)))
	return prices
}
