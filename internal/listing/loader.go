// Package listing loads and cleans the raw per-accommodation rows that feed
// every downstream aggregate.
package listing

import (
	"context"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/consultores-turismo/str-insights/internal/fetcher"
	"github.com/consultores-turismo/str-insights/internal/model"
)

// ErrDataUnavailable signals that a required source file could not be located
// or parsed. Callers surface a user-facing message and continue with empty
// collections; they must not crash.
var ErrDataUnavailable = eris.New("data source unavailable")

// PriceCeiling is the nightly-price outlier cutoff. Rows at or above it are
// dropped before aggregation.
const PriceCeiling = 6501

// DropStats counts rows excluded by each cleaning rule, in application order.
type DropStats struct {
	MissingFields   int `json:"missing_fields"`
	UnparsablePrice int `json:"unparsable_price"`
	NonPositive     int `json:"non_positive_price"`
	PriceOutlier    int `json:"price_outlier"`
}

// Total returns the number of rows dropped across all rules.
func (d DropStats) Total() int {
	return d.MissingFields + d.UnparsablePrice + d.NonPositive + d.PriceOutlier
}

// LoadResult holds the cleaned listings plus cleaning diagnostics.
type LoadResult struct {
	Listings []model.Listing
	Dropped  DropStats
}

// Loader reads a unified listings CSV. The column contract is established
// here once; downstream consumers never probe alternative column names.
type Loader struct {
	path    string
	charset string
}

// NewLoader creates a loader for the CSV at path. charset names a legacy
// encoding for older municipal exports; empty means UTF-8.
func NewLoader(path, charset string) *Loader {
	return &Loader{path: path, charset: charset}
}

// columnIndexes resolves the required columns from a header row. The unified
// export carries the original Spanish column names; the English aliases are
// accepted so per-city raw exports load unchanged. Extra columns are ignored.
type columnIndexes struct {
	city, neighborhood, roomType, price, availability, lat, lon int
}

var columnAliases = map[string][]string{
	"city":         {"ciudad", "city"},
	"neighborhood": {"neighbourhood_cleansed", "neighbourhood", "barrio"},
	"room_type":    {"room_type"},
	"price":        {"price", "precio"},
	"availability": {"availability_365"},
	"latitude":     {"latitude", "lat"},
	"longitude":    {"longitude", "lon", "lng"},
}

func resolveColumns(header []string) (columnIndexes, error) {
	idx := map[string]int{}
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}

	find := func(key string) int {
		for _, alias := range columnAliases[key] {
			if i, ok := idx[alias]; ok {
				return i
			}
		}
		return -1
	}

	cols := columnIndexes{
		city:         find("city"),
		neighborhood: find("neighborhood"),
		roomType:     find("room_type"),
		price:        find("price"),
		availability: find("availability"),
		lat:          find("latitude"),
		lon:          find("longitude"),
	}

	if cols.city < 0 || cols.neighborhood < 0 || cols.roomType < 0 || cols.price < 0 {
		return cols, eris.Errorf("listing: required columns missing from header (got %v)", header)
	}
	return cols, nil
}

// Load reads, parses, and cleans the listings file. Cleaning order:
// drop rows with missing city or neighborhood, coerce price dropping rows
// that fail, drop price <= 0, drop price >= PriceCeiling. Availability and
// coordinate parse failures never drop a row; the field stays unset.
func (l *Loader) Load(ctx context.Context) (*LoadResult, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, eris.Wrapf(ErrDataUnavailable, "listing: open %s", l.path)
	}
	defer f.Close() //nolint:errcheck

	headerCh := make(chan []string, 1)
	rowCh, errCh := fetcher.StreamCSV(ctx, f, fetcher.CSVOptions{
		HasHeader: true,
		HeaderCh:  headerCh,
		Charset:   l.charset,
		TrimSpace: true,
	})

	var cols columnIndexes
	haveCols := false
	result := &LoadResult{}

	field := func(row []string, i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return row[i]
	}

	// StreamCSV requires the row channel to be consumed; drain it before any
	// early return so the producer goroutine can finish.
	drain := func() {
		for range rowCh {
		}
	}

	for row := range rowCh {
		if !haveCols {
			select {
			case header := <-headerCh:
				cols, err = resolveColumns(header)
				if err != nil {
					drain()
					return nil, eris.Wrap(ErrDataUnavailable, err.Error())
				}
				haveCols = true
			default:
				drain()
				return nil, eris.Wrap(ErrDataUnavailable, "listing: source has no header row")
			}
		}

		city := field(row, cols.city)
		neighborhood := field(row, cols.neighborhood)
		if city == "" || neighborhood == "" {
			result.Dropped.MissingFields++
			continue
		}

		price, err := strconv.ParseFloat(field(row, cols.price), 64)
		if err != nil {
			result.Dropped.UnparsablePrice++
			continue
		}
		if price <= 0 {
			result.Dropped.NonPositive++
			continue
		}
		if price >= PriceCeiling {
			result.Dropped.PriceOutlier++
			continue
		}

		listing := model.Listing{
			City:         city,
			Neighborhood: neighborhood,
			RoomType:     field(row, cols.roomType),
			Price:        price,
		}

		if avail, err := strconv.Atoi(field(row, cols.availability)); err == nil {
			listing.Availability365 = avail
			listing.HasAvailability = true
		}
		lat, latErr := strconv.ParseFloat(field(row, cols.lat), 64)
		lon, lonErr := strconv.ParseFloat(field(row, cols.lon), 64)
		if latErr == nil && lonErr == nil {
			listing.Latitude = lat
			listing.Longitude = lon
			listing.HasCoordinates = true
		}

		result.Listings = append(result.Listings, listing)
	}

	if err := <-errCh; err != nil {
		return nil, eris.Wrapf(ErrDataUnavailable, "listing: parse %s: %v", l.path, err)
	}

	// Header present but zero data rows still yields a usable empty result.
	if !haveCols {
		select {
		case header := <-headerCh:
			if _, err := resolveColumns(header); err != nil {
				return nil, eris.Wrap(ErrDataUnavailable, err.Error())
			}
		default:
			return nil, eris.Wrapf(ErrDataUnavailable, "listing: %s is empty", l.path)
		}
	}

	if dropped := result.Dropped.Total(); dropped > 0 {
		zap.L().Debug("listing: rows dropped during cleaning",
			zap.String("path", l.path),
			zap.Int("kept", len(result.Listings)),
			zap.Int("missing_fields", result.Dropped.MissingFields),
			zap.Int("unparsable_price", result.Dropped.UnparsablePrice),
			zap.Int("non_positive_price", result.Dropped.NonPositive),
			zap.Int("price_outlier", result.Dropped.PriceOutlier),
		)
	}

	return result, nil
}
