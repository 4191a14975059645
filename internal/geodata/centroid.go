package geodata

import (
	"math"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"

	"github.com/consultores-turismo/str-insights/internal/normalize"
)

// ErrNoCentroid signals that a geometry cannot yield a representative point
// (degenerate ring or unsupported type). Callers fall back to a deterministic
// placeholder position rather than failing.
var ErrNoCentroid = eris.New("no centroid available")

// Centroid is a representative point for a boundary polygon.
type Centroid struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// PolygonCentroid computes the planar mean of the exterior ring of the first
// polygon (the first member for a MultiPolygon). This is a simple average of
// ring coordinates, not an area-weighted centroid. Rings with fewer than
// three coordinate pairs yield ErrNoCentroid.
func PolygonCentroid(g geom.T) (Centroid, error) {
	var poly *geom.Polygon
	switch t := g.(type) {
	case *geom.Polygon:
		poly = t
	case *geom.MultiPolygon:
		if t.NumPolygons() == 0 {
			return Centroid{}, ErrNoCentroid
		}
		poly = t.Polygon(0)
	default:
		return Centroid{}, ErrNoCentroid
	}

	if poly.NumLinearRings() == 0 {
		return Centroid{}, ErrNoCentroid
	}
	coords := poly.LinearRing(0).Coords()
	if len(coords) < 3 {
		return Centroid{}, ErrNoCentroid
	}

	var lonSum, latSum float64
	for _, c := range coords {
		lonSum += c[0]
		latSum += c[1]
	}
	n := float64(len(coords))
	return Centroid{Lat: latSum / n, Lon: lonSum / n}, nil
}

// Calculator computes and caches centroids per (city, canonical name). The
// cache is instance-owned and append-only for the process lifetime; tests
// construct isolated instances.
type Calculator struct {
	mu    sync.RWMutex
	cache map[string]Centroid
}

// NewCalculator creates a Calculator with an empty cache.
func NewCalculator() *Calculator {
	return &Calculator{cache: make(map[string]Centroid)}
}

// Centroid returns the representative point for a boundary feature, reusing
// the cached value when the (city, canonical name) pair was computed before.
func (c *Calculator) Centroid(city string, f Feature) (Centroid, error) {
	key := normalize.Name(city) + "/" + f.CanonicalName

	c.mu.RLock()
	cached, ok := c.cache[key]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	centroid, err := PolygonCentroid(f.Geometry)
	if err != nil {
		return Centroid{}, err
	}

	c.mu.Lock()
	c.cache[key] = centroid
	c.mu.Unlock()
	return centroid, nil
}

// Lookup returns a previously computed centroid by city and free-text
// neighborhood name.
func (c *Calculator) Lookup(city, name string) (Centroid, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	centroid, ok := c.cache[normalize.Key(city, name)]
	return centroid, ok
}

// Index computes centroids for every feature in a boundary set, caching each.
// Features without a usable centroid are skipped and their names returned.
func (c *Calculator) Index(set *BoundarySet) (skipped []string) {
	for _, f := range set.Features {
		if _, err := c.Centroid(set.City, f); err != nil {
			skipped = append(skipped, f.Name)
		}
	}
	return skipped
}

// cityCenters holds the fallback anchor per city.
var cityCenters = map[string]Centroid{
	"madrid":    {Lat: 40.4168, Lon: -3.7038},
	"barcelona": {Lat: 41.3851, Lon: 2.1734},
	"mallorca":  {Lat: 39.5696, Lon: 2.6502},
}

// defaultCenter anchors unknown cities (Madrid, matching the original).
var defaultCenter = Centroid{Lat: 40.4168, Lon: -3.7038}

// CityCenter returns the configured center point for a city.
func CityCenter(city string) Centroid {
	if c, ok := cityCenters[normalize.Name(city)]; ok {
		return c
	}
	return defaultCenter
}

// FallbackPosition places a neighborhood without a centroid on a small
// deterministic circle around the city center, indexed by a stable ordinal so
// repeated runs produce identical positions. Mallorca pins everything to the
// city center: offsets there land markers in the sea.
func FallbackPosition(city string, ordinal, total int) Centroid {
	center := CityCenter(city)
	if normalize.Name(city) == "mallorca" {
		return center
	}

	if total < 1 {
		total = 1
	}
	angle := float64(ordinal) / float64(total) * 2 * math.Pi
	radius := 0.015 + float64(ordinal%3)*0.008
	return Centroid{
		Lat: center.Lat + radius*math.Cos(angle),
		Lon: center.Lon + radius*math.Sin(angle),
	}
}
