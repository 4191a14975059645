// Package geodata loads neighborhood boundary polygons and derives the
// representative points and join reports the map layers consume.
package geodata

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/consultores-turismo/str-insights/internal/fetcher"
	"github.com/consultores-turismo/str-insights/internal/normalize"
)

// Feature is one named boundary polygon. CanonicalName is computed once at
// load time and is the only key used for joins.
type Feature struct {
	Name          string `json:"name"`
	CanonicalName string `json:"canonical_name"`
	Geometry      geom.T `json:"-"`
}

// BoundarySet holds all boundary features loaded for one city.
type BoundarySet struct {
	City     string    `json:"city"`
	Features []Feature `json:"features"`
}

// nameProperties lists the feature property keys that may carry the
// neighborhood name, in lookup order.
var nameProperties = []string{"neighbourhood", "neighborhood", "name", "NAME", "nombre", "barrio"}

// LoadGeoJSON reads a GeoJSON FeatureCollection of neighborhood boundaries.
func LoadGeoJSON(path, city string) (*BoundarySet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "geodata: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	fc, err := fetcher.DecodeJSONObject[geojson.FeatureCollection](f)
	if err != nil {
		return nil, eris.Wrapf(err, "geodata: decode %s", path)
	}

	set := &BoundarySet{City: city}
	for _, feat := range fc.Features {
		if feat == nil || feat.Geometry == nil {
			continue
		}
		name := featureName(feat.Properties)
		if name == "" {
			continue
		}
		set.Features = append(set.Features, Feature{
			Name:          name,
			CanonicalName: normalize.Name(name),
			Geometry:      feat.Geometry,
		})
	}
	return set, nil
}

func featureName(props map[string]interface{}) string {
	for _, key := range nameProperties {
		if v, ok := props[key]; ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

// LoadShapefile reads neighborhood boundaries from an ESRI shapefile, for
// cadastral sources that ship unconverted.
func LoadShapefile(path, city string) (*BoundarySet, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "geodata: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	nameIdx := -1
	for i, field := range reader.Fields() {
		fieldName := strings.ToLower(strings.TrimRight(string(field.Name[:]), "\x00"))
		for _, key := range nameProperties {
			if fieldName == strings.ToLower(key) {
				nameIdx = i
				break
			}
		}
		if nameIdx >= 0 {
			break
		}
	}
	if nameIdx < 0 {
		return nil, eris.Errorf("geodata: no neighborhood name field in %s", path)
	}

	set := &BoundarySet{City: city}
	for reader.Next() {
		_, shape := reader.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok || poly == nil {
			continue
		}
		name := strings.TrimSpace(reader.Attribute(nameIdx))
		if name == "" {
			continue
		}
		g := shpPolygonToGeom(poly)
		if g == nil {
			continue
		}
		set.Features = append(set.Features, Feature{
			Name:          name,
			CanonicalName: normalize.Name(name),
			Geometry:      g,
		})
	}
	return set, nil
}

// shpPolygonToGeom converts a shapefile polygon to a geom.Polygon. Shapefile
// parts beyond the first are interior rings or islands; the centroid only
// ever reads the first ring, so all parts are carried as rings verbatim.
func shpPolygonToGeom(p *shp.Polygon) geom.T {
	if p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	poly := geom.NewPolygon(geom.XY).SetSRID(4326)
	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}
		ring := geom.NewLinearRingFlat(geom.XY, flat)
		if err := poly.Push(ring); err != nil {
			zap.L().Debug("geodata: skipping malformed ring", zap.Int32("part", i), zap.Error(err))
			continue
		}
	}

	if poly.NumLinearRings() == 0 {
		return nil
	}
	return poly
}

// boundaryCandidates lists the file names probed for a city's boundaries,
// in preference order. The GeoJSON names match the original data exports.
func boundaryCandidates(dir, city string) []string {
	c := strings.ToLower(city)
	return []string{
		filepath.Join(dir, fmt.Sprintf("neighbourhoods_%s.geojson", c)),
		filepath.Join(dir, c+".geojson"),
		filepath.Join(dir, c+".shp"),
	}
}

// LoadDir loads boundary sets for every requested city from dir. Cities
// without any boundary file degrade to an absent entry with a warning;
// boundary data is optional per city.
func LoadDir(ctx context.Context, dir string, cities []string) (map[string]*BoundarySet, error) {
	var mu sync.Mutex
	sets := make(map[string]*BoundarySet, len(cities))

	g, _ := errgroup.WithContext(ctx)
	for _, city := range cities {
		g.Go(func() error {
			set, err := loadCity(dir, city)
			if err != nil {
				return err
			}
			if set == nil {
				zap.L().Warn("geodata: no boundary file for city", zap.String("city", city), zap.String("dir", dir))
				return nil
			}
			mu.Lock()
			sets[strings.ToLower(city)] = set
			mu.Unlock()
			zap.L().Info("geodata: boundaries loaded",
				zap.String("city", city),
				zap.Int("features", len(set.Features)),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sets, nil
}

func loadCity(dir, city string) (*BoundarySet, error) {
	for _, path := range boundaryCandidates(dir, city) {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if strings.HasSuffix(path, ".shp") {
			return LoadShapefile(path, strings.ToLower(city))
		}
		return LoadGeoJSON(path, strings.ToLower(city))
	}
	return nil, nil
}
