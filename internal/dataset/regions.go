package dataset

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/sells-group/monument-map/internal/geo"
	"github.com/sells-group/monument-map/internal/model"
)

// Options configures how source files are interpreted.
type Options struct {
	// SourceCRS is used when a file does not declare its own CRS.
	SourceCRS geo.CRS
	Fields    FieldOptions
	// MaxNearestKM lets a monument outside every municipality boundary
	// fall back to the nearest municipality centroid within this distance.
	MaxNearestKM float64
}

// readFeatureCollection decodes GeoJSON and returns its features together
// with the CRS named in the legacy "crs" member, falling back to def.
func readFeatureCollection(r io.Reader, def geo.CRS) ([]*geojson.Feature, geo.CRS, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", eris.Wrap(err, "dataset: read geojson")
	}

	var header struct {
		CRS *struct {
			Properties struct {
				Name string `json:"name"`
			} `json:"properties"`
		} `json:"crs"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return nil, "", eris.Wrap(err, "dataset: decode geojson")
	}
	crs := def
	if header.CRS != nil && header.CRS.Properties.Name != "" {
		crs, err = geo.ParseCRS(header.CRS.Properties.Name)
		if err != nil {
			return nil, "", err
		}
	}

	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, "", eris.Wrap(err, "dataset: decode feature collection")
	}
	return fc.Features, crs, nil
}

// ReadRegionsGeoJSON reads municipality polygons with their population and
// count columns. Every numeric property other than the population becomes a
// count column.
func ReadRegionsGeoJSON(r io.Reader, opts Options) ([]model.Region, error) {
	features, crs, err := readFeatureCollection(r, opts.SourceCRS)
	if err != nil {
		return nil, err
	}

	regions := make([]model.Region, 0, len(features))
	for i, f := range features {
		region, err := buildRegion(f.Properties, f.Geometry, crs, opts.Fields)
		if err != nil {
			return nil, eris.Wrapf(err, "dataset: region feature %d", i)
		}
		regions = append(regions, region)
	}
	return regions, nil
}

// ReadRegionsShapefile reads municipality polygons from a shapefile. The CRS
// is taken from the accompanying .prj when it names the RD grid.
func ReadRegionsShapefile(path string, opts Options) ([]model.Region, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	crs := opts.SourceCRS
	if prjCRS, ok := readPRJ(path); ok {
		crs = prjCRS
	}

	fields := reader.Fields()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = strings.TrimSpace(strings.TrimRight(f.String(), "\x00"))
	}

	var regions []model.Region
	var skipped int
	for reader.Next() {
		n, shape := reader.Shape()
		g := geo.FromShape(shape)
		if g == nil {
			skipped++
			continue
		}

		props := make(map[string]any, len(names))
		for i, name := range names {
			props[name] = strings.TrimSpace(strings.TrimRight(reader.Attribute(i), "\x00"))
		}

		region, err := buildRegion(props, g, crs, opts.Fields)
		if err != nil {
			return nil, eris.Wrapf(err, "dataset: shapefile record %d", n)
		}
		regions = append(regions, region)
	}

	if skipped > 0 {
		zap.L().Warn("dataset: skipped shapefile records without polygon",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}
	return regions, nil
}

// readPRJ detects the RD grid from a shapefile's .prj WKT.
func readPRJ(shpPath string) (geo.CRS, bool) {
	data, err := os.ReadFile(strings.TrimSuffix(shpPath, filepath.Ext(shpPath)) + ".prj")
	if err != nil {
		return "", false
	}
	wkt := strings.ToLower(string(data))
	switch {
	case strings.Contains(wkt, "amersfoort"), strings.Contains(wkt, "rd_new"):
		return geo.RDNew, true
	case strings.Contains(wkt, "wgs_1984") && strings.HasPrefix(wkt, "geogcs"):
		return geo.WGS84, true
	case strings.Contains(wkt, "pseudo") && strings.Contains(wkt, "mercator"):
		return geo.WebMercator, true
	}
	return "", false
}

func buildRegion(props map[string]any, g geom.T, crs geo.CRS, fields FieldOptions) (model.Region, error) {
	if g == nil {
		return model.Region{}, eris.New("missing geometry")
	}

	nameKey, nameV, ok := lookup(props, fields.keys(fields.Name, nameKeys))
	name := asString(nameV)
	if !ok || name == "" {
		return model.Region{}, eris.New("missing municipality name")
	}
	codeKey, codeV, _ := lookup(props, fields.keys(fields.Code, codeKeys))

	popKey, popV, ok := lookup(props, fields.keys(fields.Population, populationKeys))
	if !ok {
		return model.Region{}, eris.Errorf("municipality %q has no population attribute", name)
	}
	population, _ := asFloat(popV)
	if population < 0 {
		population = 0
	}

	counts := make(map[string]float64)
	for k, v := range props {
		if k == popKey || k == nameKey || k == codeKey {
			continue
		}
		f, ok := asFloat(v)
		if !ok || f < 0 {
			// CBS marks unknown values with large negative sentinels.
			continue
		}
		counts[k] = f
	}

	if err := geo.ToWGS84(g, crs); err != nil {
		return model.Region{}, err
	}
	centroid, err := geo.Centroid(g)
	if err != nil {
		return model.Region{}, eris.Wrapf(err, "municipality %q", name)
	}

	return model.Region{
		Code:       asString(codeV),
		Name:       name,
		Population: population,
		Counts:     counts,
		Centroid:   centroid,
		Geometry:   g,
	}, nil
}
