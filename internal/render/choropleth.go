// Package render turns pipeline results into map layers: GeoJSON feature
// collections styled for a Leaflet-style client and an HTML legend.
package render

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/monument-map/internal/model"
	"github.com/sells-group/monument-map/internal/pipeline"
	"github.com/sells-group/monument-map/internal/scale"
)

// Feature property names read by the map client.
const (
	PropName        = "naam"
	PropCount       = "aantal monumenten"
	PropValue       = "value"
	PropFillColor   = "fillColor"
	PropFillOpacity = "fillOpacity"
	PropWeight      = "weight"
	PropColor       = "color"
	PropPopup       = "popup"
	PropTooltip     = "tooltip"
)

// Outline style of every municipality polygon.
const (
	fillOpacity  = 1
	outlineWidth = 1
	outlineColor = "black"
)

// Choropleth builds the density layer: one polygon feature per region,
// filled by its classified value. Regions without geometry or without an
// observation are skipped.
func Choropleth(regions []model.Region, res *pipeline.DensityResult, palette scale.Palette) (*geojson.FeatureCollection, error) {
	if res == nil {
		return nil, eris.New("render: no density result")
	}
	byName := make(map[string]pipeline.Observation, len(res.Observations))
	for _, o := range res.Observations {
		byName[o.Name] = o
	}

	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(regions))}
	for _, r := range regions {
		if r.Geometry == nil {
			continue
		}
		o, ok := byName[r.Name]
		if !ok {
			continue
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       r.Code,
			Geometry: r.Geometry,
			Properties: map[string]any{
				PropName:        r.Name,
				PropCount:       pipeline.FormatValue(o.Display, pipeline.MeasureAbsolute),
				PropValue:       o.Value,
				PropFillColor:   res.ObservationColor(o, palette),
				PropFillOpacity: fillOpacity,
				PropWeight:      outlineWidth,
				PropColor:       outlineColor,
			},
		})
	}
	return fc, nil
}
