package render

import (
	"html/template"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/monument-map/internal/model"
)

// MarkerTooltip is shown when hovering a monument marker.
const MarkerTooltip = "Klik voor informatie"

var popupTmpl = template.Must(template.New("popup").Parse(
	`<a href="{{.URL}}" target="_blank">Rijksmonumentnummer: {{.Number}}</a>`))

// Markers builds the locations layer: one point feature per monument with a
// popup linking to its register entry.
func Markers(monuments []model.Monument) (*geojson.FeatureCollection, error) {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(monuments))}
	for _, m := range monuments {
		popup, err := Popup(m)
		if err != nil {
			return nil, err
		}
		pt, err := geom.NewPoint(geom.XY).SetCoords(geom.Coord{m.Lon, m.Lat})
		if err != nil {
			return nil, eris.Wrapf(err, "render: monument %s", m.Number)
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       m.Number,
			Geometry: pt,
			Properties: map[string]any{
				PropPopup:        popup,
				PropTooltip:      MarkerTooltip,
				"hoofdcategorie": m.MainCategory,
				"subcategorie":   m.SubCategory,
			},
		})
	}
	return fc, nil
}

// Popup renders the marker popup HTML of a monument.
func Popup(m model.Monument) (string, error) {
	var b strings.Builder
	if err := popupTmpl.Execute(&b, m); err != nil {
		return "", eris.Wrapf(err, "render: popup for monument %s", m.Number)
	}
	return b.String(), nil
}
