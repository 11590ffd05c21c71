package render

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/monument-map/internal/model"
	"github.com/sells-group/monument-map/internal/pipeline"
	"github.com/sells-group/monument-map/internal/scale"
)

func square(x, y float64) *geom.MultiPolygon {
	return geom.NewMultiPolygon(geom.XY).MustSetCoords([][][]geom.Coord{{{
		{x, y}, {x + 1, y}, {x + 1, y + 1}, {x, y + 1}, {x, y},
	}}})
}

func testRegions() []model.Region {
	return []model.Region{
		{Code: "GM0001", Name: "Noord", Population: 1000, Counts: map[string]float64{"kerk": 10}, Centroid: geom.Coord{5.5, 53.5}, Geometry: square(5, 53)},
		{Code: "GM0002", Name: "Zuid", Population: 1000, Counts: map[string]float64{"kerk": 0}, Centroid: geom.Coord{5.5, 51.5}, Geometry: square(5, 51)},
		{Code: "GM0003", Name: "Midden", Population: 1000, Counts: map[string]float64{"kerk": 4}, Centroid: geom.Coord{5.5, 52.5}},
	}
}

func TestChoropleth(t *testing.T) {
	ix, err := model.NewCategoryIndex([]model.CategoryColumn{{MainCategory: "Kerken", Column: "kerk"}})
	require.NoError(t, err)
	ds := &model.Dataset{Regions: testRegions(), Categories: ix}

	res, err := pipeline.Density(ds, pipeline.Selection{Method: scale.MethodEqualInterval}, scale.DefaultPalette)
	require.NoError(t, err)

	fc, err := Choropleth(ds.Regions, res, scale.DefaultPalette)
	require.NoError(t, err)
	require.Len(t, fc.Features, 2, "regions without geometry are skipped")

	noord := fc.Features[0]
	assert.Equal(t, "GM0001", noord.ID)
	assert.Equal(t, "Noord", noord.Properties[PropName])
	assert.Equal(t, "10", noord.Properties[PropCount])
	assert.Equal(t, scale.DefaultPalette.Colors[3], noord.Properties[PropFillColor])
	assert.Equal(t, 1, noord.Properties[PropFillOpacity])
	assert.Equal(t, "black", noord.Properties[PropColor])

	zuid := fc.Features[1]
	assert.Equal(t, scale.DefaultPalette.NoDataColor, zuid.Properties[PropFillColor])

	data, err := json.Marshal(fc)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"FeatureCollection"`)
	assert.Contains(t, string(data), `"MultiPolygon"`)
}

func TestChoropleth_PerCapitaWithoutPopulation(t *testing.T) {
	ix, err := model.NewCategoryIndex([]model.CategoryColumn{{MainCategory: "Kerken", Column: "kerk"}})
	require.NoError(t, err)
	regions := testRegions()
	regions[0].Population = 0
	regions[1].Counts["kerk"] = 5
	ds := &model.Dataset{Regions: regions, Categories: ix}

	res, err := pipeline.Density(ds, pipeline.Selection{
		Measure: pipeline.MeasurePerCapita,
		Method:  scale.MethodEqualInterval,
	}, scale.DefaultPalette)
	require.NoError(t, err)

	fc, err := Choropleth(ds.Regions, res, scale.DefaultPalette)
	require.NoError(t, err)
	require.Len(t, fc.Features, 2)
	assert.Equal(t, scale.DefaultPalette.NoDataColor, fc.Features[0].Properties[PropFillColor])
	assert.Equal(t, scale.DefaultPalette.Colors[3], fc.Features[1].Properties[PropFillColor])
}

func TestChoropleth_NilResult(t *testing.T) {
	_, err := Choropleth(testRegions(), nil, scale.DefaultPalette)
	assert.Error(t, err)
}

func TestMarkers(t *testing.T) {
	monuments := []model.Monument{
		{Number: "518212", URL: "https://monumentenregister.cultureelerfgoed.nl/monumenten/518212",
			Municipality: "Ede", MainCategory: "Molens", SubCategory: "Windmolen", Lon: 5.66, Lat: 52.04},
	}
	fc, err := Markers(monuments)
	require.NoError(t, err)
	require.Len(t, fc.Features, 1)

	f := fc.Features[0]
	assert.Equal(t, "518212", f.ID)
	assert.Equal(t, MarkerTooltip, f.Properties[PropTooltip])
	assert.Equal(t,
		`<a href="https://monumentenregister.cultureelerfgoed.nl/monumenten/518212" target="_blank">Rijksmonumentnummer: 518212</a>`,
		f.Properties[PropPopup])

	pt, ok := f.Geometry.(*geom.Point)
	require.True(t, ok)
	assert.Equal(t, []float64{5.66, 52.04}, pt.FlatCoords())
}

func TestMarkers_Empty(t *testing.T) {
	fc, err := Markers(nil)
	require.NoError(t, err)
	assert.Empty(t, fc.Features)
}

func TestPopup_EscapesNumber(t *testing.T) {
	got, err := Popup(model.Monument{Number: "<b>1</b>", URL: "javascript:alert(1)"})
	require.NoError(t, err)
	assert.NotContains(t, got, "<b>")
	assert.NotContains(t, got, "javascript:")
}

func TestLegendHTML(t *testing.T) {
	entries := []scale.LegendEntry{
		{Label: scale.NoMonumentsLabel, Color: "#F0F0F0"},
		{Label: "(0, 15]", Color: "#FCFFC9"},
	}
	got, err := LegendHTML("", entries)
	require.NoError(t, err)
	assert.Contains(t, got, DefaultLegendTitle)
	assert.Contains(t, got, `background:#FCFFC9;`)
	assert.Contains(t, got, "(0, 15]")
	assert.Contains(t, got, "no monuments")

	got, err = LegendHTML("Per 100.000 inwoners", nil)
	require.NoError(t, err)
	assert.Contains(t, got, "Per 100.000 inwoners")
	assert.NotContains(t, got, "<li>")
}

func TestTileLayer_OrDefault(t *testing.T) {
	assert.Equal(t, DefaultTileLayer, TileLayer{}.OrDefault())

	custom := TileLayer{URL: "https://tiles.example/{z}/{x}/{y}.png", Attribution: "x"}.OrDefault()
	assert.Equal(t, "https://tiles.example/{z}/{x}/{y}.png", custom.URL)
	assert.Equal(t, "x", custom.Attribution)
	assert.Equal(t, 19, custom.MaxZoom)
}
