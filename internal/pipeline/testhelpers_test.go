package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/monument-map/internal/model"
)

func testDataset(t *testing.T) *model.Dataset {
	t.Helper()
	ix, err := model.NewCategoryIndex([]model.CategoryColumn{
		{MainCategory: "Religieuze gebouwen", SubCategory: "Kerk", Column: "kerk"},
		{MainCategory: "Molens", SubCategory: "Windmolen", Column: "molen"},
	})
	require.NoError(t, err)

	return &model.Dataset{
		Regions: []model.Region{
			{Code: "GM0363", Name: "Amsterdam", Population: 900000,
				Counts: map[string]float64{"kerk": 40, "molen": 10}, Centroid: geom.Coord{4.90, 52.37}},
			{Code: "GM0344", Name: "Utrecht", Population: 400000,
				Counts: map[string]float64{"kerk": 20, "molen": 0}, Centroid: geom.Coord{5.12, 52.09}},
			{Code: "GM0193", Name: "Zwolle", Population: 130000,
				Counts: map[string]float64{"kerk": 0, "molen": 0}, Centroid: geom.Coord{6.09, 52.51}},
			{Code: "GM0228", Name: "Ede", Population: 120000,
				Counts: map[string]float64{"kerk": 10, "molen": 30}, Centroid: geom.Coord{5.66, 52.04}},
		},
		Monuments: []model.Monument{
			{Number: "1", Municipality: "Amsterdam", MainCategory: "Religieuze gebouwen", SubCategory: "Kerk", Lon: 4.88, Lat: 52.37},
			{Number: "2", Municipality: "Amsterdam", MainCategory: "Molens", SubCategory: "Windmolen", Lon: 4.90, Lat: 52.38},
			{Number: "3", Municipality: "Amsterdam", MainCategory: "Religieuze gebouwen", SubCategory: "Kapel", Lon: 4.92, Lat: 52.36},
			{Number: "4", Municipality: "Utrecht", MainCategory: "Religieuze gebouwen", SubCategory: "Kerk", Lon: 5.12, Lat: 52.09},
		},
		Categories: ix,
		Source:     "test",
	}
}
