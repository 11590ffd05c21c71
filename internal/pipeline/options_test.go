package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/monument-map/internal/model"
	"github.com/sells-group/monument-map/internal/scale"
)

func TestOptions_Density(t *testing.T) {
	ds := testDataset(t)

	opts := Options(ds, Selection{})
	assert.Equal(t, []string{model.All, "Molens", "Religieuze gebouwen"}, opts.MainCategories)
	assert.Equal(t, []string{model.All}, opts.SubCategories)
	assert.Equal(t, []string{"Amsterdam", "Ede", "Utrecht", "Zwolle"}, opts.Municipalities)
	assert.Equal(t, Modes, opts.Modes)
	assert.Equal(t, Measures, opts.Measures)
	assert.Equal(t, scale.Methods, opts.Methods)

	opts = Options(ds, Selection{MainCategory: "Molens"})
	assert.Equal(t, []string{model.All, "Windmolen"}, opts.SubCategories)

	opts = Options(ds, Selection{MainCategory: "Kastelen"})
	assert.Equal(t, []string{model.All}, opts.SubCategories)
}

func TestOptions_Locations(t *testing.T) {
	ds := testDataset(t)

	opts := Options(ds, Selection{Mode: ModeLocations, MainCategory: "Religieuze gebouwen"})
	assert.Equal(t, []string{model.All, "Molens", "Religieuze gebouwen"}, opts.MainCategories)
	assert.Equal(t, []string{model.All, "Kapel", "Kerk"}, opts.SubCategories)
}

func TestOptions_NilDataset(t *testing.T) {
	opts := Options(nil, Selection{})
	assert.Equal(t, []string{model.All}, opts.MainCategories)
	assert.Empty(t, opts.Municipalities)
}

func TestDutchSorted(t *testing.T) {
	in := []string{"Zwolle", "Ede", "Álphen", "Aa en Hunze"}
	assert.Equal(t, []string{"Aa en Hunze", "Álphen", "Ede", "Zwolle"}, dutchSorted(in))
	assert.Equal(t, "Zwolle", in[0], "input is not modified")
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "8", FormatValue(7.6, MeasureAbsolute))
	assert.Equal(t, "12,3", FormatValue(12.34, MeasurePerCapita))
	assert.Equal(t, "12,5%", FormatShare(0.125))
}
