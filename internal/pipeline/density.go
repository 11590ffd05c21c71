package pipeline

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/monument-map/internal/model"
	"github.com/sells-group/monument-map/internal/scale"
)

// DensityResult is everything the national choropleth needs.
type DensityResult struct {
	Selection    Selection           `json:"selection"`
	Observations []Observation       `json:"observations"`
	Classifier   *scale.Classifier   `json:"classifier,omitempty"`
	Legend       []scale.LegendEntry `json:"legend"`
	Ranking      []RankRow           `json:"ranking"`
	View         View                `json:"view"`

	// NoData is set when there was nothing valid to classify. The map is
	// then drawn without fills and the legend is empty.
	NoData bool `json:"no_data"`
}

// Color returns the fill colour of an observation, or the palette's no-data
// colour when the result has no classifier.
func (r *DensityResult) Color(v float64, palette scale.Palette) string {
	if r.Classifier == nil {
		return palette.NoDataColor
	}
	return r.Classifier.Color(v)
}

// ObservationColor is Color for o, giving NoData observations the no-data
// colour.
func (r *DensityResult) ObservationColor(o Observation, palette scale.Palette) string {
	if o.NoData {
		return palette.NoDataColor
	}
	return r.Color(o.Value, palette)
}

// Density aggregates the selected category per municipality and classifies
// the result. Invalid input to the classifier yields a NoData result rather
// than an error; a degenerate scale falls back to a uniform colour.
func Density(ds *model.Dataset, sel Selection, palette scale.Palette) (*DensityResult, error) {
	log := zap.L().With(zap.String("component", "pipeline.density"))

	sel = sel.Normalize()
	sel.Mode = ModeDensity
	sel.Municipality = ""
	if err := sel.Validate(); err != nil {
		return nil, err
	}
	if ds == nil || ds.Categories == nil {
		return nil, eris.New("pipeline: no dataset loaded")
	}

	columns, err := ds.Categories.Columns(sel.MainCategory, sel.SubCategory)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: resolve columns")
	}
	obs := Aggregate(ds.Regions, columns, sel.Measure)

	res := &DensityResult{
		Selection:    sel,
		Observations: obs,
		Ranking:      Rank(obs, sel.Measure),
		View:         NationalView(ds.Regions),
	}

	format := scale.LabelFormatFor(sel.Method, sel.Measure == MeasureAbsolute)
	c, err := scale.NewClassifier(Values(obs), sel.Method, format, palette)
	if err != nil {
		if !eris.Is(err, scale.ErrInvalidInput) {
			return nil, eris.Wrap(err, "pipeline: classify")
		}
		log.Warn("pipeline: nothing to classify",
			zap.String("main", sel.MainCategory),
			zap.String("sub", sel.SubCategory),
			zap.Error(err),
		)
		res.NoData = true
		res.Legend = []scale.LegendEntry{}
		return res, nil
	}

	res.Classifier = c
	res.Legend = c.Legend()
	log.Debug("pipeline: density classified",
		zap.String("method", string(sel.Method)),
		zap.Float64s("bounds", c.Scale.Bounds),
		zap.Bool("uniform", c.Uniform),
	)
	return res, nil
}
