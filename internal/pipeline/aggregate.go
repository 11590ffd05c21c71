package pipeline

import (
	"math"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/monument-map/internal/model"
)

// perCapitaBase is the population unit of the per-capita measure.
const perCapitaBase = 100_000

// Observation is the aggregated value of one municipality.
type Observation struct {
	Code  string  `json:"code,omitempty"`
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	// Display is Value rounded to a whole number for tooltips.
	Display float64 `json:"display"`
	// NoData marks a region whose value could not be computed, such as a
	// per-capita value without a population. It is left out of the
	// classification and the ranking and drawn in the no-data colour.
	NoData bool `json:"no_data,omitempty"`
}

// PerCapita returns count per 100,000 inhabitants.
func PerCapita(count, population float64) (float64, error) {
	if population <= 0 {
		return 0, eris.Errorf("pipeline: population must be positive, got %g", population)
	}
	return count / population * perCapitaBase, nil
}

// Aggregate sums the selected count columns for every region and applies
// the per-capita transform when measure asks for it. The result has one
// observation per region, in region order. Regions that cannot be normalised
// are flagged NoData instead of failing the whole selection.
func Aggregate(regions []model.Region, columns []string, measure Measure) []Observation {
	out := make([]Observation, 0, len(regions))
	var skipped []string
	for _, r := range regions {
		v := r.Count(columns)
		if measure == MeasurePerCapita {
			pc, err := PerCapita(v, r.Population)
			if err != nil {
				skipped = append(skipped, r.Name)
				out = append(out, Observation{Code: r.Code, Name: r.Name, NoData: true})
				continue
			}
			v = pc
		}
		out = append(out, Observation{
			Code:    r.Code,
			Name:    r.Name,
			Value:   v,
			Display: math.Round(v),
		})
	}
	if len(skipped) > 0 {
		zap.L().Warn("pipeline: municipalities without population left out of per-capita map",
			zap.Strings("municipalities", skipped),
		)
	}
	return out
}

// Values returns the values of the observations that have data, in order.
func Values(obs []Observation) []float64 {
	out := make([]float64, 0, len(obs))
	for _, o := range obs {
		if !o.NoData {
			out = append(out, o.Value)
		}
	}
	return out
}
