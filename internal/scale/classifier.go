package scale

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// LegendEntry is one row of the map legend.
type LegendEntry struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// Classifier binds a Scale to a palette and label format.
type Classifier struct {
	Scale   Scale       `json:"scale"`
	Palette Palette     `json:"palette"`
	Format  LabelFormat `json:"-"`

	// Uniform is set when the scale was degenerate. Computed scales only
	// collapse when every value is zero, so all observations fall in the
	// zero bin and the legend holds just its entry.
	Uniform bool `json:"uniform"`
}

// NewClassifier computes a scale for values and wraps it in a Classifier.
// A degenerate scale is not an error here: the classifier falls back to a
// single uniform colour. Invalid input is returned to the caller.
func NewClassifier(values []float64, method Method, format LabelFormat, palette Palette) (*Classifier, error) {
	s, err := Compute(values, method)
	uniform := false
	if err != nil {
		if !eris.Is(err, ErrDegenerateScale) {
			return nil, err
		}
		zap.L().Debug("scale: degenerate scale, using uniform colour",
			zap.String("method", string(method)),
			zap.Int("values", len(values)),
		)
		uniform = true
	}
	return &Classifier{Scale: s, Palette: palette, Format: format, Uniform: uniform}, nil
}

// Bin returns the bin for v.
func (c *Classifier) Bin(v float64) int {
	return c.Scale.Bin(v)
}

// Color returns the fill colour for v.
func (c *Classifier) Color(v float64) string {
	return c.Palette.Color(c.Scale.Bin(v))
}

// Legend returns the labelled colours, zero bin first.
func (c *Classifier) Legend() []LegendEntry {
	labels := c.Scale.Labels(c.Format)
	out := make([]LegendEntry, len(labels))
	for i, l := range labels {
		out[i] = LegendEntry{Label: l, Color: c.Palette.Color(i)}
	}
	return out
}
