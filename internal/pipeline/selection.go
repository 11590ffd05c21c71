package pipeline

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/monument-map/internal/model"
	"github.com/sells-group/monument-map/internal/scale"
)

// MapMode selects the map visualisation.
type MapMode string

// Map modes.
const (
	ModeDensity   MapMode = "density"   // national choropleth by municipality
	ModeLocations MapMode = "locations" // monument markers in one municipality
)

// Modes lists the map modes in display order.
var Modes = []MapMode{ModeDensity, ModeLocations}

// Measure selects absolute counts or counts per 100,000 inhabitants.
type Measure string

// Measures.
const (
	MeasureAbsolute  Measure = "absolute"
	MeasurePerCapita Measure = "per-capita"
)

// Measures lists the measures in display order.
var Measures = []Measure{MeasureAbsolute, MeasurePerCapita}

// ErrInvalidSelection is returned for selections that cannot be evaluated.
var ErrInvalidSelection = eris.New("pipeline: invalid selection")

// ParseMapMode parses a map mode; the Dutch dashboard labels are accepted.
func ParseMapMode(s string) (MapMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "density", "landelijke dichtheid":
		return ModeDensity, nil
	case "locations", "monumentlocaties per gemeente":
		return ModeLocations, nil
	}
	return "", eris.Wrapf(ErrInvalidSelection, "unknown map mode %q", s)
}

// ParseMeasure parses a measure; the Dutch dashboard labels are accepted.
func ParseMeasure(s string) (Measure, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "absolute", "totaal aantal":
		return MeasureAbsolute, nil
	case "per-capita", "per_capita", "afgerond aantal per 100.000 inwoners":
		return MeasurePerCapita, nil
	}
	return "", eris.Wrapf(ErrInvalidSelection, "unknown measure %q", s)
}

// Selection is the complete set of user choices driving one map render.
// Every change produces a new Selection and a fresh pipeline run.
type Selection struct {
	Mode         MapMode      `json:"mode"`
	MainCategory string       `json:"main"`
	SubCategory  string       `json:"sub"`
	Municipality string       `json:"municipality,omitempty"`
	Measure      Measure      `json:"measure"`
	Method       scale.Method `json:"method"`
}

// Normalize fills defaults and folds the "all" aliases. A subcategory is
// meaningless without a main category and is cleared.
func (s Selection) Normalize() Selection {
	if s.Mode == "" {
		s.Mode = ModeDensity
	}
	if s.Measure == "" {
		s.Measure = MeasureAbsolute
	}
	if s.Method == "" {
		s.Method = scale.MethodQuantile
	}
	s.MainCategory = strings.TrimSpace(s.MainCategory)
	s.SubCategory = strings.TrimSpace(s.SubCategory)
	s.Municipality = strings.TrimSpace(s.Municipality)
	if model.IsAll(s.MainCategory) {
		s.MainCategory = model.All
	}
	if model.IsAll(s.SubCategory) || s.MainCategory == model.All {
		s.SubCategory = model.All
	}
	return s
}

// Validate checks a normalised selection.
func (s Selection) Validate() error {
	switch s.Mode {
	case ModeDensity:
	case ModeLocations:
		if s.Municipality == "" {
			return eris.Wrap(ErrInvalidSelection, "locations map needs a municipality")
		}
	default:
		return eris.Wrapf(ErrInvalidSelection, "unknown map mode %q", s.Mode)
	}
	if s.Measure != MeasureAbsolute && s.Measure != MeasurePerCapita {
		return eris.Wrapf(ErrInvalidSelection, "unknown measure %q", s.Measure)
	}
	switch s.Method {
	case scale.MethodQuantile, scale.MethodEqualInterval, scale.MethodPowerOfTen:
	default:
		return eris.Wrapf(ErrInvalidSelection, "unknown classification method %q", s.Method)
	}
	return nil
}

// Key identifies the selection for caching.
func (s Selection) Key() string {
	return strings.Join([]string{
		string(s.Mode), s.MainCategory, s.SubCategory, s.Municipality, string(s.Measure), string(s.Method),
	}, "\x1f")
}
