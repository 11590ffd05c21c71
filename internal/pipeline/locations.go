package pipeline

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/monument-map/internal/model"
)

// ErrUnknownMunicipality is returned when a selection names a municipality
// that has neither a region nor any monuments in the dataset.
var ErrUnknownMunicipality = eris.New("pipeline: unknown municipality")

// LocationsResult holds the monuments of one municipality.
type LocationsResult struct {
	Selection Selection        `json:"selection"`
	Monuments []model.Monument `json:"monuments"`
	View      View             `json:"view"`
}

// Locations filters the monuments of the selected municipality by main and
// subcategory. The view is centred on all of the municipality's monuments so
// that switching categories does not move the map.
func Locations(ds *model.Dataset, sel Selection) (*LocationsResult, error) {
	sel = sel.Normalize()
	sel.Mode = ModeLocations
	if err := sel.Validate(); err != nil {
		return nil, err
	}
	if ds == nil {
		return nil, eris.New("pipeline: no dataset loaded")
	}

	var inTown []model.Monument
	for _, m := range ds.Monuments {
		if strings.EqualFold(m.Municipality, sel.Municipality) {
			inTown = append(inTown, m)
		}
	}
	region, hasRegion := findRegion(ds.Regions, sel.Municipality)
	if len(inTown) == 0 && !hasRegion {
		return nil, eris.Wrapf(ErrUnknownMunicipality, "%q", sel.Municipality)
	}
	if hasRegion {
		sel.Municipality = region.Name
	} else {
		sel.Municipality = inTown[0].Municipality
	}

	if sel.MainCategory != model.All {
		if !hasMainCategory(ds.Monuments, sel.MainCategory) {
			return nil, eris.Wrapf(model.ErrUnknownCategory, "main category %q", sel.MainCategory)
		}
	}

	res := &LocationsResult{Selection: sel, Monuments: []model.Monument{}}
	for _, m := range inTown {
		if sel.MainCategory != model.All && m.MainCategory != sel.MainCategory {
			continue
		}
		if sel.SubCategory != model.All && m.SubCategory != sel.SubCategory {
			continue
		}
		res.Monuments = append(res.Monuments, m)
	}

	if len(inTown) > 0 {
		res.View = MunicipalityView(inTown)
	} else {
		res.View = regionView(region)
	}
	return res, nil
}

func findRegion(regions []model.Region, name string) (model.Region, bool) {
	for _, r := range regions {
		if strings.EqualFold(r.Name, name) {
			return r, true
		}
	}
	return model.Region{}, false
}

func hasMainCategory(monuments []model.Monument, main string) bool {
	for _, m := range monuments {
		if m.MainCategory == main {
			return true
		}
	}
	return false
}
