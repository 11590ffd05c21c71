package dataset

import (
	"io"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/monument-map/internal/geo"
	"github.com/sells-group/monument-map/internal/model"
)

// ReadMonumentsGeoJSON reads the monument lookup: one Point feature per
// monument with its municipality, categories, register number and URL.
// The municipality may be empty; the loader then assigns one from the region
// boundaries.
func ReadMonumentsGeoJSON(r io.Reader, opts Options) ([]model.Monument, error) {
	features, crs, err := readFeatureCollection(r, opts.SourceCRS)
	if err != nil {
		return nil, err
	}

	monuments := make([]model.Monument, 0, len(features))
	for i, f := range features {
		pt, ok := f.Geometry.(*geom.Point)
		if !ok || pt.Empty() {
			return nil, eris.Errorf("dataset: monument feature %d has no point geometry", i)
		}
		if err := geo.ToWGS84(pt, crs); err != nil {
			return nil, eris.Wrapf(err, "dataset: monument feature %d", i)
		}

		m := model.Monument{
			Number:       asString(f.Properties[propNumber]),
			URL:          asString(f.Properties[propURL]),
			Municipality: asString(f.Properties[propMunicipality]),
			MainCategory: asString(f.Properties[propMainCategory]),
			SubCategory:  asString(f.Properties[propSubCategory]),
			Lon:          pt.X(),
			Lat:          pt.Y(),
		}
		monuments = append(monuments, m)
	}
	return monuments, nil
}
