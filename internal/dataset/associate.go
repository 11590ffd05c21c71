package dataset

import (
	"github.com/sells-group/monument-map/internal/geo"
	"github.com/sells-group/monument-map/internal/model"
)

func countUnassigned(monuments []model.Monument) int {
	n := 0
	for _, m := range monuments {
		if m.Municipality == "" {
			n++
		}
	}
	return n
}

// assignMunicipalities fills in the municipality of monuments that lack one
// by locating them in the region boundaries. Monuments that cannot be
// located are dropped; the second result is how many.
func assignMunicipalities(regions []model.Region, monuments []model.Monument, maxNearestKM float64) ([]model.Monument, int) {
	areas := make([]geo.Area, len(regions))
	for i, r := range regions {
		areas[i] = geo.Area{Name: r.Name, Geometry: r.Geometry, Centroid: r.Centroid}
	}
	loc := geo.NewLocator(areas)
	loc.MaxNearestKM = maxNearestKM

	out := monuments[:0]
	dropped := 0
	for _, m := range monuments {
		if m.Municipality == "" {
			match, ok := loc.Locate(m.Lon, m.Lat)
			if !ok {
				dropped++
				continue
			}
			m.Municipality = match.Name
		}
		out = append(out, m)
	}
	return out, dropped
}
