package pipeline

import (
	"slices"

	"github.com/rotisserie/eris"

	"github.com/sells-group/monument-map/internal/model"
)

// Zoom levels of the two map modes.
const (
	ZoomNational     = 7
	ZoomMunicipality = 12
)

// View is the initial map viewport.
type View struct {
	Lon  float64 `json:"lon"`
	Lat  float64 `json:"lat"`
	Zoom int     `json:"zoom"`
}

// centerOf returns the median longitude and mean latitude of the points.
// The median keeps the national view from drifting toward the Wadden
// islands; latitude is spread evenly enough for a mean.
func centerOf(lons, lats []float64) (float64, float64, error) {
	if len(lons) == 0 || len(lons) != len(lats) {
		return 0, 0, eris.New("pipeline: no points to center on")
	}
	sorted := slices.Clone(lons)
	slices.Sort(sorted)
	var median float64
	n := len(sorted)
	if n%2 == 1 {
		median = sorted[n/2]
	} else {
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	}

	var sum float64
	for _, v := range lats {
		sum += v
	}
	return median, sum / float64(len(lats)), nil
}

// DefaultView is used when there is nothing to centre on.
var DefaultView = View{Lon: 5.2913, Lat: 52.1326, Zoom: ZoomNational}

// NationalView centres the choropleth on the region centroids.
func NationalView(regions []model.Region) View {
	lons := make([]float64, 0, len(regions))
	lats := make([]float64, 0, len(regions))
	for _, r := range regions {
		if len(r.Centroid) < 2 {
			continue
		}
		lons = append(lons, r.Centroid[0])
		lats = append(lats, r.Centroid[1])
	}
	lon, lat, err := centerOf(lons, lats)
	if err != nil {
		return DefaultView
	}
	return View{Lon: lon, Lat: lat, Zoom: ZoomNational}
}

// MunicipalityView centres on a set of monuments.
func MunicipalityView(monuments []model.Monument) View {
	lons := make([]float64, len(monuments))
	lats := make([]float64, len(monuments))
	for i, m := range monuments {
		lons[i], lats[i] = m.Lon, m.Lat
	}
	lon, lat, err := centerOf(lons, lats)
	if err != nil {
		return View{Lon: DefaultView.Lon, Lat: DefaultView.Lat, Zoom: ZoomMunicipality}
	}
	return View{Lon: lon, Lat: lat, Zoom: ZoomMunicipality}
}

func regionView(r model.Region) View {
	if len(r.Centroid) < 2 {
		return View{Lon: DefaultView.Lon, Lat: DefaultView.Lat, Zoom: ZoomMunicipality}
	}
	return View{Lon: r.Centroid[0], Lat: r.Centroid[1], Zoom: ZoomMunicipality}
}
