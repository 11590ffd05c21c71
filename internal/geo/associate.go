package geo

import (
	"math"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
)

// Area is a named polygonal region a point can be associated with.
type Area struct {
	Name     string
	Geometry geom.T
	Centroid geom.Coord
}

// Match describes the area a point was associated with.
type Match struct {
	Name       string
	Within     bool
	DistanceKM float64 // to the area centroid
}

type indexedArea struct {
	name     string
	bounds   *geom.Bounds
	polygons []*geom.Polygon
	centroid geom.Coord
}

// Locator associates lon/lat points with the area that contains them.
type Locator struct {
	areas []indexedArea
	// MaxNearestKM bounds the nearest-centroid fallback for points outside
	// every area. Zero disables the fallback.
	MaxNearestKM float64
}

// NewLocator indexes areas. Areas without polygonal geometry only take part
// in the nearest-centroid fallback.
func NewLocator(areas []Area) *Locator {
	l := &Locator{areas: make([]indexedArea, 0, len(areas))}
	for _, a := range areas {
		ia := indexedArea{name: a.Name, centroid: a.Centroid}
		switch g := a.Geometry.(type) {
		case *geom.Polygon:
			ia.polygons = []*geom.Polygon{g}
		case *geom.MultiPolygon:
			for i := 0; i < g.NumPolygons(); i++ {
				ia.polygons = append(ia.polygons, g.Polygon(i))
			}
		}
		if a.Geometry != nil && !a.Geometry.Empty() {
			ia.bounds = a.Geometry.Bounds()
		}
		l.areas = append(l.areas, ia)
	}
	return l
}

// Locate returns the area containing (lon, lat). Points on a shared border
// go to the first area in index order.
func (l *Locator) Locate(lon, lat float64) (Match, bool) {
	pt := geom.Coord{lon, lat}
	for _, a := range l.areas {
		if a.bounds == nil || !a.bounds.OverlapsPoint(geom.XY, pt) {
			continue
		}
		for _, p := range a.polygons {
			if polygonContains(p, pt) {
				return Match{Name: a.name, Within: true, DistanceKM: centroidKM(a.centroid, pt)}, true
			}
		}
	}

	if l.MaxNearestKM <= 0 {
		return Match{}, false
	}
	best := Match{DistanceKM: math.Inf(1)}
	for _, a := range l.areas {
		if len(a.centroid) < 2 {
			continue
		}
		if d := centroidKM(a.centroid, pt); d < best.DistanceKM {
			best = Match{Name: a.name, DistanceKM: d}
		}
	}
	if best.Name == "" || best.DistanceKM > l.MaxNearestKM {
		return Match{}, false
	}
	return best, true
}

func polygonContains(p *geom.Polygon, pt geom.Coord) bool {
	if p.NumLinearRings() == 0 {
		return false
	}
	if !xy.IsPointInRing(p.Layout(), pt, p.LinearRing(0).FlatCoords()) {
		return false
	}
	for i := 1; i < p.NumLinearRings(); i++ {
		if xy.IsPointInRing(p.Layout(), pt, p.LinearRing(i).FlatCoords()) {
			return false
		}
	}
	return true
}

const earthRadiusKM = 6371.0

func centroidKM(c, pt geom.Coord) float64 {
	if len(c) < 2 {
		return math.Inf(1)
	}
	return haversineKM(c[1], c[0], pt[1], pt[0])
}

// haversineKM returns the great-circle distance between two WGS84 points.
func haversineKM(lat1, lon1, lat2, lon2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKM * math.Asin(math.Sqrt(a))
}
