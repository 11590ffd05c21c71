package geo

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"
	"github.com/twpayne/go-geom/xy"
)

// Centroid returns the centroid of g as (x, y).
func Centroid(g geom.T) (geom.Coord, error) {
	if g == nil || g.Empty() {
		return nil, eris.New("geo: centroid of empty geometry")
	}
	c, err := xy.Centroid(g)
	if err != nil {
		return nil, eris.Wrap(err, "geo: centroid")
	}
	return geom.Coord{c.X(), c.Y()}, nil
}

// EncodeEWKB encodes g as little-endian EWKB with SRID 4326.
func EncodeEWKB(g geom.T) ([]byte, error) {
	if g == nil {
		return nil, nil
	}
	switch t := g.(type) {
	case *geom.Point:
		t.SetSRID(4326)
	case *geom.Polygon:
		t.SetSRID(4326)
	case *geom.MultiPolygon:
		t.SetSRID(4326)
	}
	data, err := ewkb.Marshal(g, ewkb.NDR)
	if err != nil {
		return nil, eris.Wrap(err, "geo: encode EWKB")
	}
	return data, nil
}

// DecodeEWKB decodes EWKB produced by EncodeEWKB. Empty input yields nil.
func DecodeEWKB(data []byte) (geom.T, error) {
	if len(data) == 0 {
		return nil, nil
	}
	g, err := ewkb.Unmarshal(data)
	if err != nil {
		return nil, eris.Wrap(err, "geo: decode EWKB")
	}
	return g, nil
}
