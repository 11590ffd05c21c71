package model

import (
	"github.com/twpayne/go-geom"
)

// Region is a municipality (gemeente) with its boundary, population and
// monument counts per count column.
type Region struct {
	Code       string             `json:"code"`
	Name       string             `json:"name"`
	Population float64            `json:"population"`
	Counts     map[string]float64 `json:"counts"`
	Centroid   geom.Coord         `json:"centroid"` // lon, lat
	Geometry   geom.T             `json:"-"`
}

// Count returns the sum of the given count columns. Missing columns count
// as zero.
func (r Region) Count(columns []string) float64 {
	var total float64
	for _, c := range columns {
		total += r.Counts[c]
	}
	return total
}

// Monument is a single registered heritage monument.
type Monument struct {
	Number       string  `json:"number"`
	URL          string  `json:"url"`
	Municipality string  `json:"municipality"`
	MainCategory string  `json:"main_category"`
	SubCategory  string  `json:"sub_category"`
	Lon          float64 `json:"lon"`
	Lat          float64 `json:"lat"`
}
