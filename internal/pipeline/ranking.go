package pipeline

import (
	"sort"
)

// RankRow is one line of the ordered municipality table.
type RankRow struct {
	Rank  int     `json:"rank"`
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	// Share of the national total; only set for absolute counts.
	Share *float64 `json:"share,omitempty"`
}

// Rank orders observations by value, highest first, ties by name. Shares of
// the national total are added for absolute counts, where they are
// meaningful. NoData observations are not ranked.
func Rank(obs []Observation, measure Measure) []RankRow {
	sorted := make([]Observation, 0, len(obs))
	for _, o := range obs {
		if !o.NoData {
			sorted = append(sorted, o)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Value != sorted[j].Value {
			return sorted[i].Value > sorted[j].Value
		}
		return sorted[i].Name < sorted[j].Name
	})

	var total float64
	for _, o := range sorted {
		total += o.Value
	}

	rows := make([]RankRow, len(sorted))
	for i, o := range sorted {
		rows[i] = RankRow{Rank: i + 1, Name: o.Name, Value: o.Value}
		if measure == MeasureAbsolute {
			share := 0.0
			if total > 0 {
				share = o.Value / total
			}
			rows[i].Share = &share
		}
	}
	return rows
}
