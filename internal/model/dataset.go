// Package model defines the monument map's data types: regions, monuments,
// the category index and dataset imports.
package model

import "time"

// Dataset is everything the map needs: municipality regions with counts,
// individual monuments and the category to column mapping.
type Dataset struct {
	Regions    []Region       `json:"regions"`
	Monuments  []Monument     `json:"monuments"`
	Categories *CategoryIndex `json:"-"`
	Source     string         `json:"source"`
	LoadedAt   time.Time      `json:"loaded_at"`
}

// Import records one dataset load into the store.
type Import struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Regions   int       `json:"regions"`
	Monuments int       `json:"monuments"`
	Columns   int       `json:"columns"`
	CreatedAt time.Time `json:"created_at"`
}
