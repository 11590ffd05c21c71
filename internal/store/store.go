// Package store persists imported datasets so the server can start without
// re-reading the source files.
package store

import (
	"context"
	"encoding/json"

	"github.com/rotisserie/eris"

	"github.com/sells-group/monument-map/internal/geo"
	"github.com/sells-group/monument-map/internal/model"
)

// ErrNotFound is returned when no import matches.
var ErrNotFound = eris.New("store: not found")

// Store defines the persistence interface for imported datasets.
type Store interface {
	// SaveDataset stores ds as a new import and returns its record.
	SaveDataset(ctx context.Context, ds *model.Dataset) (*model.Import, error)
	// LoadDataset loads the import with the given ID, or the most recent
	// one when id is empty.
	LoadDataset(ctx context.Context, id string) (*model.Dataset, error)
	// ListImports returns imports newest first. limit <= 0 means all.
	ListImports(ctx context.Context, limit int) ([]model.Import, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// regionRow is a region flattened for storage.
type regionRow struct {
	code, name string
	population float64
	counts     []byte
	lon, lat   float64
	geometry   []byte
}

func encodeRegion(r model.Region) (regionRow, error) {
	counts, err := json.Marshal(r.Counts)
	if err != nil {
		return regionRow{}, eris.Wrapf(err, "store: marshal counts of %s", r.Name)
	}
	g, err := geo.EncodeEWKB(r.Geometry)
	if err != nil {
		return regionRow{}, eris.Wrapf(err, "store: encode geometry of %s", r.Name)
	}
	row := regionRow{code: r.Code, name: r.Name, population: r.Population, counts: counts, geometry: g}
	if len(r.Centroid) >= 2 {
		row.lon, row.lat = r.Centroid[0], r.Centroid[1]
	}
	return row, nil
}

func decodeRegion(row regionRow) (model.Region, error) {
	r := model.Region{
		Code:       row.code,
		Name:       row.name,
		Population: row.population,
		Centroid:   []float64{row.lon, row.lat},
	}
	if err := json.Unmarshal(row.counts, &r.Counts); err != nil {
		return r, eris.Wrapf(err, "store: unmarshal counts of %s", row.name)
	}
	g, err := geo.DecodeEWKB(row.geometry)
	if err != nil {
		return r, eris.Wrapf(err, "store: decode geometry of %s", row.name)
	}
	r.Geometry = g
	return r, nil
}

func newImport(id string, ds *model.Dataset) *model.Import {
	imp := &model.Import{
		ID:        id,
		Source:    ds.Source,
		Regions:   len(ds.Regions),
		Monuments: len(ds.Monuments),
	}
	if ds.Categories != nil {
		imp.Columns = len(ds.Categories.Rows())
	}
	return imp
}

// assemble builds a dataset from stored parts.
func assemble(imp model.Import, regions []model.Region, monuments []model.Monument, mapping []model.CategoryColumn) (*model.Dataset, error) {
	ix, err := model.NewCategoryIndex(mapping)
	if err != nil {
		return nil, eris.Wrapf(err, "store: category index of import %s", imp.ID)
	}
	return &model.Dataset{
		Regions:    regions,
		Monuments:  monuments,
		Categories: ix,
		Source:     imp.Source,
		LoadedAt:   imp.CreatedAt,
	}, nil
}

// Open returns the store for driver: "sqlite" (dsn is a file path) or
// "postgres" (dsn is a connection string).
func Open(ctx context.Context, driver, dsn string) (Store, error) {
	switch driver {
	case "", "sqlite":
		return NewSQLite(dsn)
	case "postgres", "postgresql":
		return NewPostgres(ctx, dsn, nil)
	}
	return nil, eris.Errorf("store: unknown driver %q", driver)
}
