package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/monument-map/internal/config"
	"github.com/sells-group/monument-map/internal/model"
	"github.com/sells-group/monument-map/internal/store"
)

func testDataset(t *testing.T) *model.Dataset {
	t.Helper()
	ix, err := model.NewCategoryIndex([]model.CategoryColumn{
		{MainCategory: "Religieuze gebouwen", SubCategory: "Kerk", Column: "kerk"},
		{MainCategory: "Molens", SubCategory: "Windmolen", Column: "molen"},
	})
	require.NoError(t, err)
	return &model.Dataset{
		Regions: []model.Region{
			{Code: "GM0344", Name: "Utrecht", Population: 400000,
				Counts: map[string]float64{"kerk": 20, "molen": 0}, Centroid: geom.Coord{5.12, 52.09}},
			{Code: "GM0363", Name: "Amsterdam", Population: 900000,
				Counts: map[string]float64{"kerk": 40, "molen": 0}, Centroid: geom.Coord{4.90, 52.37}},
			{Code: "GM0228", Name: "Ede", Population: 120000,
				Counts: map[string]float64{"kerk": 10, "molen": 0}, Centroid: geom.Coord{5.66, 52.04}},
		},
		Categories: ix,
		Source:     "cmd-test",
	}
}

// sqliteConfig points cfg at a fresh SQLite file and returns its path.
func sqliteConfig(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "cmd.db")
	cfg = &config.Config{
		Store: config.StoreConfig{Driver: "sqlite", DatabaseURL: dbPath},
	}
	return dbPath
}

func seedStore(t *testing.T, dbPath string, ds *model.Dataset) *model.Import {
	t.Helper()
	st, err := store.NewSQLite(dbPath)
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	imp, err := st.SaveDataset(context.Background(), ds)
	require.NoError(t, err)
	return imp
}
