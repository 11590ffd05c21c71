package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/monument-map/internal/config"
	"github.com/sells-group/monument-map/internal/dataset"
	"github.com/sells-group/monument-map/internal/fetcher"
	"github.com/sells-group/monument-map/internal/geo"
	"github.com/sells-group/monument-map/internal/model"
	"github.com/sells-group/monument-map/internal/render"
	"github.com/sells-group/monument-map/internal/scale"
	"github.com/sells-group/monument-map/internal/store"
)

// sourceFlags overrides the dataset sources from config.
type sourceFlags struct {
	regions, monuments, mapping string
}

func (f sourceFlags) sources(c config.DatasetConfig) dataset.Sources {
	src := dataset.Sources{Regions: c.Regions, Monuments: c.Monuments, Mapping: c.Mapping}
	if f.regions != "" {
		src.Regions = f.regions
	}
	if f.monuments != "" {
		src.Monuments = f.monuments
	}
	if f.mapping != "" {
		src.Mapping = f.mapping
	}
	return src
}

func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "init store")
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

func newLoader(c *config.Config) (*dataset.Loader, error) {
	crs, err := geo.ParseCRS(c.Dataset.SourceCRS)
	if err != nil {
		return nil, eris.Wrap(err, "dataset.source_crs")
	}
	resolver := fetcher.NewResolver(c.Dataset.CacheDir,
		fetcher.HTTPOptions{
			UserAgent:  c.Fetch.UserAgent,
			Timeout:    c.Fetch.Timeout(),
			MaxRetries: c.Fetch.MaxRetries,
			RatePerSec: c.Fetch.RatePerSec,
		},
		fetcher.FTPOptions{Timeout: c.Fetch.Timeout()},
	)
	opts := dataset.Options{
		SourceCRS: crs,
		Fields: dataset.FieldOptions{
			Name:       c.Dataset.NameField,
			Code:       c.Dataset.CodeField,
			Population: c.Dataset.PopulationField,
		},
		MaxNearestKM: c.Dataset.MaxNearestKM,
	}
	return dataset.NewLoader(resolver, opts, c.Dataset.CacheDir), nil
}

// loadDataset reads the dataset from the source files when fromFiles is set,
// otherwise the latest import from the store, falling back to the files when
// the store is empty.
func loadDataset(ctx context.Context, fromFiles bool, flags sourceFlags) (*model.Dataset, error) {
	if !fromFiles {
		st, err := initStore(ctx)
		if err != nil {
			return nil, err
		}
		defer st.Close() //nolint:errcheck

		ds, err := st.LoadDataset(ctx, "")
		if err == nil {
			return ds, nil
		}
		if !eris.Is(err, store.ErrNotFound) {
			return nil, eris.Wrap(err, "load dataset from store")
		}
		zap.L().Info("store has no imports, reading source files")
	}

	loader, err := newLoader(cfg)
	if err != nil {
		return nil, err
	}
	return loader.Load(ctx, flags.sources(cfg.Dataset))
}

func paletteFromConfig(m config.MapConfig) scale.Palette {
	p := scale.Palette{Colors: m.Palette, NoDataColor: m.NoDataColor}
	if len(p.Colors) == 0 {
		p.Colors = scale.DefaultPalette.Colors
	}
	if p.NoDataColor == "" {
		p.NoDataColor = scale.DefaultPalette.NoDataColor
	}
	return p
}

func tileLayerFromConfig(m config.MapConfig) render.TileLayer {
	return render.TileLayer{URL: m.TileURL, Attribution: m.Attribution, MaxZoom: m.MaxZoom}.OrDefault()
}
