// Package dataset loads the monument map inputs: municipality regions with
// counts, the monument lookup and the category to column mapping.
package dataset

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/monument-map/internal/fetcher"
	"github.com/sells-group/monument-map/internal/model"
)

// Sources names the three input files. Each may be a local path or an
// http(s)/ftp URL. Monuments is optional; without it only the density map
// is available.
type Sources struct {
	Regions   string
	Monuments string
	Mapping   string
}

// Loader reads a dataset from its sources.
type Loader struct {
	resolver *fetcher.Resolver
	opts     Options
	workDir  string
}

// NewLoader creates a Loader. workDir receives extracted archives.
func NewLoader(resolver *fetcher.Resolver, opts Options, workDir string) *Loader {
	if workDir == "" {
		workDir = os.TempDir()
	}
	return &Loader{resolver: resolver, opts: opts, workDir: workDir}
}

// Load resolves and parses all sources concurrently.
func (l *Loader) Load(ctx context.Context, src Sources) (*model.Dataset, error) {
	log := zap.L().With(zap.String("component", "dataset.loader"))
	start := time.Now()

	var (
		regions   []model.Region
		monuments []model.Monument
		mapping   []model.CategoryColumn
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		regions, err = l.loadRegions(gctx, src.Regions)
		return err
	})
	if src.Monuments != "" {
		g.Go(func() error {
			var err error
			monuments, err = l.loadMonuments(gctx, src.Monuments)
			return err
		})
	}
	g.Go(func() error {
		var err error
		mapping, err = l.loadMapping(gctx, src.Mapping)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	index, err := model.NewCategoryIndex(mapping)
	if err != nil {
		return nil, eris.Wrap(err, "dataset: build category index")
	}
	if len(regions) == 0 {
		return nil, eris.Errorf("dataset: no regions in %s", src.Regions)
	}
	if n := countUnassigned(monuments); n > 0 {
		var dropped int
		monuments, dropped = assignMunicipalities(regions, monuments, l.opts.MaxNearestKM)
		log.Info("dataset: assigned municipalities from region boundaries",
			zap.Int("assigned", n-dropped),
			zap.Int("dropped", dropped),
		)
	}
	if missing := missingColumns(regions, index); len(missing) > 0 {
		log.Warn("dataset: mapped columns not present in any region",
			zap.Strings("columns", missing),
		)
	}

	log.Info("dataset loaded",
		zap.Int("regions", len(regions)),
		zap.Int("monuments", len(monuments)),
		zap.Int("columns", len(index.AllColumns())),
		zap.Duration("elapsed", time.Since(start)),
	)

	return &model.Dataset{
		Regions:    regions,
		Monuments:  monuments,
		Categories: index,
		Source:     src.Regions,
		LoadedAt:   time.Now().UTC(),
	}, nil
}

func (l *Loader) resolve(ctx context.Context, src string) (string, error) {
	if l.resolver == nil {
		if _, err := os.Stat(src); err != nil {
			return "", eris.Wrapf(err, "dataset: stat %s", src)
		}
		return src, nil
	}
	return l.resolver.Resolve(ctx, src)
}

func (l *Loader) loadRegions(ctx context.Context, src string) ([]model.Region, error) {
	path, err := l.resolve(ctx, src)
	if err != nil {
		return nil, err
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".geojson", ".json":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "dataset: open %s", path)
		}
		defer f.Close() //nolint:errcheck
		return ReadRegionsGeoJSON(f, l.opts)
	case ".shp":
		return ReadRegionsShapefile(path, l.opts)
	case ".zip":
		dest := filepath.Join(l.workDir, strings.TrimSuffix(filepath.Base(path), ext))
		shpPath, err := fetcher.ExtractZIPByExt(path, dest, ".shp")
		if err != nil {
			return nil, eris.Wrap(err, "dataset: extract regions archive")
		}
		return ReadRegionsShapefile(shpPath, l.opts)
	default:
		return nil, eris.Errorf("dataset: unsupported regions format %q", ext)
	}
}

func (l *Loader) loadMonuments(ctx context.Context, src string) ([]model.Monument, error) {
	path, err := l.resolve(ctx, src)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: open %s", path)
	}
	defer f.Close() //nolint:errcheck
	return ReadMonumentsGeoJSON(f, l.opts)
}

func (l *Loader) loadMapping(ctx context.Context, src string) ([]model.CategoryColumn, error) {
	path, err := l.resolve(ctx, src)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".xlsx" {
		return ReadMappingXLSX(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	switch ext {
	case ".csv":
		return ReadMappingCSV(ctx, f)
	case ".yaml", ".yml":
		return ReadMappingYAML(f)
	}
	return nil, eris.Errorf("dataset: unsupported mapping format %q", ext)
}

func missingColumns(regions []model.Region, index *model.CategoryIndex) []string {
	var missing []string
	for _, col := range index.AllColumns() {
		found := false
		for _, r := range regions {
			if _, ok := r.Counts[col]; ok {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, col)
		}
	}
	return missing
}
