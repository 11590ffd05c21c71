package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/monument-map/internal/db"
	"github.com/sells-group/monument-map/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS imports (
	id             TEXT PRIMARY KEY,
	source         TEXT NOT NULL,
	region_count   INTEGER NOT NULL DEFAULT 0,
	monument_count INTEGER NOT NULL DEFAULT 0,
	column_count   INTEGER NOT NULL DEFAULT 0,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS regions (
	import_id    TEXT NOT NULL REFERENCES imports(id) ON DELETE CASCADE,
	position     INTEGER NOT NULL,
	code         TEXT NOT NULL,
	name         TEXT NOT NULL,
	population   DOUBLE PRECISION NOT NULL,
	counts       JSONB NOT NULL,
	centroid_lon DOUBLE PRECISION NOT NULL,
	centroid_lat DOUBLE PRECISION NOT NULL,
	geom         BYTEA,
	PRIMARY KEY (import_id, position)
);

CREATE TABLE IF NOT EXISTS monuments (
	import_id     TEXT NOT NULL REFERENCES imports(id) ON DELETE CASCADE,
	position      INTEGER NOT NULL,
	number        TEXT NOT NULL,
	url           TEXT NOT NULL,
	municipality  TEXT NOT NULL,
	main_category TEXT NOT NULL,
	sub_category  TEXT NOT NULL,
	lon           DOUBLE PRECISION NOT NULL,
	lat           DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (import_id, position)
);

CREATE TABLE IF NOT EXISTS category_columns (
	import_id     TEXT NOT NULL REFERENCES imports(id) ON DELETE CASCADE,
	position      INTEGER NOT NULL,
	main_category TEXT NOT NULL,
	sub_category  TEXT NOT NULL,
	column_name   TEXT NOT NULL,
	PRIMARY KEY (import_id, position)
);

CREATE INDEX IF NOT EXISTS idx_imports_created_at ON imports(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_monuments_municipality ON monuments(import_id, municipality);
`

var (
	regionColumns   = []string{"import_id", "position", "code", "name", "population", "counts", "centroid_lon", "centroid_lat", "geom"}
	monumentColumns = []string{"import_id", "position", "number", "url", "municipality", "main_category", "sub_category", "lon", "lat"}
	categoryColumns = []string{"import_id", "position", "main_category", "sub_category", "column_name"}
)

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) SaveDataset(ctx context.Context, ds *model.Dataset) (*model.Import, error) {
	if ds == nil {
		return nil, eris.New("postgres: nil dataset")
	}
	imp := newImport(uuid.New().String(), ds)
	imp.CreatedAt = time.Now().UTC()

	regionRows := make([][]any, 0, len(ds.Regions))
	for i, r := range ds.Regions {
		row, err := encodeRegion(r)
		if err != nil {
			return nil, err
		}
		regionRows = append(regionRows, []any{
			imp.ID, i, row.code, row.name, row.population, row.counts, row.lon, row.lat, row.geometry,
		})
	}
	monumentRows := make([][]any, 0, len(ds.Monuments))
	for i, m := range ds.Monuments {
		monumentRows = append(monumentRows, []any{
			imp.ID, i, m.Number, m.URL, m.Municipality, m.MainCategory, m.SubCategory, m.Lon, m.Lat,
		})
	}
	var mappingRows [][]any
	if ds.Categories != nil {
		for i, c := range ds.Categories.Rows() {
			mappingRows = append(mappingRows, []any{imp.ID, i, c.MainCategory, c.SubCategory, c.Column})
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	_, err = tx.Exec(ctx,
		`INSERT INTO imports (id, source, region_count, monument_count, column_count, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		imp.ID, imp.Source, imp.Regions, imp.Monuments, imp.Columns, imp.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert import")
	}
	if _, err := db.CopyFrom(ctx, tx, "regions", regionColumns, regionRows); err != nil {
		return nil, err
	}
	if _, err := db.CopyFrom(ctx, tx, "monuments", monumentColumns, monumentRows); err != nil {
		return nil, err
	}
	if _, err := db.CopyFrom(ctx, tx, "category_columns", categoryColumns, mappingRows); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, eris.Wrap(err, "postgres: commit import")
	}
	return imp, nil
}

func (s *PostgresStore) LoadDataset(ctx context.Context, id string) (*model.Dataset, error) {
	var row pgx.Row
	if id == "" {
		row = s.pool.QueryRow(ctx,
			`SELECT id, source, region_count, monument_count, column_count, created_at FROM imports ORDER BY created_at DESC LIMIT 1`)
	} else {
		row = s.pool.QueryRow(ctx,
			`SELECT id, source, region_count, monument_count, column_count, created_at FROM imports WHERE id = $1`, id)
	}
	imp, err := scanPgImport(row)
	if err != nil {
		return nil, err
	}

	regions, err := s.loadRegions(ctx, imp.ID)
	if err != nil {
		return nil, err
	}
	monuments, err := s.loadMonuments(ctx, imp.ID)
	if err != nil {
		return nil, err
	}
	mapping, err := s.loadMapping(ctx, imp.ID)
	if err != nil {
		return nil, err
	}
	return assemble(*imp, regions, monuments, mapping)
}

func (s *PostgresStore) loadRegions(ctx context.Context, importID string) ([]model.Region, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT code, name, population, counts, centroid_lon, centroid_lat, geom FROM regions WHERE import_id = $1 ORDER BY position`,
		importID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query regions")
	}
	defer rows.Close()

	var out []model.Region
	for rows.Next() {
		var rr regionRow
		if err := rows.Scan(&rr.code, &rr.name, &rr.population, &rr.counts, &rr.lon, &rr.lat, &rr.geometry); err != nil {
			return nil, eris.Wrap(err, "postgres: scan region")
		}
		r, err := decodeRegion(rr)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate regions")
}

func (s *PostgresStore) loadMonuments(ctx context.Context, importID string) ([]model.Monument, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT number, url, municipality, main_category, sub_category, lon, lat FROM monuments WHERE import_id = $1 ORDER BY position`,
		importID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query monuments")
	}
	defer rows.Close()

	var out []model.Monument
	for rows.Next() {
		var m model.Monument
		if err := rows.Scan(&m.Number, &m.URL, &m.Municipality, &m.MainCategory, &m.SubCategory, &m.Lon, &m.Lat); err != nil {
			return nil, eris.Wrap(err, "postgres: scan monument")
		}
		out = append(out, m)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate monuments")
}

func (s *PostgresStore) loadMapping(ctx context.Context, importID string) ([]model.CategoryColumn, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT main_category, sub_category, column_name FROM category_columns WHERE import_id = $1 ORDER BY position`,
		importID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query category columns")
	}
	defer rows.Close()

	var out []model.CategoryColumn
	for rows.Next() {
		var c model.CategoryColumn
		if err := rows.Scan(&c.MainCategory, &c.SubCategory, &c.Column); err != nil {
			return nil, eris.Wrap(err, "postgres: scan category column")
		}
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate category columns")
}

func (s *PostgresStore) ListImports(ctx context.Context, limit int) ([]model.Import, error) {
	query := `SELECT id, source, region_count, monument_count, column_count, created_at FROM imports ORDER BY created_at DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list imports")
	}
	defer rows.Close()

	var out []model.Import
	for rows.Next() {
		imp, err := scanPgImport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *imp)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate imports")
}

func scanPgImport(row pgx.Row) (*model.Import, error) {
	var imp model.Import
	err := row.Scan(&imp.ID, &imp.Source, &imp.Regions, &imp.Monuments, &imp.Columns, &imp.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrap(ErrNotFound, "postgres: import")
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan import")
	}
	return &imp, nil
}
