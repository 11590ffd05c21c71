package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/monument-map/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS imports (
	id             TEXT PRIMARY KEY,
	source         TEXT NOT NULL,
	region_count   INTEGER NOT NULL DEFAULT 0,
	monument_count INTEGER NOT NULL DEFAULT 0,
	column_count   INTEGER NOT NULL DEFAULT 0,
	created_at     DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS regions (
	import_id    TEXT NOT NULL REFERENCES imports(id) ON DELETE CASCADE,
	position     INTEGER NOT NULL,
	code         TEXT NOT NULL,
	name         TEXT NOT NULL,
	population   REAL NOT NULL,
	counts       TEXT NOT NULL,
	centroid_lon REAL NOT NULL,
	centroid_lat REAL NOT NULL,
	geom         BLOB,
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
	lon           REAL NOT NULL,
	lat           REAL NOT NULL,
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

CREATE INDEX IF NOT EXISTS idx_imports_created_at ON imports(created_at);
CREATE INDEX IF NOT EXISTS idx_monuments_municipality ON monuments(import_id, municipality);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveDataset(ctx context.Context, ds *model.Dataset) (*model.Import, error) {
	if ds == nil {
		return nil, eris.New("sqlite: nil dataset")
	}
	imp := newImport(uuid.New().String(), ds)
	imp.CreatedAt = time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx,
		`INSERT INTO imports (id, source, region_count, monument_count, column_count, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		imp.ID, imp.Source, imp.Regions, imp.Monuments, imp.Columns, imp.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert import")
	}

	for i, r := range ds.Regions {
		row, err := encodeRegion(r)
		if err != nil {
			return nil, err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO regions (import_id, position, code, name, population, counts, centroid_lon, centroid_lat, geom)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			imp.ID, i, row.code, row.name, row.population, string(row.counts), row.lon, row.lat, row.geometry,
		)
		if err != nil {
			return nil, eris.Wrapf(err, "sqlite: insert region %s", r.Name)
		}
	}

	for i, m := range ds.Monuments {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO monuments (import_id, position, number, url, municipality, main_category, sub_category, lon, lat)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			imp.ID, i, m.Number, m.URL, m.Municipality, m.MainCategory, m.SubCategory, m.Lon, m.Lat,
		)
		if err != nil {
			return nil, eris.Wrapf(err, "sqlite: insert monument %s", m.Number)
		}
	}

	if ds.Categories != nil {
		for i, c := range ds.Categories.Rows() {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO category_columns (import_id, position, main_category, sub_category, column_name) VALUES (?, ?, ?, ?, ?)`,
				imp.ID, i, c.MainCategory, c.SubCategory, c.Column,
			)
			if err != nil {
				return nil, eris.Wrapf(err, "sqlite: insert category column %s", c.Column)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "sqlite: commit import")
	}
	return imp, nil
}

func (s *SQLiteStore) LoadDataset(ctx context.Context, id string) (*model.Dataset, error) {
	var row *sql.Row
	if id == "" {
		row = s.db.QueryRowContext(ctx,
			`SELECT id, source, region_count, monument_count, column_count, created_at FROM imports ORDER BY created_at DESC, rowid DESC LIMIT 1`)
	} else {
		row = s.db.QueryRowContext(ctx,
			`SELECT id, source, region_count, monument_count, column_count, created_at FROM imports WHERE id = ?`, id)
	}
	imp, err := scanImport(row)
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

func (s *SQLiteStore) loadRegions(ctx context.Context, importID string) ([]model.Region, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT code, name, population, counts, centroid_lon, centroid_lat, geom FROM regions WHERE import_id = ? ORDER BY position`,
		importID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query regions")
	}
	defer rows.Close()

	var out []model.Region
	for rows.Next() {
		var rr regionRow
		var counts string
		if err := rows.Scan(&rr.code, &rr.name, &rr.population, &counts, &rr.lon, &rr.lat, &rr.geometry); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan region")
		}
		rr.counts = []byte(counts)
		r, err := decodeRegion(rr)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate regions")
}

func (s *SQLiteStore) loadMonuments(ctx context.Context, importID string) ([]model.Monument, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT number, url, municipality, main_category, sub_category, lon, lat FROM monuments WHERE import_id = ? ORDER BY position`,
		importID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query monuments")
	}
	defer rows.Close()

	var out []model.Monument
	for rows.Next() {
		var m model.Monument
		if err := rows.Scan(&m.Number, &m.URL, &m.Municipality, &m.MainCategory, &m.SubCategory, &m.Lon, &m.Lat); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan monument")
		}
		out = append(out, m)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate monuments")
}

func (s *SQLiteStore) loadMapping(ctx context.Context, importID string) ([]model.CategoryColumn, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT main_category, sub_category, column_name FROM category_columns WHERE import_id = ? ORDER BY position`,
		importID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query category columns")
	}
	defer rows.Close()

	var out []model.CategoryColumn
	for rows.Next() {
		var c model.CategoryColumn
		if err := rows.Scan(&c.MainCategory, &c.SubCategory, &c.Column); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan category column")
		}
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate category columns")
}

func (s *SQLiteStore) ListImports(ctx context.Context, limit int) ([]model.Import, error) {
	query := `SELECT id, source, region_count, monument_count, column_count, created_at FROM imports ORDER BY created_at DESC, rowid DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list imports")
	}
	defer rows.Close()

	var out []model.Import
	for rows.Next() {
		imp, err := scanImport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *imp)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate imports")
}

type scannable interface {
	Scan(dest ...any) error
}

func scanImport(row scannable) (*model.Import, error) {
	var imp model.Import
	err := row.Scan(&imp.ID, &imp.Source, &imp.Regions, &imp.Monuments, &imp.Columns, &imp.CreatedAt)
	if eris.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrap(ErrNotFound, "sqlite: import")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan import")
	}
	return &imp, nil
}
