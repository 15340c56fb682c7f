// Package store provides the SQLite-backed ledger store.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/ctessum/geom"
	_ "github.com/mattn/go-sqlite3" // sqlite driver

	"github.com/coastgrid/coastgrid/internal/adapters/geojson"
	"github.com/coastgrid/coastgrid/internal/domain"
)

// SQLiteStore implements the LedgerStore port. It persists one snapshot
// at a time: the cell table, the three side maps, and an R-tree virtual
// table over cell bounds for spatial lookups.
type SQLiteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS cells (
	rowid    INTEGER PRIMARY KEY,
	id       TEXT NOT NULL UNIQUE,
	geometry TEXT NOT NULL,
	position INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS roi_settings (
	id       TEXT PRIMARY KEY,
	settings TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS extracted_shorelines (
	id     TEXT PRIMARY KEY,
	result TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS cross_shore_distances (
	id     TEXT PRIMARY KEY,
	series TEXT NOT NULL
);
CREATE VIRTUAL TABLE IF NOT EXISTS rtree_cells USING rtree(
	id, minx, maxx, miny, maxy
);
`

// NewSQLiteStore opens (and if needed creates) the store at path. Use
// ":memory:" for an ephemeral store.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("file:%s?cache=shared&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, &domain.StoreError{Operation: "open", Err: err}
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, &domain.StoreError{Operation: "open", Err: err}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, &domain.StoreError{Operation: "migrate", Err: err}
	}
	return &SQLiteStore{db: db}, nil
}

// Save replaces the stored snapshot wholesale inside one transaction.
func (s *SQLiteStore) Save(ctx context.Context, snapshot domain.LedgerSnapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &domain.StoreError{Operation: "save", Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"cells", "rtree_cells", "roi_settings", "extracted_shorelines", "cross_shore_distances"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return &domain.StoreError{Operation: "save", Err: err}
		}
	}

	for i, cell := range snapshot.Cells {
		g, err := geojson.EncodeGeometry(cell.Geometry)
		if err != nil {
			return &domain.StoreError{Operation: "save", Err: fmt.Errorf("cell %s: %w", cell.ID, err)}
		}
		raw, err := json.Marshal(g)
		if err != nil {
			return &domain.StoreError{Operation: "save", Err: err}
		}
		res, err := tx.ExecContext(ctx,
			"INSERT INTO cells (id, geometry, position) VALUES (?, ?, ?)",
			cell.ID, string(raw), i,
		)
		if err != nil {
			return &domain.StoreError{Operation: "save", Err: err}
		}
		rowID, err := res.LastInsertId()
		if err != nil {
			return &domain.StoreError{Operation: "save", Err: err}
		}
		b := cell.Geometry.Bounds()
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO rtree_cells (id, minx, maxx, miny, maxy) VALUES (?, ?, ?, ?, ?)",
			rowID, b.Min.X, b.Max.X, b.Min.Y, b.Max.Y,
		); err != nil {
			return &domain.StoreError{Operation: "save", Err: err}
		}
	}

	if err := saveJSONMap(ctx, tx, "roi_settings", "settings", snapshot.Settings); err != nil {
		return err
	}
	if err := saveJSONMap(ctx, tx, "extracted_shorelines", "result", snapshot.Extraction); err != nil {
		return err
	}
	if err := saveJSONMap(ctx, tx, "cross_shore_distances", "series", snapshot.Distances); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return &domain.StoreError{Operation: "save", Err: err}
	}
	return nil
}

// Load restores the stored snapshot. ErrNotFound when the store holds
// no cells (and no side data) yet.
func (s *SQLiteStore) Load(ctx context.Context) (*domain.LedgerSnapshot, error) {
	cells, err := s.loadCells(ctx)
	if err != nil {
		return nil, err
	}

	settings := make(domain.SettingsMap)
	if err := loadJSONMap(ctx, s.db, "roi_settings", "settings", func(id string, raw []byte) error {
		var v domain.DownloadSettings
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		settings[id] = v
		return nil
	}); err != nil {
		return nil, err
	}

	extraction := make(map[string]domain.ExtractionResult)
	if err := loadJSONMap(ctx, s.db, "extracted_shorelines", "result", func(id string, raw []byte) error {
		extraction[id] = domain.ExtractionResult(append([]byte(nil), raw...))
		return nil
	}); err != nil {
		return nil, err
	}

	distances := make(map[string]domain.DistanceSeries)
	if err := loadJSONMap(ctx, s.db, "cross_shore_distances", "series", func(id string, raw []byte) error {
		var v domain.DistanceSeries
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		distances[id] = v
		return nil
	}); err != nil {
		return nil, err
	}

	if len(cells) == 0 && len(settings) == 0 && len(extraction) == 0 && len(distances) == 0 {
		return nil, domain.ErrNotFound
	}

	return &domain.LedgerSnapshot{
		Cells:      cells,
		Settings:   settings,
		Extraction: extraction,
		Distances:  distances,
	}, nil
}

func (s *SQLiteStore) loadCells(ctx context.Context) ([]domain.Cell, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, geometry FROM cells ORDER BY position")
	if err != nil {
		return nil, &domain.StoreError{Operation: "load", Err: err}
	}
	defer func() { _ = rows.Close() }()

	var cells []domain.Cell
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, &domain.StoreError{Operation: "load", Err: err}
		}
		var g geojson.Geometry
		if err := json.Unmarshal([]byte(raw), &g); err != nil {
			return nil, &domain.StoreError{Operation: "load", Err: fmt.Errorf("cell %s: %w", id, err)}
		}
		decoded, err := geojson.DecodeGeometry(&g)
		if err != nil {
			return nil, &domain.StoreError{Operation: "load", Err: fmt.Errorf("cell %s: %w", id, err)}
		}
		polygonal, ok := decoded.(geom.Polygonal)
		if !ok {
			return nil, &domain.StoreError{Operation: "load", Err: fmt.Errorf("cell %s: %w", id, domain.ErrUnsupportedGeom)}
		}
		cells = append(cells, domain.Cell{ID: id, Geometry: polygonal})
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StoreError{Operation: "load", Err: err}
	}
	return cells, nil
}

// SearchIntersect returns the ids of stored cells whose bounds overlap
// the extent, through the R-tree virtual table.
func (s *SQLiteStore) SearchIntersect(ctx context.Context, extent domain.Extent) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id
		FROM cells c
		INNER JOIN rtree_cells r ON c.rowid = r.id
		WHERE r.minx <= ? AND r.maxx >= ? AND r.miny <= ? AND r.maxy >= ?
		ORDER BY c.position`,
		extent.MaxX, extent.MinX, extent.MaxY, extent.MinY,
	)
	if err != nil {
		return nil, &domain.StoreError{Operation: "search", Err: err}
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, &domain.StoreError{Operation: "search", Err: err}
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StoreError{Operation: "search", Err: err}
	}
	return ids, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func saveJSONMap[V any](ctx context.Context, tx *sql.Tx, table, column string, m map[string]V) error {
	stmt := fmt.Sprintf("INSERT INTO %s (id, %s) VALUES (?, ?)", table, column) //#nosec G201 -- fixed table/column names
	for id, v := range m {
		raw, err := json.Marshal(v)
		if err != nil {
			return &domain.StoreError{Operation: "save", Err: err}
		}
		if _, err := tx.ExecContext(ctx, stmt, id, string(raw)); err != nil {
			return &domain.StoreError{Operation: "save", Err: err}
		}
	}
	return nil
}

func loadJSONMap(ctx context.Context, db *sql.DB, table, column string, visit func(id string, raw []byte) error) error {
	stmt := fmt.Sprintf("SELECT id, %s FROM %s", column, table) //#nosec G201 -- fixed table/column names
	rows, err := db.QueryContext(ctx, stmt)
	if err != nil {
		return &domain.StoreError{Operation: "load", Err: err}
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return &domain.StoreError{Operation: "load", Err: err}
		}
		if err := visit(id, []byte(raw)); err != nil {
			return &domain.StoreError{Operation: "load", Err: fmt.Errorf("%s %s: %w", table, id, err)}
		}
	}
	return rows.Err()
}
