// Package application contains the application services wiring the
// domain and grid pipeline to the ports.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ctessum/geom"

	"github.com/coastgrid/coastgrid/internal/domain"
	"github.com/coastgrid/coastgrid/internal/grid"
	"github.com/coastgrid/coastgrid/internal/ports/output"
)

// Ledger owns the ROI cell table and its three side maps. It is
// single-threaded by contract: callers serialize all operations; the
// ledger takes no locks of its own. Every mutating operation builds and
// validates its full result before touching ledger state, so a failed
// call leaves the ledger exactly as it was.
type Ledger struct {
	logger  *slog.Logger
	metrics output.MetricsCollector
	store   output.LedgerStore
	minArea float64
	maxArea float64

	cells      []domain.Cell
	settings   domain.SettingsMap
	extraction map[string]domain.ExtractionResult
	distances  map[string]domain.DistanceSeries
}

// LedgerOption configures a Ledger.
type LedgerOption func(*Ledger)

// WithStore attaches a persistence store; Persist and Restore become
// functional.
func WithStore(store output.LedgerStore) LedgerOption {
	return func(l *Ledger) { l.store = store }
}

// WithMetrics attaches a metrics collector.
func WithMetrics(m output.MetricsCollector) LedgerOption {
	return func(l *Ledger) { l.metrics = m }
}

// WithAreaBounds overrides the default cell area bounds in m².
func WithAreaBounds(minArea, maxArea float64) LedgerOption {
	return func(l *Ledger) {
		l.minArea = minArea
		l.maxArea = maxArea
	}
}

// NewLedger creates an empty ledger.
func NewLedger(logger *slog.Logger, opts ...LedgerOption) *Ledger {
	l := &Ledger{
		logger:     logger,
		metrics:    &output.NoOpMetrics{},
		minArea:    domain.MinROIArea,
		maxArea:    domain.MaxROIArea,
		settings:   make(domain.SettingsMap),
		extraction: make(map[string]domain.ExtractionResult),
		distances:  make(map[string]domain.DistanceSeries),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// InitializeFromGeometrySet validates a caller-supplied cell table and
// replaces the ledger's table with it. Geometries must already be in
// EPSG:4326; the wire codec normalizes alternate reference systems
// before they reach the ledger. Side maps are reset on success.
func (l *Ledger) InitializeFromGeometrySet(ctx context.Context, table *domain.CellTable) (*domain.CellTable, error) {
	start := time.Now()
	result, err := l.buildFromGeometrySet(table)
	l.observe("initialize", start, err)
	if err != nil {
		return nil, err
	}
	l.commit(result)
	l.logger.Info("ledger initialized from geometry set", "cells", len(result))
	return l.Table(ctx), nil
}

func (l *Ledger) buildFromGeometrySet(table *domain.CellTable) ([]domain.Cell, error) {
	if table.IsEmpty() {
		return nil, &domain.ObjectNotFoundError{Resource: "ROI geometry set"}
	}
	geoms := make([]geom.Geom, 0, table.Len())
	for _, c := range table.Cells {
		geoms = append(geoms, c.Geometry)
	}
	if err := domain.ValidateGeometryTypes(domain.FeatureROI, geoms, domain.AllowedROIGeometryTypes); err != nil {
		return nil, err
	}
	cells := grid.AssignIDs(table.Cells)
	return grid.DropInvalidSizes(cells, l.minArea, l.maxArea)
}

// InitializeFromAreaAndCoastline runs the full grid pipeline: fishnet
// over the bounding box, filter against the coastline, id assignment
// and size validation. Side maps are reset on success.
func (l *Ledger) InitializeFromAreaAndCoastline(ctx context.Context, bbox *domain.BoundingBox, coastline *domain.Coastline, largeLen, smallLen float64) (*domain.CellTable, error) {
	start := time.Now()
	result, err := l.buildFromArea(bbox, coastline, largeLen, smallLen)
	l.observe("generate", start, err)
	if err != nil {
		return nil, err
	}
	l.commit(result)
	l.logger.Info("ledger initialized from area and coastline",
		"cells", len(result), "large_len", largeLen, "small_len", smallLen)
	return l.Table(ctx), nil
}

func (l *Ledger) buildFromArea(bbox *domain.BoundingBox, coastline *domain.Coastline, largeLen, smallLen float64) ([]domain.Cell, error) {
	if bbox == nil {
		return nil, &domain.ObjectNotFoundError{Resource: "bounding box"}
	}
	if coastline.IsEmpty() {
		return nil, &domain.ObjectNotFoundError{Resource: "shoreline"}
	}
	tiles, err := grid.Fishnet(bbox, largeLen, smallLen)
	if err != nil {
		return nil, err
	}
	kept := grid.FilterByCoastline(tiles, coastline)
	cells := make([]domain.Cell, 0, len(kept))
	for _, p := range kept {
		cells = append(cells, domain.Cell{Geometry: p})
	}
	cells = grid.AssignIDs(cells)
	return grid.DropInvalidSizes(cells, l.minArea, l.maxArea)
}

// Add merges new cells into the table: rows lacking ids get fresh ones,
// sizes are validated, exact (id, geometry) duplicates are dropped
// keeping the first occurrence. Calling Add twice with the same input
// does not grow the table.
func (l *Ledger) Add(ctx context.Context, cells []domain.Cell) (*domain.CellTable, error) {
	start := time.Now()
	merged, err := l.buildMerge(cells)
	l.observe("add", start, err)
	if err != nil {
		return nil, err
	}
	l.cells = merged
	l.metrics.SetCellCount(len(l.cells))
	l.logger.Info("cells merged into ledger", "added", len(cells), "total", len(merged))
	return l.Table(ctx), nil
}

func (l *Ledger) buildMerge(cells []domain.Cell) ([]domain.Cell, error) {
	if len(cells) == 0 {
		return nil, &domain.ObjectNotFoundError{Resource: "ROI geometry set"}
	}
	geoms := make([]geom.Geom, 0, len(cells))
	for _, c := range cells {
		geoms = append(geoms, c.Geometry)
	}
	if err := domain.ValidateGeometryTypes(domain.FeatureROI, geoms, domain.AllowedROIGeometryTypes); err != nil {
		return nil, err
	}
	valid, err := grid.DropInvalidSizes(cells, l.minArea, l.maxArea)
	if err != nil {
		return nil, err
	}

	combined := make([]domain.Cell, 0, len(l.cells)+len(valid))
	combined = append(combined, l.cells...)
	combined = append(combined, valid...)

	// Dedupe on (id, geometry) before id assignment: a re-added pair
	// must collapse into the existing row rather than receive a fresh
	// id from the duplicate-id rewrite.
	type pair struct{ id, fp string }
	seen := make(map[pair]struct{}, len(combined))
	deduped := combined[:0]
	for _, c := range combined {
		key := pair{id: c.ID, fp: c.Fingerprint()}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, c)
	}
	return grid.AssignIDs(deduped), nil
}

// RemoveByID removes the matching cells and cascades the delete through
// the settings, extraction and distance maps in the same operation.
// A nil id list or an empty table is a no-op.
func (l *Ledger) RemoveByID(ctx context.Context, ids []string) (*domain.CellTable, error) {
	if len(ids) == 0 || len(l.cells) == 0 {
		return l.Table(ctx), nil
	}
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	kept := make([]domain.Cell, 0, len(l.cells))
	for _, c := range l.cells {
		if _, gone := drop[c.ID]; gone {
			continue
		}
		kept = append(kept, c)
	}
	l.cells = kept
	for id := range drop {
		delete(l.settings, id)
		delete(l.extraction, id)
		delete(l.distances, id)
	}
	l.metrics.SetCellCount(len(l.cells))
	l.logger.Info("cells removed from ledger", "removed", len(ids), "remaining", len(kept))
	return l.Table(ctx), nil
}

// Table returns a copy of the current cell table.
func (l *Ledger) Table(_ context.Context) *domain.CellTable {
	return domain.NewCellTable(l.cells).Clone()
}

// commit replaces the whole ledger state. Initialization resets the
// side maps; stale per-cell state must not survive a rebuild.
func (l *Ledger) commit(cells []domain.Cell) {
	l.cells = cells
	l.settings = make(domain.SettingsMap)
	l.extraction = make(map[string]domain.ExtractionResult)
	l.distances = make(map[string]domain.DistanceSeries)
	l.metrics.SetCellCount(len(cells))
}

func (l *Ledger) observe(operation string, start time.Time, err error) {
	l.metrics.IncGridOperations(operation, err == nil)
	l.metrics.ObserveGridDuration(operation, time.Since(start))
}

// GetSettings returns the settings for the given ids; with no ids the
// whole map is returned.
func (l *Ledger) GetSettings(_ context.Context, ids ...string) domain.SettingsMap {
	if len(ids) == 0 {
		return l.settings.Clone()
	}
	return l.settings.Subset(ids)
}

// SetSettings replaces the settings map wholesale. A nil map is
// rejected; every id must refer to an existing cell.
func (l *Ledger) SetSettings(_ context.Context, settings domain.SettingsMap) error {
	if settings == nil {
		return &domain.InvalidConfigurationError{Field: "settings", Message: "settings map must not be nil"}
	}
	if err := l.checkIDs(settings); err != nil {
		return err
	}
	l.settings = settings.Clone()
	return nil
}

// UpdateSettings shallow-merges partial into the settings map: ids in
// partial are added or overwritten whole, others are untouched.
func (l *Ledger) UpdateSettings(_ context.Context, partial domain.SettingsMap) error {
	if partial == nil {
		return &domain.InvalidConfigurationError{Field: "settings", Message: "settings map must not be nil"}
	}
	if err := l.checkIDs(partial); err != nil {
		return err
	}
	l.settings.Merge(partial)
	return nil
}

func (l *Ledger) checkIDs(settings domain.SettingsMap) error {
	table := domain.NewCellTable(l.cells)
	for id := range settings {
		if !table.Contains(id) {
			return fmt.Errorf("settings for %q: %w", id, domain.ErrCellNotFound)
		}
	}
	return nil
}

// GetExtraction returns the stored extraction result for an id. The
// second return is false when nothing has been stored yet; a cell
// without an extracted shoreline is an expected state, not an error.
func (l *Ledger) GetExtraction(_ context.Context, id string) (domain.ExtractionResult, bool) {
	result, ok := l.extraction[id]
	return result, ok
}

// SetExtraction stores an extraction result for an existing cell.
func (l *Ledger) SetExtraction(_ context.Context, id string, result domain.ExtractionResult) error {
	if !domain.NewCellTable(l.cells).Contains(id) {
		return fmt.Errorf("extraction for %q: %w", id, domain.ErrCellNotFound)
	}
	l.extraction[id] = result
	return nil
}

// RemoveExtraction forgets the extraction result for an id.
func (l *Ledger) RemoveExtraction(_ context.Context, id string) {
	delete(l.extraction, id)
}

// RemoveAllExtractions resets the extraction map.
func (l *Ledger) RemoveAllExtractions(_ context.Context) {
	l.extraction = make(map[string]domain.ExtractionResult)
}

// IDsWithExtraction returns the ids holding a stored result, in table
// order.
func (l *Ledger) IDsWithExtraction(_ context.Context) []string {
	ids := make([]string, 0, len(l.extraction))
	for _, c := range l.cells {
		if _, ok := l.extraction[c.ID]; ok {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// GetDistances returns the distance series for an id; false when none
// is stored.
func (l *Ledger) GetDistances(_ context.Context, id string) (domain.DistanceSeries, bool) {
	series, ok := l.distances[id]
	if !ok {
		return nil, false
	}
	return series.Clone(), true
}

// SetDistances stores cross-shore distance series for an existing cell.
func (l *Ledger) SetDistances(_ context.Context, id string, series domain.DistanceSeries) error {
	if !domain.NewCellTable(l.cells).Contains(id) {
		return fmt.Errorf("distances for %q: %w", id, domain.ErrCellNotFound)
	}
	l.distances[id] = series.Clone()
	return nil
}

// RemoveDistances forgets the distance series for an id.
func (l *Ledger) RemoveDistances(_ context.Context, id string) {
	delete(l.distances, id)
}

// RemoveAllDistances resets the distance map.
func (l *Ledger) RemoveAllDistances(_ context.Context) {
	l.distances = make(map[string]domain.DistanceSeries)
}

// AllDistances returns a copy of the whole distance map.
func (l *Ledger) AllDistances(_ context.Context) map[string]domain.DistanceSeries {
	out := make(map[string]domain.DistanceSeries, len(l.distances))
	for id, series := range l.distances {
		out[id] = series.Clone()
	}
	return out
}

// Snapshot copies the full ledger state.
func (l *Ledger) Snapshot(_ context.Context) domain.LedgerSnapshot {
	cells := make([]domain.Cell, len(l.cells))
	copy(cells, l.cells)
	extraction := make(map[string]domain.ExtractionResult, len(l.extraction))
	for id, r := range l.extraction {
		extraction[id] = r
	}
	distances := make(map[string]domain.DistanceSeries, len(l.distances))
	for id, s := range l.distances {
		distances[id] = s.Clone()
	}
	return domain.LedgerSnapshot{
		Cells:      cells,
		Settings:   l.settings.Clone(),
		Extraction: extraction,
		Distances:  distances,
	}
}

// Persist saves the current state through the configured store.
func (l *Ledger) Persist(ctx context.Context) error {
	if l.store == nil {
		return domain.ErrStoreUnavailable
	}
	start := time.Now()
	err := l.store.Save(ctx, l.Snapshot(ctx))
	l.metrics.IncStorageOperations("save", err == nil)
	l.metrics.ObserveStorageDuration("save", time.Since(start))
	if err != nil {
		return &domain.StoreError{Operation: "save", Err: err}
	}
	return nil
}

// Restore replaces ledger state with the last persisted snapshot. A
// store with no snapshot leaves the ledger untouched.
func (l *Ledger) Restore(ctx context.Context) error {
	if l.store == nil {
		return domain.ErrStoreUnavailable
	}
	start := time.Now()
	snapshot, err := l.store.Load(ctx)
	l.metrics.IncStorageOperations("load", err == nil || errors.Is(err, domain.ErrNotFound))
	l.metrics.ObserveStorageDuration("load", time.Since(start))
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return &domain.StoreError{Operation: "load", Err: err}
	}
	l.cells = snapshot.Cells
	l.settings = snapshot.Settings
	if l.settings == nil {
		l.settings = make(domain.SettingsMap)
	}
	l.extraction = snapshot.Extraction
	if l.extraction == nil {
		l.extraction = make(map[string]domain.ExtractionResult)
	}
	l.distances = snapshot.Distances
	if l.distances == nil {
		l.distances = make(map[string]domain.DistanceSeries)
	}
	l.metrics.SetCellCount(len(l.cells))
	l.logger.Info("ledger restored from store", "cells", len(l.cells))
	return nil
}
