// Package input defines the primary/driving ports of the application.
package input

import (
	"context"

	"github.com/coastgrid/coastgrid/internal/domain"
)

// ROILedger defines the primary port for the ROI cell table and its
// side maps. Operations are synchronous and must be serialized by the
// caller; the ledger performs no internal locking.
type ROILedger interface {
	// InitializeFromGeometrySet validates a caller-supplied cell table
	// and makes it the ledger's table.
	InitializeFromGeometrySet(ctx context.Context, table *domain.CellTable) (*domain.CellTable, error)

	// InitializeFromAreaAndCoastline builds the table from a bounding
	// box and reference coastline through the grid pipeline.
	InitializeFromAreaAndCoastline(ctx context.Context, bbox *domain.BoundingBox, coastline *domain.Coastline, largeLen, smallLen float64) (*domain.CellTable, error)

	// Add merges new cells into the table, dropping duplicate
	// (id, geometry) pairs. Idempotent.
	Add(ctx context.Context, cells []domain.Cell) (*domain.CellTable, error)

	// RemoveByID removes cells and cascades the delete through the
	// settings, extraction and distance maps.
	RemoveByID(ctx context.Context, ids []string) (*domain.CellTable, error)

	// Table returns the current cell table.
	Table(ctx context.Context) *domain.CellTable

	// GetSettings returns the settings for the given ids, or the whole
	// map when ids is empty.
	GetSettings(ctx context.Context, ids ...string) domain.SettingsMap

	// SetSettings replaces the settings map wholesale.
	SetSettings(ctx context.Context, settings domain.SettingsMap) error

	// UpdateSettings shallow-merges partial into the settings map.
	UpdateSettings(ctx context.Context, partial domain.SettingsMap) error

	// GetExtraction returns the extraction result for an id. ok is
	// false when no result has been stored; that is an expected state,
	// not an error.
	GetExtraction(ctx context.Context, id string) (domain.ExtractionResult, bool)

	// SetExtraction stores an extraction result for an existing cell.
	SetExtraction(ctx context.Context, id string, result domain.ExtractionResult) error

	// RemoveExtraction forgets the extraction result for an id.
	RemoveExtraction(ctx context.Context, id string)

	// RemoveAllExtractions resets the extraction map.
	RemoveAllExtractions(ctx context.Context)

	// IDsWithExtraction returns the ids that have a stored result.
	IDsWithExtraction(ctx context.Context) []string

	// GetDistances returns the cross-shore distance series for an id.
	GetDistances(ctx context.Context, id string) (domain.DistanceSeries, bool)

	// SetDistances stores distance series for an existing cell.
	SetDistances(ctx context.Context, id string, series domain.DistanceSeries) error

	// RemoveDistances forgets the distance series for an id.
	RemoveDistances(ctx context.Context, id string)

	// RemoveAllDistances resets the distance map.
	RemoveAllDistances(ctx context.Context)

	// AllDistances returns the whole distance map.
	AllDistances(ctx context.Context) map[string]domain.DistanceSeries
}

// ShorelineCatalog defines the primary port for reference shoreline
// lookup: which regional files cover an area, and the merged coastline
// for that area.
type ShorelineCatalog interface {
	// FindCandidateSources returns the sources whose coverage extent
	// intersects the given area.
	FindCandidateSources(ctx context.Context, area domain.Extent) ([]domain.SourceRef, error)

	// LoadCoastline loads and merges the candidate sources for an
	// area, masked to features intersecting it.
	LoadCoastline(ctx context.Context, area domain.Extent) (*domain.Coastline, error)

	// Sources returns every indexed source.
	Sources(ctx context.Context) []domain.SourceRef
}

// HealthChecker defines the primary port for health checks.
type HealthChecker interface {
	// IsHealthy returns true if the service is healthy.
	IsHealthy(ctx context.Context) bool

	// IsReady returns true if the service is ready to accept requests.
	IsReady(ctx context.Context) bool

	// GetHealthDetails returns detailed health information.
	GetHealthDetails(ctx context.Context) HealthDetails
}

// HealthDetails contains detailed health information.
type HealthDetails struct {
	Healthy        bool              // Overall health status
	Ready          bool              // Ready to accept requests
	Cells          int               // Cells currently in the ledger
	SourcesIndexed int               // Indexed shoreline sources
	Components     map[string]string // Component statuses
}
