package application

import (
	"context"
	"log/slog"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/ctessum/geom"

	"github.com/coastgrid/coastgrid/internal/domain"
	"github.com/coastgrid/coastgrid/internal/ports/output"
)

// Catalog indexes the regional reference-shoreline files available in
// object storage and answers which of them cover a given area. Unlike
// the ledger, the catalog is shared across requests and reloaded by
// the directory watcher, so its index is guarded by a lock.
type Catalog struct {
	logger  *slog.Logger
	storage output.ObjectStorage
	source  output.ShorelineSource
	metrics output.MetricsCollector

	mu      sync.RWMutex
	sources []domain.SourceRef
}

// NewCatalog creates a catalog over the given storage backend.
func NewCatalog(logger *slog.Logger, storage output.ObjectStorage, source output.ShorelineSource, metrics output.MetricsCollector) *Catalog {
	if metrics == nil {
		metrics = &output.NoOpMetrics{}
	}
	return &Catalog{
		logger:  logger,
		storage: storage,
		source:  source,
		metrics: metrics,
	}
}

// Refresh rebuilds the source index: lists the shoreline files in
// storage and records the coverage extent of each. Files that fail to
// parse are skipped with a warning; one bad file must not take down
// the whole catalog.
func (c *Catalog) Refresh(ctx context.Context) error {
	start := time.Now()
	objects, err := c.storage.List(ctx)
	c.metrics.IncStorageOperations("list", err == nil)
	c.metrics.ObserveStorageDuration("list", time.Since(start))
	if err != nil {
		return &domain.StorageError{Operation: "list", Err: err}
	}

	sources := make([]domain.SourceRef, 0, len(objects))
	for _, obj := range objects {
		if !strings.EqualFold(path.Ext(obj.Key), ".geojson") {
			continue
		}
		coastline, err := c.source.Load(ctx, obj.Key)
		if err != nil {
			c.logger.Warn("skipping unreadable shoreline file", "key", obj.Key, "error", err)
			continue
		}
		sources = append(sources, domain.SourceRef{
			Name:   path.Base(obj.Key),
			Key:    obj.Key,
			Extent: coastlineExtent(coastline),
		})
	}

	c.mu.Lock()
	c.sources = sources
	c.mu.Unlock()

	c.metrics.SetSourcesIndexed(len(sources))
	c.logger.Info("shoreline catalog refreshed", "sources", len(sources))
	return nil
}

// FindCandidateSources returns the sources whose coverage extent
// intersects the area.
func (c *Catalog) FindCandidateSources(_ context.Context, area domain.Extent) ([]domain.SourceRef, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var candidates []domain.SourceRef
	for _, src := range c.sources {
		if src.Extent.Intersects(area) {
			candidates = append(candidates, src)
		}
	}
	return candidates, nil
}

// LoadCoastline loads every candidate source for the area and merges
// the features that intersect it. No intersecting source at all means
// the area has no reference shoreline, reported as a missing-resource
// error naming "shoreline".
func (c *Catalog) LoadCoastline(ctx context.Context, area domain.Extent) (*domain.Coastline, error) {
	candidates, err := c.FindCandidateSources(ctx, area)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, &domain.ObjectNotFoundError{
			Resource: "shoreline",
			Hint:     "no reference shoreline covers the requested area",
		}
	}

	var features []geom.Geom
	for _, src := range candidates {
		start := time.Now()
		coastline, err := c.source.Load(ctx, src.Key)
		c.metrics.IncStorageOperations("load", err == nil)
		c.metrics.ObserveStorageDuration("load", time.Since(start))
		if err != nil {
			return nil, &domain.StorageError{Operation: "load", Key: src.Key, Err: err}
		}
		for _, f := range coastline.Features {
			if domain.ExtentOf(f, domain.SRIDWGS84).Intersects(area) {
				features = append(features, f)
			}
		}
	}
	if len(features) == 0 {
		return nil, &domain.ObjectNotFoundError{
			Resource: "shoreline",
			Hint:     "candidate files contain no features inside the requested area",
		}
	}
	return domain.NewCoastline(features)
}

// Sources returns a copy of the current source index.
func (c *Catalog) Sources(_ context.Context) []domain.SourceRef {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.SourceRef, len(c.sources))
	copy(out, c.sources)
	return out
}

// SourceCount returns the number of indexed sources.
func (c *Catalog) SourceCount(_ context.Context) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sources)
}

func coastlineExtent(coastline *domain.Coastline) domain.Extent {
	var ext domain.Extent
	for i, f := range coastline.Features {
		fe := domain.ExtentOf(f, domain.SRIDWGS84)
		if i == 0 {
			ext = fe
			continue
		}
		if fe.MinX < ext.MinX {
			ext.MinX = fe.MinX
		}
		if fe.MinY < ext.MinY {
			ext.MinY = fe.MinY
		}
		if fe.MaxX > ext.MaxX {
			ext.MaxX = fe.MaxX
		}
		if fe.MaxY > ext.MaxY {
			ext.MaxY = fe.MaxY
		}
	}
	ext.SRID = domain.SRIDWGS84
	return ext
}
