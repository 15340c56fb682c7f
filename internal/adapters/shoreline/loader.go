// Package shoreline loads reference-shoreline GeoJSON files from object
// storage into the domain model.
package shoreline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/coastgrid/coastgrid/internal/adapters/geojson"
	"github.com/coastgrid/coastgrid/internal/domain"
	"github.com/coastgrid/coastgrid/internal/ports/output"
)

// Loader implements the ShorelineSource port on top of an ObjectStorage
// backend.
type Loader struct {
	storage output.ObjectStorage
	logger  *slog.Logger
}

// NewLoader creates a shoreline loader backed by the given storage.
func NewLoader(storage output.ObjectStorage, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{storage: storage, logger: logger}
}

// Load reads and parses one shoreline file by storage key.
func (l *Loader) Load(ctx context.Context, key string) (*domain.Coastline, error) {
	r, err := l.storage.GetReader(ctx, key)
	if err != nil {
		return nil, &domain.StorageError{Operation: "get", Key: key, Err: err}
	}
	defer func() { _ = r.Close() }()

	var fc geojson.FeatureCollection
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return nil, fmt.Errorf("parsing shoreline %s: %w", key, err)
	}

	coastline, err := geojson.DecodeCoastline(&fc)
	if err != nil {
		return nil, fmt.Errorf("decoding shoreline %s: %w", key, err)
	}

	l.logger.Debug("loaded shoreline file",
		"key", key,
		"features", len(coastline.Features))

	return coastline, nil
}
