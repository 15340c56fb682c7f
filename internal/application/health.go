package application

import (
	"context"

	"github.com/coastgrid/coastgrid/internal/ports/input"
)

// HealthService provides health check functionality.
type HealthService struct {
	ledger  *Ledger
	catalog *Catalog
}

// NewHealthService creates a new health service.
func NewHealthService(ledger *Ledger, catalog *Catalog) *HealthService {
	return &HealthService{
		ledger:  ledger,
		catalog: catalog,
	}
}

// IsHealthy returns true if the service is healthy.
func (s *HealthService) IsHealthy(ctx context.Context) bool {
	return s.ledger != nil
}

// IsReady returns true if the service is ready to accept requests. The
// service is usable without a catalog (geometry-set initialization only
// needs the ledger), so an absent catalog does not block readiness.
func (s *HealthService) IsReady(ctx context.Context) bool {
	return s.ledger != nil
}

// GetHealthDetails returns detailed health information.
func (s *HealthService) GetHealthDetails(ctx context.Context) input.HealthDetails {
	components := map[string]string{
		"ledger": "ok",
	}

	sources := 0
	if s.catalog != nil {
		sources = s.catalog.SourceCount(ctx)
		if sources == 0 {
			components["catalog"] = "empty"
		} else {
			components["catalog"] = "ok"
		}
	} else {
		components["catalog"] = "disabled"
	}

	return input.HealthDetails{
		Healthy:        s.IsHealthy(ctx),
		Ready:          s.IsReady(ctx),
		Cells:          s.ledger.Table(ctx).Len(),
		SourcesIndexed: sources,
		Components:     components,
	}
}
