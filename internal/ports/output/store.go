package output

import (
	"context"

	"github.com/coastgrid/coastgrid/internal/domain"
)

// LedgerStore defines the secondary port for ledger persistence. The
// store holds one snapshot at a time; Save replaces it wholesale so a
// crash never leaves a half-written ledger on disk.
type LedgerStore interface {
	// Save persists a full ledger snapshot, replacing any prior one.
	Save(ctx context.Context, snapshot domain.LedgerSnapshot) error

	// Load restores the last saved snapshot. Returns ErrNotFound when
	// nothing has been saved yet.
	Load(ctx context.Context) (*domain.LedgerSnapshot, error)

	// SearchIntersect returns the ids of stored cells whose bounds
	// intersect the given extent.
	SearchIntersect(ctx context.Context, extent domain.Extent) ([]string, error)

	// Close releases the underlying resources.
	Close() error
}

// ShorelineSource defines the secondary port for reading reference
// shoreline files resolved by the catalog.
type ShorelineSource interface {
	// Load reads and parses one shoreline file by storage key.
	Load(ctx context.Context, key string) (*domain.Coastline, error)
}
