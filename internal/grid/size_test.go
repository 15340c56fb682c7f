package grid

import (
	"errors"
	"testing"

	"github.com/coastgrid/coastgrid/internal/domain"
)

// degSquare builds a square cell of the given side length in degrees
// near the equator, where one degree is roughly 111 km.
func degSquare(id string, x, y, side float64) domain.Cell {
	return domain.Cell{ID: id, Geometry: square(x, y, side)}
}

func TestInvalidSizeIndices(t *testing.T) {
	cells := []domain.Cell{
		degSquare("ok", 0, 0, 0.016),   // ~3.1 km², within bounds
		degSquare("huge", 1, 1, 0.127), // ~200 km², beyond the 98 km² maximum
	}

	invalid, err := InvalidSizeIndices(cells, domain.MinROIArea, domain.MaxROIArea)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(invalid) != 1 || invalid[0] != 1 {
		t.Errorf("invalid = %v, want [1]", invalid)
	}
}

func TestDropInvalidSizesKeepsValid(t *testing.T) {
	cells := []domain.Cell{
		degSquare("ok", 0, 0, 0.016),
		degSquare("huge", 1, 1, 0.127),
	}

	kept, err := DropInvalidSizes(cells, domain.MinROIArea, domain.MaxROIArea)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(kept) != 1 || kept[0].ID != "ok" {
		t.Errorf("kept = %v, want just the ok cell", kept)
	}
}

func TestDropInvalidSizesAllOutOfBounds(t *testing.T) {
	// A single ~200,000,000 m² cell against the default bounds.
	cells := []domain.Cell{degSquare("huge", 0, 0, 0.127)}

	_, err := DropInvalidSizes(cells, domain.MinROIArea, domain.MaxROIArea)
	var sizeErr *domain.InvalidSizeError
	if !errors.As(err, &sizeErr) {
		t.Fatalf("expected InvalidSizeError, got %v", err)
	}
	if sizeErr.Feature != domain.FeatureROI {
		t.Errorf("Feature = %q, want %q", sizeErr.Feature, domain.FeatureROI)
	}
	if sizeErr.MinArea != 0 || sizeErr.MaxArea != 98_000_000 {
		t.Errorf("bounds = [%v, %v], want [0, 98000000]", sizeErr.MinArea, sizeErr.MaxArea)
	}
}

func TestInvalidSizeIndicesEmptyTable(t *testing.T) {
	invalid, err := InvalidSizeIndices(nil, 0, domain.MaxROIArea)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if invalid != nil {
		t.Errorf("invalid = %v, want nil", invalid)
	}
}

func TestInvalidSizeIndicesMinBound(t *testing.T) {
	cells := []domain.Cell{
		degSquare("tiny", 0, 0, 0.0001), // ~120 m²
		degSquare("ok", 1, 1, 0.016),
	}

	invalid, err := InvalidSizeIndices(cells, 10_000, domain.MaxROIArea)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(invalid) != 1 || invalid[0] != 0 {
		t.Errorf("invalid = %v, want [0]", invalid)
	}
}
