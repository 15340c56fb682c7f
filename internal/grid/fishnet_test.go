package grid

import (
	"errors"
	"math"
	"testing"

	"github.com/ctessum/geom"

	"github.com/coastgrid/coastgrid/internal/domain"
)

func bboxAt(t *testing.T, minX, minY, maxX, maxY float64) *domain.BoundingBox {
	t.Helper()
	box, err := domain.NewBoundingBox(geom.Polygon{{
		{X: minX, Y: minY},
		{X: maxX, Y: minY},
		{X: maxX, Y: maxY},
		{X: minX, Y: maxY},
		{X: minX, Y: minY},
	}})
	if err != nil {
		t.Fatalf("building bounding box: %v", err)
	}
	return box
}

func TestFishnetRejectsZeroSides(t *testing.T) {
	box := bboxAt(t, 0, 0, 0.1, 0.1)

	_, err := Fishnet(box, 0, 0)
	var cfgErr *domain.InvalidConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected InvalidConfigurationError, got %v", err)
	}
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Error("expected error to unwrap to ErrInvalidInput")
	}
}

func TestFishnetNilBBox(t *testing.T) {
	_, err := Fishnet(nil, 5000, 0)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFishnetSingleGrid(t *testing.T) {
	// ~22km x 22km at the equator, 5km squares: 5 columns and 5 rows.
	box := bboxAt(t, 0, 0, 0.2, 0.2)

	tiles, err := Fishnet(box, 5000, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tiles) != 25 {
		t.Fatalf("got %d tiles, want 25", len(tiles))
	}

	// Every tile is square in the projected CRS, so its ground area
	// must sit within 5% of side².
	want := 5000.0 * 5000.0
	for i, tile := range tiles {
		epsg, err := domain.UTMEpsgForGeom(tile)
		if err != nil {
			t.Fatalf("tile %d: %v", i, err)
		}
		area, err := domain.GroundArea(tile, epsg)
		if err != nil {
			t.Fatalf("tile %d: %v", i, err)
		}
		if math.Abs(area-want)/want > 0.05 {
			t.Errorf("tile %d area = %.0f m², want within 5%% of %.0f", i, area, want)
		}
	}
}

func TestFishnetDualGrid(t *testing.T) {
	box := bboxAt(t, 0, 0, 0.2, 0.2)

	large, err := Fishnet(box, 7500, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	small, err := Fishnet(box, 0, 5000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	both, err := Fishnet(box, 7500, 5000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(both) != len(large)+len(small) {
		t.Errorf("dual grid has %d tiles, want %d + %d", len(both), len(large), len(small))
	}
}

func TestFishnetCoversBounds(t *testing.T) {
	// Tiles are unclipped: the last row/column may overshoot the box,
	// but the union must cover it entirely.
	box := bboxAt(t, -121.9, 36.5, -121.85, 36.54)

	tiles, err := Fishnet(box, 2000, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tiles) == 0 {
		t.Fatal("expected at least one tile")
	}

	ext := box.Extent()
	var tilesExt domain.Extent
	for i, tile := range tiles {
		te := domain.ExtentOf(tile, domain.SRIDWGS84)
		if i == 0 {
			tilesExt = te
			continue
		}
		tilesExt.MinX = math.Min(tilesExt.MinX, te.MinX)
		tilesExt.MinY = math.Min(tilesExt.MinY, te.MinY)
		tilesExt.MaxX = math.Max(tilesExt.MaxX, te.MaxX)
		tilesExt.MaxY = math.Max(tilesExt.MaxY, te.MaxY)
	}

	// Allow a sliver of projection roundtrip error on the lower-left
	// corner; the upper-right must overshoot or match.
	const eps = 1e-6
	if tilesExt.MinX > ext.MinX+eps || tilesExt.MinY > ext.MinY+eps {
		t.Errorf("tiling starts at (%v, %v), box starts at (%v, %v)",
			tilesExt.MinX, tilesExt.MinY, ext.MinX, ext.MinY)
	}
	if tilesExt.MaxX < ext.MaxX-eps || tilesExt.MaxY < ext.MaxY-eps {
		t.Errorf("tiling ends at (%v, %v), box ends at (%v, %v)",
			tilesExt.MaxX, tilesExt.MaxY, ext.MaxX, ext.MaxY)
	}
}
