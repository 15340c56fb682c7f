package domain

import (
	"fmt"

	"github.com/ctessum/geom"
)

// Area bounds for the bounding box feature in square meters. A box
// smaller than a city block is useless for shoreline work; one larger
// than a small country would explode the fishnet.
const (
	MinBBoxArea = 1_000.0
	MaxBBoxArea = 100_000_000_000.0
)

// FeatureBBox is the feature category name used in validation errors.
const FeatureBBox = "Bounding Box"

// Bounding box size errors.
var (
	ErrBBoxTooSmall = fmt.Errorf("bounding box too small: %w", ErrInvalidInput)
	ErrBBoxTooLarge = fmt.Errorf("bounding box too large: %w", ErrInvalidInput)
)

// BoundingBox is the user-drawn area of interest in EPSG:4326.
type BoundingBox struct {
	Geometry geom.Polygonal
}

// NewBoundingBox validates and wraps a polygonal geometry as the area
// of interest. The geometry must be a Polygon or MultiPolygon and its
// true ground area must fall within [MinBBoxArea, MaxBBoxArea].
func NewBoundingBox(g geom.Geom) (*BoundingBox, error) {
	if g == nil {
		return nil, &ObjectNotFoundError{Resource: "bounding box"}
	}
	if err := ValidateGeometryTypes(FeatureBBox, []geom.Geom{g}, AllowedROIGeometryTypes); err != nil {
		return nil, err
	}
	p := g.(geom.Polygonal)
	epsg, err := UTMEpsgForGeom(p)
	if err != nil {
		return nil, err
	}
	area, err := GroundArea(p, epsg)
	if err != nil {
		return nil, err
	}
	if area < MinBBoxArea {
		return nil, fmt.Errorf("area %.0f m² below minimum %.0f m²: %w", area, MinBBoxArea, ErrBBoxTooSmall)
	}
	if area > MaxBBoxArea {
		return nil, fmt.Errorf("area %.0f m² above maximum %.0f m²: %w", area, MaxBBoxArea, ErrBBoxTooLarge)
	}
	return &BoundingBox{Geometry: p}, nil
}

// Extent returns the geographic bounds of the box.
func (b *BoundingBox) Extent() Extent {
	return ExtentOf(b.Geometry, SRIDWGS84)
}
