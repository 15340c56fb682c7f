// Package grid implements the ROI grid pipeline: fishnet tiling,
// coastline filtering, size validation and id assignment. All functions
// are pure; geometries go in and come out in EPSG:4326.
package grid

import (
	"fmt"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/proj"

	"github.com/coastgrid/coastgrid/internal/domain"
)

// Fishnet tiles the bounding box into one or two grids of square cells
// and returns the tiles in EPSG:4326. largeLen and smallLen are square
// side lengths in meters; at least one must be positive. When both are
// positive the two tilings are concatenated: a single grid alignment
// can leave slivers along coastline curvature that the second tiling
// covers. Tiles are not clipped, so boundary rows and columns may
// extend past the box.
func Fishnet(bbox *domain.BoundingBox, largeLen, smallLen float64) ([]geom.Polygon, error) {
	if bbox == nil {
		return nil, &domain.ObjectNotFoundError{Resource: "bounding box"}
	}
	if largeLen <= 0 && smallLen <= 0 {
		return nil, &domain.InvalidConfigurationError{
			Field:   "square size",
			Message: "at least one square side length must be greater than zero",
		}
	}

	epsg, err := domain.UTMEpsgForGeom(bbox.Geometry)
	if err != nil {
		return nil, err
	}
	projected, err := domain.Reproject(bbox.Geometry, domain.SRIDWGS84, epsg)
	if err != nil {
		return nil, err
	}
	bounds := projected.Bounds()

	back, err := domain.NewTransform(epsg, domain.SRIDWGS84)
	if err != nil {
		return nil, err
	}

	var tiles []geom.Polygon
	for _, side := range []float64{largeLen, smallLen} {
		if side <= 0 {
			continue
		}
		tiling, err := tile(bounds, side, back)
		if err != nil {
			return nil, err
		}
		tiles = append(tiles, tiling...)
	}
	return tiles, nil
}

// tile emits one grid of squares of the given side covering bounds,
// reprojected through back to geographic coordinates. Column and row
// counts come from integer arithmetic on the spans; accumulating the
// float step instead can drift past the boundary or loop forever.
func tile(bounds *geom.Bounds, side float64, back proj.Transformer) ([]geom.Polygon, error) {
	cols := int((bounds.Max.X-bounds.Min.X)/side) + 1
	rows := int((bounds.Max.Y-bounds.Min.Y)/side) + 1

	tiles := make([]geom.Polygon, 0, cols*rows)
	for row := 0; row < rows; row++ {
		y0 := bounds.Min.Y + float64(row)*side
		for col := 0; col < cols; col++ {
			x0 := bounds.Min.X + float64(col)*side
			square := geom.Polygon{{
				{X: x0, Y: y0},
				{X: x0 + side, Y: y0},
				{X: x0 + side, Y: y0 + side},
				{X: x0, Y: y0 + side},
				{X: x0, Y: y0},
			}}
			g, err := square.Transform(back)
			if err != nil {
				return nil, fmt.Errorf("reprojecting tile (%d,%d): %w", col, row, err)
			}
			p, ok := g.(geom.Polygon)
			if !ok {
				return nil, fmt.Errorf("tile (%d,%d) reprojected to %T: %w", col, row, g, domain.ErrUnsupportedGeom)
			}
			tiles = append(tiles, p)
		}
	}
	return tiles, nil
}
