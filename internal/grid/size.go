package grid

import (
	"github.com/coastgrid/coastgrid/internal/domain"
)

// InvalidSizeIndices returns the indices of cells whose true ground
// area lies outside [minArea, maxArea] m². Every cell is projected into
// the single UTM CRS resolved from the table's overall extent, not
// per-row, so relative comparisons stay consistent across the table.
func InvalidSizeIndices(cells []domain.Cell, minArea, maxArea float64) ([]int, error) {
	if len(cells) == 0 {
		return nil, nil
	}

	overall := *cells[0].Geometry.Bounds()
	for _, c := range cells[1:] {
		b := c.Geometry.Bounds()
		overall.Min.X = min(overall.Min.X, b.Min.X)
		overall.Min.Y = min(overall.Min.Y, b.Min.Y)
		overall.Max.X = max(overall.Max.X, b.Max.X)
		overall.Max.Y = max(overall.Max.Y, b.Max.Y)
	}
	epsg := domain.UTMEpsg(
		(overall.Min.X+overall.Max.X)/2,
		(overall.Min.Y+overall.Max.Y)/2,
	)

	var invalid []int
	for i, c := range cells {
		area, err := domain.GroundArea(c.Geometry, epsg)
		if err != nil {
			return nil, err
		}
		if area < minArea || area > maxArea {
			invalid = append(invalid, i)
		}
	}
	return invalid, nil
}

// DropInvalidSizes removes the cells flagged by InvalidSizeIndices. If
// nothing survives, the whole candidate set was out of bounds and an
// InvalidSizeError carrying the configured limits is returned so the
// caller can report them.
func DropInvalidSizes(cells []domain.Cell, minArea, maxArea float64) ([]domain.Cell, error) {
	invalid, err := InvalidSizeIndices(cells, minArea, maxArea)
	if err != nil {
		return nil, err
	}

	drop := make(map[int]struct{}, len(invalid))
	for _, i := range invalid {
		drop[i] = struct{}{}
	}

	kept := make([]domain.Cell, 0, len(cells)-len(invalid))
	for i, c := range cells {
		if _, bad := drop[i]; bad {
			continue
		}
		kept = append(kept, c)
	}
	if len(kept) == 0 {
		return nil, &domain.InvalidSizeError{
			Feature: domain.FeatureROI,
			MinArea: minArea,
			MaxArea: maxArea,
		}
	}
	return kept, nil
}
