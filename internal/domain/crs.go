// Package domain contains the core business entities and value objects.
package domain

import (
	"fmt"
	"math"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/proj"
)

// Common SRID constants.
const (
	SRIDWGS84 = 4326 // WGS 84, the canonical geographic reference

	// UTM EPSG code families. Zone N is utmNorthBase+N on the northern
	// hemisphere and utmSouthBase+N on the southern.
	utmNorthBase = 32600
	utmSouthBase = 32700
)

// UTMZone returns the UTM zone number (1-60) for a longitude in degrees.
func UTMZone(lon float64) int {
	zone := int(math.Floor((lon+180)/6)) + 1
	if zone < 1 {
		zone = 1
	}
	if zone > 60 {
		zone = 60
	}
	return zone
}

// UTMEpsg returns the EPSG code of the UTM CRS containing the given
// geographic coordinate. Northern-hemisphere zones map into the 326xx
// family, southern into 327xx.
func UTMEpsg(lon, lat float64) int {
	zone := UTMZone(lon)
	if lat < 0 {
		return utmSouthBase + zone
	}
	return utmNorthBase + zone
}

// UTMEpsgForGeom resolves the UTM CRS for a geometry from its bounds
// center. Area and length math in degrees is meaningless; every metric
// computation first resolves a local CRS through this function.
func UTMEpsgForGeom(g geom.Geom) (int, error) {
	if g == nil {
		return 0, ErrEmptyGeometry
	}
	b := g.Bounds()
	if b == nil || b.Min.X > b.Max.X || b.Min.Y > b.Max.Y {
		return 0, ErrEmptyGeometry
	}
	cx := (b.Min.X + b.Max.X) / 2
	cy := (b.Min.Y + b.Max.Y) / 2
	return UTMEpsg(cx, cy), nil
}

// ProjString returns the PROJ.4 definition for a supported EPSG code.
// Supported codes are WGS84 and the two UTM families.
func ProjString(epsg int) (string, error) {
	switch {
	case epsg == SRIDWGS84:
		return "+proj=longlat +datum=WGS84 +no_defs", nil
	case epsg > utmNorthBase && epsg <= utmNorthBase+60:
		return fmt.Sprintf("+proj=utm +zone=%d +datum=WGS84 +units=m +no_defs", epsg-utmNorthBase), nil
	case epsg > utmSouthBase && epsg <= utmSouthBase+60:
		return fmt.Sprintf("+proj=utm +zone=%d +south +datum=WGS84 +units=m +no_defs", epsg-utmSouthBase), nil
	default:
		return "", fmt.Errorf("epsg %d: %w", epsg, ErrInvalidCRS)
	}
}

// NewTransform builds a coordinate transformer between two EPSG codes.
func NewTransform(srcEpsg, dstEpsg int) (proj.Transformer, error) {
	srcDef, err := ProjString(srcEpsg)
	if err != nil {
		return nil, err
	}
	dstDef, err := ProjString(dstEpsg)
	if err != nil {
		return nil, err
	}
	src, err := proj.Parse(srcDef)
	if err != nil {
		return nil, fmt.Errorf("parsing source crs %d: %w", srcEpsg, err)
	}
	dst, err := proj.Parse(dstDef)
	if err != nil {
		return nil, fmt.Errorf("parsing target crs %d: %w", dstEpsg, err)
	}
	t, err := src.NewTransform(dst)
	if err != nil {
		return nil, fmt.Errorf("building transform %d->%d: %w", srcEpsg, dstEpsg, err)
	}
	return t, nil
}

// Reproject transforms a geometry between two EPSG codes.
func Reproject(g geom.Geom, srcEpsg, dstEpsg int) (geom.Geom, error) {
	if g == nil {
		return nil, ErrEmptyGeometry
	}
	if srcEpsg == dstEpsg {
		return g, nil
	}
	t, err := NewTransform(srcEpsg, dstEpsg)
	if err != nil {
		return nil, err
	}
	out, err := g.Transform(t)
	if err != nil {
		return nil, fmt.Errorf("reprojecting %d->%d: %w", srcEpsg, dstEpsg, err)
	}
	return out, nil
}

// GroundArea returns the true ground area in square meters of a
// geographic (WGS84) polygonal geometry, computed in the UTM CRS given
// by epsg. Pass the CRS of the overall extent when comparing areas
// across a table so every row uses the same projection.
func GroundArea(p geom.Polygonal, epsg int) (float64, error) {
	if p == nil {
		return 0, ErrEmptyGeometry
	}
	projected, err := Reproject(p, SRIDWGS84, epsg)
	if err != nil {
		return 0, err
	}
	pp, ok := projected.(geom.Polygonal)
	if !ok {
		return 0, fmt.Errorf("%T: %w", projected, ErrUnsupportedGeom)
	}
	return math.Abs(pp.Area()), nil
}

// Extent represents a spatial bounding box with its reference system.
type Extent struct {
	MinX float64
	MinY float64
	MaxX float64
	MaxY float64
	SRID int
}

// ExtentOf reads a geometry's bounds into an Extent.
func ExtentOf(g geom.Geom, srid int) Extent {
	b := g.Bounds()
	return Extent{MinX: b.Min.X, MinY: b.Min.Y, MaxX: b.Max.X, MaxY: b.Max.Y, SRID: srid}
}

// IsValid checks if the extent has valid dimensions.
func (e Extent) IsValid() bool {
	return e.MinX <= e.MaxX && e.MinY <= e.MaxY
}

// Width returns the width of the extent.
func (e Extent) Width() float64 {
	return math.Abs(e.MaxX - e.MinX)
}

// Height returns the height of the extent.
func (e Extent) Height() float64 {
	return math.Abs(e.MaxY - e.MinY)
}

// Center returns the center point of the extent.
func (e Extent) Center() geom.Point {
	return geom.Point{X: (e.MinX + e.MaxX) / 2, Y: (e.MinY + e.MaxY) / 2}
}

// Intersects reports whether two extents overlap.
func (e Extent) Intersects(o Extent) bool {
	return e.MinX <= o.MaxX && o.MinX <= e.MaxX &&
		e.MinY <= o.MaxY && o.MinY <= e.MaxY
}
