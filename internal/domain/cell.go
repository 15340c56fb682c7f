package domain

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ctessum/geom"
)

// Size bounds for ROI cells in square meters. A cell whose true ground
// area falls outside [MinROIArea, MaxROIArea] is rejected. The lower
// bound is currently zero; both are overridable through configuration.
const (
	MinROIArea = 0.0
	MaxROIArea = 98_000_000.0
)

// FeatureROI is the feature category name used in validation errors.
const FeatureROI = "ROI"

// AllowedROIGeometryTypes lists the geometry types an ROI cell may carry.
var AllowedROIGeometryTypes = []string{"Polygon", "MultiPolygon"}

// Cell is one region of interest: a unique string id and a polygonal
// geometry in the canonical geographic reference (EPSG:4326).
type Cell struct {
	ID       string
	Geometry geom.Polygonal
}

// Fingerprint returns an exact representation of the cell geometry used
// for duplicate detection. Two cells are geometric duplicates only when
// their coordinate sequences match exactly.
func (c Cell) Fingerprint() string {
	return GeometryFingerprint(c.Geometry)
}

// CellTable is an ordered collection of cells with unique ids.
type CellTable struct {
	Cells []Cell
}

// NewCellTable creates a table from a slice of cells.
func NewCellTable(cells []Cell) *CellTable {
	return &CellTable{Cells: cells}
}

// Len returns the number of cells.
func (t *CellTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Cells)
}

// IsEmpty reports whether the table has no rows.
func (t *CellTable) IsEmpty() bool {
	return t.Len() == 0
}

// IDs returns the ids of all cells in table order.
func (t *CellTable) IDs() []string {
	ids := make([]string, 0, t.Len())
	for _, c := range t.Cells {
		ids = append(ids, c.ID)
	}
	return ids
}

// Get returns the cell with the given id.
func (t *CellTable) Get(id string) (Cell, error) {
	for _, c := range t.Cells {
		if c.ID == id {
			return c, nil
		}
	}
	return Cell{}, fmt.Errorf("%q: %w", id, ErrCellNotFound)
}

// Contains reports whether a cell with the given id exists.
func (t *CellTable) Contains(id string) bool {
	_, err := t.Get(id)
	return err == nil
}

// Clone returns a shallow copy of the table. Geometries are shared;
// they are treated as immutable throughout.
func (t *CellTable) Clone() *CellTable {
	cells := make([]Cell, len(t.Cells))
	copy(cells, t.Cells)
	return &CellTable{Cells: cells}
}

// Validate checks id uniqueness and geometry types.
func (t *CellTable) Validate() error {
	if err := ValidateGeometryTypes(FeatureROI, t.geometries(), AllowedROIGeometryTypes); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(t.Cells))
	for _, c := range t.Cells {
		if c.ID == "" {
			return &InvalidConfigurationError{Field: "id", Message: "cell id must be non-empty"}
		}
		if _, dup := seen[c.ID]; dup {
			return &InvalidConfigurationError{Field: "id", Message: fmt.Sprintf("duplicate cell id %q", c.ID)}
		}
		seen[c.ID] = struct{}{}
	}
	return nil
}

func (t *CellTable) geometries() []geom.Geom {
	gs := make([]geom.Geom, 0, len(t.Cells))
	for _, c := range t.Cells {
		gs = append(gs, c.Geometry)
	}
	return gs
}

// GeometryTypeName returns the type name of a geometry as used in
// validation error messages.
func GeometryTypeName(g geom.Geom) string {
	switch g.(type) {
	case geom.Point:
		return "Point"
	case geom.MultiPoint:
		return "MultiPoint"
	case geom.LineString:
		return "LineString"
	case geom.MultiLineString:
		return "MultiLineString"
	case geom.Polygon:
		return "Polygon"
	case geom.MultiPolygon:
		return "MultiPolygon"
	case geom.GeometryCollection:
		return "GeometryCollection"
	case nil:
		return "nil"
	default:
		return fmt.Sprintf("%T", g)
	}
}

// ValidateGeometryTypes checks that every geometry's type is in the
// allowed set, reporting the full sorted set of offending types.
func ValidateGeometryTypes(feature string, geoms []geom.Geom, allowed []string) error {
	ok := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		ok[a] = struct{}{}
	}
	bad := make(map[string]struct{})
	for _, g := range geoms {
		name := GeometryTypeName(g)
		if _, allowed := ok[name]; !allowed {
			bad[name] = struct{}{}
		}
	}
	if len(bad) == 0 {
		return nil
	}
	found := make([]string, 0, len(bad))
	for name := range bad {
		found = append(found, name)
	}
	sort.Strings(found)
	return &InvalidGeometryTypeError{Feature: feature, Expected: allowed, Found: found}
}

// GeometryFingerprint serializes a geometry's exact coordinate sequence.
// Used to detect duplicate geometries; no tolerance is applied.
func GeometryFingerprint(g geom.Geom) string {
	var b strings.Builder
	writeGeomFingerprint(&b, g)
	return b.String()
}

func writeGeomFingerprint(b *strings.Builder, g geom.Geom) {
	switch v := g.(type) {
	case geom.Point:
		fmt.Fprintf(b, "P(%v %v)", v.X, v.Y)
	case geom.LineString:
		b.WriteString("L[")
		for _, p := range v {
			fmt.Fprintf(b, "(%v %v)", p.X, p.Y)
		}
		b.WriteString("]")
	case geom.MultiLineString:
		b.WriteString("ML[")
		for _, ls := range v {
			writeGeomFingerprint(b, ls)
		}
		b.WriteString("]")
	case geom.Polygon:
		b.WriteString("PG[")
		for _, ring := range v {
			b.WriteString("R[")
			for _, p := range ring {
				fmt.Fprintf(b, "(%v %v)", p.X, p.Y)
			}
			b.WriteString("]")
		}
		b.WriteString("]")
	case geom.MultiPolygon:
		b.WriteString("MP[")
		for _, pg := range v {
			writeGeomFingerprint(b, pg)
		}
		b.WriteString("]")
	case nil:
		b.WriteString("nil")
	default:
		fmt.Fprintf(b, "%#v", g)
	}
}
