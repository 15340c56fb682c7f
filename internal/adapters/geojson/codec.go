// Package geojson converts between the domain geometry model and
// GeoJSON feature collections, the wire and file format for ROI tables
// and reference shorelines.
package geojson

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/ctessum/geom"

	"github.com/coastgrid/coastgrid/internal/domain"
)

// Geometry is a GeoJSON geometry object.
type Geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// Feature is a GeoJSON feature.
type Feature struct {
	Type       string         `json:"type"`
	ID         any            `json:"id,omitempty"`
	Geometry   *Geometry      `json:"geometry"`
	Properties map[string]any `json:"properties,omitempty"`
}

// namedCRS is the legacy GeoJSON crs member. RFC 7946 dropped it, but
// files written by older tooling still carry it; when present and not
// WGS84 the collection is reprojected on decode.
type namedCRS struct {
	Type       string `json:"type"`
	Properties struct {
		Name string `json:"name"`
	} `json:"properties"`
}

// FeatureCollection is a GeoJSON feature collection.
type FeatureCollection struct {
	Type     string    `json:"type"`
	CRS      *namedCRS `json:"crs,omitempty"`
	Features []Feature `json:"features"`
}

// EncodeGeometry converts a domain geometry to its GeoJSON form.
func EncodeGeometry(g geom.Geom) (*Geometry, error) {
	switch v := g.(type) {
	case geom.Point:
		return rawGeometry("Point", [2]float64{v.X, v.Y})
	case geom.LineString:
		return rawGeometry("LineString", encodeLine(v))
	case geom.MultiLineString:
		lines := make([][][2]float64, len(v))
		for i, ls := range v {
			lines[i] = encodeLine(ls)
		}
		return rawGeometry("MultiLineString", lines)
	case geom.Polygon:
		return rawGeometry("Polygon", encodePolygon(v))
	case geom.MultiPolygon:
		polys := make([][][][2]float64, len(v))
		for i, p := range v {
			polys[i] = encodePolygon(p)
		}
		return rawGeometry("MultiPolygon", polys)
	default:
		return nil, fmt.Errorf("%s: %w", domain.GeometryTypeName(g), domain.ErrUnsupportedGeom)
	}
}

// DecodeGeometry converts a GeoJSON geometry to the domain model.
func DecodeGeometry(g *Geometry) (geom.Geom, error) {
	if g == nil {
		return nil, domain.ErrEmptyGeometry
	}
	switch g.Type {
	case "Point":
		var c [2]float64
		if err := json.Unmarshal(g.Coordinates, &c); err != nil {
			return nil, decodeErr(g.Type, err)
		}
		return geom.Point{X: c[0], Y: c[1]}, nil
	case "LineString":
		var c [][2]float64
		if err := json.Unmarshal(g.Coordinates, &c); err != nil {
			return nil, decodeErr(g.Type, err)
		}
		return decodeLine(c), nil
	case "MultiLineString":
		var c [][][2]float64
		if err := json.Unmarshal(g.Coordinates, &c); err != nil {
			return nil, decodeErr(g.Type, err)
		}
		ml := make(geom.MultiLineString, len(c))
		for i, line := range c {
			ml[i] = decodeLine(line)
		}
		return ml, nil
	case "Polygon":
		var c [][][2]float64
		if err := json.Unmarshal(g.Coordinates, &c); err != nil {
			return nil, decodeErr(g.Type, err)
		}
		return decodePolygon(c), nil
	case "MultiPolygon":
		var c [][][][2]float64
		if err := json.Unmarshal(g.Coordinates, &c); err != nil {
			return nil, decodeErr(g.Type, err)
		}
		mp := make(geom.MultiPolygon, len(c))
		for i, p := range c {
			mp[i] = decodePolygon(p)
		}
		return mp, nil
	default:
		return nil, fmt.Errorf("%s: %w", g.Type, domain.ErrUnsupportedGeom)
	}
}

// EncodeCellTable serializes a cell table as a feature collection, one
// feature per cell with the cell id as the feature id.
func EncodeCellTable(table *domain.CellTable) (*FeatureCollection, error) {
	features := make([]Feature, 0, table.Len())
	for _, cell := range table.Cells {
		g, err := EncodeGeometry(cell.Geometry)
		if err != nil {
			return nil, fmt.Errorf("cell %s: %w", cell.ID, err)
		}
		features = append(features, Feature{
			Type:       "Feature",
			ID:         cell.ID,
			Geometry:   g,
			Properties: map[string]any{"id": cell.ID},
		})
	}
	return &FeatureCollection{Type: "FeatureCollection", Features: features}, nil
}

// DecodeCellTable parses a feature collection into a cell table,
// normalizing to EPSG:4326 when the collection carries a legacy crs
// member. Feature ids fall back to an "id" property; missing ids are
// left empty for the id assigner.
func DecodeCellTable(fc *FeatureCollection) (*domain.CellTable, error) {
	epsg, err := collectionEpsg(fc)
	if err != nil {
		return nil, err
	}
	cells := make([]domain.Cell, 0, len(fc.Features))
	for i, f := range fc.Features {
		g, err := DecodeGeometry(f.Geometry)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		if epsg != domain.SRIDWGS84 {
			if g, err = domain.Reproject(g, epsg, domain.SRIDWGS84); err != nil {
				return nil, fmt.Errorf("feature %d: %w", i, err)
			}
		}
		p, ok := g.(geom.Polygonal)
		if !ok {
			return nil, &domain.InvalidGeometryTypeError{
				Feature:  domain.FeatureROI,
				Expected: domain.AllowedROIGeometryTypes,
				Found:    []string{domain.GeometryTypeName(g)},
			}
		}
		cells = append(cells, domain.Cell{ID: featureID(f), Geometry: p})
	}
	return domain.NewCellTable(cells), nil
}

// DecodeCoastline parses a feature collection of linear features,
// normalizing the reference system like DecodeCellTable.
func DecodeCoastline(fc *FeatureCollection) (*domain.Coastline, error) {
	epsg, err := collectionEpsg(fc)
	if err != nil {
		return nil, err
	}
	features := make([]geom.Geom, 0, len(fc.Features))
	for i, f := range fc.Features {
		g, err := DecodeGeometry(f.Geometry)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		if epsg != domain.SRIDWGS84 {
			if g, err = domain.Reproject(g, epsg, domain.SRIDWGS84); err != nil {
				return nil, fmt.Errorf("feature %d: %w", i, err)
			}
		}
		features = append(features, g)
	}
	return domain.NewCoastline(features)
}

func featureID(f Feature) string {
	switch id := f.ID.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	}
	if f.Properties != nil {
		switch id := f.Properties["id"].(type) {
		case string:
			return id
		case float64:
			return strconv.FormatFloat(id, 'f', -1, 64)
		}
	}
	return ""
}

// collectionEpsg reads the EPSG code from a legacy crs member,
// defaulting to WGS84. Accepted forms are "EPSG:n" and the OGC urn
// "urn:ogc:def:crs:EPSG::n".
func collectionEpsg(fc *FeatureCollection) (int, error) {
	if fc.CRS == nil || fc.CRS.Properties.Name == "" {
		return domain.SRIDWGS84, nil
	}
	name := fc.CRS.Properties.Name
	if strings.EqualFold(name, "urn:ogc:def:crs:OGC:1.3:CRS84") {
		return domain.SRIDWGS84, nil
	}
	idx := strings.LastIndexAny(name, ":")
	if idx < 0 || !strings.Contains(strings.ToUpper(name), "EPSG") {
		return 0, fmt.Errorf("crs %q: %w", name, domain.ErrInvalidCRS)
	}
	code, err := strconv.Atoi(name[idx+1:])
	if err != nil {
		return 0, fmt.Errorf("crs %q: %w", name, domain.ErrInvalidCRS)
	}
	return code, nil
}

func rawGeometry(typ string, coords any) (*Geometry, error) {
	raw, err := json.Marshal(coords)
	if err != nil {
		return nil, fmt.Errorf("encoding %s coordinates: %w", typ, err)
	}
	return &Geometry{Type: typ, Coordinates: raw}, nil
}

func decodeErr(typ string, err error) error {
	return fmt.Errorf("decoding %s coordinates: %w", typ, err)
}

func encodeLine(ls geom.LineString) [][2]float64 {
	out := make([][2]float64, len(ls))
	for i, p := range ls {
		out[i] = [2]float64{p.X, p.Y}
	}
	return out
}

func decodeLine(c [][2]float64) geom.LineString {
	ls := make(geom.LineString, len(c))
	for i, p := range c {
		ls[i] = geom.Point{X: p[0], Y: p[1]}
	}
	return ls
}

func encodePolygon(p geom.Polygon) [][][2]float64 {
	rings := make([][][2]float64, len(p))
	for i, ring := range p {
		rings[i] = make([][2]float64, len(ring))
		for j, pt := range ring {
			rings[i][j] = [2]float64{pt.X, pt.Y}
		}
	}
	return rings
}

func decodePolygon(c [][][2]float64) geom.Polygon {
	p := make(geom.Polygon, len(c))
	for i, ring := range c {
		p[i] = make([]geom.Point, len(ring))
		for j, pt := range ring {
			p[i][j] = geom.Point{X: pt[0], Y: pt[1]}
		}
	}
	return p
}
