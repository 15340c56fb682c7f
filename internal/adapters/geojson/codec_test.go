package geojson

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/ctessum/geom"

	"github.com/coastgrid/coastgrid/internal/domain"
)

func TestDecodeCellTable(t *testing.T) {
	raw := `{
		"type": "FeatureCollection",
		"features": [
			{
				"type": "Feature",
				"id": "abc12345",
				"geometry": {"type": "Polygon", "coordinates": [[[0,0],[1,0],[1,1],[0,1],[0,0]]]},
				"properties": {"id": "abc12345"}
			},
			{
				"type": "Feature",
				"geometry": {"type": "MultiPolygon", "coordinates": [[[[2,2],[3,2],[3,3],[2,3],[2,2]]]]},
				"properties": {}
			}
		]
	}`

	var fc FeatureCollection
	if err := json.Unmarshal([]byte(raw), &fc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	table, err := DecodeCellTable(&fc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.Len() != 2 {
		t.Fatalf("got %d cells, want 2", table.Len())
	}
	if table.Cells[0].ID != "abc12345" {
		t.Errorf("cell 0 id = %q, want abc12345", table.Cells[0].ID)
	}
	if table.Cells[1].ID != "" {
		t.Errorf("cell 1 id = %q, want empty for the id assigner", table.Cells[1].ID)
	}
	if _, ok := table.Cells[1].Geometry.(geom.MultiPolygon); !ok {
		t.Errorf("cell 1 geometry is %T, want MultiPolygon", table.Cells[1].Geometry)
	}
}

func TestDecodeCellTableRejectsNonPolygonal(t *testing.T) {
	fc := &FeatureCollection{
		Type: "FeatureCollection",
		Features: []Feature{{
			Type:     "Feature",
			Geometry: &Geometry{Type: "Point", Coordinates: json.RawMessage(`[1,2]`)},
		}},
	}

	_, err := DecodeCellTable(fc)
	var typeErr *domain.InvalidGeometryTypeError
	if !errors.As(err, &typeErr) {
		t.Fatalf("expected InvalidGeometryTypeError, got %v", err)
	}
	if typeErr.Found[0] != "Point" {
		t.Errorf("Found = %v, want [Point]", typeErr.Found)
	}
}

func TestEncodeCellTableRoundTrip(t *testing.T) {
	table := domain.NewCellTable([]domain.Cell{
		{ID: "cell1", Geometry: geom.Polygon{{
			{X: -121.9, Y: 36.5}, {X: -121.8, Y: 36.5},
			{X: -121.8, Y: 36.6}, {X: -121.9, Y: 36.6},
			{X: -121.9, Y: 36.5},
		}}},
	})

	fc, err := EncodeCellTable(table)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	decoded, err := DecodeCellTable(fc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Len() != 1 || decoded.Cells[0].ID != "cell1" {
		t.Fatalf("round trip lost the cell: %+v", decoded.Cells)
	}
	if domain.GeometryFingerprint(decoded.Cells[0].Geometry) !=
		domain.GeometryFingerprint(table.Cells[0].Geometry) {
		t.Error("round trip changed the geometry")
	}
}

func TestCollectionEpsg(t *testing.T) {
	tests := []struct {
		name    string
		crsName string
		want    int
		wantErr bool
	}{
		{name: "absent", crsName: "", want: 4326},
		{name: "ogc crs84", crsName: "urn:ogc:def:crs:OGC:1.3:CRS84", want: 4326},
		{name: "epsg shorthand", crsName: "EPSG:32610", want: 32610},
		{name: "ogc urn", crsName: "urn:ogc:def:crs:EPSG::32756", want: 32756},
		{name: "garbage", crsName: "not-a-crs", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := &FeatureCollection{Type: "FeatureCollection"}
			if tt.crsName != "" {
				fc.CRS = &namedCRS{Type: "name"}
				fc.CRS.Properties.Name = tt.crsName
			}
			got, err := collectionEpsg(fc)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrInvalidCRS) {
					t.Errorf("expected ErrInvalidCRS, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("collectionEpsg() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDecodeCoastline(t *testing.T) {
	fc := &FeatureCollection{
		Type: "FeatureCollection",
		Features: []Feature{
			{Type: "Feature", Geometry: &Geometry{
				Type:        "LineString",
				Coordinates: json.RawMessage(`[[0,0],[1,1]]`),
			}},
			{Type: "Feature", Geometry: &Geometry{
				Type:        "MultiLineString",
				Coordinates: json.RawMessage(`[[[2,2],[3,3]]]`),
			}},
		},
	}

	coastline, err := DecodeCoastline(fc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(coastline.Features) != 2 {
		t.Errorf("got %d features, want 2", len(coastline.Features))
	}

	empty := &FeatureCollection{Type: "FeatureCollection"}
	if _, err := DecodeCoastline(empty); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound for empty collection, got %v", err)
	}
}
