package grid

import (
	"math"
	"testing"

	"github.com/ctessum/geom"

	"github.com/coastgrid/coastgrid/internal/domain"
)

func square(x, y, side float64) geom.Polygon {
	return geom.Polygon{{
		{X: x, Y: y},
		{X: x + side, Y: y},
		{X: x + side, Y: y + side},
		{X: x, Y: y + side},
		{X: x, Y: y},
	}}
}

func coastlineOf(t *testing.T, features ...geom.Geom) *domain.Coastline {
	t.Helper()
	c, err := domain.NewCoastline(features)
	if err != nil {
		t.Fatalf("building coastline: %v", err)
	}
	return c
}

func TestFilterByCoastline(t *testing.T) {
	crossing := geom.LineString{{X: -1, Y: 0.5}, {X: 1.5, Y: 0.5}}

	tests := []struct {
		name      string
		cells     []geom.Polygon
		coastline *domain.Coastline
		want      int
	}{
		{
			name:      "keeps crossed cell only",
			cells:     []geom.Polygon{square(0, 0, 1), square(3, 3, 1)},
			coastline: coastlineOf(t, crossing),
			want:      1,
		},
		{
			name:      "line fully inside cell",
			cells:     []geom.Polygon{square(0, 0, 1)},
			coastline: coastlineOf(t, geom.LineString{{X: 0.2, Y: 0.2}, {X: 0.8, Y: 0.8}}),
			want:      1,
		},
		{
			name:  "line crossing without interior vertices",
			cells: []geom.Polygon{square(0, 0, 1)},
			coastline: coastlineOf(t, geom.LineString{
				{X: -1, Y: 0.5}, {X: 2, Y: 0.5},
			}),
			want: 1,
		},
		{
			name:      "multilinestring feature",
			cells:     []geom.Polygon{square(0, 0, 1), square(5, 5, 1)},
			coastline: coastlineOf(t, geom.MultiLineString{{{X: 5.1, Y: 4}, {X: 5.1, Y: 7}}}),
			want:      1,
		},
		{
			name:      "no intersection",
			cells:     []geom.Polygon{square(10, 10, 1)},
			coastline: coastlineOf(t, crossing),
			want:      0,
		},
		{
			name:      "empty coastline yields empty result",
			cells:     []geom.Polygon{square(0, 0, 1)},
			coastline: nil,
			want:      0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterByCoastline(tt.cells, tt.coastline)
			if len(got) != tt.want {
				t.Errorf("kept %d cells, want %d", len(got), tt.want)
			}
		})
	}
}

func TestFilterByCoastlineDropsDuplicates(t *testing.T) {
	crossing := geom.LineString{{X: -1, Y: 0.5}, {X: 3, Y: 0.5}}
	dup := square(0, 0, 1)
	cells := []geom.Polygon{dup, square(1, 0, 1), dup}

	got := FilterByCoastline(cells, coastlineOf(t, crossing))
	if len(got) != 2 {
		t.Fatalf("kept %d cells, want 2 after dedup", len(got))
	}
	// First occurrence wins.
	if domain.GeometryFingerprint(got[0]) != domain.GeometryFingerprint(dup) {
		t.Error("expected the first duplicate occurrence to be kept")
	}
}

func TestFilterFishnetTiles(t *testing.T) {
	// A box narrower than one 5km square tiles into exactly one cell.
	// The diagonal shoreline crosses it, so the filter keeps it, and
	// its ground area must sit within 5% of side².
	box := bboxAt(t, -121.90, 36.50, -121.86, 36.53)
	shoreline := coastlineOf(t, geom.LineString{
		{X: -121.90, Y: 36.50}, {X: -121.86, Y: 36.53},
	})

	tiles, err := Fishnet(box, 5000, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tiles) != 1 {
		t.Fatalf("got %d tiles, want 1", len(tiles))
	}

	kept := FilterByCoastline(tiles, shoreline)
	if len(kept) != 1 {
		t.Fatalf("kept %d tiles, want 1", len(kept))
	}

	epsg, err := domain.UTMEpsgForGeom(kept[0])
	if err != nil {
		t.Fatalf("resolving UTM zone: %v", err)
	}
	area, err := domain.GroundArea(kept[0], epsg)
	if err != nil {
		t.Fatalf("computing ground area: %v", err)
	}
	want := 5000.0 * 5000.0
	if math.Abs(area-want)/want > 0.05 {
		t.Errorf("kept tile area = %.0f m², want within 5%% of %.0f", area, want)
	}
}

func TestSegmentsIntersect(t *testing.T) {
	tests := []struct {
		name       string
		a, b, c, d geom.Point
		want       bool
	}{
		{
			name: "crossing",
			a:    geom.Point{X: 0, Y: 0}, b: geom.Point{X: 2, Y: 2},
			c: geom.Point{X: 0, Y: 2}, d: geom.Point{X: 2, Y: 0},
			want: true,
		},
		{
			name: "parallel disjoint",
			a:    geom.Point{X: 0, Y: 0}, b: geom.Point{X: 1, Y: 0},
			c: geom.Point{X: 0, Y: 1}, d: geom.Point{X: 1, Y: 1},
			want: false,
		},
		{
			name: "touching endpoint",
			a:    geom.Point{X: 0, Y: 0}, b: geom.Point{X: 1, Y: 1},
			c: geom.Point{X: 1, Y: 1}, d: geom.Point{X: 2, Y: 0},
			want: true,
		},
		{
			name: "collinear overlap",
			a:    geom.Point{X: 0, Y: 0}, b: geom.Point{X: 2, Y: 0},
			c: geom.Point{X: 1, Y: 0}, d: geom.Point{X: 3, Y: 0},
			want: true,
		},
		{
			name: "collinear disjoint",
			a:    geom.Point{X: 0, Y: 0}, b: geom.Point{X: 1, Y: 0},
			c: geom.Point{X: 2, Y: 0}, d: geom.Point{X: 3, Y: 0},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := segmentsIntersect(tt.a, tt.b, tt.c, tt.d); got != tt.want {
				t.Errorf("segmentsIntersect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPointInPolygon(t *testing.T) {
	donut := geom.Polygon{
		{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}, {X: 0, Y: 0}},
		{{X: 4, Y: 4}, {X: 6, Y: 4}, {X: 6, Y: 6}, {X: 4, Y: 6}, {X: 4, Y: 4}},
	}

	tests := []struct {
		name string
		pt   geom.Point
		want bool
	}{
		{name: "inside shell", pt: geom.Point{X: 2, Y: 2}, want: true},
		{name: "inside hole", pt: geom.Point{X: 5, Y: 5}, want: false},
		{name: "outside", pt: geom.Point{X: 20, Y: 5}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pointInPolygon(tt.pt, donut); got != tt.want {
				t.Errorf("pointInPolygon(%v) = %v, want %v", tt.pt, got, tt.want)
			}
		})
	}
}
