package grid

import (
	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"

	"github.com/coastgrid/coastgrid/internal/domain"
)

// FilterByCoastline keeps the cells whose geometry intersects at least
// one coastline feature, then drops exact-duplicate geometries keeping
// the first occurrence. An empty coastline yields an empty result; the
// caller decides whether that is fatal. Candidate features come from an
// R-tree over the coastline so each cell only tests features whose
// bounds overlap it.
func FilterByCoastline(cells []geom.Polygon, coastline *domain.Coastline) []geom.Polygon {
	if coastline.IsEmpty() || len(cells) == 0 {
		return nil
	}

	index := rtree.NewTree(25, 50)
	for _, f := range coastline.Features {
		index.Insert(f)
	}

	kept := make([]geom.Polygon, 0, len(cells))
	seen := make(map[string]struct{}, len(cells))
	for _, cell := range cells {
		if !intersectsAny(cell, index) {
			continue
		}
		fp := domain.GeometryFingerprint(cell)
		if _, dup := seen[fp]; dup {
			continue
		}
		seen[fp] = struct{}{}
		kept = append(kept, cell)
	}
	return kept
}

func intersectsAny(cell geom.Polygon, index *rtree.Rtree) bool {
	for _, candidate := range index.SearchIntersect(cell.Bounds()) {
		if polygonIntersectsLinear(cell, candidate) {
			return true
		}
	}
	return false
}

// polygonIntersectsLinear reports whether a polygon intersects a
// LineString or MultiLineString. True when any line segment crosses a
// ring edge, or when any line vertex lies inside the polygon (the line
// runs entirely within the cell).
func polygonIntersectsLinear(p geom.Polygon, g geom.Geom) bool {
	switch line := g.(type) {
	case geom.LineString:
		return polygonIntersectsLine(p, line)
	case geom.MultiLineString:
		for _, ls := range line {
			if polygonIntersectsLine(p, ls) {
				return true
			}
		}
	}
	return false
}

func polygonIntersectsLine(p geom.Polygon, line geom.LineString) bool {
	if len(line) == 0 {
		return false
	}
	for i := 0; i+1 < len(line); i++ {
		for _, ring := range p {
			for j := 0; j+1 < len(ring); j++ {
				if segmentsIntersect(line[i], line[i+1], ring[j], ring[j+1]) {
					return true
				}
			}
		}
	}
	for _, v := range line {
		if pointInPolygon(v, p) {
			return true
		}
	}
	return false
}

// segmentsIntersect reports whether segments ab and cd intersect,
// including touching endpoints and collinear overlap.
func segmentsIntersect(a, b, c, d geom.Point) bool {
	o1 := orientation(a, b, c)
	o2 := orientation(a, b, d)
	o3 := orientation(c, d, a)
	o4 := orientation(c, d, b)

	if o1 != o2 && o3 != o4 {
		return true
	}
	if o1 == 0 && onSegment(a, c, b) {
		return true
	}
	if o2 == 0 && onSegment(a, d, b) {
		return true
	}
	if o3 == 0 && onSegment(c, a, d) {
		return true
	}
	if o4 == 0 && onSegment(c, b, d) {
		return true
	}
	return false
}

// orientation returns the turn direction of the triple (a, b, c):
// 0 collinear, 1 clockwise, 2 counterclockwise.
func orientation(a, b, c geom.Point) int {
	v := (b.Y-a.Y)*(c.X-b.X) - (b.X-a.X)*(c.Y-b.Y)
	switch {
	case v > 0:
		return 1
	case v < 0:
		return 2
	default:
		return 0
	}
}

// onSegment reports whether q lies on segment pr, given the three
// points are collinear.
func onSegment(p, q, r geom.Point) bool {
	return q.X <= max(p.X, r.X) && q.X >= min(p.X, r.X) &&
		q.Y <= max(p.Y, r.Y) && q.Y >= min(p.Y, r.Y)
}

// pointInPolygon is a ray-casting test over every ring; a point inside
// a hole counts as outside.
func pointInPolygon(pt geom.Point, p geom.Polygon) bool {
	inside := false
	for _, ring := range p {
		n := len(ring)
		if n < 3 {
			continue
		}
		j := n - 1
		for i := 0; i < n; i++ {
			if (ring[i].Y > pt.Y) != (ring[j].Y > pt.Y) {
				x := ring[i].X + (pt.Y-ring[i].Y)/(ring[j].Y-ring[i].Y)*(ring[j].X-ring[i].X)
				if pt.X < x {
					inside = !inside
				}
			}
			j = i
		}
	}
	return inside
}
