// Package delaunay implements the triangulation primitive the rest
// of springmesh treats as opaque: Triangulate(points) -> triangles.
// It is a Bowyer-Watson incremental triangulator operating directly
// on 2D points and an in-circle predicate, with edges compared by
// a canonicalized (min,max) index-pair key rather than by pointer
// identity.
package delaunay

import (
	"math"

	"github.com/lattice2d/springmesh/errs"
	"github.com/lattice2d/springmesh/geom"
	"github.com/lattice2d/springmesh/meshmodel"
)

type triangle struct {
	a, b, c int // indices into the working point slice, which appends the three super-triangle vertices at the end
}

type edge struct{ p0, p1 int }

func canon(p0, p1 int) edge {
	if p0 > p1 {
		p0, p1 = p1, p0
	}
	return edge{p0, p1}
}

// Triangulate computes the 2D Delaunay triangulation of pts and
// returns CCW-wound index triples into pts. It returns
// *errs.DegenerateGeometry when fewer than 3 points are given or the
// input is fully collinear.
func Triangulate(pts []geom.Point) ([]meshmodel.Triangle, error) {
	n := len(pts)
	if n < 3 {
		return nil, &errs.DegenerateGeometry{PointCount: n, Reason: "fewer than 3 points"}
	}

	work := make([]geom.Point, n, n+3)
	copy(work, pts)

	s0, s1, s2 := superTriangle(pts)
	work = append(work, s0, s1, s2)
	superA, superB, superC := n, n+1, n+2

	tris := []triangle{{superA, superB, superC}}

	for i := 0; i < n; i++ {
		tris = insertPoint(tris, work, i)
	}

	final := make([]meshmodel.Triangle, 0, len(tris))
	for _, tr := range tris {
		if tr.a >= n || tr.b >= n || tr.c >= n {
			continue // touches a super-triangle vertex
		}
		final = append(final, ccw(work, tr))
	}

	if len(final) == 0 {
		return nil, &errs.DegenerateGeometry{PointCount: n, Reason: "all points collinear"}
	}
	return final, nil
}

func insertPoint(tris []triangle, pts []geom.Point, pointIdx int) []triangle {
	p := pts[pointIdx]

	var bad []triangle
	for _, tr := range tris {
		if inCircumcircle(pts, tr, p) {
			bad = append(bad, tr)
		}
	}

	boundary := polygonBoundary(bad)

	kept := make([]triangle, 0, len(tris))
	for _, tr := range tris {
		if !containsTriangle(bad, tr) {
			kept = append(kept, tr)
		}
	}

	for _, e := range boundary {
		kept = append(kept, triangle{e.p0, e.p1, pointIdx})
	}
	return kept
}

// polygonBoundary returns the edges of the bad-triangle set that are
// not shared between two bad triangles: the cavity boundary the new
// point's fan connects to.
func polygonBoundary(bad []triangle) []edge {
	count := make(map[edge]int)
	order := make(map[edge]edge) // preserves original (unswapped) winding per canonical key
	for _, tr := range bad {
		for _, e := range []edge{{tr.a, tr.b}, {tr.b, tr.c}, {tr.c, tr.a}} {
			key := canon(e.p0, e.p1)
			count[key]++
			order[key] = e
		}
	}
	var out []edge
	for key, c := range count {
		if c == 1 {
			out = append(out, order[key])
		}
	}
	return out
}

func containsTriangle(set []triangle, tr triangle) bool {
	for _, s := range set {
		if s == tr {
			return true
		}
	}
	return false
}

func inCircumcircle(pts []geom.Point, tr triangle, p geom.Point) bool {
	cx, cy, r2 := circumcircle(pts[tr.a], pts[tr.b], pts[tr.c])
	if math.IsInf(r2, 1) {
		return false
	}
	dx, dy := p[0]-cx, p[1]-cy
	return dx*dx+dy*dy < r2
}

func circumcircle(a, b, c geom.Point) (cx, cy, r2 float64) {
	ax, ay := a[0], a[1]
	bx, by := b[0], b[1]
	ccx, ccy := c[0], c[1]

	d := 2 * (ax*(by-ccy) + bx*(ccy-ay) + ccx*(ay-by))
	if math.Abs(d) < 1e-12 {
		return 0, 0, math.Inf(1)
	}

	ux := (ax*ax+ay*ay)*(by-ccy) + (bx*bx+by*by)*(ccy-ay) + (ccx*ccx+ccy*ccy)*(ay-by)
	uy := (ax*ax+ay*ay)*(ccx-bx) + (bx*bx+by*by)*(ax-ccx) + (ccx*ccx+ccy*ccy)*(bx-ax)

	cx = ux / d
	cy = uy / d
	r2 = (cx-ax)*(cx-ax) + (cy-ay)*(cy-ay)
	return cx, cy, r2
}

func superTriangle(pts []geom.Point) (p0, p1, p2 geom.Point) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		minX = math.Min(minX, p[0])
		maxX = math.Max(maxX, p[0])
		minY = math.Min(minY, p[1])
		maxY = math.Max(maxY, p[1])
	}
	dx, dy := maxX-minX, maxY-minY
	delta := math.Max(dx, dy)
	if delta == 0 {
		delta = 1
	}
	midX, midY := (minX+maxX)/2, (minY+maxY)/2

	p0 = geom.Point{midX - 20*delta, midY - delta}
	p1 = geom.Point{midX, midY + 20*delta}
	p2 = geom.Point{midX + 20*delta, midY - delta}
	return
}

// ccw returns tr's indices reordered so the triangle winds
// counter-clockwise, the winding every other package assumes.
func ccw(pts []geom.Point, tr triangle) meshmodel.Triangle {
	if geom.SignedArea(pts[tr.a], pts[tr.b], pts[tr.c]) < 0 {
		return meshmodel.Triangle{tr.a, tr.c, tr.b}
	}
	return meshmodel.Triangle{tr.a, tr.b, tr.c}
}
