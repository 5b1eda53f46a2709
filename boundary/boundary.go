// Package boundary factors the two domain shapes springmesh supports
// — an axis-aligned rectangle and a cylindrical annulus — behind one
// interface so placement and the spring solver's boundary pinning do
// not special-case the shape.
package boundary

import (
	"math"

	"github.com/lattice2d/springmesh/geom"
	"github.com/lattice2d/springmesh/meshmodel"
)

// Side is one discretizable boundary segment: a class, its two
// endpoints, and its midpoint (used by initial placement to sample the
// desired-length field once per side).
type Side struct {
	Class    meshmodel.Class
	Start    geom.Point
	End      geom.Point
	Midpoint geom.Point
	Length   float64
}

// Boundary abstracts a domain shape.
type Boundary interface {
	// Contains reports whether p lies within the domain (inclusive
	// of the boundary, within a small tolerance).
	Contains(p geom.Point) bool
	// ProjectOntoSegment moves p back onto the segment implied by
	// class, preserving the free coordinate. Used to re-pin a
	// boundary point after a solver or smoother step.
	ProjectOntoSegment(p geom.Point, class meshmodel.Class) geom.Point
	// Corners returns the shape's immutable corner points, or an
	// empty slice for shapes (like the annulus) that have none.
	Corners() []geom.Point
	// Sides returns the ordered boundary segments to discretize.
	Sides() []Side
	// MinDistanceToBoundary returns the distance from p to the
	// nearest boundary locus, used by interior placement's 0.7*h
	// rejection rule.
	MinDistanceToBoundary(p geom.Point) float64
	// Centroid returns a representative interior point, used to
	// sample L0 for the interior hex lattice spacing in guide-mesh
	// mode.
	Centroid() geom.Point
	// Center returns the point relative to which a boundary-class
	// point's outward normal should be measured (the rectangle's own
	// centroid, or the annulus's circle center). Used to pin the
	// radial displacement component of annulus boundary points.
	Center() geom.Point
	// BoundingBox returns a rectangle enclosing the domain, used by
	// initial placement to bound the hex-lattice tiling scan.
	BoundingBox() (min, max geom.Point)
	// Discretize returns n evenly spaced points along side. For a
	// closed side (Start == End, e.g. an annulus circle) the
	// returned slice has exactly n points and does not repeat the
	// starting point; for an open side it has exactly n points
	// running from Start to End inclusive.
	Discretize(side Side, n int) []geom.Point
}

// Rectangle is the axis-aligned domain bounded by
// (XMin,XMax,YMin,YMax).
type Rectangle struct {
	XMin, XMax, YMin, YMax float64
}

func (r Rectangle) Corners() []geom.Point {
	return []geom.Point{
		{r.XMin, r.YMin},
		{r.XMax, r.YMin},
		{r.XMax, r.YMax},
		{r.XMin, r.YMax},
	}
}

func (r Rectangle) Contains(p geom.Point) bool {
	const eps = 1e-9
	return p[0] >= r.XMin-eps && p[0] <= r.XMax+eps && p[1] >= r.YMin-eps && p[1] <= r.YMax+eps
}

func (r Rectangle) ProjectOntoSegment(p geom.Point, class meshmodel.Class) geom.Point {
	switch class {
	case meshmodel.ClassBoundaryBottom:
		return geom.Point{p[0], r.YMin}
	case meshmodel.ClassBoundaryTop:
		return geom.Point{p[0], r.YMax}
	case meshmodel.ClassBoundaryLeft:
		return geom.Point{r.XMin, p[1]}
	case meshmodel.ClassBoundaryRight:
		return geom.Point{r.XMax, p[1]}
	default:
		return p
	}
}

func (r Rectangle) Sides() []Side {
	c := r.Corners()
	mk := func(class meshmodel.Class, a, b geom.Point) Side {
		return Side{Class: class, Start: a, End: b, Midpoint: geom.Midpoint(a, b), Length: geom.Distance(a, b)}
	}
	return []Side{
		mk(meshmodel.ClassBoundaryBottom, c[0], c[1]),
		mk(meshmodel.ClassBoundaryRight, c[1], c[2]),
		mk(meshmodel.ClassBoundaryTop, c[3], c[2]),
		mk(meshmodel.ClassBoundaryLeft, c[0], c[3]),
	}
}

func (r Rectangle) MinDistanceToBoundary(p geom.Point) float64 {
	d := math.Min(p[0]-r.XMin, r.XMax-p[0])
	d = math.Min(d, math.Min(p[1]-r.YMin, r.YMax-p[1]))
	return d
}

func (r Rectangle) Centroid() geom.Point {
	return geom.Point{(r.XMin + r.XMax) / 2, (r.YMin + r.YMax) / 2}
}

func (r Rectangle) Center() geom.Point { return r.Centroid() }

func (r Rectangle) BoundingBox() (min, max geom.Point) {
	return geom.Point{r.XMin, r.YMin}, geom.Point{r.XMax, r.YMax}
}

func (r Rectangle) Discretize(side Side, n int) []geom.Point {
	if n < 2 {
		n = 2
	}
	pts := make([]geom.Point, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n-1)
		pts[i] = geom.Point{
			side.Start[0] + t*(side.End[0]-side.Start[0]),
			side.Start[1] + t*(side.End[1]-side.Start[1]),
		}
	}
	return pts
}

// Annulus is the plane region between an inner and outer radius
// centered at (CX,CY), the variant domain shape alongside Rectangle.
type Annulus struct {
	CX, CY         float64
	RInner, ROuter float64
}

func (a Annulus) Contains(p geom.Point) bool {
	d := geom.Distance(p, geom.Point{a.CX, a.CY})
	const eps = 1e-9
	return d >= a.RInner-eps && d <= a.ROuter+eps
}

func (a Annulus) ProjectOntoSegment(p geom.Point, class meshmodel.Class) geom.Point {
	dx, dy := p[0]-a.CX, p[1]-a.CY
	r := math.Hypot(dx, dy)
	if r < 1e-12 {
		dx, dy, r = 1, 0, 1
	}
	var target float64
	switch class {
	case meshmodel.ClassBoundaryInner:
		target = a.RInner
	case meshmodel.ClassBoundaryOuter:
		target = a.ROuter
	default:
		return p
	}
	scale := target / r
	return geom.Point{a.CX + dx*scale, a.CY + dy*scale}
}

func (a Annulus) Corners() []geom.Point { return nil }

func (a Annulus) Sides() []Side {
	mk := func(class meshmodel.Class, radius float64) Side {
		start := geom.Point{a.CX + radius, a.CY}
		return Side{
			Class:    class,
			Start:    start,
			End:      start,
			Midpoint: geom.Point{a.CX + radius, a.CY},
			Length:   2 * math.Pi * radius,
		}
	}
	return []Side{
		mk(meshmodel.ClassBoundaryInner, a.RInner),
		mk(meshmodel.ClassBoundaryOuter, a.ROuter),
	}
}

func (a Annulus) MinDistanceToBoundary(p geom.Point) float64 {
	r := geom.Distance(p, geom.Point{a.CX, a.CY})
	return math.Min(r-a.RInner, a.ROuter-r)
}

func (a Annulus) Centroid() geom.Point {
	r := (a.RInner + a.ROuter) / 2
	return geom.Point{a.CX + r, a.CY}
}

func (a Annulus) Center() geom.Point { return geom.Point{a.CX, a.CY} }

func (a Annulus) BoundingBox() (min, max geom.Point) {
	return geom.Point{a.CX - a.ROuter, a.CY - a.ROuter}, geom.Point{a.CX + a.ROuter, a.CY + a.ROuter}
}

func (a Annulus) Discretize(side Side, n int) []geom.Point {
	if n < 3 {
		n = 3
	}
	radius := geom.Distance(side.Start, geom.Point{a.CX, a.CY})
	pts := make([]geom.Point, n)
	for i := 0; i < n; i++ {
		theta := 2 * math.Pi * float64(i) / float64(n)
		pts[i] = geom.Point{a.CX + radius*math.Cos(theta), a.CY + radius*math.Sin(theta)}
	}
	return pts
}
