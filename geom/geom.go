// Package geom holds the pure geometric primitives shared by every
// other package in springmesh: point coordinates, triangle quality,
// and barycentric interpolation. Points are represented with
// github.com/paulmach/orb.Point so the mesh can be handed off to any
// orb-based consumer (bounds, clipping, spatial indexes) without a
// conversion layer.
package geom

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Point is the 2D coordinate type used throughout springmesh.
type Point = orb.Point

// Sub returns a-b as a displacement vector.
func Sub(a, b Point) Point {
	return Point{a[0] - b[0], a[1] - b[1]}
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return planar.Distance(a, b)
}

// Norm returns the Euclidean length of v.
func Norm(v Point) float64 {
	return math.Hypot(v[0], v[1])
}

// SignedArea returns twice the signed area of the triangle (p1,p2,p3)
// divided by two; positive when the vertices are wound
// counter-clockwise, zero when collinear, negative when inverted.
func SignedArea(p1, p2, p3 Point) float64 {
	return 0.5 * ((p2[0]-p1[0])*(p3[1]-p1[1]) - (p3[0]-p1[0])*(p2[1]-p1[1]))
}

// Barycentric returns the barycentric weights of p with respect to
// the triangle (p1,p2,p3). ok is false when the triangle is
// degenerate (zero area) and the weights should not be trusted.
func Barycentric(p, p1, p2, p3 Point) (w1, w2, w3 float64, ok bool) {
	denom := (p2[1]-p3[1])*(p1[0]-p3[0]) + (p3[0]-p2[0])*(p1[1]-p3[1])
	if math.Abs(denom) < 1e-12 {
		return 0, 0, 0, false
	}
	w1 = ((p2[1]-p3[1])*(p[0]-p3[0]) + (p3[0]-p2[0])*(p[1]-p3[1])) / denom
	w2 = ((p3[1]-p1[1])*(p[0]-p3[0]) + (p1[0]-p3[0])*(p[1]-p3[1])) / denom
	w3 = 1 - w1 - w2
	return w1, w2, w3, true
}

// InTriangle reports whether p lies inside or on the boundary of the
// triangle (p1,p2,p3), using a small epsilon to tolerate edge cases.
func InTriangle(p, p1, p2, p3 Point) bool {
	w1, w2, w3, ok := Barycentric(p, p1, p2, p3)
	if !ok {
		return false
	}
	const eps = 1e-9
	return w1 >= -eps && w2 >= -eps && w3 >= -eps
}

// QualityFactor returns the normalized triangle quality
// q = 4*sqrt(3)*A / (a^2+b^2+c^2), where A is the signed area and
// a,b,c are the side lengths. q is 1 for an equilateral triangle, 0
// in the degenerate limit, and negative for an inverted triangle
// (callers that need a bounded [0,1] score should clamp).
func QualityFactor(p1, p2, p3 Point) float64 {
	a := Distance(p2, p3)
	b := Distance(p3, p1)
	c := Distance(p1, p2)
	sum := a*a + b*b + c*c
	if sum < 1e-18 {
		return 0
	}
	area := SignedArea(p1, p2, p3)
	return 4 * math.Sqrt(3) * area / sum
}

// Centroid returns the arithmetic mean of the given points.
func Centroid(pts ...Point) Point {
	var cx, cy float64
	for _, p := range pts {
		cx += p[0]
		cy += p[1]
	}
	n := float64(len(pts))
	return Point{cx / n, cy / n}
}

// Midpoint returns the midpoint of a and b.
func Midpoint(a, b Point) Point {
	return Point{(a[0] + b[0]) / 2, (a[1] + b[1]) / 2}
}
