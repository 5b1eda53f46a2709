// Package meshmodel holds the Mesh data model: points, their classes
// and stable identities, the triangle and bar lists derived from them,
// and the per-point/per-bar scalar fields the rest of springmesh reads
// and writes, laid out as parallel slices (struct-of-arrays) rather
// than a graph of pointers.
package meshmodel

import (
	"github.com/google/uuid"

	"github.com/lattice2d/springmesh/geom"
)

// Class identifies which part of the domain boundary (if any) a point
// is constrained to.
type Class uint8

const (
	ClassInterior Class = iota
	ClassCorner
	ClassBoundaryBottom
	ClassBoundaryTop
	ClassBoundaryLeft
	ClassBoundaryRight
	// ClassBoundaryInner and ClassBoundaryOuter are used by the
	// annulus domain variant in place of the four rectangle classes.
	ClassBoundaryInner
	ClassBoundaryOuter
)

// IsBoundary reports whether the class constrains the point to a
// domain edge or corner (i.e. is not free interior motion).
func (c Class) IsBoundary() bool {
	return c != ClassInterior
}

// IsCorner reports whether the class is an immutable domain corner.
func (c Class) IsCorner() bool {
	return c == ClassCorner
}

// Point is a single mesh node: a position, a class constraining its
// motion, a stable identity surviving array compaction, and the
// desired edge length at its location.
type Point struct {
	ID    uuid.UUID
	Pos   geom.Point
	Class Class
	L0    float64
}

// Triangle is a CCW-wound index triple into Mesh.P.
type Triangle [3]int

// Bar is a canonicalized undirected edge: A < B, indices into Mesh.P.
type Bar struct {
	A, B int
}

// Mesh is the core's owned, mutable data structure. It is a plain
// value: every package in springmesh either reads it or returns a new
// one; only the driver holds and mutates the authoritative copy.
type Mesh struct {
	P []Point
	T []Triangle
	B []Bar

	// L is the actual length of bar i (parallel to B).
	L []float64
	// L0Bar is the rest length of bar i (parallel to B), derived
	// from the endpoints' L0 and scaled by Settings.RestLengthScale.
	L0Bar []float64
	// Q is the quality factor of triangle i (parallel to T).
	Q []float64
}

// Clone returns a deep copy of m suitable for a rollback snapshot.
// Point, Triangle and Bar are plain value types, so copying the
// slices is sufficient; no recursive cloning is needed.
func (m Mesh) Clone() Mesh {
	out := Mesh{
		P:     append([]Point(nil), m.P...),
		T:     append([]Triangle(nil), m.T...),
		B:     append([]Bar(nil), m.B...),
		L:     append([]float64(nil), m.L...),
		L0Bar: append([]float64(nil), m.L0Bar...),
		Q:     append([]float64(nil), m.Q...),
	}
	return out
}

// Positions returns the point coordinates as a flat slice, the shape
// the Delaunay wrapper and the spring solver operate on.
func (m Mesh) Positions() []geom.Point {
	pos := make([]geom.Point, len(m.P))
	for i, p := range m.P {
		pos[i] = p.Pos
	}
	return pos
}
