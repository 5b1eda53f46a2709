package boundary

import (
	"math"
	"testing"

	"github.com/lattice2d/springmesh/geom"
	"github.com/lattice2d/springmesh/meshmodel"
)

func TestRectangleCornersAndContains(t *testing.T) {
	r := Rectangle{XMin: 0, XMax: 2, YMin: 0, YMax: 1}
	if !r.Contains(geom.Point{1, 0.5}) {
		t.Fatal("expected interior point to be contained")
	}
	if r.Contains(geom.Point{3, 0.5}) {
		t.Fatal("expected point outside x range to be rejected")
	}
	corners := r.Corners()
	if len(corners) != 4 {
		t.Fatalf("expected 4 corners, got %d", len(corners))
	}
}

func TestRectangleProjectOntoSegment(t *testing.T) {
	r := Rectangle{XMin: 0, XMax: 2, YMin: 0, YMax: 1}
	p := r.ProjectOntoSegment(geom.Point{1.2, 0.3}, meshmodel.ClassBoundaryBottom)
	if p[1] != 0 {
		t.Fatalf("expected y pinned to 0, got %v", p)
	}
	if p[0] != 1.2 {
		t.Fatalf("expected x preserved, got %v", p)
	}

	p2 := r.ProjectOntoSegment(geom.Point{0.1, 0.9}, meshmodel.ClassBoundaryLeft)
	if p2[0] != 0 {
		t.Fatalf("expected x pinned to 0, got %v", p2)
	}
}

func TestRectangleSidesFourSegments(t *testing.T) {
	r := Rectangle{XMin: 0, XMax: 2, YMin: 0, YMax: 1}
	sides := r.Sides()
	if len(sides) != 4 {
		t.Fatalf("expected 4 sides, got %d", len(sides))
	}
	for _, s := range sides {
		if s.Length <= 0 {
			t.Errorf("side %v has non-positive length", s)
		}
	}
}

func TestRectangleMinDistanceToBoundary(t *testing.T) {
	r := Rectangle{XMin: 0, XMax: 10, YMin: 0, YMax: 10}
	d := r.MinDistanceToBoundary(geom.Point{3, 4})
	if d != 3 {
		t.Fatalf("expected min distance 3, got %v", d)
	}
}

func TestAnnulusContainsAndProject(t *testing.T) {
	a := Annulus{CX: 0, CY: 0, RInner: 1, ROuter: 2}
	if !a.Contains(geom.Point{1.5, 0}) {
		t.Fatal("expected point in annular gap to be contained")
	}
	if a.Contains(geom.Point{0.5, 0}) {
		t.Fatal("expected point inside the inner radius to be rejected")
	}

	p := a.ProjectOntoSegment(geom.Point{3, 0}, meshmodel.ClassBoundaryOuter)
	if math.Abs(geom.Distance(p, geom.Point{0, 0})-2) > 1e-9 {
		t.Fatalf("expected projected point at radius 2, got %v", p)
	}
}

func TestAnnulusSidesCircumferences(t *testing.T) {
	a := Annulus{CX: 0, CY: 0, RInner: 1, ROuter: 2}
	sides := a.Sides()
	if len(sides) != 2 {
		t.Fatalf("expected 2 sides (inner/outer circle), got %d", len(sides))
	}
	if math.Abs(sides[0].Length-2*math.Pi*1) > 1e-9 {
		t.Fatalf("expected inner circumference 2*pi, got %v", sides[0].Length)
	}
}

func TestRectangleDiscretizeIncludesEndpoints(t *testing.T) {
	r := Rectangle{XMin: 0, XMax: 2, YMin: 0, YMax: 1}
	side := r.Sides()[0] // bottom, (0,0)->(2,0)
	pts := r.Discretize(side, 5)
	if len(pts) != 5 {
		t.Fatalf("expected 5 points, got %d", len(pts))
	}
	if pts[0] != side.Start || pts[len(pts)-1] != side.End {
		t.Fatalf("expected endpoints preserved, got %v", pts)
	}
}

func TestAnnulusDiscretizeDoesNotRepeatStart(t *testing.T) {
	a := Annulus{CX: 0, CY: 0, RInner: 1, ROuter: 2}
	side := a.Sides()[0]
	pts := a.Discretize(side, 8)
	if len(pts) != 8 {
		t.Fatalf("expected 8 points, got %d", len(pts))
	}
	for _, p := range pts {
		if math.Abs(geom.Distance(p, geom.Point{0, 0})-1) > 1e-9 {
			t.Errorf("point %v not on inner circle", p)
		}
	}
}
