package smoother

import (
	"testing"

	"github.com/google/uuid"

	"github.com/lattice2d/springmesh/geom"
	"github.com/lattice2d/springmesh/meshmodel"
)

func pt(class meshmodel.Class, x, y, l0 float64) meshmodel.Point {
	return meshmodel.Point{ID: uuid.New(), Pos: geom.Point{x, y}, Class: class, L0: l0}
}

func buildStarMesh(cx, cy float64) meshmodel.Mesh {
	points := []meshmodel.Point{
		pt(meshmodel.ClassCorner, 0, 0, 1),
		pt(meshmodel.ClassCorner, 1, 0, 1),
		pt(meshmodel.ClassCorner, 1, 1, 1),
		pt(meshmodel.ClassCorner, 0, 1, 1),
		pt(meshmodel.ClassInterior, cx, cy, 1),
	}
	tris := []meshmodel.Triangle{{4, 0, 1}, {4, 1, 2}, {4, 2, 3}, {4, 3, 0}}
	bars := meshmodel.ExtractBars(tris)
	pos := make([]geom.Point, len(points))
	for i, p := range points {
		pos[i] = p.Pos
	}
	lengths := meshmodel.BarLengths(bars, pos)
	rest := meshmodel.RestLengths(bars, points, 1.0)
	return meshmodel.Mesh{P: points, T: tris, B: bars, L: lengths, L0Bar: rest}
}

func TestSweepMovesInteriorPointToNeighborAverage(t *testing.T) {
	mesh := buildStarMesh(0.8, 0.5)
	out := Sweep(mesh)
	// every bar from the center carries equal weight (equal L0Bar), so
	// the unweighted average of the four corners, (0.5,0.5), is exact.
	if geom.Distance(out[4], geom.Point{0.5, 0.5}) > 1e-9 {
		t.Fatalf("expected interior point to move to corner average (0.5,0.5), got %v", out[4])
	}
}

func TestSweepNeverMovesBoundaryOrCornerPoints(t *testing.T) {
	mesh := buildStarMesh(0.8, 0.5)
	out := Sweep(mesh)
	for i, p := range mesh.P {
		if p.Class.IsBoundary() && out[i] != p.Pos {
			t.Fatalf("boundary point %d moved from %v to %v", i, p.Pos, out[i])
		}
	}
}

func TestSweepRollsBackInversionCausingMove(t *testing.T) {
	// A thin sliver triangle where the free point's neighbor average
	// lies on the far side of its opposite edge, inverting the
	// triangle; the point must be reverted to its original position.
	points := []meshmodel.Point{
		pt(meshmodel.ClassCorner, 0, 0, 1),
		pt(meshmodel.ClassCorner, 10, 0, 1),
		pt(meshmodel.ClassInterior, 5, 0.1, 1),
	}
	tris := []meshmodel.Triangle{{0, 1, 2}}
	bars := meshmodel.ExtractBars(tris)
	pos := make([]geom.Point, len(points))
	for i, p := range points {
		pos[i] = p.Pos
	}
	lengths := meshmodel.BarLengths(bars, pos)
	rest := meshmodel.RestLengths(bars, points, 1.0)
	mesh := meshmodel.Mesh{P: points, T: tris, B: bars, L: lengths, L0Bar: rest}

	out := Sweep(mesh)
	// the averaged position of (0,0) and (10,0) is (5,0), which lies
	// exactly on the opposite edge and collapses the triangle's area
	// to zero -- a non-positive result that must be rejected.
	if out[2] != points[2].Pos {
		t.Fatalf("expected inverting move to be rolled back, got %v", out[2])
	}
}
