package spring

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/lattice2d/springmesh/boundary"
	"github.com/lattice2d/springmesh/geom"
	"github.com/lattice2d/springmesh/meshmodel"
)

func pt(class meshmodel.Class, x, y, l0 float64) meshmodel.Point {
	return meshmodel.Point{ID: uuid.New(), Pos: geom.Point{x, y}, Class: class, L0: l0}
}

// buildSquareMesh returns the unit square split along its rising
// diagonal, all four corners pinned and every point's desired length
// 1, so every boundary bar starts at rest and only the diagonal is
// stretched.
func buildSquareMesh() meshmodel.Mesh {
	points := []meshmodel.Point{
		pt(meshmodel.ClassCorner, 0, 0, 1),
		pt(meshmodel.ClassCorner, 1, 0, 1),
		pt(meshmodel.ClassCorner, 1, 1, 1),
		pt(meshmodel.ClassCorner, 0, 1, 1),
	}
	tris := []meshmodel.Triangle{{0, 1, 2}, {0, 2, 3}}
	bars := meshmodel.ExtractBars(tris)
	pos := make([]geom.Point, len(points))
	for i, p := range points {
		pos[i] = p.Pos
	}
	lengths := meshmodel.BarLengths(bars, pos)
	rest := meshmodel.RestLengths(bars, points, 1.0)
	return meshmodel.Mesh{P: points, T: tris, B: bars, L: lengths, L0Bar: rest}
}

// buildStarMesh adds a free interior point at (cx,cy) connected to
// the four corners of a unit square, fanned into four triangles.
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

func TestAssembleDimensions(t *testing.T) {
	mesh := buildSquareMesh()
	K, f := Assemble(mesh, DefaultOptions())
	if K.SymmetricDim() != 2*len(mesh.P) {
		t.Fatalf("expected K dimension %d, got %d", 2*len(mesh.P), K.SymmetricDim())
	}
	if len(f) != 2*len(mesh.P) {
		t.Fatalf("expected f length %d, got %d", 2*len(mesh.P), len(f))
	}
}

func TestBarContributionHorizontalBar(t *testing.T) {
	c := barContribution(geom.Point{0, 0}, geom.Point{1, 0}, 0, 1, 1.0, 1.0)
	if math.Abs(c.local[0][0]-1) > 1e-9 {
		t.Fatalf("expected cc=1 term for horizontal bar, got %v", c.local[0][0])
	}
	if math.Abs(c.local[1][1]) > 1e-9 {
		t.Fatalf("expected ss=0 term for horizontal bar, got %v", c.local[1][1])
	}
	// bar is at rest length, so no nodal load.
	if c.rhsA[0] != 0 || c.rhsA[1] != 0 {
		t.Fatalf("expected zero rhs at rest length, got %v", c.rhsA)
	}
}

func TestBarContributionStretchedBarPullsInward(t *testing.T) {
	c := barContribution(geom.Point{0, 0}, geom.Point{2, 0}, 0, 1, 1.0, 1.0)
	if c.rhsA[0] <= 0 {
		t.Fatalf("expected point a pulled toward b (+x) when stretched, got %v", c.rhsA[0])
	}
	if c.rhsB[0] >= 0 {
		t.Fatalf("expected point b pulled toward a (-x) when stretched, got %v", c.rhsB[0])
	}
}

func TestCrossBarContributionsCountPerTriangle(t *testing.T) {
	mesh := meshmodel.Mesh{T: []meshmodel.Triangle{{0, 1, 2}}}
	mesh.P = []meshmodel.Point{
		pt(meshmodel.ClassInterior, 0, 0, 1),
		pt(meshmodel.ClassInterior, 1, 0, 1),
		pt(meshmodel.ClassInterior, 0, 1, 1),
	}
	contribs := crossBarContributions(mesh, 1.0)
	if len(contribs) != 6 {
		t.Fatalf("expected 6 cross-bar contributions (3 vertices x 2 opposite corners), got %d", len(contribs))
	}
}

func TestApplyBalloonForcesPushesVerticesOutward(t *testing.T) {
	mesh := meshmodel.Mesh{
		T: []meshmodel.Triangle{{0, 1, 2}},
		P: []meshmodel.Point{
			pt(meshmodel.ClassInterior, 0, 0, 2), // L0=2 so l0^2=4 >> triangle area, forcing outward pressure
			pt(meshmodel.ClassInterior, 1, 0, 2),
			pt(meshmodel.ClassInterior, 0, 1, 2),
		},
	}
	f := make([]float64, 6)
	applyBalloonForces(f, mesh, 1.0)
	centroid := geom.Centroid(mesh.P[0].Pos, mesh.P[1].Pos, mesh.P[2].Pos)
	for i, p := range mesh.P {
		toVertex := geom.Sub(p.Pos, centroid)
		dot := toVertex[0]*f[2*i] + toVertex[1]*f[2*i+1]
		if dot <= 0 {
			t.Errorf("expected outward force at vertex %d, got force %v,%v from centroid-relative %v", i, f[2*i], f[2*i+1], toVertex)
		}
	}
}

func TestApplyBoundaryConstraintsPinsCornerRows(t *testing.T) {
	mesh := buildSquareMesh()
	rect := boundary.Rectangle{XMin: 0, XMax: 1, YMin: 0, YMax: 1}
	K, f := Assemble(mesh, DefaultOptions())
	ApplyBoundaryConstraints(K, f, mesh, rect)

	n := K.SymmetricDim()
	for _, dof := range []int{0, 1, 2, 3, 4, 5, 6, 7} {
		if K.At(dof, dof) != largePenalty {
			t.Errorf("expected dof %d pinned to largePenalty, got %v", dof, K.At(dof, dof))
		}
		for j := 0; j < n; j++ {
			if j == dof {
				continue
			}
			if K.At(dof, j) != 0 {
				t.Errorf("expected dof %d row cleared, found nonzero at col %d: %v", dof, j, K.At(dof, j))
			}
		}
		if f[dof] != 0 {
			t.Errorf("expected f[%d]=0 after pinning, got %v", dof, f[dof])
		}
	}
}

func TestSolveKeepsCornersStationary(t *testing.T) {
	mesh := buildSquareMesh()
	rect := boundary.Rectangle{XMin: 0, XMax: 1, YMin: 0, YMax: 1}
	newPos, err := Solve(mesh, rect, DefaultOptions(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, want := range mesh.Positions() {
		if geom.Distance(newPos[i], want) > 1e-4 {
			t.Errorf("corner %d moved from %v to %v", i, want, newPos[i])
		}
	}
}

func TestSolvePullsPerturbedInteriorPointTowardEquilibrium(t *testing.T) {
	mesh := buildStarMesh(0.8, 0.5) // perturbed off the symmetric center (0.5,0.5)
	rect := boundary.Rectangle{XMin: 0, XMax: 1, YMin: 0, YMax: 1}

	before := geom.Distance(mesh.P[4].Pos, geom.Point{0.5, 0.5})

	newPos, err := Solve(mesh, rect, DefaultOptions(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	after := geom.Distance(newPos[4], geom.Point{0.5, 0.5})
	if after >= before {
		t.Fatalf("expected perturbed interior point to move toward equilibrium, before=%v after=%v", before, after)
	}
}

func TestSolveCholeskyRejectsNonPositiveDefiniteMatrix(t *testing.T) {
	K := mat.NewSymDense(2, []float64{-1, 0, 0, -1})
	if _, err := solveCholesky(K, []float64{0, 0}); err == nil {
		t.Fatal("expected a negative-definite matrix to fail Cholesky factorization")
	}
}

func TestDampedMakesNonPositiveDefiniteMatrixSolvable(t *testing.T) {
	K := mat.NewSymDense(2, []float64{0, 0, 0, 0})
	if _, err := solveCholesky(K, []float64{1, 1}); err == nil {
		t.Fatal("expected the zero matrix to fail Cholesky factorization")
	}
	if _, err := solveCholesky(damped(K), []float64{1, 1}); err != nil {
		t.Fatalf("expected the damped copy to be positive definite and solvable, got %v", err)
	}
}
