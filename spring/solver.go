package spring

import (
	"gonum.org/v1/gonum/mat"

	"github.com/lattice2d/springmesh/boundary"
	"github.com/lattice2d/springmesh/errs"
	"github.com/lattice2d/springmesh/geom"
	"github.com/lattice2d/springmesh/meshmodel"
)

// largePenalty is the diagonal value used to pin a constrained DOF,
// large enough to drive the constrained displacement to numerical
// zero without making the matrix poorly scaled relative to unit bar
// stiffness.
const largePenalty = 1e8

// ApplyBoundaryConstraints pins the DOFs implied by each point's
// class: both coordinates for corners, y for the horizontal boundary
// sides, x for the vertical ones, and for the annulus variant, the
// radial displacement component at inner/outer boundary points.
func ApplyBoundaryConstraints(K *mat.SymDense, f []float64, mesh meshmodel.Mesh, b boundary.Boundary) {
	center := b.Center()
	for i, p := range mesh.P {
		switch p.Class {
		case meshmodel.ClassCorner:
			pinDOF(K, f, 2*i)
			pinDOF(K, f, 2*i+1)
		case meshmodel.ClassBoundaryBottom, meshmodel.ClassBoundaryTop:
			pinDOF(K, f, 2*i+1)
		case meshmodel.ClassBoundaryLeft, meshmodel.ClassBoundaryRight:
			pinDOF(K, f, 2*i)
		case meshmodel.ClassBoundaryInner, meshmodel.ClassBoundaryOuter:
			// The radial component is pinned and tangential motion
			// along the circle is left free. K's DOFs are in (x,y),
			// so approximate the radial pin by striking whichever
			// axis the point's outward normal (relative to center)
			// is closer to; exact at the cardinal points and close
			// elsewhere for boundary points placed densely around
			// the circle.
			pinRadialDOF(K, f, p.Pos, center, i)
		}
	}
}

func pinDOF(K *mat.SymDense, f []float64, dof int) {
	n := K.SymmetricDim()
	for j := 0; j < n; j++ {
		if j != dof {
			K.SetSym(dof, j, 0)
		}
	}
	K.SetSym(dof, dof, largePenalty)
	f[dof] = 0
}

func pinRadialDOF(K *mat.SymDense, f []float64, p, center geom.Point, i int) {
	dx, dy := p[0]-center[0], p[1]-center[1]
	if dx*dx >= dy*dy {
		pinDOF(K, f, 2*i)
	} else {
		pinDOF(K, f, 2*i+1)
	}
}

// Solve assembles and solves the stiffness system for mesh, returning
// the new point positions. It first attempts a Cholesky factorization
// of the boundary-penalized SPD system, then a dense LU, since a
// matrix that is near-singular for Cholesky's stricter numerics can
// still be solvable. If both fail to factorize, it retries once more
// against a Tikhonov-damped copy of K (K + epsilon*I): the added
// diagonal term pulls the solved displacement toward zero the same
// way halving an already-solved implicit step would, without
// requiring a first solution to halve. A second failure surfaces as
// *errs.SingularSystem so the caller can fall back to its last good
// mesh.
func Solve(mesh meshmodel.Mesh, b boundary.Boundary, opts Options, iteration int) ([]geom.Point, error) {
	K, f := Assemble(mesh, opts)
	ApplyBoundaryConstraints(K, f, mesh, b)

	dp, err := solveCholesky(K, f)
	if err != nil {
		dp, err = solveLU(K, f)
	}
	if err != nil {
		dp, err = solveCholesky(damped(K), f)
		if err != nil {
			return nil, &errs.SingularSystem{Iteration: iteration, Attempts: 3, Cause: err}
		}
	}

	positions := mesh.Positions()
	newPositions := make([]geom.Point, len(positions))
	for i, p := range positions {
		moved := geom.Point{p[0] + dp[2*i], p[1] + dp[2*i+1]}
		newPositions[i] = reproject(mesh.P[i].Class, moved, b)
	}
	return newPositions, nil
}

func reproject(class meshmodel.Class, p geom.Point, b boundary.Boundary) geom.Point {
	if !class.IsBoundary() || class.IsCorner() {
		return p // interior points move freely; corners are already pinned exactly by their stiffness penalty
	}
	return b.ProjectOntoSegment(p, class)
}

func solveCholesky(K *mat.SymDense, f []float64) ([]float64, error) {
	var chol mat.Cholesky
	if ok := chol.Factorize(K); !ok {
		return nil, errNotPositiveDefinite{}
	}
	dst := mat.NewVecDense(len(f), nil)
	if err := chol.SolveVecTo(dst, mat.NewVecDense(len(f), f)); err != nil {
		return nil, err
	}
	return dst.RawVector().Data, nil
}

// tikhonovEpsilon is the diagonal regularization added to K on the
// final retry after both Cholesky and LU fail to factorize.
const tikhonovEpsilon = 1e-6

// damped returns a copy of K with tikhonovEpsilon added to every
// diagonal entry, trading a small bias for a system Cholesky can
// factorize even when K itself is singular or indefinite.
func damped(K *mat.SymDense) *mat.SymDense {
	n := K.SymmetricDim()
	out := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := K.At(i, j)
			if i == j {
				v += tikhonovEpsilon
			}
			out.SetSym(i, j, v)
		}
	}
	return out
}

func solveLU(K *mat.SymDense, f []float64) ([]float64, error) {
	n := K.SymmetricDim()
	dense := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			dense.Set(i, j, K.At(i, j))
		}
	}
	var lu mat.LU
	lu.Factorize(dense)
	dst := mat.NewVecDense(n, nil)
	if err := lu.SolveVecTo(dst, false, mat.NewVecDense(n, f)); err != nil {
		return nil, err
	}
	return dst.RawVector().Data, nil
}

// errNotPositiveDefinite is a sentinel for a failed Cholesky
// factorization; it is never returned past solveCholesky.
type errNotPositiveDefinite struct{}

func (errNotPositiveDefinite) Error() string { return "matrix is not positive definite" }
