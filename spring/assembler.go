// Package spring models the bars of the current triangulation as
// axial linear springs, assembled into a global stiffness matrix and
// force vector, optionally augmented with cross-bars and balloon
// forces, and solved for a displacement field that relaxes the truss
// toward its rest configuration. The assembler builds each bar's
// local 4x4 stiffness block with explicit cross-product and distance
// math, then scatters it into a gonum.org/v1/gonum/mat dense SPD
// system rather than ad-hoc vector math.
package spring

import (
	"runtime"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/lattice2d/springmesh/geom"
	"github.com/lattice2d/springmesh/meshmodel"
)

// Options toggles the assembler's optional force terms.
type Options struct {
	CrossBarsEnabled     bool
	CrossBarStiffness    float64 // multiplier, default 1
	BalloonForcesEnabled bool
	BalloonCoefficient   float64 // small coefficient, e.g. 0.1
}

// DefaultOptions returns the assembler defaults: both optional terms
// off, with conservative default multipliers for when they're on.
func DefaultOptions() Options {
	return Options{CrossBarStiffness: 1, BalloonCoefficient: 0.1}
}

// blockSize is the number of contributions scatterBlocked writes into
// the global matrix per batch (a performance-only knob; any positive
// value preserves correctness).
const blockSize = 256

type contribution struct {
	dofs    [4]int // global dof indices: ax,ay,bx,by
	local   [4][4]float64
	rhsA    [2]float64
	rhsB    [2]float64
}

// Assemble builds the global 2N x 2N stiffness matrix and force
// vector for mesh. Stiffness per bar is 1 in normalized units;
// rest-length mismatch enters only through the force vector.
func Assemble(mesh meshmodel.Mesh, opts Options) (*mat.SymDense, []float64) {
	n := len(mesh.P)
	dof := 2 * n
	K := mat.NewSymDense(dof, nil)
	f := make([]float64, dof)

	contribs := barContributions(mesh)
	scatterBlocked(K, f, contribs)

	if opts.CrossBarsEnabled {
		cross := crossBarContributions(mesh, opts.CrossBarStiffness)
		scatterBlocked(K, f, cross)
	}
	if opts.BalloonForcesEnabled {
		applyBalloonForces(f, mesh, opts.BalloonCoefficient)
	}

	return K, f
}

// barContributions computes, per bar, the local 4x4 stiffness block
// and the equivalent nodal load from the rest-length mismatch, in
// parallel over disjoint bar ranges; the blocks are scattered back
// into the global system in a fixed serial order afterward.
func barContributions(mesh meshmodel.Mesh) []contribution {
	return parallelContributions(len(mesh.B), func(i int) contribution {
		b := mesh.B[i]
		return barContribution(mesh.P[b.A].Pos, mesh.P[b.B].Pos, b.A, b.B, 1.0, mesh.L0Bar[i])
	})
}

// virtualBar is one vertex-to-opposite-edge-midpoint cross-bar.
type virtualBar struct {
	vertex, oppA, oppB int
}

func crossBarContributions(mesh meshmodel.Mesh, stiffnessMul float64) []contribution {
	// For each triangle, connect each vertex to the midpoint of the
	// opposite edge, implemented as three extra entries per element,
	// each split with equal weight across the two vertices that define
	// the midpoint, rather than introducing new nodes.
	var virtuals []virtualBar
	for _, tri := range mesh.T {
		virtuals = append(virtuals,
			virtualBar{tri[0], tri[1], tri[2]},
			virtualBar{tri[1], tri[2], tri[0]},
			virtualBar{tri[2], tri[0], tri[1]},
		)
	}
	pairs := parallelContributions(len(virtuals), func(i int) contribution {
		v := virtuals[i]
		mid := geom.Midpoint(mesh.P[v.oppA].Pos, mesh.P[v.oppB].Pos)
		restLen := geom.Distance(mesh.P[v.vertex].Pos, mid)
		return barContribution(mesh.P[v.vertex].Pos, mid, v.vertex, v.oppA, 0.5*stiffnessMul, restLen)
	})
	pairs2 := parallelContributions(len(virtuals), func(i int) contribution {
		v := virtuals[i]
		mid := geom.Midpoint(mesh.P[v.oppA].Pos, mesh.P[v.oppB].Pos)
		restLen := geom.Distance(mesh.P[v.vertex].Pos, mid)
		return barContribution(mesh.P[v.vertex].Pos, mid, v.vertex, v.oppB, 0.5*stiffnessMul, restLen)
	})
	return append(pairs, pairs2...)
}

func barContribution(pa, pb geom.Point, a, b int, k, restLen float64) contribution {
	d := geom.Sub(pb, pa)
	length := geom.Norm(d)
	var c, s float64
	if length > 1e-12 {
		c, s = d[0]/length, d[1]/length
	}

	var local [4][4]float64
	// standard 2D truss element stiffness, scaled by k:
	// [ c*c  c*s -c*c -c*s ]
	// [ c*s  s*s -c*s -s*s ]
	// [-c*c -c*s  c*c  c*s ]
	// [-c*s -s*s  c*s  s*s ]
	cc, ss, cs := c*c, s*s, c*s
	local[0] = [4]float64{k * cc, k * cs, -k * cc, -k * cs}
	local[1] = [4]float64{k * cs, k * ss, -k * cs, -k * ss}
	local[2] = [4]float64{-k * cc, -k * cs, k * cc, k * cs}
	local[3] = [4]float64{-k * cs, -k * ss, k * cs, k * ss}

	// equivalent nodal load from the rest-length mismatch: a spring
	// stretched beyond rest pulls its endpoints together, so the
	// force on a points from b->a is k*(length-restLen) along the
	// unit vector from a to b.
	mag := k * (length - restLen)
	fx, fy := mag*c, mag*s

	return contribution{
		dofs:  [4]int{2 * a, 2*a + 1, 2 * b, 2*b + 1},
		local: local,
		rhsA:  [2]float64{fx, fy},
		rhsB:  [2]float64{-fx, -fy},
	}
}

func parallelContributions(n int, f func(int) contribution) []contribution {
	out := make([]contribution, n)
	if n == 0 {
		return out
	}
	workers := runtime.GOMAXPROCS(0)
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		for i := 0; i < n; i++ {
			out[i] = f(i)
		}
		return out
	}
	var wg sync.WaitGroup
	chunk := (n + workers - 1) / workers
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if start >= n {
			break
		}
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				out[i] = f(i)
			}
		}(start, end)
	}
	wg.Wait()
	return out
}

// scatterBlocked writes contributions into K and f serially, in
// batches of blockSize and in slice order, so repeated runs over the
// same mesh produce bit-identical matrices regardless of how the
// contributions were computed in parallel: scatter order never depends
// on goroutine scheduling.
func scatterBlocked(K *mat.SymDense, f []float64, contribs []contribution) {
	for start := 0; start < len(contribs); start += blockSize {
		end := start + blockSize
		if end > len(contribs) {
			end = len(contribs)
		}
		for _, c := range contribs[start:end] {
			scatterOne(K, f, c)
		}
	}
}

func scatterOne(K *mat.SymDense, f []float64, c contribution) {
	for i := 0; i < 4; i++ {
		gi := c.dofs[i]
		for j := i; j < 4; j++ {
			gj := c.dofs[j]
			r, cc := gi, gj
			if r > cc {
				r, cc = cc, r
			}
			K.SetSym(r, cc, K.At(r, cc)+c.local[i][j])
		}
	}
	f[c.dofs[0]] += c.rhsA[0]
	f[c.dofs[1]] += c.rhsA[1]
	f[c.dofs[2]] += c.rhsB[0]
	f[c.dofs[3]] += c.rhsB[1]
}

// applyBalloonForces adds, per triangle, an outward force on each
// vertex proportional to (L0Target^2 - Area) along the inward normal
// from the opposite edge. L0Target is the mean desired length of
// the triangle's three vertices.
func applyBalloonForces(f []float64, mesh meshmodel.Mesh, coeff float64) {
	for _, tri := range mesh.T {
		p0, p1, p2 := mesh.P[tri[0]].Pos, mesh.P[tri[1]].Pos, mesh.P[tri[2]].Pos
		area := geom.SignedArea(p0, p1, p2)
		l0 := (mesh.P[tri[0]].L0 + mesh.P[tri[1]].L0 + mesh.P[tri[2]].L0) / 3
		pressure := coeff * (l0*l0 - area)

		addOutward(f, mesh, tri[0], p1, p2, p0, pressure)
		addOutward(f, mesh, tri[1], p2, p0, p1, pressure)
		addOutward(f, mesh, tri[2], p0, p1, p2, pressure)
	}
}

// addOutward pushes vertex idx (with position p) outward along the
// inward normal of the edge (edgeA,edgeB) opposite it, scaled by
// pressure.
func addOutward(f []float64, mesh meshmodel.Mesh, idx int, edgeA, edgeB, p geom.Point, pressure float64) {
	edge := geom.Sub(edgeB, edgeA)
	normal := geom.Point{-edge[1], edge[0]}
	length := geom.Norm(normal)
	if length < 1e-12 {
		return
	}
	nx, ny := normal[0]/length, normal[1]/length
	// orient outward: away from the edge midpoint, through p.
	mid := geom.Midpoint(edgeA, edgeB)
	toVertex := geom.Sub(p, mid)
	if toVertex[0]*nx+toVertex[1]*ny < 0 {
		nx, ny = -nx, -ny
	}
	f[2*idx] += pressure * nx
	f[2*idx+1] += pressure * ny
}
