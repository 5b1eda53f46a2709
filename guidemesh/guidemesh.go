// Package guidemesh implements the static triangulation that supplies
// the desired-length field L0 by piecewise-linear interpolation: find
// the enclosing triangle, then interpolate its three vertices' L0
// values with barycentric weights. A github.com/paulmach/orb/quadtree
// candidate index backs the triangle search for guide meshes too
// large for an O(N_g) scan to be cheap.
package guidemesh

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/quadtree"

	"github.com/lattice2d/springmesh/boundary"
	"github.com/lattice2d/springmesh/delaunay"
	"github.com/lattice2d/springmesh/errs"
	"github.com/lattice2d/springmesh/geom"
	"github.com/lattice2d/springmesh/meshmodel"
)

// bruteForceThreshold is the guide-mesh triangle count above which
// New builds a quadtree index that Interpolate uses instead of scanning
// every triangle (brute-force scanning is fine at guide-mesh sizes; larger
// ones warrant a spatial index).
const bruteForceThreshold = 64

// GuideMesh is a small, static triangulation (Vg, Tg) carrying a
// scalar L0g per vertex. It is never mutated by the core loop.
type GuideMesh struct {
	Vg  []geom.Point
	Tg  []meshmodel.Triangle
	L0g []float64

	centroids []geom.Point
	qt        *quadtree.Quadtree
}

// centroidPoint adapts a triangle centroid to orb.Pointer so it can
// be indexed by the quadtree.
type centroidPoint struct {
	idx int
	pt  orb.Point
}

func (c centroidPoint) Point() orb.Point { return c.pt }

// New validates and constructs a guide mesh. It returns
// *errs.ConfigError if the mesh is empty, has mismatched slice
// lengths, or carries a non-positive L0 value (L0 must be strictly
// positive everywhere, an invariant inherited here from the guide
// mesh).
func New(vg []geom.Point, tg []meshmodel.Triangle, l0g []float64) (*GuideMesh, error) {
	if len(vg) == 0 || len(tg) == 0 {
		return nil, &errs.ConfigError{Field: "guide_mesh", Reason: "empty guide mesh"}
	}
	if len(vg) != len(l0g) {
		return nil, &errs.ConfigError{Field: "guide_mesh", Reason: "Vg and L0g length mismatch"}
	}
	for _, l0 := range l0g {
		if l0 <= 0 {
			return nil, &errs.ConfigError{Field: "guide_mesh.l0g", Reason: "L0 must be strictly positive everywhere"}
		}
	}
	for _, tri := range tg {
		for _, idx := range tri {
			if idx < 0 || idx >= len(vg) {
				return nil, &errs.ConfigError{Field: "guide_mesh.tg", Reason: "triangle index out of range"}
			}
		}
	}

	g := &GuideMesh{Vg: vg, Tg: tg, L0g: l0g}
	g.centroids = make([]geom.Point, len(tg))
	for i, tri := range tg {
		g.centroids[i] = geom.Centroid(vg[tri[0]], vg[tri[1]], vg[tri[2]])
	}
	if len(tg) > bruteForceThreshold {
		g.buildIndex()
	}
	return g, nil
}

func (g *GuideMesh) buildIndex() {
	bound := orb.Bound{Min: g.centroids[0], Max: g.centroids[0]}
	for _, c := range g.centroids {
		bound = bound.Extend(c)
	}
	qt := quadtree.New(bound)
	for i, c := range g.centroids {
		_ = qt.Add(centroidPoint{idx: i, pt: c})
	}
	g.qt = qt
}

// Interpolate returns the piecewise-linear L0 at (x,y): the
// barycentric-weighted sum of L0g over the containing triangle's
// vertices, or the nearest triangle's weighted value when the query
// point falls outside the convex hull of Vg.
func (g *GuideMesh) Interpolate(p geom.Point) float64 {
	if idx, ok := g.locate(p); ok {
		return g.weightedL0(idx, p)
	}
	return g.weightedL0(g.nearestTriangle(p), p)
}

func (g *GuideMesh) locate(p geom.Point) (int, bool) {
	if g.qt == nil {
		for i, tri := range g.Tg {
			if geom.InTriangle(p, g.Vg[tri[0]], g.Vg[tri[1]], g.Vg[tri[2]]) {
				return i, true
			}
		}
		return 0, false
	}

	const k = 12
	buf := make([]orb.Pointer, 0, k)
	for _, cand := range g.qt.KNearest(buf, p, k) {
		cp := cand.(centroidPoint)
		tri := g.Tg[cp.idx]
		if geom.InTriangle(p, g.Vg[tri[0]], g.Vg[tri[1]], g.Vg[tri[2]]) {
			return cp.idx, true
		}
	}
	return 0, false
}

func (g *GuideMesh) nearestTriangle(p geom.Point) int {
	best, bestDist := 0, math.Inf(1)
	if g.qt != nil {
		if nearest := g.qt.Find(p); nearest != nil {
			return nearest.(centroidPoint).idx
		}
	}
	for i, c := range g.centroids {
		if d := geom.Distance(p, c); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func (g *GuideMesh) weightedL0(triIdx int, p geom.Point) float64 {
	tri := g.Tg[triIdx]
	p1, p2, p3 := g.Vg[tri[0]], g.Vg[tri[1]], g.Vg[tri[2]]
	w1, w2, w3, ok := geom.Barycentric(p, p1, p2, p3)
	if !ok {
		return (g.L0g[tri[0]] + g.L0g[tri[1]] + g.L0g[tri[2]]) / 3
	}
	return w1*g.L0g[tri[0]] + w2*g.L0g[tri[1]] + w3*g.L0g[tri[2]]
}

// RefinementZone describes a rectangular window carrying a finer
// desired length than the rest of the domain, expressed as
// coarse/transition/refined zone corner points.
type RefinementZone struct {
	XMin, XMax, YMin, YMax float64
	L0Refined              float64
	// TransitionMargin widens the zone by this amount on every side
	// to form the transition ring whose vertices carry L0Coarse, so
	// the field is continuous across the interface.
	TransitionMargin float64
}

// BuildRectangular constructs the guide mesh for a rectangular domain
// from explicit coarse/transition/refined corner points plus a
// Delaunay of their union. With no zones, it is a two-triangle mesh
// carrying L0Coarse at all four domain corners (the degenerate,
// uniform-field case).
func BuildRectangular(rect boundary.Rectangle, l0Coarse float64, zones []RefinementZone) (*GuideMesh, error) {
	var verts []geom.Point
	var l0 []float64

	add := func(p geom.Point, v float64) {
		for i, existing := range verts {
			if geom.Distance(existing, p) < 1e-9 {
				// keep the finer (smaller) value at shared transition
				// vertices so refined zones win over the coarse
				// background, keeping the field continuous across the interface.
				if v < l0[i] {
					l0[i] = v
				}
				return
			}
		}
		verts = append(verts, p)
		l0 = append(l0, v)
	}

	for _, c := range rect.Corners() {
		add(c, l0Coarse)
	}
	for _, z := range zones {
		outer := boundary.Rectangle{
			XMin: z.XMin - z.TransitionMargin, XMax: z.XMax + z.TransitionMargin,
			YMin: z.YMin - z.TransitionMargin, YMax: z.YMax + z.TransitionMargin,
		}
		for _, c := range outer.Corners() {
			add(c, l0Coarse)
		}
		inner := boundary.Rectangle{XMin: z.XMin, XMax: z.XMax, YMin: z.YMin, YMax: z.YMax}
		for _, c := range inner.Corners() {
			add(c, z.L0Refined)
		}
	}

	tg, err := delaunay.Triangulate(verts)
	if err != nil {
		return nil, err
	}
	return New(verts, tg, l0)
}
