// Package density implements the node-count controller: reject
// overcrowded points and add points to split overstretched bars, each
// followed by a full re-triangulation so the mesh topology always
// reflects the current point set.
package density

import (
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/lattice2d/springmesh/delaunay"
	"github.com/lattice2d/springmesh/geom"
	"github.com/lattice2d/springmesh/meshmodel"
)

// LengthField supplies the desired length at an arbitrary point, so a
// newly inserted node's L0 can be drawn from the guide mesh rather
// than averaged from its parent bar's endpoints alone.
type LengthField interface {
	Interpolate(p geom.Point) float64
}

// Reject deletes interior points whose every incident bar is
// compressed below alphaReject*L0Bar, most-compressed point first,
// skipping any point whose neighbor was already deleted in this same
// pass (so a dense cluster thins out gradually rather than collapsing
// at once). Corner and boundary points are never candidates. The
// result is re-triangulated and its bar fields recomputed.
func Reject(mesh meshmodel.Mesh, alphaReject, restLengthScale float64) meshmodel.Mesh {
	incident := incidentBars(mesh)
	order := rejectionOrder(mesh, incident, alphaReject)

	deleted := make(map[int]bool, len(order))
	for _, idx := range order {
		if neighborDeleted(incident[idx], mesh.B, deleted) {
			continue
		}
		deleted[idx] = true
	}
	if len(deleted) == 0 {
		return mesh
	}
	return rebuildWithout(mesh, deleted, restLengthScale)
}

// minRatio is a point's most-compressed incident bar ratio L/L0Bar.
func minRatio(mesh meshmodel.Mesh, bars []int) float64 {
	best := math.Inf(1)
	for _, bi := range bars {
		if mesh.L0Bar[bi] <= 0 {
			continue
		}
		r := mesh.L[bi] / mesh.L0Bar[bi]
		if r < best {
			best = r
		}
	}
	return best
}

func rejectionOrder(mesh meshmodel.Mesh, incident [][]int, alphaReject float64) []int {
	var candidates []int
	for i, p := range mesh.P {
		if p.Class.IsBoundary() {
			continue
		}
		bars := incident[i]
		if len(bars) == 0 {
			continue
		}
		allCompressed := true
		for _, bi := range bars {
			if mesh.L0Bar[bi] <= 0 || mesh.L[bi] >= alphaReject*mesh.L0Bar[bi] {
				allCompressed = false
				break
			}
		}
		if allCompressed {
			candidates = append(candidates, i)
		}
	}
	sort.Slice(candidates, func(a, b int) bool {
		return minRatio(mesh, incident[candidates[a]]) < minRatio(mesh, incident[candidates[b]])
	})
	return candidates
}

func neighborDeleted(bars []int, allBars []meshmodel.Bar, deleted map[int]bool) bool {
	for _, bi := range bars {
		bar := allBars[bi]
		if deleted[bar.A] || deleted[bar.B] {
			return true
		}
	}
	return false
}

func incidentBars(mesh meshmodel.Mesh) [][]int {
	out := make([][]int, len(mesh.P))
	for i, b := range mesh.B {
		out[b.A] = append(out[b.A], i)
		out[b.B] = append(out[b.B], i)
	}
	return out
}

func rebuildWithout(mesh meshmodel.Mesh, deleted map[int]bool, restLengthScale float64) meshmodel.Mesh {
	var points []meshmodel.Point
	for i, p := range mesh.P {
		if deleted[i] {
			continue
		}
		points = append(points, p)
	}
	return retriangulate(points, restLengthScale)
}

// Add splits every bar longer than alphaAdd*L0Bar at its midpoint.
// The new point inherits the endpoints' shared boundary class when
// both endpoints carry the same class (so a split edge on a domain
// side stays on that side); otherwise it is interior, since an
// arbitrary midpoint between two different boundary loci is not
// itself guaranteed to lie on the boundary. Near-duplicate insertions
// (two long bars sharing a near-identical midpoint) are merged. L0 for
// each new point is drawn from field when provided, else averaged
// from the parent bar's endpoints.
func Add(mesh meshmodel.Mesh, field LengthField, alphaAdd, restLengthScale float64) meshmodel.Mesh {
	type insertion struct {
		pos  geom.Point
		l0   float64
		cls  meshmodel.Class
	}
	var toInsert []insertion
	seen := make(map[[2]int64]bool)

	for i, b := range mesh.B {
		if mesh.L0Bar[i] <= 0 || mesh.L[i] <= alphaAdd*mesh.L0Bar[i] {
			continue
		}
		pa, pb := mesh.P[b.A], mesh.P[b.B]
		mid := geom.Midpoint(pa.Pos, pb.Pos)
		k := quantize(mid)
		if seen[k] {
			continue
		}
		seen[k] = true

		cls := meshmodel.ClassInterior
		if pa.Class == pb.Class && pa.Class != meshmodel.ClassCorner {
			// Both endpoints sit on the same boundary side, so their
			// midpoint does too. A shared ClassCorner is not a side
			// class (two distinct corners both carry it), so that
			// case falls through to interior rather than wrongly
			// pinning the midpoint as an immutable corner.
			cls = pa.Class
		}
		l0 := (pa.L0 + pb.L0) / 2
		if field != nil {
			l0 = field.Interpolate(mid)
		}
		toInsert = append(toInsert, insertion{pos: mid, l0: l0, cls: cls})
	}
	if len(toInsert) == 0 {
		return mesh
	}

	points := append([]meshmodel.Point(nil), mesh.P...)
	for _, ins := range toInsert {
		points = append(points, meshmodel.Point{ID: uuid.New(), Pos: ins.pos, Class: ins.cls, L0: ins.l0})
	}
	return retriangulate(points, restLengthScale)
}

func quantize(p geom.Point) [2]int64 {
	const q = 1e7
	return [2]int64{int64(math.Round(p[0] * q)), int64(math.Round(p[1] * q))}
}

// retriangulate re-derives topology and bar fields from a point set
// alone, the shared tail of both Reject and Add.
func retriangulate(points []meshmodel.Point, restLengthScale float64) meshmodel.Mesh {
	pos := make([]geom.Point, len(points))
	for i, p := range points {
		pos[i] = p.Pos
	}
	tris, err := delaunay.Triangulate(pos)
	if err != nil {
		// A degenerate point set after rejection/insertion yields a
		// mesh that keeps the points but has no triangles or bars; no
		// error is reported to the caller.
		return meshmodel.Mesh{P: points}
	}
	bars := meshmodel.ExtractBars(tris)
	lengths := meshmodel.BarLengths(bars, pos)
	restLengths := meshmodel.RestLengths(bars, points, restLengthScale)
	return meshmodel.Mesh{P: points, T: tris, B: bars, L: lengths, L0Bar: restLengths}
}
