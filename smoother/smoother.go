// Package smoother implements Laplacian relaxation of interior
// points: each free point moves to the average of its neighbors
// weighted by inverse bar rest length, and any move that inverts a triangle is rolled back
// for that point alone.
package smoother

import (
	"github.com/lattice2d/springmesh/geom"
	"github.com/lattice2d/springmesh/meshmodel"
)

// Sweep performs a single Laplacian smoothing pass over mesh's
// interior points. Point i's new position is the weighted average of
// its neighbors j, weighted by 1/L0Bar[i,j] (a short desired bar pulls
// harder than a long one). Boundary and corner points never move.
// After the sweep, any point whose move inverted an incident triangle
// (signed area crossing to non-positive) is reverted to its original
// position, since a single-point rollback is cheaper than discarding
// the whole sweep and still guarantees a valid mesh.
func Sweep(mesh meshmodel.Mesh) []geom.Point {
	neighbors := neighborWeights(mesh)
	original := mesh.Positions()
	moved := append([]geom.Point(nil), original...)

	for i, p := range mesh.P {
		if p.Class.IsBoundary() {
			continue
		}
		nbrs := neighbors[i]
		if len(nbrs) == 0 {
			continue
		}
		var sx, sy, sw float64
		for _, nb := range nbrs {
			sx += nb.weight * original[nb.idx][0]
			sy += nb.weight * original[nb.idx][1]
			sw += nb.weight
		}
		if sw <= 0 {
			continue
		}
		moved[i] = geom.Point{sx / sw, sy / sw}
	}

	for i, p := range mesh.P {
		if p.Class.IsBoundary() {
			continue
		}
		if invertsIncidentTriangle(mesh, moved, i) {
			moved[i] = original[i]
		}
	}
	return moved
}

type weightedNeighbor struct {
	idx    int
	weight float64
}

func neighborWeights(mesh meshmodel.Mesh) [][]weightedNeighbor {
	out := make([][]weightedNeighbor, len(mesh.P))
	for i, b := range mesh.B {
		w := 0.0
		if mesh.L0Bar[i] > 0 {
			w = 1 / mesh.L0Bar[i]
		}
		out[b.A] = append(out[b.A], weightedNeighbor{idx: b.B, weight: w})
		out[b.B] = append(out[b.B], weightedNeighbor{idx: b.A, weight: w})
	}
	return out
}

func invertsIncidentTriangle(mesh meshmodel.Mesh, positions []geom.Point, pointIdx int) bool {
	for _, tri := range mesh.T {
		touches := false
		for _, v := range tri {
			if v == pointIdx {
				touches = true
				break
			}
		}
		if !touches {
			continue
		}
		before := geom.SignedArea(mesh.P[tri[0]].Pos, mesh.P[tri[1]].Pos, mesh.P[tri[2]].Pos)
		after := geom.SignedArea(positions[tri[0]], positions[tri[1]], positions[tri[2]])
		if before > 0 && after <= 0 {
			return true
		}
	}
	return false
}
