// Package placement implements initial point placement: boundary
// discretization at a spacing drawn from the desired-length field,
// and interior seeding by hexagonal circle-packing with boundary
// rejection, building point lists directly from coordinate math
// rather than through a mesh-generation library.
package placement

import (
	"math"

	"github.com/google/uuid"

	"github.com/lattice2d/springmesh/boundary"
	"github.com/lattice2d/springmesh/config"
	"github.com/lattice2d/springmesh/geom"
	"github.com/lattice2d/springmesh/meshmodel"
)

// LengthField is the minimal interface placement needs from a guide
// mesh: a query of the desired length at a point.
type LengthField interface {
	Interpolate(p geom.Point) float64
}

// Place builds the initial point set for b: boundary points at a
// per-side spacing, corners shared between adjacent sides, and an
// interior hexagonal lattice with lattice points within
// 0.7*h of any boundary node rejected. field may be nil, in which case
// every spacing is settings.H0 (the "regular" refinement mode).
func Place(b boundary.Boundary, settings config.Settings, field LengthField) []meshmodel.Point {
	hAt := func(p geom.Point) float64 {
		if field != nil {
			return field.Interpolate(p)
		}
		return settings.H0
	}

	var points []meshmodel.Point
	seen := make(map[[2]int64]int) // quantized position -> index into points, for corner/shared-vertex dedup

	key := func(p geom.Point) [2]int64 {
		const q = 1e7
		return [2]int64{int64(math.Round(p[0] * q)), int64(math.Round(p[1] * q))}
	}

	add := func(p geom.Point, class meshmodel.Class, l0 float64) int {
		k := key(p)
		if idx, ok := seen[k]; ok {
			return idx
		}
		idx := len(points)
		points = append(points, meshmodel.Point{ID: uuid.New(), Pos: p, Class: class, L0: l0})
		seen[k] = idx
		return idx
	}

	for _, c := range b.Corners() {
		add(c, meshmodel.ClassCorner, hAt(c))
	}

	for _, side := range b.Sides() {
		h := hAt(side.Midpoint)
		closed := side.Start == side.End
		var n int
		if closed {
			n = int(math.Round(side.Length / h))
			if n < 3 {
				n = 3
			}
		} else {
			n = int(math.Round(side.Length/h)) + 1
			if n < 2 {
				n = 2
			}
		}
		for _, p := range b.Discretize(side, n) {
			class := side.Class
			add(p, class, hAt(p))
		}
	}

	boundarySnapshot := append([]meshmodel.Point(nil), points...)
	for _, p := range hexInterior(b, hAt) {
		h := hAt(p)
		if !b.Contains(p) {
			continue
		}
		if tooCloseToBoundary(p, boundarySnapshot, 0.7*h) {
			continue
		}
		add(p, meshmodel.ClassInterior, h)
	}

	return points
}

func tooCloseToBoundary(p geom.Point, boundaryPts []meshmodel.Point, minDist float64) bool {
	for _, bp := range boundaryPts {
		if geom.Distance(p, bp.Pos) < minDist {
			return true
		}
	}
	return false
}

// hexInterior tiles b's bounding box with a hexagonal lattice whose
// spacing is h evaluated at the domain centroid, and
// returns the candidate points that lie within the domain. Final
// boundary-proximity rejection happens in Place.
func hexInterior(b boundary.Boundary, hAt func(geom.Point) float64) []geom.Point {
	h := hAt(b.Centroid())
	if h <= 0 {
		return nil
	}
	min, max := b.BoundingBox()

	rowHeight := h * math.Sqrt(3) / 2
	var out []geom.Point
	row := 0
	for y := min[1]; y <= max[1]; y += rowHeight {
		offset := 0.0
		if row%2 == 1 {
			offset = h / 2
		}
		for x := min[0] + offset; x <= max[0]; x += h {
			p := geom.Point{x, y}
			if b.Contains(p) {
				out = append(out, p)
			}
		}
		row++
	}
	return out
}
