package meshmodel

import (
	"sort"

	"github.com/lattice2d/springmesh/geom"
)

// ExtractBars derives the unique undirected edges of a triangle list,
// canonicalized so that A < B, and returns them in a stable
// lexicographic order so bar-indexed diagnostic arrays can be compared
// across iterations.
func ExtractBars(tris []Triangle) []Bar {
	seen := make(map[Bar]struct{}, len(tris)*3/2)
	for _, tri := range tris {
		addEdge(seen, tri[0], tri[1])
		addEdge(seen, tri[1], tri[2])
		addEdge(seen, tri[2], tri[0])
	}
	bars := make([]Bar, 0, len(seen))
	for b := range seen {
		bars = append(bars, b)
	}
	sort.Slice(bars, func(i, j int) bool {
		if bars[i].A != bars[j].A {
			return bars[i].A < bars[j].A
		}
		return bars[i].B < bars[j].B
	})
	return bars
}

func addEdge(seen map[Bar]struct{}, i, j int) {
	if i == j {
		return
	}
	if i > j {
		i, j = j, i
	}
	seen[Bar{i, j}] = struct{}{}
}

// BarLengths returns the actual Euclidean length of every bar given
// the current point positions.
func BarLengths(bars []Bar, pos []geom.Point) []float64 {
	lens := make([]float64, len(bars))
	for i, b := range bars {
		lens[i] = geom.Distance(pos[b.A], pos[b.B])
	}
	return lens
}

// RestLengths returns L0Bar for every bar: the mean of the endpoints'
// desired length, scaled by scale (Settings.RestLengthScale).
func RestLengths(bars []Bar, points []Point, scale float64) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = scale * (points[b.A].L0 + points[b.B].L0) / 2
	}
	return out
}

// MisfitRatios returns, per bar, (L-L0Bar)/L0Bar.
func MisfitRatios(length, restLength []float64) []float64 {
	out := make([]float64, len(length))
	for i := range length {
		if restLength[i] == 0 {
			continue
		}
		out[i] = (length[i] - restLength[i]) / restLength[i]
	}
	return out
}
