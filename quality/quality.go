// Package quality derives the scalar diagnostics the driver uses to
// decide whether to keep iterating: per-triangle shape quality and
// its aggregates, and the bar-length misfit statistics that gate the
// density controller.
package quality

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/lattice2d/springmesh/geom"
	"github.com/lattice2d/springmesh/meshmodel"
)

// Triangles returns the quality factor q = 4*sqrt(3)*A/(a^2+b^2+c^2)
// for every triangle in mesh, in the same order as mesh.T.
func Triangles(mesh meshmodel.Mesh) []float64 {
	out := make([]float64, len(mesh.T))
	for i, tri := range mesh.T {
		out[i] = geom.QualityFactor(mesh.P[tri[0]].Pos, mesh.P[tri[1]].Pos, mesh.P[tri[2]].Pos)
	}
	return out
}

// Aggregate summarizes a quality sample: the worst (minimum) and mean
// values the driver compares against QTol and MeanQTol.
type Aggregate struct {
	Worst float64
	Mean  float64
}

// AggregateTriangleQuality reduces q over all triangles. An empty
// mesh has no triangles to be poor, so it reports a perfect score.
func AggregateTriangleQuality(q []float64) Aggregate {
	if len(q) == 0 {
		return Aggregate{Worst: 1, Mean: 1}
	}
	worst := q[0]
	for _, v := range q[1:] {
		if v < worst {
			worst = v
		}
	}
	return Aggregate{Worst: worst, Mean: stat.Mean(q, nil)}
}

// FractionBelow returns the fraction of q strictly below tol, the
// statistic the driver's monotone-progress guard tracks across
// smoothing sweeps.
func FractionBelow(q []float64, tol float64) float64 {
	if len(q) == 0 {
		return 0
	}
	count := 0
	for _, v := range q {
		if v < tol {
			count++
		}
	}
	return float64(count) / float64(len(q))
}

// BarMisfitStats summarizes, over a bar sample, the misfit ratio
// (L-L0Bar)/L0Bar: its RMS, its mean absolute value (the driver's
// mean_misfit_bar_length, gating the density/smoothing phase choice),
// and the fraction of bars whose absolute
// misfit ratio is at least 50%, the trigger the density controller's
// progress guard watches.
type BarMisfitStats struct {
	RMSMisfit          float64
	MeanAbsMisfit      float64
	FractionHighMisfit float64
}

// BarMisfit computes BarMisfitStats from parallel bar-length and
// rest-length slices.
func BarMisfit(length, restLength []float64) BarMisfitStats {
	ratios := meshmodel.MisfitRatios(length, restLength)
	if len(ratios) == 0 {
		return BarMisfitStats{}
	}
	squares := make([]float64, len(ratios))
	abs := make([]float64, len(ratios))
	high := 0
	for i, r := range ratios {
		squares[i] = r * r
		abs[i] = absFloat(r)
		if abs[i] >= 0.5 {
			high++
		}
	}
	return BarMisfitStats{
		RMSMisfit:          math.Sqrt(stat.Mean(squares, nil)),
		MeanAbsMisfit:      stat.Mean(abs, nil),
		FractionHighMisfit: float64(high) / float64(len(ratios)),
	}
}

// NodalDensityRatio computes |rms(rho) - rms(rho0)| / rms(rho), the
// statistic that branches the density phase: rho = sqrt(2)/L^2 is the
// nodal density implied by actual bar lengths, rho0 = sqrt(2)/L0Bar^2
// the density implied by the rest lengths.
func NodalDensityRatio(length, restLength []float64) float64 {
	if len(length) == 0 {
		return 0
	}
	rhoSq := make([]float64, len(length))
	rho0Sq := make([]float64, len(length))
	for i := range length {
		rho := math.Sqrt2 / (length[i] * length[i])
		rho0 := math.Sqrt2 / (restLength[i] * restLength[i])
		rhoSq[i] = rho * rho
		rho0Sq[i] = rho0 * rho0
	}
	rmsRho := math.Sqrt(stat.Mean(rhoSq, nil))
	rmsRho0 := math.Sqrt(stat.Mean(rho0Sq, nil))
	if rmsRho == 0 {
		return 0
	}
	return absFloat(rmsRho-rmsRho0) / rmsRho
}

func absFloat(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
