// Package driver runs the iteration loop that ties placement,
// spring relaxation, density control, smoothing and quality
// measurement into one convergent mesh generator.
package driver

import (
	"log"

	"github.com/lattice2d/springmesh/boundary"
	"github.com/lattice2d/springmesh/config"
	"github.com/lattice2d/springmesh/delaunay"
	"github.com/lattice2d/springmesh/density"
	"github.com/lattice2d/springmesh/errs"
	"github.com/lattice2d/springmesh/geom"
	"github.com/lattice2d/springmesh/meshmodel"
	"github.com/lattice2d/springmesh/placement"
	"github.com/lattice2d/springmesh/quality"
	"github.com/lattice2d/springmesh/smoother"
	"github.com/lattice2d/springmesh/spring"
)

// nodalDensityRatioTol is the threshold the density phase branches on:
// above it, add/reject runs repeatedly until the ratio drops back
// under it; at or below it, add/reject runs only while the
// high-misfit bar fraction keeps improving.
const nodalDensityRatioTol = 0.40

// highMisfitTol is the |rest-length misfit| fraction threshold the
// density sub-loop's progress guard tracks.
const highMisfitTol = 0.5

// maxDensityRatioSteps bounds the above-threshold density sub-loop.
// Unlike the discrete bar/triangle fractions the other sub-loops
// track (which can only take finitely many decreasing values before
// they must stop), the nodal-density ratio is a continuous statistic
// with no guaranteed step count, so a real implementation needs an
// explicit cap.
const maxDensityRatioSteps = 20

// Field supplies the desired edge length at a point; a
// *guidemesh.GuideMesh satisfies it without adaptation. Leave nil for
// config.Regular mode, where every length is Settings.H0.
type Field interface {
	Interpolate(p geom.Point) float64
}

// Options collects everything Generate needs beyond the mesh itself.
type Options struct {
	Settings      config.Settings
	Boundary      boundary.Boundary
	Field         Field
	SpringOptions spring.Options

	// Logger receives one line per iteration. Defaults to log.Default().
	Logger *log.Logger
	// Cancel, if non-nil, stops the loop at the next iteration
	// boundary and returns the last good mesh with no error.
	Cancel <-chan struct{}
}

// Diagnostic reports the outcome of a Generate call.
type Diagnostic struct {
	Iterations int
	WorstQ     float64
	MeanQ      float64
	Converged  bool
}

// Generate builds and relaxes a mesh over opts.Boundary until the
// quality tolerances in opts.Settings are met or itmax is exhausted.
// The domain shape and extents in opts.Settings are taken from
// opts.Boundary before validation. It always returns a usable mesh,
// even when it also returns a non-nil error: only *errs.ConfigError and
// *errs.DegenerateGeometry (both raised before any relaxation
// happens) come back with a nil mesh.
func Generate(opts Options) (*meshmodel.Mesh, Diagnostic, error) {
	switch b := opts.Boundary.(type) {
	case boundary.Rectangle:
		opts.Settings.DomainShape = config.ShapeRectangle
		opts.Settings.XMin, opts.Settings.XMax, opts.Settings.YMin, opts.Settings.YMax = b.XMin, b.XMax, b.YMin, b.YMax
	case boundary.Annulus:
		opts.Settings.DomainShape = config.ShapeAnnulus
		opts.Settings.CX, opts.Settings.CY, opts.Settings.RInner, opts.Settings.ROuter = b.CX, b.CY, b.RInner, b.ROuter
	}
	if err := opts.Settings.Validate(); err != nil {
		return nil, Diagnostic{}, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	mesh, err := initialMesh(opts)
	if err != nil {
		return nil, Diagnostic{}, err
	}

	for iter := 1; iter <= opts.Settings.Itmax; iter++ {
		if cancelled(opts.Cancel) {
			logger.Printf("iteration %d: cancelled, returning last good mesh", iter)
			return &mesh, diagnosticFor(iter-1, mesh, false), nil
		}

		iterStart := mesh.Clone()

		newPos, err := spring.Solve(mesh, opts.Boundary, opts.SpringOptions, iter)
		if err != nil {
			logger.Printf("iteration %d: solve failed: %v", iter, err)
			return &iterStart, diagnosticFor(iter-1, iterStart, false), err
		}

		applied, inverted := applyWithInversionGuard(mesh, newPos)
		if inverted {
			logger.Printf("iteration %d: displacement halving could not avoid an inverted triangle, rolling back", iter)
			return &iterStart, diagnosticFor(iter-1, iterStart, false), &errs.InvertedTriangle{Iteration: iter}
		}
		mesh.P = withPositions(mesh.P, applied)
		mesh.L = meshmodel.BarLengths(mesh.B, applied)
		mesh.Q = quality.Triangles(mesh)

		misfit := quality.BarMisfit(mesh.L, mesh.L0Bar)
		if misfit.MeanAbsMisfit >= opts.Settings.MeanMisfitBarLengthTol {
			mesh = densityPhase(mesh, iterStart, opts, logger, iter)
		} else {
			mesh = smoothingPhase(mesh, iterStart, opts, logger, iter)
		}

		mesh.Q = quality.Triangles(mesh)
		agg := quality.AggregateTriangleQuality(mesh.Q)
		misfit = quality.BarMisfit(mesh.L, mesh.L0Bar)

		logger.Printf("iteration %d: worst_q=%.4f mean_q=%.4f mean_abs_misfit=%.4f points=%d triangles=%d",
			iter, agg.Worst, agg.Mean, misfit.MeanAbsMisfit, len(mesh.P), len(mesh.T))

		if agg.Worst >= opts.Settings.QTol && agg.Mean >= opts.Settings.MeanQTol {
			return &mesh, diagnosticFor(iter, mesh, true), nil
		}
	}

	agg := quality.AggregateTriangleQuality(mesh.Q)
	return &mesh, diagnosticFor(opts.Settings.Itmax, mesh, false), &errs.NonConvergence{
		Iterations: opts.Settings.Itmax, WorstQ: agg.Worst, MeanQ: agg.Mean,
	}
}

func initialMesh(opts Options) (meshmodel.Mesh, error) {
	field := lengthField(opts)
	points := placement.Place(opts.Boundary, opts.Settings, field)
	positions := make([]geom.Point, len(points))
	for i, p := range points {
		positions[i] = p.Pos
	}
	tris, err := delaunay.Triangulate(positions)
	if err != nil {
		return meshmodel.Mesh{}, err
	}
	bars := meshmodel.ExtractBars(tris)
	lengths := meshmodel.BarLengths(bars, positions)
	rest := meshmodel.RestLengths(bars, points, opts.Settings.RestLengthScale)
	mesh := meshmodel.Mesh{P: points, T: tris, B: bars, L: lengths, L0Bar: rest}
	mesh.Q = quality.Triangles(mesh)
	return mesh, nil
}

func lengthField(opts Options) density.LengthField {
	if opts.Field != nil {
		return opts.Field
	}
	return nil
}

// densityPhase implements the density sub-loop. When the nodal-density
// ratio |rms(rho)-rms(rho0)|/rms(rho) exceeds nodalDensityRatioTol, it
// runs add/reject repeatedly until the ratio drops back under the
// threshold (bounded by maxDensityRatioSteps). Otherwise it runs
// add/reject only while the fraction of bars with |misfit| >=
// highMisfitTol keeps strictly decreasing; the first non-improving
// step discards the entire iteration (solve included) and returns
// iterStart, the snapshot taken before this iteration began.
func densityPhase(mesh, iterStart meshmodel.Mesh, opts Options, logger *log.Logger, iter int) meshmodel.Mesh {
	field := lengthField(opts)

	ratio := quality.NodalDensityRatio(mesh.L, mesh.L0Bar)
	if ratio > nodalDensityRatioTol {
		for step := 0; step < maxDensityRatioSteps && ratio > nodalDensityRatioTol; step++ {
			mesh = runAddReject(mesh, field, opts)
			ratio = quality.NodalDensityRatio(mesh.L, mesh.L0Bar)
		}
		if ratio > nodalDensityRatioTol {
			logger.Printf("iteration %d: nodal density ratio still above %.2f after %d steps, continuing", iter, nodalDensityRatioTol, maxDensityRatioSteps)
		}
		return mesh
	}

	prevFrac := quality.BarMisfit(mesh.L, mesh.L0Bar).FractionHighMisfit
	for {
		candidate := runAddReject(mesh, field, opts)
		newFrac := quality.BarMisfit(candidate.L, candidate.L0Bar).FractionHighMisfit
		if newFrac >= prevFrac {
			logger.Printf("iteration %d: density sub-loop stopped improving (frac_high_misfit %.4f -> %.4f), rolling back to iteration start", iter, prevFrac, newFrac)
			return iterStart
		}
		mesh, prevFrac = candidate, newFrac
	}
}

func runAddReject(mesh meshmodel.Mesh, field density.LengthField, opts Options) meshmodel.Mesh {
	mesh = density.Add(mesh, field, opts.Settings.AlphaAdd, opts.Settings.RestLengthScale)
	mesh = density.Reject(mesh, opts.Settings.AlphaReject, opts.Settings.RestLengthScale)
	return mesh
}

// smoothingPhase implements the smoothing sub-loop: it runs Laplacian
// sweeps while the fraction of triangles with q < QTol keeps strictly
// decreasing, with the same whole-iteration rollback discipline as
// densityPhase. It exits immediately, without smoothing, if the mesh
// already meets both quality tolerances.
func smoothingPhase(mesh, iterStart meshmodel.Mesh, opts Options, logger *log.Logger, iter int) meshmodel.Mesh {
	agg := quality.AggregateTriangleQuality(mesh.Q)
	if agg.Worst >= opts.Settings.QTol && agg.Mean >= opts.Settings.MeanQTol {
		return mesh
	}

	prevFrac := quality.FractionBelow(mesh.Q, opts.Settings.QTol)
	for {
		newPos := smoother.Sweep(mesh)
		candidate := mesh
		candidate.P = withPositions(mesh.P, newPos)
		candidate.L = meshmodel.BarLengths(mesh.B, newPos)
		candidate.Q = quality.Triangles(candidate)

		newFrac := quality.FractionBelow(candidate.Q, opts.Settings.QTol)
		if newFrac >= prevFrac {
			logger.Printf("iteration %d: smoothing sub-loop stopped improving (frac_below_qtol %.4f -> %.4f), rolling back to iteration start", iter, prevFrac, newFrac)
			return iterStart
		}
		mesh, prevFrac = candidate, newFrac
	}
}

func withPositions(points []meshmodel.Point, pos []geom.Point) []meshmodel.Point {
	out := make([]meshmodel.Point, len(points))
	for i, p := range points {
		out[i] = p
		out[i].Pos = pos[i]
	}
	return out
}

// applyWithInversionGuard checks whether newPos inverts any triangle
// relative to mesh's current positions; if so it retries once at half
// the displacement before giving up.
func applyWithInversionGuard(mesh meshmodel.Mesh, newPos []geom.Point) ([]geom.Point, bool) {
	old := mesh.Positions()
	if !hasInversion(mesh.T, old, newPos) {
		return newPos, false
	}
	halved := make([]geom.Point, len(newPos))
	for i := range newPos {
		halved[i] = geom.Point{(old[i][0] + newPos[i][0]) / 2, (old[i][1] + newPos[i][1]) / 2}
	}
	if hasInversion(mesh.T, old, halved) {
		return nil, true
	}
	return halved, false
}

func hasInversion(tris []meshmodel.Triangle, before, after []geom.Point) bool {
	for _, tri := range tris {
		b := geom.SignedArea(before[tri[0]], before[tri[1]], before[tri[2]])
		a := geom.SignedArea(after[tri[0]], after[tri[1]], after[tri[2]])
		if b > 0 && a <= 0 {
			return true
		}
	}
	return false
}

func cancelled(c <-chan struct{}) bool {
	if c == nil {
		return false
	}
	select {
	case <-c:
		return true
	default:
		return false
	}
}

func diagnosticFor(iterations int, mesh meshmodel.Mesh, converged bool) Diagnostic {
	agg := quality.AggregateTriangleQuality(mesh.Q)
	return Diagnostic{Iterations: iterations, WorstQ: agg.Worst, MeanQ: agg.Mean, Converged: converged}
}
