// Package springmesh generates unstructured triangular meshes over a
// planar domain by spring relaxation: points are placed, connected by
// a Delaunay triangulation, and iteratively relaxed as a truss of
// springs whose rest lengths come from a desired-length field, with
// density control and Laplacian smoothing interleaved until the mesh
// meets its quality tolerances.
package springmesh

import (
	"github.com/lattice2d/springmesh/boundary"
	"github.com/lattice2d/springmesh/config"
	"github.com/lattice2d/springmesh/driver"
	"github.com/lattice2d/springmesh/geom"
	"github.com/lattice2d/springmesh/guidemesh"
	"github.com/lattice2d/springmesh/meshmodel"
	"github.com/lattice2d/springmesh/spring"
)

// Re-exported so callers depend on one import path for the common
// path through the API.
type (
	Settings  = config.Settings
	Mesh      = meshmodel.Mesh
	Point     = geom.Point
	Rectangle = boundary.Rectangle
	Annulus   = boundary.Annulus
	GuideMesh = guidemesh.GuideMesh

	Options    = driver.Options
	Diagnostic = driver.Diagnostic
)

// DefaultSettings returns the package defaults (see config.Default).
func DefaultSettings() Settings { return config.Default() }

// DefaultSpringOptions returns the spring assembler defaults (cross
// bars and balloon forces both off).
func DefaultSpringOptions() spring.Options { return spring.DefaultOptions() }

// NewGuideMesh validates and builds a guide mesh from an explicit
// vertex/triangle/length-field triple.
func NewGuideMesh(vertices []Point, triangles []meshmodel.Triangle, l0 []float64) (*GuideMesh, error) {
	return guidemesh.New(vertices, triangles, l0)
}

// NewRectangularGuideMesh builds the coarse/transition/refined guide
// mesh for a rectangular domain with optional refinement windows.
func NewRectangularGuideMesh(rect Rectangle, l0Coarse float64, zones []guidemesh.RefinementZone) (*GuideMesh, error) {
	return guidemesh.BuildRectangular(rect, l0Coarse, zones)
}

// Generate places, triangulates and relaxes a mesh over opts.Boundary
// per opts.Settings, returning the final mesh and a diagnostic summary
// alongside any error. A *errs.ConfigError or an initial-triangulation
// *errs.DegenerateGeometry come back with a nil mesh; every other
// error (*errs.SingularSystem, *errs.InvertedTriangle,
// *errs.NonConvergence) comes back alongside the last good mesh.
func Generate(opts Options) (*Mesh, Diagnostic, error) {
	return driver.Generate(opts)
}
