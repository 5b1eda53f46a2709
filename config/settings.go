// Package config holds Settings, the single caller-supplied
// configuration surface for the mesh generation core: a plain struct
// with explicit fields and defaults that a caller constructs and
// passes directly, since ingesting configuration from a file or CLI
// is out of scope for this core.
package config

import (
	"github.com/lattice2d/springmesh/errs"
)

// Refinement selects how the desired-length field L0 is supplied.
type Refinement string

const (
	Regular   Refinement = "regular"
	GuideMesh Refinement = "guide_mesh"
)

// DomainShape selects the domain geometry: a plain rectangle or a
// cylindrical annulus.
type DomainShape string

const (
	ShapeRectangle DomainShape = "rectangle"
	ShapeAnnulus   DomainShape = "annulus"
)

// Settings collects every core-visible knob the mesh generator
// reads, including the domain shape selector and the rest-length
// scaling factor applied to every bar.
type Settings struct {
	Itmax int

	QTol     float64
	MeanQTol float64

	MeanMisfitBarLengthTol float64

	H0         float64
	Refinement Refinement

	AlphaAdd    float64
	AlphaReject float64

	// RestLengthScale is the factor applied to a bar's mean endpoint
	// L0 to get its rest length L0Bar.
	RestLengthScale float64

	DomainShape DomainShape

	XMin, XMax, YMin, YMax float64 // rectangle
	CX, CY, RInner, ROuter float64 // annulus
}

// Default returns a conservative set of defaults.
func Default() Settings {
	return Settings{
		Itmax:                  10,
		QTol:                   0.60,
		MeanQTol:               0.90,
		MeanMisfitBarLengthTol: 0.15,
		Refinement:             Regular,
		AlphaAdd:               1.4,
		AlphaReject:            0.6,
		RestLengthScale:        1.2,
		DomainShape:            ShapeRectangle,
	}
}

// Validate returns the first out-of-range or mutually inconsistent
// field it finds as a *ConfigError, or nil if Settings is usable.
func (s Settings) Validate() error {
	switch {
	case s.Itmax <= 0:
		return &errs.ConfigError{Field: "itmax", Reason: "must be positive"}
	case s.QTol <= 0 || s.QTol > 1:
		return &errs.ConfigError{Field: "q_tol", Reason: "must be in (0,1]"}
	case s.MeanQTol <= 0 || s.MeanQTol > 1:
		return &errs.ConfigError{Field: "mean_q_tol", Reason: "must be in (0,1]"}
	case s.MeanMisfitBarLengthTol <= 0:
		return &errs.ConfigError{Field: "mean_misfit_bar_length_tol", Reason: "must be positive"}
	case s.AlphaAdd <= 1:
		return &errs.ConfigError{Field: "alpha_add", Reason: "must be greater than 1"}
	case s.AlphaReject <= 0 || s.AlphaReject >= 1:
		return &errs.ConfigError{Field: "alpha_reject", Reason: "must be in (0,1)"}
	case s.RestLengthScale <= 0:
		return &errs.ConfigError{Field: "rest_length_scale", Reason: "must be positive"}
	case s.Refinement == Regular && s.H0 <= 0:
		return &errs.ConfigError{Field: "h0", Reason: "must be positive in regular mode"}
	case s.Refinement != Regular && s.Refinement != GuideMesh:
		return &errs.ConfigError{Field: "refinement", Reason: "must be 'regular' or 'guide_mesh'"}
	}

	switch s.DomainShape {
	case ShapeRectangle:
		if s.XMax <= s.XMin || s.YMax <= s.YMin {
			return &errs.ConfigError{Field: "domain extents", Reason: "x_max must exceed x_min and y_max must exceed y_min"}
		}
	case ShapeAnnulus:
		if s.ROuter <= s.RInner || s.RInner < 0 {
			return &errs.ConfigError{Field: "domain extents", Reason: "r_outer must exceed r_inner, and r_inner must be non-negative"}
		}
	default:
		return &errs.ConfigError{Field: "domain_shape", Reason: "must be 'rectangle' or 'annulus'"}
	}
	return nil
}
