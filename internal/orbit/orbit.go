// Package orbit implements closed-form two-body conic trajectories
// parameterized by classical orbital elements. It supports the elliptic,
// parabolic and hyperbolic regimes, anomaly conversions, state-vector
// evaluation, and gravitational-parameter reassignment under named
// consistency modes.
//
// Angles are in radians, distances in meters, times in seconds, and the
// gravitational parameter in m^3 s^-2. The reference frame is right-handed
// with Z normal to the reference plane.
package orbit

import (
	"math"

	"orbitarium-server/internal/geom"
)

// Orbit is a conic-section trajectory around a primary located at the focus.
//
// The shape is stored as eccentricity plus periapsis distance, which stays
// finite and meaningful across the parabolic boundary (unlike the semi-major
// axis, which diverges at eccentricity 1).
type Orbit struct {
	eccentricity float64
	periapsis    float64
	inclination  float64
	argPeriapsis float64
	longAscNode  float64
	// meanAnomaly is the mean anomaly at epoch (simulation time zero).
	meanAnomaly float64
	mu          float64
}

// New creates an orbit from classical elements.
//
// eccentricity >= 0, periapsis > 0 and mu > 0 are the caller's
// responsibility; they are not validated here.
func New(eccentricity, periapsis, inclination, argPeriapsis, longAscNode, meanAnomalyAtEpoch, mu float64) *Orbit {
	return &Orbit{
		eccentricity: eccentricity,
		periapsis:    periapsis,
		inclination:  inclination,
		argPeriapsis: argPeriapsis,
		longAscNode:  longAscNode,
		meanAnomaly:  meanAnomalyAtEpoch,
		mu:           mu,
	}
}

// NewCircular creates a circular orbit of the given radius in the reference
// plane, starting at the periapsis direction.
func NewCircular(radius, mu float64) *Orbit {
	return New(0, radius, 0, 0, 0, 0, mu)
}

func (o *Orbit) Clone() *Orbit {
	if o == nil {
		return nil
	}
	clone := *o
	return &clone
}

func (o *Orbit) Eccentricity() float64           { return o.eccentricity }
func (o *Orbit) Periapsis() float64              { return o.periapsis }
func (o *Orbit) Inclination() float64            { return o.inclination }
func (o *Orbit) ArgPeriapsis() float64           { return o.argPeriapsis }
func (o *Orbit) LongAscNode() float64            { return o.longAscNode }
func (o *Orbit) MeanAnomalyAtEpoch() float64     { return o.meanAnomaly }
func (o *Orbit) GravitationalParameter() float64 { return o.mu }

func (o *Orbit) SetEccentricity(e float64)       { o.eccentricity = e }
func (o *Orbit) SetPeriapsis(rp float64)         { o.periapsis = rp }
func (o *Orbit) SetInclination(i float64)        { o.inclination = i }
func (o *Orbit) SetArgPeriapsis(w float64)       { o.argPeriapsis = w }
func (o *Orbit) SetLongAscNode(om float64)       { o.longAscNode = om }
func (o *Orbit) SetMeanAnomalyAtEpoch(m float64) { o.meanAnomaly = m }

// SemiMajorAxis returns rp/(1-e): positive for ellipses, negative for
// hyperbolas, +Inf at the parabolic boundary.
func (o *Orbit) SemiMajorAxis() float64 {
	if o.eccentricity == 1 {
		return math.Inf(1)
	}
	return o.periapsis / (1 - o.eccentricity)
}

// Apoapsis returns the apoapsis distance, or +Inf for open orbits.
func (o *Orbit) Apoapsis() float64 {
	if o.eccentricity >= 1 {
		return math.Inf(1)
	}
	return o.periapsis * (1 + o.eccentricity) / (1 - o.eccentricity)
}

// SemiLatusRectum returns rp(1+e), finite in every regime.
func (o *Orbit) SemiLatusRectum() float64 {
	return o.periapsis * (1 + o.eccentricity)
}

// LinearEccentricity returns the focus-to-center distance |a|*e,
// or +Inf for a parabola (whose center is at infinity).
func (o *Orbit) LinearEccentricity() float64 {
	if o.eccentricity == 1 {
		return math.Inf(1)
	}
	return math.Abs(o.SemiMajorAxis()) * o.eccentricity
}

// Period returns the orbital period, or +Inf for open orbits.
func (o *Orbit) Period() float64 {
	if o.eccentricity >= 1 {
		return math.Inf(1)
	}
	a := o.SemiMajorAxis()
	return 2 * math.Pi * math.Sqrt(a*a*a/o.mu)
}

// MeanMotion returns the rate of change of mean anomaly.
func (o *Orbit) MeanMotion() float64 {
	if o.eccentricity == 1 {
		// Parabolic mean motion per Barker's equation.
		rp := o.periapsis
		return math.Sqrt(o.mu / (2 * rp * rp * rp))
	}
	a := math.Abs(o.SemiMajorAxis())
	return math.Sqrt(o.mu / (a * a * a))
}

// Basis is the 3x2 transformation from orbital-plane coordinates
// (x toward periapsis, y 90 degrees ahead in the direction of motion)
// into the reference frame. Columns are the unit vectors P and Q.
type Basis struct {
	E11, E12 float64
	E21, E22 float64
	E31, E32 float64
}

// Apply maps plane coordinates into the reference frame.
func (b Basis) Apply(x, y float64) geom.Vec3 {
	return geom.Vec3{
		X: b.E11*x + b.E12*y,
		Y: b.E21*x + b.E22*y,
		Z: b.E31*x + b.E32*y,
	}
}

// TransformationBasis returns the orientation basis built from the
// inclination, argument of periapsis and longitude of ascending node.
func (o *Orbit) TransformationBasis() Basis {
	sinI, cosI := math.Sincos(o.inclination)
	sinW, cosW := math.Sincos(o.argPeriapsis)
	sinOm, cosOm := math.Sincos(o.longAscNode)

	return Basis{
		E11: cosOm*cosW - sinOm*sinW*cosI,
		E12: -cosOm*sinW - sinOm*cosW*cosI,
		E21: sinOm*cosW + cosOm*sinW*cosI,
		E22: -sinOm*sinW + cosOm*cosW*cosI,
		E31: sinW * sinI,
		E32: cosW * sinI,
	}
}
