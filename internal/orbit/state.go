package orbit

import (
	"math"

	"orbitarium-server/internal/geom"
)

// planePosition returns the position within the orbital plane at the given
// eccentric anomaly, with x toward periapsis.
func (o *Orbit) planePosition(ecc float64) (x, y float64) {
	e := o.eccentricity
	rp := o.periapsis

	switch {
	case e < 1:
		a := rp / (1 - e)
		b := a * math.Sqrt(1-e*e)
		return a * (math.Cos(ecc) - e), b * math.Sin(ecc)
	case e == 1:
		// ecc is Barker's D = tan(nu/2).
		return rp * (1 - ecc*ecc), 2 * rp * ecc
	default:
		a := rp / (1 - e) // negative
		b := -a * math.Sqrt(e*e-1)
		return a * (math.Cosh(ecc) - e), b * math.Sinh(ecc)
	}
}

// planeVelocity returns the velocity within the orbital plane at the given
// eccentric anomaly.
func (o *Orbit) planeVelocity(ecc float64) (vx, vy float64) {
	e := o.eccentricity
	rp := o.periapsis
	n := o.MeanMotion()

	switch {
	case e < 1:
		a := rp / (1 - e)
		b := a * math.Sqrt(1-e*e)
		// dE/dt from differentiating M = E - e sin E.
		eccRate := n / (1 - e*math.Cos(ecc))
		return -a * math.Sin(ecc) * eccRate, b * math.Cos(ecc) * eccRate
	case e == 1:
		// dD/dt from differentiating M = D + D^3/3.
		dRate := n / (1 + ecc*ecc)
		return -2 * rp * ecc * dRate, 2 * rp * dRate
	default:
		a := rp / (1 - e)
		b := -a * math.Sqrt(e*e-1)
		// dF/dt from differentiating M = e sinh F - F.
		eccRate := n / (e*math.Cosh(ecc) - 1)
		return a * math.Sinh(ecc) * eccRate, b * math.Cosh(ecc) * eccRate
	}
}

// PositionAtEccentricAnomaly returns the position relative to the primary.
func (o *Orbit) PositionAtEccentricAnomaly(ecc float64) geom.Vec3 {
	x, y := o.planePosition(ecc)
	return o.TransformationBasis().Apply(x, y)
}

// VelocityAtEccentricAnomaly returns the velocity relative to the primary.
func (o *Orbit) VelocityAtEccentricAnomaly(ecc float64) geom.Vec3 {
	vx, vy := o.planeVelocity(ecc)
	return o.TransformationBasis().Apply(vx, vy)
}

// PositionAtTime returns the position relative to the primary at time t.
func (o *Orbit) PositionAtTime(t float64) geom.Vec3 {
	return o.PositionAtEccentricAnomaly(o.EccentricAnomalyAtTime(t))
}

// VelocityAtTime returns the velocity relative to the primary at time t.
func (o *Orbit) VelocityAtTime(t float64) geom.Vec3 {
	return o.VelocityAtEccentricAnomaly(o.EccentricAnomalyAtTime(t))
}

// StateVectorsAtTime returns position and velocity relative to the primary.
func (o *Orbit) StateVectorsAtTime(t float64) (geom.Vec3, geom.Vec3) {
	ecc := o.EccentricAnomalyAtTime(t)
	return o.PositionAtEccentricAnomaly(ecc), o.VelocityAtEccentricAnomaly(ecc)
}

// Radius returns the distance to the primary at the given true anomaly.
func (o *Orbit) Radius(nu float64) float64 {
	return o.SemiLatusRectum() / (1 + o.eccentricity*math.Cos(nu))
}

// MuSetterMode selects how SetGravitationalParameter reconciles the orbit
// with its new gravitational parameter.
type MuSetterMode struct {
	kind muSetterKind
	time float64
}

type muSetterKind int

const (
	muKeepElements muSetterKind = iota
	muKeepPosition
	muKeepStateVectors
)

// KeepElements overwrites mu and leaves every other element untouched.
// Position and velocity at the current time jump discontinuously.
func KeepElements() MuSetterMode {
	return MuSetterMode{kind: muKeepElements}
}

// KeepPositionAtTime overwrites mu while preserving the position at time t.
// The velocity at t is allowed to jump.
func KeepPositionAtTime(t float64) MuSetterMode {
	return MuSetterMode{kind: muKeepPosition, time: t}
}

// KeepStateVectorsAtTime overwrites mu while preserving both position and
// velocity at time t, recomputing the shape and orientation elements from
// the preserved state vectors.
func KeepStateVectorsAtTime(t float64) MuSetterMode {
	return MuSetterMode{kind: muKeepStateVectors, time: t}
}

// SetGravitationalParameter reassigns mu under the given consistency mode.
func (o *Orbit) SetGravitationalParameter(mu float64, mode MuSetterMode) {
	switch mode.kind {
	case muKeepElements:
		o.mu = mu

	case muKeepPosition:
		// The position depends only on the shape elements and the eccentric
		// anomaly, so pinning the anomaly at t pins the position. Re-anchor
		// the epoch anomaly against the new mean motion.
		ecc := o.EccentricAnomalyAtTime(mode.time)
		o.mu = mu
		mAtEcc := o.MeanAnomalyAtEccentricAnomaly(ecc)
		o.meanAnomaly = mAtEcc - o.MeanMotion()*mode.time

	case muKeepStateVectors:
		pos, vel := o.StateVectorsAtTime(mode.time)
		o.mu = mu
		o.setFromStateVectors(pos, vel, mode.time)
	}
}

// degenerateTolerance guards the element recovery below against the
// singular cases (equatorial and circular orbits).
const degenerateTolerance = 1e-12

// setFromStateVectors recomputes every element from a position/velocity
// pair expressed relative to the primary, anchored so that the orbit passes
// through that exact state at time t under the current mu.
func (o *Orbit) setFromStateVectors(pos, vel geom.Vec3, t float64) {
	r := pos.Length()
	if r == 0 {
		return
	}

	h := pos.Cross(vel)
	hMag := h.Length()

	// Eccentricity vector points from focus to periapsis.
	eVec := vel.Cross(h).Scale(1 / o.mu).Sub(pos.Scale(1 / r))
	e := eVec.Length()

	p := hMag * hMag / o.mu
	rp := p / (1 + e)

	inclination := 0.0
	if hMag > 0 {
		inclination = math.Acos(clamp(h.Z/hMag, -1, 1))
	}

	// Node vector: z-hat cross h.
	node := geom.Vec3{X: -h.Y, Y: h.X}
	nMag := node.Length()

	var longAscNode, argPeriapsis, trueAnomaly float64

	if nMag > degenerateTolerance*hMag {
		longAscNode = math.Atan2(node.Y, node.X)
		if e > degenerateTolerance {
			argPeriapsis = math.Acos(clamp(node.Dot(eVec)/(nMag*e), -1, 1))
			if eVec.Z < 0 {
				argPeriapsis = 2*math.Pi - argPeriapsis
			}
		}
	} else {
		// Equatorial: the node line is undefined, measure the argument of
		// periapsis from the reference X axis instead.
		longAscNode = 0
		if e > degenerateTolerance {
			argPeriapsis = math.Atan2(eVec.Y, eVec.X)
			if h.Z < 0 {
				argPeriapsis = -argPeriapsis
			}
		}
	}

	if e > degenerateTolerance {
		trueAnomaly = math.Acos(clamp(eVec.Dot(pos)/(e*r), -1, 1))
		if pos.Dot(vel) < 0 {
			trueAnomaly = -trueAnomaly
		}
	} else {
		// Circular: measure from the node (or X axis when equatorial).
		ref := node
		if nMag <= degenerateTolerance*hMag {
			ref = geom.Vec3{X: 1}
		}
		refMag := ref.Length()
		trueAnomaly = math.Acos(clamp(ref.Dot(pos)/(refMag*r), -1, 1))
		if pos.Z < 0 {
			trueAnomaly = -trueAnomaly
		}
	}

	o.eccentricity = e
	o.periapsis = rp
	o.inclination = inclination
	o.argPeriapsis = argPeriapsis
	o.longAscNode = longAscNode

	ecc := o.EccentricAnomalyAtTrueAnomaly(trueAnomaly)
	mAtEcc := o.MeanAnomalyAtEccentricAnomaly(ecc)
	o.meanAnomaly = mAtEcc - o.MeanMotion()*t
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
