package orbit

import "math"

const (
	keplerTolerance     = 1e-12
	keplerMaxIterations = 64
)

// MeanAnomalyAtTime returns the mean anomaly at simulation time t.
// The value is not wrapped; it grows without bound for closed orbits so that
// anomaly-derived quantities stay continuous in time.
func (o *Orbit) MeanAnomalyAtTime(t float64) float64 {
	return o.meanAnomaly + o.MeanMotion()*t
}

// EccentricAnomalyAtTime returns the eccentric anomaly at simulation time t.
// For a parabola this is Barker's auxiliary variable D = tan(nu/2), the
// degenerate limit of the eccentric anomaly.
func (o *Orbit) EccentricAnomalyAtTime(t float64) float64 {
	return o.EccentricAnomalyAtMeanAnomaly(o.MeanAnomalyAtTime(t))
}

// EccentricAnomalyAtMeanAnomaly inverts Kepler's equation.
func (o *Orbit) EccentricAnomalyAtMeanAnomaly(m float64) float64 {
	switch {
	case o.eccentricity < 1:
		return o.ellipticEccentricAnomaly(m)
	case o.eccentricity == 1:
		return parabolicAnomaly(m)
	default:
		return o.hyperbolicEccentricAnomaly(m)
	}
}

// ellipticEccentricAnomaly solves M = E - e sin E by Newton iteration.
// The solution is shifted so that E - M stays bounded: passing M outside
// [0, 2pi) yields the corresponding unwrapped E.
func (o *Orbit) ellipticEccentricAnomaly(m float64) float64 {
	e := o.eccentricity

	turns := math.Floor(m / (2 * math.Pi))
	mr := m - turns*2*math.Pi

	// Standard starter: M itself for mild eccentricity, pi otherwise.
	guess := mr
	if e > 0.8 {
		guess = math.Pi
	}

	ecc := guess
	for i := 0; i < keplerMaxIterations; i++ {
		f := ecc - e*math.Sin(ecc) - mr
		fPrime := 1 - e*math.Cos(ecc)
		delta := f / fPrime
		ecc -= delta
		if math.Abs(delta) < keplerTolerance {
			break
		}
	}

	return ecc + turns*2*math.Pi
}

// hyperbolicEccentricAnomaly solves M = e sinh F - F by Newton iteration.
func (o *Orbit) hyperbolicEccentricAnomaly(m float64) float64 {
	e := o.eccentricity

	// Asinh starter behaves well for both small and very large |M|.
	f := math.Asinh(m / e)

	for i := 0; i < keplerMaxIterations; i++ {
		fn := e*math.Sinh(f) - f - m
		fPrime := e*math.Cosh(f) - 1
		delta := fn / fPrime
		f -= delta
		if math.Abs(delta) < keplerTolerance {
			break
		}
	}

	return f
}

// parabolicAnomaly solves Barker's equation M = D + D^3/3 in closed form.
func parabolicAnomaly(m float64) float64 {
	// Substituting D = s - 1/s turns the cubic into a quadratic in s^3.
	y := (3*m + math.Sqrt(9*m*m+4)) / 2
	s := math.Cbrt(y)
	return s - 1/s
}

// MeanAnomalyAtEccentricAnomaly applies Kepler's equation directly.
func (o *Orbit) MeanAnomalyAtEccentricAnomaly(ecc float64) float64 {
	switch {
	case o.eccentricity < 1:
		return ecc - o.eccentricity*math.Sin(ecc)
	case o.eccentricity == 1:
		return ecc + ecc*ecc*ecc/3
	default:
		return o.eccentricity*math.Sinh(ecc) - ecc
	}
}

// TrueAnomalyAtEccentricAnomaly converts eccentric to true anomaly.
func (o *Orbit) TrueAnomalyAtEccentricAnomaly(ecc float64) float64 {
	e := o.eccentricity
	switch {
	case e < 1:
		return 2 * math.Atan2(
			math.Sqrt(1+e)*math.Sin(ecc/2),
			math.Sqrt(1-e)*math.Cos(ecc/2),
		)
	case e == 1:
		return 2 * math.Atan(ecc)
	default:
		return 2 * math.Atan(math.Sqrt((e+1)/(e-1))*math.Tanh(ecc/2))
	}
}

// EccentricAnomalyAtTrueAnomaly converts true to eccentric anomaly.
func (o *Orbit) EccentricAnomalyAtTrueAnomaly(nu float64) float64 {
	e := o.eccentricity
	switch {
	case e < 1:
		return 2 * math.Atan2(
			math.Sqrt(1-e)*math.Sin(nu/2),
			math.Sqrt(1+e)*math.Cos(nu/2),
		)
	case e == 1:
		return math.Tan(nu / 2)
	default:
		return 2 * math.Atanh(math.Sqrt((e-1)/(e+1))*math.Tan(nu/2))
	}
}

// TrueAnomalyAtTime returns the true anomaly at simulation time t.
func (o *Orbit) TrueAnomalyAtTime(t float64) float64 {
	return o.TrueAnomalyAtEccentricAnomaly(o.EccentricAnomalyAtTime(t))
}
