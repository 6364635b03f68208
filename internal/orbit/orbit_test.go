package orbit

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orbitarium-server/internal/geom"
)

const (
	muSun   = 1.32712440018e20
	muEarth = 3.986004418e14
	au      = 1.495978707e11
)

func TestShapeScalars(t *testing.T) {
	t.Run("elliptic", func(t *testing.T) {
		o := New(0.5, 1e11, 0, 0, 0, 0, muSun)

		assert.InEpsilon(t, 2e11, o.SemiMajorAxis(), 1e-12)
		assert.InEpsilon(t, 3e11, o.Apoapsis(), 1e-12)
		assert.InEpsilon(t, 1.5e11, o.SemiLatusRectum(), 1e-12)
		assert.InEpsilon(t, 1e11, o.LinearEccentricity(), 1e-12)
		assert.False(t, math.IsInf(o.Period(), 1))
	})

	t.Run("parabolic", func(t *testing.T) {
		o := New(1, 1e11, 0, 0, 0, 0, muSun)

		assert.True(t, math.IsInf(o.SemiMajorAxis(), 1))
		assert.True(t, math.IsInf(o.Apoapsis(), 1))
		assert.True(t, math.IsInf(o.LinearEccentricity(), 1))
		assert.True(t, math.IsInf(o.Period(), 1))
		assert.InEpsilon(t, 2e11, o.SemiLatusRectum(), 1e-12)
		assert.Greater(t, o.MeanMotion(), 0.0)
	})

	t.Run("hyperbolic", func(t *testing.T) {
		o := New(2, 1e11, 0, 0, 0, 0, muSun)

		assert.InEpsilon(t, -1e11, o.SemiMajorAxis(), 1e-12)
		assert.True(t, math.IsInf(o.Apoapsis(), 1))
		assert.InEpsilon(t, 2e11, o.LinearEccentricity(), 1e-12)
		assert.True(t, math.IsInf(o.Period(), 1))
	})
}

func TestKeplerRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		e    float64
	}{
		{"circular", 0},
		{"mild", 0.3},
		{"high", 0.95},
		{"parabolic", 1},
		{"hyperbolic", 1.7},
		{"extreme_hyperbolic", 12},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := New(tc.e, au, 0, 0, 0, 0, muSun)
			for _, m := range []float64{-8, -1.5, -0.01, 0, 0.01, 1, 3, 7, 40} {
				ecc := o.EccentricAnomalyAtMeanAnomaly(m)
				back := o.MeanAnomalyAtEccentricAnomaly(ecc)
				assert.InDelta(t, m, back, 1e-9, "mean anomaly %v", m)
			}
		})
	}
}

func TestEllipticAnomalyIsUnwrapped(t *testing.T) {
	o := New(0.4, au, 0, 0, 0, 0, muSun)

	// Shifting the mean anomaly by a whole turn shifts the eccentric
	// anomaly by the same turn, keeping E continuous in time.
	e0 := o.EccentricAnomalyAtMeanAnomaly(1.2)
	e1 := o.EccentricAnomalyAtMeanAnomaly(1.2 + 2*math.Pi)
	e2 := o.EccentricAnomalyAtMeanAnomaly(1.2 - 6*math.Pi)

	assert.InDelta(t, e0+2*math.Pi, e1, 1e-9)
	assert.InDelta(t, e0-6*math.Pi, e2, 1e-9)
}

func TestTrueAnomalyRoundTrip(t *testing.T) {
	for _, e := range []float64{0.2, 0.9, 1, 1.5} {
		o := New(e, au, 0, 0, 0, 0, muSun)
		for _, nu := range []float64{-2.5, -1, -0.2, 0, 0.3, 1.1, 2.2} {
			if e >= 1 && math.Abs(nu) > 2 {
				continue // outside the asymptote for open orbits
			}
			ecc := o.EccentricAnomalyAtTrueAnomaly(nu)
			back := o.TrueAnomalyAtEccentricAnomaly(ecc)
			assert.InDelta(t, nu, back, 1e-9, "e=%v nu=%v", e, nu)
		}
	}
}

func TestPositionAtPeriapsis(t *testing.T) {
	for _, e := range []float64{0, 0.6, 1, 2.5} {
		o := New(e, au, 0, 0, 0, 0, muSun)
		pos := o.PositionAtEccentricAnomaly(0)

		assert.InDelta(t, au, pos.X, au*1e-12, "e=%v", e)
		assert.InDelta(t, 0, pos.Y, 1e-3, "e=%v", e)
		assert.InDelta(t, 0, pos.Z, 1e-3, "e=%v", e)
	}
}

func TestVisVivaHolds(t *testing.T) {
	// The specific orbital energy v^2/2 - mu/r must stay constant along the
	// trajectory and equal -mu/2a for closed orbits.
	for _, e := range []float64{0.1, 0.8, 1.6} {
		o := New(e, au, 0.3, 1.1, 2.0, 0.4, muSun)

		var want float64
		if e == 1 {
			want = 0
		} else {
			want = -o.mu / (2 * o.SemiMajorAxis())
		}

		for _, tt := range []float64{0, 1e5, 1e6, 5e6} {
			pos, vel := o.StateVectorsAtTime(tt)
			got := vel.LengthSquared()/2 - o.mu/pos.Length()
			assert.InDelta(t, want, got, math.Abs(want)*1e-9+1e-3, "e=%v t=%v", e, tt)
		}
	}
}

func TestVelocityMatchesFiniteDifference(t *testing.T) {
	for _, e := range []float64{0.2, 1, 1.8} {
		o := New(e, au, 0.5, 0.7, 1.3, 0.2, muSun)

		const t0, h = 2e5, 1.0
		before := o.PositionAtTime(t0 - h)
		after := o.PositionAtTime(t0 + h)
		numeric := after.Sub(before).Scale(1 / (2 * h))
		vel := o.VelocityAtTime(t0)

		assert.InDelta(t, numeric.X, vel.X, math.Abs(vel.X)*1e-5+1e-2, "e=%v", e)
		assert.InDelta(t, numeric.Y, vel.Y, math.Abs(vel.Y)*1e-5+1e-2, "e=%v", e)
		assert.InDelta(t, numeric.Z, vel.Z, math.Abs(vel.Z)*1e-5+1e-2, "e=%v", e)
	}
}

func TestTransformationBasisColumnsAreOrthonormal(t *testing.T) {
	o := New(0.3, au, 0.9, 2.2, 4.1, 0, muSun)
	b := o.TransformationBasis()

	p := geom.Vec3{X: b.E11, Y: b.E21, Z: b.E31}
	q := geom.Vec3{X: b.E12, Y: b.E22, Z: b.E32}

	assert.InDelta(t, 1, p.Length(), 1e-12)
	assert.InDelta(t, 1, q.Length(), 1e-12)
	assert.InDelta(t, 0, p.Dot(q), 1e-12)
}

func TestSetMuKeepElements(t *testing.T) {
	o := New(0.4, au, 0.2, 0.3, 0.4, 1.5, muSun)
	o.SetGravitationalParameter(muSun*2, KeepElements())

	assert.Equal(t, muSun*2, o.GravitationalParameter())
	assert.Equal(t, 0.4, o.Eccentricity())
	assert.Equal(t, au, o.Periapsis())
	assert.Equal(t, 1.5, o.MeanAnomalyAtEpoch())
}

func TestSetMuKeepPosition(t *testing.T) {
	const at = 3.7e6

	for _, e := range []float64{0, 0.5, 1, 2} {
		o := New(e, au, 0.4, 1.2, 0.8, 0.6, muSun)
		before := o.PositionAtTime(at)

		o.SetGravitationalParameter(muSun*3, KeepPositionAtTime(at))
		after := o.PositionAtTime(at)

		assert.InDelta(t, before.X, after.X, au*1e-9, "e=%v", e)
		assert.InDelta(t, before.Y, after.Y, au*1e-9, "e=%v", e)
		assert.InDelta(t, before.Z, after.Z, au*1e-9, "e=%v", e)

		// Shape elements are untouched in this mode.
		assert.Equal(t, e, o.Eccentricity())
		assert.Equal(t, au, o.Periapsis())
	}
}

func TestSetMuKeepStateVectors(t *testing.T) {
	const at = 1.9e6

	for _, e := range []float64{0.3, 0.9, 1.6} {
		o := New(e, au, 0.7, 2.1, 5.5, 0.3, muSun)
		posBefore, velBefore := o.StateVectorsAtTime(at)

		o.SetGravitationalParameter(muSun/2, KeepStateVectorsAtTime(at))
		posAfter, velAfter := o.StateVectorsAtTime(at)

		assert.InDelta(t, posBefore.X, posAfter.X, au*1e-8, "e=%v", e)
		assert.InDelta(t, posBefore.Y, posAfter.Y, au*1e-8, "e=%v", e)
		assert.InDelta(t, posBefore.Z, posAfter.Z, au*1e-8, "e=%v", e)

		vScale := velBefore.Length()
		assert.InDelta(t, velBefore.X, velAfter.X, vScale*1e-8, "e=%v", e)
		assert.InDelta(t, velBefore.Y, velAfter.Y, vScale*1e-8, "e=%v", e)
		assert.InDelta(t, velBefore.Z, velAfter.Z, vScale*1e-8, "e=%v", e)
	}
}

func TestSetMuKeepStateVectorsChangesRegime(t *testing.T) {
	// Halving mu at fixed state vectors can push a bound orbit past escape
	// velocity; the recovered elements must land in the hyperbolic regime.
	o := New(0.9, au, 0, 0, 0, 0, muSun)
	_, vel := o.StateVectorsAtTime(0)
	vPeri := vel.Length()

	// v_escape^2 = 2 mu / r. Pick mu' so that vPeri exceeds escape.
	muNew := au * vPeri * vPeri / 4
	require.Less(t, 2*muNew/au, vPeri*vPeri)

	posBefore := o.PositionAtTime(0)
	o.SetGravitationalParameter(muNew, KeepStateVectorsAtTime(0))

	assert.Greater(t, o.Eccentricity(), 1.0)
	posAfter := o.PositionAtTime(0)
	assert.InDelta(t, posBefore.X, posAfter.X, au*1e-8)
	assert.InDelta(t, posBefore.Y, posAfter.Y, au*1e-8)
}

func TestCircularOrbitSpeed(t *testing.T) {
	const r = 7e6
	o := NewCircular(r, muEarth)

	_, vel := o.StateVectorsAtTime(0)
	assert.InEpsilon(t, math.Sqrt(muEarth/r), vel.Length(), 1e-9)
}

func TestClone(t *testing.T) {
	o := New(0.2, au, 0.1, 0.2, 0.3, 0.4, muSun)
	c := o.Clone()

	require.NotSame(t, o, c)
	assert.Equal(t, *o, *c)

	c.SetEccentricity(0.9)
	assert.Equal(t, 0.2, o.Eccentricity())

	var nilOrbit *Orbit
	assert.Nil(t, nilOrbit.Clone())
}
