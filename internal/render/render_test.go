package render

import (
	"math"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orbitarium-server/internal/geom"
	"orbitarium-server/internal/orbit"
	"orbitarium-server/internal/universe"
)

const testMu = 1.32712440018e20

func TestSelectLOD(t *testing.T) {
	level, ok := SelectLOD(1.2)
	require.True(t, ok)
	assert.Equal(t, 0, level)
	assert.Equal(t, 24, Subdivisions(level))

	level, ok = SelectLOD(0.062)
	require.True(t, ok)
	assert.Equal(t, 3, level)

	// Just under a cutoff falls through to the next level.
	level, ok = SelectLOD(0.0619)
	require.True(t, ok)
	assert.Equal(t, 4, level)

	level, ok = SelectLOD(0.002)
	require.True(t, ok)
	assert.Equal(t, NumLODLevels-1, level)

	_, ok = SelectLOD(0.0019)
	assert.False(t, ok)
}

func TestRadialSize(t *testing.T) {
	assert.Equal(t, 0.02, RadialSize(1, 100))
	// Degenerate distance clamps to the largest cutoff instead of Inf.
	assert.Equal(t, radialSizeCutoffs[0], RadialSize(1, 0))
}

func TestOrbitVisibility(t *testing.T) {
	assert.True(t, OrbitVisible(1e11, 1e13))
	assert.False(t, OrbitVisible(1e11, 1.1e14))
	// Parabolic orbits have an unbounded characteristic radius.
	assert.True(t, OrbitVisible(math.Inf(1), 1e20))
}

func TestTrajectoryPointCount(t *testing.T) {
	assert.Equal(t, MinTrajectoryPoints, TrajectoryPointCount(0))
	assert.Equal(t, MaxTrajectoryPoints, TrajectoryPointCount(10))

	mid := TrajectoryPointCount(0.05)
	assert.Greater(t, mid, MinTrajectoryPoints)
	assert.Less(t, mid, MaxTrajectoryPoints)
}

func TestTrajectoryPointCountUnboundedOrbit(t *testing.T) {
	// A parabola's characteristic radius is +Inf: the budget saturates at
	// the maximum instead of overflowing the int conversion.
	assert.Equal(t, MaxTrajectoryPoints, TrajectoryPointCount(math.Inf(1)))
	assert.Equal(t, MaxTrajectoryPoints, TrajectoryPointCount(math.MaxFloat64))

	// Continuous across the e = 1 boundary: a near-parabolic ellipse and a
	// parabola at the same distance get the same budget.
	nearParabolic := orbit.New(0.999999, 1e11, 0, 0, 0, 0, testMu)
	size := RadialSize(math.Abs(nearParabolic.SemiMajorAxis()), 1e12)
	assert.Equal(t, MaxTrajectoryPoints, TrajectoryPointCount(size))

	parabolic := orbit.New(1, 1e11, 0, 0, 0, 0, testMu)
	size = RadialSize(math.Abs(parabolic.SemiMajorAxis()), 1e12)
	assert.Equal(t, MaxTrajectoryPoints, TrajectoryPointCount(size))
}

func TestVisibleAnomalyRangeEllipse(t *testing.T) {
	// Closed orbits always draw the full loop, whatever the anomaly.
	for _, anomaly := range []float32{0, 1, 9, 50} {
		assert.Equal(t, float32(2*math32.Pi), VisibleAnomalyRange(0.5, anomaly))
		assert.Equal(t, float32(2*math32.Pi), VisibleAnomalyRange(0.999999, anomaly))
	}
}

func TestVisibleAnomalyRangeOpenOrbits(t *testing.T) {
	// Widest at periapsis, shrinking as a bell curve of anomaly magnitude.
	assert.Equal(t, float32(30), VisibleAnomalyRange(1, 0))
	assert.Equal(t, float32(30), VisibleAnomalyRange(1.8, 0))

	atTwo := VisibleAnomalyRange(1.5, 2)
	assert.InDelta(t, 30*math.Pow(2, -0.6), float64(atTwo), 1e-4)
	assert.Less(t, VisibleAnomalyRange(1.5, 3), atTwo)

	// Symmetric in the anomaly's sign.
	assert.Equal(t, VisibleAnomalyRange(1.5, -2), atTwo)

	// Collapses to exactly zero at the renderable limit.
	assert.Equal(t, float32(0), VisibleAnomalyRange(1.5, 10))
	assert.Equal(t, float32(0), VisibleAnomalyRange(1.5, -10))
	assert.Equal(t, float32(0), VisibleAnomalyRange(1.5, 42))
}

func TestTrajectoryTopology(t *testing.T) {
	ellipse := orbit.New(0.3, 1e11, 0, 0, 0, 0, testMu)
	tr := NewTrajectory(ellipse, 0, geom.Zero, 8, 1)

	require.True(t, tr.Closed)
	assert.Equal(t, 8, tr.PointCount)
	assert.Equal(t, 8, tr.Segments())
	require.Len(t, tr.Indices, 8*6)
	// The final segment wraps back to the first vertex pair.
	last := tr.Indices[len(tr.Indices)-6:]
	assert.Equal(t, []uint32{14, 15, 0, 0, 15, 1}, last)

	hyper := orbit.New(1.4, 1e11, 0, 0, 0, 0, testMu)
	tr = NewTrajectory(hyper, 0, geom.Zero, 8, 1)

	require.False(t, tr.Closed)
	assert.Equal(t, 7, tr.Segments())
	require.Len(t, tr.Indices, 7*6)
	assert.Equal(t, []uint32{0, 1, 2, 2, 1, 3}, tr.Indices[:6])
	last = tr.Indices[len(tr.Indices)-6:]
	assert.Equal(t, []uint32{12, 13, 14, 14, 13, 15}, last)
}

func TestTrajectoryPointCountFloor(t *testing.T) {
	ellipse := orbit.New(0.1, 1e11, 0, 0, 0, 0, testMu)
	tr := NewTrajectory(ellipse, 0, geom.Zero, 1, 1)
	assert.Equal(t, 3, tr.PointCount)
}

func TestUpdateFromOrbitTopologySwitch(t *testing.T) {
	o := orbit.New(0.999999, 1e11, 0, 0, 0, 0, testMu)
	tr := NewTrajectory(o, 0, geom.Zero, 16, 1)
	require.True(t, tr.Closed)
	closedIndices := append([]uint32(nil), tr.Indices...)

	// Continuous parameter drift below the boundary keeps the topology.
	o.SetEccentricity(0.9)
	tr.UpdateFromOrbit(o, 0.5, geom.Zero)
	assert.True(t, tr.Closed)
	assert.Equal(t, closedIndices, tr.Indices)

	// Crossing e = 1 switches to open topology and back.
	o.SetEccentricity(1.0)
	tr.UpdateFromOrbit(o, 0, geom.Zero)
	assert.False(t, tr.Closed)
	assert.Len(t, tr.Indices, (tr.PointCount-1)*6)

	o.SetEccentricity(0.5)
	tr.UpdateFromOrbit(o, 0, geom.Zero)
	assert.True(t, tr.Closed)
	assert.Equal(t, closedIndices, tr.Indices)
}

func TestTrajectoryWindowCenteredOnAnomaly(t *testing.T) {
	hyper := orbit.New(2, 1e11, 0, 0, 0, 0, testMu)
	tr := NewTrajectory(hyper, 1.5, geom.Zero, 32, 1)

	assert.InDelta(t, float64(tr.AnomalyStart+tr.AnomalyRange/2), 1.5, 1e-4)

	// Elliptic windows wrap the stored anomaly into one turn.
	ellipse := orbit.New(0.2, 1e11, 0, 0, 0, 0, testMu)
	tr = NewTrajectory(ellipse, 5*2*math.Pi+1.0, geom.Zero, 32, 1)
	center := tr.AnomalyStart + tr.AnomalyRange/2
	assert.InDelta(t, 1.0, float64(center), 1e-4)
	assert.Equal(t, float32(2*math32.Pi), tr.AnomalyRange)
}

func TestBuildScene(t *testing.T) {
	u := universe.New()
	sunID, err := u.AddBody(&universe.Body{Name: "Sun", Mass: 1.989e30, Radius: 6.957e8}, nil)
	require.NoError(t, err)
	earthID, err := u.AddBody(&universe.Body{
		Name: "Earth", Mass: 5.972e24, Radius: 6.371e6,
		Orbit: orbit.New(0.0167, 1.47e11, 0, 0, 0, 0, 1),
	}, &sunID)
	require.NoError(t, err)

	positions := u.GetAllBodyPositions()

	// Camera near Earth: Earth gets a detailed mesh, its orbit is a
	// sub-pixel path at this distance ratio is irrelevant since the focus
	// (the Sun) is ~1 AU away and the orbit radius is ~1 AU as well.
	earthPos := positions[earthID]
	camera := earthPos.Add(geom.Vec3{X: 1e7})
	scene := BuildScene(u, positions, camera, 2)

	var earthLevel = -1
	for level, bucket := range scene.LODBuckets {
		for _, inst := range bucket {
			if inst.ID == earthID {
				earthLevel = level
			}
		}
	}
	require.NotEqual(t, -1, earthLevel, "Earth must be rendered")
	assert.Equal(t, 0, earthLevel)

	require.Len(t, scene.Trajectories, 1)
	tr := scene.Trajectories[0]
	assert.True(t, tr.Closed)
	assert.GreaterOrEqual(t, tr.PointCount, MinTrajectoryPoints)

	// From very far away everything drops out.
	scene = BuildScene(u, positions, geom.Vec3{X: 1e16}, 2)
	for _, bucket := range scene.LODBuckets {
		assert.Empty(t, bucket)
	}
	assert.Empty(t, scene.Trajectories)
}
