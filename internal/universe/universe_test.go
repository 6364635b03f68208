package universe

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orbitarium-server/internal/orbit"
)

const (
	sunMass   = 1.989e30
	earthMass = 5.972e24
)

func newBody(name string, mass float64, o *orbit.Orbit) *Body {
	return &Body{Name: name, Mass: mass, Radius: 1e6, Color: Color{R: 1, A: 1}, Orbit: o}
}

// buildSystem returns a universe with sun(earth(luna), mars) and the ids in
// that order.
func buildSystem(t *testing.T) (*Universe, ID, ID, ID, ID) {
	t.Helper()
	u := New()

	sunID, err := u.AddBody(newBody("Sun", sunMass, nil), nil)
	require.NoError(t, err)

	earthID, err := u.AddBody(newBody("Earth", earthMass, orbit.New(0.0167, 1.47e11, 0, 0, 0, 0, 1)), &sunID)
	require.NoError(t, err)

	lunaID, err := u.AddBody(newBody("Luna", 7.34e22, orbit.New(0.055, 3.63e8, 0.09, 0, 0, 0, 1)), &earthID)
	require.NoError(t, err)

	marsID, err := u.AddBody(newBody("Mars", 6.42e23, orbit.New(0.0934, 2.07e11, 0.03, 0, 0, 1.2, 1)), &sunID)
	require.NoError(t, err)

	return u, sunID, earthID, lunaID, marsID
}

func TestAddBodySetsMuFromParent(t *testing.T) {
	u, _, earthID, lunaID, _ := buildSystem(t)

	earth := u.GetBody(earthID)
	require.NotNil(t, earth)
	assert.Equal(t, u.G()*sunMass, earth.Body.Orbit.GravitationalParameter())

	luna := u.GetBody(lunaID)
	assert.Equal(t, u.G()*earthMass, luna.Body.Orbit.GravitationalParameter())
}

func TestAddBodyMissingParentDoesNotAdvanceID(t *testing.T) {
	u, _, _, _, _ := buildSystem(t)

	missing := ID(9999)
	_, err := u.AddBody(newBody("Ghost", 1, nil), &missing)
	require.Error(t, err)

	// Failure must be idempotent: the next successful add yields the id the
	// failed call would have produced.
	id, err := u.AddBody(newBody("Ceres", 9.4e20, nil), nil)
	require.NoError(t, err)
	assert.Equal(t, ID(4), id)
}

func TestRemoveBodyCascades(t *testing.T) {
	u, sunID, earthID, lunaID, marsID := buildSystem(t)

	removed := u.RemoveBody(earthID)
	require.Len(t, removed, 2)
	// Pre-order, subtree root first.
	assert.Equal(t, earthID, removed[0].ID)
	assert.Equal(t, lunaID, removed[1].ID)

	assert.Nil(t, u.GetBody(earthID))
	assert.Nil(t, u.GetBody(lunaID))

	sun := u.GetBody(sunID)
	assert.NotContains(t, sun.Relations.Satellites, earthID)
	assert.Contains(t, sun.Relations.Satellites, marsID)
}

func TestRemoveBodyAbsentIsNoOp(t *testing.T) {
	u, _, _, _, _ := buildSystem(t)
	assert.Empty(t, u.RemoveBody(ID(12345)))
	assert.Equal(t, 4, u.BodyCount())
}

func TestRemoveRootEmptiesUniverse(t *testing.T) {
	u, sunID, _, _, _ := buildSystem(t)

	removed := u.RemoveBody(sunID)
	assert.Len(t, removed, 4)
	assert.Equal(t, sunID, removed[0].ID)
	assert.Equal(t, 0, u.BodyCount())
}

func TestDuplicateBody(t *testing.T) {
	u, sunID, earthID, _, _ := buildSystem(t)

	cloneID, err := u.DuplicateBody(earthID)
	require.NoError(t, err)
	require.NotEqual(t, earthID, cloneID)

	clone := u.GetBody(cloneID)
	require.NotNil(t, clone)
	require.NotNil(t, clone.Relations.Parent)
	assert.Equal(t, sunID, *clone.Relations.Parent)
	assert.Contains(t, u.GetBody(sunID).Relations.Satellites, cloneID)

	// Deep copy: same subtree size, fresh ids, independent bodies.
	assert.Len(t, clone.Relations.Satellites, 1)
	assert.Equal(t, 6, u.BodyCount())

	clone.Body.Name = "Earth 2"
	assert.Equal(t, "Earth", u.GetBody(earthID).Body.Name)
}

func TestDuplicateRootFails(t *testing.T) {
	u, sunID, _, _, _ := buildSystem(t)
	_, err := u.DuplicateBody(sunID)
	assert.Error(t, err)

	_, err = u.DuplicateBody(ID(777))
	assert.Error(t, err)
}

func TestBatchPositionsMatchDirect(t *testing.T) {
	u, _, _, _, _ := buildSystem(t)

	for _, tm := range []float64{0, 3.1e7, -8.6e6} {
		u.SetTime(tm)
		batch := u.GetAllBodyPositions()
		require.Len(t, batch, u.BodyCount())

		for _, id := range u.SortedIDs() {
			direct, ok := u.GetBodyPosition(id)
			require.True(t, ok)
			assert.Equal(t, direct, batch[id], "body %d at t=%v", id, tm)
		}
	}
}

func TestRootsSitAtOrigin(t *testing.T) {
	u, sunID, _, _, _ := buildSystem(t)
	u.SetTime(5e6)

	pos, ok := u.GetBodyPosition(sunID)
	require.True(t, ok)
	assert.Equal(t, 0.0, pos.Length())

	_, ok = u.GetBodyPosition(ID(4242))
	assert.False(t, ok)
}

func TestSOIRadius(t *testing.T) {
	u, sunID, earthID, _, _ := buildSystem(t)

	soi, err := u.GetSOIRadius(sunID)
	require.NoError(t, err)
	assert.True(t, math.IsInf(soi, 1))

	soi, err = u.GetSOIRadius(earthID)
	require.NoError(t, err)
	a := u.GetBody(earthID).Body.Orbit.SemiMajorAxis()
	assert.InEpsilon(t, a*math.Pow(earthMass/sunMass, 0.4), soi, 1e-12)

	_, err = u.GetSOIRadius(ID(31337))
	assert.Error(t, err)
}

func TestUpdateAllGravitationalParameters(t *testing.T) {
	u, sunID, earthID, lunaID, marsID := buildSystem(t)

	earthOrbit := u.GetBody(earthID).Body.Orbit
	eccBefore := earthOrbit.Eccentricity()
	periBefore := earthOrbit.Periapsis()
	m0Before := earthOrbit.MeanAnomalyAtEpoch()

	u.GetBody(sunID).Body.Mass = sunMass * 2
	u.UpdateAllGravitationalParameters(KeepElements)

	assert.Equal(t, u.G()*sunMass*2, earthOrbit.GravitationalParameter())
	assert.Equal(t, u.G()*sunMass*2, u.GetBody(marsID).Body.Orbit.GravitationalParameter())
	// Elements other than mu are untouched under KeepElements.
	assert.Equal(t, eccBefore, earthOrbit.Eccentricity())
	assert.Equal(t, periBefore, earthOrbit.Periapsis())
	assert.Equal(t, m0Before, earthOrbit.MeanAnomalyAtEpoch())

	// Luna's parent mass did not change, so its orbit must be skipped even
	// under the element-rewriting policies.
	lunaOrbit := u.GetBody(lunaID).Body.Orbit
	lunaM0 := lunaOrbit.MeanAnomalyAtEpoch()
	u.SetTime(7.7e6)
	u.UpdateAllGravitationalParameters(KeepStateVectors)
	assert.Equal(t, lunaM0, lunaOrbit.MeanAnomalyAtEpoch())
}

func TestUpdateChildrenGravitationalParameters(t *testing.T) {
	u, _, earthID, lunaID, marsID := buildSystem(t)

	u.GetBody(earthID).Body.Mass = earthMass * 3
	require.NoError(t, u.UpdateChildrenGravitationalParameters(earthID, KeepElements))

	assert.Equal(t, u.G()*earthMass*3, u.GetBody(lunaID).Body.Orbit.GravitationalParameter())
	// Mars is not a child of Earth and keeps its mu.
	assert.Equal(t, u.G()*sunMass, u.GetBody(marsID).Body.Orbit.GravitationalParameter())

	assert.Error(t, u.UpdateChildrenGravitationalParameters(ID(555), KeepElements))
}

func TestSetGravitationalConstant(t *testing.T) {
	u, _, earthID, _, _ := buildSystem(t)

	newG := DefaultG * 10
	u.SetGravitationalConstant(newG, KeepElements)

	assert.Equal(t, newG, u.G())
	assert.Equal(t, newG*sunMass, u.GetBody(earthID).Body.Orbit.GravitationalParameter())
}

func TestKeepPositionPolicyPreservesPosition(t *testing.T) {
	u, sunID, earthID, _, _ := buildSystem(t)
	u.SetTime(2.5e6)

	before, ok := u.GetBodyPosition(earthID)
	require.True(t, ok)

	u.GetBody(sunID).Body.Mass = sunMass / 3
	u.UpdateAllGravitationalParameters(KeepPosition)

	after, ok := u.GetBodyPosition(earthID)
	require.True(t, ok)
	assert.InDelta(t, before.X, after.X, 1e2)
	assert.InDelta(t, before.Y, after.Y, 1e2)
	assert.InDelta(t, before.Z, after.Z, 1e2)
}

func TestMoveBody(t *testing.T) {
	u, sunID, earthID, lunaID, marsID := buildSystem(t)

	// Reparent Luna under Mars; mu rebinds to the new parent.
	require.NoError(t, u.MoveBody(lunaID, &marsID, KeepElements))
	luna := u.GetBody(lunaID)
	assert.Equal(t, marsID, *luna.Relations.Parent)
	assert.NotContains(t, u.GetBody(earthID).Relations.Satellites, lunaID)
	assert.Contains(t, u.GetBody(marsID).Relations.Satellites, lunaID)
	assert.Equal(t, u.G()*u.GetBody(marsID).Body.Mass, luna.Body.Orbit.GravitationalParameter())

	// Cycle checks.
	assert.Error(t, u.MoveBody(earthID, &earthID, KeepElements))
	assert.Error(t, u.MoveBody(sunID, &marsID, KeepElements))

	// Moving onto the current parent is a no-op success.
	require.NoError(t, u.MoveBody(marsID, &sunID, KeepElements))

	// Detaching makes a new root and drops the orbit.
	require.NoError(t, u.MoveBody(marsID, nil, KeepElements))
	mars := u.GetBody(marsID)
	assert.Nil(t, mars.Relations.Parent)
	assert.Nil(t, mars.Body.Orbit)
	assert.NotContains(t, u.GetBody(sunID).Relations.Satellites, marsID)
	assert.Len(t, u.Roots(), 2)
}

func TestReorderBody(t *testing.T) {
	u, sunID, earthID, _, marsID := buildSystem(t)

	sun := u.GetBody(sunID)
	require.Equal(t, []ID{earthID, marsID}, sun.Relations.Satellites)

	require.NoError(t, u.ReorderBody(marsID, -1))
	assert.Equal(t, []ID{marsID, earthID}, sun.Relations.Satellites)

	// Already-first stays put.
	require.NoError(t, u.ReorderBody(marsID, -1))
	assert.Equal(t, []ID{marsID, earthID}, sun.Relations.Satellites)

	assert.Error(t, u.ReorderBody(sunID, 1))
}

func TestDepthFirstTraversal(t *testing.T) {
	u, sunID, earthID, lunaID, marsID := buildSystem(t)

	next, ok := u.NextBodyID(sunID)
	require.True(t, ok)
	assert.Equal(t, earthID, next)

	next, _ = u.NextBodyID(earthID)
	assert.Equal(t, lunaID, next)

	next, _ = u.NextBodyID(lunaID)
	assert.Equal(t, marsID, next)

	// Wraps from last back to the first root.
	next, _ = u.NextBodyID(marsID)
	assert.Equal(t, sunID, next)

	prev, _ := u.PrevBodyID(sunID)
	assert.Equal(t, marsID, prev)

	// Stale focus degrades to the first body.
	first, ok := u.NextBodyID(ID(999))
	require.True(t, ok)
	assert.Equal(t, sunID, first)
}

func TestGetBodyIDWithName(t *testing.T) {
	u, _, earthID, _, _ := buildSystem(t)

	id, ok := u.GetBodyIDWithName("Earth")
	require.True(t, ok)
	assert.Equal(t, earthID, id)

	_, ok = u.GetBodyIDWithName("Nibiru")
	assert.False(t, ok)
}

func TestSnapshotRoundTrip(t *testing.T) {
	u, _, earthID, _, _ := buildSystem(t)
	u.SetTime(1.23e6)

	state := u.Snapshot()
	restored, err := FromState(state)
	require.NoError(t, err)

	assert.Equal(t, u.Time(), restored.Time())
	assert.Equal(t, u.G(), restored.G())
	assert.Equal(t, u.BodyCount(), restored.BodyCount())

	// New adds in the restored universe continue the id sequence.
	id, err := restored.AddBody(newBody("Ceres", 9.4e20, nil), nil)
	require.NoError(t, err)
	assert.Equal(t, ID(4), id)

	orig, _ := u.GetBodyPosition(earthID)
	rest, ok := restored.GetBodyPosition(earthID)
	require.True(t, ok)
	assert.Equal(t, orig, rest)
}

func TestFromStateRejectsBrokenForest(t *testing.T) {
	u, _, earthID, _, _ := buildSystem(t)
	state := u.Snapshot()

	// Drop the parent's satellite entry for Earth.
	for i := range state.Bodies {
		if state.Bodies[i].Parent == nil {
			state.Bodies[i].Satellites = nil
		}
	}
	_, err := FromState(state)
	assert.Error(t, err)

	// Dangling parent reference.
	state = u.Snapshot()
	bogus := ID(4040)
	for i := range state.Bodies {
		if state.Bodies[i].ID == earthID {
			state.Bodies[i].Parent = &bogus
		}
	}
	_, err = FromState(state)
	assert.Error(t, err)
}

func TestFromStateRejectsParentCycle(t *testing.T) {
	// Two bodies naming each other as parent agree bidirectionally but
	// form a cycle with no root; restoring this must fail, not hang the
	// first position lookup.
	a, b := ID(1), ID(2)
	state := &State{
		NextID: 3,
		Bodies: []BodyState{
			{ID: a, Name: "A", Mass: 1, Parent: &b, Satellites: []ID{b}},
			{ID: b, Name: "B", Mass: 1, Parent: &a, Satellites: []ID{a}},
		},
	}

	_, err := FromState(state)
	assert.Error(t, err)
}

func TestDefaultPreset(t *testing.T) {
	u, err := DefaultPreset().Build()
	require.NoError(t, err)

	assert.Equal(t, 17, u.BodyCount())
	require.Len(t, u.Roots(), 1)

	sunID, ok := u.GetBodyIDWithName("Sun")
	require.True(t, ok)
	sun := u.GetBody(sunID)

	earthID, ok := u.GetBodyIDWithName("Earth")
	require.True(t, ok)
	earth := u.GetBody(earthID)
	assert.Equal(t, u.G()*sun.Body.Mass, earth.Body.Orbit.GravitationalParameter())

	lunaID, ok := u.GetBodyIDWithName("Luna")
	require.True(t, ok)
	assert.Equal(t, earthID, *u.GetBody(lunaID).Relations.Parent)

	// Every non-root has an orbit bound to its actual parent's mass.
	for _, id := range u.SortedIDs() {
		w := u.GetBody(id)
		if w.Relations.Parent == nil {
			continue
		}
		parent := u.GetBody(*w.Relations.Parent)
		require.NotNil(t, w.Body.Orbit, "%s", w.Body.Name)
		assert.Equal(t, u.G()*parent.Body.Mass, w.Body.Orbit.GravitationalParameter(), "%s", w.Body.Name)
	}
}
