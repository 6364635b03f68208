package universe

import (
	"math"

	apperrors "orbitarium-server/internal/shared/errors"

	"orbitarium-server/internal/geom"
)

// GetBodyPosition resolves a body's absolute position at the current
// simulation time by summing its parent-relative orbit displacement up the
// ancestor chain. A missing ancestor contributes the origin rather than
// failing the lookup: the tree can be mutated between the moment an id is
// captured and the moment it is resolved, and one stale link must not blank
// the whole frame.
func (u *Universe) GetBodyPosition(id ID) (geom.Vec3, bool) {
	if _, ok := u.bodies[id]; !ok {
		return geom.Zero, false
	}

	pos := geom.Zero
	cur := id
	for {
		wrapper, ok := u.bodies[cur]
		if !ok {
			break
		}
		pos = pos.Add(u.relativePosition(wrapper))
		if wrapper.Relations.Parent == nil {
			break
		}
		cur = *wrapper.Relations.Parent
	}
	return pos, true
}

// GetAllBodyPositions resolves every body's absolute position in one pass,
// memoizing ancestor positions by id so shared chains are evaluated once.
func (u *Universe) GetAllBodyPositions() map[ID]geom.Vec3 {
	memo := make(map[ID]geom.Vec3, len(u.bodies))
	for id := range u.bodies {
		u.memoizedPosition(id, memo)
	}
	return memo
}

func (u *Universe) memoizedPosition(id ID, memo map[ID]geom.Vec3) geom.Vec3 {
	if pos, ok := memo[id]; ok {
		return pos
	}
	wrapper, ok := u.bodies[id]
	if !ok {
		return geom.Zero
	}

	pos := u.relativePosition(wrapper)
	if wrapper.Relations.Parent != nil {
		pos = pos.Add(u.memoizedPosition(*wrapper.Relations.Parent, memo))
	}
	memo[id] = pos
	return pos
}

// relativePosition is the body's displacement from its parent. An orbit is
// only consumed when a parent exists; roots sit at the origin.
func (u *Universe) relativePosition(w *BodyWrapper) geom.Vec3 {
	if w.Body.Orbit == nil || w.Relations.Parent == nil {
		return geom.Zero
	}
	return w.Body.Orbit.PositionAtTime(u.time)
}

// GetSOIRadius returns the body's sphere-of-influence radius under the
// patched-conic approximation a * (m/M)^0.4. Bodies with no parent or no
// orbit have an unbounded sphere of influence (+Inf). A dangling parent id
// is an invariant violation and reported as an error.
func (u *Universe) GetSOIRadius(id ID) (float64, error) {
	wrapper, ok := u.bodies[id]
	if !ok {
		return 0, apperrors.NotFoundf("body %d not found", id)
	}
	if wrapper.Relations.Parent == nil || wrapper.Body.Orbit == nil {
		return math.Inf(1), nil
	}

	parent, ok := u.bodies[*wrapper.Relations.Parent]
	if !ok {
		return 0, apperrors.Internalf("body %d references missing parent %d", id, *wrapper.Relations.Parent)
	}

	a := wrapper.Body.Orbit.SemiMajorAxis()
	return a * math.Pow(wrapper.Body.Mass/parent.Body.Mass, 0.4), nil
}
