package universe

import (
	apperrors "orbitarium-server/internal/shared/errors"

	"orbitarium-server/internal/orbit"
)

// MuPolicy names how a gravitational-parameter change propagates into a
// dependent orbit's elements.
type MuPolicy string

const (
	// KeepElements overwrites mu and leaves every other element alone;
	// position and velocity at the current time jump.
	KeepElements MuPolicy = "keep_elements"
	// KeepPosition preserves the body's position at the current time;
	// velocity may jump.
	KeepPosition MuPolicy = "keep_position"
	// KeepStateVectors preserves both position and velocity at the current
	// time, recomputing the shape and orientation elements.
	KeepStateVectors MuPolicy = "keep_state_vectors"
)

// ParseMuPolicy validates a policy name from the API surface.
func ParseMuPolicy(s string) (MuPolicy, error) {
	switch MuPolicy(s) {
	case KeepElements, KeepPosition, KeepStateVectors:
		return MuPolicy(s), nil
	default:
		return "", apperrors.Validationf("unknown mu policy %q", s)
	}
}

// Description returns the user-facing tradeoff summary for a policy.
func (p MuPolicy) Description() string {
	switch p {
	case KeepPosition:
		return "preserve position at the current time, velocity may jump"
	case KeepStateVectors:
		return "preserve position and velocity, orbit shape is recomputed"
	default:
		return "preserve orbital elements, position and velocity jump"
	}
}

// Mode binds the policy to a moment in time, producing the setter mode the
// orbit layer consumes.
func (p MuPolicy) Mode(t float64) orbit.MuSetterMode {
	switch p {
	case KeepPosition:
		return orbit.KeepPositionAtTime(t)
	case KeepStateVectors:
		return orbit.KeepStateVectorsAtTime(t)
	default:
		return orbit.KeepElements()
	}
}

// SetGravitationalConstant replaces g and resynchronizes every dependent
// orbit under the given policy.
func (u *Universe) SetGravitationalConstant(g float64, policy MuPolicy) {
	u.g = g
	u.UpdateAllGravitationalParameters(policy)
}

type muChange struct {
	id    ID
	newMu float64
}

// UpdateAllGravitationalParameters recomputes mu = g * parent mass for every
// body with both a parent and an orbit. Bodies whose mu already matches are
// skipped: the position- and state-vector-preserving policies re-derive
// elements, which is lossy to do for a no-op.
//
// Changes are staged before any orbit is written so no reader within the
// pass observes a half-updated forest.
func (u *Universe) UpdateAllGravitationalParameters(policy MuPolicy) {
	var changes []muChange
	for _, id := range u.SortedIDs() {
		if change, ok := u.stagedMuChange(id); ok {
			changes = append(changes, change)
		}
	}
	u.applyMuChanges(changes, policy)
}

// UpdateChildrenGravitationalParameters is the scoped variant covering one
// parent's direct satellites, used after a single body's mass is edited.
func (u *Universe) UpdateChildrenGravitationalParameters(parentID ID, policy MuPolicy) error {
	parent, ok := u.bodies[parentID]
	if !ok {
		return apperrors.NotFoundf("body %d not found", parentID)
	}

	var changes []muChange
	for _, satID := range parent.Relations.Satellites {
		if change, ok := u.stagedMuChange(satID); ok {
			changes = append(changes, change)
		}
	}
	u.applyMuChanges(changes, policy)
	return nil
}

func (u *Universe) stagedMuChange(id ID) (muChange, bool) {
	wrapper, ok := u.bodies[id]
	if !ok || wrapper.Body.Orbit == nil || wrapper.Relations.Parent == nil {
		return muChange{}, false
	}
	parent, ok := u.bodies[*wrapper.Relations.Parent]
	if !ok {
		return muChange{}, false
	}

	newMu := u.g * parent.Body.Mass
	if newMu == wrapper.Body.Orbit.GravitationalParameter() {
		return muChange{}, false
	}
	return muChange{id: id, newMu: newMu}, true
}

func (u *Universe) applyMuChanges(changes []muChange, policy MuPolicy) {
	mode := policy.Mode(u.time)
	for _, change := range changes {
		if wrapper, ok := u.bodies[change.id]; ok && wrapper.Body.Orbit != nil {
			wrapper.Body.Orbit.SetGravitationalParameter(change.newMu, mode)
		}
	}
}

// MoveBody re-parents a body. A nil newParent detaches the body into a new
// root and clears its orbit. Moving a body onto itself or onto one of its
// own descendants fails; moving it onto its current parent is a no-op.
// When the body keeps an orbit, its mu is reassigned against the new parent
// under the given policy.
func (u *Universe) MoveBody(id ID, newParentID *ID, policy MuPolicy) error {
	wrapper, ok := u.bodies[id]
	if !ok {
		return apperrors.NotFoundf("body %d not found", id)
	}

	if newParentID != nil {
		if *newParentID == id {
			return apperrors.Validation("cannot move a body onto itself")
		}
		newParent, ok := u.bodies[*newParentID]
		if !ok {
			return apperrors.NotFoundf("parent body %d not found", *newParentID)
		}
		if u.IsDescendantOf(*newParentID, id) {
			return apperrors.Validation("cannot move a body onto its own descendant")
		}
		if wrapper.Relations.Parent != nil && *wrapper.Relations.Parent == *newParentID {
			return nil
		}

		u.detachFromParent(id, wrapper)
		wrapper.Relations.Parent = copyID(newParentID)
		newParent.Relations.Satellites = append(newParent.Relations.Satellites, id)

		if wrapper.Body.Orbit != nil {
			wrapper.Body.Orbit.SetGravitationalParameter(u.g*newParent.Body.Mass, policy.Mode(u.time))
		}
		return nil
	}

	if wrapper.Relations.Parent == nil {
		return nil
	}
	u.detachFromParent(id, wrapper)
	wrapper.Relations.Parent = nil
	wrapper.Body.Orbit = nil
	return nil
}

func (u *Universe) detachFromParent(id ID, wrapper *BodyWrapper) {
	if wrapper.Relations.Parent == nil {
		return
	}
	if parent, ok := u.bodies[*wrapper.Relations.Parent]; ok {
		parent.Relations.removeSatellite(id)
	}
}

// ReorderBody moves a body one slot earlier (delta -1) or later (delta +1)
// among its siblings. Already-first and already-last are no-ops.
func (u *Universe) ReorderBody(id ID, delta int) error {
	wrapper, ok := u.bodies[id]
	if !ok {
		return apperrors.NotFoundf("body %d not found", id)
	}
	if wrapper.Relations.Parent == nil {
		return apperrors.Validation("root bodies have no sibling order")
	}
	parent, ok := u.bodies[*wrapper.Relations.Parent]
	if !ok {
		return apperrors.Internalf("body %d references missing parent %d", id, *wrapper.Relations.Parent)
	}

	sats := parent.Relations.Satellites
	for i, satID := range sats {
		if satID != id {
			continue
		}
		j := i + delta
		if j < 0 || j >= len(sats) {
			return nil
		}
		sats[i], sats[j] = sats[j], sats[i]
		return nil
	}
	return apperrors.Internalf("body %d missing from parent %d satellite list", id, *wrapper.Relations.Parent)
}
