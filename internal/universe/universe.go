package universe

import (
	"sort"

	apperrors "orbitarium-server/internal/shared/errors"

	"orbitarium-server/internal/orbit"
)

// DefaultG is the CODATA gravitational constant in m^3 kg^-1 s^-2.
const DefaultG = 6.6743e-11

// Universe owns a forest of bodies keyed by stable ids, plus the global
// simulation time and gravitational constant. It is not safe for concurrent
// use; the service layer serializes access.
type Universe struct {
	bodies map[ID]*BodyWrapper
	nextID ID
	time   float64
	g      float64
}

func New() *Universe {
	return &Universe{
		bodies: make(map[ID]*BodyWrapper),
		g:      DefaultG,
	}
}

func (u *Universe) Time() float64     { return u.time }
func (u *Universe) SetTime(t float64) { u.time = t }
func (u *Universe) G() float64        { return u.g }
func (u *Universe) BodyCount() int    { return len(u.bodies) }

// Tick advances simulation time. Negative dt rewinds; the orbit math is
// parametric in time so any real value is valid.
func (u *Universe) Tick(dt float64) {
	u.time += dt
}

// GetBody returns the wrapper for id, or nil if the body no longer exists.
// Absence is a normal condition: bodies can vanish between UI frames.
func (u *Universe) GetBody(id ID) *BodyWrapper {
	return u.bodies[id]
}

// GetBodyIDWithName returns the id of the first body whose name matches.
// Which match wins on name collisions is unspecified.
func (u *Universe) GetBodyIDWithName(name string) (ID, bool) {
	for _, id := range u.SortedIDs() {
		if u.bodies[id].Body.Name == name {
			return id, true
		}
	}
	return 0, false
}

// SortedIDs returns every body id in ascending order. The bodies map has
// unspecified iteration order; handlers and traversal need a stable one.
func (u *Universe) SortedIDs() []ID {
	ids := make([]ID, 0, len(u.bodies))
	for id := range u.bodies {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Roots returns the ids of all parentless bodies in ascending order.
func (u *Universe) Roots() []ID {
	var roots []ID
	for _, id := range u.SortedIDs() {
		if u.bodies[id].Relations.Parent == nil {
			roots = append(roots, id)
		}
	}
	return roots
}

// AddBody inserts a body under the given parent (nil for a new root) and
// returns its fresh id.
//
// If the parent id is not found, nothing is mutated: the id counter does not
// advance and a later add yields the same id the failed call would have.
// When the parent exists and the body carries an orbit, the orbit's mu is
// set to g * parent mass under KeepElements: a newly created body has no
// prior trajectory worth preserving.
func (u *Universe) AddBody(body *Body, parentID *ID) (ID, error) {
	if parentID != nil {
		parent, ok := u.bodies[*parentID]
		if !ok {
			return 0, apperrors.NotFoundf("parent body %d not found", *parentID)
		}
		if body.Orbit != nil {
			body.Orbit.SetGravitationalParameter(u.g*parent.Body.Mass, orbit.KeepElements())
		}
	}

	id := u.nextID
	u.nextID++ // wraps on overflow

	u.bodies[id] = &BodyWrapper{
		Body:      body,
		Relations: BodyRelation{Parent: copyID(parentID)},
	}
	if parentID != nil {
		parent := u.bodies[*parentID]
		parent.Relations.Satellites = append(parent.Relations.Satellites, id)
	}

	return id, nil
}

// RemoveBody removes the body and its entire subtree, returning the removed
// (id, body) pairs in pre-order with the subtree root first. An absent id
// yields an empty result, not an error.
func (u *Universe) RemoveBody(id ID) []RemovedBody {
	root, ok := u.bodies[id]
	if !ok {
		return nil
	}

	// Only the subtree root is attached to a surviving parent.
	if root.Relations.Parent != nil {
		if parent, ok := u.bodies[*root.Relations.Parent]; ok {
			parent.Relations.removeSatellite(id)
		}
	}

	var removed []RemovedBody
	stack := []ID{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		wrapper, ok := u.bodies[cur]
		if !ok {
			continue
		}
		delete(u.bodies, cur)
		removed = append(removed, RemovedBody{ID: cur, Body: wrapper.Body})

		// Push satellites in reverse so they pop in order.
		sats := wrapper.Relations.Satellites
		for i := len(sats) - 1; i >= 0; i-- {
			stack = append(stack, sats[i])
		}
	}

	return removed
}

// DuplicateBody deep-copies the subtree rooted at id and attaches the copy
// under the original's parent, as a sibling of the original. Roots cannot be
// duplicated since there is no parent to attach the copy to.
func (u *Universe) DuplicateBody(id ID) (ID, error) {
	original, ok := u.bodies[id]
	if !ok {
		return 0, apperrors.NotFoundf("body %d not found", id)
	}
	if original.Relations.Parent == nil {
		return 0, apperrors.Validation("cannot duplicate a root body")
	}

	type pending struct {
		sourceID  ID
		newParent ID
	}

	newRootID, err := u.AddBody(original.Body.Clone(), original.Relations.Parent)
	if err != nil {
		return 0, err
	}

	queue := make([]pending, 0, len(original.Relations.Satellites))
	for _, satID := range original.Relations.Satellites {
		queue = append(queue, pending{sourceID: satID, newParent: newRootID})
	}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		source, ok := u.bodies[item.sourceID]
		if !ok {
			continue
		}
		parentID := item.newParent
		newID, err := u.AddBody(source.Body.Clone(), &parentID)
		if err != nil {
			return 0, err
		}
		for _, satID := range source.Relations.Satellites {
			queue = append(queue, pending{sourceID: satID, newParent: newID})
		}
	}

	return newRootID, nil
}

// IsDescendantOf reports whether id lies in the subtree rooted at ancestor
// (a body is not its own descendant).
func (u *Universe) IsDescendantOf(id, ancestor ID) bool {
	wrapper, ok := u.bodies[id]
	if !ok {
		return false
	}
	for wrapper.Relations.Parent != nil {
		parentID := *wrapper.Relations.Parent
		if parentID == ancestor {
			return true
		}
		wrapper, ok = u.bodies[parentID]
		if !ok {
			return false
		}
	}
	return false
}

// Descendants returns the ids of the subtree rooted at id, in pre-order
// with id itself first. An absent id yields nil.
func (u *Universe) Descendants(id ID) []ID {
	if _, ok := u.bodies[id]; !ok {
		return nil
	}

	var out []ID
	stack := []ID{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		wrapper, ok := u.bodies[cur]
		if !ok {
			continue
		}
		out = append(out, cur)
		sats := wrapper.Relations.Satellites
		for i := len(sats) - 1; i >= 0; i-- {
			stack = append(stack, sats[i])
		}
	}
	return out
}

func copyID(id *ID) *ID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
