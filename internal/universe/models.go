// Package universe implements the hierarchical body forest at the heart of
// the simulation: structural mutation (add, remove, duplicate, move), time
// advance, absolute position resolution, gravitational-parameter
// synchronization policies, and sphere-of-influence queries.
package universe

import (
	"orbitarium-server/internal/orbit"
)

// ID identifies a body within a Universe. Ids are assigned monotonically,
// never reused within a session, and wrap on overflow.
type ID uint64

// Color is a display color with channels in [0, 1]. It has no physical
// meaning.
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

// Body holds a single celestial object's physical and visual properties.
// Mass is in kilograms and must stay positive for the orbit math to be
// meaningful; radius is in meters. Orbit is nil for bodies that sit at
// their parent's position (or at the origin for roots).
type Body struct {
	Name   string       `json:"name"`
	Mass   float64      `json:"mass"`
	Radius float64      `json:"radius"`
	Color  Color        `json:"color"`
	Orbit  *orbit.Orbit `json:"-"`
}

// Clone returns a deep copy of the body, including its orbit.
func (b *Body) Clone() *Body {
	clone := *b
	clone.Orbit = b.Orbit.Clone()
	return &clone
}

// BodyRelation records a body's place in the forest. Satellites are ordered;
// the order determines sibling ordering in the UI and in next/prev cycling.
type BodyRelation struct {
	Parent     *ID  `json:"parent,omitempty"`
	Satellites []ID `json:"satellites"`
}

// BodyWrapper pairs a body with its forest relations. The Universe owns all
// wrappers; callers hold them only transiently, by id lookup.
type BodyWrapper struct {
	Body      *Body
	Relations BodyRelation
}

// RemovedBody is one entry of the flat subtree listing returned by
// RemoveBody.
type RemovedBody struct {
	ID   ID
	Body *Body
}

func (r *BodyRelation) removeSatellite(id ID) {
	for i, sat := range r.Satellites {
		if sat == id {
			r.Satellites = append(r.Satellites[:i], r.Satellites[i+1:]...)
			return
		}
	}
}
