package universe

import (
	apperrors "orbitarium-server/internal/shared/errors"

	"orbitarium-server/internal/orbit"
)

// OrbitState is the serializable form of an orbit's elements. Angles are
// radians, matching the engine's internal units.
type OrbitState struct {
	Eccentricity       float64 `json:"eccentricity" yaml:"eccentricity"`
	Periapsis          float64 `json:"periapsis" yaml:"periapsis"`
	Inclination        float64 `json:"inclination" yaml:"inclination"`
	ArgPeriapsis       float64 `json:"arg_periapsis" yaml:"arg_periapsis"`
	LongAscNode        float64 `json:"long_asc_node" yaml:"long_asc_node"`
	MeanAnomalyAtEpoch float64 `json:"mean_anomaly_at_epoch" yaml:"mean_anomaly_at_epoch"`
	Mu                 float64 `json:"mu" yaml:"mu"`
}

// NewOrbitState captures an orbit's elements, or nil for a nil orbit.
func NewOrbitState(o *orbit.Orbit) *OrbitState {
	if o == nil {
		return nil
	}
	return &OrbitState{
		Eccentricity:       o.Eccentricity(),
		Periapsis:          o.Periapsis(),
		Inclination:        o.Inclination(),
		ArgPeriapsis:       o.ArgPeriapsis(),
		LongAscNode:        o.LongAscNode(),
		MeanAnomalyAtEpoch: o.MeanAnomalyAtEpoch(),
		Mu:                 o.GravitationalParameter(),
	}
}

// ToOrbit reconstructs the orbit, or nil for a nil state.
func (s *OrbitState) ToOrbit() *orbit.Orbit {
	if s == nil {
		return nil
	}
	return orbit.New(s.Eccentricity, s.Periapsis, s.Inclination,
		s.ArgPeriapsis, s.LongAscNode, s.MeanAnomalyAtEpoch, s.Mu)
}

// BodyState is one serialized body plus its forest relations.
type BodyState struct {
	ID         ID          `json:"id"`
	Name       string      `json:"name"`
	Mass       float64     `json:"mass"`
	Radius     float64     `json:"radius"`
	Color      Color       `json:"color"`
	Parent     *ID         `json:"parent,omitempty"`
	Satellites []ID        `json:"satellites,omitempty"`
	Orbit      *OrbitState `json:"orbit,omitempty"`
}

// State is a complete serializable universe: the snapshot format persisted
// by the repository layer.
type State struct {
	NextID ID          `json:"next_id"`
	Time   float64     `json:"time"`
	G      float64     `json:"g"`
	Bodies []BodyState `json:"bodies"`
}

// Snapshot captures the full universe in a stable (id-sorted) order.
func (u *Universe) Snapshot() *State {
	state := &State{
		NextID: u.nextID,
		Time:   u.time,
		G:      u.g,
		Bodies: make([]BodyState, 0, len(u.bodies)),
	}
	for _, id := range u.SortedIDs() {
		wrapper := u.bodies[id]
		state.Bodies = append(state.Bodies, BodyState{
			ID:         id,
			Name:       wrapper.Body.Name,
			Mass:       wrapper.Body.Mass,
			Radius:     wrapper.Body.Radius,
			Color:      wrapper.Body.Color,
			Parent:     copyID(wrapper.Relations.Parent),
			Satellites: append([]ID(nil), wrapper.Relations.Satellites...),
			Orbit:      NewOrbitState(wrapper.Body.Orbit),
		})
	}
	return state
}

// FromState rebuilds a universe from a snapshot, checking the forest's
// bidirectional parent/satellite consistency.
func FromState(state *State) (*Universe, error) {
	u := New()
	u.nextID = state.NextID
	u.time = state.Time
	if state.G > 0 {
		u.g = state.G
	}

	for _, bs := range state.Bodies {
		if _, exists := u.bodies[bs.ID]; exists {
			return nil, apperrors.Validationf("duplicate body id %d in snapshot", bs.ID)
		}
		u.bodies[bs.ID] = &BodyWrapper{
			Body: &Body{
				Name:   bs.Name,
				Mass:   bs.Mass,
				Radius: bs.Radius,
				Color:  bs.Color,
				Orbit:  bs.Orbit.ToOrbit(),
			},
			Relations: BodyRelation{
				Parent:     copyID(bs.Parent),
				Satellites: append([]ID(nil), bs.Satellites...),
			},
		}
	}

	for id, wrapper := range u.bodies {
		if wrapper.Relations.Parent != nil {
			parent, ok := u.bodies[*wrapper.Relations.Parent]
			if !ok {
				return nil, apperrors.Validationf("body %d references missing parent %d", id, *wrapper.Relations.Parent)
			}
			if !containsID(parent.Relations.Satellites, id) {
				return nil, apperrors.Validationf("parent %d satellite list omits body %d", *wrapper.Relations.Parent, id)
			}
		}
		for _, satID := range wrapper.Relations.Satellites {
			sat, ok := u.bodies[satID]
			if !ok {
				return nil, apperrors.Validationf("body %d lists missing satellite %d", id, satID)
			}
			if sat.Relations.Parent == nil || *sat.Relations.Parent != id {
				return nil, apperrors.Validationf("satellite %d does not claim parent %d", satID, id)
			}
		}
	}

	// Bidirectional agreement alone does not rule out parent cycles, and a
	// cycle would make position resolution loop forever. Every ancestor
	// chain must reach a root within the body count.
	for id := range u.bodies {
		steps := 0
		cur := id
		for u.bodies[cur].Relations.Parent != nil {
			cur = *u.bodies[cur].Relations.Parent
			steps++
			if steps > len(u.bodies) {
				return nil, apperrors.Validationf("body %d is part of a parent cycle", id)
			}
		}
	}

	return u, nil
}

func containsID(ids []ID, id ID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
