package render

import (
	"math"

	"orbitarium-server/internal/geom"
	"orbitarium-server/internal/universe"
)

// BodyInstance is one instanced mesh draw: camera-relative position in
// float32 (narrowing close to the camera keeps precision where it is
// visible) plus per-instance radius and color.
type BodyInstance struct {
	ID       universe.ID    `json:"id"`
	Position [3]float32     `json:"position"`
	Radius   float32        `json:"radius"`
	Color    universe.Color `json:"color"`
}

// Scene is one frame's renderable descriptor set.
type Scene struct {
	Time   float64   `json:"time"`
	Camera geom.Vec3 `json:"camera"`

	// LODBuckets groups body instances by mesh detail level, index 0 being
	// the most detailed. Bodies below every cutoff appear in no bucket.
	LODBuckets   [NumLODLevels][]BodyInstance `json:"lod_buckets"`
	Trajectories []*Trajectory                `json:"trajectories"`
}

// BuildScene resolves LOD selection and trajectory discretization for every
// body, against a camera at the given absolute position. The positions map
// must come from the same frame's position pass.
func BuildScene(u *universe.Universe, positions map[universe.ID]geom.Vec3, camera geom.Vec3, thickness float32) *Scene {
	scene := &Scene{Time: u.Time(), Camera: camera}

	for _, id := range u.SortedIDs() {
		wrapper := u.GetBody(id)
		pos, ok := positions[id]
		if !ok {
			continue
		}

		camRel := pos.Sub(camera)
		distance := camRel.Length()

		if level, visible := SelectLOD(RadialSize(wrapper.Body.Radius, distance)); visible {
			scene.LODBuckets[level] = append(scene.LODBuckets[level], BodyInstance{
				ID:       id,
				Position: [3]float32{float32(camRel.X), float32(camRel.Y), float32(camRel.Z)},
				Radius:   float32(wrapper.Body.Radius),
				Color:    wrapper.Body.Color,
			})
		}

		if tr := buildTrajectory(u, wrapper, positions, camera, thickness); tr != nil {
			scene.Trajectories = append(scene.Trajectories, tr)
		}
	}

	return scene
}

func buildTrajectory(u *universe.Universe, wrapper *universe.BodyWrapper, positions map[universe.ID]geom.Vec3, camera geom.Vec3, thickness float32) *Trajectory {
	o := wrapper.Body.Orbit
	if o == nil || wrapper.Relations.Parent == nil {
		return nil
	}

	// The orbit's focus is the parent; a missing parent position resolves
	// to the origin, same leniency as position resolution.
	focusPos := positions[*wrapper.Relations.Parent]
	focusOffset := focusPos.Sub(camera)

	// Characteristic path radius: |a| for closed and hyperbolic orbits,
	// unbounded for a parabola (always visible, max point budget).
	orbitRadius := math.Abs(o.SemiMajorAxis())
	distance := focusOffset.Length()
	if !OrbitVisible(orbitRadius, distance) {
		return nil
	}

	anomaly := o.EccentricAnomalyAtTime(u.Time())
	points := TrajectoryPointCount(RadialSize(orbitRadius, distance))
	return NewTrajectory(o, anomaly, focusOffset, points, thickness)
}
