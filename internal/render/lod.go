// Package render turns the simulation state into renderable descriptors:
// level-of-detail selection for body meshes, orbit visibility, and the
// trajectory polyline discretization consumed by the GPU side. Continuous
// shader-facing parameters are float32, matching the narrowing at the
// render boundary.
package render

// meshSubdivisions maps LOD level (highest detail first) to the sphere-mesh
// subdivision count the renderer should instance.
var meshSubdivisions = [...]int{24, 16, 12, 9, 7, 5, 3, 2}

// radialSizeCutoffs holds the angular-size thresholds, largest first, that
// select each LOD level. A body smaller than every cutoff is skipped.
var radialSizeCutoffs = [...]float64{1.0, 0.25, 0.125, 0.062, 0.031, 0.015, 0.007, 0.002}

// MinOrbitRadialSize is the angular-size threshold below which an orbit's
// path is not rendered at all. The body mesh tolerates coarse LODs; a
// sub-pixel path is pure cost.
const MinOrbitRadialSize = 0.002

// Trajectory point budgets: requests scale linearly with the orbit's
// angular size and are clamped to this range.
const (
	MinTrajectoryPoints = 16
	MaxTrajectoryPoints = 512

	pointsPerRadian = 4096
)

// NumLODLevels is the number of mesh detail levels.
const NumLODLevels = len(meshSubdivisions)

// RadialSize returns the apparent angular size 2r/d of a sphere of radius r
// at distance d.
func RadialSize(radius, distance float64) float64 {
	if distance <= 0 {
		return radialSizeCutoffs[0]
	}
	return 2 * radius / distance
}

// SelectLOD returns the mesh LOD level for the given angular size: the
// first cutoff met or exceeded wins. ok is false when the body is too small
// to render.
func SelectLOD(radialSize float64) (level int, ok bool) {
	for i, cutoff := range radialSizeCutoffs {
		if radialSize >= cutoff {
			return i, true
		}
	}
	return 0, false
}

// Subdivisions returns the sphere subdivision count for a LOD level.
func Subdivisions(level int) int {
	return meshSubdivisions[level]
}

// OrbitVisible reports whether an orbit path of the given characteristic
// radius (semi-major axis magnitude) is worth rendering at all.
func OrbitVisible(orbitRadius, distance float64) bool {
	return RadialSize(orbitRadius, distance) >= MinOrbitRadialSize
}

// TrajectoryPointCount sizes the discretizer's point budget from the
// orbit's angular size: near orbits get smooth curves, far ones stay cheap.
func TrajectoryPointCount(orbitRadialSize float64) int {
	// Saturate in float space before converting. A parabolic orbit has an
	// infinite radial size, and a float-to-int conversion out of int's
	// range is not well defined.
	scaled := orbitRadialSize * pointsPerRadian
	if scaled >= MaxTrajectoryPoints {
		return MaxTrajectoryPoints
	}
	points := int(scaled)
	if points < MinTrajectoryPoints {
		return MinTrajectoryPoints
	}
	return points
}
