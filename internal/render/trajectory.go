package render

import (
	"github.com/chewxy/math32"

	"orbitarium-server/internal/geom"
	"orbitarium-server/internal/orbit"
)

// maxRenderableAnomaly is the eccentric-anomaly magnitude past which an
// open orbit's path is no longer drawn: the body is too deep into its
// escape for a trailing arc to mean anything.
const maxRenderableAnomaly = 10

// Basis32 is the orbit's 3x2 plane-to-world basis narrowed for the shader.
type Basis32 struct {
	E11, E12 float32 `json:"-"`
	E21, E22 float32 `json:"-"`
	E31, E32 float32 `json:"-"`
}

// Trajectory is the renderable polyline descriptor for one orbit: ribbon
// index topology plus the continuous parameters the vertex shader needs to
// place each point along the conic.
type Trajectory struct {
	// Closed marks elliptic topology (the ribbon wraps around).
	Closed     bool     `json:"closed"`
	PointCount int      `json:"point_count"`
	Indices    []uint32 `json:"indices"`

	Eccentricity float32   `json:"eccentricity"`
	Periapsis    float32   `json:"periapsis"`
	Basis        Basis32   `json:"basis"`
	FocusOffset  [3]float32 `json:"focus_offset"`

	// AnomalyStart and AnomalyRange bound the visible window; vertex i sits
	// at anomaly AnomalyStart + AnomalyRange * i/(segments).
	AnomalyStart float32 `json:"anomaly_start"`
	AnomalyRange float32 `json:"anomaly_range"`

	Thickness float32 `json:"thickness"`
}

// VisibleAnomalyRange returns the angular window of orbit path to draw.
// Closed orbits always show their full loop. Open orbits show a window that
// narrows as a bell curve of the current anomaly's magnitude, collapsing to
// zero once the anomaly passes the renderable limit.
func VisibleAnomalyRange(eccentricity float64, currentAnomaly float32) float32 {
	if eccentricity < 1 {
		return 2 * math32.Pi
	}
	if math32.Abs(currentAnomaly) >= maxRenderableAnomaly {
		return 0
	}
	return 30 * math32.Pow(2, -0.15*currentAnomaly*currentAnomaly)
}

// NewTrajectory builds a descriptor for the orbit at the given eccentric
// anomaly. focusOffset is the camera-relative position of the orbit's
// focus (the parent body).
func NewTrajectory(o *orbit.Orbit, currentAnomaly float64, focusOffset geom.Vec3, pointCount int, thickness float32) *Trajectory {
	tr := &Trajectory{Thickness: thickness}
	tr.SetPointCount(pointCount, o.Eccentricity() < 1)
	tr.UpdateFromOrbit(o, currentAnomaly, focusOffset)
	return tr
}

// SetPointCount resizes the polyline, clamping to the minimum of 3 points,
// and regenerates the ribbon indices for the given topology.
func (t *Trajectory) SetPointCount(pointCount int, closed bool) {
	if pointCount < 3 {
		pointCount = 3
	}
	t.PointCount = pointCount
	t.Closed = closed
	t.regenerateIndices()
}

// UpdateFromOrbit refreshes the continuous parameters from the orbit. The
// index topology is regenerated only when the eccentricity crosses 1, since
// only the closed/open switch changes connectivity.
func (t *Trajectory) UpdateFromOrbit(o *orbit.Orbit, currentAnomaly float64, focusOffset geom.Vec3) {
	closed := o.Eccentricity() < 1
	if closed != t.Closed {
		t.Closed = closed
		t.regenerateIndices()
	}

	anomaly := float32(currentAnomaly)
	if closed {
		// Wrap into [0, 2pi) so the window parameters stay bounded no
		// matter how long the simulation has run.
		anomaly = wrapAnomaly(anomaly)
	}

	t.Eccentricity = float32(o.Eccentricity())
	t.Periapsis = float32(o.Periapsis())
	t.AnomalyRange = VisibleAnomalyRange(o.Eccentricity(), anomaly)
	t.AnomalyStart = anomaly - t.AnomalyRange/2

	b := o.TransformationBasis()
	t.Basis = Basis32{
		E11: float32(b.E11), E12: float32(b.E12),
		E21: float32(b.E21), E22: float32(b.E22),
		E31: float32(b.E31), E32: float32(b.E32),
	}
	t.FocusOffset = [3]float32{float32(focusOffset.X), float32(focusOffset.Y), float32(focusOffset.Z)}
}

// Segments returns the number of ribbon segments: a closed loop wraps back
// to its first vertex pair, an open arc does not.
func (t *Trajectory) Segments() int {
	if t.Closed {
		return t.PointCount
	}
	return t.PointCount - 1
}

// regenerateIndices emits two triangles per segment, joining each vertex
// pair (2i, 2i+1) to the next pair along the path.
func (t *Trajectory) regenerateIndices() {
	segments := t.Segments()
	indices := make([]uint32, 0, segments*6)
	for i := 0; i < segments; i++ {
		base := uint32(2 * i)
		next := base + 2
		if t.Closed && i == segments-1 {
			next = 0
		}
		indices = append(indices, base, base+1, next, next, base+1, next+1)
	}
	t.Indices = indices
}

func wrapAnomaly(a float32) float32 {
	const tau = 2 * math32.Pi
	wrapped := math32.Mod(a, tau)
	if wrapped < 0 {
		wrapped += tau
	}
	return wrapped
}
