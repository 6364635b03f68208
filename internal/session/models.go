// Package session tracks per-viewer state: which body the camera is focused
// on and the camera's spatial offset from it. Sessions are kept in Redis
// when available, with an in-memory fallback.
package session

import (
	"time"

	"orbitarium-server/internal/geom"
	"orbitarium-server/internal/universe"
)

// Session is one viewer's focus state. The camera's absolute position is
// always the focused body's position plus FocusOffset.
type Session struct {
	ID          string      `json:"id"`
	FocusedBody universe.ID `json:"focused_body"`
	FocusOffset geom.Vec3   `json:"focus_offset"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// SwitchFocus re-bases the session onto a new body without moving the
// camera: the new offset is the camera's absolute position minus the new
// focus position, so the rendered view is unchanged at the instant of the
// switch. Missing bodies resolve to the origin, and a non-finite result
// resets the offset to zero instead of propagating NaN into the renderer.
func (s *Session) SwitchFocus(newFocus universe.ID, positions map[universe.ID]geom.Vec3) {
	oldPos := positions[s.FocusedBody]
	newPos := positions[newFocus]

	offset := oldPos.Add(s.FocusOffset).Sub(newPos)
	if !offset.IsFinite() {
		offset = geom.Zero
	}

	s.FocusedBody = newFocus
	s.FocusOffset = offset
}

// CameraPosition returns the camera's absolute position for this session.
func (s *Session) CameraPosition(positions map[universe.ID]geom.Vec3) geom.Vec3 {
	return positions[s.FocusedBody].Add(s.FocusOffset)
}
